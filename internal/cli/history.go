package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vietddude/nodehealth/internal/core/domain"
	"github.com/vietddude/nodehealth/internal/infra/storage/postgres"
)

var (
	historyNode  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently journaled verdicts",
	Run:   runHistory,
}

var pruneCmd = &cobra.Command{
	Use:   "prune [older_than]",
	Short: "Delete journaled verdicts older than a duration, e.g. 72h",
	Args:  cobra.ExactArgs(1),
	Run:   runPrune,
}

func init() {
	historyCmd.Flags().StringVar(&historyNode, "node", "", "only show verdicts for this node label")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "number of verdicts to show")
	rootCmd.AddCommand(historyCmd, pruneCmd)
}

func openJournal(cmd *cobra.Command) (*postgres.DB, *postgres.CheckRepo) {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		initLogging(nil)
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	initLogging(cfg)

	if !cfg.Database.Enabled() {
		slog.Error("No database configured (database.url)")
		os.Exit(1)
	}

	db, err := postgres.NewDB(context.Background(), cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	return db, postgres.NewCheckRepo(db)
}

// journal is the part of the verdict journal the history commands use.
type journal interface {
	ListRecent(ctx context.Context, node string, limit int) ([]domain.CheckRecord, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

func runHistory(cmd *cobra.Command, args []string) {
	db, repo := openJournal(cmd)
	err := printHistory(context.Background(), os.Stdout, repo, historyNode, historyLimit)
	_ = db.Close()
	if err != nil {
		slog.Error("Failed to query history", "error", err)
		os.Exit(1)
	}
}

func printHistory(ctx context.Context, w io.Writer, j journal, node string, limit int) error {
	records, err := j.ListRecent(ctx, node, limit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Checked At", "Node", "Mode", "Healthy", "Diagnostic")
	for _, r := range records {
		_ = table.Append([]string{
			r.CheckedAt.Format(time.RFC3339),
			r.Node,
			r.Mode,
			strconv.FormatBool(r.Healthy),
			r.Diagnostic,
		})
	}
	return table.Render()
}

func runPrune(cmd *cobra.Command, args []string) {
	olderThan, err := time.ParseDuration(args[0])
	if err != nil || olderThan <= 0 {
		initLogging(nil)
		slog.Error("Invalid duration", "value", args[0])
		os.Exit(1)
	}

	db, repo := openJournal(cmd)
	err = pruneHistory(context.Background(), os.Stdout, repo, time.Now().Add(-olderThan))
	_ = db.Close()
	if err != nil {
		slog.Error("Failed to prune history", "error", err)
		os.Exit(1)
	}
}

func pruneHistory(ctx context.Context, w io.Writer, j journal, cutoff time.Time) error {
	n, err := j.PruneBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Deleted %d verdicts checked before %s\n", n, cutoff.Format(time.RFC3339))
	return err
}
