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

	"github.com/vietddude/nodehealth/internal/control"
	"github.com/vietddude/nodehealth/internal/core/domain"
	"github.com/vietddude/nodehealth/internal/health"
)

var checkMode string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate the node once and print the verdict",
	Long:  `Evaluate the node once, print the verdict as a table and exit 1 when it is unhealthy.`,
	Run:   runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkMode, "mode", "m", string(health.ModeSyncing), "syncing or synced")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		initLogging(nil)
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	initLogging(cfg)

	// Journaling a one-shot check would only add noise.
	cfg.Database.URL = ""

	mode := health.Mode(checkMode)
	app, err := control.NewApp(control.FromAppConfig(cfg, mode))
	if err != nil {
		slog.Error("Failed to initialize health check", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	verdict := app.Evaluate(ctx)
	printVerdict(os.Stdout, mode, cfg.Node.Endpoint(), cfg.Network.Name, app.Network(), verdict)

	if !verdict.Healthy {
		app.Close()
		os.Exit(1)
	}
}

func printVerdict(w io.Writer, mode health.Mode, node, network string, resolved domain.Network, verdict domain.Verdict) {
	chainID := resolved.ID
	if chainID == "" {
		chainID = "unknown"
	}

	table := tablewriter.NewWriter(w)
	table.Header("Mode", "Node", "Network", "Chain ID", "Healthy", "Diagnostic")
	_ = table.Append([]string{
		string(mode),
		node,
		network,
		chainID,
		strconv.FormatBool(verdict.Healthy),
		verdict.Diagnostic,
	})
	if err := table.Render(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
