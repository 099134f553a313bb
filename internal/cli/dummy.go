package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/nodehealth/internal/health"
)

var (
	dummyStatus int
	dummyData   string
)

var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Serve a fixed response, for testing load balancer wiring",
	Run:   runDummy,
}

func init() {
	dummyCmd.Flags().IntVarP(&dummyStatus, "status", "s", http.StatusOK, "HTTP status to answer with")
	dummyCmd.Flags().StringVarP(&dummyData, "data", "d", "OK", "body to answer with")
	rootCmd.AddCommand(dummyCmd)
}

func runDummy(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		initLogging(nil)
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	initLogging(cfg)

	if dummyStatus < 100 || dummyStatus > 999 {
		slog.Error("Invalid status", "status", dummyStatus)
		os.Exit(1)
	}

	server := health.NewStaticServer(dummyStatus, dummyData, health.ServerConfig{
		Port:    cfg.Server.Port,
		Verbose: cfg.Health.Verbose,
	})
	runUntilSignal(newStaticApp(server, cfg.Server.Port))
}

// staticApp runs a static server under the signal lifecycle.
type staticApp struct {
	server *health.Server
	port   int
	errs   chan error
}

func newStaticApp(server *health.Server, port int) *staticApp {
	return &staticApp{server: server, port: port, errs: make(chan error, 1)}
}

func (a *staticApp) Start(ctx context.Context) error {
	if err := a.server.Start(a.errs); err != nil {
		return err
	}
	slog.Info("Dummy server started", "port", a.port, "status", dummyStatus)
	return nil
}

func (a *staticApp) Stop(ctx context.Context) error {
	return a.server.Stop(ctx)
}

func (a *staticApp) Errors() <-chan error {
	return a.errs
}
