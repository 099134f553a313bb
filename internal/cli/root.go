package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/nodehealth/internal/control"
	"github.com/vietddude/nodehealth/internal/core/config"
	"github.com/vietddude/nodehealth/internal/health"
)

var (
	cfgPath            string
	isDebug            bool
	isVerbose          bool
	nodeAddress        string
	nodePort           int
	listenPort         int
	grpcPort           int
	network            string
	apiKey             string
	maxBlockDifference int64
	maxTimeFrozen      int
	cacheSeconds       int
)

var rootCmd = &cobra.Command{
	Use:   "nodehealth",
	Short: "Ethereum node health check",
	Long: `nodehealth answers HTTP health checks for an Ethereum node: 200 while the node is
synced with the network or visibly making sync progress, 500 otherwise.`,
	Run: runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml, optional)")
	flags.BoolVar(&isDebug, "debug", false, "enable debug logging")
	flags.BoolVarP(&isVerbose, "verbose", "V", false, "log every response")
	flags.StringVarP(&nodeAddress, "node-address", "a", "localhost", "address of the node")
	flags.IntVar(&nodePort, "node-port", 8545, "JSON-RPC port of the node")
	flags.IntVarP(&listenPort, "port", "p", config.DefaultPort, "port to listen on ($PORT)")
	flags.IntVar(&grpcPort, "grpc-port", 0, "port for the gRPC health service (0 = disabled)")
	flags.StringVarP(&network, "network", "n", config.DefaultNetwork, "network the node belongs to ($NETWORK)")
	flags.StringVarP(&apiKey, "key", "k", "", "Etherscan API key ($ETHERSCAN_API_KEY)")
	flags.Int64VarP(&maxBlockDifference, "max-block-difference", "b", health.DefaultMaxBlockDifference,
		"blocks the node may lag behind the network")
	flags.IntVarP(&maxTimeFrozen, "max-time-frozen", "t", int(health.DefaultMaxSyncFreeze/time.Second),
		"seconds a syncing node may go without progress")
	flags.IntVarP(&cacheSeconds, "cache-seconds", "c", 0, "seconds to reuse a fetched network block number")
}

// initLogging sets the default slog logger. A nil cfg means flags only.
func initLogging(cfg *config.AppConfig) {
	slogLevel := slog.LevelInfo
	if cfg != nil {
		slogLevel = cfg.Logging.SlogLevel()
	}
	if isDebug {
		slogLevel = slog.LevelDebug
	}

	if cfg != nil && cfg.Logging.Format == config.LogFormatJSON {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})))
		return
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
}

// loadConfig merges the config file, environment and explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command, needReference bool) (*config.AppConfig, error) {
	var cfg *config.AppConfig
	var err error
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, err = config.LoadOrDefault(cfgPath)
	}
	if err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(needReference); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.AppConfig) {
	changed := cmd.Flags().Changed
	if changed("verbose") {
		cfg.Health.Verbose = isVerbose
	}
	if changed("node-address") {
		cfg.Node.Address = nodeAddress
	}
	if changed("node-port") {
		cfg.Node.Port = nodePort
	}
	if changed("port") {
		cfg.Server.Port = listenPort
	}
	if changed("grpc-port") {
		cfg.Server.GRPCPort = grpcPort
	}
	if changed("network") {
		cfg.Network.Name = network
	}
	if changed("key") {
		cfg.Network.Etherscan.APIKey = apiKey
	}
	if changed("max-block-difference") {
		cfg.Health.MaxBlockDifference = maxBlockDifference
	}
	if changed("max-time-frozen") {
		cfg.Health.MaxTimeFrozen = maxTimeFrozen
	}
	if changed("cache-seconds") {
		cfg.Network.CacheSeconds = cacheSeconds
	}
}

func runServe(cmd *cobra.Command, args []string) {
	serve(cmd, health.ModeSyncing)
}

func serve(cmd *cobra.Command, mode health.Mode) {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		initLogging(nil)
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	initLogging(cfg)

	app, err := control.NewApp(control.FromAppConfig(cfg, mode))
	if err != nil {
		slog.Error("Failed to initialize health check", "error", err)
		os.Exit(1)
	}

	runUntilSignal(app)
}

type lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Errors() <-chan error
}

func runUntilSignal(app lifecycle) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start", "error", err)
		os.Exit(1)
	}

	if err := waitForShutdown(app, sigChan); err != nil {
		os.Exit(1)
	}
}

// waitForShutdown blocks until a signal arrives or a server fails, then stops app.
// A server failure is returned even when Stop succeeds.
func waitForShutdown(app lifecycle, sigs <-chan os.Signal) error {
	var cause error
	select {
	case sig := <-sigs:
		slog.Info("Received signal, shutting down...", "signal", sig)
	case cause = <-app.Errors():
		slog.Error("Server failed, shutting down...", "error", cause)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		return errors.Join(cause, err)
	}
	return cause
}
