package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/nodehealth/internal/core/config"
	"github.com/vietddude/nodehealth/internal/core/domain"
	"github.com/vietddude/nodehealth/internal/core/worker"
	"github.com/vietddude/nodehealth/internal/health"
	"github.com/vietddude/nodehealth/internal/infra/chain/etherscan"
	"github.com/vietddude/nodehealth/internal/infra/chain/evm"
	redisclient "github.com/vietddude/nodehealth/internal/infra/redis"
	"github.com/vietddude/nodehealth/internal/infra/storage/postgres"
)

// App wires the node client, network reference, health policy and servers together.
type App struct {
	cfg         Config
	node        *evm.NodeClient
	reference   *etherscan.Client
	checker     health.Checker
	evaluator   *health.Evaluator
	httpServer  *health.Server
	grpcServer  *health.GRPCServer
	pruner      *worker.Pruner
	db          *postgres.DB
	redisClient *redisclient.Client
	network     domain.Network
	errs        chan error
	log         *slog.Logger
}

// Config holds the application configuration.
type Config struct {
	Mode     health.Mode
	Server   config.ServerConfig
	Node     evm.Config
	Network  config.NetworkConfig
	Health   config.HealthConfig
	Redis    redisclient.Config
	Database postgres.Config
}

// FromAppConfig builds the control configuration for mode.
func FromAppConfig(cfg *config.AppConfig, mode health.Mode) Config {
	return Config{
		Mode:     mode,
		Server:   cfg.Server,
		Node:     cfg.Node,
		Network:  cfg.Network,
		Health:   cfg.Health,
		Redis:    cfg.Redis,
		Database: cfg.Database,
	}
}

// NewApp creates a new App with all dependencies initialized.
func NewApp(cfg Config) (*App, error) {
	if cfg.Mode == "" {
		cfg.Mode = health.ModeSyncing
	}
	if cfg.Mode != health.ModeSyncing && cfg.Mode != health.ModeSynced {
		return nil, fmt.Errorf("unsupported mode %q", cfg.Mode)
	}

	app := &App{
		cfg:     cfg,
		network: resolveNetwork(cfg.Network.Name),
		errs:    make(chan error, 2),
		log:     slog.Default(),
	}

	// 1. Clients
	app.node = evm.NewNodeClient(cfg.Node)
	app.reference = etherscan.NewClient(cfg.Network.Etherscan)

	// 2. Reference cache, shared through Redis when configured
	var store health.CacheStore = health.NewMemoryCache()
	if cfg.Redis.Enabled() && cfg.Network.CacheSeconds > 0 {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, using in-memory cache", "error", err)
		} else {
			app.redisClient = client
			store = redisclient.NewBlockCache(client, cfg.Network.CacheFor())
			slog.Info("Using Redis reference cache")
		}
	}
	reference := health.NewReferenceClient(app.reference, store, cfg.Network.CacheFor(), nil)

	// 3. Health policy
	synced := health.NewSyncedChecker(app.node, reference, cfg.Network.Name, cfg.Health.MaxBlockDifference)
	if cfg.Mode == health.ModeSynced {
		app.checker = synced
	} else {
		app.evaluator = health.NewEvaluator(app.node, synced, cfg.Health.MaxSyncFreeze(), nil)
		app.checker = app.evaluator
	}

	// 4. Servers
	label := cfg.Health.NodeLabel
	if label == "" {
		label = cfg.Node.Endpoint()
	}
	if app.evaluator != nil {
		app.evaluator.SetNodeLabel(label)
	} else {
		synced.SetNodeLabel(label)
	}
	app.httpServer = health.NewServer(app.checker, health.ServerConfig{
		Port:    cfg.Server.Port,
		Mode:    cfg.Mode,
		Node:    label,
		Verbose: cfg.Health.Verbose,
	})
	if cfg.Server.GRPCPort > 0 {
		app.grpcServer = health.NewGRPCServer(app.checker, cfg.Server.GRPCPort)
	}

	// 5. Verdict journal
	if cfg.Database.Enabled() {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			app.closeClients()
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			app.closeClients()
			return nil, err
		}
		app.db = db

		repo := postgres.NewCheckRepo(db)
		app.httpServer.SetRecorder(repo)
		if cfg.Database.Retention > 0 {
			app.pruner = worker.NewPruner(cfg.Database.Retention, repo)
		}
		slog.Info("Journaling verdicts to PostgreSQL")
	}

	return app, nil
}

// Network returns the resolved network. ID is empty for unknown names.
func (a *App) Network() domain.Network {
	return a.network
}

// Evaluate runs one health evaluation.
func (a *App) Evaluate(ctx context.Context) domain.Verdict {
	return a.checker.Evaluate(ctx)
}

// Handler returns the HTTP health handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler()
}

// Start binds the servers and starts background workers. It does not block. A port
// that cannot be bound is returned as an error; later server failures arrive on Errors.
func (a *App) Start(ctx context.Context) error {
	if err := a.httpServer.Start(a.errs); err != nil {
		return err
	}

	if a.grpcServer != nil {
		if err := a.grpcServer.Start(a.errs); err != nil {
			_ = a.httpServer.Stop(ctx)
			return err
		}
	}

	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}
	if a.pruner != nil {
		go a.pruner.Start(ctx)
	}

	a.log.Info("Health check started",
		"mode", a.cfg.Mode,
		"port", a.cfg.Server.Port,
		"node", a.node.Endpoint(),
		"network", a.cfg.Network.Name,
		"chain_id", a.network.ID,
	)
	return nil
}

// Errors reports server failures after a successful Start.
func (a *App) Errors() <-chan error {
	return a.errs
}

// Stop stops the servers and releases connections.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping health check...")

	err := a.httpServer.Stop(ctx)
	if a.grpcServer != nil {
		a.grpcServer.Stop(ctx)
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
	a.closeClients()
	return err
}

// Close releases connections without stopping servers. Used by one-shot commands.
func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	a.closeClients()
}

// resolveNetwork looks up the chain ID of name. Unknown names still work, since the
// Etherscan host is derived from the name itself.
func resolveNetwork(name string) domain.Network {
	n, err := domain.ParseNetwork(name)
	if err != nil {
		slog.Warn("Unknown network, chain ID not resolved", "network", name)
		return domain.Network{}
	}
	if host := etherscan.Subdomain(name); domain.IsMainnet(name) && host != "api" {
		slog.Warn("Network is a mainnet alias but selects a different Etherscan host, use main",
			"network", name,
			"host", host+".etherscan.io",
		)
	}
	return n
}

func (a *App) closeClients() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	_ = a.node.Close()
	_ = a.reference.Close()
}
