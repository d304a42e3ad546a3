package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	s3blob "flasharb/internal/blob/s3"
	"flasharb/internal/cache/redis"
	"flasharb/internal/chain"
	"flasharb/internal/config"
	"flasharb/internal/domain"
	"flasharb/internal/exchange"
	"flasharb/internal/executor"
	"flasharb/internal/gas"
	"flasharb/internal/monitor"
	"flasharb/internal/notify"
	"flasharb/internal/profit"
	"flasharb/internal/server"
	"flasharb/internal/server/handler"
	"flasharb/internal/server/ws"
	"flasharb/internal/service"
	"flasharb/internal/store/postgres"
	"flasharb/internal/wallet"
)

// Dependencies bundles everything the application modes need to operate. It is
// constructed by Wire and torn down by the returned cleanup function. Fields
// that the selected mode does not use are nil.
type Dependencies struct {
	ConfigService *service.ConfigService
	Notifier      *notify.Notifier

	Monitor *monitor.Monitor
	Hub     *ws.Hub
	Server  *server.Server

	Archiver        *s3blob.Archiver
	ArchiveInterval time.Duration
}

// needsChain returns true for modes that scan prices and submit transactions.
func needsChain(mode string) bool {
	switch mode {
	case "monitor", "full":
		return true
	default:
		return false
	}
}

// needsServer returns true for modes that expose the HTTP API.
func needsServer(mode string) bool {
	switch mode {
	case "server", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()
	mode := strings.ToLower(cfg.Mode)

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	network, err := chain.ByName(cfg.Chain.Network)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: %w", err)
	}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	configStore := postgres.NewConfigStore(pool)
	oppStore := postgres.NewOpportunityStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	snapshotCache := redis.NewSnapshotCache(redisClient)
	lockManager := redis.NewLockManager(redisClient)
	rateLimiter := redis.NewRateLimiter(redisClient)

	// --- Runtime configuration service ---
	seedPairs, err := domain.ParsePairs(cfg.Bot.Pairs)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: seed pairs: %w", err)
	}
	seed := domain.BotConfig{
		Pairs:                seedPairs,
		ProfitThresholdPct:   cfg.Bot.ProfitThresholdPct,
		MaxLoanAmount:        cfg.Bot.MaxLoanAmount,
		MonitoringEnabled:    cfg.Bot.MonitoringEnabled,
		NotificationsEnabled: cfg.Bot.NotificationsEnabled,
	}
	deps.ConfigService = service.NewConfigService(configStore, lockManager, seed, logger)
	if err := deps.ConfigService.Init(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: config service: %w", err)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.SlackWebhookURL != "" {
		senders = append(senders, notify.NewSlackSender(cfg.Notify.SlackWebhookURL))
	}
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Websocket hub ---
	if needsServer(mode) {
		deps.Hub = ws.NewHub(mode, logger)
	}

	// --- Chain, collectors, and the monitor loop ---
	if needsChain(mode) {
		ethClient, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: eth rpc: %w", err)
		}
		closers = append(closers, ethClient.Close)

		adapters := make([]exchange.Adapter, 0, len(cfg.Exchanges.Enabled))
		for _, name := range cfg.Exchanges.Enabled {
			adapter, err := exchange.NewRouterAdapter(name, cfg.Chain.Network, ethClient, logger)
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: exchange %s: %w", name, err)
			}
			adapters = append(adapters, adapter)
		}
		collector := exchange.NewCollector(adapters, cfg.Exchanges.QuoteTimeout.Duration, logger)

		oracle := gas.NewOracle(ethClient, cfg.Chain.GasUnits, logger)
		estimator := profit.NewEstimator(
			oracle,
			cfg.Bot.FlashloanFeeRate,
			cfg.Bot.MinNetProfit,
			cfg.Chain.FallbackGasCost,
			logger,
		)

		var w *wallet.Wallet
		if !cfg.Chain.DryRun {
			w, err = wallet.LoadKey(wallet.KeyConfig{
				RawPrivateKey:    cfg.Chain.PrivateKey,
				EncryptedKeyPath: cfg.Chain.EncryptedKeyPath,
				KeyPassword:      cfg.Chain.KeyPassword,
			})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: wallet: %w", err)
			}
			logger.Info("wallet loaded", slog.String("address", w.Address().Hex()))
		}
		exec := executor.NewExecutor(
			ethClient,
			w,
			cfg.Chain.ContractAddress,
			network,
			cfg.Chain.GasUnits,
			cfg.Chain.DryRun,
			logger,
		)

		var bus monitor.Broadcaster
		if deps.Hub != nil {
			bus = deps.Hub
		}
		deps.Monitor = monitor.New(
			deps.ConfigService,
			collector,
			estimator,
			exec,
			oppStore,
			snapshotCache,
			deps.Notifier,
			bus,
			cfg.Bot.ScanInterval.Duration,
			cfg.Bot.ErrorBackoff.Duration,
			logger,
		)
	}

	// --- S3 archive ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(
			s3blob.NewWriter(s3Client),
			oppStore,
			cfg.Archive.RetentionDays,
			logger,
		)
		deps.ArchiveInterval = cfg.Archive.Interval.Duration
	}

	// --- HTTP server ---
	if needsServer(mode) {
		var monStatus handler.MonitorStatus
		if deps.Monitor != nil {
			monStatus = deps.Monitor
		}
		handlers := server.Handlers{
			Health:        handler.NewHealthHandler(monStatus, cfg.Chain.Network, logger),
			Config:        handler.NewConfigHandler(deps.ConfigService, logger),
			Monitor:       handler.NewMonitorHandler(deps.ConfigService, logger),
			Opportunities: handler.NewOpportunityHandler(oppStore, logger),
			Prices:        handler.NewPriceHandler(snapshotCache, logger),
		}
		deps.Server = server.NewServer(
			server.Config{
				Port:        cfg.Server.Port,
				APIKey:      cfg.Server.APIKey,
				CORSOrigins: cfg.Server.CORSOrigins,
			},
			handlers,
			deps.Hub,
			rateLimiter,
			logger,
		)
	}

	return deps, cleanup, nil
}
