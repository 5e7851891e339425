package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/fleetview/internal/config"
	"github.com/MrSnakeDoc/fleetview/internal/discovery"
	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/fleetview/internal/index"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
	"github.com/MrSnakeDoc/fleetview/internal/metrics"
	"github.com/MrSnakeDoc/fleetview/internal/probe"
	"github.com/MrSnakeDoc/fleetview/internal/redis"
	"github.com/MrSnakeDoc/fleetview/internal/scheduler"
	"github.com/MrSnakeDoc/fleetview/internal/session"
	"github.com/MrSnakeDoc/fleetview/internal/sources/cloudfoundry"
	"github.com/MrSnakeDoc/fleetview/internal/sources/credentials"
	"github.com/MrSnakeDoc/fleetview/internal/status"
	redisstore "github.com/MrSnakeDoc/fleetview/internal/store/redis"
	"github.com/MrSnakeDoc/fleetview/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sessions    *session.Manager
	startup     []domain.Credential

	// ctx bounds every discovery and the poller
	ctx    context.Context
	cancel context.CancelFunc
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Read the startup credentials early - fail fast if the file is broken
	var startup []domain.Credential
	if cfg.CredentialsFile != "" {
		creds, err := credentials.NewLoader(cfg.CredentialsFile).Load()
		if err != nil {
			return nil, err
		}
		startup = creds
		loggerClient.Info("loaded credentials file",
			logger.String("file", cfg.CredentialsFile),
			logger.Int("accounts", len(creds)))
	} else {
		loggerClient.Info("no credentials file configured, waiting for /authenticate")
	}

	ctx, cancel := context.WithCancel(context.Background())

	matrix := index.NewMatrix()
	fetcher := probe.New(cfg.InfoTimeout, cfg.SkipTLSValidation)

	// Manual poll trigger channel
	pollTrigger := make(chan struct{}, 1)

	poller := scheduler.NewPoller(
		matrix,
		fetcher,
		loggerClient,
		cfg.PollInterval,
		cfg.PollConcurrency,
		pollTrigger,
	)

	// Redis mirror (optional)
	var redisClient *goredis.Client
	if cfg.RedisEnabled() {
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisClient = client

		mirror := scheduler.NewRedisMirror(
			redisstore.NewStore(client, cfg.MirrorTTL),
			matrix,
			loggerClient,
		)
		poller.OnCycle(mirror.Sync)
		loggerClient.Info("redis mirror enabled",
			logger.Duration("ttl", cfg.MirrorTTL))
	} else {
		loggerClient.Info("redis not configured, observations are not mirrored")
	}

	platforms := cloudfoundry.NewConnector(cfg.PlatformTimeout, cfg.SkipTLSValidation, loggerClient)
	connector := session.ConnectorFunc(func(ctx context.Context, cred domain.Credential) (discovery.Platform, error) {
		client, err := platforms.Connect(ctx, cred)
		if err != nil {
			return nil, err
		}
		return client, nil
	})

	sessions := session.NewManager(
		ctx,
		connector,
		discovery.NewResolver(matrix, fetcher, loggerClient),
		poller,
		loggerClient,
	)

	// Dependencies passed to routes
	d := deps.Deps{
		Logger:              loggerClient,
		StartTime:           time.Now(),
		Version:             version.Version,
		Commit:              version.Commit,
		BuildDate:           version.BuildDate,
		GoVersion:           version.GoVersion,
		AllowedHosts:        cfg.AllowedHosts,
		AllowedCIDRS:        cfg.AllowedCIDRS,
		TrustProxy:          cfg.TrustProxy,
		OnboardBurst:        cfg.OnboardBurst,
		OnboardRefillPerMin: cfg.OnboardRefillPerMin,
		Matrix:              matrix,
		Projector:           status.NewProjector(matrix),
		Sessions:            sessions,
		PollInterval:        cfg.PollInterval,
		PollTrigger:         pollTrigger,
		RedisClient:         redisClient,
		Metrics:             metrics.Handler(),
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sessions:    sessions,
		startup:     startup,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func (a *App) Run() error {
	defer a.cancel()

	a.logger.Infof("🚀 Starting fleetview v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.Summary())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(a.startup) > 0 {
		n := a.sessions.OnboardRecords(a.startup)
		a.logger.Info("onboarding accounts from credentials file",
			logger.Int("accounts", n))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Stop discoveries and the poller
	a.cancel()
	a.sessions.Wait()
	a.logger.Info("poller and discoveries stopped")

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ fleetview stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
