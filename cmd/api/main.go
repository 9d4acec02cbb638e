package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/indrapalijama/alkitab-api-v3/internal/catalog"
	"github.com/indrapalijama/alkitab-api-v3/internal/handlers"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/auth"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/config"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/jobs"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/observability"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/secrets"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/upstream"
	"github.com/indrapalijama/alkitab-api-v3/internal/scripture"
	"github.com/indrapalijama/alkitab-api-v3/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")

	fetcher, err := newSecretFetcher(ctx, logger)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(fetcher))
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	profiles := scripture.DefaultProfiles()
	if path := strings.TrimSpace(cfg.Bible.ProfilesFile); path != "" {
		profiles, err = scripture.LoadProfilesFile(path)
		if err != nil {
			logger.Fatal("failed to load version profiles", zap.String("path", path), zap.Error(err))
		}
	}

	pageClient, err := upstream.NewClient(cfg.Bible.BaseURL,
		upstream.WithTimeouts(cfg.Bible.FetchTimeout, cfg.Bible.ConnectTimeout),
		upstream.WithMaxIdlePerHost(cfg.Bible.MaxIdlePerHost),
		upstream.WithRecorder(metrics),
		upstream.WithLogger(logger.Named("upstream")),
	)
	if err != nil {
		logger.Fatal("failed to initialise content source client", zap.Error(err))
	}

	var publisher services.LookupEventPublisher
	if cfg.Events.Enabled() {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.Events.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		lookupPublisher, err := jobs.NewPubSubLookupPublisher(pubsubClient.Topic(cfg.Events.Topic))
		if err != nil {
			logger.Fatal("failed to initialise lookup publisher", zap.Error(err))
		}
		defer lookupPublisher.Stop()
		publisher = lookupPublisher
	}

	books := catalog.Default()
	bibleService, err := services.NewBibleService(services.BibleServiceDeps{
		Catalog:   books,
		Profiles:  profiles,
		Fetcher:   pageClient,
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    logger,
		Clock:     time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise bible service", zap.Error(err))
	}
	bibleHandlers := handlers.NewBibleHandlers(bibleService)

	accessKey := auth.NewAccessKeyValidator(cfg.Security.AccessKey, auth.WithAccessKeyMetrics(metrics))

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfoFromEnv(cfg, startedAt)),
		handlers.WithReadinessCheck("catalog", func(context.Context) error {
			if books.Len() == 0 {
				return errors.New("book catalog is empty")
			}
			return nil
		}),
		handlers.WithReadinessCheck("profiles", func(context.Context) error {
			if _, ok := profiles.Lookup(scripture.DefaultVersion); !ok {
				return fmt.Errorf("base version %q has no profile", scripture.DefaultVersion)
			}
			return nil
		}),
	)

	projectID := traceProjectID(cfg)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
		metrics.Middleware,
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithMetricsHandler(metrics.Handler()),
		handlers.WithAllowedOrigins(cfg.CORS.AllowedOrigins...),
		handlers.WithRateLimit(cfg.RateLimits.PerMinute),
		handlers.WithBibleMiddlewares(accessKey.RequireAccessKey()),
		handlers.WithBibleRoutes(bibleHandlers.Routes),
	)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("alkitab api listening",
			zap.String("environment", cfg.Environment),
			zap.Bool("events_enabled", cfg.Events.Enabled()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newSecretFetcher reads its own settings ahead of config.Load, which needs
// the fetcher to resolve sm:// values.
func newSecretFetcher(ctx context.Context, logger *zap.Logger) (*secrets.Fetcher, error) {
	projectID, err := config.EnvironmentValue("APP_SECRETS_PROJECT_ID")
	if err != nil {
		return nil, err
	}
	fallbackPath, err := config.EnvironmentValue("APP_SECRETS_FALLBACK_FILE")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fallbackPath) == "" {
		fallbackPath = ".secrets.local"
	}

	opts := []secrets.Option{
		secrets.WithLogger(logger),
		secrets.WithFallbackFile(fallbackPath),
	}
	if projectID = strings.TrimSpace(projectID); projectID != "" {
		opts = append(opts, secrets.WithDefaultProject(projectID))
	}
	return secrets.NewFetcher(ctx, opts...)
}

func buildInfoFromEnv(cfg config.Config, started time.Time) handlers.BuildInfo {
	version := strings.TrimSpace(os.Getenv("APP_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("APP_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	return handlers.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: cfg.Environment,
		StartedAt:   started,
	}
}

func traceProjectID(cfg config.Config) string {
	if id := strings.TrimSpace(cfg.Events.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(cfg.Secrets.ProjectID)
}
