package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grislo/internal/api"
	"grislo/internal/config"
	"grislo/internal/domain"
	"grislo/internal/events"
	"grislo/internal/export"
	"grislo/internal/logging"
	"grislo/internal/metrics"
	"grislo/internal/notify"
	"grislo/internal/service"
	"grislo/internal/sheets"
	"grislo/internal/store"
	"grislo/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const sessionTTL = 30 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg); err != nil {
		return err
	}

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	remote, err := initRemote(cfg, logger)
	if err != nil {
		return err
	}
	if remote != nil {
		defer remote.Close()
	}

	cache, sessions := initCacheAndSessions(ctx, cfg, logger)
	seed := store.NewSeedFiles(cfg.Seed.Dir)

	var remoteWriter store.Writer
	if remote != nil {
		remoteWriter = remote
	}
	chain := store.NewChain(remoteWriter, cache, seed, logger)

	eventBus := events.NewEventBus()

	if cfg.Telegram.Enabled {
		notifier, err := notify.NewTelegramNotifier(cfg.Telegram, logger)
		if err != nil {
			return fmt.Errorf("telegram init: %w", err)
		}
		notifier.SubscribeTo(eventBus)
		logger.Info().Int("chats", len(cfg.Telegram.ChatIDs)).Msg("telegram notifications enabled")
	}

	mirror, err := initSheetsMirror(ctx, cfg, chain, logger)
	if err != nil {
		return err
	}

	reservations := service.NewReservationService(
		chain, sessions, eventBus, mirrorOrNil(mirror),
		cfg.Service.VehicleCapacity, cfg.Service.BookingWindowDays, cfg.Service.MaxPassengers,
		cfg.Service.TimeSlots, logger,
	)
	schedule := service.NewScheduleService(chain, eventBus, mirrorOrNil(mirror), logger)

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	if cfg.Backup.Enabled && cfg.Database.Path != "" {
		backupService := store.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
		go backupService.Start(ctx)
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		exporter := export.NewExporter(chain, cfg.Exports.Path, logger)
		apiServer = api.NewServer(cfg.API, reservations, schedule, exporter, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
	}

	logger.Info().
		Str("service", cfg.Service.Name).
		Bool("remote", remote != nil).
		Bool("api", cfg.API.Enabled).
		Msg("reservation engine started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if apiServer != nil {
		_ = apiServer.Shutdown(shutdownCtx)
	}

	logger.Info().Msg("reservation engine stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()
	return cfg, &logger, closer, nil
}

func prepareDirectories(cfg *config.Config) error {
	dirs := []string{cfg.Exports.Path}
	if cfg.Backup.Enabled && cfg.Backup.StoragePath != "" {
		dirs = append(dirs, cfg.Backup.StoragePath)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// initRemote opens the sqlite authoritative tier. A blank path means the
// engine runs cache+seed only.
func initRemote(cfg *config.Config, logger *zerolog.Logger) (*store.SQLiteStore, error) {
	if cfg.Database.Path == "" {
		logger.Warn().Msg("no database path configured, running without remote tier")
		return nil, nil
	}
	remote, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	logger.Info().Str("path", cfg.Database.Path).Msg("sqlite remote tier ready")
	return remote, nil
}

// initCacheAndSessions prefers redis for both the cache tier and session
// sets; an unreachable redis degrades to in-process memory.
func initCacheAndSessions(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (store.CacheTier, store.SessionStore) {
	memorySessions := store.NewMemorySessionStore()

	if cfg.Redis.Address == "" {
		logger.Warn().Msg("no redis address configured, using in-memory cache and sessions")
		return store.NewMemoryCache(), memorySessions
	}

	client := store.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable, using in-memory cache and sessions")
		return store.NewMemoryCache(), memorySessions
	}

	logger.Info().Str("address", cfg.Redis.Address).Msg("redis cache tier ready")
	redisSessions := store.NewRedisSessionStore(client, sessionTTL)
	return store.NewRedisCache(client), store.NewFailoverSessionStore(redisSessions, memorySessions, logger)
}

func initSheetsMirror(ctx context.Context, cfg *config.Config, chain *store.Chain, logger *zerolog.Logger) (*worker.Mirror, error) {
	if !cfg.Sheets.Enabled {
		return nil, nil
	}

	sheetsService, err := sheets.New(cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("sheets init: %w", err)
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		return nil, fmt.Errorf("sheets connection test: %w", err)
	}

	mirror := worker.NewMirror(chain, sheetsService, worker.RetryPolicy{}, logger)
	go mirror.Run(ctx)
	mirror.Kick() // push the current state once on start
	logger.Info().Str("spreadsheet", cfg.Sheets.SpreadsheetID).Msg("sheets mirror enabled")
	return mirror, nil
}

// mirrorOrNil keeps the services' MirrorEnqueuer interface value nil when no
// mirror runs, instead of a typed nil pointer.
func mirrorOrNil(m *worker.Mirror) domain.MirrorEnqueuer {
	if m == nil {
		return nil
	}
	return m
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
