package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mytrade/internal/auth"
	"mytrade/internal/backend"
	"mytrade/internal/commons"
	"mytrade/internal/config"
	"mytrade/internal/credentials"
	"mytrade/internal/events"
	"mytrade/internal/infrastructure/logger"
	"mytrade/internal/infrastructure/mysql"
	"mytrade/internal/infrastructure/redis"
	"mytrade/internal/infrastructure/tracing"
	"mytrade/internal/order"
	"mytrade/internal/order/repository"
	"mytrade/internal/order/usecase"
	"mytrade/internal/presence"
	"mytrade/internal/product"
	"mytrade/internal/server"
)

const (
	purgeInterval        = time.Hour
	defaultSessionMaxAge = 7 * 24 * time.Hour
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := commons.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Tracing.ServiceName)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	if defaults := cfg.DefaultSecrets(); len(defaults) > 0 {
		if !cfg.IsDevelopment() {
			zapLogger.Fatal("refusing to start with default secrets outside development",
				zap.Strings("keys", defaults),
				zap.String("environment", cfg.Tracing.Environment),
			)
		}
		zapLogger.Warn("using default secrets, set them before deploying", zap.Strings("keys", defaults))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		zapLogger.Fatal("initializing tracing", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			zapLogger.Warn("flushing traces failed", zap.Error(err))
		}
	}()

	store, err := credentials.Open(cfg.Credentials.Path, cfg.Credentials.Secret)
	if err != nil {
		zapLogger.Fatal("opening credential store", zap.Error(err))
	}
	defer store.Close()

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, tracing.Transport(http.DefaultTransport))
	zapLogger.Info("backend configured", zap.String("baseUrl", client.BaseURL()))

	audit, db := openAudit(ctx, cfg, zapLogger)
	if db != nil {
		defer db.Close()
	}

	tracker := openPresence(cfg, zapLogger)

	var publisher usecase.EventPublisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zapLogger)
		defer kafka.Close()
		publisher = kafka
		zapLogger.Info("publishing order events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	authService := auth.NewService(client, store, zapLogger)
	sessionStore := auth.NewSessionStore(cfg.Server.SessionSecret, cfg.Server.SessionMaxAge, cfg.Server.SecureCookie)

	router := server.NewRouter(server.Handlers{
		Auth:     auth.NewHandler(authService, sessionStore, zapLogger),
		Orders:   order.NewModule(client, tracker, audit, publisher, authService, cfg, zapLogger),
		Products: product.NewModule(client, authService, zapLogger),
		Presence: presence.NewHandler(tracker, zapLogger),
	}, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	go purgeStaleSessions(ctx, authService, cfg.Server.SessionMaxAge)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
		return
	}

	zapLogger.Info("server stopped gracefully")
}

// openAudit connects the audit trail to MySQL when the database is enabled.
// Without it, actions still work but leave no history.
func openAudit(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (order.Audit, *sql.DB) {
	if !cfg.Database.Enabled {
		zapLogger.Info("database disabled, order history is not recorded")
		return repository.NopAuditRepository{}, nil
	}

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	zapLogger.Info("database connected")

	repo := repository.NewMySQLAuditRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		zapLogger.Fatal("preparing audit schema", zap.Error(err))
	}
	return repo, db
}

func openPresence(cfg *config.Config, zapLogger *zap.Logger) presence.Tracker {
	if !cfg.Redis.Enabled {
		return presence.NopTracker{}
	}

	client, err := redis.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Warn("redis unavailable, presence disabled", zap.Error(err))
		return presence.NopTracker{}
	}
	zapLogger.Info("redis connected", zap.String("address", cfg.Redis.Address))
	return presence.NewRedisTracker(client, cfg.Redis.PresenceTTL, zapLogger)
}

func purgeStaleSessions(ctx context.Context, svc *auth.Service, maxAge time.Duration) {
	if maxAge <= 0 {
		maxAge = defaultSessionMaxAge
	}
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	svc.PurgeStale(ctx, maxAge)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.PurgeStale(ctx, maxAge)
		}
	}
}
