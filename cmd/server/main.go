package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lalith-99/autoapprove/internal/api"
	"github.com/lalith-99/autoapprove/internal/auth"
	"github.com/lalith-99/autoapprove/internal/bot"
	"github.com/lalith-99/autoapprove/internal/config"
	"github.com/lalith-99/autoapprove/internal/db"
	"github.com/lalith-99/autoapprove/internal/feed"
	"github.com/lalith-99/autoapprove/internal/observ"
	"github.com/lalith-99/autoapprove/internal/repository"
	"github.com/lalith-99/autoapprove/internal/repository/file"
	"github.com/lalith-99/autoapprove/internal/repository/memory"
	"github.com/lalith-99/autoapprove/internal/repository/postgres"
	redisrepo "github.com/lalith-99/autoapprove/internal/repository/redis"
	"github.com/lalith-99/autoapprove/internal/repository/sqlite"
	"github.com/lalith-99/autoapprove/internal/scheduler"
	"github.com/lalith-99/autoapprove/internal/state"
	"github.com/lalith-99/autoapprove/internal/telegram"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load and validate config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.FlushSchedule != "" {
		if err := scheduler.ValidateSchedule(cfg.FlushSchedule); err != nil {
			return fmt.Errorf("invalid FLUSH_SCHEDULE: %w", err)
		}
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// SIGINT/SIGTERM cancel ctx; everything below winds down from that.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 3. Snapshot backend
	// ---------------------------------------------------------------
	checks := map[string]api.HealthCheck{}

	var snapshots repository.SnapshotRepository
	switch cfg.StateBackend {
	case config.BackendPostgres:
		database, err := db.NewPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		store := postgres.NewSnapshotStore(database.Pool())
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure postgres schema: %w", err)
		}
		snapshots = store
		checks["postgres"] = database.Health
	case config.BackendSQLite:
		conn, err := db.NewSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		defer conn.Close()

		store := sqlite.NewSnapshotStore(conn)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure sqlite schema: %w", err)
		}
		snapshots = store
		checks["sqlite"] = conn.PingContext
	default:
		snapshots = file.NewSnapshotStore(cfg.DataFile)
	}

	// ---------------------------------------------------------------
	// 4. Session flags
	// ---------------------------------------------------------------
	var sessions repository.SessionRepository = memory.NewSessionStore()
	if cfg.SessionBackend == config.SessionRedis {
		client, err := db.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()

		sessions = redisrepo.NewSessionStore(client, cfg.SessionTTL)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	// ---------------------------------------------------------------
	// 5. Load state
	//
	// A corrupt snapshot is logged and the bot starts empty; it is not a
	// reason to refuse to approve joins.
	// ---------------------------------------------------------------
	policy := state.FlushImmediate
	if cfg.FlushSchedule != "" {
		policy = state.FlushDeferred
	}
	st := state.New(snapshots, logger.Named("state"), state.WithFlushPolicy(policy))
	if err := st.Load(ctx); err != nil {
		logger.Warn("continuing with empty state", zap.Error(err))
	}

	// ---------------------------------------------------------------
	// 6. Telegram client, live feed, dispatcher
	// ---------------------------------------------------------------
	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}

	hub := feed.NewHub(logger.Named("feed"))
	go hub.Run(ctx)

	handler := bot.NewHandler(
		st,
		sessions,
		telegram.NewClient(botAPI, logger.Named("telegram")),
		cfg.AdminID,
		logger.Named("bot"),
		bot.WithPublisher(hub),
	)
	dispatcher := bot.NewDispatcher(handler, logger.Named("dispatcher"))

	// ---------------------------------------------------------------
	// 7. Update source
	// ---------------------------------------------------------------
	var (
		updates     <-chan bot.Update
		webhook     *api.WebhookHandler
		closeSource = func() {}
	)
	switch cfg.Transport {
	case config.TransportWebhook:
		source := telegram.NewWebhookSource(cfg.UpdateBuffer, logger.Named("webhook"))
		if err := telegram.RegisterWebhook(botAPI, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return err
		}
		updates = source.Updates()
		webhook = api.NewWebhookHandler(cfg.WebhookSecret, source, logger.Named("webhook"))
		closeSource = source.Close
	default:
		if err := telegram.DeleteWebhook(botAPI); err != nil {
			return err
		}
		// The poller stops on ctx and closes the stream itself.
		updates = telegram.NewPoller(botAPI, cfg.PollTimeout, cfg.UpdateBuffer, logger.Named("poller")).Start(ctx)
	}

	// ---------------------------------------------------------------
	// 8. Flush scheduler (deferred policy only)
	// ---------------------------------------------------------------
	var sched *scheduler.Scheduler
	if policy == state.FlushDeferred {
		sched, err = scheduler.NewScheduler(cfg.FlushSchedule, st, logger.Named("scheduler"))
		if err != nil {
			return err
		}
		sched.Start()
	}

	// ---------------------------------------------------------------
	// 9. HTTP server
	// ---------------------------------------------------------------
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator := auth.NewValidator(cfg.JWTSecret, cfg.AdminID)
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: api.NewRouter(api.RouterConfig{
			State:        st,
			Validator:    validator,
			AdminID:      cfg.AdminID,
			PasswordHash: cfg.AdminPasswordHash,
			JWTSecret:    cfg.JWTSecret,
			CORSOrigins:  cfg.CORSOrigins,
			HealthChecks: checks,
			Webhook:      webhook,
			Events:       hub.Handler(validator, cfg.CORSOrigins),
			Logger:       logger.Named("http"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ---------------------------------------------------------------
	// 10. Run
	// ---------------------------------------------------------------
	dispatcherDone := make(chan error, 1)
	go func() { dispatcherDone <- dispatcher.Run(ctx, updates) }()

	logger.Info("auto-approve bot started",
		zap.String("bot", botAPI.Self.UserName),
		zap.Int64("admin_id", cfg.AdminID),
		zap.String("transport", cfg.Transport),
		zap.String("state_backend", snapshots.Name()),
		zap.String("session_backend", cfg.SessionBackend),
		zap.Stringer("flush_policy", policy),
		zap.String("port", cfg.Port),
		zap.Bool("admin_api", cfg.AdminAPIEnabled()),
	)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
		logger.Error("http server failed, shutting down", zap.Error(err))
		stop()
	case err := <-dispatcherDone:
		return fmt.Errorf("dispatcher: %w", err)
	}

	// ---------------------------------------------------------------
	// 11. Graceful shutdown
	//
	// Order: stop taking updates, let the dispatcher finish what is queued,
	// stop the flush job, write the final snapshot, then close HTTP.
	// ---------------------------------------------------------------
	closeSource()
	if err := <-dispatcherDone; err != nil {
		logger.Error("dispatcher stopped with error", zap.Error(err))
	}

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := st.Flush(shutdownCtx); err != nil {
		logger.Error("final flush failed", zap.Error(err))
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("auto-approve bot stopped")
	return runErr
}
