package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"skin-assessment-service/internal/app"
	"skin-assessment-service/internal/config"
	"skin-assessment-service/internal/domain"
	"skin-assessment-service/internal/infra/memory"
	"skin-assessment-service/internal/infra/outbound"
	"skin-assessment-service/internal/infra/pixel"
	pgloader "skin-assessment-service/internal/infra/postgres"
	infraredis "skin-assessment-service/internal/infra/redis"
	"skin-assessment-service/internal/infra/webhook"
	"skin-assessment-service/internal/logger"
	transport "skin-assessment-service/internal/transport/http"
)

const defaultPacing = 400 * time.Millisecond

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(os.Stdout, cfg.Log.Level)
	if err != nil {
		log.Warn("invalid log level", "error", err)
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionBankLoader = memory.NewStaticQuestionBankLoader(domain.DefaultQuestionBank())
	if pool != nil {
		loader = pgloader.NewQuestionBankLoader(pool)
	}

	// Zero keeps a loaded bank for the life of the process.
	bankTTL := config.TTLDuration(cfg.Quiz.TTL, 0)
	var banks app.QuestionBankRepository
	if redisClient != nil {
		banks = infraredis.NewQuestionBankRepository(redisClient, loader, bankTTL)
	} else {
		banks = memory.NewQuestionBankRepository(loader, bankTTL)
	}

	var store interface {
		app.SessionRepository
		transport.SessionCounter
	}
	if redisClient != nil {
		store = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	sender := outbound.NewSender(nil, config.TTLDuration(cfg.Webhook.Timeout, 10*time.Second), log)
	dispatcher := webhook.NewDispatcher(cfg.Webhook.URL, sender, log.With("component", "webhook"))
	tracker := pixel.NewTracker(pixel.Config{
		Enabled:     cfg.Pixel.Enabled,
		TestMode:    cfg.Pixel.TestMode,
		PixelID:     cfg.Pixel.PixelID,
		Endpoint:    cfg.Pixel.Endpoint,
		AccessToken: cfg.Pixel.AccessToken,
	}, sender, log.With("component", "pixel"))

	service := app.NewAssessmentService(store, banks, dispatcher, tracker, app.Settings{
		BankID: cfg.Quiz.BankID,
		Pacing: config.TTLDuration(cfg.Quiz.Pacing, defaultPacing),
		Tags:   cfg.LeadTags(),
		Booking: app.BookingLinks{
			Suitable:    cfg.Booking.SuitableURL,
			Alternative: cfg.Booking.AlternativeURL,
		},
	})

	// Fail fast on a missing or malformed bank rather than on the first connection.
	if _, err := service.QuestionBank(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           transport.NewRouter(service, store, log),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting assessment service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	drainOutbound(shutdownCtx, log, sender)
	return err
}

// drainOutbound gives in-flight webhook and pixel posts until ctx expires.
func drainOutbound(ctx context.Context, log *slog.Logger, sender *outbound.Sender) {
	if err := sender.Wait(ctx); err != nil {
		log.Warn("outbound requests still in flight at shutdown", "error", err)
	}
}
