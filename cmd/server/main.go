package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/preptly/cbt-gateway/internal/config"
	"github.com/preptly/cbt-gateway/internal/database"
	"github.com/preptly/cbt-gateway/internal/gateway"
	"github.com/preptly/cbt-gateway/internal/handler"
	"github.com/preptly/cbt-gateway/internal/history"
	"github.com/preptly/cbt-gateway/internal/logger"
	"github.com/preptly/cbt-gateway/internal/model"
	"github.com/preptly/cbt-gateway/internal/router"
	"github.com/preptly/cbt-gateway/internal/session"
	"github.com/preptly/cbt-gateway/internal/store"
	"github.com/preptly/cbt-gateway/internal/validator"
	"github.com/preptly/cbt-gateway/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("exam_api", cfg.ExamAPIURL).
		Msg("Starting CBT Gateway")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Core Components ────────────────────────────────────
	st := store.NewRedisStore(rdb)
	gw := gateway.NewClient(cfg.ExamAPIURL, cfg.ExamAPITimeout, log)
	attemptRepo := history.NewRepository(pool)

	sessionCfg := session.Config{
		ClockBudget:  cfg.ClockBudget,
		AdvanceDelay: cfg.AdvanceDelay,
	}

	// Finalized attempts go through the archive queue, never inline.
	onFinalized := func(userID string, kind session.ExamKind, subjects []string, result *model.ExamResult) {
		payload := worker.AttemptPayload{
			UserID:        userID,
			SessionID:     result.SessionID,
			Kind:          kind.String(),
			Subjects:      subjects,
			SubjectScores: result.SubjectScores,
			TotalScore:    result.TotalScore,
			MaxScore:      result.MaxScore(),
			TimeSpent:     result.TimeSpent,
		}
		if err := worker.EnqueueAttempt(context.Background(), rdb, payload); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Attempt enqueue failed")
		}
	}

	manager := session.NewManager(sessionCfg, gw, st, log, onFinalized)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Quiz:        handler.NewQuizHandler(manager),
		Profile:     handler.NewProfileHandler(gw, attemptRepo),
		Leaderboard: handler.NewLeaderboardHandler(attemptRepo),
		Preference:  handler.NewPreferenceHandler(st),
		Calculator:  handler.NewCalculatorHandler(),
		WS:          handler.NewWSHandler(manager, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	attemptWorker := worker.NewAttemptWorker(attemptRepo, rdb, log)
	go attemptWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the worker and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow worker to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
