package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/catalog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/database"
	"github.com/stemsi/questionnaire/internal/handler"
	"github.com/stemsi/questionnaire/internal/logger"
	"github.com/stemsi/questionnaire/internal/router"
	"github.com/stemsi/questionnaire/internal/service"
	"github.com/stemsi/questionnaire/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("guard_store", cfg.GuardStore).
		Dur("guard_window", cfg.GuardWindow).
		Msg("Starting questionnaire server")
	if cfg.DeveloperMode {
		log.Warn().Msg("DEVELOPER_MODE is on: duplicate submissions are not blocked")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Questionnaire ────────────────────────────────────────────
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load question catalog")
	}
	log.Info().Int("questions", len(cat.Questions)).Msg("Question catalog loaded")

	// ─── Open Guard Store ──────────────────────────────────────────────
	store, closeStore, err := database.OpenStateStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open guard store")
	}
	defer closeStore()

	var stores handler.StoreFactory = handler.SharedStore
	if store == nil {
		stores = handler.CookieStores(cfg)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	guard := service.NewSubmissionGuard(cfg, store, log)
	client := service.NewSubmissionClient(cfg, log)
	survey := service.NewSurveyService(cfg, cat, guard, client, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Survey:     handler.NewSurveyHandler(survey, stores, log),
		Submission: handler.NewSubmissionHandler(survey, stores, log),
		System:     handler.NewSystemHandler(store, cfg.GuardStore, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r, err := router.SetupRouter(ctx, handlers, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up router")
	}

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// Let in-flight submissions reach the backend (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
