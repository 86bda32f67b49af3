package router

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/handler"
	"github.com/stemsi/questionnaire/internal/middleware"
	"github.com/stemsi/questionnaire/internal/render"
	"github.com/stemsi/questionnaire/internal/response"
)

const submitRatePeriod = time.Minute

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Survey     *handler.SurveyHandler
	Submission *handler.SubmissionHandler
	System     *handler.SystemHandler
}

// SetupRouter configures the survey pages and the JSON API. Rate limiter
// sweeps run until ctx is done.
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config, log zerolog.Logger) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	tmpl, err := render.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Request ID first so the request logger can report it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log.With().Str("component", "http").Logger()))
	router.Use(middleware.SecureHeaders(cfg.GinMode == gin.DebugMode))
	router.Use(middleware.Brotli())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept-Language", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/health", handlers.System.Health)

	// ─── Survey pages ──────────────────────────────────────────────────
	formLimiter := middleware.NewRateLimiter(cfg.SubmitRateLimit, submitRatePeriod).
		OnLimit(handlers.Survey.TooManyRequests)
	go formLimiter.Run(ctx)

	pages := router.Group("/")
	pages.Use(middleware.NoStore())
	{
		pages.GET("/", handlers.Survey.Intro)
		pages.GET("/quiz", handlers.Survey.Quiz)
		pages.POST("/submit", formLimiter.Middleware(), handlers.Survey.Submit)
	}

	// ─── JSON API ──────────────────────────────────────────────────────
	apiLimiter := middleware.NewRateLimiter(cfg.SubmitRateLimit, submitRatePeriod)
	go apiLimiter.Run(ctx)

	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())
	{
		api.GET("/questions", handlers.Submission.GetQuestions)
		api.GET("/submissions/status", handlers.Submission.GetStatus)
		api.POST("/submissions", apiLimiter.Middleware(), handlers.Submission.CreateSubmission)
	}

	return router, nil
}
