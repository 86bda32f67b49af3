package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/repository"
	"github.com/stemsi/questionnaire/internal/response"
)

const (
	healthTimeout  = 2 * time.Second
	healthProbeKey = "questionnaire_health"
)

// SystemHandler reports process and guard store health.
type SystemHandler struct {
	store     repository.StateStore
	storeKind string
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a SystemHandler. store is the shared guard store,
// nil when state lives in respondents' cookies.
func NewSystemHandler(store repository.StateStore, storeKind string, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		store:     store,
		storeKind: storeKind,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status     string `json:"status"`
	Uptime     string `json:"uptime"`
	GuardStore string `json:"guard_store"`
	Goroutines int    `json:"goroutines"`
	GoVersion  string `json:"go_version"`
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	report := healthReport{
		Status:     "ok",
		Uptime:     formatDuration(time.Since(h.startTime)),
		GuardStore: h.storeKind,
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if _, _, err := h.store.Get(ctx, healthProbeKey); err != nil {
			h.log.Error().Err(err).Msg("guard store health check failed")
			report.Status = "degraded"
			response.FailWithData(c, http.StatusServiceUnavailable, response.ErrInternal, report)
			return
		}
	}

	response.Success(c, http.StatusOK, report)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
