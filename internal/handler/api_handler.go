package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/model"
	"github.com/stemsi/questionnaire/internal/response"
	"github.com/stemsi/questionnaire/internal/service"
	"github.com/stemsi/questionnaire/internal/validator"
)

// SubmissionHandler is the JSON variant of the survey for script clients.
type SubmissionHandler struct {
	survey *service.SurveyService
	stores StoreFactory
	log    zerolog.Logger
}

func NewSubmissionHandler(survey *service.SurveyService, stores StoreFactory, log zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		survey: survey,
		stores: stores,
		log:    log.With().Str("component", "submission_handler").Logger(),
	}
}

// GetQuestions godoc
// GET /api/v1/questions
func (h *SubmissionHandler) GetQuestions(c *gin.Context) {
	cat := h.survey.Catalog()
	response.Success(c, http.StatusOK, gin.H{
		"questions":       cat.Questions,
		"sector_question": cat.SectorQuestion,
		"other_option":    cat.OtherOption,
	})
}

// GetStatus godoc
// GET /api/v1/submissions/status
func (h *SubmissionHandler) GetStatus(c *gin.Context) {
	state, err := h.survey.Begin(c.Request.Context(), respondentProbe(c, nil, h.log), h.stores(c))
	if err != nil {
		h.log.Error().Err(err).Msg("submission guard unavailable")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": state.String()})
}

// CreateSubmission godoc
// POST /api/v1/submissions
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var req model.SubmissionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	outcome, err := h.survey.Submit(c.Request.Context(), service.SubmitRequest{
		Probe:  respondentProbe(c, req.Hints, h.log),
		Host:   c.Request.Host,
		Fields: req.Fields,
		Store:  h.stores(c),
	})

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, map[string]string{verr.Field: verr.Message})
		return
	case errors.Is(err, service.ErrSubmissionInFlight):
		response.Fail(c, http.StatusConflict, response.ErrSubmissionInFlight)
		return
	case err != nil && outcome == nil:
		h.log.Error().Err(err).Msg("submission failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	case err != nil:
		h.log.Error().Err(err).Msg("submission accepted but not recorded")
	}

	switch outcome.Kind {
	case service.OutcomeCompleted:
		response.Success(c, http.StatusCreated, gin.H{
			"outcome":    outcome.Kind.String(),
			"completion": outcome.Completion,
		})
	case service.OutcomeDuplicate:
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
	case service.OutcomeRejected:
		response.FailWithDetail(c, http.StatusBadGateway, response.ErrUpstreamRejected, outcome.ErrorText)
	default:
		response.FailWithDetail(c, http.StatusServiceUnavailable, response.ErrUpstreamUnreachable, outcome.ErrorText)
	}
}
