package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/model"
	"github.com/stemsi/questionnaire/internal/render"
	"github.com/stemsi/questionnaire/internal/response"
	"github.com/stemsi/questionnaire/internal/service"
	"github.com/stemsi/questionnaire/internal/validator"
)

// SurveyHandler serves the server-rendered survey page.
type SurveyHandler struct {
	survey *service.SurveyService
	stores StoreFactory
	log    zerolog.Logger
}

func NewSurveyHandler(survey *service.SurveyService, stores StoreFactory, log zerolog.Logger) *SurveyHandler {
	return &SurveyHandler{
		survey: survey,
		stores: stores,
		log:    log.With().Str("component", "survey_handler").Logger(),
	}
}

// Intro godoc
// GET /
func (h *SurveyHandler) Intro(c *gin.Context) {
	if h.blocked(c) {
		h.page(c, http.StatusOK, render.NewPage(render.PanelSubmitted))
		return
	}
	h.page(c, http.StatusOK, render.NewPage(render.PanelIntro))
}

// Quiz godoc
// GET /quiz
func (h *SurveyHandler) Quiz(c *gin.Context) {
	if h.blocked(c) {
		h.page(c, http.StatusOK, render.NewPage(render.PanelSubmitted))
		return
	}
	h.page(c, http.StatusOK, h.quizPage(nil, ""))
}

// Submit godoc
// POST /submit
func (h *SurveyHandler) Submit(c *gin.Context) {
	fields, err := readFormFields(c.Request)
	// An empty post is left to the collector, which names the first
	// unanswered question.
	if err == nil && len(fields) > 0 {
		if problems := validator.Struct(&model.SubmissionRequest{Fields: fields}); problems != nil {
			h.log.Warn().Interface("problems", problems).Msg("malformed survey form")
			err = errors.New("malformed form fields")
		}
	}
	if err != nil {
		h.page(c, http.StatusBadRequest, h.quizPage(nil, response.GetMessage(response.ErrInvalidPayload)))
		return
	}

	outcome, err := h.survey.Submit(c.Request.Context(), service.SubmitRequest{
		Probe:  respondentProbe(c, nil, h.log),
		Host:   c.Request.Host,
		Fields: fields,
		Store:  h.stores(c),
	})

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		h.page(c, http.StatusUnprocessableEntity, h.quizPage(fields, verr.Message))
		return
	case errors.Is(err, service.ErrSubmissionInFlight):
		h.page(c, http.StatusConflict, h.quizPage(fields, response.GetMessage(response.ErrSubmissionInFlight)))
		return
	case err != nil && outcome == nil:
		h.log.Error().Err(err).Msg("submission failed")
		h.page(c, http.StatusInternalServerError, h.quizPage(fields, response.GetMessage(response.ErrInternal)))
		return
	case err != nil:
		// The answers were accepted; only the local record failed.
		h.log.Error().Err(err).Msg("submission accepted but not recorded")
	}

	switch outcome.Kind {
	case service.OutcomeCompleted:
		page := render.NewPage(render.PanelResults)
		page.Completion = outcome.Completion
		h.page(c, http.StatusOK, page)
	case service.OutcomeDuplicate:
		h.page(c, http.StatusOK, render.NewPage(render.PanelSubmitted))
	default:
		h.page(c, http.StatusBadGateway, h.quizPage(fields, outcome.Notice()))
	}
}

// blocked reports whether the guard refuses this respondent. Store failures
// are logged and let the page through.
func (h *SurveyHandler) blocked(c *gin.Context) bool {
	state, err := h.survey.Begin(c.Request.Context(), respondentProbe(c, nil, h.log), h.stores(c))
	if err != nil {
		h.log.Error().Err(err).Msg("submission guard unavailable")
		return false
	}
	return state == service.GuardBlocked
}

func (h *SurveyHandler) quizPage(fields []model.FormField, notice string) render.Page {
	page := render.NewPage(render.PanelQuiz)
	page.Form = render.BuildForm(h.survey.Catalog(), render.StateFromFields(fields))
	page.Notice = notice
	return page
}

func (h *SurveyHandler) page(c *gin.Context, status int, page render.Page) {
	c.HTML(status, render.PageTemplate, page)
}

// TooManyRequests answers a rate-limited form post, keeping the answers.
func (h *SurveyHandler) TooManyRequests(c *gin.Context) {
	fields, _ := readFormFields(c.Request)
	c.Abort()
	h.page(c, http.StatusTooManyRequests, h.quizPage(fields, response.GetMessage(response.ErrRateLimitExceeded)))
}
