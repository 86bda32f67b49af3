package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/catalog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/fingerprint"
	"github.com/stemsi/questionnaire/internal/model"
	"github.com/stemsi/questionnaire/internal/repository"
)

// ErrSubmissionInFlight is returned while a previous submission from the same
// device has not completed yet.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// SubmitRequest is one press of the submit button.
type SubmitRequest struct {
	Probe fingerprint.EnvironmentProbe
	// Host is the host the survey page was served from; it picks the API endpoint.
	Host   string
	Fields []model.FormField
	// Store, when set, replaces the guard's store for this request.
	Store repository.StateStore
}

// SurveyService wires the guard, the answer collector and the submission
// client into the page flow.
type SurveyService struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	guard     *SubmissionGuard
	collector *AnswerCollector
	client    *SubmissionClient
	log       zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewSurveyService creates a new SurveyService.
func NewSurveyService(
	cfg *config.Config,
	c *catalog.Catalog,
	guard *SubmissionGuard,
	client *SubmissionClient,
	log zerolog.Logger,
) *SurveyService {
	return &SurveyService{
		cfg:       cfg,
		catalog:   c,
		guard:     guard,
		collector: NewAnswerCollector(c),
		client:    client,
		log:       log.With().Str("component", "survey_service").Logger(),
		inFlight:  make(map[string]struct{}),
	}
}

// Catalog returns the questionnaire being served.
func (s *SurveyService) Catalog() *catalog.Catalog {
	return s.catalog
}

// Begin is the page-load (and start button) gate. A Blocked result means the
// form must not be shown at all.
func (s *SurveyService) Begin(ctx context.Context, probe fingerprint.EnvironmentProbe, store repository.StateStore) (GuardState, error) {
	return s.guardFor(store).CheckIfAlreadySubmitted(ctx, probe)
}

// Reset forgets the device's last submission.
func (s *SurveyService) Reset(ctx context.Context, probe fingerprint.EnvironmentProbe, store repository.StateStore) error {
	return s.guardFor(store).ResetSubmissionStatus(ctx, probe)
}

// Submit runs one submission attempt. Validation problems come back as a
// *ValidationError and never reach the network. When the backend accepted
// the answers but the guard could not record it, both the outcome and the
// error are returned.
func (s *SurveyService) Submit(ctx context.Context, req SubmitRequest) (*Outcome, error) {
	fp := fingerprint.Generate(req.Probe)
	if !s.acquire(fp) {
		return nil, ErrSubmissionInFlight
	}
	defer s.release(fp)

	guard := s.guardFor(req.Store)
	log := s.log.With().Str("fingerprint", fp).Logger()

	state, err := guard.CheckIfAlreadySubmitted(ctx, req.Probe)
	if err != nil {
		return nil, err
	}
	if state == GuardBlocked {
		log.Info().Msg("submission refused: already submitted from this device")
		return &Outcome{Kind: OutcomeDuplicate}, nil
	}

	record, err := s.collector.Build(req.Fields, fp)
	if err != nil {
		log.Debug().Err(err).Msg("answers rejected by validation")
		return nil, err
	}

	outcome, err := s.client.Submit(ctx, s.cfg.SubmitEndpoint(req.Host), record)
	if err != nil {
		return nil, err
	}

	if outcome.Kind == OutcomeCompleted {
		if err := guard.MarkAsSubmitted(ctx, req.Probe); err != nil {
			log.Error().Err(err).Msg("answers accepted but submission state not saved")
			return outcome, fmt.Errorf("mark as submitted: %w", err)
		}
	}
	return outcome, nil
}

func (s *SurveyService) guardFor(store repository.StateStore) *SubmissionGuard {
	if store == nil {
		return s.guard
	}
	return s.guard.WithStore(store)
}

func (s *SurveyService) acquire(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[fp]; busy {
		return false
	}
	s.inFlight[fp] = struct{}{}
	return true
}

func (s *SurveyService) release(fp string) {
	s.mu.Lock()
	delete(s.inFlight, fp)
	s.mu.Unlock()
}
