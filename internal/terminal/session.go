package terminal

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/fingerprint"
	"github.com/stemsi/questionnaire/internal/service"
)

const guardUnavailableNotice = "Impossible de vérifier votre participation pour le moment. Veuillez réessayer plus tard."

// Session runs the questionnaire once on a terminal.
type Session struct {
	survey   *service.SurveyService
	prompter *Prompter
	probe    fingerprint.EnvironmentProbe
	host     string
	log      zerolog.Logger
}

// NewSession creates a Session. host selects the backend the same way the
// page host does in a browser.
func NewSession(survey *service.SurveyService, prompter *Prompter, probe fingerprint.EnvironmentProbe, host string, log zerolog.Logger) *Session {
	return &Session{
		survey:   survey,
		prompter: prompter,
		probe:    probe,
		host:     host,
		log:      log.With().Str("component", "terminal_session").Logger(),
	}
}

// Run walks the respondent from the intro to the end message. A declined
// intro or retry ends the session without error.
func (s *Session) Run(ctx context.Context, title string) error {
	state, err := s.begin(ctx)
	if err != nil {
		return err
	}
	if state == service.GuardBlocked {
		s.prompter.AlreadySubmitted()
		return nil
	}

	start, err := s.prompter.Intro(title)
	if err != nil || !start {
		return err
	}

	// The start button re-checks the guard.
	if state, err = s.begin(ctx); err != nil {
		return err
	}
	if state == service.GuardBlocked {
		s.prompter.AlreadySubmitted()
		return nil
	}

	fields, err := s.prompter.Ask()
	if err != nil {
		return err
	}

	for {
		outcome, err := s.survey.Submit(ctx, service.SubmitRequest{
			Probe:  s.probe,
			Host:   s.host,
			Fields: fields,
		})

		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			s.prompter.Notice(verr.Message)
			if fields, err = s.prompter.Revise(fields, verr.Field); err != nil {
				return err
			}
			continue
		case err != nil && outcome == nil:
			return err
		case err != nil:
			s.log.Error().Err(err).Msg("submission accepted but not recorded")
		}

		switch outcome.Kind {
		case service.OutcomeCompleted:
			s.prompter.Completion(outcome.Completion)
			return nil
		case service.OutcomeDuplicate:
			s.prompter.AlreadySubmitted()
			return nil
		}

		s.prompter.Notice(outcome.Notice())
		retry, err := s.prompter.Confirm("Réessayer l'envoi ?")
		if err != nil || !retry {
			return err
		}
	}
}

// begin checks the guard. When the local state cannot be read the
// respondent is told before answering anything, since the submission would
// fail on the same read.
func (s *Session) begin(ctx context.Context) (service.GuardState, error) {
	state, err := s.survey.Begin(ctx, s.probe, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("submission guard unavailable")
		s.prompter.Notice(guardUnavailableNotice)
		return state, err
	}
	return state, nil
}

// Reset forgets this terminal's last submission.
func (s *Session) Reset(ctx context.Context) error {
	return s.survey.Reset(ctx, s.probe, nil)
}
