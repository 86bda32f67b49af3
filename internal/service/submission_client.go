package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/model"
)

const maxResponseBytes = 1 << 20

// OutcomeKind classifies how a submission attempt ended.
type OutcomeKind int

const (
	// OutcomeCompleted: the backend accepted the answers.
	OutcomeCompleted OutcomeKind = iota
	// OutcomeDuplicate: already submitted, detected locally or by a 409.
	OutcomeDuplicate
	// OutcomeRejected: any other non-2xx status. The form stays usable.
	OutcomeRejected
	// OutcomeTransportError: the request never completed. The form stays usable.
	OutcomeTransportError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Outcome is the interpreted result of a submission attempt.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	// Result and Completion are set for OutcomeCompleted.
	Result     model.SubmitResult
	Completion model.Completion
	// ErrorText is the server-supplied or transport failure text.
	ErrorText string
}

// Notice is the blocking user-facing message for a failed attempt.
func (o *Outcome) Notice() string {
	switch o.Kind {
	case OutcomeRejected:
		return "Erreur lors de l'envoi des données : " + o.ErrorText
	case OutcomeTransportError:
		return "Une erreur s'est produite lors de l'envoi des données : " + o.ErrorText
	default:
		return ""
	}
}

// SubmissionClient posts answer records to the remote /submit endpoint.
// It never retries.
type SubmissionClient struct {
	httpClient *http.Client
	log        zerolog.Logger
}

// NewSubmissionClient creates a SubmissionClient. A zero SubmitTimeout
// leaves timing to the transport.
func NewSubmissionClient(cfg *config.Config, log zerolog.Logger) *SubmissionClient {
	return NewSubmissionClientWith(&http.Client{Timeout: cfg.SubmitTimeout}, log)
}

// NewSubmissionClientWith creates a SubmissionClient around an existing http.Client.
func NewSubmissionClientWith(httpClient *http.Client, log zerolog.Logger) *SubmissionClient {
	return &SubmissionClient{
		httpClient: httpClient,
		log:        log.With().Str("component", "submission_client").Logger(),
	}
}

// Submit sends record to endpoint. Transport and server failures are
// reported through the Outcome; the error is reserved for requests that
// could not be built.
func (c *SubmissionClient) Submit(ctx context.Context, endpoint string, record *model.AnswerRecord) (*Outcome, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build submit request: %w", err)
	}
	reqID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	log := c.log.With().Str("request_id", reqID).Str("endpoint", endpoint).Logger()
	log.Debug().RawJSON("answers", body).Msg("sending answers")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("submit request failed")
		return &Outcome{Kind: OutcomeTransportError, ErrorText: err.Error()}, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Error().Err(err).Int("status", resp.StatusCode).Msg("reading submit response failed")
		return &Outcome{Kind: OutcomeTransportError, StatusCode: resp.StatusCode, ErrorText: err.Error()}, nil
	}

	outcome := interpret(resp.StatusCode, respBody)
	ev := log.Info()
	if outcome.Kind != OutcomeCompleted {
		ev = log.Warn().Bytes("body", respBody)
	}
	ev.Int("status", resp.StatusCode).Stringer("outcome", outcome.Kind).Msg("submit response")
	return outcome, nil
}

func interpret(status int, body []byte) *Outcome {
	switch {
	case status >= 200 && status < 300:
		result := model.ParseSubmitResult(body)
		return &Outcome{
			Kind:       OutcomeCompleted,
			StatusCode: status,
			Result:     result,
			Completion: result.Completion(),
		}
	case status == http.StatusConflict:
		return &Outcome{Kind: OutcomeDuplicate, StatusCode: status}
	default:
		return &Outcome{Kind: OutcomeRejected, StatusCode: status, ErrorText: model.ParseErrorText(body)}
	}
}
