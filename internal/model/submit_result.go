package model

import (
	"encoding/json"
	"strings"
)

// Completion texts shown when the backend does not supply its own.
const (
	DefaultCompletionMessage = "Le questionnaire est désormais terminé"
	DefaultCompletionDetails = "Les résultats sont en cours de traitement et vous seront communiqués par projection à l'écran dans un court instant..."
	DefaultCompletionThanks  = "Nous vous remercions pour votre participation et vous souhaitons une agréable fin de journée!"
	// The legacy single-message shape historically fell back to a slightly different sign-off.
	legacyCompletionThanks = "Nous vous remercions pour votre participation et vous souhaitons une agréable journée!"
)

// Completion is the three-line end message rendered after a successful submission.
type Completion struct {
	Message string `json:"message"`
	Details string `json:"details"`
	Thanks  string `json:"thanks"`
}

// SubmitResult is the parsed body of a successful /submit response.
// Exactly one of StructuredResult, LegacyResult or EmptyResult.
type SubmitResult interface {
	Completion() Completion
	isSubmitResult()
}

// StructuredResult is the {success, message, details, thanks} shape.
type StructuredResult struct {
	Message string
	Details string
	Thanks  string
}

// LegacyResult is the {message} shape with newline-delimited lines.
type LegacyResult struct {
	Message string
}

// EmptyResult is any body carrying neither shape.
type EmptyResult struct{}

func (StructuredResult) isSubmitResult() {}
func (LegacyResult) isSubmitResult()     {}
func (EmptyResult) isSubmitResult()      {}

func (r StructuredResult) Completion() Completion {
	return Completion{Message: r.Message, Details: r.Details, Thanks: r.Thanks}
}

func (r LegacyResult) Completion() Completion {
	lines := strings.Split(r.Message, "\n")
	line := func(i int, fallback string) string {
		if i < len(lines) && lines[i] != "" {
			return lines[i]
		}
		return fallback
	}
	return Completion{
		Message: line(0, DefaultCompletionMessage),
		Details: line(1, DefaultCompletionDetails),
		Thanks:  line(2, legacyCompletionThanks),
	}
}

func (EmptyResult) Completion() Completion {
	return Completion{
		Message: DefaultCompletionMessage,
		Details: DefaultCompletionDetails,
		Thanks:  DefaultCompletionThanks,
	}
}

// submitBody mirrors every field either response shape may carry.
type submitBody struct {
	Success bool            `json:"success"`
	Message json.RawMessage `json:"message"`
	Details string          `json:"details"`
	Thanks  string          `json:"thanks"`
}

// ParseSubmitResult resolves a success body into its shape. Precedence:
// structured (success with all three texts), then legacy (string message),
// then empty. Bodies that are absent or not JSON objects are empty.
func ParseSubmitResult(body []byte) SubmitResult {
	var b submitBody
	if len(body) == 0 || json.Unmarshal(body, &b) != nil {
		return EmptyResult{}
	}

	var message string
	if err := json.Unmarshal(b.Message, &message); err != nil {
		message = ""
	}

	if b.Success && message != "" && b.Details != "" && b.Thanks != "" {
		return StructuredResult{Message: message, Details: b.Details, Thanks: b.Thanks}
	}
	if message != "" {
		return LegacyResult{Message: message}
	}
	return EmptyResult{}
}

// ErrorBody mirrors a failed /submit response.
type ErrorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message json.RawMessage `json:"message"`
}

// UnknownErrorText is used when a rejection carries no usable text.
const UnknownErrorText = "Erreur inconnue"

// ParseErrorText extracts the best available text from a rejection body:
// detail, then message, then a generic fallback. Non-string values (such as
// a list of validation problems) are reported as their raw JSON.
func ParseErrorText(body []byte) string {
	var b ErrorBody
	if len(body) == 0 || json.Unmarshal(body, &b) != nil {
		return UnknownErrorText
	}
	for _, raw := range []json.RawMessage{b.Detail, b.Message} {
		if text := rawText(raw); text != "" {
			return text
		}
	}
	return UnknownErrorText
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
