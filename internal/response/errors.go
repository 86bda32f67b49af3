package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Submission ────────────────────────────────────────────────────
	ErrAlreadySubmitted    ErrCode = "ALREADY_SUBMITTED"
	ErrSubmissionInFlight  ErrCode = "SUBMISSION_IN_FLIGHT"
	ErrUpstreamRejected    ErrCode = "UPSTREAM_REJECTED"
	ErrUpstreamUnreachable ErrCode = "UPSTREAM_UNREACHABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation échouée. Veuillez vérifier vos réponses."
	case ErrInvalidPayload:
		return "Contenu de la requête invalide."

	// ─── Submission ────────────────────────────────────────────────────
	case ErrAlreadySubmitted:
		return "Vous avez déjà participé à ce questionnaire. Merci pour votre contribution !"
	case ErrSubmissionInFlight:
		return "Un envoi est déjà en cours. Veuillez patienter."
	case ErrUpstreamRejected:
		return "Erreur lors de l'envoi des données."
	case ErrUpstreamUnreachable:
		return "Une erreur s'est produite lors de l'envoi des données."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Trop de requêtes. Veuillez réessayer plus tard."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Erreur interne du serveur."
	default:
		return "Une erreur inattendue s'est produite."
	}
}
