package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/fingerprint"
	"github.com/stemsi/questionnaire/internal/model"
	"github.com/stemsi/questionnaire/internal/repository"
	"github.com/stemsi/questionnaire/internal/validator"
)

const maxFormBytes = 64 << 10

var errFormTooLarge = errors.New("form body too large")

// StoreFactory returns the guard store for one request, or nil to use the
// service's shared store.
type StoreFactory func(c *gin.Context) repository.StateStore

// CookieStores keeps the guard state in signed cookies of each request.
func CookieStores(cfg *config.Config) StoreFactory {
	return func(c *gin.Context) repository.StateStore {
		return repository.NewCookieStateStore(c.Writer, c.Request, cfg.CookieSecret, cfg.CookieSecure)
	}
}

// SharedStore uses the service's store for every request.
func SharedStore(*gin.Context) repository.StateStore { return nil }

// respondentProbe builds the fingerprint probe for the request. Hints come
// from the body when given, else from the cookie the survey page sets.
func respondentProbe(c *gin.Context, hints *model.ClientHints, log zerolog.Logger) fingerprint.HintsProbe {
	probe := fingerprint.HintsProbe{
		UserAgent:      c.Request.UserAgent(),
		AcceptLanguage: c.GetHeader("Accept-Language"),
	}
	if hints != nil {
		probe.Hints = *hints
		return probe
	}

	raw, err := c.Cookie(config.StateKey.HintsCookie())
	if err != nil {
		return probe
	}
	decoded, err := decodeHints(raw)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable client hints cookie")
		return probe
	}
	probe.Hints = decoded
	return probe
}

// decodeHints reads the base64url JSON cookie written by the page script.
func decodeHints(raw string) (model.ClientHints, error) {
	var hints model.ClientHints
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
	if err != nil {
		return hints, err
	}
	if err := json.Unmarshal(data, &hints); err != nil {
		return hints, err
	}
	if fields := validator.Struct(&hints); fields != nil {
		return model.ClientHints{}, errors.New("client hints out of range")
	}
	return hints, nil
}

// EncodeHints is the inverse of decodeHints.
func EncodeHints(h model.ClientHints) string {
	data, _ := json.Marshal(h)
	return base64.RawURLEncoding.EncodeToString(data)
}

// readFormFields parses an urlencoded body keeping the order fields were
// submitted in.
func readFormFields(r *http.Request) ([]model.FormField, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFormBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxFormBytes {
		return nil, errFormTooLarge
	}

	var fields []model.FormField
	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(k)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, err
		}
		fields = append(fields, model.FormField{Name: name, Value: value})
	}
	return fields, nil
}
