package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/catalog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/fingerprint"
	"github.com/stemsi/questionnaire/internal/model"
)

var testProbe = fingerprint.StaticProbe{
	UserAgent:      "Mozilla/5.0 (X11; Linux x86_64)",
	Language:       "fr-FR",
	ScreenWidth:    1920,
	ScreenHeight:   1080,
	TimezoneOffset: -180,
	CanvasDigest:   "c2FtcGxlY2FudmFz",
}

func testConfig() *config.Config {
	return &config.Config{
		GuardWindow:      24 * time.Hour,
		LocalAPIURL:      "http://localhost:8000",
		ProductionAPIURL: "https://api.example.org",
	}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	return c
}

// completeFields answers every question with its first option and picks the
// first two options of every multi-select question.
func completeFields(c *catalog.Catalog) []model.FormField {
	var fields []model.FormField
	for _, q := range c.Questions {
		if q.Multiple {
			for _, o := range q.Options[:2] {
				fields = append(fields, model.FormField{Name: q.FieldName(), Value: o})
			}
			continue
		}
		fields = append(fields, model.FormField{Name: q.Name, Value: q.Options[0]})
	}
	return fields
}

func withoutField(fields []model.FormField, name string) []model.FormField {
	out := make([]model.FormField, 0, len(fields))
	for _, f := range fields {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}

func replaceField(fields []model.FormField, name, value string) []model.FormField {
	out := make([]model.FormField, 0, len(fields))
	for _, f := range fields {
		if f.Name == name {
			f.Value = value
		}
		out = append(out, f)
	}
	return out
}

var errStoreDown = errors.New("store unavailable")

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) { return "", false, errStoreDown }
func (failingStore) Set(context.Context, string, string) error         { return errStoreDown }
func (failingStore) Remove(context.Context, string) error              { return errStoreDown }

var nopLog = zerolog.Nop()

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
