package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/questionnaire/internal/config"
	"github.com/stemsi/questionnaire/internal/model"
)

func TestReadFormFieldsKeepsOrder(t *testing.T) {
	body := "question4%5B%5D=b&question1=Moins+d%27un+an&question4%5B%5D=a&other-sector="
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))

	fields, err := readFormFields(req)
	if err != nil {
		t.Fatalf("readFormFields: %v", err)
	}
	want := []model.FormField{
		{Name: "question4[]", Value: "b"},
		{Name: "question1", Value: "Moins d'un an"},
		{Name: "question4[]", Value: "a"},
		{Name: "other-sector", Value: ""},
	}
	if len(fields) != len(want) {
		t.Fatalf("got %v", fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, fields[i], want[i])
		}
	}
}

func TestReadFormFieldsRejectsBadInput(t *testing.T) {
	for _, body := range []string{"question1=%zz", strings.Repeat("a", maxFormBytes+1)} {
		req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
		if _, err := readFormFields(req); err == nil {
			t.Errorf("expected an error for %.20q", body)
		}
	}
}

func TestHintsCookieRoundTrip(t *testing.T) {
	hints := model.ClientHints{
		Language:            "fr-FR",
		ScreenWidth:         390,
		ScreenHeight:        844,
		TimezoneOffset:      -180,
		Canvas:              "1x2y3z",
		HardwareConcurrency: 8,
		DeviceMemory:        4,
	}
	got, err := decodeHints(EncodeHints(hints))
	if err != nil {
		t.Fatalf("decodeHints: %v", err)
	}
	if got != hints {
		t.Errorf("got %+v", got)
	}

	if _, err := decodeHints("not base64!"); err == nil {
		t.Error("garbage should not decode")
	}
}

func TestRespondentProbeSources(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	cookieHints := model.ClientHints{Language: "fr-FR", ScreenWidth: 1280, ScreenHeight: 720}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.AddCookie(&http.Cookie{Name: config.StateKey.HintsCookie(), Value: EncodeHints(cookieHints)})

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	probe := respondentProbe(c, nil, log)
	if probe.UserAgent != "Mozilla/5.0" || probe.Hints != cookieHints {
		t.Errorf("cookie probe = %+v", probe)
	}
	if s := probe.Signals(); s.Language != "fr-FR" {
		t.Errorf("language = %q", s.Language)
	}

	body := model.ClientHints{ScreenWidth: 390}
	probe = respondentProbe(c, &body, log)
	if probe.Hints != body {
		t.Errorf("body hints should win: %+v", probe.Hints)
	}
	if s := probe.Signals(); s.Language != "en-US" {
		t.Errorf("fallback language = %q", s.Language)
	}
}
