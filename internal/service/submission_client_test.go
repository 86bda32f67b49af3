package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stemsi/questionnaire/internal/model"
)

func TestSubmissionClientOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		kind       OutcomeKind
		completion model.Completion
		errorText  string
	}{
		{
			name:   "structured",
			status: http.StatusOK,
			body:   `{"success":true,"message":"Merci","details":"Résultats bientôt","thanks":"Bonne journée"}`,
			kind:   OutcomeCompleted,
			completion: model.Completion{
				Message: "Merci", Details: "Résultats bientôt", Thanks: "Bonne journée",
			},
		},
		{
			name:   "legacy",
			status: http.StatusCreated,
			body:   `{"message":"Ligne 1\nLigne 2"}`,
			kind:   OutcomeCompleted,
			completion: model.Completion{
				Message: "Ligne 1",
				Details: "Ligne 2",
				Thanks:  "Nous vous remercions pour votre participation et vous souhaitons une agréable journée!",
			},
		},
		{
			name:   "empty",
			status: http.StatusOK,
			body:   `{}`,
			kind:   OutcomeCompleted,
			completion: model.Completion{
				Message: model.DefaultCompletionMessage,
				Details: model.DefaultCompletionDetails,
				Thanks:  model.DefaultCompletionThanks,
			},
		},
		{name: "conflict", status: http.StatusConflict, body: `{"detail":"déjà soumis"}`, kind: OutcomeDuplicate},
		{name: "server detail", status: http.StatusInternalServerError, body: `{"detail":"boom"}`, kind: OutcomeRejected, errorText: "boom"},
		{name: "server message", status: http.StatusBadRequest, body: `{"message":"invalide"}`, kind: OutcomeRejected, errorText: "invalide"},
		{name: "no json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, kind: OutcomeRejected, errorText: model.UnknownErrorText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewSubmissionClientWith(srv.Client(), nopLog)
			out, err := client.Submit(context.Background(), srv.URL+"/submit", model.NewAnswerRecord(nil))
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if out.Kind != tt.kind {
				t.Fatalf("kind = %v, want %v", out.Kind, tt.kind)
			}
			if out.StatusCode != tt.status {
				t.Errorf("status = %d", out.StatusCode)
			}
			if tt.kind == OutcomeCompleted && out.Completion != tt.completion {
				t.Errorf("completion = %+v, want %+v", out.Completion, tt.completion)
			}
			if out.ErrorText != tt.errorText {
				t.Errorf("error text = %q, want %q", out.ErrorText, tt.errorText)
			}
		})
	}
}

func TestSubmissionClientRequest(t *testing.T) {
	c := testCatalog(t)
	record, err := NewAnswerCollector(c).Build(completeFields(c), "zz9")
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/submit" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out, err := NewSubmissionClientWith(srv.Client(), nopLog).Submit(context.Background(), srv.URL+"/submit", record)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeCompleted {
		t.Fatalf("kind = %v", out.Kind)
	}
	if _, ok := out.Result.(model.EmptyResult); !ok {
		t.Errorf("result = %T, want EmptyResult", out.Result)
	}
	if got["browser_fingerprint"] != "zz9" {
		t.Errorf("body fingerprint = %v", got["browser_fingerprint"])
	}
}

func TestSubmissionClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	out, err := NewSubmissionClientWith(&http.Client{}, nopLog).Submit(context.Background(), url+"/submit", model.NewAnswerRecord(nil))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Kind != OutcomeTransportError {
		t.Fatalf("kind = %v", out.Kind)
	}
	if out.ErrorText == "" {
		t.Error("transport error should carry text")
	}
	if !strings.HasPrefix(out.Notice(), "Une erreur s'est produite lors de l'envoi des données : ") {
		t.Errorf("notice = %q", out.Notice())
	}
}

func TestOutcomeNotice(t *testing.T) {
	rejected := &Outcome{Kind: OutcomeRejected, ErrorText: "boom"}
	if got := rejected.Notice(); got != "Erreur lors de l'envoi des données : boom" {
		t.Errorf("rejected notice = %q", got)
	}
	if got := (&Outcome{Kind: OutcomeCompleted}).Notice(); got != "" {
		t.Errorf("completed notice = %q", got)
	}
}
