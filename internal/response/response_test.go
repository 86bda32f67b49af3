package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		FailWithDetail(c, http.StatusBadGateway, ErrUpstreamRejected, "boom")
	})

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"reused", "abc-123_x.y", true},
		{"generated when absent", "", false},
		{"replaced when unsafe", "a b\r\nSet-Cookie: x", false},
		{"replaced when too long", strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-ID")
			if tt.keep && got != tt.header {
				t.Errorf("id = %q, want %q", got, tt.header)
			}
			if !tt.keep && (got == tt.header || got == "") {
				t.Errorf("id = %q should have been regenerated", got)
			}

			var body Response
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Metadata.RequestID != got {
				t.Errorf("metadata id = %q, header %q", body.Metadata.RequestID, got)
			}
			if body.Error == nil || body.Error.Code != ErrUpstreamRejected || body.Error.Detail != "boom" {
				t.Errorf("error body = %+v", body.Error)
			}
		})
	}
}

func TestGetMessageIsFrench(t *testing.T) {
	if got := GetMessage(ErrAlreadySubmitted); !strings.Contains(got, "déjà participé") {
		t.Errorf("ALREADY_SUBMITTED message = %q", got)
	}
	if got := GetMessage(ErrCode("NOPE")); got == "" {
		t.Error("unknown codes need a fallback")
	}
}
