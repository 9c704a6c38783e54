package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"restotrack/shared/go/logging"
)

func TestRequestLoggingAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Output: &buf})

	var seen string
	handler := RequestLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/restaurants", nil))

	if seen == "" {
		t.Fatalf("expected request id on context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Fatalf("expected response header %q, got %q", seen, got)
	}
	if !strings.Contains(buf.String(), `"status_code":418`) {
		t.Fatalf("status not logged: %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("4xx should log at warn: %q", buf.String())
	}
}

func TestRequestLoggingKeepsIncomingID(t *testing.T) {
	handler := RequestLogging(logging.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc" {
		t.Fatalf("expected incoming id to be echoed, got %q", got)
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logging.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		allowed     []string
		origin      string
		method      string
		wantStatus  int
		wantAllowed string
	}{
		{name: "allowed origin", allowed: []string{"http://localhost:5173"}, origin: "http://localhost:5173", method: http.MethodGet, wantStatus: http.StatusOK, wantAllowed: "http://localhost:5173"},
		{name: "case insensitive", allowed: []string{"http://LOCALHOST:5173"}, origin: "http://localhost:5173", method: http.MethodGet, wantStatus: http.StatusOK, wantAllowed: "http://localhost:5173"},
		{name: "unknown origin", allowed: []string{"http://localhost:5173"}, origin: "http://evil.example", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "wildcard", allowed: []string{"*"}, origin: "http://any.example", method: http.MethodGet, wantStatus: http.StatusOK, wantAllowed: "*"},
		{name: "preflight", allowed: []string{"http://localhost:5173"}, origin: "http://localhost:5173", method: http.MethodOptions, wantStatus: http.StatusNoContent, wantAllowed: "http://localhost:5173"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()

			CORS(tc.allowed)(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantAllowed {
				t.Fatalf("expected allow-origin %q, got %q", tc.wantAllowed, got)
			}
		})
	}
}
