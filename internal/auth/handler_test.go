package auth_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/lectern/internal/auth"
	"github.com/JaimeStill/lectern/pkg/routes"
)

func newMux(rateLimit int) *http.ServeMux {
	h := auth.NewHandler(newGate(nil), slog.New(slog.DiscardHandler), rateLimit)
	mux := http.NewServeMux()
	routes.Register(mux, nil, h.Routes())
	return mux
}

func login(mux http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"username":"admin","password":"hunter2"}`, http.StatusOK},
		{"wrong password", `{"username":"admin","password":"x"}`, http.StatusUnauthorized},
		{"missing password", `{"username":"admin"}`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
		{"malformed", `{"username":`, http.StatusBadRequest},
	}

	mux := newMux(0)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := login(mux, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}

			if tt.status != http.StatusOK {
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if body["error"] == "" {
					t.Error("error body missing message")
				}
				return
			}

			var token auth.Token
			if err := json.NewDecoder(rec.Body).Decode(&token); err != nil {
				t.Fatalf("decode token: %v", err)
			}
			if token.Token == "" || token.ExpiresAt.IsZero() {
				t.Errorf("incomplete token response: %+v", token)
			}
		})
	}
}

func TestLoginRateLimit(t *testing.T) {
	mux := newMux(2)
	body := `{"username":"admin","password":"x"}`

	for i := range 2 {
		if rec := login(mux, body); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, rec.Code)
		}
	}

	rec := login(mux, body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}
