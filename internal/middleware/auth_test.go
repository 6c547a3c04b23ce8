package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"contractd/internal/session"
)

// newTestSession creates a session.Data value suitable for testing.
func newTestSession(role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "test@contractd.local",
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// ctxWithSession returns a context carrying the given session data using
// the same context key the middleware uses. This allows tests to simulate
// the state after LoadSession has run without needing a real Redis store.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestLoadSessionStoreFailure(t *testing.T) {
	// A store whose Redis is unreachable. Lookups fail immediately.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
	})
	store := session.NewStore(client)

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h, called := okHandler()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer "+strings.Repeat("ab", 32))

	LoadSession(store)(h).ServeHTTP(w, req)

	if !*called {
		t.Error("request should proceed as anonymous when the store fails")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
	if !strings.Contains(logs.String(), "session lookup failed") {
		t.Errorf("expected a warning about the failed lookup, got: %s", logs.String())
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	h, called := okHandler()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/contracts", nil)

	RequireAuth(h).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
	if *called {
		t.Error("handler should not run for anonymous request")
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected error field in response")
	}
}

func TestRequireAuthRejectsPending2FA(t *testing.T) {
	h, called := okHandler()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/contracts", nil)
	req = req.WithContext(ctxWithSession(req.Context(), newTestSession("user", false)))

	RequireAuth(h).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", w.Code)
	}
	if *called {
		t.Error("handler should not run before 2FA verification")
	}
}

func TestRequireAuthPasses(t *testing.T) {
	h, called := okHandler()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/contracts", nil)
	req = req.WithContext(ctxWithSession(req.Context(), newTestSession("user", true)))

	RequireAuth(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", w.Code)
	}
	if !*called {
		t.Error("handler should run for authenticated request")
	}
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		name string
		sess *session.Data
		want int
	}{
		{"anonymous", nil, http.StatusForbidden},
		{"regular user", newTestSession("user", true), http.StatusForbidden},
		{"premium user", newTestSession("premium", true), http.StatusForbidden},
		{"admin", newTestSession("admin", true), http.StatusOK},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h, _ := okHandler()
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/admin", nil)
			if c.sess != nil {
				req = req.WithContext(ctxWithSession(req.Context(), c.sess))
			}

			RequireAdmin(h).ServeHTTP(w, req)

			if w.Code != c.want {
				t.Errorf("status: got %d, want %d", w.Code, c.want)
			}
		})
	}
}

func TestUserFromCtx(t *testing.T) {
	if u := UserFromCtx(context.Background()); u != nil {
		t.Error("expected nil user for empty context")
	}

	sess := newTestSession("premium", true)
	u := UserFromCtx(ctxWithSession(context.Background(), sess))
	if u == nil {
		t.Fatal("expected user")
	}
	if u.ID != sess.UserID || string(u.Role) != "premium" || u.DisplayName != "Test User" {
		t.Errorf("user mismatch: %+v", u)
	}
}
