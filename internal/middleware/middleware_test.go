package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"birthday-reminders/internal/ports/auth"

	"github.com/gorilla/sessions"
)

type fakeVerifier struct {
	tokens map[string]auth.Claims
}

func (f fakeVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	c, ok := f.tokens[token]
	if !ok {
		return auth.Claims{}, errors.New("bad token")
	}
	return c, nil
}

func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := GetClaims(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(c.UserID))
	})
}

func newTestSessions() *SessionManager {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	store.Options.HttpOnly = true
	return NewSessionManager(store, "")
}

func TestAuthContext_DevHeaderOnlyWithoutVerifier(t *testing.T) {
	h := AuthContext(nil, nil)(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", " dev-1 ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Body.String() != "dev-1" {
		t.Fatalf("expected dev-1, got %q", rec.Body.String())
	}

	h = AuthContext(fakeVerifier{}, nil)(claimsEcho())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected debug header ignored with verifier, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuthContext_BearerThenSession(t *testing.T) {
	sm := newTestSessions()
	v := fakeVerifier{tokens: map[string]auth.Claims{"good": {UserID: "bearer-user"}}}
	h := AuthContext(v, sm)(claimsEcho())

	// cookie de sesión para session-user
	saveRec := httptest.NewRecorder()
	if err := sm.Save(saveRec, httptest.NewRequest(http.MethodPost, "/signin", nil), auth.Claims{UserID: "session-user", Email: "s@example.com"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookies := saveRec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}

	cases := []struct {
		name   string
		bearer string
		cookie bool
		want   string
	}{
		{"bearer wins", "good", true, "bearer-user"},
		{"invalid bearer falls back to session", "bad", true, "session-user"},
		{"session only", "", true, "session-user"},
		{"nothing", "", false, ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.bearer != "" {
			req.Header.Set("Authorization", "Bearer "+tc.bearer)
		}
		if tc.cookie {
			req.AddCookie(cookies[0])
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Body.String() != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, rec.Body.String())
		}
	}
}

func TestSessionManager_RoundTripAndClear(t *testing.T) {
	sm := newTestSessions()

	rec := httptest.NewRecorder()
	if err := sm.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), auth.Claims{UserID: "u1", Email: "u1@example.com"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := rec.Result().Cookies()[0]
	if cookie.Name != DefaultSessionName || !cookie.HttpOnly {
		t.Fatalf("unexpected cookie: %#v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	claims, ok := sm.Load(req)
	if !ok || claims.UserID != "u1" || claims.Email != "u1@example.com" {
		t.Fatalf("unexpected claims %#v ok=%v", claims, ok)
	}

	clearRec := httptest.NewRecorder()
	if err := sm.Clear(clearRec, req); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	cleared := clearRec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %#v", cleared)
	}

	// cookie adulterada => sin sesión
	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: DefaultSessionName, Value: "tampered"})
	if _, ok := sm.Load(bad); ok {
		t.Fatalf("expected tampered cookie to be rejected")
	}
}

func TestRequireUser(t *testing.T) {
	h := AuthContext(nil, nil)(RequireUser(claimsEcho()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "u1" {
		t.Fatalf("expected 200 u1, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitOptions{Interval: time.Hour, Burst: 2})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/signin", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := hit("10.0.0.1:1234"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := hit("10.0.0.1:5678")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	// otra IP tiene su propio bucket
	if rec := hit("10.0.0.2:1234"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for another ip, got %d", rec.Code)
	}
}

func TestRateLimit_ConcurrentFirstRequestsShareBucket(t *testing.T) {
	const burst = 3
	h := RateLimit(RateLimitOptions{Interval: time.Hour, Burst: burst})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
		start   = make(chan struct{})
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			req := httptest.NewRequest(http.MethodPost, "/signup", nil)
			req.RemoteAddr = "10.0.0.9:4321"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code == http.StatusOK {
				allowed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := allowed.Load(); got != burst {
		t.Fatalf("expected exactly %d requests allowed for a new ip, got %d", burst, got)
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
