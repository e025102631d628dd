package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func fixedSessions(at time.Time) *Sessions {
	s := NewSessions("test-secret", time.Hour)
	s.now = func() time.Time { return at }
	return s
}

func TestTokenRoundTripAndExpiry(t *testing.T) {
	start := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s := fixedSessions(start)
	uid := uuid.New()
	token, expires := s.Token(uid)
	if !expires.Equal(start.Add(time.Hour)) {
		t.Fatalf("expires = %s", expires)
	}
	got, ok := s.Verify(token)
	if !ok || got != uid {
		t.Fatalf("Verify = %v %v", got, ok)
	}
	s.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, ok := s.Verify(token); ok {
		t.Fatal("expired token accepted")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	s := fixedSessions(time.Now())
	token, _ := s.Token(uuid.New())
	other := NewSessions("other-secret", time.Hour)
	if _, ok := other.Verify(token); ok {
		t.Fatal("token signed with another secret accepted")
	}
	forged := uuid.New().String() + token[36:]
	if _, ok := s.Verify(forged); ok {
		t.Fatal("token with swapped user id accepted")
	}
	for _, bad := range []string{"", "a.b", "a.b.c.d"} {
		if _, ok := s.Verify(bad); ok {
			t.Fatalf("malformed token %q accepted", bad)
		}
	}
}

func TestParseSessionCookieAndBearer(t *testing.T) {
	s := fixedSessions(time.Now())
	uid := uuid.New()

	rec := httptest.NewRecorder()
	token, _ := s.CreateSession(rec, uid)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly || cookies[0].Name != SessionCookieName {
		t.Fatalf("unexpected cookies %+v", cookies)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	if got, ok := s.ParseSession(r); !ok || got != uid {
		t.Fatalf("cookie session = %v %v", got, ok)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	if got, ok := s.ParseSession(r); !ok || got != uid {
		t.Fatalf("bearer session = %v %v", got, ok)
	}
}

func TestMiddlewareResolvesPrincipal(t *testing.T) {
	s := fixedSessions(time.Now())
	known := uuid.New()
	load := func(_ context.Context, id uuid.UUID) (Principal, bool, error) {
		if id == known {
			return Principal{UserID: id, Email: "a@example.com", Role: "admin"}, true, nil
		}
		return Principal{}, false, nil
	}
	var seen Principal
	var authed bool
	h := s.Middleware(load)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, authed = PrincipalFromContext(r.Context())
	}))

	knownToken, _ := s.Token(known)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+knownToken)
	h.ServeHTTP(httptest.NewRecorder(), r)
	if !authed || seen.Email != "a@example.com" {
		t.Fatalf("principal not resolved: %+v %v", seen, authed)
	}

	goneToken, _ := s.Token(uuid.New())
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+goneToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if authed {
		t.Fatal("removed user should be anonymous")
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatal("expected session cookie to be cleared")
	}
}

func TestMiddlewareLoaderError(t *testing.T) {
	s := fixedSessions(time.Now())
	h := s.Middleware(func(context.Context, uuid.UUID) (Principal, bool, error) {
		return Principal{}, false, errors.New("db down")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	token, _ := s.Token(uuid.New())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"error":"unauthorized"}` {
		t.Fatalf("body = %s", got)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	r = r.WithContext(WithPrincipal(r.Context(), Principal{UserID: uuid.New()}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}
