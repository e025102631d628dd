// Package auth issues and verifies signed session tokens and carries the
// authenticated principal through the request context.
//
// A token is "uid.expiry.sig" where sig is an HMAC-SHA256 over "uid.expiry".
// It travels in the "session" cookie or in an "Authorization: Bearer" header.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diewo77/giardino/httpx"
)

type ctxKey string

const (
	SessionCookieName = "session"
	principalCtxKey   = ctxKey("principal")
)

// Principal is the authenticated back-office user of one request.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// PrincipalLoader turns a verified user id into a principal. It reports
// false when the user no longer exists.
type PrincipalLoader func(ctx context.Context, userID uuid.UUID) (Principal, bool, error)

// Sessions signs and verifies tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	// Secure marks the cookie HTTPS only.
	Secure bool
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Sessions) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Token returns a signed token for userID valid for the session TTL.
func (s *Sessions) Token(userID uuid.UUID) (string, time.Time) {
	expires := s.now().Add(s.ttl)
	payload := userID.String() + "." + strconv.FormatInt(expires.Unix(), 10)
	return payload + "." + s.sign(payload), expires
}

// Verify checks the signature and expiry of token and returns its user id.
func (s *Sessions) Verify(token string) (uuid.UUID, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return uuid.Nil, false
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(s.sign(payload))) {
		return uuid.Nil, false
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || !s.now().Before(time.Unix(exp, 0)) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(parts[0])
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// CreateSession sets the session cookie for userID and returns the token
// with its expiry.
func (s *Sessions) CreateSession(w http.ResponseWriter, userID uuid.UUID) (string, time.Time) {
	token, expires := s.Token(userID)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	return token, expires
}

// ClearSession deletes the session cookie.
func (s *Sessions) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the bearer token, or the session cookie value.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ParseSession validates the request's token and returns its user id.
func (s *Sessions) ParseSession(r *http.Request) (uuid.UUID, bool) {
	token := TokenFromRequest(r)
	if token == "" {
		return uuid.Nil, false
	}
	return s.Verify(token)
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext extracts the request principal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	return p, ok && p.UserID != uuid.Nil
}

// Middleware resolves the principal once per request. Requests without a
// valid token, or whose user is gone, continue anonymously.
func (s *Sessions) Middleware(load PrincipalLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := s.ParseSession(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			p, found, err := load(r.Context(), uid)
			if err != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "session_lookup_failed", nil)
				return
			}
			if !found {
				// token refers to a removed user
				s.ClearSession(w)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAuth answers 401 JSON when the request has no principal.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
