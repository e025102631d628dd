package handlers

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/auth"
	"github.com/diewo77/giardino/httpx"
	"github.com/diewo77/giardino/internal/apperr"
	"github.com/diewo77/giardino/internal/models"
)

// loginLimiter hands out one token bucket per client IP. Buckets idle long
// enough to have refilled are dropped, since a fresh one behaves the same.
type loginLimiter struct {
	mu        sync.Mutex
	every     time.Duration
	burst     int
	limiters  map[string]*ipLimiter
	lastSweep time.Time
	now       func() time.Time
}

type ipLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLoginLimiter(every time.Duration, burst int) *loginLimiter {
	return &loginLimiter{every: every, burst: burst, limiters: make(map[string]*ipLimiter), now: time.Now}
}

// idle is the time an untouched bucket needs to refill completely.
func (l *loginLimiter) idle() time.Duration {
	return l.every * time.Duration(l.burst)
}

func (l *loginLimiter) Allow(ip string) bool {
	now := l.now()
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idle() {
		for k, e := range l.limiters {
			if now.Sub(e.seen) >= l.idle() {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}
	e, ok := l.limiters[ip]
	if !ok {
		e = &ipLimiter{lim: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.limiters[ip] = e
	}
	e.seen = now
	l.mu.Unlock()
	return e.lim.AllowN(now, 1)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type AuthHandler struct {
	db       *gorm.DB
	sessions *auth.Sessions
	limiter  *loginLimiter
	log      *zap.Logger
}

// NewAuthHandler allows perMinute login attempts per minute and IP.
func NewAuthHandler(db *gorm.DB, sessions *auth.Sessions, perMinute int, log *zap.Logger) *AuthHandler {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &AuthHandler{
		db:       db,
		sessions: sessions,
		limiter:  newLoginLimiter(time.Minute/time.Duration(perMinute), perMinute),
		log:      log,
	}
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      *models.AdminUser `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(clientIP(r)) {
		httpx.JSONError(w, http.StatusTooManyRequests, "too_many_requests", nil)
		return
	}
	var in loginInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		httpx.Error(w, apperr.Validation("email and password are required", nil))
		return
	}

	var user models.AdminUser
	err := h.db.WithContext(r.Context()).Where("email = ?", in.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if err != nil {
		httpx.Error(w, apperr.Persistence("lookup user", err))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		h.log.Info("login failed", zap.String("email", in.Email))
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	token, expires := h.sessions.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires, User: &user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the principal of the request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": p.UserID, "email": p.Email, "role": p.Role})
}
