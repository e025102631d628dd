// Package server assembles the HTTP routes and middleware of the back office.
package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/auth"
	"github.com/diewo77/giardino/gate"
	"github.com/diewo77/giardino/httpx"
	"github.com/diewo77/giardino/internal/config"
	"github.com/diewo77/giardino/internal/handlers"
	"github.com/diewo77/giardino/internal/policy"
	"github.com/diewo77/giardino/internal/services"
)

// profileCacheTTL bounds how long a role lookup is reused.
const profileCacheTTL = 5 * time.Minute

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg *config.Config, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	sessions := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	sessions.Secure = !cfg.App.Dev
	authGate := policy.NewAuthGate(db, profileCacheTTL, log)

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			log.Warn("health check failed", zap.Error(err))
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Session endpoints ---
	ah := handlers.NewAuthHandler(db, sessions, cfg.Auth.LoginRate, log)
	mux.HandleFunc("POST /api/login", ah.Login)
	mux.HandleFunc("POST /api/logout", ah.Logout)
	mux.Handle("GET /api/me", auth.RequireAuth(http.HandlerFunc(ah.Me)))

	// protect requires a principal holding resource:action.
	protect := func(pattern, resource string, action gate.Action, h http.HandlerFunc) {
		mux.Handle(pattern, auth.RequireAuth(authGate.RequirePermission(resource, action)(h)))
	}

	ch := handlers.NewClientHandler(db)
	protect("GET /api/clients", policy.ResourceClient, gate.ActionList, ch.List)
	protect("POST /api/clients", policy.ResourceClient, gate.ActionCreate, ch.Create)
	protect("GET /api/clients/{id}", policy.ResourceClient, gate.ActionView, ch.Get)
	protect("PUT /api/clients/{id}", policy.ResourceClient, gate.ActionUpdate, ch.Update)

	sh := handlers.NewServiceHandler(db)
	protect("GET /api/services", policy.ResourceService, gate.ActionList, sh.List)
	protect("POST /api/services", policy.ResourceService, gate.ActionCreate, sh.Create)
	protect("GET /api/services/{id}", policy.ResourceService, gate.ActionView, sh.Get)
	protect("PUT /api/services/{id}", policy.ResourceService, gate.ActionUpdate, sh.Update)

	qh := handlers.NewQuoteHandler(db)
	protect("GET /api/quotes", policy.ResourceQuote, gate.ActionList, qh.List)
	protect("POST /api/quotes", policy.ResourceQuote, gate.ActionCreate, qh.Create)
	protect("GET /api/quotes/{id}", policy.ResourceQuote, gate.ActionView, qh.Get)
	protect("PUT /api/quotes/{id}", policy.ResourceQuote, gate.ActionUpdate, qh.Update)
	protect("POST /api/quotes/{id}/items", policy.ResourceQuote, gate.ActionUpdate, qh.AddItems)

	ih := handlers.NewInvoiceHandler(db, authGate, log)
	protect("GET /api/invoices", policy.ResourceInvoice, gate.ActionList, ih.List)
	protect("POST /api/invoices", policy.ResourceInvoice, gate.ActionCreate, ih.Create)
	protect("GET /api/invoices/summary", policy.ResourceInvoice, gate.ActionList, ih.Summary)
	protect("GET /api/invoices/export", policy.ResourceInvoice, gate.ActionExport, ih.Export)
	protect("GET /api/invoices/{id}", policy.ResourceInvoice, gate.ActionView, ih.Get)
	protect("PUT /api/invoices/{id}", policy.ResourceInvoice, gate.ActionUpdate, ih.Update)
	protect("POST /api/invoices/{id}/status", policy.ResourceInvoice, gate.ActionUpdate, ih.SetStatus)

	// --- Workflows ---
	wh := handlers.NewAdminActionsHandler(db, log)
	protect("POST /api/quotes/{id}/convert", policy.ResourceQuote, gate.ActionConvert, wh.Convert)
	protect("DELETE /api/clients", policy.ResourceClient, gate.ActionDelete, wh.Delete(services.EntityClient))
	protect("DELETE /api/services", policy.ResourceService, gate.ActionDelete, wh.Delete(services.EntityService))
	protect("DELETE /api/quotes", policy.ResourceQuote, gate.ActionDelete, wh.Delete(services.EntityQuote))
	protect("DELETE /api/invoices", policy.ResourceInvoice, gate.ActionDelete, wh.Delete(services.EntityInvoice))

	// --- Account administration ---
	uh := handlers.NewAdminUsersHandler(db, authGate.CacheResolver)
	protect("GET /api/users", policy.ResourceUser, gate.ActionManage, uh.List)
	protect("POST /api/users", policy.ResourceUser, gate.ActionManage, uh.Create)
	protect("PUT /api/users/{id}/role", policy.ResourceUser, gate.ActionManage, uh.SetRole)

	return withRecover(log, withLogging(log, sessions.Middleware(policy.PrincipalLoader(db))(mux)))
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware.
func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// withRecover turns a handler panic into a 500 JSON response.
func withRecover(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log.Error("handler panic", zap.Any("panic", v), zap.String("path", r.URL.Path), zap.Stack("stack"))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
