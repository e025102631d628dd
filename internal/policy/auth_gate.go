package policy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/auth"
	"github.com/diewo77/giardino/gate"
	"github.com/diewo77/giardino/httpx"
	"github.com/diewo77/giardino/internal/models"
)

// AuthGate checks the request principal against the gate.
type AuthGate struct {
	gate          *gate.Gate[uuid.UUID]
	CacheResolver *gate.CachedResolver[uuid.UUID]
	log           *zap.Logger
}

// NewAuthGate builds a gate whose role lookups are cached for ttl, with
// the record-level invoice policy registered.
func NewAuthGate(db *gorm.DB, ttl time.Duration, log *zap.Logger) *AuthGate {
	cached := gate.NewCachedResolver[uuid.UUID](NewUserProfileResolver(db), ttl)
	g := gate.NewGate[uuid.UUID](cached)
	g.Register(ResourceInvoice, LockedInvoicePolicy(cached))
	return &AuthGate{gate: g, CacheResolver: cached, log: log}
}

// Authorize checks the principal of ctx for action on resourceType, and on
// resource when given.
func (a *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	p, _ := auth.PrincipalFromContext(ctx)
	return a.gate.Authorize(ctx, p.UserID, action, resourceType, resource)
}

// WriteError answers an Authorize failure.
func (a *AuthGate) WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gate.ErrUnauthenticated):
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, gate.ErrForbidden):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	default:
		a.log.Error("authorization check failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "authorization_failed", nil)
	}
}

// RequirePermission rejects requests whose principal lacks
// resourceType:action.
func (a *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := a.Authorize(r.Context(), action, resourceType, nil); err != nil {
				a.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LockedInvoicePolicy lets only admins update paid or cancelled invoices.
func LockedInvoicePolicy(resolver gate.ProfileResolver[uuid.UUID]) gate.Policy[uuid.UUID] {
	return gate.PolicyFunc[uuid.UUID](func(ctx context.Context, user uuid.UUID, action gate.Action, resource any) bool {
		inv, ok := resource.(*models.Invoice)
		if !ok || action != gate.ActionUpdate || inv.Status == models.InvoiceStatusUnpaid {
			return true
		}
		profile, err := resolver.Resolve(ctx, user)
		return err == nil && profile != nil && profile.HasPermission(gate.PermissionSuperAdmin)
	})
}
