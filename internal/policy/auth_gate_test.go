package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diewo77/giardino/auth"
	"github.com/diewo77/giardino/gate"
	"github.com/diewo77/giardino/internal/db"
	"github.com/diewo77/giardino/internal/dbtest"
	"github.com/diewo77/giardino/internal/models"
)

func withPrincipal(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserID: id}))
}

func TestRoleProfiles(t *testing.T) {
	profiles := RoleProfiles()
	admin, staff := profiles[models.RoleAdmin], profiles[models.RoleStaff]
	for _, r := range resources {
		for _, a := range []gate.Action{gate.ActionView, gate.ActionList, gate.ActionCreate, gate.ActionUpdate} {
			assert.True(t, staff.HasPermission(gate.NewPermission(r, a)), "staff %s:%s", r, a)
		}
		assert.False(t, staff.HasPermission(gate.NewPermission(r, gate.ActionDelete)), "staff %s:delete", r)
		assert.True(t, admin.HasPermission(gate.NewPermission(r, gate.ActionDelete)), "admin %s:delete", r)
	}
	assert.True(t, staff.HasPermission("quote:convert"))
	assert.True(t, staff.HasPermission("invoice:export"))
	assert.False(t, staff.HasPermission(gate.NewPermission(ResourceUser, gate.ActionManage)))
	assert.True(t, admin.HasPermission(gate.NewPermission(ResourceUser, gate.ActionManage)))
}

func TestRequirePermission(t *testing.T) {
	gdb := dbtest.Open(t)
	admin, err := db.CreateAdmin(gdb, "admin@example.com", "pw", "", models.RoleAdmin)
	require.NoError(t, err)
	staff, err := db.CreateAdmin(gdb, "staff@example.com", "pw", "", models.RoleStaff)
	require.NoError(t, err)
	g := NewAuthGate(gdb, time.Minute, zap.NewNop())

	h := g.RequirePermission(ResourceClient, gate.ActionDelete)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	tests := []struct {
		name string
		user uuid.UUID
		want int
	}{
		{"anonymous", uuid.Nil, http.StatusUnauthorized},
		{"unknown user", uuid.New(), http.StatusForbidden},
		{"staff", staff.ID, http.StatusForbidden},
		{"admin", admin.ID, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, withPrincipal(httptest.NewRequest(http.MethodDelete, "/api/clients", nil), tt.user))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLockedInvoicePolicy(t *testing.T) {
	gdb := dbtest.Open(t)
	admin, err := db.CreateAdmin(gdb, "admin@example.com", "pw", "", models.RoleAdmin)
	require.NoError(t, err)
	staff, err := db.CreateAdmin(gdb, "staff@example.com", "pw", "", models.RoleStaff)
	require.NoError(t, err)
	g := NewAuthGate(gdb, time.Minute, zap.NewNop())

	ctxFor := func(id uuid.UUID) context.Context {
		return auth.WithPrincipal(context.Background(), auth.Principal{UserID: id})
	}
	paid := &models.Invoice{Status: models.InvoiceStatusPaid}
	unpaid := &models.Invoice{Status: models.InvoiceStatusUnpaid}

	assert.NoError(t, g.Authorize(ctxFor(staff.ID), gate.ActionUpdate, ResourceInvoice, unpaid))
	assert.ErrorIs(t, g.Authorize(ctxFor(staff.ID), gate.ActionUpdate, ResourceInvoice, paid), gate.ErrForbidden)
	assert.NoError(t, g.Authorize(ctxFor(staff.ID), gate.ActionView, ResourceInvoice, paid))
	assert.NoError(t, g.Authorize(ctxFor(admin.ID), gate.ActionUpdate, ResourceInvoice, paid))
}

func TestPrincipalLoader(t *testing.T) {
	gdb := dbtest.Open(t)
	u, err := db.CreateAdmin(gdb, "staff@example.com", "pw", "Staff", models.RoleStaff)
	require.NoError(t, err)
	load := PrincipalLoader(gdb)

	p, ok, err := load(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "staff@example.com", p.Email)
	assert.Equal(t, "staff", p.Role)

	_, ok, err = load(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}
