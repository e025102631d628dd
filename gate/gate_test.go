package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/giardino/gate"
)

type lockedDoc struct{ locked bool }

func newTestGate() *gate.Gate[uint] {
	resolver := gate.NewStaticResolver[uint]()
	resolver.Set(1, gate.NewStaticProfile("admin", gate.PermissionSuperAdmin))
	resolver.Set(2, gate.NewStaticProfile("staff", "doc:view", "doc:update"))
	g := gate.NewGate[uint](resolver)
	g.Register("doc", gate.PolicyFunc[uint](func(_ context.Context, user uint, action gate.Action, resource any) bool {
		d, ok := resource.(*lockedDoc)
		return !ok || !d.locked || user == 1
	}))
	return g
}

func TestGate_Authorize_NoUser(t *testing.T) {
	err := newTestGate().Authorize(context.Background(), 0, gate.ActionView, "doc", nil)
	if !errors.Is(err, gate.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGate_Authorize_UnknownUser(t *testing.T) {
	err := newTestGate().Authorize(context.Background(), 9, gate.ActionView, "doc", nil)
	if !errors.Is(err, gate.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func can(g *gate.Gate[uint], user uint, action gate.Action, resourceType string, resource any) bool {
	return g.Authorize(context.Background(), user, action, resourceType, resource) == nil
}

func TestGate_ProfilePermissions(t *testing.T) {
	g := newTestGate()
	if !can(g, 2, gate.ActionUpdate, "doc", nil) {
		t.Error("staff should update docs")
	}
	if can(g, 2, gate.ActionDelete, "doc", nil) {
		t.Error("staff should not delete docs")
	}
	if !can(g, 1, gate.ActionDelete, "anything", nil) {
		t.Error("admin should do anything")
	}
}

func TestGate_PolicyVetoesRecord(t *testing.T) {
	g := newTestGate()
	locked := &lockedDoc{locked: true}
	if can(g, 2, gate.ActionUpdate, "doc", locked) {
		t.Error("staff should not update a locked doc")
	}
	if !can(g, 2, gate.ActionUpdate, "doc", &lockedDoc{}) {
		t.Error("staff should update an unlocked doc")
	}
	if !can(g, 1, gate.ActionUpdate, "doc", locked) {
		t.Error("admin should update a locked doc")
	}
}

type failingResolver struct{}

func (failingResolver) Resolve(context.Context, uint) (gate.Profile, error) {
	return nil, errors.New("store down")
}

func TestGate_ResolverErrorPropagates(t *testing.T) {
	g := gate.NewGate[uint](failingResolver{})
	err := g.Authorize(context.Background(), 1, gate.ActionView, "doc", nil)
	if err == nil || errors.Is(err, gate.ErrForbidden) {
		t.Errorf("expected resolver error, got %v", err)
	}
}
