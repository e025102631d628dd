package gate_test

import (
	"testing"

	"github.com/diewo77/giardino/gate"
)

func TestPermission_NewPermission(t *testing.T) {
	if perm := gate.NewPermission("quote", gate.ActionConvert); perm != "quote:convert" {
		t.Errorf("expected 'quote:convert', got '%s'", perm)
	}
}

func TestPermission_Parse(t *testing.T) {
	res, act := gate.Permission("invoice:view").Parse()
	if res != "invoice" || act != gate.ActionView {
		t.Errorf("got %q %q", res, act)
	}
	res, act = gate.Permission("invalid").Parse()
	if res != "" || act != "" {
		t.Errorf("expected empty strings, got '%s' and '%s'", res, act)
	}
}

func TestPermission_Matches(t *testing.T) {
	tests := []struct {
		have, want gate.Permission
		match      bool
	}{
		{"quote:view", "quote:view", true},
		{"quote:view", "quote:delete", false},
		{"quote:*", "quote:delete", true},
		{"quote:*", "invoice:delete", false},
		{"*:view", "client:view", true},
		{"*:view", "client:delete", false},
		{"*:*", "service:delete", true},
		{"broken", "client:view", false},
	}
	for _, tt := range tests {
		if got := tt.have.Matches(tt.want); got != tt.match {
			t.Errorf("%s.Matches(%s) = %v, want %v", tt.have, tt.want, got, tt.match)
		}
	}
}

func TestStaticProfile_Permissions(t *testing.T) {
	p := gate.NewStaticProfile("staff", "quote:view", "client:view", "quote:view")
	perms := p.Permissions()
	if len(perms) != 2 || perms[0] != "client:view" || perms[1] != "quote:view" {
		t.Errorf("unexpected permissions %v", perms)
	}
	if p.Name() != "staff" {
		t.Errorf("name = %s", p.Name())
	}
}
