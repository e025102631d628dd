// Package policy wires the gate to back-office roles and exposes the
// authorization middleware used by the router.
package policy

import (
	"github.com/diewo77/giardino/gate"
	"github.com/diewo77/giardino/internal/models"
)

// Resource names used in permissions.
const (
	ResourceClient  = "client"
	ResourceService = "service"
	ResourceQuote   = "quote"
	ResourceInvoice = "invoice"
	// ResourceUser is the back-office account list, managed by admins only.
	ResourceUser = "user"
)

var resources = []string{ResourceClient, ResourceService, ResourceQuote, ResourceInvoice}

// RoleProfiles returns the permission set of every role. Admins may do
// anything; staff may do everything except delete.
func RoleProfiles() map[models.Role]gate.Profile {
	staff := []gate.Permission{
		gate.NewPermission(gate.WildcardAll, gate.ActionView),
		gate.NewPermission(gate.WildcardAll, gate.ActionList),
		gate.NewPermission(ResourceQuote, gate.ActionConvert),
		gate.NewPermission(ResourceInvoice, gate.ActionExport),
	}
	for _, r := range resources {
		staff = append(staff,
			gate.NewPermission(r, gate.ActionCreate),
			gate.NewPermission(r, gate.ActionUpdate))
	}
	return map[models.Role]gate.Profile{
		models.RoleAdmin: gate.NewStaticProfile(string(models.RoleAdmin), gate.PermissionSuperAdmin),
		models.RoleStaff: gate.NewStaticProfile(string(models.RoleStaff), staff...),
	}
}
