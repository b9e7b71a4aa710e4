// Package policy holds the authorization rules. Everything here is pure.
package policy

import (
	"github.com/gigboard/engine/internal/models"
	appErr "github.com/gigboard/engine/pkg/errors"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// IsSuperadmin reports whether the actor bypasses ownership checks.
func (a Actor) IsSuperadmin() bool { return a.Role == models.RoleSuperadmin }

// CanModify decides whether an actor may mutate a resource owned by ownerID.
func CanModify(role models.Role, actorID, ownerID uint) bool {
	if role == models.RoleSuperadmin {
		return true
	}
	return actorID == ownerID
}

// OwnerScope returns the owner id a conditional write must match, or nil
// when the actor may touch any row.
func OwnerScope(a Actor) *uint {
	if a.IsSuperadmin() {
		return nil
	}
	id := a.ID
	return &id
}

// CheckUserMutable rejects any update or delete aimed at the superadmin account.
func CheckUserMutable(target *models.User) error {
	if target.Role == models.RoleSuperadmin {
		return appErr.New(appErr.CodeForbidden, "the superadmin account cannot be modified or deleted")
	}
	return nil
}
