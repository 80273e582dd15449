package auth

import (
	"errors"

	"github.com/shopcore/shopcore/models"
)

// RoleAdmin is the role gating administrative operations.
const RoleAdmin = "admin"

var ErrForbidden = errors.New("auth: insufficient role")

// HasRole reports whether the user carries the named role. The match is
// case-sensitive and exact.
func HasRole(user models.User, roleName string) bool {
	for _, role := range user.Roles {
		if role.Name == roleName {
			return true
		}
	}
	return false
}

// RequireRole allows the operation only for holders of the named role.
func RequireRole(user models.User, roleName string) error {
	if !HasRole(user, roleName) {
		return ErrForbidden
	}
	return nil
}

// RequireSelfOrRole allows the operation for the target user themselves or
// for holders of the named role.
func RequireSelfOrRole(user models.User, targetUserID uint, roleName string) error {
	if user.ID == targetUserID {
		return nil
	}
	return RequireRole(user, roleName)
}
