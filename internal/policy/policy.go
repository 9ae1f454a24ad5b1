// Package policy holds the authorization rules shared by every handler.
// Handlers never compare roles or owner ids themselves; they call one of the
// gates below and map ErrForbidden to 403.
package policy

import (
	"errors"
	"slices"

	"jobboard/pkg/domain"
)

// ErrForbidden is returned by every failed gate.
var ErrForbidden = errors.New("forbidden")

// Subject is the authenticated caller.
type Subject struct {
	ID   string
	Role domain.UserRole
}

// SubjectOf builds a subject from a stored user.
func SubjectOf(u domain.User) Subject {
	return Subject{ID: u.ID, Role: u.Role}
}

// IsAdmin reports whether the subject has the admin role.
func (s Subject) IsAdmin() bool {
	return s.Role == domain.RoleAdmin
}

// Allow is the single ownership decision: admins may act on anything, other
// callers only on what they own.
func Allow(role domain.UserRole, ownerID, callerID string) bool {
	if role == domain.RoleAdmin {
		return true
	}
	return callerID != "" && ownerID == callerID
}

// RequireRole passes when the subject holds one of roles.
func RequireRole(s Subject, roles ...domain.UserRole) error {
	if s.ID == "" || !slices.Contains(roles, s.Role) {
		return ErrForbidden
	}
	return nil
}

// RequireOwner passes for admins and for a subject listed in ownerIDs.
func RequireOwner(s Subject, ownerIDs ...string) error {
	if s.ID == "" {
		return ErrForbidden
	}
	if s.IsAdmin() {
		return nil
	}
	for _, owner := range ownerIDs {
		if Allow(s.Role, owner, s.ID) {
			return nil
		}
	}
	return ErrForbidden
}
