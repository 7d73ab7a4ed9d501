// Package model defines domain entities for the application.
package model

import "fmt"

// Role represents a member's role within a chat.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// AllRoles contains every valid role value.
var AllRoles = []Role{RoleOwner, RoleAdmin, RoleMember}

// ParseRole converts a stored role string to a Role.
// Unknown input is an error, never a silent default: a role string that
// fails to parse must not grant or deny permissions by accident.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleMember:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Rank returns the position of the role in the total order
// Owner > Admin > Member. Higher rank means more permissions.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 2
	case RoleAdmin:
		return 1
	default:
		return 0
	}
}

// HasRoleOrHigher reports whether r grants at least the permissions of required.
func (r Role) HasRoleOrHigher(required Role) bool {
	return r.Rank() >= required.Rank()
}

// CanManageMembers reports whether the role may add, remove, or update members.
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanDeleteChat reports whether the role may delete the chat.
func (r Role) CanDeleteChat() bool {
	return r == RoleOwner
}

// CanInviteMembers reports whether the role may invite new members.
func (r Role) CanInviteMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanUpdateChat reports whether the role may change chat settings.
func (r Role) CanUpdateChat() bool {
	return r == RoleOwner || r == RoleAdmin
}

// String returns the stored string form of the role.
func (r Role) String() string {
	return string(r)
}
