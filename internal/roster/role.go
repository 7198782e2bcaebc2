package roster

import "context"

// Role is a user's standing in a group as reported by the chat platform.
type Role string

const (
	RoleOwner         Role = "owner"
	RoleAdministrator Role = "administrator"
	RoleMember        Role = "member"
	RoleUnknown       Role = "unknown"
)

// Privileged reports whether the role may run admin operations.
func (r Role) Privileged() bool {
	return r == RoleOwner || r == RoleAdministrator
}

// RoleLookup asks the chat platform for a user's role in a group.
type RoleLookup interface {
	LookupRole(ctx context.Context, chatID, userID int64) (Role, error)
}

// IsGroupChat reports whether chatID names a multi-user chat. Telegram uses
// negative IDs for groups, supergroups and channels.
func IsGroupChat(chatID int64) bool {
	return chatID < 0
}
