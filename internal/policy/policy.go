// Package policy decides whether an authenticated identity may perform an
// action. Roles are a closed two-value enum; there is deliberately no
// per-resource ACL machinery here.
package policy

import "github.com/vaughan-dsouza/tasktracer/internal/models"

// Identity is the authenticated caller, as resolved by the auth middleware.
type Identity struct {
	UserID int64
	Role   models.Role
}

// Action names an operation subject to access control.
type Action string

const (
	// Owner-scoped actions: permitted for the resource owner or an admin.
	ActionReadTask   Action = "task:read"
	ActionUpdateTask Action = "task:update"
	ActionDeleteTask Action = "task:delete"

	// Admin-only actions.
	ActionListAllTasks Action = "admin:list_tasks"
	ActionListUsers    Action = "admin:list_users"
	ActionDeleteUser   Action = "admin:delete_user"
	ActionSetRole      Action = "admin:set_role"
)

// adminOnly reports whether the action is reserved for admins regardless of
// any resource ownership.
func adminOnly(a Action) bool {
	switch a {
	case ActionListAllTasks, ActionListUsers, ActionDeleteUser, ActionSetRole:
		return true
	}
	return false
}

// Permit reports whether id may perform action on a resource owned by
// resourceOwnerID. Admins may do anything; plain users may act only on
// resources they own, and never on admin-only actions.
func Permit(id Identity, action Action, resourceOwnerID int64) bool {
	if id.Role == models.RoleAdmin {
		return true
	}
	if adminOnly(action) {
		return false
	}
	return id.UserID == resourceOwnerID
}
