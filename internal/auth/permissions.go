package auth

// Permission represents a named capability in the system.
type Permission string

// Permission constants.
const (
	PermSignRead    Permission = "sign:read"
	PermSignOperate Permission = "sign:operate"
	PermHistoryRead Permission = "history:read"
	PermTokenIssue  Permission = "token:issue"
)

// rolePermissions is the single source of truth for the authorisation model.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermSignRead,
		PermHistoryRead,
	},
	RoleOperator: {
		PermSignRead,
		PermSignOperate,
		PermHistoryRead,
	},
	RoleAdmin: {
		PermSignRead,
		PermSignOperate,
		PermHistoryRead,
		PermTokenIssue,
	},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == perm {
			return true
		}
	}
	return false
}
