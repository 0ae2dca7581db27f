package auth

import "errors"

// Role is an authorisation tier carried in a token.
type Role string

const (
	// RoleViewer may read state but never talk to the sign.
	RoleViewer Role = "viewer"

	// RoleOperator may send commands and messages.
	RoleOperator Role = "operator"

	// RoleAdmin may do everything an operator can and mint tokens.
	RoleAdmin Role = "admin"
)

// ValidRoles lists every role a token may carry.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// ParseRole returns the Role named s, or false if s names none.
func ParseRole(s string) (Role, bool) {
	for _, r := range ValidRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Sentinel errors.
var (
	ErrTokenInvalid  = errors.New("invalid token")
	ErrSecretMissing = errors.New("jwt secret is not configured")
	ErrInvalidRole   = errors.New("invalid role")
	ErrForbidden     = errors.New("insufficient permissions")
)
