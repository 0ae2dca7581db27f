package auth

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleViewer, PermSignRead, true},
		{RoleViewer, PermHistoryRead, true},
		{RoleViewer, PermSignOperate, false},
		{RoleViewer, PermTokenIssue, false},
		{RoleOperator, PermSignOperate, true},
		{RoleOperator, PermTokenIssue, false},
		{RoleAdmin, PermSignOperate, true},
		{RoleAdmin, PermTokenIssue, true},
		{"unknown", PermSignRead, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			if got := HasPermission(tt.role, tt.perm); got != tt.want {
				t.Errorf("HasPermission(%q, %q) = %v, want %v", tt.role, tt.perm, got, tt.want)
			}
		})
	}
}
