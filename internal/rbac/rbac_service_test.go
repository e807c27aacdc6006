package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Enforce_RoleHierarchy(t *testing.T) {
	svc, err := NewService()
	require.NoError(t, err)

	cases := []struct {
		role     string
		resource string
		action   string
		allowed  bool
	}{
		{"employee", "attendance", "create", true},
		{"employee", "attendance", "read", true},
		{"employee", "leave", "create", true},
		{"employee", "notification", "update", true},
		{"employee", "attendance", "read_all", false},
		{"employee", "user", "create", false},

		// Managers inherit everything employees can do.
		{"manager", "attendance", "create", true},
		{"manager", "attendance", "read_all", true},
		{"manager", "leave", "read_all", true},
		{"manager", "user", "create", false},

		// Admins inherit through managers.
		{"admin", "attendance", "create", true},
		{"admin", "leave", "read_all", true},
		{"admin", "user", "create", true},

		{"intern", "attendance", "read", false},
		{"", "attendance", "read", false},
	}

	for _, tc := range cases {
		ok, err := svc.Enforce(EnforceRequest{Role: tc.role, Resource: tc.resource, Action: tc.action})
		require.NoError(t, err)
		assert.Equal(t, tc.allowed, ok, "%s %s %s", tc.role, tc.resource, tc.action)
	}
}
