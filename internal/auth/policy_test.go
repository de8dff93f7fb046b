package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadsapi/internal/types"
)

// mockDirectory implements StaffDirectory with a fixed answer per user ID.
type mockDirectory struct {
	staffTypes map[string]string
	calls      int
}

func (m *mockDirectory) StaffType(_ context.Context, userID string) string {
	m.calls++
	if st, ok := m.staffTypes[userID]; ok {
		return st
	}
	return "unknown"
}

func assertPolicyError(t *testing.T, err error, code types.ErrorCode) {
	t.Helper()
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestEvaluateAnonymousIsUnauthenticated(t *testing.T) {
	for _, policy := range []Policy{ImportLead, ReadLead, AssignLead} {
		t.Run(policy.Name, func(t *testing.T) {
			err := policy.Evaluate(context.Background(), nil, nil)
			assertPolicyError(t, err, types.ErrCodeAuthTokenMissing)
		})
	}
}

func TestEvaluateBlankUserIDIsUnauthenticated(t *testing.T) {
	principal := &types.Principal{UserID: "   ", Roles: []string{"adviser"}}

	err := ReadLead.Evaluate(context.Background(), principal, nil)

	assertPolicyError(t, err, types.ErrCodeAuthTokenMissing)
}

func TestImportLeadRequiresScope(t *testing.T) {
	withScope := &types.Principal{UserID: "u-1", Scopes: []string{"LEADS:IMPORT"}}
	withoutScope := &types.Principal{UserID: "u-1", Roles: []string{"adviser"}}

	assert.NoError(t, ImportLead.Evaluate(context.Background(), withScope, nil))
	assertPolicyError(t,
		ImportLead.Evaluate(context.Background(), withoutScope, nil),
		types.ErrCodePermissionScope)
}

func TestReadLeadRequiresAdviserOrCustomer(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		allow bool
	}{
		{"adviser", []string{"adviser"}, true},
		{"customer", []string{"Customer"}, true},
		{"both", []string{"adviser", "customer"}, true},
		{"other role", []string{"auditor"}, false},
		{"no roles", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := &types.Principal{UserID: "u-1", Roles: tt.roles}
			err := ReadLead.Evaluate(context.Background(), principal, nil)
			if tt.allow {
				assert.NoError(t, err)
			} else {
				assertPolicyError(t, err, types.ErrCodePermissionRole)
			}
		})
	}
}

func TestAssignLeadRequiresAdviserManager(t *testing.T) {
	directory := &mockDirectory{staffTypes: map[string]string{
		"mgr":  "Manager",
		"solo": "associate",
	}}

	manager := &types.Principal{UserID: "mgr", Roles: []string{"adviser"}}
	assert.NoError(t, AssignLead.Evaluate(context.Background(), manager, directory))

	nonManager := &types.Principal{UserID: "solo", Roles: []string{"adviser"}}
	assertPolicyError(t,
		AssignLead.Evaluate(context.Background(), nonManager, directory),
		types.ErrCodePermissionNotManager)

	unknown := &types.Principal{UserID: "ghost", Roles: []string{"adviser"}}
	assertPolicyError(t,
		AssignLead.Evaluate(context.Background(), unknown, directory),
		types.ErrCodePermissionNotManager)
}

func TestAssignLeadRoleCheckedBeforeDirectory(t *testing.T) {
	directory := &mockDirectory{staffTypes: map[string]string{"cust": "manager"}}

	principal := &types.Principal{UserID: "cust", Roles: []string{"customer"}}
	err := AssignLead.Evaluate(context.Background(), principal, directory)

	assertPolicyError(t, err, types.ErrCodePermissionRole)
	assert.Zero(t, directory.calls, "directory must not be consulted when the role check fails")
}

func TestAssignLeadNilDirectoryFailsClosed(t *testing.T) {
	principal := &types.Principal{UserID: "mgr", Roles: []string{"adviser"}}

	err := AssignLead.Evaluate(context.Background(), principal, nil)

	assertPolicyError(t, err, types.ErrCodePermissionNotManager)
}
