package auth

import (
	"context"
	"strings"

	"leadsapi/internal/types"
)

// StaffTypeManager is the staff classification that satisfies a manager-gated
// policy, compared case-insensitively.
const StaffTypeManager = "manager"

// StaffDirectory resolves a user ID to its staff classification. Lookups
// never fail: implementations return "unknown" when the answer cannot be
// determined, which callers treat identically to "not a manager".
type StaffDirectory interface {
	StaffType(ctx context.Context, userID string) string
}

// Policy is a named authorization rule bound to an endpoint. Policies are
// immutable, defined once at startup, and evaluated by Evaluate; there is no
// open-ended requirement-handler registration. Every policy requires an
// authenticated principal; the optional fields add further conditions.
type Policy struct {
	Name string

	// RequiredScope, when non-empty, requires case-insensitive scope
	// membership.
	RequiredScope string

	// AnyRole, when non-empty, requires a case-insensitive intersection with
	// the principal's role set.
	AnyRole []string

	// RequireManager additionally requires the principal's externally resolved
	// staff type to be "manager".
	RequireManager bool
}

// The three policies bound to the lead routes.
var (
	// ImportLead guards lead creation: any authenticated caller holding the
	// leads:import scope.
	ImportLead = Policy{
		Name:          "import-lead",
		RequiredScope: "leads:import",
	}

	// ReadLead guards lead reads: advisers and customers.
	ReadLead = Policy{
		Name:    "read-lead",
		AnyRole: []string{"adviser", "customer"},
	}

	// AssignLead guards lead assignment: advisers who the staff directory
	// classifies as managers.
	AssignLead = Policy{
		Name:           "assign-lead",
		AnyRole:        []string{"adviser"},
		RequireManager: true,
	}
)

// Evaluate decides whether the principal satisfies the policy. Checks run in
// a fixed order and short-circuit on the first failure: authentication, scope,
// roles, then the external manager condition. The returned error is always a
// *types.AppError (401 for unauthenticated, 403 otherwise); nil means allow.
//
// The manager check is fail-closed: a nil directory or an "unknown"
// classification denies the request.
func (p Policy) Evaluate(ctx context.Context, principal *types.Principal, directory StaffDirectory) error {
	if principal == nil || strings.TrimSpace(principal.UserID) == "" {
		return types.NewAppError(
			types.ErrCodeAuthTokenMissing,
			"authentication required",
			nil,
		)
	}

	if p.RequiredScope != "" && !principal.HasScope(p.RequiredScope) {
		return types.NewAppError(
			types.ErrCodePermissionScope,
			"insufficient scope for this operation",
			nil,
		)
	}

	if len(p.AnyRole) > 0 && !principal.HasAnyRole(p.AnyRole...) {
		return types.NewAppError(
			types.ErrCodePermissionRole,
			"insufficient role for this operation",
			nil,
		)
	}

	if p.RequireManager {
		staffType := ""
		if directory != nil {
			staffType = directory.StaffType(ctx, principal.UserID)
		}
		if !strings.EqualFold(staffType, StaffTypeManager) {
			return types.NewAppError(
				types.ErrCodePermissionNotManager,
				"operation requires manager staff type",
				nil,
			)
		}
	}

	return nil
}
