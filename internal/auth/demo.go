package auth

import (
	"context"
	"net/http"
	"strings"

	"leadsapi/internal/types"
)

// maxTokenSegments is the number of pipe-delimited segments a demo identity
// token may carry: userId, roles, scopes, email. Earlier token iterations
// carried only the first two; all forms are accepted.
const maxTokenSegments = 4

// DemoSource authenticates requests carrying the pipe-delimited demo bearer
// token:
//
//	Authorization: Bearer <userId>|<role1,role2,...>|<scope1,scope2,...>|<email>
//
// The token carries no signature or expiry; it exists purely so that local
// development and component tests can exercise the authorization policies
// without a token issuer. It must never be enabled outside local environments.
type DemoSource struct{}

// Resolve implements CredentialSource. A request without an Authorization
// header is anonymous; a present but unparsable header is a 401.
func (DemoSource) Resolve(_ context.Context, r *http.Request) (*types.Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}

	token := extractBearerToken(header)
	if token == "" {
		return nil, types.NewAppError(
			types.ErrCodeAuthTokenMalformed,
			"Authorization header must use the Bearer scheme",
			nil,
		)
	}

	return parsePipeIdentity(token)
}

// parsePipeIdentity parses the pipe-delimited identity format shared by the
// demo token and the gateway-forwarded identity header.
//
// Rules:
//   - at most maxTokenSegments segments, each trimmed of surrounding whitespace
//   - segment 0 (userId) is required and must be non-blank
//   - segment 1 (roles) is split on comma, entries trimmed, empties dropped,
//     duplicates removed case-insensitively; at least one role must remain
//   - segment 2 (scopes) is parsed the same way but may end up empty
//   - segment 3 (email) is trimmed and attached when non-blank
//
// The zero-role rejection is deliberate: a role-less token must never reach
// the policy engine looking like a half-valid identity.
func parsePipeIdentity(token string) (*types.Principal, error) {
	segments := strings.SplitN(token, "|", maxTokenSegments)
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	if segments[0] == "" {
		return nil, types.NewAppError(
			types.ErrCodeAuthTokenMalformed,
			"invalid token format, expected <userId>|<role1,role2,...>",
			nil,
		)
	}

	var roles []string
	if len(segments) > 1 {
		roles = types.NormalizeSet(strings.Split(segments[1], ","))
	}
	if len(roles) == 0 {
		return nil, types.NewAppError(
			types.ErrCodeAuthTokenInvalid,
			"at least one role is required in the token",
			nil,
		)
	}

	var scopes []string
	if len(segments) > 2 {
		scopes = types.NormalizeSet(strings.Split(segments[2], ","))
	}

	var email string
	if len(segments) > 3 {
		email = segments[3]
	}

	return &types.Principal{
		UserID: segments[0],
		Roles:  roles,
		Scopes: scopes,
		Email:  email,
	}, nil
}
