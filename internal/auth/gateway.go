package auth

import (
	"context"
	"log/slog"
	"net/http"

	"leadsapi/internal/types"
)

// ForwardedIdentityHeader is the header an upstream API gateway uses to
// forward the authenticated caller's identity once it has validated the
// original credential. The value uses the same pipe-delimited format as the
// demo token, without the Bearer prefix:
//
//	X-Forwarded-Identity: <userId>|<role1,role2,...>|<scope1,scope2,...>|<email>
const ForwardedIdentityHeader = "X-Forwarded-Identity"

// GatewaySource trusts identity claims forwarded by an upstream gateway that
// performs token validation and policy evaluation before requests reach this
// service. It performs no credential verification of its own; deploying it
// without such a gateway in front leaves the service open.
//
// Unlike the local sources, a malformed forwarded header downgrades the
// request to anonymous instead of rejecting it. The policy engine then denies
// unauthenticated access, so the failure mode stays closed while the gateway
// remains the component that owns credential errors.
type GatewaySource struct {
	Logger *slog.Logger
}

// Resolve implements CredentialSource.
func (s GatewaySource) Resolve(_ context.Context, r *http.Request) (*types.Principal, error) {
	raw := r.Header.Get(ForwardedIdentityHeader)
	if raw == "" {
		return nil, nil
	}

	principal, err := parsePipeIdentity(raw)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("discarding unparsable forwarded identity",
				slog.String("error", err.Error()),
			)
		}
		return nil, nil
	}

	return principal, nil
}
