// Package auth turns inbound credentials into a request Principal and decides
// whether that principal may perform an operation.
//
// Credential handling is split by trust source: a demo pipe-delimited bearer
// token (local development), an HS256-signed JWT, or identity claims forwarded
// by an upstream API gateway that has already authenticated the caller. The
// three sources produce the same fixed-shape Principal, so the policy engine
// is independent of the deployment's auth configuration.
package auth

import (
	"context"
	"net/http"
	"strings"

	"leadsapi/internal/types"
)

// CredentialSource resolves the credentials on an inbound request to a
// Principal.
//
// A (nil, nil) return means the request is anonymous: either no credential was
// presented, or the source is configured to degrade to anonymous on parse
// failure (the gateway-trust source). The policy engine is then responsible
// for rejecting unauthenticated access. A non-nil error always carries a
// *types.AppError and maps to a 401 response.
type CredentialSource interface {
	Resolve(ctx context.Context, r *http.Request) (*types.Principal, error)
}

// AnonymousSource never authenticates anyone. It backs the no-op auth mode
// used when exercising endpoints in isolation; every policy-guarded route
// then responds 401.
type AnonymousSource struct{}

// Resolve implements CredentialSource.
func (AnonymousSource) Resolve(context.Context, *http.Request) (*types.Principal, error) {
	return nil, nil
}

// extractBearerToken parses an Authorization header value and returns the
// token string. It expects the format "Bearer <token>" (case-insensitive
// scheme per RFC 7235). Returns empty string if the format is invalid.
func extractBearerToken(authHeader string) string {
	const prefix = "Bearer "
	if len(authHeader) < len(prefix) {
		return ""
	}
	if !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(prefix):])
}
