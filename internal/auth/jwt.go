package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"leadsapi/internal/types"
)

// JWTSource authenticates requests carrying an HS256-signed JWT. Signature and
// expiry are verified with zero clock-skew tolerance; issuer and audience are
// not validated (the token issuer for this service sets neither).
//
// Claims consumed: sub (required), role (string or array of strings), scope
// (space-delimited string), email. Unlike the demo token format, a verified
// JWT with zero roles still yields a principal; such a principal fails every
// role-gated policy downstream.
type JWTSource struct {
	key jwk.Key
}

// NewJWTSource creates a JWTSource verifying tokens against the given
// symmetric signing key.
func NewJWTSource(signingKey []byte) (*JWTSource, error) {
	if len(signingKey) == 0 {
		return nil, fmt.Errorf("signing key must not be empty")
	}
	key, err := jwk.Import(signingKey)
	if err != nil {
		return nil, fmt.Errorf("importing signing key: %w", err)
	}
	return &JWTSource{key: key}, nil
}

// Resolve implements CredentialSource. A request without an Authorization
// header is anonymous; any verification failure is a 401 and no partial
// principal is produced.
func (s *JWTSource) Resolve(_ context.Context, r *http.Request) (*types.Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}

	raw := extractBearerToken(header)
	if raw == "" {
		return nil, types.NewAppError(
			types.ErrCodeAuthTokenMalformed,
			"Authorization header must use the Bearer scheme",
			nil,
		)
	}

	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), s.key),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(0),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return nil, types.NewAppError(
				types.ErrCodeAuthTokenExpired,
				"authentication token has expired",
				err,
			)
		}
		return nil, types.NewAppError(
			types.ErrCodeAuthTokenInvalid,
			"invalid authentication token",
			err,
		)
	}

	subject, ok := token.Subject()
	if !ok || strings.TrimSpace(subject) == "" {
		return nil, types.NewAppError(
			types.ErrCodeAuthTokenInvalid,
			"token is missing the subject claim",
			nil,
		)
	}

	principal := &types.Principal{
		UserID: strings.TrimSpace(subject),
		Roles:  types.NormalizeSet(claimStrings(token, "role")),
	}

	var scope string
	if err := token.Get("scope", &scope); err == nil {
		principal.Scopes = types.NormalizeSet(strings.Fields(scope))
	}

	var email string
	if err := token.Get("email", &email); err == nil {
		principal.Email = strings.TrimSpace(email)
	}

	return principal, nil
}

// claimStrings reads a claim that token issuers encode either as a single
// string or as an array of strings, and returns it as a flat list.
func claimStrings(token jwt.Token, name string) []string {
	var raw any
	if err := token.Get(name, &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
