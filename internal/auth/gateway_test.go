package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayRequest(t *testing.T, forwarded string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/leads/abc", nil)
	if forwarded != "" {
		r.Header.Set(ForwardedIdentityHeader, forwarded)
	}
	return r
}

func TestGatewaySourceAnonymousWithoutHeader(t *testing.T) {
	principal, err := GatewaySource{}.Resolve(context.Background(), gatewayRequest(t, ""))

	require.NoError(t, err)
	assert.Nil(t, principal)
}

func TestGatewaySourceForwardedIdentity(t *testing.T) {
	principal, err := GatewaySource{Logger: slog.Default()}.Resolve(context.Background(),
		gatewayRequest(t, "u-9|adviser|leads:import|gw@example.com"))

	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, "u-9", principal.UserID)
	assert.Equal(t, []string{"adviser"}, principal.Roles)
	assert.Equal(t, []string{"leads:import"}, principal.Scopes)
	assert.Equal(t, "gw@example.com", principal.Email)
}

func TestGatewaySourceMalformedHeaderDegradesToAnonymous(t *testing.T) {
	for name, forwarded := range map[string]string{
		"blank user":  " |adviser",
		"no roles":    "u-9|",
		"only spaces": "   ",
	} {
		t.Run(name, func(t *testing.T) {
			principal, err := GatewaySource{Logger: slog.Default()}.Resolve(
				context.Background(), gatewayRequest(t, forwarded))

			require.NoError(t, err)
			assert.Nil(t, principal)
		})
	}
}

func TestGatewaySourceIgnoresAuthorizationHeader(t *testing.T) {
	r := gatewayRequest(t, "")
	r.Header.Set("Authorization", "Bearer u-9|adviser")

	principal, err := GatewaySource{}.Resolve(context.Background(), r)

	require.NoError(t, err)
	assert.Nil(t, principal)
}
