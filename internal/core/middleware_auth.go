package core

import (
	"errors"
	"log/slog"
	"net/http"

	"leadsapi/internal/auth"
	"leadsapi/internal/types"
)

// AuthMiddleware resolves request credentials to a Principal.
//
//  1. Calls the configured CredentialSource to resolve the request.
//  2. On success with a Principal, injects it into the request context via
//     types.WithPrincipal.
//  3. On success with no Principal (no credential presented, or a gateway
//     header that failed to parse), the request continues anonymously.
//     Policy middleware decides whether anonymous access is acceptable.
//  4. On failure (a credential was presented but is malformed, invalid, or
//     expired), returns 401 Unauthorized with the matching error code.
//
// If the Source field on Server is nil (e.g., during tests that don't inject
// one), the middleware passes through without authentication.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Source == nil {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := s.Source.Resolve(r.Context(), r)
		if err != nil {
			s.handleAuthError(w, r, err)
			return
		}

		if principal == nil {
			// No credential presented. Anonymous requests proceed; policies
			// reject them where authentication is required.
			next.ServeHTTP(w, r)
			return
		}

		ctx := types.WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleAuthError inspects the error from CredentialSource.Resolve and
// writes the appropriate 401 response with the correct error code.
func (s *Server) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case types.ErrCodeAuthTokenExpired:
			s.Logger.Warn("authentication failed: token expired",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			s.writeAuthError(w, r, types.ErrCodeAuthTokenExpired, "Authentication token has expired")
			return
		case types.ErrCodeAuthTokenMalformed, types.ErrCodeAuthTokenInvalid:
			s.Logger.Warn("authentication failed: token rejected",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("error_code", string(appErr.Code)),
			)
			s.writeAuthError(w, r, appErr.Code, appErr.Message)
			return
		}
	}

	// Generic error: log it but don't leak internal details.
	s.Logger.Error("authentication failed: unexpected error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	s.writeAuthError(w, r, types.ErrCodeAuthTokenInvalid, "Authentication failed")
}

// writeAuthError writes a 401 Unauthorized JSON response with the given
// error code.
func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, code types.ErrorCode, message string) {
	resp := APIErrorResponse{
		Error: ErrorDetail{
			Code:      string(code),
			Message:   message,
			RequestID: types.GetRequestID(r.Context()),
		},
	}
	JSON(w, r, http.StatusUnauthorized, resp)
}

// RequirePolicy returns middleware that evaluates the given authorization
// policy against the Principal in the request context.
//
// An anonymous request (no Principal in context) fails with 401. A Principal
// lacking the policy's scope, roles, or manager staff type fails with 403.
// Manager checks consult the Server's StaffDirectory.
func (s *Server) RequirePolicy(policy auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := types.GetPrincipal(r.Context())

			if err := policy.Evaluate(r.Context(), principal, s.Directory); err != nil {
				Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
