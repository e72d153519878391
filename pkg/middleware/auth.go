package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/httputil"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/logger"
)

type authContextKey string

const (
	userIDContextKey authContextKey = "auth_user_id"
	roleContextKey   authContextKey = "auth_role"

	// TokenCookieName is the cookie the login handler sets and Authenticate reads.
	TokenCookieName = "token"
)

// TokenVerifier validates a token string and returns the subject user ID and role.
type TokenVerifier interface {
	Verify(token string) (userID, role string, err error)
}

// Authenticate validates the JWT carried either in the token cookie or in the
// Authorization bearer header and stores the authenticated user's ID and role
// in the request context. Requests without a valid token get a 401.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeAuthError(w, "authentication required")
				return
			}

			userID, role, err := verifier.Verify(token)
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			ctx = context.WithValue(ctx, roleContextKey, role)
			ctx = logger.WithUserID(ctx, userID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through only if the authenticated user holds
// one of the given roles. Must be mounted after Authenticate.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if _, ok := allowed[role]; !ok {
				httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "FORBIDDEN",
						Message: "insufficient permissions",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns the authenticated user's ID, or "" if the request
// was not authenticated.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDContextKey).(string); ok {
		return id
	}
	return ""
}

// RoleFromContext returns the authenticated user's role, or "" if the request
// was not authenticated.
func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleContextKey).(string); ok {
		return role
	}
	return ""
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}

	return ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
