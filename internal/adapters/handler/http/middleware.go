package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/examdesk/examdesk/internal/core/ports"
)

type contextKey string

// ClaimsKey holds the *ports.TokenClaims of the authenticated caller.
const ClaimsKey contextKey = "authClaims"

const (
	apiPrefix       = "/api"
	accessCookie    = "jwt_token"
	queryTokenParam = "access_token"
)

// ClaimsFromContext returns the claims stored by Authenticator.
func ClaimsFromContext(ctx context.Context) (*ports.TokenClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*ports.TokenClaims)
	return claims, ok
}

// Authenticator validates the access token on protected routes. API
// requests carry the token in the Authorization header or the access_token
// query parameter; browser requests carry it in the session cookie.
// Unauthenticated API calls get 401; browser calls are sent to /login.
func Authenticator(tokens ports.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.ParseAccessToken(tokenFromRequest(r))
			if err != nil {
				if isAPIRequest(r) {
					writeError(w, http.StatusUnauthorized, "Authentication required")
				} else {
					http.Redirect(w, r, "/login", http.StatusSeeOther)
				}
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if isAPIRequest(r) {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
		return r.URL.Query().Get(queryTokenParam)
	}

	cookie, err := r.Cookie(accessCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, apiPrefix)
}
