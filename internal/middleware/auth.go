package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/fitcoach/internal/auth"
	"github.com/dukerupert/fitcoach/internal/store"
)

const accessTokenCookieName = "access_token"

// RequireAuth verifies the identity provider's access token, ensures the
// caller has a users row and populates AuthContext.
func RequireAuth(verifier *auth.Verifier, userStore *store.UserStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("rejected access token", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := userStore.Ensure(claims.Subject, claims.Email)
			if err != nil || user == nil {
				logger.Error("resolve user", "user_id", claims.Subject, "error", err)
				http.Error(w, "Internal Error", http.StatusInternalServerError)
				return
			}

			ac := auth.AuthContext{
				UserID: user.ID,
				Email:  claims.Email,
				Role:   user.Role,
			}
			setLoggedUser(r.Context(), ac.UserID)
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

// RequireAdmin checks that the authenticated user has the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(accessTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
