package http

import (
	"net/http"
	"strings"

	"github.com/secmon-lab/toolforge/pkg/domain/model/auth"
	"github.com/secmon-lab/toolforge/pkg/utils/errutil"
	"github.com/secmon-lab/toolforge/pkg/utils/logging"
)

const bearerPrefix = "Bearer "

// authMiddleware verifies the bearer token and stores the caller in the context
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// NoAuthn mode runs every request as the configured user
			var token string
			if !authUC.IsNoAuthn() {
				header := r.Header.Get("Authorization")
				if header == "" {
					errutil.WriteError(w, http.StatusUnauthorized, "No authorization token provided.")
					return
				}

				var ok bool
				token, ok = strings.CutPrefix(header, bearerPrefix)
				if !ok || strings.TrimSpace(token) == "" {
					errutil.WriteError(w, http.StatusUnauthorized, "Malformed token.")
					return
				}
			}

			user, err := authUC.Authenticate(ctx, token)
			if err != nil {
				logging.From(ctx).Warn("authentication failed", "error", err.Error())
				errutil.WriteError(w, http.StatusUnauthorized, "Invalid token.")
				return
			}

			logger := logging.From(ctx).With("user_id", user.ID)
			ctx = logging.With(auth.ContextWithUser(ctx, user), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// adminMiddleware must run after authMiddleware
func adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		if user == nil || !user.IsAdmin {
			errutil.WriteError(w, http.StatusForbidden, "Forbidden: Admin access required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
