package middleware

import (
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/frahmantamala/revolv-ledger/internal/auth"
	"github.com/frahmantamala/revolv-ledger/internal/transport"
)

// RequirePermissions lets the request through when the authenticated user
// holds any of permissions. It must run after the auth middleware.
func RequirePermissions(logger *slog.Logger, permissions ...string) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				base.HandleError(w, errors.ErrInvalidToken)
				return
			}

			if !user.HasAnyPermission(permissions) {
				base.Logger.Warn("access denied: user lacks required permissions",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				base.HandleError(w, errors.ErrInsufficientAccess)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards the admin ledger routes.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return RequirePermissions(logger, auth.PermissionAdmin)
}
