package middleware

import (
	"net/http"

	"github.com/batiserv/batiserv-backend/api/responses"
	"github.com/batiserv/batiserv-backend/pkg/enums"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/logger"
)

// RequireAdmin rejects requests whose actor is not an administrator.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRoles(logg, enums.UserRoleAdmin)
}

// RequireEditor allows editors and administrators through; viewers stay read-only.
func RequireEditor(logg *logger.Logger) func(http.Handler) http.Handler {
	return requireRoles(logg, enums.UserRoleEditor, enums.UserRoleAdmin)
}

func requireRoles(logg *logger.Logger, allowed ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := RoleFromContext(r.Context())
			for _, role := range allowed {
				if actor == string(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
		})
	}
}
