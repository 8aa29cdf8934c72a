package rbac

import (
	"log/slog"
	"net/http"

	"github.com/aegis-iam/aegis-iam/internal/platform/httpx"
	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// Middleware wires RBAC authorization gates for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Require gates a route on one (resource, action) permission. The bearer
// token middleware must run first; a request without a subject is rejected
// as unauthorized, a subject without the permission as forbidden.
func (m Middleware) Require(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := shared.SubjectFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}
			granted, err := m.Service.HasPermission(r.Context(), subject, resource, action)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("resolve permission",
						slog.String("resource", resource),
						slog.String("action", action),
						slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !granted {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
