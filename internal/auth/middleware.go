package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aegis-iam/aegis-iam/internal/platform/httpx"
	"github.com/aegis-iam/aegis-iam/internal/shared"
	"github.com/aegis-iam/aegis-iam/internal/token"
)

const bearerPrefix = "Bearer "

// Middleware authenticates bearer tokens on protected routes.
type Middleware struct {
	Tokens *token.Service
	Logger *slog.Logger
}

// RequireAuth extracts and verifies the Authorization header and attaches
// the token subject to the request context. Any failure short-circuits with
// 401; the verification failure class is never exposed to the caller.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing authorization token")
			return
		}
		if !strings.HasPrefix(header, bearerPrefix) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid token format")
			return
		}
		subject, err := m.Tokens.Verify(header[len(bearerPrefix):])
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("token rejected", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
			return
		}
		ctx := shared.ContextWithSubject(r.Context(), subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
