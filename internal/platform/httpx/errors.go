package httpx

import (
	"errors"
	"net/http"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// RespondError maps domain errors to HTTP problem responses. Credential and
// token failures never carry internal detail to the caller.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", "resource already exists")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "insufficient permissions")
	case errors.Is(err, shared.ErrExternalProvider):
		Problem(w, http.StatusInternalServerError, "Internal Error", "identity provider unavailable")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
