package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

func TestRespondError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("user abc: %w", shared.ErrNotFound), http.StatusNotFound},
		{"conflict", shared.ErrConflict, http.StatusConflict},
		{"invalid credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden},
		{"external provider", shared.ErrExternalProvider, http.StatusInternalServerError},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tc.wantStatus, problem.Status)
			// Internal error text must not leak to the caller.
			assert.NotContains(t, rec.Body.String(), "connection reset")
			assert.NotContains(t, rec.Body.String(), "user abc")
		})
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Body = http.NoBody

	var target struct {
		Email string `json:"email"`
	}
	assert.Error(t, DecodeJSON(req, &target))

	req = httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"email":"a@x.com","unexpected":true}`))
	assert.Error(t, DecodeJSON(req, &target))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "a@x.com", target.Email)
}
