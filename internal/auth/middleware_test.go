package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-iam/aegis-iam/internal/auth"
	"github.com/aegis-iam/aegis-iam/internal/shared"
	"github.com/aegis-iam/aegis-iam/internal/token"
)

func TestRequireAuth(t *testing.T) {
	tokens := token.NewService([]byte("mw-secret"), time.Hour)
	mw := auth.Middleware{Tokens: tokens}

	var gotSubject uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := shared.SubjectFromContext(r.Context())
		require.True(t, ok)
		gotSubject = subject
		w.WriteHeader(http.StatusNoContent)
	})
	protected := mw.RequireAuth(next)

	userID := uuid.New()
	signed, err := tokens.Issue(userID)
	require.NoError(t, err)

	expired := token.NewService([]byte("mw-secret"), -time.Hour)
	expiredToken, err := expired.Issue(userID)
	require.NoError(t, err)

	foreign := token.NewService([]byte("other-secret"), time.Hour)
	foreignToken, err := foreign.Issue(userID)
	require.NoError(t, err)

	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{"no header", "", http.StatusUnauthorized, "missing authorization token"},
		{"no bearer prefix", signed, http.StatusUnauthorized, "invalid token format"},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, "invalid token"},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized, "invalid token"},
		{"foreign signature", "Bearer " + foreignToken, http.StatusUnauthorized, "invalid token"},
		{"valid token", "Bearer " + signed, http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantDetail != "" {
				assert.Contains(t, rec.Body.String(), tc.wantDetail)
			}
		})
	}
	assert.Equal(t, userID, gotSubject)
}
