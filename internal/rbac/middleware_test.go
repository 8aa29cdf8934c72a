package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

func TestRequirePermission(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	granted := repo.addUser()
	denied := repo.addUser()

	role, err := svc.CreateRole(ctx, "admin", nil)
	require.NoError(t, err)
	perm, err := svc.CreatePermission(ctx, NewPermission{Name: "view dashboard", Resource: "dashboard", Action: "view"})
	require.NoError(t, err)
	_, err = svc.AssignPermissionToRole(ctx, role.ID, perm.ID)
	require.NoError(t, err)
	_, err = svc.AssignRoleToUser(ctx, granted, role.ID)
	require.NoError(t, err)

	mw := Middleware{Service: svc}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	gate := mw.Require("dashboard", "view")(next)

	cases := []struct {
		name       string
		subject    *uuid.UUID
		wantStatus int
	}{
		{"no subject", nil, http.StatusUnauthorized},
		{"subject without permission", &denied, http.StatusForbidden},
		{"subject with permission", &granted, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			if tc.subject != nil {
				req = req.WithContext(shared.ContextWithSubject(req.Context(), *tc.subject))
			}
			rec := httptest.NewRecorder()
			gate.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
