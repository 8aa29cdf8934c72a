package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// Service orchestrates RBAC operations.
type Service struct {
	repo  Repository
	cache *PermissionCache
}

// NewService constructs a Service. The cache may be nil, in which case every
// permission lookup goes straight to the store.
func NewService(repo Repository, cache *PermissionCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, name string, description *string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("rbac: role name required")
	}
	return s.repo.CreateRole(ctx, name, description)
}

// CreatePermission inserts a new permission.
func (s *Service) CreatePermission(ctx context.Context, perm NewPermission) (*Permission, error) {
	perm.Name = strings.TrimSpace(perm.Name)
	perm.Resource = strings.TrimSpace(perm.Resource)
	perm.Action = strings.TrimSpace(perm.Action)
	if perm.Name == "" || perm.Resource == "" || perm.Action == "" {
		return nil, errors.New("rbac: permission name, resource and action required")
	}
	return s.repo.CreatePermission(ctx, perm)
}

// AssignRoleToUser links a role to a user. Assigning twice is idempotent and
// returns the existing edge. Both endpoints must exist.
func (s *Service) AssignRoleToUser(ctx context.Context, userID, roleID uuid.UUID) (*UserRole, error) {
	if edge, err := s.repo.FindUserRole(ctx, userID, roleID); err == nil {
		return edge, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if ok, err := s.repo.UserExists(ctx, userID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("rbac: user %s: %w", userID, shared.ErrNotFound)
	}
	if ok, err := s.repo.RoleExists(ctx, roleID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("rbac: role %s: %w", roleID, shared.ErrNotFound)
	}

	edge, err := s.repo.InsertUserRole(ctx, userID, roleID)
	if errors.Is(err, shared.ErrConflict) {
		// A concurrent assignment won the insert race; the pair-unique index
		// guarantees the edge now exists.
		return s.repo.FindUserRole(ctx, userID, roleID)
	}
	return edge, err
}

// AssignPermissionToRole ties a permission to a role with the same
// idempotence rules as AssignRoleToUser.
func (s *Service) AssignPermissionToRole(ctx context.Context, roleID, permissionID uuid.UUID) (*RolePermission, error) {
	if edge, err := s.repo.FindRolePermission(ctx, roleID, permissionID); err == nil {
		return edge, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if ok, err := s.repo.RoleExists(ctx, roleID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("rbac: role %s: %w", roleID, shared.ErrNotFound)
	}
	if ok, err := s.repo.PermissionExists(ctx, permissionID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("rbac: permission %s: %w", permissionID, shared.ErrNotFound)
	}

	edge, err := s.repo.InsertRolePermission(ctx, roleID, permissionID)
	if errors.Is(err, shared.ErrConflict) {
		return s.repo.FindRolePermission(ctx, roleID, permissionID)
	}
	return edge, err
}

// HasPermission resolves whether the user holds the (resource, action)
// permission through any assigned role. Missing roles, an unknown permission
// or missing edges all resolve to false, never to an error.
func (s *Service) HasPermission(ctx context.Context, userID uuid.UUID, resource, action string) (bool, error) {
	roleIDs, err := s.repo.ListUserRoleIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(roleIDs) == 0 {
		return false, nil
	}

	perm, err := s.lookupPermission(ctx, resource, action)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return s.repo.AnyRoleHasPermission(ctx, roleIDs, perm.ID)
}

// ListUserRoles returns all role edges for a user.
func (s *Service) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]UserRole, error) {
	return s.repo.ListUserRoles(ctx, userID)
}

// ListRolePermissions returns all permission edges for a role.
func (s *Service) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]RolePermission, error) {
	return s.repo.ListRolePermissions(ctx, roleID)
}

func (s *Service) lookupPermission(ctx context.Context, resource, action string) (*Permission, error) {
	if s.cache == nil {
		return s.repo.GetPermissionByKey(ctx, resource, action)
	}
	return s.cache.Lookup(ctx, resource, action, func() (*Permission, error) {
		return s.repo.GetPermissionByKey(ctx, resource, action)
	})
}
