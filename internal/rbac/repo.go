package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// Repository defines persistence operations for the RBAC graph.
type Repository interface {
	CreateRole(ctx context.Context, name string, description *string) (*Role, error)
	CreatePermission(ctx context.Context, perm NewPermission) (*Permission, error)
	GetPermissionByKey(ctx context.Context, resource, action string) (*Permission, error)

	ListUserRoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListUserRoles(ctx context.Context, userID uuid.UUID) ([]UserRole, error)
	ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]RolePermission, error)

	FindUserRole(ctx context.Context, userID, roleID uuid.UUID) (*UserRole, error)
	InsertUserRole(ctx context.Context, userID, roleID uuid.UUID) (*UserRole, error)
	FindRolePermission(ctx context.Context, roleID, permissionID uuid.UUID) (*RolePermission, error)
	InsertRolePermission(ctx context.Context, roleID, permissionID uuid.UUID) (*RolePermission, error)
	AnyRoleHasPermission(ctx context.Context, roleIDs []uuid.UUID, permissionID uuid.UUID) (bool, error)

	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	RoleExists(ctx context.Context, id uuid.UUID) (bool, error)
	PermissionExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PGRepository implements Repository using PostgreSQL. All uniqueness rules
// (role name, permission name, edge pairs) are enforced by the store's
// constraints, never by in-process locking.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const (
	roleColumns       = `id, name, description, created_at, updated_at`
	permissionColumns = `id, name, description, resource, action, created_at, updated_at`
)

// CreateRole inserts a new role. A name collision surfaces as shared.ErrConflict.
func (r *PGRepository) CreateRole(ctx context.Context, name string, description *string) (*Role, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description)
		VALUES ($1, $2)
		RETURNING `+roleColumns, name, description)
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("rbac: role %q already exists: %w", name, shared.ErrConflict)
		}
		return nil, err
	}
	return &role, nil
}

// CreatePermission inserts a new permission. A name collision surfaces as
// shared.ErrConflict.
func (r *PGRepository) CreatePermission(ctx context.Context, perm NewPermission) (*Permission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (name, description, resource, action)
		VALUES ($1, $2, $3, $4)
		RETURNING `+permissionColumns,
		perm.Name, perm.Description, perm.Resource, perm.Action)
	created, err := scanPermission(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("rbac: permission %q already exists: %w", perm.Name, shared.ErrConflict)
		}
		return nil, err
	}
	return created, nil
}

// GetPermissionByKey fetches the permission matching a (resource, action) pair.
func (r *PGRepository) GetPermissionByKey(ctx context.Context, resource, action string) (*Permission, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+permissionColumns+`
		FROM permissions
		WHERE resource = $1 AND action = $2
		LIMIT 1`, resource, action)
	return scanPermission(row)
}

// ListUserRoleIDs returns the ids of all roles assigned to the user.
func (r *PGRepository) ListUserRoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT role_id FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListUserRoles returns all role edges for the user.
func (r *PGRepository) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]UserRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, role_id, created_at
		FROM user_roles
		WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var edges []UserRole
	for rows.Next() {
		var edge UserRole
		if err := rows.Scan(&edge.ID, &edge.UserID, &edge.RoleID, &edge.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

// ListRolePermissions returns all permission edges for the role.
func (r *PGRepository) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]RolePermission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, role_id, permission_id, created_at
		FROM role_permissions
		WHERE role_id = $1
		ORDER BY created_at`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var edges []RolePermission
	for rows.Next() {
		var edge RolePermission
		if err := rows.Scan(&edge.ID, &edge.RoleID, &edge.PermissionID, &edge.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

// FindUserRole fetches the user-role edge for a (user, role) pair.
func (r *PGRepository) FindUserRole(ctx context.Context, userID, roleID uuid.UUID) (*UserRole, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, role_id, created_at
		FROM user_roles
		WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	var edge UserRole
	if err := row.Scan(&edge.ID, &edge.UserID, &edge.RoleID, &edge.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &edge, nil
}

// InsertUserRole inserts a user-role edge with a server-assigned timestamp.
// The pair-unique index maps to shared.ErrConflict; a missing endpoint FK
// maps to shared.ErrNotFound.
func (r *PGRepository) InsertUserRole(ctx context.Context, userID, roleID uuid.UUID) (*UserRole, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		RETURNING id, user_id, role_id, created_at`, userID, roleID)
	var edge UserRole
	if err := row.Scan(&edge.ID, &edge.UserID, &edge.RoleID, &edge.CreatedAt); err != nil {
		return nil, classifyEdgeError(err)
	}
	return &edge, nil
}

// FindRolePermission fetches the role-permission edge for a (role, permission) pair.
func (r *PGRepository) FindRolePermission(ctx context.Context, roleID, permissionID uuid.UUID) (*RolePermission, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, role_id, permission_id, created_at
		FROM role_permissions
		WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	var edge RolePermission
	if err := row.Scan(&edge.ID, &edge.RoleID, &edge.PermissionID, &edge.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &edge, nil
}

// InsertRolePermission inserts a role-permission edge with a server-assigned
// timestamp. Error classification matches InsertUserRole.
func (r *PGRepository) InsertRolePermission(ctx context.Context, roleID, permissionID uuid.UUID) (*RolePermission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		RETURNING id, role_id, permission_id, created_at`, roleID, permissionID)
	var edge RolePermission
	if err := row.Scan(&edge.ID, &edge.RoleID, &edge.PermissionID, &edge.CreatedAt); err != nil {
		return nil, classifyEdgeError(err)
	}
	return &edge, nil
}

// AnyRoleHasPermission reports whether any of the roles carries the permission.
func (r *PGRepository) AnyRoleHasPermission(ctx context.Context, roleIDs []uuid.UUID, permissionID uuid.UUID) (bool, error) {
	ids := make([]string, len(roleIDs))
	for i, id := range roleIDs {
		ids[i] = id.String()
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM role_permissions
			WHERE role_id = ANY($1::uuid[]) AND permission_id = $2
		)`, ids, permissionID).Scan(&exists)
	return exists, err
}

// UserExists reports whether a user row exists.
func (r *PGRepository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
}

// RoleExists reports whether a role row exists.
func (r *PGRepository) RoleExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, id)
}

// PermissionExists reports whether a permission row exists.
func (r *PGRepository) PermissionExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM permissions WHERE id = $1)`, id)
}

func (r *PGRepository) exists(ctx context.Context, query string, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, query, id).Scan(&exists)
	return exists, err
}

func scanPermission(row pgx.Row) (*Permission, error) {
	var perm Permission
	err := row.Scan(
		&perm.ID,
		&perm.Name,
		&perm.Description,
		&perm.Resource,
		&perm.Action,
		&perm.CreatedAt,
		&perm.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &perm, nil
}

func classifyEdgeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation on the edge pair
			return fmt.Errorf("rbac: edge already exists: %w", shared.ErrConflict)
		case "23503": // foreign_key_violation on an endpoint
			return fmt.Errorf("rbac: edge endpoint missing: %w", shared.ErrNotFound)
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PGRepository)(nil)
