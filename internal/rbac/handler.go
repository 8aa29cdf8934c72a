package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aegis-iam/aegis-iam/internal/platform/httpx"
	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// Handler manages role and permission administration endpoints. All routes
// assume the bearer token middleware already ran.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers permission administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/roles", h.handleCreateRole)
	r.Post("/permissions", h.handleCreatePermission)
	r.Post("/users/{user_id}/roles/{role_id}", h.handleAssignRole)
	r.Post("/roles/{role_id}/permissions/{permission_id}", h.handleAssignPermission)
	r.Get("/users/{user_id}/roles", h.handleListUserRoles)
	r.Get("/roles/{role_id}/permissions", h.handleListRolePermissions)
}

type createRoleRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type createPermissionRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Resource    string  `json:"resource" validate:"required,max=100"`
	Action      string  `json:"action" validate:"required,max=100"`
}

type roleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type permissionResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type userRoleResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	RoleID    uuid.UUID `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

type rolePermissionResponse struct {
	ID           uuid.UUID `json:"id"`
	RoleID       uuid.UUID `json:"role_id"`
	PermissionID uuid.UUID `json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name is required")
		return
	}

	role, err := h.service.CreateRole(r.Context(), req.Name, req.Description)
	if err != nil {
		if !errors.Is(err, shared.ErrConflict) {
			h.logger.Error("create role", slog.String("name", req.Name), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toRoleResponse(role))
}

func (h *Handler) handleCreatePermission(w http.ResponseWriter, r *http.Request) {
	var req createPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name, resource and action are required")
		return
	}

	perm, err := h.service.CreatePermission(r.Context(), NewPermission{
		Name:        req.Name,
		Description: req.Description,
		Resource:    req.Resource,
		Action:      req.Action,
	})
	if err != nil {
		if !errors.Is(err, shared.ErrConflict) {
			h.logger.Error("create permission", slog.String("name", req.Name), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPermissionResponse(perm))
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "user_id")
	if !ok {
		return
	}
	roleID, ok := h.pathID(w, r, "role_id")
	if !ok {
		return
	}

	edge, err := h.service.AssignRoleToUser(r.Context(), userID, roleID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("assign role", slog.String("user_id", userID.String()), slog.String("role_id", roleID.String()), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, userRoleResponse{
		ID:        edge.ID,
		UserID:    edge.UserID,
		RoleID:    edge.RoleID,
		CreatedAt: edge.CreatedAt,
	})
}

func (h *Handler) handleAssignPermission(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathID(w, r, "role_id")
	if !ok {
		return
	}
	permissionID, ok := h.pathID(w, r, "permission_id")
	if !ok {
		return
	}

	edge, err := h.service.AssignPermissionToRole(r.Context(), roleID, permissionID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("assign permission", slog.String("role_id", roleID.String()), slog.String("permission_id", permissionID.String()), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rolePermissionResponse{
		ID:           edge.ID,
		RoleID:       edge.RoleID,
		PermissionID: edge.PermissionID,
		CreatedAt:    edge.CreatedAt,
	})
}

func (h *Handler) handleListUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "user_id")
	if !ok {
		return
	}
	edges, err := h.service.ListUserRoles(r.Context(), userID)
	if err != nil {
		h.logger.Error("list user roles", slog.String("user_id", userID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userRoleResponse, 0, len(edges))
	for _, edge := range edges {
		out = append(out, userRoleResponse{
			ID:        edge.ID,
			UserID:    edge.UserID,
			RoleID:    edge.RoleID,
			CreatedAt: edge.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleListRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathID(w, r, "role_id")
	if !ok {
		return
	}
	edges, err := h.service.ListRolePermissions(r.Context(), roleID)
	if err != nil {
		h.logger.Error("list role permissions", slog.String("role_id", roleID.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]rolePermissionResponse, 0, len(edges))
	for _, edge := range edges {
		out = append(out, rolePermissionResponse{
			ID:           edge.ID,
			RoleID:       edge.RoleID,
			PermissionID: edge.PermissionID,
			CreatedAt:    edge.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

func toRoleResponse(role *Role) roleResponse {
	return roleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

func toPermissionResponse(perm *Permission) permissionResponse {
	return permissionResponse{
		ID:          perm.ID,
		Name:        perm.Name,
		Description: perm.Description,
		Resource:    perm.Resource,
		Action:      perm.Action,
		CreatedAt:   perm.CreatedAt,
		UpdatedAt:   perm.UpdatedAt,
	}
}
