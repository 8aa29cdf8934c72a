package auth

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

// Handler wires HTTP endpoints for registration and login.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authMW    Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authMW Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		authMW:    authMW,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.authMW.RequireAuth)
		r.Get("/users/{user_id}", h.handleGetUser)
	})
}

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type credentialsResponse struct {
	Token  string    `json:"token"`
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

type userResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FullName  *string    `json:"full_name,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if detail, ok := h.validate(req); !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
		return
	}

	creds, err := h.service.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if !errors.Is(err, shared.ErrConflict) {
			h.logger.Error("register user", slog.String("email", req.Email), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, credentialsResponse{
		Token:  creds.Token,
		UserID: creds.UserID,
		Email:  creds.Email,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if detail, ok := h.validate(req); !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", detail)
		return
	}

	creds, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("login user", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, credentialsResponse{
		Token:  creds.Token,
		UserID: creds.UserID,
		Email:  creds.Email,
	})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("get user", slog.String("user_id", id.String()), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	})
}

func (h *Handler) validate(req any) (string, bool) {
	err := h.validator.Struct(req)
	if err == nil {
		return "", true
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldErrs[0].Field() + " is invalid", false
	}
	return "invalid request", false
}
