package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/centralelevate/elevate/internal/api/middleware"
	"github.com/centralelevate/elevate/internal/api/response"
	"github.com/centralelevate/elevate/internal/api/validation"
	"github.com/centralelevate/elevate/internal/auth"
)

// UserIssuer creates users with fresh API keys.
type UserIssuer interface {
	CreateUser(ctx context.Context, name, role string) (*auth.User, string, error)
}

type createUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type userResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	ApiKeyPrefix string  `json:"apiKeyPrefix"`
	CreatedAt    string  `json:"createdAt"`
	RevokedAt    *string `json:"revokedAt,omitempty"`
}

type userWithKeyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	ApiKey    string `json:"apiKey"`
	CreatedAt string `json:"createdAt"`
}

// meResponse describes the calling user. Elevated mirrors the role check the
// server enforces on mutations.
type meResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Elevated bool   `json:"elevated"`
}

const timeLayout = "2006-01-02T15:04:05Z"

// UserHandler handles user endpoints.
type UserHandler struct {
	issuer   UserIssuer
	userRepo auth.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(issuer UserIssuer, userRepo auth.UserRepository) *UserHandler {
	return &UserHandler{
		issuer:   issuer,
		userRepo: userRepo,
	}
}

// Me handles GET /me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}

	response.Success(w, http.StatusOK, meResponse{
		ID:       identity.UserID.String(),
		Name:     identity.UserName,
		Role:     identity.Role,
		Elevated: identity.IsElevated(),
	}, requestID)
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateUserRequest(validation.CreateUserRequest{
		Name: req.Name,
		Role: req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, rawKey, err := h.issuer.CreateUser(r.Context(), strings.TrimSpace(req.Name), req.Role)
	if err != nil {
		slog.Error("failed to create user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user", requestID)
		return
	}

	response.Success(w, http.StatusCreated, userWithKeyResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Role:      u.Role,
		ApiKey:    rawKey,
		CreatedAt: u.CreatedAt.UTC().Format(timeLayout),
	}, requestID)
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	users, err := h.userRepo.List(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users", requestID)
		return
	}

	items := make([]userResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		resp := userResponse{
			ID:           u.ID.String(),
			Name:         u.Name,
			Role:         u.Role,
			ApiKeyPrefix: u.ApiKeyPrefix,
			CreatedAt:    u.CreatedAt.UTC().Format(timeLayout),
		}
		if u.RevokedAt != nil {
			revoked := u.RevokedAt.UTC().Format(timeLayout)
			resp.RevokedAt = &revoked
		}
		items = append(items, resp)
	}

	response.SuccessList(w, http.StatusOK, items, len(items), "", requestID)
}

// Delete handles DELETE /users/{id} (soft-revoke). Callers cannot revoke
// their own key.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	if identity := middleware.GetIdentity(r.Context()); identity != nil && identity.UserID == id {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Cannot revoke your own API key", requestID)
		return
	}

	if err := h.userRepo.Revoke(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		if errors.Is(err, auth.ErrUserRevoked) {
			// Already revoked.
			response.NoContent(w)
			return
		}
		slog.Error("failed to revoke user", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke user", requestID)
		return
	}

	response.NoContent(w)
}
