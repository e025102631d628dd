package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/diewo77/giardino/gate"
	"github.com/diewo77/giardino/httpx"
	"github.com/diewo77/giardino/internal/apperr"
	"github.com/diewo77/giardino/internal/db"
	"github.com/diewo77/giardino/internal/models"
	"github.com/diewo77/giardino/internal/repository"
	"github.com/diewo77/giardino/validation"
)

// AdminUsersHandler manages back-office accounts and their roles.
type AdminUsersHandler struct {
	db    *gorm.DB
	users *repository.Repository[models.AdminUser]
	// CacheResolver is invalidated when a role changes.
	CacheResolver *gate.CachedResolver[uuid.UUID]
}

func NewAdminUsersHandler(gdb *gorm.DB, cache *gate.CachedResolver[uuid.UUID]) *AdminUsersHandler {
	return &AdminUsersHandler{db: gdb, users: repository.AdminUsers(gdb), CacheResolver: cache}
}

func (h *AdminUsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.List(r.Context(), listParams(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

type adminUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (h *AdminUsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in adminUserInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = string(models.RoleStaff)
	}
	v := make(validation.Violations)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	if in.Password != "" && len(in.Password) < 8 {
		v["password"] = "too_short"
	}
	validation.OneOf("role", models.Role(in.Role).Valid(), v)
	if err := v.Err(); err != nil {
		httpx.Error(w, err)
		return
	}
	u, err := db.CreateAdmin(h.db.WithContext(r.Context()), in.Email, in.Password, in.Name, models.Role(in.Role))
	if err != nil {
		httpx.Error(w, repository.Translate("user", "create user", err))
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

type roleInput struct {
	Role string `json:"role"`
}

// SetRole changes the role of user {id}; the cached profile is dropped so
// the change applies on the next request.
func (h *AdminUsersHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in roleInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	role := models.Role(in.Role)
	if !role.Valid() {
		httpx.Error(w, apperr.Validation("invalid role", map[string]string{"role": "invalid_value"}))
		return
	}
	if err := h.users.Update(ctx, id, map[string]any{"role": role}); err != nil {
		httpx.Error(w, err)
		return
	}
	if h.CacheResolver != nil {
		h.CacheResolver.Invalidate(id)
	}
	u, err := h.users.Get(ctx, id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}
