package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/tasktracer/internal/middleware"
	"github.com/vaughan-dsouza/tasktracer/internal/models"
	"github.com/vaughan-dsouza/tasktracer/internal/repo"
	"github.com/vaughan-dsouza/tasktracer/internal/utils"
)

// AdminHandler serves the /admin subtree. Role enforcement happens in the
// RequireAdmin middleware before these run.
type AdminHandler struct {
	users repo.UserStore
	tasks repo.TaskStore
	log   *zap.Logger
}

func NewAdminHandler(users repo.UserStore, tasks repo.TaskStore, log *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, tasks: tasks, log: log}
}

// ListTasks lists tasks across all owners, with the same filter surface as
// the user-scoped listing.
func (h *AdminHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	filter := repo.ListFilter{
		Search: r.URL.Query().Get("search"),
		Skip:   skip,
		Limit:  limit,
	}

	if status := models.Status(r.URL.Query().Get("status")); status != "" {
		if !status.Valid() {
			utils.JSONError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = status
	}

	tasks, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		h.log.Error("admin list tasks failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	utils.JSON(w, http.StatusOK, tasks)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	users, err := h.users.List(r.Context(), skip, limit)
	if err != nil {
		h.log.Error("admin list users failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	utils.JSON(w, http.StatusOK, users)
}

// DeleteUser removes a user; their tasks go with them (schema cascade).
// Admins cannot delete their own account.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	userID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if userID == id.UserID {
		utils.JSONError(w, http.StatusConflict, "cannot delete own account")
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("delete user failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var body struct {
		Role models.Role `json:"role"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if !body.Role.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "invalid role")
		return
	}

	user, err := h.users.SetRole(r.Context(), userID, body.Role)
	if errors.Is(err, repo.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.log.Error("set role failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}
