package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vaughan-dsouza/tasktracer/internal/repo"
	"github.com/vaughan-dsouza/tasktracer/internal/token"
	"github.com/vaughan-dsouza/tasktracer/internal/utils"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Handler struct {
	Auth  *AuthHandler
	Tasks *TaskHandler
	Admin *AdminHandler
}

func New(users repo.UserStore, tasks repo.TaskStore, tokens *token.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:  NewAuthHandler(users, tokens, logger),
		Tasks: NewTaskHandler(tasks, logger),
		Admin: NewAdminHandler(users, tasks, logger),
	}
}

// parsePagination reads skip/limit query params, applying defaults and the
// page size cap. Writes a 400 and returns false on invalid values.
func parsePagination(w http.ResponseWriter, r *http.Request) (skip, limit int, ok bool) {
	skip, limit = 0, defaultLimit

	if v := r.URL.Query().Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.JSONError(w, http.StatusBadRequest, "skip must be a non-negative integer")
			return 0, 0, false
		}
		skip = n
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.JSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return 0, 0, false
		}
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return skip, limit, true
}

// pathID parses the {id} URL parameter. Writes a 400 on garbage.
func pathID(w http.ResponseWriter, idStr string) (int64, bool) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		utils.JSONError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
