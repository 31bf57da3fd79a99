package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/tasktracer/internal/middleware"
	"github.com/vaughan-dsouza/tasktracer/internal/models"
	"github.com/vaughan-dsouza/tasktracer/internal/policy"
	"github.com/vaughan-dsouza/tasktracer/internal/repo"
	"github.com/vaughan-dsouza/tasktracer/internal/utils"
)

type TaskHandler struct {
	tasks repo.TaskStore
	log   *zap.Logger
}

func NewTaskHandler(tasks repo.TaskStore, log *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

// ---------------------- CREATE ----------------------

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	var body struct {
		Title       string        `json:"title"`
		Description string        `json:"description"`
		DueDate     *time.Time    `json:"due_date"`
		Status      models.Status `json:"status"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if body.Title == "" {
		utils.JSONError(w, http.StatusBadRequest, "title is required")
		return
	}
	if body.Status == "" {
		body.Status = models.StatusPending
	}
	if !body.Status.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "invalid status")
		return
	}

	task, err := h.tasks.Create(r.Context(), id.UserID, repo.TaskFields{
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		Status:      body.Status,
	})
	if err != nil {
		h.log.Error("create task failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	utils.JSON(w, http.StatusCreated, task)
}

// ---------------------- LIST ----------------------

// List returns the caller's tasks. Admins may pass all=true to list across
// every owner. Status and search filters are conjunctive.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	skip, limit, ok := parsePagination(w, r)
	if !ok {
		return
	}

	filter := repo.ListFilter{
		OwnerID: &id.UserID,
		Search:  r.URL.Query().Get("search"),
		Skip:    skip,
		Limit:   limit,
	}

	if status := models.Status(r.URL.Query().Get("status")); status != "" {
		if !status.Valid() {
			utils.JSONError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = status
	}

	if r.URL.Query().Get("all") == "true" && id.Role == models.RoleAdmin {
		filter.OwnerID = nil
	}

	tasks, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		h.log.Error("list tasks failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	utils.JSON(w, http.StatusOK, tasks)
}

// ---------------------- GET ONE ----------------------

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, ok := h.authorize(w, r, policy.ActionReadTask)
	if !ok {
		return
	}

	utils.JSON(w, http.StatusOK, task)
}

// ---------------------- UPDATE ----------------------

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	task, ok := h.authorize(w, r, policy.ActionUpdateTask)
	if !ok {
		return
	}

	var body struct {
		Title       *string        `json:"title"`
		Description *string        `json:"description"`
		DueDate     *time.Time     `json:"due_date"`
		Status      *models.Status `json:"status"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	if body.Title != nil && *body.Title == "" {
		utils.JSONError(w, http.StatusBadRequest, "title must not be empty")
		return
	}
	if body.Status != nil && !body.Status.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "invalid status")
		return
	}

	updated, err := h.tasks.Update(r.Context(), task.ID, repo.TaskUpdate{
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		Status:      body.Status,
	})
	if errors.Is(err, repo.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.log.Error("update task failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	utils.JSON(w, http.StatusOK, updated)
}

// ---------------------- DELETE ----------------------

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, ok := h.authorize(w, r, policy.ActionDeleteTask)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), task.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "task not found")
			return
		}
		h.log.Error("delete task failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorize loads the task from the {id} URL param and checks the caller
// may perform action on it. On failure the response has been written.
func (h *TaskHandler) authorize(w http.ResponseWriter, r *http.Request, action policy.Action) (*models.Task, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "missing credentials")
		return nil, false
	}

	taskID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return nil, false
	}

	task, err := h.tasks.Get(r.Context(), taskID)
	if errors.Is(err, repo.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "task not found")
		return nil, false
	}
	if err != nil {
		h.log.Error("get task failed", zap.Error(err))
		utils.ServerError(w)
		return nil, false
	}

	if !policy.Permit(id, action, task.OwnerID) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return nil, false
	}

	return task, true
}
