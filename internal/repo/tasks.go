package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/tasktracer/internal/models"
)

// TaskFields are the caller-supplied fields for a new task.
type TaskFields struct {
	Title       string
	Description string
	DueDate     *time.Time
	Status      models.Status
}

// TaskUpdate is a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *models.Status
}

// ListFilter narrows and pages a task listing. A nil OwnerID means "all
// owners" (admin mode). Status and Search are conjunctive when both set.
type ListFilter struct {
	OwnerID *int64
	Status  models.Status
	Search  string
	Skip    int
	Limit   int
}

// TaskStore is the persistence contract for task records.
type TaskStore interface {
	// Create inserts a task owned by ownerID.
	Create(ctx context.Context, ownerID int64, f TaskFields) (*models.Task, error)

	// Get returns ErrNotFound if no such task exists.
	Get(ctx context.Context, id int64) (*models.Task, error)

	// List returns tasks matching the filter, ordered by creation time
	// ascending for stable pagination.
	List(ctx context.Context, f ListFilter) ([]models.Task, error)

	// Update applies a partial update. Returns ErrNotFound if absent.
	Update(ctx context.Context, id int64, u TaskUpdate) (*models.Task, error)

	// Delete returns ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

type taskRepo struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewTaskStore(db *sqlx.DB, log *zap.Logger) TaskStore {
	return &taskRepo{db: db, log: log}
}

// searchEscaper neutralizes ILIKE wildcards in user-supplied search terms
// so they match literally.
var searchEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *taskRepo) Create(ctx context.Context, ownerID int64, f TaskFields) (*models.Task, error) {
	t := models.Task{
		OwnerID:     ownerID,
		Title:       f.Title,
		Description: f.Description,
		DueDate:     f.DueDate,
		Status:      f.Status,
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO tasks (owner_id, title, description, due_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, ownerID, f.Title, f.Description, f.DueDate, f.Status).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	r.log.Info("task created", zap.Int64("task_id", t.ID), zap.Int64("owner_id", ownerID))
	return &t, nil
}

func (r *taskRepo) Get(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	err := r.db.GetContext(ctx, &t, `
		SELECT id, owner_id, title, description, due_date, status, created_at
		FROM tasks
		WHERE id = $1
	`, id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

func (r *taskRepo) List(ctx context.Context, f ListFilter) ([]models.Task, error) {
	var (
		where []string
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OwnerID != nil {
		where = append(where, "owner_id = "+arg(*f.OwnerID))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Search != "" {
		p := arg("%" + searchEscaper.Replace(f.Search) + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
	}

	query := `SELECT id, owner_id, title, description, due_date, status, created_at FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"
	query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Skip)

	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies the partial update as one statement so concurrent updates
// never overwrite each other's fields with stale reads.
func (r *taskRepo) Update(ctx context.Context, id int64, u TaskUpdate) (*models.Task, error) {
	var t models.Task
	err := r.db.GetContext(ctx, &t, `
		UPDATE tasks
		SET title       = COALESCE($1, title),
		    description = COALESCE($2, description),
		    due_date    = COALESCE($3, due_date),
		    status      = COALESCE($4, status)
		WHERE id = $5
		RETURNING id, owner_id, title, description, due_date, status, created_at
	`, u.Title, u.Description, u.DueDate, u.Status, id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	return &t, nil
}

func (r *taskRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	r.log.Info("task deleted", zap.Int64("task_id", id))
	return nil
}
