package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/tasktracer/internal/models"
)

// UserStore is the persistence contract for user records.
type UserStore interface {
	// Create inserts a new user with the given role.
	// Returns ErrConflict if the username is already taken.
	Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error)

	// GetByUsername returns ErrNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByID returns ErrNotFound if no such user exists.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// List returns users ordered by creation time, paginated.
	List(ctx context.Context, skip, limit int) ([]models.User, error)

	// Delete removes a user; owned tasks are cascade-deleted by the
	// schema. Returns ErrNotFound if the user does not exist.
	Delete(ctx context.Context, id int64) error

	// SetRole changes a user's role. Returns ErrNotFound if absent.
	SetRole(ctx context.Context, id int64, role models.Role) (*models.User, error)
}

type userRepo struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewUserStore(db *sqlx.DB, log *zap.Logger) UserStore {
	return &userRepo{db: db, log: log}
}

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *userRepo) Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	u := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, username, passwordHash, role).Scan(&u.ID, &u.CreatedAt)

	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	r.log.Info("user created", zap.Int64("user_id", u.ID), zap.String("username", username))
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE username = $1
	`, username)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`, id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT id, username, password_hash, role, created_at
		FROM users
		ORDER BY created_at ASC, id ASC
		LIMIT $1 OFFSET $2
	`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	r.log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

func (r *userRepo) SetRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `
		UPDATE users
		SET role = $1
		WHERE id = $2
		RETURNING id, username, password_hash, role, created_at
	`, role, id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}

	r.log.Info("role changed", zap.Int64("user_id", id), zap.String("role", string(role)))
	return &u, nil
}
