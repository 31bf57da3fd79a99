package handlers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/vaughan-dsouza/tasktracer/internal/models"
	"github.com/vaughan-dsouza/tasktracer/internal/repo"
)

var testEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// memUserStore is an in-memory UserStore with the same contract as the
// Postgres implementation.
type memUserStore struct {
	seq   int64
	users map[int64]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int64]*models.User)}
}

func (m *memUserStore) Create(ctx context.Context, username, hash string, role models.Role) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return nil, repo.ErrConflict
		}
	}
	m.seq++
	u := &models.User{
		ID:           m.seq,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    testEpoch.Add(time.Duration(m.seq) * time.Second),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (m *memUserStore) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	all := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return pageUsers(all, skip, limit), nil
}

func pageUsers(all []models.User, skip, limit int) []models.User {
	if skip >= len(all) {
		return []models.User{}
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end]
}

func (m *memUserStore) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserStore) SetRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	u.Role = role
	return u, nil
}

// memTaskStore mirrors the Postgres TaskStore, including filter and
// ordering semantics.
type memTaskStore struct {
	seq   int64
	tasks map[int64]*models.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[int64]*models.Task)}
}

func (m *memTaskStore) Create(ctx context.Context, ownerID int64, f repo.TaskFields) (*models.Task, error) {
	m.seq++
	t := &models.Task{
		ID:          m.seq,
		OwnerID:     ownerID,
		Title:       f.Title,
		Description: f.Description,
		DueDate:     f.DueDate,
		Status:      f.Status,
		CreatedAt:   testEpoch.Add(time.Duration(m.seq) * time.Second),
	}
	m.tasks[t.ID] = t
	return t, nil
}

func (m *memTaskStore) Get(ctx context.Context, id int64) (*models.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return t, nil
}

func (m *memTaskStore) List(ctx context.Context, f repo.ListFilter) ([]models.Task, error) {
	matched := []models.Task{}
	for _, t := range m.tasks {
		if f.OwnerID != nil && t.OwnerID != *f.OwnerID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(t.Title), needle) &&
				!strings.Contains(strings.ToLower(t.Description), needle) {
				continue
			}
		}
		matched = append(matched, *t)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	if f.Skip >= len(matched) {
		return []models.Task{}, nil
	}
	end := f.Skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[f.Skip:end], nil
}

func (m *memTaskStore) Update(ctx context.Context, id int64, u repo.TaskUpdate) (*models.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	return t, nil
}

func (m *memTaskStore) Delete(ctx context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}
