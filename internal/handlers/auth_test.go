package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/tasktracer/internal/middleware"
	"github.com/vaughan-dsouza/tasktracer/internal/models"
	"github.com/vaughan-dsouza/tasktracer/internal/policy"
	"github.com/vaughan-dsouza/tasktracer/internal/token"
)

func newTestTokens(t *testing.T) *token.Service {
	t.Helper()
	s, err := token.New("test-secret-key", "HS256", 30*time.Minute)
	require.NoError(t, err)
	return s
}

// serve routes a single request through a chi router so URL params resolve,
// optionally injecting an authenticated identity.
func serve(t *testing.T, method, pattern string, h http.HandlerFunc, target string, body io.Reader, id *policy.Identity) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, body)
	if id != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *id))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	users := newMemUserStore()
	h := NewAuthHandler(users, newTestTokens(t), zap.NewNop())

	t.Run("creates user with plain role", func(t *testing.T) {
		w := serve(t, http.MethodPost, "/register", h.Register, "/register",
			strings.NewReader(`{"username":"alice","password":"pw1234"}`), nil)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			UserID int64 `json:"user_id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotZero(t, resp.UserID)

		u, err := users.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, u.Role)
		assert.NotEqual(t, "pw1234", u.PasswordHash)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		w := serve(t, http.MethodPost, "/register", h.Register, "/register",
			strings.NewReader(`{"username":"alice","password":"pw5678"}`), nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "already taken")
	})

	t.Run("short password rejected", func(t *testing.T) {
		w := serve(t, http.MethodPost, "/register", h.Register, "/register",
			strings.NewReader(`{"username":"bob","password":"pw"}`), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short username rejected", func(t *testing.T) {
		w := serve(t, http.MethodPost, "/register", h.Register, "/register",
			strings.NewReader(`{"username":"ab","password":"pw1234"}`), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid json rejected", func(t *testing.T) {
		w := serve(t, http.MethodPost, "/register", h.Register, "/register",
			strings.NewReader(`{"username":`), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	users := newMemUserStore()
	tokens := newTestTokens(t)
	h := NewAuthHandler(users, tokens, zap.NewNop())

	w := serve(t, http.MethodPost, "/register", h.Register, "/register",
		strings.NewReader(`{"username":"alice","password":"pw1234"}`), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("valid credentials yield verifiable token", func(t *testing.T) {
		w := serve(t, http.MethodPost, "/login", h.Login, "/login",
			strings.NewReader(`{"username":"alice","password":"pw1234"}`), nil)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token     string `json:"token"`
			TokenType string `json:"token_type"`
			ExpiresIn int64  `json:"expires_in"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, int64(1800), resp.ExpiresIn)

		userID, role, err := tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), userID)
		assert.Equal(t, models.RoleUser, role)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := serve(t, http.MethodPost, "/login", h.Login, "/login",
			strings.NewReader(`{"username":"alice","password":"wrong1"}`), nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid credentials")
	})

	t.Run("unknown username", func(t *testing.T) {
		w := serve(t, http.MethodPost, "/login", h.Login, "/login",
			strings.NewReader(`{"username":"nobody","password":"pw1234"}`), nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMe(t *testing.T) {
	users := newMemUserStore()
	h := NewAuthHandler(users, newTestTokens(t), zap.NewNop())

	u, err := users.Create(context.Background(), "alice", "hash", models.RoleUser)
	require.NoError(t, err)

	t.Run("returns current user without password hash", func(t *testing.T) {
		w := serve(t, http.MethodGet, "/me", h.Me, "/me", nil,
			&policy.Identity{UserID: u.ID, Role: models.RoleUser})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"alice"`)
		assert.NotContains(t, w.Body.String(), "hash")
	})

	t.Run("no identity", func(t *testing.T) {
		w := serve(t, http.MethodGet, "/me", h.Me, "/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
