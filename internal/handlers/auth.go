package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/tasktracer/internal/middleware"
	"github.com/vaughan-dsouza/tasktracer/internal/models"
	"github.com/vaughan-dsouza/tasktracer/internal/repo"
	"github.com/vaughan-dsouza/tasktracer/internal/token"
	"github.com/vaughan-dsouza/tasktracer/internal/utils"
)

type AuthHandler struct {
	users  repo.UserStore
	tokens *token.Service
	log    *zap.Logger
}

func NewAuthHandler(users repo.UserStore, tokens *token.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log}
}

// ----------- Request/Response DTOs -------------

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResp struct {
	UserID int64 `json:"user_id"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// -------------- REGISTER ----------------------

// Register creates an account. New accounts always get the plain user
// role; promotion happens only through the admin role endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if len(req.Username) < 3 {
		utils.JSONError(w, http.StatusBadRequest, "username must be at least 3 characters")
		return
	}
	if len(req.Password) < 6 {
		utils.JSONError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.ServerError(w)
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, string(hash), models.RoleUser)
	if errors.Is(err, repo.ErrConflict) {
		utils.JSONError(w, http.StatusConflict, "username already taken")
		return
	}
	if err != nil {
		h.log.Error("register failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	utils.JSON(w, http.StatusCreated, registerResp{UserID: user.ID})
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if errors.Is(err, repo.ErrNotFound) {
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.log.Error("login lookup failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	signed, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.log.Error("token issue failed", zap.Error(err))
		utils.ServerError(w)
		return
	}

	utils.JSON(w, http.StatusOK, tokenResp{
		Token:     signed,
		TokenType: "bearer",
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
	})
}

// -------------- ME (protected) ----------------

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	user, err := h.users.GetByID(r.Context(), id.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		utils.JSONError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	if err != nil {
		utils.ServerError(w)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}
