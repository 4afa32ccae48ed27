package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chetan-code/taskshare/internal/auth"
	"github.com/chetan-code/taskshare/internal/repository"
)

// we are doing this to avoid collision with libraries
type contextKey string

const userIDKey contextKey = "userID"

// AuthHandler serves registration and login and guards the task routes.
// The token service and user store come in through the constructor - no
// ambient state.
type AuthHandler struct {
	users  repository.UserStore
	tokens *auth.TokenService
}

func NewAuthHandler(users repository.UserStore, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		respondDetail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("password_hashing_failed", "error", err)
		respondDetail(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, hash)
	if errors.Is(err, repository.ErrUsernameTaken) {
		respondDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	if err != nil {
		slog.Error("user_creation_failed", "error", err)
		respondDetail(w, http.StatusInternalServerError, "registration failed")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.UserByUsername(r.Context(), req.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		slog.Error("user_lookup_failed", "error", err)
		respondDetail(w, http.StatusInternalServerError, "login failed")
		return
	}
	//same rejection whether the username exists or the password is wrong
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		respondDetail(w, http.StatusBadRequest, "Incorrect username or password")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		slog.Error("token_generation_failed", "error", err)
		respondDetail(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// AuthMiddleware resolves the bearer token and puts the user id into
// the request context for the handlers behind it. Any failure is a
// uniform 401.
func (h *AuthHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || tokenString == "" {
			respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		userID, err := h.tokens.Resolve(tokenString)
		if err != nil {
			respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		//a token can outlive its account
		if _, err := h.users.UserByID(r.Context(), userID); err != nil {
			respondDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
