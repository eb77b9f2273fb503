package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cashgram/internal/auth"
	"cashgram/internal/ledger"
	"cashgram/internal/models"
	"cashgram/internal/storage"
)

type credentialsRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a user with the default categories and returns a token.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Phone) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Phone number and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger(r).Error().Err(err).Msg("hash password")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	phone := auth.NormalizePhone(req.Phone)
	user, err := h.db.CreateUser(r.Context(), phone, hash, strings.TrimSpace(req.Name), ledger.DefaultCategories())
	if errors.Is(err, storage.ErrDuplicate) {
		writeError(w, http.StatusBadRequest, "User with this phone number already exists")
		return
	}
	if err != nil {
		h.logger(r).Error().Err(err).Msg("create user")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondWithToken(w, r, user)
}

// Login checks phone and password and returns a token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Phone) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Phone number and password are required")
		return
	}

	if err := h.db.Ping(r.Context()); err != nil {
		h.logger(r).Error().Err(err).Msg("login: database unavailable")
		writeError(w, http.StatusServiceUnavailable, "Database connection failed")
		return
	}

	user, err := h.db.GetUserByPhone(r.Context(), auth.NormalizePhone(req.Phone))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.logger(r).Error().Err(err).Msg("login: load user")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.respondWithToken(w, r, user)
}

// Me returns the authenticated user.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.db.GetUserByID(r.Context(), UserIDFromContext(r.Context()))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		h.logger(r).Error().Err(err).Msg("load current user")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) respondWithToken(w http.ResponseWriter, r *http.Request, user *models.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger(r).Error().Err(err).Int64("user_id", user.ID).Msg("issue token")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}
