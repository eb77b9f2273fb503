package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cashgram/internal/ledger"
	"cashgram/internal/storage"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ListCategories returns the caller's categories.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.db.ListCategories(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		h.logger(r).Error().Err(err).Msg("list categories")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory adds a category for the caller. Missing icon and color
// come from the style table.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	style := ledger.StyleFor(name)
	if req.Icon != "" {
		style.Icon = req.Icon
	}
	if req.Color != "" {
		style.Color = req.Color
	}

	c, err := h.db.CreateCategory(r.Context(), UserIDFromContext(r.Context()), name, style.Icon, style.Color)
	if errors.Is(err, storage.ErrDuplicate) {
		writeError(w, http.StatusBadRequest, "Category already exists")
		return
	}
	if err != nil {
		h.logger(r).Error().Err(err).Msg("create category")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}
