package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cashgram/internal/analysis"
	"cashgram/internal/storage"
)

type expenseRequest struct {
	Amount      *int64  `json:"amount"`
	Description *string `json:"description"`
	CategoryID  *int64  `json:"categoryId"`
	Date        *string `json:"date"`
}

// ListExpenses returns the caller's expenses, optionally filtered by
// categoryId, startDate and endDate.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f storage.ExpenseFilter

	if v := q.Get("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		f.CategoryID = id
	}
	if v := q.Get("startDate"); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid startDate")
			return
		}
		f.Start = t
	}
	if v := q.Get("endDate"); v != "" {
		t, dayOnly, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid endDate")
			return
		}
		if dayOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.End = t
	}

	expenses, err := h.db.ListExpenses(r.Context(), UserIDFromContext(r.Context()), f)
	if err != nil {
		h.logger(r).Error().Err(err).Msg("list expenses")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// CreateExpense records an expense in one of the caller's categories.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount == nil || req.CategoryID == nil {
		writeError(w, http.StatusBadRequest, "Amount and category are required")
		return
	}
	if *req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	var date time.Time
	if req.Date != nil && *req.Date != "" {
		t, _, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date")
			return
		}
		date = t
	}
	desc := ""
	if req.Description != nil {
		desc = *req.Description
	}

	userID := UserIDFromContext(r.Context())
	e, err := h.ledger.Record(r.Context(), userID, *req.CategoryID, *req.Amount, desc, date)
	if errors.Is(err, storage.ErrCategoryNotFound) {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	if err != nil {
		h.logger(r).Error().Err(err).Int64("user_id", userID).Msg("create expense")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// UpdateExpense changes the fields present in the body.
func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}

	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount != nil && *req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Amount must be positive")
		return
	}

	u := storage.ExpenseUpdate{
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if req.Date != nil && *req.Date != "" {
		t, _, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date")
			return
		}
		u.Date = &t
	}

	e, err := h.db.UpdateExpense(r.Context(), UserIDFromContext(r.Context()), id, u)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Expense not found")
	case errors.Is(err, storage.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "Category not found")
	case err != nil:
		h.logger(r).Error().Err(err).Int64("expense_id", id).Msg("update expense")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, e)
	}
}

// DeleteExpense removes one of the caller's expenses.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}

	err := h.db.DeleteExpense(r.Context(), UserIDFromContext(r.Context()), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		h.logger(r).Error().Err(err).Int64("expense_id", id).Msg("delete expense")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates. Plain
// dates are midnight in the display time zone and dayOnly is set.
func parseDate(s string) (t time.Time, dayOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, analysis.Location); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q", s)
}
