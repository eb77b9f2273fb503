package handlers

import (
	"net/http"

	"cashgram/internal/analysis"
	"cashgram/internal/storage"
)

// Analysis summarizes the caller's most recent expenses.
func (h *Handlers) Analysis(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	expenses, err := h.db.ListExpenses(r.Context(), userID, storage.ExpenseFilter{Limit: analysis.AllLimit})
	if err != nil {
		h.logger(r).Error().Err(err).Int64("user_id", userID).Msg("list expenses for analysis")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	text := h.reporter.Summarize(r.Context(), expenses, analysis.PeriodAll)
	writeJSON(w, http.StatusOK, map[string]string{"analysis": text})
}
