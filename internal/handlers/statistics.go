package handlers

import (
	"net/http"
	"strconv"
	"time"

	"cashgram/internal/analysis"
	"cashgram/internal/models"
)

// StatsCategoryItem represents a category with its spending statistics.
type StatsCategoryItem struct {
	models.CategoryTotal
	Percentage float64 `json:"percentage"`
}

// StatsResponse is the monthly statistics payload.
type StatsResponse struct {
	Year           int                 `json:"year"`
	Month          int                 `json:"month"`
	MonthName      string              `json:"monthName"`
	Total          int64               `json:"total"`
	Count          int                 `json:"count"`
	Categories     []StatsCategoryItem `json:"categories"`
	PrevYear       int                 `json:"prevYear"`
	PrevMonth      int                 `json:"prevMonth"`
	NextYear       int                 `json:"nextYear"`
	NextMonth      int                 `json:"nextMonth"`
	IsCurrentMonth bool                `json:"isCurrentMonth"`
}

// Statistics returns per-category totals for one calendar month.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	// Get year and month from query params, default to current month
	now := time.Now().In(analysis.Location)
	year := now.Year()
	month := int(now.Month())

	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 0 {
		year = y
	}
	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && m >= 1 && m <= 12 {
		month = m
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, analysis.Location)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	totals, err := h.db.CategoryTotals(r.Context(), UserIDFromContext(r.Context()), start, end)
	if err != nil {
		h.logger(r).Error().Err(err).Msg("category totals")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := StatsResponse{
		Year:       year,
		Month:      month,
		MonthName:  analysis.MonthName(time.Month(month)),
		Categories: make([]StatsCategoryItem, 0, len(totals)),
	}
	for _, ct := range totals {
		resp.Total += ct.Total
		resp.Count += ct.Count
	}
	for _, ct := range totals {
		item := StatsCategoryItem{CategoryTotal: ct}
		if resp.Total > 0 {
			item.Percentage = float64(ct.Total) / float64(resp.Total) * 100
		}
		resp.Categories = append(resp.Categories, item)
	}

	prev := start.AddDate(0, -1, 0)
	next := start.AddDate(0, 1, 0)
	resp.PrevYear, resp.PrevMonth = prev.Year(), int(prev.Month())
	resp.NextYear, resp.NextMonth = next.Year(), int(next.Month())
	resp.IsCurrentMonth = year == now.Year() && month == int(now.Month())

	writeJSON(w, http.StatusOK, resp)
}
