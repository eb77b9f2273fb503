// Package analysis produces spending summaries from a list of expenses.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"cashgram/internal/ai"
	"cashgram/internal/models"

	"github.com/rs/zerolog"
)

// Period selects the window an analysis covers.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	// PeriodAll covers whatever expenses the caller passes in.
	PeriodAll Period = "all"
)

// AllLimit is how many recent expenses an all-time analysis looks at.
const AllLimit = 100

// PeriodFromCommand maps a chat command argument to a period: week when it
// mentions "minggu", month otherwise.
func PeriodFromCommand(text string) Period {
	if strings.Contains(strings.ToLower(text), "minggu") {
		return PeriodWeek
	}
	return PeriodMonth
}

// Since returns the start of the period's window ending at now. PeriodAll
// returns the zero time.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour)
	case PeriodMonth:
		return now.Add(-30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

func (p Period) title() string {
	switch p {
	case PeriodWeek:
		return "Analisis Minggu Ini"
	case PeriodMonth:
		return "Analisis Bulan Ini"
	default:
		return "Analisis Pengeluaran"
	}
}

func (p Period) label() string {
	switch p {
	case PeriodWeek:
		return "minggu ini"
	case PeriodMonth:
		return "bulan ini"
	default:
		return "semua waktu"
	}
}

// Reporter writes analyses with a text generator, falling back to a fixed
// template when generation fails.
type Reporter struct {
	gen ai.Generator
	log zerolog.Logger
}

// NewReporter creates a Reporter.
func NewReporter(gen ai.Generator, log zerolog.Logger) *Reporter {
	if gen == nil {
		gen = ai.Disabled{}
	}
	return &Reporter{gen: gen, log: log}
}

// Summarize returns a markdown analysis of expenses. An empty list yields
// the no-data text without calling the generator.
func (r *Reporter) Summarize(ctx context.Context, expenses []models.Expense, period Period) string {
	if len(expenses) == 0 {
		return NoData(period)
	}

	prompt, err := buildPrompt(expenses, period)
	if err != nil {
		r.log.Error().Err(err).Msg("build analysis prompt")
		return Fallback(expenses, period)
	}

	text, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		r.log.Warn().Err(err).Str("period", string(period)).Msg("AI analysis failed, using fallback")
		return Fallback(expenses, period)
	}
	return text
}

// Stats are the figures the fallback report is built from.
type Stats struct {
	Total       int64
	Count       int
	TopCategory string
	TopTotal    int64
	DailyAvg    int64
}

// Compute aggregates expenses for period.
func Compute(expenses []models.Expense, period Period) Stats {
	s := Stats{Count: len(expenses)}
	byCategory := map[string]int64{}
	for _, e := range expenses {
		s.Total += e.Amount
		byCategory[e.CategoryName()] += e.Amount
	}

	names := make([]string, 0, len(byCategory))
	for n := range byCategory {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if byCategory[names[i]] != byCategory[names[j]] {
			return byCategory[names[i]] > byCategory[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 0 {
		s.TopCategory = names[0]
		s.TopTotal = byCategory[names[0]]
	}

	if days := periodDays(expenses, period); days > 0 {
		s.DailyAvg = (s.Total + days/2) / days
	}
	return s
}

func periodDays(expenses []models.Expense, period Period) int64 {
	switch period {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	}
	if len(expenses) == 0 {
		return 0
	}
	first, last := expenses[0].Date, expenses[0].Date
	for _, e := range expenses[1:] {
		if e.Date.Before(first) {
			first = e.Date
		}
		if e.Date.After(last) {
			last = e.Date
		}
	}
	return int64(calendarDay(last).Sub(calendarDay(first)).Hours()/24) + 1
}

func calendarDay(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NoData is the report for a period without expenses.
func NoData(period Period) string {
	return fmt.Sprintf(`## 📊 **%s**

### ❌ **Belum Ada Data**
Belum ada pengeluaran untuk dianalisis (%s).

### 💡 **Mulai Catat**
- Catat pengeluaran harian dengan format: "nasi goreng 20rb"
- Gunakan /saldo untuk cek total hari ini

### 💰 **Jangan Lupa**
- **Menabung**: Sisihkan minimal 20%% untuk tabungan
- **Investasi**: Mulai investasi untuk masa depan`, period.title(), period.label())
}

// Fallback renders the fixed-template report.
func Fallback(expenses []models.Expense, period Period) string {
	if len(expenses) == 0 {
		return NoData(period)
	}
	s := Compute(expenses, period)

	return fmt.Sprintf(`## 📊 **%s**

### 💰 **Ringkasan**
- **Total**: %s
- **Transaksi**: %d kali
- **Rata-rata**: %s per hari

### 🏆 **Kategori Teratas**
%s adalah yang paling banyak dengan %s

### 💡 **Saran Sederhana**
- Pantau pengeluaran harian agar tetap terkontrol
- Cari alternatif hemat untuk pengeluaran besar
- Buat target pengeluaran untuk periode berikutnya

### 🏦 **Jangan Lupa**
- **Menabung**: Sisihkan minimal 20%% untuk tabungan
- **Investasi**: Mulai investasi untuk masa depan
- **Dana Darurat**: Siapkan dana darurat 3-6 bulan pengeluaran`,
		period.title(), Rupiah(s.Total), s.Count, Rupiah(s.DailyAvg), s.TopCategory, Rupiah(s.TopTotal))
}

type promptExpense struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

const analysisPrompt = `Analisis pengeluaran %s dengan data berikut dan berikan insight dalam bahasa Indonesia yang mudah dipahami.

Data pengeluaran:
%s

Buat analisis dengan format MARKDOWN berikut:

## 📊 **%s**

### 💰 **Ringkasan**
- **Total:** Rp [total]
- **Transaksi:** [jumlah] kali
- **Rata-rata:** Rp [rata-rata] per hari

### 📈 **Status Pengeluaran**
[Apakah pengeluaran wajar untuk periode ini?]

### 🏆 **Kategori Favorit**
[Kategori mana yang paling banyak dan berapa persentasenya?]

### 💡 **Saran Sederhana**
- [Saran praktis yang mudah diterapkan]
- [Tips hemat yang realistis]

### 🏦 **Jangan Lupa**
- **Menabung:** Sisihkan minimal 20%% untuk tabungan
- **Investasi:** Mulai investasi untuk masa depan

Gunakan bahasa santai dan mudah dipahami. Maksimal 250 kata.`

func buildPrompt(expenses []models.Expense, period Period) (string, error) {
	s := Compute(expenses, period)
	items := make([]promptExpense, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, promptExpense{
			Amount:      e.Amount,
			Description: e.Description,
			Category:    e.CategoryName(),
			Date:        e.Date.In(Location).Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(map[string]any{
		"total":        s.Total,
		"count":        s.Count,
		"dailyAverage": s.DailyAvg,
		"expenses":     items,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(analysisPrompt, period.label(), data, period.title()), nil
}
