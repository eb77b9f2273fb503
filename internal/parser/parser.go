// Package parser extracts expenses from free-text chat messages.
package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"cashgram/internal/ai"
	"cashgram/internal/models"

	"github.com/rs/zerolog"
)

// MinConfidence is the acceptance bar for parsed expenses. Scores must be
// strictly above it.
const MinConfidence = 60

const (
	fallbackConfidence = 70
	defaultConfidence  = 50
	placeholderDesc    = "Pengeluaran"
)

// Expense is a candidate expense extracted from text. Amount is in rupiah.
type Expense struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Confidence  int    `json:"confidence"`
}

// Accepted reports whether a confidence score clears MinConfidence.
func Accepted(confidence int) bool {
	return confidence > MinConfidence
}

// Parser delegates to a text generator and falls back to regex rules when
// the generator fails.
type Parser struct {
	gen ai.Generator
	log zerolog.Logger
}

// New creates a Parser.
func New(gen ai.Generator, log zerolog.Logger) *Parser {
	if gen == nil {
		gen = ai.Disabled{}
	}
	return &Parser{gen: gen, log: log}
}

const singlePrompt = `Analisis teks berikut untuk mengekstrak informasi pengeluaran dalam format JSON.
Teks: %q

Ekstrak:
1. amount (angka dalam rupiah, hapus "rb", "ribu", "k" dll)
2. description (deskripsi singkat pengeluaran)
3. category (tebak kategori dari: Makanan, Transportasi, Belanja, Hiburan, Kesehatan, Pendidikan, Lainnya)
4. confidence (0-100, seberapa yakin parsing ini benar)

Contoh input: "nasi goreng 20rb"
Output: {"amount": 20000, "description": "nasi goreng", "category": "Makanan", "confidence": 95}

Contoh input: "ojek 15k"
Output: {"amount": 15000, "description": "ojek", "category": "Transportasi", "confidence": 90}

PENTING: Berikan HANYA JSON murni tanpa teks tambahan apapun!`

const multiPrompt = `Parse this Indonesian text and extract ALL expenses/purchases mentioned.

Text: %q

Find every expense/purchase mentioned and return as JSON:
{
  "expenses": [
    {
      "amount": number (in rupiah),
      "description": "item description only",
      "category": "Makanan|Transportasi|Belanja|Hiburan|Kesehatan|Komunikasi|Lainnya",
      "confidence": number (0-100)
    }
  ],
  "totalFound": number
}

Rules:
- Only extract actual purchases with monetary amounts
- Convert: rb/ribu -> 1000, k -> 1000
- Examples: "5rb" -> 5000, "23ribu" -> 23000, "15k" -> 15000
- Ignore time references: kemarin, trus, setelah itu, pulang
- Category based on item: food items -> Makanan, transport -> Transportasi
- Clean description: "beli ayam goreng 5rb" -> "ayam goreng"

PENTING: Berikan HANYA JSON murni tanpa teks tambahan!`

// rawExpense tolerates numbers sent as strings and missing fields.
type rawExpense struct {
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Confidence  json.Number `json:"confidence"`
}

func (r rawExpense) toExpense() (*Expense, bool) {
	amount, ok := toInt(r.Amount)
	desc := strings.TrimSpace(r.Description)
	if !ok || amount <= 0 || desc == "" {
		return nil, false
	}
	e := &Expense{
		Amount:      amount,
		Description: desc,
		Category:    strings.TrimSpace(r.Category),
		Confidence:  defaultConfidence,
	}
	if e.Category == "" {
		e.Category = models.CategoryOther
	}
	if c, ok := toInt(r.Confidence); ok && c != 0 {
		e.Confidence = int(c)
	}
	return e, true
}

// ParseSingle extracts one expense. It returns nil when nothing could be
// understood. Once ctx is done the generator is skipped and only the regex
// rules apply.
func (p *Parser) ParseSingle(ctx context.Context, text string) *Expense {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if ctx.Err() != nil {
		return Fallback(text)
	}

	resp, err := p.gen.Generate(ctx, fmt.Sprintf(singlePrompt, text))
	if err != nil {
		p.log.Debug().Err(err).Msg("single parse: generator failed, using fallback")
		return Fallback(text)
	}

	obj, ok := firstObject(cleanModelJSON(resp))
	if !ok {
		p.log.Debug().Str("response", resp).Msg("single parse: no JSON object, using fallback")
		return Fallback(text)
	}

	var raw rawExpense
	if err := decode(obj, &raw); err != nil {
		p.log.Debug().Err(err).Msg("single parse: decode failed, using fallback")
		return Fallback(text)
	}

	e, ok := raw.toExpense()
	if !ok {
		return nil
	}
	return e
}

// ParseMultiple extracts every accepted expense in text. It may return an
// empty slice.
func (p *Parser) ParseMultiple(ctx context.Context, text string) []Expense {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	items, err := p.generateMultiple(ctx, text)
	if err != nil {
		p.log.Debug().Err(err).Msg("multi parse: falling back to conjunction split")
		return p.splitFallback(ctx, text)
	}

	var out []Expense
	for _, raw := range items {
		e, ok := raw.toExpense()
		if !ok || !Accepted(e.Confidence) {
			continue
		}
		out = append(out, *e)
	}
	return out
}

func (p *Parser) generateMultiple(ctx context.Context, text string) ([]rawExpense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := p.gen.Generate(ctx, fmt.Sprintf(multiPrompt, text))
	if err != nil {
		return nil, err
	}

	cleaned := repairObjectList(cleanModelJSON(resp))
	if strings.HasPrefix(cleaned, "[") {
		var items []rawExpense
		if err := decode(cleaned, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	obj, ok := firstObject(cleaned)
	if !ok {
		return nil, fmt.Errorf("no JSON object in response")
	}
	var envelope struct {
		Expenses   []rawExpense `json:"expenses"`
		TotalFound int          `json:"totalFound"`
	}
	if err := decode(obj, &envelope); err != nil {
		return nil, err
	}
	if envelope.Expenses == nil {
		return nil, fmt.Errorf("response has no expenses array")
	}
	return envelope.Expenses, nil
}

func (p *Parser) splitFallback(ctx context.Context, text string) []Expense {
	var out []Expense
	for _, part := range splitConjunctions(text) {
		e := p.ParseSingle(ctx, part)
		if e != nil && Accepted(e.Confidence) {
			out = append(out, *e)
		}
	}
	return out
}

var (
	amountPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(ribu|rebu|rb|k)\b`)
	stopWords     = regexp.MustCompile(`(?i)\b(kemarin|tadi|beli|bayar|untuk|ke|di|dari|saya|kan|trus|setelah|itu|pulang)\b`)
	spaces        = regexp.MustCompile(`\s+`)

	foodKeywords      = []string{"makan", "nasi", "ayam", "soto", "bakso", "mie", "kopi", "teh", "roti"}
	transportKeywords = []string{"ojek", "bus", "taksi", "bensin", "parkir", "tol"}
)

// Fallback applies the regex rules: a number with a thousand suffix, stop
// words removed from the description, keyword category guess.
func Fallback(text string) *Expense {
	m := amountPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return nil
	}

	n, err := strconv.ParseFloat(strings.ReplaceAll(text[m[2]:m[3]], ",", "."), 64)
	if err != nil {
		return nil
	}
	amount := int64(math.Round(n * 1000))
	if amount <= 0 {
		return nil
	}

	desc := text[:m[0]] + " " + text[m[1]:]
	desc = stopWords.ReplaceAllString(desc, "")
	desc = strings.TrimSpace(spaces.ReplaceAllString(desc, " "))
	if len([]rune(desc)) < 2 {
		desc = placeholderDesc
	}

	return &Expense{
		Amount:      amount,
		Description: desc,
		Category:    guessCategory(text),
		Confidence:  fallbackConfidence,
	}
}

func guessCategory(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range foodKeywords {
		if strings.Contains(lower, kw) {
			return models.CategoryFood
		}
	}
	for _, kw := range transportKeywords {
		if strings.Contains(lower, kw) {
			return models.CategoryTransport
		}
	}
	return models.CategoryOther
}

// toInt accepts integral or fractional JSON numbers and numeric strings.
func toInt(n json.Number) (int64, bool) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f)), true
}
