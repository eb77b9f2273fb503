// Package handlers implements the JSON HTTP API and the bot webhook.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cashgram/internal/analysis"
	"cashgram/internal/auth"
	"cashgram/internal/bot"
	"cashgram/internal/ledger"
	"cashgram/internal/logger"
	"cashgram/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Context key type to avoid collisions.
type contextKey string

// UserIDContextKey is the context key for the authenticated user ID.
const UserIDContextKey contextKey = "userID"

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db       *storage.DB
	tokens   *auth.TokenIssuer
	ledger   *ledger.Ledger
	reporter *analysis.Reporter
	bot      *bot.Router
	log      zerolog.Logger

	webhookTimeout time.Duration
}

// Deps bundles what NewHandlers needs.
type Deps struct {
	DB       *storage.DB
	Tokens   *auth.TokenIssuer
	Ledger   *ledger.Ledger
	Reporter *analysis.Reporter
	Bot      *bot.Router
	Log      zerolog.Logger

	// WebhookTimeout bounds the handling of one chat update. It must end
	// before the server's write timeout so the reply is delivered.
	WebhookTimeout time.Duration
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		db:       d.DB,
		tokens:   d.Tokens,
		ledger:   d.Ledger,
		reporter: d.Reporter,
		bot:      d.Bot,
		log:      d.Log,

		webhookTimeout: d.WebhookTimeout,
	}
}

// UserIDFromContext returns the authenticated user ID, or 0.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(UserIDContextKey).(int64); ok {
		return id
	}
	return 0
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := h.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Health reports whether the database is reachable.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger(r).Error().Err(err).Msg("health: database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "ok"})
}

// logger returns the request-scoped logger set by RequestLogger.
func (h *Handlers) logger(r *http.Request) *zerolog.Logger {
	l := logger.FromContext(r.Context(), h.log)
	return &l
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
