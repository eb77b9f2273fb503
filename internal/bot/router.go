// Package bot dispatches chat messages to login, reporting and expense capture.
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"cashgram/internal/analysis"
	"cashgram/internal/auth"
	"cashgram/internal/models"
	"cashgram/internal/parser"
	"cashgram/internal/storage"

	"github.com/rs/zerolog"
)

// Message is an incoming chat message. Text is empty for media messages.
type Message struct {
	ChatID   int64
	SenderID int64
	Text     string
}

// Reply is the sendMessage envelope returned to the chat platform.
type Reply struct {
	Method    string `json:"method"`
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// Store is the persistence the router needs.
type Store interface {
	GetChatSession(ctx context.Context, chatID string) (*models.ChatSession, error)
	UpsertChatSession(ctx context.Context, chatID string, userID int64, token string) error
	DeactivateChatSession(ctx context.Context, chatID string) error
	DeleteChatSession(ctx context.Context, chatID string) error
	ListExpenses(ctx context.Context, userID int64, f storage.ExpenseFilter) ([]models.Expense, error)
}

// TokenVerifier resolves a bearer token to a user ID.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// ExpenseParser turns free text into candidate expenses.
type ExpenseParser interface {
	ParseSingle(ctx context.Context, text string) *parser.Expense
	ParseMultiple(ctx context.Context, text string) []parser.Expense
}

// Recorder persists a parsed expense for a user.
type Recorder interface {
	Capture(ctx context.Context, userID int64, p parser.Expense) (*models.Expense, error)
}

// Summarizer writes a period analysis.
type Summarizer interface {
	Summarize(ctx context.Context, expenses []models.Expense, period analysis.Period) string
}

// Router handles one chat message at a time. It keeps no state between
// messages besides what Store holds.
type Router struct {
	store    Store
	auth     Authenticator
	tokens   TokenVerifier
	parser   ExpenseParser
	recorder Recorder
	reporter Summarizer
	log      zerolog.Logger
	now      func() time.Time

	parseTimeout time.Duration
}

// Deps bundles the collaborators of a Router.
type Deps struct {
	Store    Store
	Auth     Authenticator
	Tokens   TokenVerifier
	Parser   ExpenseParser
	Recorder Recorder
	Reporter Summarizer
	Log      zerolog.Logger

	// ParseTimeout bounds the model calls for one free-text message. Past
	// it the remaining fragments are parsed by the regex rules. Zero means
	// no bound beyond the caller's context.
	ParseTimeout time.Duration
}

// NewRouter creates a Router.
func NewRouter(d Deps) *Router {
	return &Router{
		store:    d.Store,
		auth:     d.Auth,
		tokens:   d.Tokens,
		parser:   d.Parser,
		recorder: d.Recorder,
		reporter: d.Reporter,
		log:      d.Log,
		now:      time.Now,

		parseTimeout: d.ParseTimeout,
	}
}

// Handle dispatches msg and returns the reply to send. Business failures
// are reported in the reply text, never as errors.
func (r *Router) Handle(ctx context.Context, msg Message) Reply {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return r.reply(msg, msgTextOnly)
	}

	chatID := strconv.FormatInt(msg.SenderID, 10)
	log := r.log.With().Int64("chat_id", msg.ChatID).Str("sender", chatID).Logger()

	cmd, args := splitCommand(text)
	switch cmd {
	case "/start":
		return r.reply(msg, msgStart)
	case "/login":
		return r.reply(msg, r.login(ctx, log, chatID, args))
	case "/reset":
		if err := r.store.DeleteChatSession(ctx, chatID); err != nil {
			log.Error().Err(err).Msg("reset chat session")
			return r.reply(msg, msgResetError)
		}
		return r.reply(msg, msgReset)
	}

	userID, ok := r.session(ctx, log, chatID)
	if !ok {
		return r.reply(msg, msgNotLoggedIn)
	}
	log = log.With().Int64("user_id", userID).Logger()

	switch cmd {
	case "/logout":
		if err := r.store.DeactivateChatSession(ctx, chatID); err != nil {
			log.Error().Err(err).Msg("deactivate chat session")
			return r.reply(msg, msgLogoutError)
		}
		return r.reply(msg, msgLogout)
	case "/analisis":
		return r.reply(msg, r.analyze(ctx, log, userID, args))
	case "/saldo":
		return r.balance(ctx, log, msg, userID)
	}

	return r.capture(ctx, log, msg, userID, text)
}

func (r *Router) reply(msg Message, text string) Reply {
	return Reply{Method: "sendMessage", ChatID: msg.ChatID, Text: text}
}

func (r *Router) markdown(msg Message, text string) Reply {
	rep := r.reply(msg, text)
	rep.ParseMode = "Markdown"
	return rep
}

// splitCommand returns the lower-cased command token without any @botname
// suffix, and the remaining text. Plain text yields an empty command.
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, rest, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

func (r *Router) login(ctx context.Context, log zerolog.Logger, chatID, args string) string {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return msgLoginFormat
	}
	phone := auth.NormalizePhone(parts[0])

	res, err := r.auth.Login(ctx, phone, parts[1])
	if errors.Is(err, ErrInvalidCredentials) {
		return msgLoginFailed
	}
	if err != nil {
		log.Error().Err(err).Msg("bot login")
		return msgLoginError
	}

	if err := r.store.UpsertChatSession(ctx, chatID, res.User.ID, res.Token); err != nil {
		log.Error().Err(err).Int64("user_id", res.User.ID).Msg("upsert chat session")
		return msgLoginError
	}
	log.Info().Int64("user_id", res.User.ID).Msg("chat session linked")
	return loginSuccess(res.User.Name)
}

// session returns the user bound to chatID when the chat holds an active,
// valid token for that user.
func (r *Router) session(ctx context.Context, log zerolog.Logger, chatID string) (int64, bool) {
	s, err := r.store.GetChatSession(ctx, chatID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Error().Err(err).Msg("load chat session")
		}
		return 0, false
	}
	if !s.LoggedIn() {
		return 0, false
	}

	userID, err := r.tokens.Verify(s.Token)
	if err != nil || userID != s.UserID {
		log.Debug().Err(err).Msg("chat session token rejected")
		return 0, false
	}
	return userID, true
}

func (r *Router) analyze(ctx context.Context, log zerolog.Logger, userID int64, args string) string {
	period := analysis.PeriodFromCommand(args)
	expenses, err := r.store.ListExpenses(ctx, userID, storage.ExpenseFilter{Start: period.Since(r.now())})
	if err != nil {
		log.Error().Err(err).Msg("list expenses for analysis")
		return msgAnalysisError
	}
	return analysis.StripMarkdown(r.reporter.Summarize(ctx, expenses, period))
}

func (r *Router) balance(ctx context.Context, log zerolog.Logger, msg Message, userID int64) Reply {
	now := r.now().In(analysis.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, analysis.Location)

	expenses, err := r.store.ListExpenses(ctx, userID, storage.ExpenseFilter{
		Start: today,
		End:   today.AddDate(0, 0, 1).Add(-time.Nanosecond),
	})
	if err != nil {
		log.Error().Err(err).Msg("list expenses for balance")
		return r.reply(msg, msgBalanceError)
	}
	return r.markdown(msg, balance(expenses))
}

func (r *Router) capture(ctx context.Context, log zerolog.Logger, msg Message, userID int64, text string) Reply {
	parsed := r.parse(ctx, text)
	if len(parsed) == 0 {
		return r.reply(msg, usageHint(text))
	}

	saved := make([]*models.Expense, 0, len(parsed))
	for _, p := range parsed {
		e, err := r.recorder.Capture(ctx, userID, p)
		if err != nil {
			log.Error().Err(err).Str("description", p.Description).Msg("save parsed expense")
			continue
		}
		saved = append(saved, e)
	}

	switch len(saved) {
	case 0:
		return r.reply(msg, msgSaveError)
	case 1:
		if len(parsed) == 1 {
			return r.markdown(msg, savedOne(saved[0], r.now()))
		}
	}
	return r.markdown(msg, savedMany(saved, r.now()))
}

// parse applies the single/multi routing policy. Long messages and messages
// with conjunctions go through multi-expense parsing first; everything else
// tries a single expense and escalates only when that is not accepted.
func (r *Router) parse(ctx context.Context, text string) []parser.Expense {
	if r.parseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.parseTimeout)
		defer cancel()
	}

	if parser.ShouldTryMultiple(text) {
		multi := r.parser.ParseMultiple(ctx, text)
		if len(multi) > 1 {
			return multi
		}
		if single := r.parser.ParseSingle(ctx, text); single != nil && parser.Accepted(single.Confidence) {
			return []parser.Expense{*single}
		}
		return multi
	}

	if single := r.parser.ParseSingle(ctx, text); single != nil && parser.Accepted(single.Confidence) {
		return []parser.Expense{*single}
	}
	return r.parser.ParseMultiple(ctx, text)
}
