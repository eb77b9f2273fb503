package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashgram/internal/ai"
	"cashgram/internal/analysis"
	"cashgram/internal/auth"
	"cashgram/internal/bot"
	"cashgram/internal/config"
	"cashgram/internal/handlers"
	"cashgram/internal/ledger"
	"cashgram/internal/logger"
	"cashgram/internal/parser"
	"cashgram/internal/storage"

	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	if cfg.TelegramBotToken == "" {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set - webhook registration with setwebhook will not work")
	}

	db, err := storage.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := newHandlers(cfg, db, newGenerator(ctx, cfg, log), log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(h, cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      newBudgets(cfg.AITimeout).write,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("public_url", cfg.PublicBaseURL).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server stopped")
}

// newGenerator returns the Gemini client wrapped in the retry policy, or a
// disabled generator when no API key is configured.
func newGenerator(ctx context.Context, cfg *config.Config, log zerolog.Logger) ai.Generator {
	gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout)
	if errors.Is(err, ai.ErrUnavailable) {
		log.Warn().Msg("GEMINI_API_KEY not set - AI parsing and analysis use fallbacks")
		return ai.Disabled{}
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Gemini client - AI parsing and analysis use fallbacks")
		return ai.Disabled{}
	}
	return ai.Retry(gemini, ai.WithLogger(log))
}

// budgets derives request deadlines from the per-call AI timeout. Parsing a
// chat message stops calling the model after parse, the webhook answers
// before webhook, and both end inside the server's write timeout.
type budgets struct {
	parse   time.Duration
	webhook time.Duration
	write   time.Duration
}

func newBudgets(aiTimeout time.Duration) budgets {
	return budgets{
		parse:   2 * aiTimeout,
		webhook: 3*aiTimeout + 5*time.Second,
		// AI calls may retry with backoff before the fallback kicks in.
		write: 4*aiTimeout + 15*time.Second,
	}
}

func newHandlers(cfg *config.Config, db *storage.DB, gen ai.Generator, log zerolog.Logger) *handlers.Handlers {
	b := newBudgets(cfg.AITimeout)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, nil)
	l := ledger.New(db)
	reporter := analysis.NewReporter(gen, log)

	router := bot.NewRouter(bot.Deps{
		Store:    db,
		Auth:     bot.NewHTTPAuthenticator(cfg.PublicBaseURL, 15*time.Second),
		Tokens:   tokens,
		Parser:   parser.New(gen, log),
		Recorder: l,
		Reporter: reporter,
		Log:      log,

		ParseTimeout: b.parse,
	})

	return handlers.NewHandlers(handlers.Deps{
		DB:       db,
		Tokens:   tokens,
		Ledger:   l,
		Reporter: reporter,
		Bot:      router,
		Log:      log,

		WebhookTimeout: b.webhook,
	})
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) http.Handler {
	return h.Router(cfg.CORSOrigins)
}
