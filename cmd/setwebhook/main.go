// Command setwebhook points the Telegram bot at this server's /bot/webhook.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, tgbotapi.APIEndpoint); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer, endpoint string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	fset := flag.NewFlagSet("setwebhook", flag.ContinueOnError)
	fset.SetOutput(stderr)

	token := fset.String("token", os.Getenv("TELEGRAM_BOT_TOKEN"), "Bot token (or set TELEGRAM_BOT_TOKEN)")
	baseURL := fset.String("url", os.Getenv("PUBLIC_BASE_URL"), "Public base URL of the server (or set PUBLIC_BASE_URL)")
	remove := fset.Bool("delete", false, "Remove the webhook instead of setting it")

	if err := fset.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		return errors.New("missing bot token: set -token or TELEGRAM_BOT_TOKEN")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(*token, endpoint, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return fmt.Errorf("connect to Telegram: %w", err)
	}
	fmt.Fprintf(stdout, "Authorized as @%s\n", bot.Self.UserName)

	if *remove {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			return fmt.Errorf("delete webhook: %w", err)
		}
		fmt.Fprintln(stdout, "Webhook deleted")
		return nil
	}

	if *baseURL == "" {
		return errors.New("missing public URL: set -url or PUBLIC_BASE_URL")
	}
	hookURL := strings.TrimRight(*baseURL, "/") + "/bot/webhook"

	wh, err := tgbotapi.NewWebhook(hookURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if _, err := bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := bot.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("get webhook info: %w", err)
	}
	fmt.Fprintf(stdout, "Webhook set to %s (pending updates: %d)\n", info.URL, info.PendingUpdateCount)
	if info.LastErrorMessage != "" {
		fmt.Fprintf(stdout, "Last delivery error: %s\n", info.LastErrorMessage)
	}
	return nil
}
