package handlers

import (
	"context"
	"net/http"

	"cashgram/internal/bot"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotWebhook receives chat updates and answers inline with a sendMessage
// envelope. Only a payload without a message is rejected; every other
// outcome is a 200 with a reply.
func (h *Handlers) BotWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid update")
		return
	}
	m := update.Message
	if m == nil || m.Chat == nil {
		writeError(w, http.StatusBadRequest, "No message")
		return
	}

	msg := bot.Message{ChatID: m.Chat.ID, SenderID: m.Chat.ID, Text: m.Text}
	if m.From != nil {
		msg.SenderID = m.From.ID
	}

	ctx := r.Context()
	if h.webhookTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.webhookTimeout)
		defer cancel()
	}
	writeJSON(w, http.StatusOK, h.bot.Handle(ctx, msg))
}
