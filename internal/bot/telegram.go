package bot

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dompet/internal/log"
	"dompet/internal/metrics"
)

const (
	TransportPolling = "polling"
	TransportWebhook = "webhook"

	// WebhookPrefix is followed by the webhook secret.
	WebhookPrefix = "/telegram/webhook/"

	pollTimeout = 60
)

// Sender delivers outgoing messages. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot connects the router to the Telegram Bot API.
type Bot struct {
	api    *tgbotapi.BotAPI
	sender Sender
	router *Router
	logger *log.Logger
}

// NewBot authenticates with the Bot API using token.
func NewBot(token string, router *Router, logger *log.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}

	logger.Info("Telegram bot authorized", "username", api.Self.UserName)
	return &Bot{
		api:    api,
		sender: api,
		router: router,
		logger: logger,
	}, nil
}

// RegisterCommands publishes the command menu.
func (b *Bot) RegisterCommands() error {
	cmds := make([]tgbotapi.BotCommand, 0, len(Commands))
	for _, c := range Commands {
		cmds = append(cmds, tgbotapi.BotCommand{Command: c.Name, Description: c.Description})
	}

	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(cmds...)); err != nil {
		return fmt.Errorf("set commands: %w", err)
	}
	return nil
}

// RunPolling receives updates by long polling until ctx is cancelled.
func (b *Bot) RunPolling(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Polling for updates")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update, TransportPolling)
		}
	}
}

// WebhookURL joins the public base URL with the webhook path for secret.
func WebhookURL(base, secret string) string {
	return strings.TrimRight(base, "/") + WebhookPrefix + secret
}

// SetWebhook points Telegram at url.
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// WebhookHandler serves POST WebhookPrefix+"{secret}". Requests with any
// other secret get 404.
func (b *Bot) WebhookHandler(secret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimPrefix(r.URL.Path, WebhookPrefix)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			http.NotFound(w, r)
			return
		}

		update, err := b.api.HandleUpdate(r)
		if err != nil {
			b.logger.WarnContext(r.Context(), "Invalid webhook update", log.FieldError, err)
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}

		b.HandleUpdate(r.Context(), *update, TransportWebhook)
		w.WriteHeader(http.StatusOK)
	})
}

// HandleUpdate routes a message update and sends the reply, if any.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update, transport string) {
	metrics.ObserveUpdate(transport)

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	in := Incoming{ChatID: msg.Chat.ID, Text: msg.Text}
	if msg.From != nil {
		in.UserID = msg.From.ID
		in.FirstName = msg.From.FirstName
	}

	logger := b.logger.With(
		log.FieldRequestID, log.NewRequestID(),
		log.FieldUpdateID, update.UpdateID,
		log.FieldUserID, in.UserID,
		log.FieldChatID, in.ChatID,
	)
	ctx = log.WithContext(ctx, logger)

	reply := b.router.Handle(ctx, in)
	if reply.Text == "" {
		return
	}

	if _, err := b.sender.Send(tgbotapi.NewMessage(reply.ChatID, reply.Text)); err != nil {
		logger.ErrorContext(ctx, "Failed to send reply", log.FieldError, err)
	}
}
