package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// CommandHandler is called when a user command is received. It returns the
// HTML reply, or "" for no reply.
type CommandHandler func(ctx context.Context, command string) string

// MessageSender is the part of the Telegram client the notifier needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier sends messages to one chat and serves commands from it.
type TelegramNotifier struct {
	ChatID  string
	Backoff time.Duration // first retry delay, doubled per attempt

	sender  MessageSender
	bot     *bot.Bot
	handler CommandHandler
	log     logrus.FieldLogger
}

// NewTelegramNotifier creates a notifier with optional proxy support. handler
// may be nil when only outgoing messages are needed.
func NewTelegramNotifier(botToken, chatID, proxyURL string, handler CommandHandler) (*TelegramNotifier, error) {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	t := &TelegramNotifier{
		ChatID:  chatID,
		Backoff: time.Second,
		handler: handler,
		log:     logrus.WithField("component", "telegram"),
	}
	b, err := bot.New(botToken,
		bot.WithHTTPClient(30*time.Second, &http.Client{Timeout: 35 * time.Second, Transport: transport}),
		bot.WithDefaultHandler(func(ctx context.Context, _ *bot.Bot, update *models.Update) {
			t.handleUpdate(ctx, update)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	t.bot, t.sender = b, b
	return t, nil
}

// NewWithSender builds a notifier around an existing sender, without polling.
func NewWithSender(sender MessageSender, chatID string, handler CommandHandler) *TelegramNotifier {
	return &TelegramNotifier{
		ChatID:  chatID,
		Backoff: time.Second,
		sender:  sender,
		handler: handler,
		log:     logrus.WithField("component", "telegram"),
	}
}

// Send sends an HTML message to the configured chat, split into chunks that
// fit the Telegram size limit.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.sendTo(ctx, t.ChatID, text)
}

func (t *TelegramNotifier) sendTo(ctx context.Context, chatID any, text string) error {
	for _, chunk := range Split(text, MaxMessageLen) {
		if _, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      chunk,
			ParseMode: models.ParseModeHTML,
		}); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := t.Backoff << uint(i)
		t.log.WithFields(logrus.Fields{"attempt": i + 1, "max": maxRetries + 1, "backoff": backoff}).
			WithError(err).Warn("telegram send failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context) {
	if t.bot == nil {
		return
	}
	t.log.Info("telegram polling started")
	t.bot.Start(ctx)
	t.log.Info("telegram polling stopped")
}

func (t *TelegramNotifier) handleUpdate(ctx context.Context, update *models.Update) {
	if update == nil || update.Message == nil || t.handler == nil {
		return
	}
	msg := update.Message
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	chat := strconv.FormatInt(msg.Chat.ID, 10)
	if t.ChatID != "" && chat != t.ChatID {
		t.log.WithField("chat_id", chat).Warn("ignoring message from unknown chat")
		return
	}

	t.log.WithField("command", text).Info("received command")
	reply := t.handler(ctx, text)
	if reply == "" {
		return
	}
	if err := t.sendTo(ctx, msg.Chat.ID, reply); err != nil {
		t.log.WithError(err).Error("send reply failed")
	}
}
