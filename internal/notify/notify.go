// Package notify delivers the companion notification that accompanies each
// visual alert, plus the long-lived service status message.
package notify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// Message is one outbound companion notification. DeepLink points back into
// the host application.
type Message struct {
	Title      string
	Body       string
	Confidence float64
	SourceApp  string
	DeepLink   string
}

// Notifier sends companion notifications. Implementations must tolerate
// being called from background goroutines.
type Notifier interface {
	Alert(ctx context.Context, msg Message) error
	Status(ctx context.Context, text string) error
}

// TelegramConfig configures the Telegram notification channel.
type TelegramConfig struct {
	Enabled  bool
	BotToken string
	ChatID   string
	APIBase  string
}

// TelegramNotifier pushes notifications through the Telegram Bot API.
type TelegramNotifier struct {
	client  *tgbot.Bot
	chatID  any
	initErr error
}

// NewTelegramNotifier creates the Telegram channel.
func NewTelegramNotifier(cfg TelegramConfig) *TelegramNotifier {
	notifier := &TelegramNotifier{chatID: normalizeChatID(cfg.ChatID)}

	if !cfg.Enabled {
		notifier.initErr = errors.New("telegram channel is disabled")
		return notifier
	}
	if strings.TrimSpace(cfg.BotToken) == "" {
		notifier.initErr = errors.New("telegram bot token is required")
		return notifier
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		notifier.initErr = errors.New("telegram chat_id is required")
		return notifier
	}

	options := []tgbot.Option{tgbot.WithSkipGetMe()}
	if base := strings.TrimSpace(cfg.APIBase); base != "" {
		options = append(options, tgbot.WithServerURL(strings.TrimRight(base, "/")))
	}
	client, err := tgbot.New(cfg.BotToken, options...)
	if err != nil {
		notifier.initErr = fmt.Errorf("init telegram bot: %w", err)
		return notifier
	}
	notifier.client = client
	return notifier
}

// Alert posts one alert notification to the configured chat.
func (n *TelegramNotifier) Alert(ctx context.Context, msg Message) error {
	text := fmt.Sprintf("⚠️ <b>%s</b> (%d%%)\n%s", msg.Title, int(math.Round(msg.Confidence*100)), msg.Body)
	if msg.SourceApp != "" {
		text += fmt.Sprintf("\nSource: %s", msg.SourceApp)
	}
	if msg.DeepLink != "" {
		text += fmt.Sprintf("\n<a href=\"%s\">Open app</a>", msg.DeepLink)
	}
	return n.send(ctx, text)
}

// Status posts the low-priority service status line.
func (n *TelegramNotifier) Status(ctx context.Context, text string) error {
	return n.send(ctx, text)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	if n.initErr != nil {
		return n.initErr
	}
	if n.client == nil {
		return errors.New("telegram client is not initialized")
	}
	sent, err := n.client.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if sent == nil || sent.ID <= 0 {
		return errors.New("telegram send returned empty message id")
	}
	return nil
}

// normalizeChatID converts numeric chat IDs to int64 and keeps non-numeric
// IDs as string, matching the Bot API union type.
func normalizeChatID(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if numeric, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return numeric
	}
	return trimmed
}

// LogNotifier is the fallback channel when no transport is configured.
type LogNotifier struct{}

// Alert logs the notification instead of delivering it.
func (LogNotifier) Alert(_ context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"title":      msg.Title,
		"confidence": msg.Confidence,
		"source_app": msg.SourceApp,
	}).Info("alert notification")
	return nil
}

// Status logs the status line.
func (LogNotifier) Status(_ context.Context, text string) error {
	logrus.WithField("status", text).Info("service notification")
	return nil
}
