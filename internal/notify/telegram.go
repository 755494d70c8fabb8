package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts admin alerts to a staff chat.
type Telegram struct {
	bot    botSender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if strings.TrimSpace(token) == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram token and chat id are required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Notify sends in the background; the bot API has no context support.
func (t *Telegram) Notify(ctx context.Context, n Notification) {
	if t == nil || t.bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(t.chatID, formatTelegram(n))
	logger := log.Ctx(ctx).With().
		Int64("booking_id", n.BookingID).
		Str("notification_type", string(n.Type)).
		Logger()

	go func() {
		if _, err := t.bot.Send(msg); err != nil {
			logger.Warn().Err(err).Msg("Failed to send telegram notification")
		}
	}()
}

func formatTelegram(n Notification) string {
	var b strings.Builder
	b.WriteString(n.Title)
	if n.BookingCode != "" {
		fmt.Fprintf(&b, " [%s]", n.BookingCode)
	}
	if n.Message != "" {
		b.WriteString("\n")
		b.WriteString(n.Message)
	}
	return b.String()
}
