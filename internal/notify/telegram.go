package notify

import (
	"context"
	"strings"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pocketkid/pocketkid/internal/models"
	"github.com/pocketkid/pocketkid/utils"
)

// TelegramAnnouncer mirrors parent-facing events into one configured family
// chat. It is an optional extra transport: the notification rows and web
// push deliveries do not depend on it.
type TelegramAnnouncer struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	disabled atomic.Bool
	logger   *utils.Logger
}

func NewTelegramAnnouncer(token string, chatID int64, logger *utils.Logger) (*TelegramAnnouncer, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramAnnouncer{bot: bot, chatID: chatID, logger: logger}, nil
}

// Dispatch forwards only the kinds addressed to parents; per-child messages
// stay out of the shared chat.
func (t *TelegramAnnouncer) Dispatch(_ context.Context, _ uint, kind models.NotificationKind, message string) {
	if t.disabled.Load() {
		return
	}
	switch kind {
	case models.NotifApprovalRequired, models.NotifRecurringFailed:
	default:
		return
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, message)); err != nil {
		t.logger.Warnf("telegram announce failed: %v", err)
		// A blocked bot never recovers on its own; stop trying.
		if strings.Contains(err.Error(), "blocked") || strings.Contains(err.Error(), "kicked") {
			t.disabled.Store(true)
		}
	}
}
