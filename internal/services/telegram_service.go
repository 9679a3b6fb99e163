package services

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tasktracker/internal/models"
	"tasktracker/internal/repositories"
)

// TelegramNotifier mirrors socket notifications to Telegram for users who
// linked a chat id on their profile. It is a best-effort secondary channel:
// every failure is logged and swallowed.
type TelegramNotifier struct {
	bot   *tgbotapi.BotAPI
	users repositories.UserRepository
}

func NewTelegramNotifier(botToken string, users repositories.UserRepository) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	log.Printf("[tg][init] authorized as @%s", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, users: users}, nil
}

// Deliver implements realtime.Sink.
func (t *TelegramNotifier) Deliver(userID int64, n models.Notification) {
	user, err := t.users.FindByID(context.Background(), userID)
	if err != nil {
		log.Printf("[tg][deliver][err] lookup user=%d: %v", userID, err)
		return
	}
	if user == nil || user.TelegramChatID == nil {
		return
	}

	msg := tgbotapi.NewMessage(*user.TelegramChatID, prefixFor(n.Type)+" "+n.Message)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][deliver][err] user=%d chat=%d: %v", userID, *user.TelegramChatID, err)
	}
}

func prefixFor(notificationType string) string {
	switch notificationType {
	case models.NotifyTaskAssigned:
		return "👤"
	case models.NotifyTaskCompleted:
		return "✅"
	case models.NotifyNewComment:
		return "💬"
	case models.NotifyTeamInvitation:
		return "👥"
	default:
		return "✏️"
	}
}
