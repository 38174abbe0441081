package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
)

// TelegramSender delivers a message to a chat. The bot package provides
// the real implementation; a nil sender disables Telegram delivery.
type TelegramSender interface {
	SendMessage(chatID int64, text string) error
}

// Message is a notification payload before persistence.
type Message struct {
	UserID  string
	Type    string
	Title   string
	Message string
}

// Notifier persists notifications and pushes them to Telegram for users
// with a linked chat. Persistence always happens first; a failed push
// never loses the notification.
type Notifier struct {
	sender TelegramSender
	log    *zap.Logger
}

func NewNotifier(sender TelegramSender, log *zap.Logger) *Notifier {
	return &Notifier{sender: sender, log: log}
}

func (n *Notifier) Notify(ctx context.Context, msg Message) (*models.Notification, error) {
	notifType := models.NotificationType(msg.Type)
	if notifType == "" {
		notifType = models.NotifyInfo
	}

	notification := &models.Notification{
		UserID:  msg.UserID,
		Type:    notifType,
		Title:   msg.Title,
		Message: msg.Message,
	}
	if err := repository.CreateNotification(ctx, notification); err != nil {
		return nil, err
	}

	n.pushToTelegram(ctx, notification)
	return notification, nil
}

func (n *Notifier) pushToTelegram(ctx context.Context, notification *models.Notification) {
	if n.sender == nil {
		return
	}

	user, err := repository.GetUserByID(ctx, notification.UserID)
	if err != nil || user.TelegramChatID == 0 {
		return
	}

	text := notification.Title + "\n\n" + notification.Message
	if err := n.sender.SendMessage(user.TelegramChatID, text); err != nil {
		n.log.Warn("telegram delivery failed",
			zap.String("notification_id", notification.ID),
			zap.Int64("chat_id", user.TelegramChatID),
			zap.Error(err),
		)
		return
	}

	if err := repository.MarkNotificationSentToTelegram(ctx, notification.ID); err != nil {
		n.log.Warn("could not flag notification as delivered",
			zap.String("notification_id", notification.ID),
			zap.Error(err),
		)
	}
}
