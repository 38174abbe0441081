package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/database"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/exam"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/utils"
)

const handlerTimeout = 15 * time.Second

// Bot is the Telegram companion: students link their account by phone
// number, then query their schedule, test results, and available tests.
type Bot struct {
	api *tgbotapi.BotAPI
	log *zap.Logger

	// chats that sent /start and still owe us a phone number
	awaitingPhone map[int64]bool
}

func New(token string, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram api: %w", err)
	}
	return &Bot{
		api:           api,
		log:           log,
		awaitingPhone: make(map[int64]bool),
	}, nil
}

// SendMessage implements services.TelegramSender.
func (b *Bot) SendMessage(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Start consumes the update stream until the context is cancelled.
// Update handling is sequential; the bot's traffic does not warrant a
// worker pool.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, chatID)
	case "schedule":
		b.requireLinked(ctx, chatID, b.handleSchedule)
	case "results":
		b.requireLinked(ctx, chatID, b.handleResults)
	case "tests":
		b.requireLinked(ctx, chatID, b.handleTests)
	case "help":
		b.reply(chatID, helpText)
	case "":
		b.handleText(ctx, chatID, msg.Text)
	default:
		b.reply(chatID, "Unknown command. Send /help for the list of commands.")
	}
}

const helpText = `Available commands:
/start - link your account
/schedule - your upcoming lessons
/results - your recent test results
/tests - tests available to you
/help - this message`

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	if user, err := repository.GetUserByTelegramChatID(ctx, chatID); err == nil {
		b.reply(chatID, fmt.Sprintf("Welcome back, %s! Your account is already linked.", user.FirstName))
		return
	}
	b.awaitingPhone[chatID] = true
	b.reply(chatID, "Welcome to Uzbek Ta'lim! Send me the phone number you registered with (+998XXXXXXXXX) to link your account.")
}

// handleText is only meaningful while a chat owes us a phone number.
func (b *Bot) handleText(ctx context.Context, chatID int64, text string) {
	if !b.awaitingPhone[chatID] {
		b.reply(chatID, "Send /help for the list of commands.")
		return
	}

	phone := strings.TrimSpace(text)
	if !utils.IsValidPhone(phone) {
		b.reply(chatID, "That doesn't look like a valid number. Use the format +998XXXXXXXXX.")
		return
	}

	user, err := repository.GetUserByPhone(ctx, phone)
	if err != nil {
		b.reply(chatID, "No account found with that number. Register on the platform first.")
		return
	}

	if err := repository.LinkTelegramChat(ctx, user.ID, chatID); err != nil {
		b.log.Error("telegram link failed", zap.String("user_id", user.ID), zap.Error(err))
		b.reply(chatID, "Something went wrong, please try again later.")
		return
	}

	delete(b.awaitingPhone, chatID)
	b.log.Info("telegram account linked", zap.String("user_id", user.ID), zap.Int64("chat_id", chatID))
	b.reply(chatID, fmt.Sprintf("Linked! Hello, %s. Send /help to see what I can do.", user.FirstName))
}

// requireLinked resolves the chat to a platform user before running fn.
func (b *Bot) requireLinked(ctx context.Context, chatID int64, fn func(ctx context.Context, chatID int64, user *models.User)) {
	user, err := repository.GetUserByTelegramChatID(ctx, chatID)
	if err != nil {
		b.reply(chatID, "Your account is not linked yet. Send /start to begin.")
		return
	}
	fn(ctx, chatID, user)
}

func (b *Bot) handleSchedule(ctx context.Context, chatID int64, user *models.User) {
	lessons, err := repository.UpcomingLessonsForStudent(ctx, user.ID, 10)
	if err != nil {
		b.log.Error("schedule lookup failed", zap.String("user_id", user.ID), zap.Error(err))
		b.reply(chatID, "Could not load your schedule, please try again later.")
		return
	}
	if len(lessons) == 0 {
		b.reply(chatID, "You have no upcoming lessons.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your upcoming lessons:\n")
	for _, lesson := range lessons {
		fmt.Fprintf(&sb, "\n%s — %s %s-%s",
			lesson.Title, lesson.Date.Format("Mon, 02 Jan"), lesson.StartTime, lesson.EndTime)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleResults(ctx context.Context, chatID int64, user *models.User) {
	store := repository.NewTestStore(database.DB)
	results, err := store.ResultsForUser(ctx, user.ID, 10)
	if err != nil {
		b.log.Error("results lookup failed", zap.String("user_id", user.ID), zap.Error(err))
		b.reply(chatID, "Could not load your results, please try again later.")
		return
	}
	if len(results) == 0 {
		b.reply(chatID, "You have no completed tests yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your recent results:\n")
	for _, r := range results {
		verdict := "failed"
		if r.IsPassed {
			verdict = "passed"
		}
		fmt.Fprintf(&sb, "\n%s: %.1f/%d (%.0f%%, %s)", r.Test.Title, r.Score, r.MaxScore, r.Percentage, verdict)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleTests(ctx context.Context, chatID int64, user *models.User) {
	store := repository.NewTestStore(database.DB)
	tests, _, err := store.ListTests(ctx, exam.Actor{ID: user.ID, Role: user.Role},
		repository.TestListFilter{Page: 1, Size: 10})
	if err != nil {
		b.log.Error("tests lookup failed", zap.String("user_id", user.ID), zap.Error(err))
		b.reply(chatID, "Could not load tests, please try again later.")
		return
	}
	if len(tests) == 0 {
		b.reply(chatID, "No tests are available right now.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Tests available to you:\n")
	for _, t := range tests {
		fmt.Fprintf(&sb, "\n%s (%d min, pass at %d%%)", t.Title, t.Duration, t.PassingScore)
	}
	sb.WriteString("\n\nOpen the platform to take a test.")
	b.reply(chatID, sb.String())
}

func (b *Bot) reply(chatID int64, text string) {
	if err := b.SendMessage(chatID, text); err != nil {
		b.log.Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
