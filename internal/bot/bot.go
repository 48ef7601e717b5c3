// Package bot sends due-card reminders over Telegram and answers a few status commands.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/BenWassa/vox/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// client is the subset of *tgbotapi.BotAPI the bot uses
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Summarizer provides the dashboard numbers for /stats
type Summarizer interface {
	Summary(ctx context.Context) (models.Summary, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	api       client
	config    Config
	dashboard Summarizer
	logger    *zap.Logger
}

// New connects to Telegram with the configured token
func New(config Config, dashboard Summarizer, logger *zap.Logger) (*Bot, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}

	botAPI, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %v", err)
	}

	b := newBot(botAPI, config, dashboard, logger)
	b.logger.Info("authorized on telegram", zap.String("account", botAPI.Self.UserName))
	return b, nil
}

func newBot(api client, config Config, dashboard Summarizer, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:       api,
		config:    config,
		dashboard: dashboard,
		logger:    logger.Named("bot"),
	}
}

// Run handles incoming updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout

	updates := b.api.GetUpdatesChan(updateConfig)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// SendReminder implements scheduler.Notifier
func (b *Bot) SendReminder(ctx context.Context, due int) error {
	msg := tgbotapi.NewMessage(b.config.ChatID, ReminderText(due))
	msg.ReplyMarkup = createKeyboard(menuButtons())

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %v", err)
	}
	b.logger.Info("reminder sent", zap.Int("due", due))
	return nil
}

// ReminderText is the reminder message for the given number of due cards
func ReminderText(due int) string {
	noun := "cards"
	if due == 1 {
		noun = "card"
	}
	return fmt.Sprintf("You have %d %s due for review. Open Vox to start a session.", due, noun)
}

func menuButtons() [][]MenuButton {
	return [][]MenuButton{{
		{Text: "Stats", CallbackData: "stats"},
		{Text: "Due now", CallbackData: "due"},
	}}
}

// LogNotifier writes reminders to the log. It is used when no bot token is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier writing to logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("reminder")}
}

// SendReminder implements scheduler.Notifier
func (n *LogNotifier) SendReminder(_ context.Context, due int) error {
	n.logger.Info(ReminderText(due), zap.Int("due", due), zap.Time("at", time.Now().UTC()))
	return nil
}
