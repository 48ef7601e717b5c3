package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/BenWassa/vox/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		if update.Message.Chat == nil || update.Message.Chat.ID != b.config.ChatID {
			return
		}
		if !update.Message.IsCommand() {
			b.reply(update.Message.Chat.ID, "I don't understand. Use /start to see the commands.")
			return
		}
		b.handleCommand(ctx, update.Message.Chat.ID, update.Message.Command())

	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start", "menu":
		b.handleStartCommand(chatID)
	case "stats":
		b.handleStatsCommand(ctx, chatID)
	case "due":
		b.handleDueCommand(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /start to see the commands.")
	}
}

// handleCallbackQuery handles presses on the menu buttons
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.Message.Chat == nil || query.Message.Chat.ID != b.config.ChatID {
		return
	}

	// Acknowledge the press so the client stops its spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}
	b.handleCommand(ctx, query.Message.Chat.ID, query.Data)
}

// handleStartCommand handles the /start command
func (b *Bot) handleStartCommand(chatID int64) {
	text := `Vox reminders

Available commands:
/stats - Show mastery statistics
/due - Show how many cards are due`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(menuButtons())
	b.send(msg)
}

func (b *Bot) handleStatsCommand(ctx context.Context, chatID int64) {
	summary, err := b.dashboard.Summary(ctx)
	if err != nil {
		b.logger.Error("failed to build summary", zap.Error(err))
		b.reply(chatID, "Statistics are not available right now.")
		return
	}
	b.reply(chatID, StatsText(summary))
}

func (b *Bot) handleDueCommand(ctx context.Context, chatID int64) {
	summary, err := b.dashboard.Summary(ctx)
	if err != nil {
		b.logger.Error("failed to build summary", zap.Error(err))
		b.reply(chatID, "Statistics are not available right now.")
		return
	}
	if summary.DueNow == 0 {
		b.reply(chatID, "Nothing is due. Come back later!")
		return
	}
	b.reply(chatID, ReminderText(summary.DueNow))
}

// StatsText renders a summary as a chat message
func StatsText(s models.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Vocabulary: %d/%d mastered (%.1f%%)\n", s.VocabMastered, s.VocabTotal, s.VocabMasteryPercent)
	for box := models.MinBox; box <= models.MasteredBox; box++ {
		fmt.Fprintf(&sb, "  Box %d: %d\n", box, s.BoxCounts[box])
	}
	fmt.Fprintf(&sb, "Grammar: %d/%d mastered (%.1f%%)\n", s.GrammarMastered, s.GrammarTotal, s.GrammarMasteryPercent)
	for _, status := range models.GrammarStatuses {
		fmt.Fprintf(&sb, "  %s: %d\n", status, s.StatusCounts[status])
	}
	fmt.Fprintf(&sb, "Due now: %d", s.DueNow)
	return sb.String()
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("failed to send message", zap.Error(err))
	}
}
