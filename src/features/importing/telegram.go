package importing

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rottenolives/rottenolives/src/features/config"
)

// TelegramNotifier posts import-run summaries to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a notifier from the telegram configuration.
func NewTelegramNotifier(cfg *config.Manager) (*TelegramNotifier, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram notifications are disabled in configuration")
	}
	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}
	if telegramConfig.ChatID == 0 {
		return nil, fmt.Errorf("telegram chat id is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram notifier initialized", "username", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: telegramConfig.ChatID}, nil
}

// ImportFinished posts a summary of a finished import run.
func (n *TelegramNotifier) ImportFinished(playlistName string, imported int) {
	msg := tgbotapi.NewMessage(n.chatID,
		fmt.Sprintf("🫒 Imported %d releases from playlist *%s*", imported, playlistName))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		slog.Error("Failed to send telegram notification", "error", err)
	}
}
