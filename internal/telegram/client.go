// Package telegram delivers the per-run savings report via the Telegram Bot
// API. It formats the optimization summary into a MarkdownV2 message and
// handles delivery with retry logic for reliability.
package telegram

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aalabort/Grocefy/internal/optimizer"
)

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendSummary sends the savings report for one optimization run.
func (c *Client) SendSummary(summary optimizer.Summary) error {
	message := formatSummary(summary, time.Now())

	msg := tgbotapi.NewMessage(c.chatID, message)
	msg.ParseMode = "MarkdownV2" // Use MarkdownV2 for better escaping support

	// Send with retry
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatSummary formats an optimization summary into a Telegram message
func formatSummary(summary optimizer.Summary, now time.Time) string {
	message := "🛒 *Grocery Savings Report*\n\n"
	message += fmt.Sprintf("📅 %s\n", escapeMarkdownV2(now.Format("2006-01-02 15:04:05")))
	message += fmt.Sprintf("💰 Total savings: *%s*\n", escapeMarkdownV2(summary.TotalSavings.String()))

	if summary.BestSwitch != nil {
		best := summary.BestSwitch
		message += fmt.Sprintf("🏆 Best switch: %s → %s \\(save %s\\)\n",
			escapeMarkdownV2(best.ProductName),
			escapeMarkdownV2(best.CheapestSupermarket),
			escapeMarkdownV2(best.SavingsVsCurrent.String()),
		)
	}
	message += "\n"

	for i, line := range summary.Lines {
		message += fmt.Sprintf("%d\\. %s\n", i+1, escapeMarkdownV2(line))
	}

	return message
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	result := ""
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			result += "\\" + string(char)
		default:
			result += string(char)
		}
	}
	return result
}
