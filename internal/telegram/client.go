/**
 * @description
 * Telegram client for pushing anomaly alerts from the background worker.
 * Formats detected high-value streaks into a MarkdownV2 digest and sends
 * it to the configured chat, retrying with a linear backoff on failure.
 *
 * @dependencies
 * - github.com/go-telegram-bot-api/telegram-bot-api/v5: Bot API bindings.
 *
 * @notes
 * - All dynamic text is escaped for MarkdownV2 before interpolation.
 */

package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/alexbesp18/aa-streak-optimizer/internal/analysis"
)

// Client sends anomaly alerts to a single Telegram chat.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a Telegram client for the given bot token and chat ID.
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

// SendAnomalies sends a digest of the detected anomalies. No-op when the
// list is empty.
func (c *Client) SendAnomalies(destination string, anomalies []analysis.AnomalyResult) error {
	if len(anomalies) == 0 {
		return nil
	}
	return c.sendMarkdownV2(formatAnomalies(destination, anomalies))
}

// SendError sends a worker error notification.
// Call this only on the first occurrence of a consecutive error sequence.
func (c *Client) SendError(scanErr error) error {
	text := fmt.Sprintf("⚠️ *Scan error*\n`%s`", escapeMarkdownV2(scanErr.Error()))
	return c.sendMarkdownV2(text)
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (c *Client) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// formatAnomalies builds the MarkdownV2 alert body for a destination.
func formatAnomalies(destination string, anomalies []analysis.AnomalyResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 *High\\-Value Stays: %s*\n\n", escapeMarkdownV2(destination))

	for i, a := range anomalies {
		hotel := escapeMarkdownV2(a.HotelName)
		checkIn := escapeMarkdownV2(a.CheckIn)
		checkOut := escapeMarkdownV2(a.CheckOut)
		ratio := escapeMarkdownV2(fmt.Sprintf("%.2f", a.PtsPerDollar))
		baseline := escapeMarkdownV2(fmt.Sprintf("%.2f", a.HistoricalAvg))
		cost := escapeMarkdownV2(fmt.Sprintf("$%.2f", a.TotalCost))

		fmt.Fprintf(&b, "%d\\. *%s* \\(%d nights\\)\n", i+1, hotel, a.Duration)
		fmt.Fprintf(&b, "   📅 %s → %s\n", checkIn, checkOut)
		fmt.Fprintf(&b, "   💰 %s pts/\\$ \\(baseline %s, \\+%d%%\\)\n", ratio, baseline, a.PctAbove)
		fmt.Fprintf(&b, "   🏨 %d pts for %s\n\n", a.TotalPoints, cost)
	}

	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
