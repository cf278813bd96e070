package notification

import (
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	internalerrors "github.com/olegiv/netsyslog-go/internal/errors"
)

const (
	maxMessageLength = 4096
	// minMessageInterval is the minimum time between messages to the same
	// channel to avoid Telegram rate limits
	minMessageInterval = 1 * time.Second
)

// TelegramSink posts the plain-text report to a channel, split into
// 4096-character chunks on line boundaries.
type TelegramSink struct {
	bot             *tgbotapi.BotAPI
	channel         int64
	lastMessageTime time.Time
}

// NewTelegramSink creates a Telegram sink for the given channel.
func NewTelegramSink(botToken string, channel int64) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		// Sanitize to keep the bot token out of error messages
		return nil, internalerrors.Wrapf(err, "failed to create Telegram bot")
	}

	return &TelegramSink{
		bot:     bot,
		channel: channel,
	}, nil
}

// Send implements Sink using the plain-text body.
func (t *TelegramSink) Send(dateLabel, _, textBody string) error {
	for _, chunk := range splitMessage(textBody, maxMessageLength) {
		t.throttle()
		if _, err := t.bot.Send(tgbotapi.NewMessage(t.channel, chunk)); err != nil {
			return internalerrors.Wrapf(err, "failed to send report chunk for %s", dateLabel)
		}
		t.lastMessageTime = time.Now()
	}
	return nil
}

func (t *TelegramSink) throttle() {
	if t.lastMessageTime.IsZero() {
		return
	}
	if wait := minMessageInterval - time.Since(t.lastMessageTime); wait > 0 {
		time.Sleep(wait)
	}
}

// splitMessage splits text into chunks of at most limit bytes, preferring
// line boundaries so device tables are never cut mid-row.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
