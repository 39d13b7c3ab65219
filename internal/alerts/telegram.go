// Package alerts pushes new-report alerts to an external admin channel over
// the Telegram Bot API. The channel is strictly best-effort: delivery
// failures are logged and never surface to the report mutation.
package alerts

import (
	"fmt"
	"log"

	"campusfix/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAlerter implements report.Alerter against a fixed admin chat.
type TelegramAlerter struct {
	BotAPI *tgbotapi.BotAPI
	ChatID int64
}

// NewTelegramAlerter authenticates the bot. Returns an error when the token
// is rejected; callers typically skip alerting entirely in that case.
func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("Telegram alerts authorized on account %s", bot.Self.UserName)

	return &TelegramAlerter{BotAPI: bot, ChatID: chatID}, nil
}

// ReportCreated sends a one-line summary of the new report to the admin chat.
func (a *TelegramAlerter) ReportCreated(r *models.Report) {
	text := fmt.Sprintf("New %s report #%04d — %s", r.Category, r.Code, location(r))
	msg := tgbotapi.NewMessage(a.ChatID, text)
	if _, err := a.BotAPI.Send(msg); err != nil {
		log.Printf("WARNING: Failed to send Telegram alert for report %s: %v", r.ID, err)
	}
}

func location(r *models.Report) string {
	loc := r.Building
	if r.Floor != "" {
		loc += ", floor " + r.Floor
	}
	if r.Room != "" {
		loc += ", room " + r.Room
	}
	return loc
}
