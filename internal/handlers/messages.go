package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"

	"medicine-reminder/internal/i18n"
	"medicine-reminder/internal/models"
)

// Notifier delivers reminder messages to the configured chat. It
// implements the service's Sender contract and is stateless per call;
// retries and timeouts belong to the caller.
type Notifier struct {
	Bot    *tgbotapi.BotAPI
	ChatID int64
}

func NewNotifier(bot *tgbotapi.BotAPI, chatID int64) *Notifier {
	return &Notifier{Bot: bot, ChatID: chatID}
}

func (n *Notifier) SendReminder(ctx context.Context, r models.PendingReminder, locale language.Tag) error {
	text := i18n.FormatReminder(locale, r.MedicineName, r.ScheduledTime.Format("15:04"))
	return n.send(ctx, text, r.ID, locale)
}

func (n *Notifier) SendEscalation(ctx context.Context, r models.PendingReminder, locale language.Tag) error {
	text := i18n.FormatEscalation(locale, r.MedicineName, r.ScheduledTime.Format("15:04"), r.ReminderCount)
	return n.send(ctx, text, r.ID, locale)
}

func (n *Notifier) send(ctx context.Context, text, reminderID string, locale language.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := i18n.For(locale)
	msg := tgbotapi.NewMessage(n.ChatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.TakenButton, "confirm_"+reminderID),
			tgbotapi.NewInlineKeyboardButtonData(t.SnoozeButton, "snooze_"+reminderID),
		),
	)
	_, err := n.Bot.Send(msg)
	return err
}
