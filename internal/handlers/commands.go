package handlers

import (
	"fmt"
	"log"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"medicine-reminder/internal/i18n"
	"medicine-reminder/internal/models"
)

func (h *Handler) HandleCommand(chatID int64, cmd string) {
	// Any command abandons an in-flight dialogue.
	h.resetConversation(chatID)

	switch cmd {
	case "start", "help":
		h.reply(chatID, i18n.HelpMessage(h.Svc.Locale()))
	case "add":
		h.setConversation(chatID, models.Conversation{State: models.StateAwaitingMedicineName})
		h.reply(chatID, h.texts().EnterName)
	case "list":
		h.handleList(chatID)
	case "delete":
		h.handleDelete(chatID)
	case "refill":
		h.handleRefill(chatID)
	case "pending":
		h.handlePending(chatID)
	case "language":
		h.handleLanguage(chatID)
	}
}

// sortedMedicines returns the snapshot's medicines in creation order so
// numbered lists stay stable between commands.
func sortedMedicines(data *models.AppData) []*models.Medicine {
	meds := make([]*models.Medicine, 0, len(data.Medicines))
	for _, m := range data.Medicines {
		meds = append(meds, m)
	}
	sort.Slice(meds, func(i, j int) bool {
		if !meds[i].CreatedAt.Equal(meds[j].CreatedAt) {
			return meds[i].CreatedAt.Before(meds[j].CreatedAt)
		}
		return meds[i].ID < meds[j].ID
	})
	return meds
}

func (h *Handler) handleList(chatID int64) {
	data := h.Svc.Snapshot()
	locale := data.UserSettings.Locale()
	text := i18n.For(locale)

	meds := sortedMedicines(data)
	if len(meds) == 0 {
		h.reply(chatID, text.NoMedicines)
		return
	}

	lines := []string{text.MedicinesList}
	for i, m := range meds {
		lines = append(lines, i18n.MedicineLine(locale, i+1, m.Name, m.Quantity, m.IsActive, m.ReminderTimes))
	}
	h.reply(chatID, strings.Join(lines, "\n\n"))
}

func (h *Handler) handleDelete(chatID int64) {
	data := h.Svc.Snapshot()
	text := i18n.For(data.UserSettings.Locale())

	meds := sortedMedicines(data)
	if len(meds) == 0 {
		h.reply(chatID, text.NoMedicines)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range meds {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ "+m.Name, "delete_"+m.ID),
		))
	}
	h.replyWithKeyboard(chatID, text.SelectDelete, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (h *Handler) handleRefill(chatID int64) {
	data := h.Svc.Snapshot()
	text := i18n.For(data.UserSettings.Locale())

	meds := sortedMedicines(data)
	if len(meds) == 0 {
		h.reply(chatID, text.NoMedicines)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range meds {
		label := fmt.Sprintf("💊 %s (%d)", m.Name, m.Quantity)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "refill_"+m.ID),
		))
	}
	h.replyWithKeyboard(chatID, text.SelectRefill, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (h *Handler) handlePending(chatID int64) {
	data := h.Svc.Snapshot()
	locale := data.UserSettings.Locale()
	text := i18n.For(locale)

	var pending []*models.PendingReminder
	for _, r := range data.PendingReminders {
		if !r.IsConfirmed {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		h.reply(chatID, text.NoPending)
		return
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ScheduledTime.Before(pending[j].ScheduledTime)
	})

	lines := []string{text.PendingTitle}
	for i, r := range pending {
		lines = append(lines, i18n.PendingLine(locale, i+1, r.MedicineName,
			r.ScheduledTime.Format("15:04"), r.ReminderCount))
	}
	h.reply(chatID, strings.Join(lines, "\n\n"))
}

func (h *Handler) handleLanguage(chatID int64) {
	text := h.texts()
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(text.EnglishButton, "lang_en"),
			tgbotapi.NewInlineKeyboardButtonData(text.ChineseButton, "lang_zh"),
		),
	)
	h.replyWithKeyboard(chatID, text.SelectLanguage, kb)
}

func (h *Handler) replyWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := h.Bot.Send(msg); err != nil {
		log.Println("failed to send reply:", err)
	}
}
