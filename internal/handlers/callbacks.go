package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"

	"medicine-reminder/internal/models"
	"medicine-reminder/internal/reminder"
)

// Preset buttons offered before falling back to free-text entry.
var (
	dosePresets   = []int{1, 2, 3}
	refillPresets = []int{10, 20, 30}
)

// HandleCallback routes inline button presses. Data formats:
//
//	confirm_<reminderID>     snooze_<reminderID>
//	dose_<n>_<reminderID>    dose_custom_<reminderID>
//	delete_<medicineID>      refill_<medicineID>
//	refill_<n>_<medicineID>  refill_custom_<medicineID>
//	lang_en                  lang_zh
func (h *Handler) HandleCallback(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	data := cq.Data

	switch {
	case strings.HasPrefix(data, "confirm_"):
		h.offerDoseAmounts(chatID, strings.TrimPrefix(data, "confirm_"))

	case strings.HasPrefix(data, "snooze_"):
		h.snooze(chatID, strings.TrimPrefix(data, "snooze_"))

	case strings.HasPrefix(data, "dose_custom_"):
		h.setConversation(chatID, models.Conversation{
			State:      models.StateAwaitingDoseAmount,
			ReminderID: strings.TrimPrefix(data, "dose_custom_"),
		})
		h.reply(chatID, h.texts().EnterCustom)

	case strings.HasPrefix(data, "dose_"):
		if amount, id, ok := splitPreset(strings.TrimPrefix(data, "dose_")); ok {
			h.confirmDose(chatID, id, amount)
		}

	case strings.HasPrefix(data, "delete_"):
		h.deleteMedicine(chatID, strings.TrimPrefix(data, "delete_"))

	case strings.HasPrefix(data, "refill_custom_"):
		h.setConversation(chatID, models.Conversation{
			State:      models.StateAwaitingRefillAmount,
			MedicineID: strings.TrimPrefix(data, "refill_custom_"),
		})
		h.reply(chatID, h.texts().EnterRefill)

	case strings.HasPrefix(data, "refill_"):
		rest := strings.TrimPrefix(data, "refill_")
		if amount, id, ok := splitPreset(rest); ok {
			h.refill(chatID, id, amount)
		} else {
			h.offerRefillAmounts(chatID, rest)
		}

	case data == "lang_en":
		h.setLanguage(chatID, language.English)

	case data == "lang_zh":
		h.setLanguage(chatID, language.Chinese)
	}

	// Clears the button's loading spinner.
	if _, err := h.Bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Println("failed to answer callback:", err)
	}
}

// splitPreset parses "<n>_<id>" preset callback data.
func splitPreset(data string) (amount int, id string, ok bool) {
	parts := strings.SplitN(data, "_", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return 0, "", false
	}
	return n, parts[1], true
}

func (h *Handler) offerDoseAmounts(chatID int64, reminderID string) {
	text := h.texts()
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range dosePresets {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strconv.Itoa(n), fmt.Sprintf("dose_%d_%s", n, reminderID)))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(row...),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(text.CustomAmount, "dose_custom_"+reminderID),
		),
	)
	h.replyWithKeyboard(chatID, text.SelectDose, kb)
}

func (h *Handler) offerRefillAmounts(chatID int64, medicineID string) {
	text := h.texts()
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range refillPresets {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strconv.Itoa(n), fmt.Sprintf("refill_%d_%s", n, medicineID)))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(row...),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(text.CustomAmount, "refill_custom_"+medicineID),
		),
	)
	h.replyWithKeyboard(chatID, text.EnterRefill, kb)
}

func (h *Handler) snooze(chatID int64, reminderID string) {
	text := h.texts()
	if err := h.Svc.Snooze(reminderID); err != nil {
		if errors.Is(err, reminder.ErrReminderNotFound) {
			h.reply(chatID, text.ReminderMissing)
			return
		}
		log.Println("failed to snooze reminder:", err)
		h.reply(chatID, text.ActionFailed)
		return
	}
	h.reply(chatID, text.Snoozed)
}

func (h *Handler) deleteMedicine(chatID int64, medicineID string) {
	text := h.texts()
	found := false
	err := h.Svc.Update(func(d *models.AppData) {
		if _, ok := d.Medicines[medicineID]; ok {
			delete(d.Medicines, medicineID)
			found = true
		}
	})
	if !found {
		h.reply(chatID, text.MedicineNotFound)
		return
	}
	if err != nil {
		log.Println("failed to save deletion:", err)
		h.reply(chatID, text.ActionFailed)
		return
	}
	h.reply(chatID, text.MedicineDeleted)
}

func (h *Handler) setLanguage(chatID int64, tag language.Tag) {
	err := h.Svc.Update(func(d *models.AppData) {
		d.UserSettings.Language = tag.String()
	})
	if err != nil {
		log.Println("failed to save language:", err)
		h.reply(chatID, h.texts().ActionFailed)
		return
	}
	h.reply(chatID, h.texts().LanguageChanged)
}
