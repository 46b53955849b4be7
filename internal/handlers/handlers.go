package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"medicine-reminder/internal/i18n"
	"medicine-reminder/internal/models"
	"medicine-reminder/internal/reminder"
)

// Handler routes Telegram updates into the reminder service and drives
// the per-chat dialogue. Conversation state lives only here, in memory;
// persisted data is reached exclusively through the service.
type Handler struct {
	Bot *tgbotapi.BotAPI
	Svc *reminder.Service

	mu    sync.Mutex
	convs map[int64]models.Conversation
}

func NewHandler(bot *tgbotapi.BotAPI, svc *reminder.Service) *Handler {
	return &Handler{
		Bot:   bot,
		Svc:   svc,
		convs: make(map[int64]models.Conversation),
	}
}

func (h *Handler) HandleMessage(msg *tgbotapi.Message) {
	if msg.IsCommand() {
		h.HandleCommand(msg.Chat.ID, msg.Command())
		return
	}
	h.HandleText(msg)
}

// HandleText feeds free-text input into the current dialogue step.
// Invalid input re-prompts without advancing.
func (h *Handler) HandleText(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	conv := h.conversation(chatID)
	text := h.texts()

	switch conv.State {
	case models.StateIdle:
		// Nothing in flight; stray text is ignored.

	case models.StateAwaitingMedicineName:
		name := strings.TrimSpace(msg.Text)
		if name == "" {
			h.reply(chatID, text.EnterName)
			return
		}
		h.setConversation(chatID, models.Conversation{
			State:        models.StateAwaitingQuantity,
			MedicineName: name,
		})
		h.reply(chatID, text.EnterQuantity)

	case models.StateAwaitingQuantity:
		quantity, err := parsePositiveInt(msg.Text)
		if err != nil {
			h.reply(chatID, text.InvalidQuantity)
			return
		}
		conv.State = models.StateAwaitingReminderTimes
		conv.Quantity = quantity
		h.setConversation(chatID, conv)
		h.reply(chatID, text.EnterTimes)

	case models.StateAwaitingReminderTimes:
		times, err := parseReminderTimes(msg.Text)
		if err != nil {
			h.reply(chatID, text.InvalidTime)
			return
		}
		h.resetConversation(chatID)
		med := models.NewMedicine(conv.MedicineName, conv.Quantity, times)
		if err := h.Svc.Update(func(d *models.AppData) {
			d.Medicines[med.ID] = med
		}); err != nil {
			log.Println("failed to save new medicine:", err)
			h.reply(chatID, text.ActionFailed)
			return
		}
		h.reply(chatID, fmt.Sprintf("%s\n\n💊 %s\n📦 %d\n⏰ %s",
			text.MedicineAdded, med.Name, med.Quantity, strings.Join(times, ", ")))

	case models.StateAwaitingDoseAmount:
		amount, err := parsePositiveInt(msg.Text)
		if err != nil {
			h.reply(chatID, text.InvalidQuantity)
			return
		}
		h.resetConversation(chatID)
		h.confirmDose(chatID, conv.ReminderID, amount)

	case models.StateAwaitingRefillAmount:
		amount, err := parsePositiveInt(msg.Text)
		if err != nil {
			h.reply(chatID, text.InvalidQuantity)
			return
		}
		h.resetConversation(chatID)
		h.refill(chatID, conv.MedicineID, amount)
	}
}

// confirmDose runs the confirmation through the service and reports
// the outcome in the user's language.
func (h *Handler) confirmDose(chatID int64, reminderID string, amount int) {
	text := h.texts()
	res, err := h.Svc.ConfirmDose(reminderID, amount)
	var insufficient *reminder.InsufficientQuantityError
	switch {
	case err == nil:
		h.reply(chatID, i18n.FormatDoseConfirmed(h.Svc.Locale(), res.MedicineName, amount, res.Remaining))
	case errors.As(err, &insufficient):
		h.reply(chatID, fmt.Sprintf(text.Insufficient, insufficient.Remaining))
	case errors.Is(err, reminder.ErrReminderNotFound):
		h.reply(chatID, text.ReminderMissing)
	case errors.Is(err, reminder.ErrMedicineNotFound):
		h.reply(chatID, text.MedicineNotFound)
	default:
		log.Println("failed to confirm dose:", err)
		h.reply(chatID, text.ActionFailed)
	}
}

// refill adds stock to a medicine through the service.
func (h *Handler) refill(chatID int64, medicineID string, amount int) {
	text := h.texts()
	found := false
	err := h.Svc.Update(func(d *models.AppData) {
		if m, ok := d.Medicines[medicineID]; ok {
			m.AddQuantity(amount)
			found = true
		}
	})
	if !found {
		h.reply(chatID, text.MedicineNotFound)
		return
	}
	if err != nil {
		log.Println("failed to save refill:", err)
		h.reply(chatID, text.ActionFailed)
		return
	}
	h.reply(chatID, fmt.Sprintf(text.Refilled, amount))
}

func (h *Handler) conversation(chatID int64) models.Conversation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.convs[chatID]
}

func (h *Handler) setConversation(chatID int64, c models.Conversation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.convs[chatID] = c
}

func (h *Handler) resetConversation(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.convs, chatID)
}

func (h *Handler) texts() *i18n.Text {
	return i18n.For(h.Svc.Locale())
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := h.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Println("failed to send reply:", err)
	}
}
