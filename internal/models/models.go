package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Medicine is a tracked drug with remaining stock and daily reminder times.
type Medicine struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Quantity      int       `json:"quantity"`
	ReminderTimes []string  `json:"reminder_times"` // "HH:MM"
	CreatedAt     time.Time `json:"created_at"`
	IsActive      bool      `json:"is_active"`
}

func NewMedicine(name string, quantity int, reminderTimes []string) *Medicine {
	return &Medicine{
		ID:            uuid.NewString(),
		Name:          name,
		Quantity:      quantity,
		ReminderTimes: reminderTimes,
		CreatedAt:     time.Now(),
		IsActive:      true,
	}
}

// TakeDose reduces stock by amount. Returns false and leaves the
// quantity untouched when amount exceeds what is left.
func (m *Medicine) TakeDose(amount int) bool {
	if amount > m.Quantity {
		return false
	}
	m.Quantity -= amount
	return true
}

func (m *Medicine) AddQuantity(amount int) {
	m.Quantity += amount
}

func (m *Medicine) SetActive(active bool) {
	m.IsActive = active
}

// PendingReminder is an open reminder occurrence awaiting confirmation.
// MedicineName is a snapshot taken at creation so the reminder stays
// readable even if the medicine is later deleted.
type PendingReminder struct {
	ID               string    `json:"id"`
	MedicineID       string    `json:"medicine_id"`
	MedicineName     string    `json:"medicine_name"`
	ScheduledTime    time.Time `json:"scheduled_time"`
	LastReminderTime time.Time `json:"last_reminder_time"`
	ReminderCount    int       `json:"reminder_count"`
	IsConfirmed      bool      `json:"is_confirmed"`
}

func NewPendingReminder(medicineID, medicineName string, scheduledTime time.Time) *PendingReminder {
	return &PendingReminder{
		ID:               uuid.NewString(),
		MedicineID:       medicineID,
		MedicineName:     medicineName,
		ScheduledTime:    scheduledTime,
		LastReminderTime: scheduledTime,
		ReminderCount:    1,
	}
}

// IncrementReminder records a redelivery: count goes up, the
// last-delivery timestamp moves to now.
func (r *PendingReminder) IncrementReminder(now time.Time) {
	r.ReminderCount++
	r.LastReminderTime = now
}

// Snooze defers the next escalation without counting as a delivery.
func (r *PendingReminder) Snooze(now time.Time) {
	r.LastReminderTime = now
}

func (r *PendingReminder) Confirm() {
	r.IsConfirmed = true
}

// UserSettings holds per-user preferences.
type UserSettings struct {
	Language string `json:"language"` // BCP 47 tag: "en", "zh"
}

func DefaultSettings() UserSettings {
	return UserSettings{Language: language.English.String()}
}

// Locale parses the stored language tag, falling back to English on
// anything unreadable (covers files written before the field existed).
func (s UserSettings) Locale() language.Tag {
	tag, err := language.Parse(s.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// AppData is the single persisted aggregate. One instance lives in
// memory for the process lifetime, guarded by the reminder service.
type AppData struct {
	Medicines        map[string]*Medicine        `json:"medicines"`
	PendingReminders map[string]*PendingReminder `json:"pendingReminders"`
	UserSettings     UserSettings                `json:"userSettings"`
}

func NewAppData() *AppData {
	return &AppData{
		Medicines:        make(map[string]*Medicine),
		PendingReminders: make(map[string]*PendingReminder),
		UserSettings:     DefaultSettings(),
	}
}

// Clone returns a deep copy, safe to hand out without holding any lock.
func (d *AppData) Clone() *AppData {
	c := NewAppData()
	c.UserSettings = d.UserSettings
	for id, m := range d.Medicines {
		mc := *m
		mc.ReminderTimes = append([]string(nil), m.ReminderTimes...)
		c.Medicines[id] = &mc
	}
	for id, r := range d.PendingReminders {
		rc := *r
		c.PendingReminders[id] = &rc
	}
	return c
}

// HasUnconfirmedReminder reports whether an unconfirmed pending
// reminder already exists for the medicine. The scan uses this to
// dedupe occurrences.
func (d *AppData) HasUnconfirmedReminder(medicineID string) bool {
	for _, r := range d.PendingReminders {
		if r.MedicineID == medicineID && !r.IsConfirmed {
			return true
		}
	}
	return false
}
