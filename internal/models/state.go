package models

// ChatState enumerates the steps of the per-chat dialogue.
type ChatState int

const (
	StateIdle ChatState = iota
	StateAwaitingMedicineName
	StateAwaitingQuantity
	StateAwaitingReminderTimes
	StateAwaitingDoseAmount
	StateAwaitingRefillAmount
)

// Conversation is the transient dialogue record for one chat. Which
// payload fields are meaningful depends on State:
//
//	StateAwaitingQuantity       MedicineName
//	StateAwaitingReminderTimes  MedicineName, Quantity
//	StateAwaitingDoseAmount     ReminderID
//	StateAwaitingRefillAmount   MedicineID
//
// It lives only in process memory; a restart drops every chat back to
// idle without touching persisted data.
type Conversation struct {
	State        ChatState
	MedicineName string
	Quantity     int
	ReminderID   string
	MedicineID   string
}
