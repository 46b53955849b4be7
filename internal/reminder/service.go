// Package reminder owns the application state and the temporal logic
// around it: the per-minute reminder scan, the escalation ladder, and
// the guarded mutation entry points every other component goes through.
package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/text/language"

	"medicine-reminder/internal/models"
	"medicine-reminder/internal/retry"
	"medicine-reminder/internal/storage"
)

// Sender delivers a single reminder or escalation message. It is
// stateless per call; the service owns the retry policy around it.
type Sender interface {
	SendReminder(ctx context.Context, r models.PendingReminder, locale language.Tag) error
	SendEscalation(ctx context.Context, r models.PendingReminder, locale language.Tag) error
}

// Service holds the one in-memory AppData instance behind a single
// mutex. Every read and write, from the tick loop and from every chat
// event, serializes through it.
type Service struct {
	store  *storage.Store
	sender Sender
	clock  clockwork.Clock

	mu   sync.Mutex
	data *models.AppData

	delivery retry.Policy
	breaker  *retry.Breaker
}

// ConfirmResult is the success payload of ConfirmDose.
type ConfirmResult struct {
	MedicineName string
	Remaining    int
}

func NewService(store *storage.Store, sender Sender, clock clockwork.Clock) (*Service, error) {
	data, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Service{
		store:  store,
		sender: sender,
		clock:  clock,
		data:   data,
		delivery: retry.Policy{
			Attempts: deliveryAttempts,
			Timeout:  deliveryTimeout,
			Backoff:  retry.Exponential(time.Second),
		},
		breaker: retry.NewBreaker(breakerThreshold, breakerCooldown, clock),
	}, nil
}

// Snapshot returns a deep copy of the current state, safe for
// concurrent callers to read and discard.
func (s *Service) Snapshot() *models.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Locale returns the currently selected display language.
func (s *Service) Locale() language.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UserSettings.Locale()
}

// Update runs fn on the state under the lock and persists the result.
// The in-memory change is kept even when the save fails; disk catches
// up on the next successful save.
func (s *Service) Update(fn func(*models.AppData)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
	return s.saveLocked()
}

// ConfirmDose marks the reminder confirmed and decrements the
// medicine's stock. Confirmation and the stock decrement are
// independent outcomes: a dose exceeding the remaining quantity still
// leaves the reminder confirmed, and the state is persisted either way.
func (s *Service) ConfirmDose(reminderID string, amount int) (ConfirmResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data.PendingReminders[reminderID]
	if !ok {
		return ConfirmResult{}, ErrReminderNotFound
	}
	r.Confirm()

	var res ConfirmResult
	var domainErr error
	m, ok := s.data.Medicines[r.MedicineID]
	switch {
	case !ok:
		// Reminder outlived its medicine.
		domainErr = ErrMedicineNotFound
	case !m.TakeDose(amount):
		domainErr = &InsufficientQuantityError{Remaining: m.Quantity}
	default:
		res = ConfirmResult{MedicineName: m.Name, Remaining: m.Quantity}
	}

	if err := s.saveLocked(); err != nil {
		if domainErr == nil {
			return res, err
		}
		log.Println("failed to persist confirmation:", err)
	}
	return res, domainErr
}

// Snooze resets the reminder's last-delivery timestamp to now without
// touching the delivery count, pushing the next escalation out by the
// count's full interval.
func (s *Service) Snooze(reminderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data.PendingReminders[reminderID]
	if !ok {
		return ErrReminderNotFound
	}
	r.Snooze(s.clock.Now())
	return s.saveLocked()
}

// saveLocked persists the state. Callers hold s.mu.
func (s *Service) saveLocked() error {
	if err := s.store.Save(s.data); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}
