package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/text/language"

	"medicine-reminder/internal/models"
)

const (
	tickInterval = time.Minute

	// A reminder fires when the wall clock is within this window of a
	// configured time, compared on time-of-day only.
	matchWindow = time.Minute

	phaseTimeout = 30 * time.Second

	deliveryAttempts = 3
	deliveryTimeout  = 10 * time.Second

	// Consecutive failed ticks before the loop backs off, and for how
	// long it stays quiet.
	breakerThreshold = 10
	breakerCooldown  = 5 * time.Minute
)

// Run registers the per-minute tick and blocks until ctx is cancelled.
// It is the only background task in the process; nothing else may start
// a second loop over the same service.
func (s *Service) Run(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithClock(s.clock))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(tickInterval),
		gocron.NewTask(func() { s.Tick(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register tick job: %w", err)
	}

	sched.Start()
	<-ctx.Done()
	return sched.Shutdown()
}

// Tick runs one scheduling pass: create reminders that just came due,
// then escalate the ones still unconfirmed. Each phase is bounded by
// its own timeout; repeated failures trip the breaker, which skips
// whole ticks until its cooldown expires so the loop never hot-loops
// against a broken collaborator.
func (s *Service) Tick(ctx context.Context) {
	if s.breaker.Open() {
		return
	}

	failed := false
	if err := s.runPhase(ctx, "reminder scan", s.scanDueMedicines); err != nil {
		log.Println("reminder scan failed:", err)
		failed = true
	}
	if err := s.runPhase(ctx, "escalation scan", s.escalateOverdue); err != nil {
		log.Println("escalation scan failed:", err)
		failed = true
	}

	if !failed {
		s.breaker.Success()
		return
	}
	if s.breaker.Failure() {
		log.Printf("too many consecutive failures, pausing reminders for %s", breakerCooldown)
	}
}

// runPhase bounds fn by the phase timeout. The phase goroutine observes
// cancellation through its context; a phase that overruns is reported
// as failed even though its goroutine may still be draining.
func (s *Service) runPhase(ctx context.Context, name string, fn func(context.Context) error) error {
	phaseCtx, cancel := context.WithTimeout(ctx, phaseTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(phaseCtx) }()

	select {
	case err := <-done:
		return err
	case <-phaseCtx.Done():
		return fmt.Errorf("%s: %w", name, phaseCtx.Err())
	}
}

// scanDueMedicines creates a pending reminder for every active,
// in-stock medicine whose configured time is inside the match window
// and which has no unconfirmed reminder yet. Detection happens under
// the lock, delivery outside it, insertion under the lock again; a
// mutation squeezing between detection and insertion cannot retract an
// already-queued reminder, which is an accepted trade for not holding
// the lock across deliveries.
func (s *Service) scanDueMedicines(ctx context.Context) error {
	now := s.clock.Now()

	s.mu.Lock()
	var due []*models.PendingReminder
	for _, m := range s.data.Medicines {
		if !m.IsActive || m.Quantity == 0 {
			continue
		}
		for _, at := range m.ReminderTimes {
			if !withinWindow(now, at) {
				continue
			}
			if s.data.HasUnconfirmedReminder(m.ID) {
				continue
			}
			due = append(due, models.NewPendingReminder(m.ID, m.Name, occurrenceTime(now, at)))
		}
	}
	locale := s.data.UserSettings.Locale()
	s.mu.Unlock()

	for _, r := range due {
		s.deliver(ctx, *r, locale)

		s.mu.Lock()
		s.data.PendingReminders[r.ID] = r
		err := s.saveLocked()
		s.mu.Unlock()
		if err != nil {
			log.Println("failed to persist new reminder:", err)
		}
	}
	return nil
}

// escalateOverdue redelivers every unconfirmed reminder whose elapsed
// time since last delivery has reached its count-dependent interval.
// There is no retry cap: confirmation, deactivation or deletion are the
// only ways to stop an escalating reminder.
func (s *Service) escalateOverdue(ctx context.Context) error {
	now := s.clock.Now()

	s.mu.Lock()
	var overdue []models.PendingReminder
	for _, r := range s.data.PendingReminders {
		if r.IsConfirmed {
			continue
		}
		if now.Sub(r.LastReminderTime) >= escalationInterval(r.ReminderCount) {
			r.IncrementReminder(now)
			overdue = append(overdue, *r)
		}
	}
	locale := s.data.UserSettings.Locale()
	var saveErr error
	if len(overdue) > 0 {
		saveErr = s.saveLocked()
	}
	s.mu.Unlock()
	if saveErr != nil {
		log.Println("failed to persist escalations:", saveErr)
	}

	for _, r := range overdue {
		s.deliver(ctx, r, locale)
	}
	return nil
}

// deliver sends one message through the retry policy. Exhausted
// retries are logged and swallowed: delivery is best effort and never
// affects the authoritative state.
func (s *Service) deliver(ctx context.Context, r models.PendingReminder, locale language.Tag) {
	err := s.delivery.Do(ctx, func(ctx context.Context) error {
		if r.ReminderCount == 1 {
			return s.sender.SendReminder(ctx, r, locale)
		}
		return s.sender.SendEscalation(ctx, r, locale)
	})
	if err != nil {
		log.Printf("giving up on delivering reminder %s: %v", r.ID, err)
	}
}

// escalationInterval widens with the delivery count: 5 minutes after
// the first delivery, 10 after the second, 15 from then on.
func escalationInterval(count int) time.Duration {
	switch count {
	case 1:
		return 5 * time.Minute
	case 2:
		return 10 * time.Minute
	default:
		return 15 * time.Minute
	}
}

// withinWindow compares now against an "HH:MM" clock time on
// time-of-day only, ignoring the date.
func withinWindow(now time.Time, at string) bool {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return false
	}
	nowSec := now.Hour()*3600 + now.Minute()*60 + now.Second()
	atSec := t.Hour()*3600 + t.Minute()*60
	diff := nowSec - atSec
	if diff < 0 {
		diff = -diff
	}
	return time.Duration(diff)*time.Second <= matchWindow
}

// occurrenceTime anchors an "HH:MM" clock time to today's date.
func occurrenceTime(now time.Time, at string) time.Time {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return now
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
}
