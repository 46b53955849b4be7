package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicine-reminder/internal/models"
	"medicine-reminder/internal/retry"
)

func unconfirmed(svc *Service) []*models.PendingReminder {
	var out []*models.PendingReminder
	for _, r := range svc.Snapshot().PendingReminders {
		if !r.IsConfirmed {
			out = append(out, r)
		}
	}
	return out
}

func TestScanCreatesReminderAtScheduledTime(t *testing.T) {
	svc, sender, _, _ := newTestService(t, localTime(8, 0))
	m := addMedicine(t, svc, "Vitamin C", 30, "08:00")

	require.NoError(t, svc.scanDueMedicines(context.Background()))

	pending := unconfirmed(svc)
	require.Len(t, pending, 1)
	r := pending[0]
	assert.Equal(t, m.ID, r.MedicineID)
	assert.Equal(t, "Vitamin C", r.MedicineName)
	assert.Equal(t, 1, r.ReminderCount)
	assert.Equal(t, localTime(8, 0), r.ScheduledTime)

	sent, escalated := sender.counts()
	assert.Equal(t, 1, sent)
	assert.Zero(t, escalated)
}

func TestScanIsIdempotentWithinTick(t *testing.T) {
	svc, sender, _, _ := newTestService(t, localTime(8, 0))
	addMedicine(t, svc, "Vitamin C", 30, "08:00")

	require.NoError(t, svc.scanDueMedicines(context.Background()))
	require.NoError(t, svc.scanDueMedicines(context.Background()))

	assert.Len(t, unconfirmed(svc), 1)
	sent, _ := sender.counts()
	assert.Equal(t, 1, sent)
}

func TestScanSkipsInactiveAndEmpty(t *testing.T) {
	svc, sender, _, _ := newTestService(t, localTime(8, 0))
	inactive := addMedicine(t, svc, "Paused", 30, "08:00")
	require.NoError(t, svc.Update(func(d *models.AppData) {
		d.Medicines[inactive.ID].SetActive(false)
	}))
	addMedicine(t, svc, "Empty", 0, "08:00")

	require.NoError(t, svc.scanDueMedicines(context.Background()))

	assert.Empty(t, unconfirmed(svc))
	sent, _ := sender.counts()
	assert.Zero(t, sent)
}

func TestScanOutsideWindowDoesNothing(t *testing.T) {
	svc, sender, _, _ := newTestService(t, localTime(8, 2))
	addMedicine(t, svc, "Vitamin C", 30, "08:00")

	require.NoError(t, svc.scanDueMedicines(context.Background()))

	assert.Empty(t, unconfirmed(svc))
	sent, _ := sender.counts()
	assert.Zero(t, sent)
}

func TestScanPersistsDespiteDeliveryFailure(t *testing.T) {
	svc, sender, _, store := newTestService(t, localTime(8, 0))
	addMedicine(t, svc, "Vitamin C", 30, "08:00")
	sender.fail = true

	require.NoError(t, svc.scanDueMedicines(context.Background()))

	// Delivery is best effort; the authoritative state records the
	// occurrence regardless and escalation picks it up later.
	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, persisted.PendingReminders, 1)
}

func TestEscalationLadder(t *testing.T) {
	svc, sender, clock, _ := newTestService(t, localTime(8, 0))
	addMedicine(t, svc, "Vitamin C", 30, "08:00")
	require.NoError(t, svc.scanDueMedicines(context.Background()))

	// 4 minutes in: below the first 5-minute threshold.
	clock.Advance(4 * time.Minute)
	require.NoError(t, svc.escalateOverdue(context.Background()))
	_, escalated := sender.counts()
	assert.Zero(t, escalated)

	// 6 minutes in: first escalation fires.
	clock.Advance(2 * time.Minute)
	require.NoError(t, svc.escalateOverdue(context.Background()))
	_, escalated = sender.counts()
	assert.Equal(t, 1, escalated)

	r := unconfirmed(svc)[0]
	assert.Equal(t, 2, r.ReminderCount)
	assert.Equal(t, localTime(8, 6), r.LastReminderTime)

	// Second interval is 10 minutes: nothing at +9, fires at +10.
	clock.Advance(9 * time.Minute)
	require.NoError(t, svc.escalateOverdue(context.Background()))
	_, escalated = sender.counts()
	assert.Equal(t, 1, escalated)

	clock.Advance(time.Minute)
	require.NoError(t, svc.escalateOverdue(context.Background()))
	_, escalated = sender.counts()
	assert.Equal(t, 2, escalated)
	assert.Equal(t, 3, unconfirmed(svc)[0].ReminderCount)
}

func TestEscalationSkipsConfirmed(t *testing.T) {
	svc, sender, clock, _ := newTestService(t, localTime(8, 0))
	m := addMedicine(t, svc, "Vitamin C", 30, "08:00")
	r := addReminder(t, svc, m, localTime(8, 0))
	_, err := svc.ConfirmDose(r.ID, 1)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	require.NoError(t, svc.escalateOverdue(context.Background()))
	_, escalated := sender.counts()
	assert.Zero(t, escalated)
}

func TestSnoozeDefersEscalation(t *testing.T) {
	svc, sender, clock, _ := newTestService(t, localTime(8, 0))
	m := addMedicine(t, svc, "Vitamin C", 30, "08:00")
	r := addReminder(t, svc, m, localTime(8, 0))

	clock.Advance(4 * time.Minute)
	require.NoError(t, svc.Snooze(r.ID))

	// 8:08 is past the original 8:05 threshold but only 4 minutes
	// after the snooze.
	clock.Advance(4 * time.Minute)
	require.NoError(t, svc.escalateOverdue(context.Background()))
	_, escalated := sender.counts()
	assert.Zero(t, escalated)

	clock.Advance(time.Minute)
	require.NoError(t, svc.escalateOverdue(context.Background()))
	_, escalated = sender.counts()
	assert.Equal(t, 1, escalated)
	assert.Equal(t, 2, unconfirmed(svc)[0].ReminderCount)
}

func TestEscalationIntervalWidens(t *testing.T) {
	assert.Equal(t, 5*time.Minute, escalationInterval(1))
	assert.Equal(t, 10*time.Minute, escalationInterval(2))
	assert.Equal(t, 15*time.Minute, escalationInterval(3))
	assert.Equal(t, 15*time.Minute, escalationInterval(4))
	assert.Equal(t, 15*time.Minute, escalationInterval(99))
}

func TestWithinWindow(t *testing.T) {
	tests := []struct {
		now  time.Time
		at   string
		want bool
	}{
		{localTime(8, 0), "08:00", true},
		{localTime(7, 59), "08:00", true},
		{localTime(8, 1), "08:00", true},
		{localTime(8, 2), "08:00", false},
		{localTime(7, 58), "08:00", false},
		{time.Date(2025, 6, 1, 8, 1, 30, 0, time.Local), "08:00", false},
		{localTime(8, 0), "8:00", true},
		{localTime(8, 0), "bogus", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withinWindow(tt.now, tt.at), "now=%v at=%s", tt.now, tt.at)
	}
}

func TestTickSkipsWhileBreakerOpen(t *testing.T) {
	svc, sender, clock, _ := newTestService(t, localTime(8, 0))
	addMedicine(t, svc, "Vitamin C", 30, "08:00")

	svc.breaker = retry.NewBreaker(1, time.Minute, clock)
	require.True(t, svc.breaker.Failure())

	svc.Tick(context.Background())
	sent, _ := sender.counts()
	assert.Zero(t, sent)

	// 08:01 is past the cooldown and still inside the match window.
	clock.Advance(time.Minute)
	svc.Tick(context.Background())
	sent, _ = sender.counts()
	assert.Equal(t, 1, sent)
}

func TestTickRunsBothPhases(t *testing.T) {
	svc, sender, clock, _ := newTestService(t, localTime(8, 0))
	addMedicine(t, svc, "Vitamin C", 30, "08:00")

	svc.Tick(context.Background())
	sent, escalated := sender.counts()
	assert.Equal(t, 1, sent)
	assert.Zero(t, escalated)

	clock.Advance(6 * time.Minute)
	svc.Tick(context.Background())
	_, escalated = sender.counts()
	assert.Equal(t, 1, escalated)
}

func TestRunPhaseReportsCancellation(t *testing.T) {
	svc, _, _, _ := newTestService(t, localTime(8, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.runPhase(ctx, "blocked", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunPhasePassesErrorsThrough(t *testing.T) {
	svc, _, _, _ := newTestService(t, localTime(8, 0))
	boom := errors.New("boom")
	err := svc.runPhase(context.Background(), "failing", func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
