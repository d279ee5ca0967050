package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dina02092005/crm-sub000/internal/tasks"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/google/uuid"
)

type fakeRecord struct {
	item tasks.DueReminder
}

type fakeStore struct {
	records  map[uuid.UUID]*fakeRecord
	failMark bool
	failDue  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[uuid.UUID]*fakeRecord{}}
}

func (s *fakeStore) add(remindAt time.Time, assignee *uuid.UUID) uuid.UUID {
	id := uuid.New()
	s.records[id] = &fakeRecord{item: tasks.DueReminder{
		ReminderID: id,
		TaskID:     uuid.New(),
		TaskTitle:  "Call back",
		TaskDueAt:  remindAt.Add(time.Hour),
		RemindAt:   remindAt,
		LeadID:     uuid.New(),
		LeadName:   "Ada Lovelace",
		AssigneeID: assignee,
	}}
	return id
}

func (s *fakeStore) DueReminders(ctx context.Context, horizon10m, horizon1h, horizon24h time.Time) ([]tasks.DueReminder, error) {
	if s.failDue {
		return nil, errors.New("connection refused")
	}
	out := make([]tasks.DueReminder, 0)
	for _, rec := range s.records {
		it := rec.item
		due := (!it.RemindAt.After(horizon10m) && !it.Sent10m) ||
			(!it.RemindAt.After(horizon1h) && !it.Sent1h) ||
			(!it.RemindAt.After(horizon24h) && !it.Sent24h)
		if due {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkWindowSent(ctx context.Context, reminderID uuid.UUID, window tasks.Window) (bool, error) {
	if s.failMark {
		return false, errors.New("connection refused")
	}
	rec, ok := s.records[reminderID]
	if !ok {
		return false, nil
	}
	switch window {
	case tasks.Window10m:
		if rec.item.Sent10m {
			return false, nil
		}
		rec.item.Sent10m = true
	case tasks.Window1h:
		if rec.item.Sent1h {
			return false, nil
		}
		rec.item.Sent1h = true
	case tasks.Window24h:
		if rec.item.Sent24h {
			return false, nil
		}
		rec.item.Sent24h = true
	default:
		return false, tasks.ErrReminderNotFound
	}
	return true, nil
}

type delivery struct {
	employeeID uuid.UUID
	note       Note
}

type fakeNotifier struct {
	deliveries []delivery
	fail       bool
}

func (n *fakeNotifier) RemindEmployee(ctx context.Context, employeeID uuid.UUID, note Note) error {
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.deliveries = append(n.deliveries, delivery{employeeID: employeeID, note: note})
	return nil
}

func newTestSweep(store *fakeStore, notifier *fakeNotifier, now time.Time) *Sweep {
	s := NewSweep(store, notifier, logger.New("development"))
	s.now = func() time.Time { return now }
	return s
}

func TestSweepPicksMostUrgentWindowOnly(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	notifier := &fakeNotifier{}
	assignee := uuid.New()

	// Qualifies for all three windows at once; only the 10m one may fire.
	id := store.add(now.Add(5*time.Minute), &assignee)

	sum, err := newTestSweep(store, notifier, now).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Sent10m != 1 || sum.Sent1h != 0 || sum.Sent24h != 0 {
		t.Fatalf("expected only the 10m window, got %+v", sum)
	}
	rec := store.records[id]
	if !rec.item.Sent10m || rec.item.Sent1h || rec.item.Sent24h {
		t.Fatalf("expected only sent_10m set, got %+v", rec.item)
	}
	if len(notifier.deliveries) != 1 {
		t.Fatalf("expected one delivery, got %d", len(notifier.deliveries))
	}
	if notifier.deliveries[0].note.Window != tasks.Window10m {
		t.Fatalf("expected 10m note, got %s", notifier.deliveries[0].note.Window)
	}
}

func TestSweepFlipsOneFlagPerPass(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	notifier := &fakeNotifier{}
	assignee := uuid.New()

	// Already past remindAt: every window is simultaneously due, so
	// successive passes walk through 10m, then 1h, then 24h, one flag each.
	id := store.add(now.Add(-time.Minute), &assignee)
	sweep := newTestSweep(store, notifier, now)

	want := []tasks.Window{tasks.Window10m, tasks.Window1h, tasks.Window24h}
	for i, w := range want {
		sum, err := sweep.Run(context.Background())
		if err != nil {
			t.Fatalf("Run %d: %v", i+1, err)
		}
		if total := sum.Sent10m + sum.Sent1h + sum.Sent24h; total != 1 {
			t.Fatalf("pass %d: expected exactly one flag flip, got %+v", i+1, sum)
		}
		last := notifier.deliveries[len(notifier.deliveries)-1]
		if last.note.Window != w {
			t.Fatalf("pass %d: expected window %s, got %s", i+1, w, last.note.Window)
		}
	}

	sum, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("fourth Run: %v", err)
	}
	if sum.Processed != 0 || len(notifier.deliveries) != 3 {
		t.Fatalf("expected nothing left after all windows fired, got %+v", sum)
	}
	rec := store.records[id]
	if !rec.item.Sent10m || !rec.item.Sent1h || !rec.item.Sent24h {
		t.Fatalf("expected all flags set, got %+v", rec.item)
	}
}

func TestSweepWindowsFireFromCoarseToFine(t *testing.T) {
	remindAt := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	notifier := &fakeNotifier{}
	assignee := uuid.New()
	id := store.add(remindAt, &assignee)

	steps := []struct {
		now  time.Time
		want tasks.Window
	}{
		{remindAt.Add(-20 * time.Hour), tasks.Window24h},
		{remindAt.Add(-30 * time.Minute), tasks.Window1h},
		{remindAt.Add(-5 * time.Minute), tasks.Window10m},
	}

	for _, step := range steps {
		sum, err := newTestSweep(store, notifier, step.now).Run(context.Background())
		if err != nil {
			t.Fatalf("Run at %s: %v", step.now, err)
		}
		total := sum.Sent10m + sum.Sent1h + sum.Sent24h
		if total != 1 {
			t.Fatalf("expected exactly one window at %s, got %+v", step.now, sum)
		}
		last := notifier.deliveries[len(notifier.deliveries)-1]
		if last.note.Window != step.want {
			t.Fatalf("at %s expected window %s, got %s", step.now, step.want, last.note.Window)
		}
	}

	rec := store.records[id]
	if !rec.item.Sent24h || !rec.item.Sent1h || !rec.item.Sent10m {
		t.Fatalf("expected all windows sent after three passes, got %+v", rec.item)
	}
}

func TestSweepSkipsRemindersWithoutAssignee(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	notifier := &fakeNotifier{}
	id := store.add(now.Add(5*time.Minute), nil)

	sum, err := newTestSweep(store, notifier, now).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Skipped != 1 || sum.Errors != 0 {
		t.Fatalf("expected a silent skip, got %+v", sum)
	}
	rec := store.records[id]
	if rec.item.Sent10m {
		t.Fatal("flag must stay unset so the reminder fires once assigned")
	}
	if len(notifier.deliveries) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(notifier.deliveries))
	}
}

func TestSweepDeliveryFailureDoesNotRetryWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	notifier := &fakeNotifier{fail: true}
	assignee := uuid.New()
	id := store.add(now.Add(5*time.Minute), &assignee)

	sum, err := newTestSweep(store, notifier, now).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Errors != 1 || sum.Sent10m != 1 {
		t.Fatalf("expected flipped flag with a counted error, got %+v", sum)
	}
	if !store.records[id].item.Sent10m {
		t.Fatal("flag must be flipped before delivery is attempted")
	}

	// The 10m window stays consumed even though its delivery failed: the
	// next pass moves on to the 1h window instead of retrying.
	notifier.fail = false
	sum, err = newTestSweep(store, notifier, now).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if sum.Sent10m != 0 || sum.Sent1h != 1 {
		t.Fatalf("expected the 1h window next, got %+v", sum)
	}
	if notifier.deliveries[0].note.Window != tasks.Window1h {
		t.Fatalf("expected 1h delivery, got %s", notifier.deliveries[0].note.Window)
	}
}

func TestSweepQueryFailureAborts(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.failDue = true

	_, err := newTestSweep(store, &fakeNotifier{}, now).Run(context.Background())
	if err == nil {
		t.Fatal("expected the sweep to surface the query error")
	}
}

func TestSweepLostRaceCountsAsSkip(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	notifier := &fakeNotifier{}
	assignee := uuid.New()
	id := store.add(now.Add(5*time.Minute), &assignee)

	// Another sweep flipped the flag after our query snapshot.
	rec := store.records[id]
	snapshot := rec.item
	rec.item.Sent10m = true
	store.records[id] = rec

	// Hand the stale snapshot through a store whose query returns it as-is.
	stale := &staleStore{inner: store, snapshot: snapshot}
	sum, err := newTestSweep(stale, notifier, now).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Skipped != 1 || len(notifier.deliveries) != 0 {
		t.Fatalf("expected the lost race to be skipped, got %+v", sum)
	}
}

type staleStore struct {
	inner    *fakeStore
	snapshot tasks.DueReminder
}

func (s *staleStore) DueReminders(ctx context.Context, h10, h1, h24 time.Time) ([]tasks.DueReminder, error) {
	return []tasks.DueReminder{s.snapshot}, nil
}

func (s *staleStore) MarkWindowSent(ctx context.Context, id uuid.UUID, w tasks.Window) (bool, error) {
	return s.inner.MarkWindowSent(ctx, id, w)
}
