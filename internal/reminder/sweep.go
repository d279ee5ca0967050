// Package reminder runs the periodic sweep that turns due task reminders
// into notifications for the lead's current assignee.
package reminder

import (
	"context"
	"time"

	"github.com/Dina02092005/crm-sub000/internal/tasks"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/google/uuid"
)

// Store is the slice of the task repository the sweep needs.
type Store interface {
	DueReminders(ctx context.Context, horizon10m, horizon1h, horizon24h time.Time) ([]tasks.DueReminder, error)
	MarkWindowSent(ctx context.Context, reminderID uuid.UUID, window tasks.Window) (bool, error)
}

// Note is the delivery payload handed to the Notifier.
type Note struct {
	Window    tasks.Window
	TaskID    uuid.UUID
	TaskTitle string
	TaskDueAt time.Time
	LeadID    uuid.UUID
	LeadName  string
}

// Notifier delivers a reminder to an employee. Implementations fan out to
// in-app notifications and email; failures are reported, never retried
// within the same window.
type Notifier interface {
	RemindEmployee(ctx context.Context, employeeID uuid.UUID, note Note) error
}

// Summary reports what a single sweep pass did.
type Summary struct {
	Processed  int `json:"processed"`
	Sent10m    int `json:"sent10m"`
	Sent1h     int `json:"sent1h"`
	Sent24h    int `json:"sent24h"`
	Skipped    int `json:"skipped"`
	Deliveries int `json:"deliveries"`
	Errors     int `json:"errors"`
}

type Sweep struct {
	store    Store
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

func NewSweep(store Store, notifier Notifier, log *logger.Logger) *Sweep {
	return &Sweep{store: store, notifier: notifier, log: log, now: time.Now}
}

// Run executes one sweep pass. Each due reminder gets at most one window per
// pass, the most urgent one it qualifies for. The sent flag is flipped with a
// conditional update before delivery is attempted, so concurrent sweeps never
// deliver the same window twice; a delivery failure after the flip is counted
// and logged but the window is not retried.
func (s *Sweep) Run(ctx context.Context) (Summary, error) {
	now := s.now()
	horizon10m := now.Add(10 * time.Minute)
	horizon1h := now.Add(time.Hour)
	horizon24h := now.Add(24 * time.Hour)

	due, err := s.store.DueReminders(ctx, horizon10m, horizon1h, horizon24h)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, item := range due {
		sum.Processed++

		window, ok := pickWindow(item, horizon10m, horizon1h, horizon24h)
		if !ok {
			continue
		}

		if item.AssigneeID == nil {
			sum.Skipped++
			continue
		}

		flipped, err := s.store.MarkWindowSent(ctx, item.ReminderID, window)
		if err != nil {
			sum.Errors++
			s.log.DatabaseError("reminders.mark_window_sent", err)
			continue
		}
		if !flipped {
			// Another sweep claimed this window.
			sum.Skipped++
			continue
		}

		switch window {
		case tasks.Window10m:
			sum.Sent10m++
		case tasks.Window1h:
			sum.Sent1h++
		case tasks.Window24h:
			sum.Sent24h++
		}

		note := Note{
			Window:    window,
			TaskID:    item.TaskID,
			TaskTitle: item.TaskTitle,
			TaskDueAt: item.TaskDueAt,
			LeadID:    item.LeadID,
			LeadName:  item.LeadName,
		}
		if err := s.notifier.RemindEmployee(ctx, *item.AssigneeID, note); err != nil {
			sum.Errors++
			s.log.DeliveryError("reminder", item.AssigneeID.String(), err)
			continue
		}
		sum.Deliveries++
	}

	return sum, nil
}

// pickWindow selects the most urgent window the reminder is due for and has
// not yet been sent.
func pickWindow(item tasks.DueReminder, horizon10m, horizon1h, horizon24h time.Time) (tasks.Window, bool) {
	switch {
	case !item.Sent10m && !item.RemindAt.After(horizon10m):
		return tasks.Window10m, true
	case !item.Sent1h && !item.RemindAt.After(horizon1h):
		return tasks.Window1h, true
	case !item.Sent24h && !item.RemindAt.After(horizon24h):
		return tasks.Window24h, true
	default:
		return "", false
	}
}
