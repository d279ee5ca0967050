package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DueReminder is the read-side projection the sweep consumes: the reminder
// with its task, lead and the lead's current assignee resolved in one query
// instead of navigating live object graphs.
type DueReminder struct {
	ReminderID uuid.UUID
	TaskID     uuid.UUID
	TaskTitle  string
	TaskDueAt  time.Time
	RemindAt   time.Time
	Sent24h    bool
	Sent1h     bool
	Sent10m    bool
	LeadID     uuid.UUID
	LeadName   string
	AssigneeID *uuid.UUID
}

// DueReminders returns reminders on pending tasks that are due for at least
// one unsent window at the given horizons.
func (r *Repository) DueReminders(ctx context.Context, horizon10m, horizon1h, horizon24h time.Time) ([]DueReminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rem.id, rem.task_id, t.title, t.due_at,
		       rem.remind_at, rem.sent_24h, rem.sent_1h, rem.sent_10m,
		       l.id, l.name, cur.employee_id
		FROM reminders rem
		JOIN lead_tasks t ON t.id = rem.task_id
		JOIN leads l ON l.id = t.lead_id
		LEFT JOIN LATERAL (
			SELECT employee_id
			FROM lead_assignments
			WHERE lead_id = l.id
			ORDER BY assigned_at DESC, id DESC
			LIMIT 1
		) cur ON true
		WHERE t.status = $1
		  AND (
			(rem.remind_at <= $2 AND NOT rem.sent_10m) OR
			(rem.remind_at <= $3 AND NOT rem.sent_1h) OR
			(rem.remind_at <= $4 AND NOT rem.sent_24h)
		  )
		ORDER BY rem.remind_at ASC
	`, StatusPending, horizon10m, horizon1h, horizon24h)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]DueReminder, 0)
	for rows.Next() {
		var item DueReminder
		if err := rows.Scan(
			&item.ReminderID, &item.TaskID, &item.TaskTitle, &item.TaskDueAt,
			&item.RemindAt, &item.Sent24h, &item.Sent1h, &item.Sent10m,
			&item.LeadID, &item.LeadName, &item.AssigneeID,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// MarkWindowSent flips the sent flag for exactly one window. The update is
// conditional on the flag still being unset, so concurrent sweeps racing on
// the same reminder cannot both win; the returned bool reports whether this
// caller performed the flip.
func (r *Repository) MarkWindowSent(ctx context.Context, reminderID uuid.UUID, window Window) (bool, error) {
	column, ok := flagColumn[window]
	if !ok {
		return false, ErrReminderNotFound
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE reminders SET `+column+` = true
		WHERE id = $1 AND `+column+` = false
	`, reminderID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
