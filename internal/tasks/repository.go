// Package tasks manages follow-up tasks and their reminders.
package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/Dina02092005/crm-sub000/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Task statuses. A task's lifecycle is independent from its lead's status.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrReminderNotFound = errors.New("reminder not found")
	ErrLeadNotFound     = errors.New("lead not found")
)

// Window is one of the three fixed reminder lead times.
type Window string

const (
	Window24h Window = "24h"
	Window1h  Window = "1h"
	Window10m Window = "10m"
)

// flagColumn maps a window to its sent-flag column. Only these three
// columns are ever touched by the conditional update.
var flagColumn = map[Window]string{
	Window24h: "sent_24h",
	Window1h:  "sent_1h",
	Window10m: "sent_10m",
}

type Task struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	Title        string
	DueAt        time.Time
	Status       string
	AssignedToID *uuid.UUID
	CreatedByID  uuid.UUID
	CreatedAt    time.Time
}

type Reminder struct {
	ID       uuid.UUID
	TaskID   uuid.UUID
	RemindAt time.Time
	Sent24h  bool
	Sent1h   bool
	Sent10m  bool
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, lead_id, title, due_at, status, assigned_to_id, created_by_id, created_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.LeadID, &t.Title, &t.DueAt, &t.Status, &t.AssignedToID, &t.CreatedByID, &t.CreatedAt)
	return t, err
}

type CreateTaskParams struct {
	LeadID       uuid.UUID
	Title        string
	DueAt        time.Time
	AssignedToID *uuid.UUID
	CreatedByID  uuid.UUID
	RemindAt     *time.Time
}

// CreateTask inserts the task, its optional reminder and the TASK_CREATED
// timeline entry on the lead, in one transaction.
func (r *Repository) CreateTask(ctx context.Context, params CreateTaskParams) (Task, *Reminder, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Task{}, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	task, err := scanTask(tx.QueryRow(ctx, `
		INSERT INTO lead_tasks (lead_id, title, due_at, status, assigned_to_id, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns+`
	`, params.LeadID, params.Title, params.DueAt, StatusPending, params.AssignedToID, params.CreatedByID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Task{}, nil, ErrLeadNotFound
		}
		return Task{}, nil, err
	}

	var reminder *Reminder
	if params.RemindAt != nil {
		var rem Reminder
		err := tx.QueryRow(ctx, `
			INSERT INTO reminders (task_id, remind_at)
			VALUES ($1, $2)
			RETURNING id, task_id, remind_at, sent_24h, sent_1h, sent_10m
		`, task.ID, *params.RemindAt).Scan(&rem.ID, &rem.TaskID, &rem.RemindAt, &rem.Sent24h, &rem.Sent1h, &rem.Sent10m)
		if err != nil {
			return Task{}, nil, err
		}
		reminder = &rem
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_activities (lead_id, author_id, activity_type, content)
		VALUES ($1, $2, $3, $4)
	`, params.LeadID, params.CreatedByID, domain.ActivityTaskCreated, "Task created: "+params.Title); err != nil {
		return Task{}, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Task{}, nil, err
	}

	return task, reminder, nil
}

func (r *Repository) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	task, err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM lead_tasks WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, err
	}
	return task, nil
}

func (r *Repository) CompleteTask(ctx context.Context, id uuid.UUID) (Task, error) {
	task, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE lead_tasks SET status = $2 WHERE id = $1
		RETURNING `+taskColumns+`
	`, id, StatusCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, err
	}
	return task, nil
}

// DeleteTask removes the task; its reminder goes with it via ON DELETE CASCADE.
func (r *Repository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lead_tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *Repository) DeleteReminder(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReminderNotFound
	}
	return nil
}

func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM lead_tasks
		WHERE lead_id = $1
		ORDER BY due_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, task)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
