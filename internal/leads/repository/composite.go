package repository

import (
	"context"
	"errors"

	"github.com/Dina02092005/crm-sub000/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Composite operations. Each runs in a single transaction so that partial
// application is impossible under concurrent access or crash; the lead row
// is locked first, which also serialises concurrent composite writes on
// the same lead.

type AssignLeadParams struct {
	LeadID          uuid.UUID
	EmployeeID      uuid.UUID
	AssignedByID    uuid.UUID
	ActivityContent string
}

// AssignLead inserts an assignment row, moves the lead to ASSIGNED and
// records the audit activity, atomically.
func (r *Repository) AssignLead(ctx context.Context, params AssignLeadParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockLead(ctx, tx, params.LeadID); err != nil {
		return Lead{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_assignments (lead_id, employee_id, assigned_by_id)
		VALUES ($1, $2, $3)
	`, params.LeadID, params.EmployeeID, params.AssignedByID); err != nil {
		return Lead{}, err
	}

	lead, err := scanLead(tx.QueryRow(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, params.LeadID, domain.StatusAssigned))
	if err != nil {
		return Lead{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_activities (lead_id, author_id, activity_type, content)
		VALUES ($1, $2, $3, $4)
	`, params.LeadID, params.AssignedByID, domain.ActivityTaskCreated, params.ActivityContent); err != nil {
		return Lead{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, err
	}

	return lead, nil
}

type LogActivityParams struct {
	LeadID       uuid.UUID
	AuthorID     uuid.UUID
	ActivityType string
	Content      string
}

// LogActivityWithLeadUpdate inserts the caller's activity, moves the lead to
// IN_PROGRESS / WARM and records the status and temperature change
// activities, all in one transaction.
func (r *Repository) LogActivityWithLeadUpdate(ctx context.Context, params LogActivityParams) (Activity, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Activity{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	previous, err := scanLead(tx.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE
	`, params.LeadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Activity{}, ErrNotFound
		}
		return Activity{}, err
	}

	activity, err := scanActivity(tx.QueryRow(ctx, `
		INSERT INTO lead_activities (lead_id, author_id, activity_type, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+activityColumns+`
	`, params.LeadID, params.AuthorID, params.ActivityType, params.Content))
	if err != nil {
		return Activity{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE leads SET status = $2, temperature = $3, updated_at = now()
		WHERE id = $1
	`, params.LeadID, domain.StatusInProgress, domain.TemperatureWarm); err != nil {
		return Activity{}, err
	}

	audits := []struct {
		activityType string
		content      string
	}{
		{domain.ActivityStatusChange, "Status changed from " + previous.Status + " to " + domain.StatusInProgress},
		{domain.ActivityTemperatureChange, "Temperature changed from " + previous.Temperature + " to " + domain.TemperatureWarm},
	}
	for _, audit := range audits {
		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_activities (lead_id, author_id, activity_type, content)
			VALUES ($1, $2, $3, $4)
		`, params.LeadID, params.AuthorID, audit.activityType, audit.content); err != nil {
			return Activity{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Activity{}, err
	}

	return activity, nil
}

type CloseLeadParams struct {
	LeadID   uuid.UUID
	ActorID  uuid.UUID
	Status   string // CONVERTED or LOST
	Activity string
}

// CloseLead moves the lead into a terminal status and records the audit
// activity, atomically.
func (r *Repository) CloseLead(ctx context.Context, params CloseLeadParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockLead(ctx, tx, params.LeadID); err != nil {
		return Lead{}, err
	}

	lead, err := scanLead(tx.QueryRow(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, params.LeadID, params.Status))
	if err != nil {
		return Lead{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_activities (lead_id, author_id, activity_type, content)
		VALUES ($1, $2, $3, $4)
	`, params.LeadID, params.ActorID, domain.ActivityStatusChange, params.Activity); err != nil {
		return Lead{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, err
	}

	return lead, nil
}

func lockLead(ctx context.Context, tx pgx.Tx, leadID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM leads WHERE id = $1 FOR UPDATE`, leadID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
