package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Assignment struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	EmployeeID   uuid.UUID
	AssignedByID uuid.UUID
	AssignedAt   time.Time
}

const assignmentColumns = `id, lead_id, employee_id, assigned_by_id, assigned_at`

// CurrentAssignment returns the assignment with the greatest assigned_at for
// the lead, or nil when the lead has never been assigned. Selection is
// always by timestamp, never by insertion order.
func (r *Repository) CurrentAssignment(ctx context.Context, leadID uuid.UUID) (*Assignment, error) {
	var a Assignment
	err := r.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM lead_assignments
		WHERE lead_id = $1
		ORDER BY assigned_at DESC, id DESC
		LIMIT 1
	`, leadID).Scan(&a.ID, &a.LeadID, &a.EmployeeID, &a.AssignedByID, &a.AssignedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ListAssignments returns the full append-only assignment history,
// most recent first.
func (r *Repository) ListAssignments(ctx context.Context, leadID uuid.UUID) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM lead_assignments
		WHERE lead_id = $1
		ORDER BY assigned_at DESC, id DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Assignment, 0)
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.LeadID, &a.EmployeeID, &a.AssignedByID, &a.AssignedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
