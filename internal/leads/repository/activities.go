package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Activity struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	AuthorID     uuid.UUID
	ActivityType string
	Content      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateActivityParams struct {
	LeadID       uuid.UUID
	AuthorID     uuid.UUID
	ActivityType string
	Content      string
}

const activityColumns = `id, lead_id, author_id, activity_type, content, created_at, updated_at`

func scanActivity(row pgx.Row) (Activity, error) {
	var a Activity
	err := row.Scan(&a.ID, &a.LeadID, &a.AuthorID, &a.ActivityType, &a.Content, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// CreateActivity inserts a standalone timeline entry outside any composite
// transaction.
func (r *Repository) CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error) {
	return scanActivity(r.pool.QueryRow(ctx, `
		INSERT INTO lead_activities (lead_id, author_id, activity_type, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+activityColumns+`
	`, params.LeadID, params.AuthorID, params.ActivityType, params.Content))
}

func (r *Repository) GetActivity(ctx context.Context, id uuid.UUID) (Activity, error) {
	a, err := scanActivity(r.pool.QueryRow(ctx, `
		SELECT `+activityColumns+` FROM lead_activities WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Activity{}, ErrActivityNotFound
		}
		return Activity{}, err
	}
	return a, nil
}

// UpdateActivityContent replaces the content of an activity. The type and
// creation timestamp are never touched.
func (r *Repository) UpdateActivityContent(ctx context.Context, id uuid.UUID, content string) (Activity, error) {
	a, err := scanActivity(r.pool.QueryRow(ctx, `
		UPDATE lead_activities
		SET content = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+activityColumns+`
	`, id, content))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Activity{}, ErrActivityNotFound
		}
		return Activity{}, err
	}
	return a, nil
}

func (r *Repository) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lead_activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrActivityNotFound
	}
	return nil
}

func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+activityColumns+`
		FROM lead_activities
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}
