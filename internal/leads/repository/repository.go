package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a referenced lead row does not exist.
var ErrNotFound = errors.New("lead not found")

// ErrActivityNotFound is returned when a referenced activity row does not exist.
var ErrActivityNotFound = errors.New("activity not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID          uuid.UUID
	Name        string
	Email       *string
	Phone       string
	Source      string
	Status      string
	Temperature string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateLeadParams struct {
	Name        string
	Email       *string
	Phone       string
	Source      string
	Status      string
	Temperature string
}

const leadColumns = `id, name, email, phone, source, status, temperature, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Source,
		&lead.Status, &lead.Temperature, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, source, status, temperature)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+leadColumns+`
	`, params.Name, params.Email, params.Phone, params.Source, params.Status, params.Temperature))
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

type ListLeadsParams struct {
	Status      string
	Temperature string
	Limit       int
	Offset      int
}

func (r *Repository) List(ctx context.Context, params ListLeadsParams) ([]Lead, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if params.Status != "" {
		args = append(args, params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Temperature != "" {
		args = append(args, params.Temperature)
		where = append(where, fmt.Sprintf("temperature = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM leads%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return items, total, nil
}

// UpdateLeadParams is a partial patch; nil fields are left unchanged.
type UpdateLeadParams struct {
	Name        *string
	Email       *string
	Phone       *string
	Source      *string
	Status      *string
	Temperature *string
}

// Update applies the patch in a single transaction and returns the row as it
// was before the update alongside the updated row. The caller uses the
// previous row to detect status transitions.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (previous Lead, updated Lead, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, Lead{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	previous, err = scanLead(tx.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, Lead{}, ErrNotFound
		}
		return Lead{}, Lead{}, err
	}

	updated, err = scanLead(tx.QueryRow(ctx, `
		UPDATE leads SET
			name        = COALESCE($2, name),
			email       = COALESCE($3, email),
			phone       = COALESCE($4, phone),
			source      = COALESCE($5, source),
			status      = COALESCE($6, status),
			temperature = COALESCE($7, temperature),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id, params.Name, params.Email, params.Phone, params.Source, params.Status, params.Temperature))
	if err != nil {
		return Lead{}, Lead{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, Lead{}, err
	}

	return previous, updated, nil
}
