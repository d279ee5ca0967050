// Package employees manages staff accounts, sign-in and role lookups.
package employees

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound       = errors.New("employee not found")
	ErrEmailTaken     = errors.New("email already in use")
	ErrInactiveStatus = errors.New("employee is inactive")
)

type Employee struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Roles        []string
	IsActive     bool
	CreatedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `id, name, email, password_hash, roles, is_active, created_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.PasswordHash, &e.Roles, &e.IsActive, &e.CreatedAt)
	return e, err
}

type CreateParams struct {
	Name         string
	Email        string
	PasswordHash string
	Roles        []string
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Employee, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO employees (name, email, password_hash, roles)
		VALUES ($1, $2, $3, $4)
		RETURNING `+employeeColumns+`
	`, p.Name, p.Email, p.PasswordHash, p.Roles)

	e, err := scanEmployee(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, ErrEmailTaken
		}
		return Employee{}, err
	}
	return e, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Employee, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+employeeColumns+` FROM employees WHERE id = $1
	`, id)

	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (Employee, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+employeeColumns+` FROM employees WHERE lower(email) = lower($1)
	`, email)

	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) List(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+employeeColumns+` FROM employees ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collect(rows)
}

// ListByRole returns active employees carrying the given role.
func (r *Repository) ListByRole(ctx context.Context, role string) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+employeeColumns+` FROM employees
		WHERE is_active AND $1 = ANY(roles)
		ORDER BY name ASC
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows pgx.Rows) ([]Employee, error) {
	items := make([]Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
