// Package customers stores customer records provisioned from converted leads.
package customers

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
	ErrNotFound      = errors.New("customer not found")
	ErrAlreadyExists = errors.New("customer already provisioned for lead")
)

type Customer struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Name      string
	Email     *string
	Phone     string
	CreatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = `id, lead_id, name, email, phone, created_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.LeadID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	return c, err
}

type CreateParams struct {
	LeadID uuid.UUID
	Name   string
	Email  *string
	Phone  string
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Customer, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (lead_id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+customerColumns+`
	`, p.LeadID, p.Name, p.Email, p.Phone)

	c, err := scanCustomer(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Customer{}, ErrAlreadyExists
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE id = $1
	`, id)

	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) GetByLeadID(ctx context.Context, leadID uuid.UUID) (Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+customerColumns+` FROM customers WHERE lead_id = $1
	`, leadID)

	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]Customer, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+customerColumns+` FROM customers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]Customer, 0, limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return items, total, nil
}
