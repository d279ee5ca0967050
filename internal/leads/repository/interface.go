package repository

import (
	"context"

	"github.com/google/uuid"
)

// LeadStore defines the persistence operations used by the lifecycle
// service. Services depend on this abstraction rather than the concrete
// pgx implementation, which keeps the composite-transaction boundary
// behind the store and makes the service testable with fakes.
type LeadStore interface {
	// Lead rows
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	List(ctx context.Context, params ListLeadsParams) ([]Lead, int, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (previous Lead, updated Lead, err error)

	// Composite transactional operations
	AssignLead(ctx context.Context, params AssignLeadParams) (Lead, error)
	LogActivityWithLeadUpdate(ctx context.Context, params LogActivityParams) (Activity, error)
	CloseLead(ctx context.Context, params CloseLeadParams) (Lead, error)

	// Assignments
	CurrentAssignment(ctx context.Context, leadID uuid.UUID) (*Assignment, error)
	ListAssignments(ctx context.Context, leadID uuid.UUID) ([]Assignment, error)

	// Activities
	CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error)
	GetActivity(ctx context.Context, id uuid.UUID) (Activity, error)
	UpdateActivityContent(ctx context.Context, id uuid.UUID, content string) (Activity, error)
	DeleteActivity(ctx context.Context, id uuid.UUID) error
	ListActivities(ctx context.Context, leadID uuid.UUID) ([]Activity, error)
}

// Ensure Repository implements LeadStore
var _ LeadStore = (*Repository)(nil)
