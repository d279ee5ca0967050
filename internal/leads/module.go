// Package leads provides the lead lifecycle bounded context module.
package leads

import (
	"github.com/Dina02092005/crm-sub000/internal/events"
	apphttp "github.com/Dina02092005/crm-sub000/internal/http"
	"github.com/Dina02092005/crm-sub000/internal/leads/handler"
	"github.com/Dina02092005/crm-sub000/internal/leads/repository"
	"github.com/Dina02092005/crm-sub000/internal/leads/service"
	"github.com/Dina02092005/crm-sub000/platform/logger"
	"github.com/Dina02092005/crm-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, employees service.EmployeeDirectory, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, employees, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lifecycle service for external wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the lead store for read-side adapters.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts leads routes. All routes require authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"), ctx.Protected.Group("/activities"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
