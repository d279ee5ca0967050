// Package tasks manages follow-up tasks and their reminders.
package tasks

import (
	apphttp "github.com/Dina02092005/crm-sub000/internal/http"

	"github.com/Dina02092005/crm-sub000/internal/events"
	"github.com/Dina02092005/crm-sub000/platform/logger"
	"github.com/Dina02092005/crm-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *Handler
	service *Service
	repo    *Repository
}

func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, eventBus, log)

	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
		repo:    repo,
	}
}

func (m *Module) Name() string { return "tasks" }

// Repository exposes the task store for the reminder sweep.
func (m *Module) Repository() *Repository { return m.repo }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	tasks := ctx.Protected.Group("/tasks")
	reminders := ctx.Protected.Group("/reminders")
	m.handler.RegisterRoutes(leads, tasks, reminders)
}
