package employees

import (
	apphttp "github.com/Dina02092005/crm-sub000/internal/http"

	"github.com/Dina02092005/crm-sub000/platform/config"
	"github.com/Dina02092005/crm-sub000/platform/logger"
	"github.com/Dina02092005/crm-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *Handler
	service *Service
	repo    *Repository
}

func NewModule(pool *pgxpool.Pool, cfg config.AuthConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, cfg, log)

	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
		repo:    repo,
	}
}

func (m *Module) Name() string { return "employees" }

func (m *Module) Service() *Service { return m.service }

func (m *Module) Repository() *Repository { return m.repo }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	auth := ctx.Public.Group("/auth")
	staff := ctx.Protected.Group("/employees")
	m.handler.RegisterRoutes(auth, staff)
}
