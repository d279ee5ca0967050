package customers

import (
	apphttp "github.com/Dina02092005/crm-sub000/internal/http"

	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, log)

	return &Module{
		handler: NewHandler(svc),
		service: svc,
	}
}

func (m *Module) Name() string { return "customers" }

func (m *Module) Service() *Service { return m.service }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	customers := ctx.Protected.Group("/customers")
	m.handler.RegisterRoutes(customers)
}
