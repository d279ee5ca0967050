package reminder

import (
	apphttp "github.com/Dina02092005/crm-sub000/internal/http"
)

type Module struct {
	handler *Handler
	sweep   *Sweep
}

func NewModule(sweep *Sweep) *Module {
	return &Module{
		handler: NewHandler(sweep),
		sweep:   sweep,
	}
}

func (m *Module) Name() string { return "reminders" }

func (m *Module) Sweep() *Sweep { return m.sweep }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	reminders := ctx.Protected.Group("/reminders")
	m.handler.RegisterRoutes(reminders)
}
