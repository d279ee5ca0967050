package reminder

import (
	"github.com/Dina02092005/crm-sub000/internal/leads/domain"
	"github.com/Dina02092005/crm-sub000/platform/apperr"
	"github.com/Dina02092005/crm-sub000/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	sweep *Sweep
}

func NewHandler(sweep *Sweep) *Handler {
	return &Handler{sweep: sweep}
}

func (h *Handler) RegisterRoutes(reminders *gin.RouterGroup) {
	reminders.POST("/sweep", h.RunSweep)
}

// RunSweep triggers one sweep pass on demand. Per-item failures are reported
// in the counters; only a failure before any item was touched is an error.
func (h *Handler) RunSweep(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	if !domain.Authorize(identity.Roles(), domain.ActionRunSweep) {
		httpkit.HandleError(c, apperr.Forbidden("insufficient role to run the sweep"))
		return
	}

	sum, err := h.sweep.Run(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "reminder sweep failed", err))
		return
	}

	httpkit.OK(c, sum)
}
