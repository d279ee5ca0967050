package service

import (
	"context"
	"strings"

	"github.com/Dina02092005/crm-sub000/internal/events"
	"github.com/Dina02092005/crm-sub000/internal/leads/domain"
	"github.com/Dina02092005/crm-sub000/internal/leads/repository"
	"github.com/Dina02092005/crm-sub000/internal/leads/transport"
	"github.com/Dina02092005/crm-sub000/platform/apperr"
	"github.com/Dina02092005/crm-sub000/platform/httpkit"

	"github.com/google/uuid"
)

// Close actions accepted by ConvertOrLose.
const (
	ActionConvert = "CONVERT"
	ActionLost    = "LOST"
)

// Assign atomically records an assignment, moves the lead to ASSIGNED and
// writes the audit activity, then notifies the assigned employee after the
// transaction commits.
func (s *Service) Assign(ctx context.Context, leadID, employeeID uuid.UUID, actor httpkit.Identity) (transport.LeadResponse, error) {
	if !domain.Authorize(actor.Roles(), domain.ActionAssignLead) {
		return transport.LeadResponse{}, apperr.Forbidden("not allowed to assign leads")
	}

	employee, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return transport.LeadResponse{}, apperr.NotFound("employee not found")
	}

	current, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, mapLeadErr(err)
	}
	if domain.IsTerminalStatus(current.Status) {
		return transport.LeadResponse{}, apperr.InvalidState("lead is already closed")
	}

	lead, err := s.store.AssignLead(ctx, repository.AssignLeadParams{
		LeadID:          leadID,
		EmployeeID:      employeeID,
		AssignedByID:    actor.UserID(),
		ActivityContent: "Lead assigned to " + employee.Name,
	})
	if err != nil {
		return transport.LeadResponse{}, mapLeadErr(err)
	}

	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		LeadName:     lead.Name,
		EmployeeID:   employeeID,
		AssignedByID: actor.UserID(),
	})

	return toLeadResponse(lead), nil
}

// ConvertOrLose is the explicit close operation. It is rejected once the
// lead is already CONVERTED or LOST. CONVERT provisions a customer record
// and notifies admins plus the current assignee; LOST records the reason
// in the audit trail.
func (s *Service) ConvertOrLose(ctx context.Context, leadID uuid.UUID, req transport.CloseLeadRequest, actor httpkit.Identity) (transport.LeadResponse, error) {
	if !domain.Authorize(actor.Roles(), domain.ActionManageLead) {
		return transport.LeadResponse{}, apperr.Forbidden("not allowed to close leads")
	}

	current, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, mapLeadErr(err)
	}
	if domain.IsTerminalStatus(current.Status) {
		return transport.LeadResponse{}, apperr.InvalidState("lead is already closed")
	}

	switch req.Action {
	case ActionConvert:
		return s.convert(ctx, leadID, actor.UserID())
	case ActionLost:
		reason := ""
		if req.Reason != nil {
			reason = strings.TrimSpace(*req.Reason)
		}
		return s.lose(ctx, leadID, reason, actor.UserID())
	default:
		return transport.LeadResponse{}, apperr.Validation("action must be CONVERT or LOST")
	}
}

func (s *Service) convert(ctx context.Context, leadID, actorID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.store.CloseLead(ctx, repository.CloseLeadParams{
		LeadID:   leadID,
		ActorID:  actorID,
		Status:   domain.StatusConverted,
		Activity: "Lead converted to customer",
	})
	if err != nil {
		return transport.LeadResponse{}, mapLeadErr(err)
	}

	// Downstream provisioning is best-effort relative to the committed
	// status change; a failure is logged, never rolled back.
	if s.customers != nil {
		if err := s.customers.ProvisionFromLead(ctx, lead); err != nil {
			s.log.Error("customer provisioning failed", "leadId", lead.ID, "error", err)
		}
	}

	s.publishConverted(ctx, lead, actorID)

	return toLeadResponse(lead), nil
}

func (s *Service) lose(ctx context.Context, leadID uuid.UUID, reason string, actorID uuid.UUID) (transport.LeadResponse, error) {
	activity := "Lead marked as lost"
	if reason != "" {
		activity += ": " + reason
	}

	lead, err := s.store.CloseLead(ctx, repository.CloseLeadParams{
		LeadID:   leadID,
		ActorID:  actorID,
		Status:   domain.StatusLost,
		Activity: activity,
	})
	if err != nil {
		return transport.LeadResponse{}, mapLeadErr(err)
	}

	s.bus.Publish(ctx, events.LeadLost{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		LeadName:  lead.Name,
		Reason:    reason,
		LostByID:  actorID,
	})

	return toLeadResponse(lead), nil
}
