// Package service implements the lead lifecycle operations: capture,
// assignment, activity logging, status patching and conversion.
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
	"github.com/Dina02092005/crm-sub000/platform/logger"
	"github.com/Dina02092005/crm-sub000/platform/phone"

	"github.com/google/uuid"
)

// EmployeeRef is the slice of an employee the lifecycle service needs.
type EmployeeRef struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// EmployeeDirectory resolves staff referenced by lifecycle operations.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, id uuid.UUID) (EmployeeRef, error)
}

// CustomerProvisioner creates a customer record from a converted lead.
type CustomerProvisioner interface {
	ProvisionFromLead(ctx context.Context, lead repository.Lead) error
}

type Service struct {
	store     repository.LeadStore
	employees EmployeeDirectory
	customers CustomerProvisioner
	bus       events.Bus
	log       *logger.Logger
}

func New(store repository.LeadStore, employees EmployeeDirectory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		employees: employees,
		bus:       bus,
		log:       log,
	}
}

// SetCustomerProvisioner injects the customers port (wired by the
// composition root to avoid a module cycle).
func (s *Service) SetCustomerProvisioner(provisioner CustomerProvisioner) {
	s.customers = provisioner
}

// Create captures an inbound lead. New leads start NEW / COLD.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return transport.LeadResponse{}, apperr.Validation("name is required")
	}

	lead, err := s.store.Create(ctx, repository.CreateLeadParams{
		Name:        name,
		Email:       req.Email,
		Phone:       phone.NormalizeE164(req.Phone),
		Source:      req.Source,
		Status:      domain.StatusNew,
		Temperature: domain.TemperatureCold,
	})
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "create lead failed", err)
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		LeadName:  lead.Name,
		Source:    lead.Source,
	})

	return toLeadResponse(lead), nil
}

// Get returns the lead with its timeline, assignment history and the
// resolved current assignee.
func (s *Service) Get(ctx context.Context, leadID uuid.UUID) (transport.LeadDetailResponse, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		return transport.LeadDetailResponse{}, mapLeadErr(err)
	}

	assignments, err := s.store.ListAssignments(ctx, leadID)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Wrap(apperr.KindInternal, "list assignments failed", err)
	}

	activities, err := s.store.ListActivities(ctx, leadID)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Wrap(apperr.KindInternal, "list activities failed", err)
	}

	detail := transport.LeadDetailResponse{
		Lead:        toLeadResponse(lead),
		Assignments: make([]transport.AssignmentResponse, len(assignments)),
		Activities:  make([]transport.ActivityResponse, len(activities)),
	}
	// Assignments are sorted by assigned_at descending, so the current
	// assignee is the head of the history, never a positional guess.
	if len(assignments) > 0 {
		detail.CurrentAssignee = &assignments[0].EmployeeID
	}
	for i, a := range assignments {
		detail.Assignments[i] = toAssignmentResponse(a)
	}
	for i, a := range activities {
		detail.Activities[i] = toActivityResponse(a)
	}

	return detail, nil
}

func (s *Service) List(ctx context.Context, status, temperature string, page, pageSize int) (transport.LeadListResponse, error) {
	if status != "" && !domain.IsKnownStatus(status) {
		return transport.LeadListResponse{}, apperr.Validation("unknown status filter")
	}
	if temperature != "" && !domain.IsKnownTemperature(temperature) {
		return transport.LeadListResponse{}, apperr.Validation("unknown temperature filter")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := s.store.List(ctx, repository.ListLeadsParams{
		Status:      status,
		Temperature: temperature,
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
	})
	if err != nil {
		return transport.LeadListResponse{}, apperr.Wrap(apperr.KindInternal, "list leads failed", err)
	}

	out := transport.LeadListResponse{
		Items: make([]transport.LeadResponse, len(items)),
		Total: total,
	}
	for i, lead := range items {
		out.Items[i] = toLeadResponse(lead)
	}

	return out, nil
}

// Update applies a generic field patch. Terminal statuses are frozen: a
// patch moving a CONVERTED or LOST lead to another status is rejected. A
// patch that transitions a lead into CONVERTED triggers the conversion
// notifications after commit.
func (s *Service) Update(ctx context.Context, leadID uuid.UUID, req transport.UpdateLeadRequest, actor httpkit.Identity) (transport.LeadResponse, error) {
	if !domain.Authorize(actor.Roles(), domain.ActionManageLead) {
		return transport.LeadResponse{}, apperr.Forbidden("not allowed to update leads")
	}

	if req.Status != nil && !domain.IsKnownStatus(*req.Status) {
		return transport.LeadResponse{}, apperr.Validation("unknown status")
	}
	if req.Temperature != nil && !domain.IsKnownTemperature(*req.Temperature) {
		return transport.LeadResponse{}, apperr.Validation("unknown temperature")
	}

	current, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, mapLeadErr(err)
	}
	if req.Status != nil && *req.Status != current.Status && domain.IsTerminalStatus(current.Status) {
		return transport.LeadResponse{}, apperr.InvalidState("lead is already closed")
	}

	patch := repository.UpdateLeadParams{
		Name:        req.Name,
		Email:       req.Email,
		Source:      req.Source,
		Status:      req.Status,
		Temperature: req.Temperature,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		patch.Phone = &normalized
	}

	previous, updated, err := s.store.Update(ctx, leadID, patch)
	if err != nil {
		return transport.LeadResponse{}, mapLeadErr(err)
	}

	if previous.Status != domain.StatusConverted && updated.Status == domain.StatusConverted {
		s.publishConverted(ctx, updated, actor.UserID())
	}

	return toLeadResponse(updated), nil
}

// publishConverted resolves the current assignee and emits the conversion
// event. Runs after the data mutation commits; failures here never alter
// the caller's success result.
func (s *Service) publishConverted(ctx context.Context, lead repository.Lead, actorID uuid.UUID) {
	event := events.LeadConverted{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		LeadName:      lead.Name,
		ConvertedByID: actorID,
	}

	assignment, err := s.store.CurrentAssignment(ctx, lead.ID)
	if err != nil {
		s.log.Warn("could not resolve current assignee for conversion", "leadId", lead.ID, "error", err)
	} else if assignment != nil {
		event.AssignedEmployeeID = &assignment.EmployeeID
	}

	s.bus.Publish(ctx, event)
}

func mapLeadErr(err error) error {
	if err == repository.ErrNotFound {
		return apperr.NotFound("lead not found")
	}
	if err == repository.ErrActivityNotFound {
		return apperr.NotFound("activity not found")
	}
	return apperr.Wrap(apperr.KindInternal, "lead store failure", err)
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:          lead.ID,
		Name:        lead.Name,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Source:      lead.Source,
		Status:      lead.Status,
		Temperature: lead.Temperature,
		CreatedAt:   lead.CreatedAt,
		UpdatedAt:   lead.UpdatedAt,
	}
}

func toAssignmentResponse(a repository.Assignment) transport.AssignmentResponse {
	return transport.AssignmentResponse{
		ID:           a.ID,
		LeadID:       a.LeadID,
		EmployeeID:   a.EmployeeID,
		AssignedByID: a.AssignedByID,
		AssignedAt:   a.AssignedAt,
	}
}

func toActivityResponse(a repository.Activity) transport.ActivityResponse {
	return transport.ActivityResponse{
		ID:        a.ID,
		LeadID:    a.LeadID,
		AuthorID:  a.AuthorID,
		Type:      a.ActivityType,
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
