package service

import (
	"context"
	"strings"

	"github.com/Dina02092005/crm-sub000/internal/leads/domain"
	"github.com/Dina02092005/crm-sub000/internal/leads/repository"
	"github.com/Dina02092005/crm-sub000/internal/leads/transport"
	"github.com/Dina02092005/crm-sub000/platform/apperr"
	"github.com/Dina02092005/crm-sub000/platform/httpkit"

	"github.com/google/uuid"
)

// LogActivity records a timeline entry. With updateLead set, the entry,
// the move to IN_PROGRESS / WARM and the two audit entries are one
// transaction; a partially applied write never persists.
func (s *Service) LogActivity(ctx context.Context, leadID uuid.UUID, req transport.LogActivityRequest, actor httpkit.Identity) (transport.ActivityResponse, error) {
	if !domain.Authorize(actor.Roles(), domain.ActionLogActivity) {
		return transport.ActivityResponse{}, apperr.Forbidden("not allowed to log activities")
	}

	if !domain.IsKnownActivityType(req.Type) {
		return transport.ActivityResponse{}, apperr.Validation("unknown activity type")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return transport.ActivityResponse{}, apperr.Validation("content is required")
	}

	if req.UpdateLead {
		current, err := s.store.GetByID(ctx, leadID)
		if err != nil {
			return transport.ActivityResponse{}, mapLeadErr(err)
		}
		if domain.IsTerminalStatus(current.Status) {
			return transport.ActivityResponse{}, apperr.InvalidState("lead is already closed")
		}

		activity, err := s.store.LogActivityWithLeadUpdate(ctx, repository.LogActivityParams{
			LeadID:       leadID,
			AuthorID:     actor.UserID(),
			ActivityType: req.Type,
			Content:      content,
		})
		if err != nil {
			return transport.ActivityResponse{}, mapLeadErr(err)
		}
		return toActivityResponse(activity), nil
	}

	if _, err := s.store.GetByID(ctx, leadID); err != nil {
		return transport.ActivityResponse{}, mapLeadErr(err)
	}

	activity, err := s.store.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:       leadID,
		AuthorID:     actor.UserID(),
		ActivityType: req.Type,
		Content:      content,
	})
	if err != nil {
		return transport.ActivityResponse{}, mapLeadErr(err)
	}

	return toActivityResponse(activity), nil
}

// EditActivity updates an activity's content. Only NOTE entries are
// mutable, and only by their author or an admin; type and creation time
// are never changed.
func (s *Service) EditActivity(ctx context.Context, activityID uuid.UUID, content string, actor httpkit.Identity) (transport.ActivityResponse, error) {
	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return transport.ActivityResponse{}, mapLeadErr(err)
	}

	if !domain.IsMutableActivity(activity.ActivityType) {
		return transport.ActivityResponse{}, apperr.Validation("Only notes can be edited")
	}
	if activity.AuthorID != actor.UserID() && !actor.HasRole(domain.RoleAdmin) {
		return transport.ActivityResponse{}, apperr.Forbidden("only the author can edit this note")
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return transport.ActivityResponse{}, apperr.Validation("content is required")
	}

	updated, err := s.store.UpdateActivityContent(ctx, activityID, trimmed)
	if err != nil {
		return transport.ActivityResponse{}, mapLeadErr(err)
	}

	return toActivityResponse(updated), nil
}

// DeleteActivity removes a timeline entry. Admin only.
func (s *Service) DeleteActivity(ctx context.Context, activityID uuid.UUID, actor httpkit.Identity) error {
	if !domain.Authorize(actor.Roles(), domain.ActionDeleteActivity) {
		return apperr.Forbidden("not allowed to delete activities")
	}

	if err := s.store.DeleteActivity(ctx, activityID); err != nil {
		return mapLeadErr(err)
	}

	return nil
}
