package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/Dina02092005/crm-sub000/internal/events"
	"github.com/Dina02092005/crm-sub000/platform/apperr"
	"github.com/Dina02092005/crm-sub000/platform/httpkit"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo *Repository
	bus  events.Bus
	log  *logger.Logger
}

func NewService(repo *Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

type CreateTaskRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	DueAt        time.Time  `json:"dueAt" validate:"required"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	RemindAt     *time.Time `json:"remindAt,omitempty"`
}

type TaskResponse struct {
	ID           uuid.UUID         `json:"id"`
	LeadID       uuid.UUID         `json:"leadId"`
	Title        string            `json:"title"`
	DueAt        time.Time         `json:"dueAt"`
	Status       string            `json:"status"`
	AssignedToID *uuid.UUID        `json:"assignedToId,omitempty"`
	CreatedByID  uuid.UUID         `json:"createdById"`
	CreatedAt    time.Time         `json:"createdAt"`
	Reminder     *ReminderResponse `json:"reminder,omitempty"`
}

type ReminderResponse struct {
	ID       uuid.UUID `json:"id"`
	RemindAt time.Time `json:"remindAt"`
	Sent24h  bool      `json:"sent24h"`
	Sent1h   bool      `json:"sent1h"`
	Sent10m  bool      `json:"sent10m"`
}

// Create records a follow-up task, its optional reminder and the lead
// timeline entry atomically, then announces the task.
func (s *Service) Create(ctx context.Context, leadID uuid.UUID, req CreateTaskRequest, actor httpkit.Identity) (TaskResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return TaskResponse{}, apperr.Validation("title is required")
	}
	if req.RemindAt != nil && req.RemindAt.After(req.DueAt) {
		return TaskResponse{}, apperr.Validation("remindAt must not be after dueAt")
	}

	task, reminder, err := s.repo.CreateTask(ctx, CreateTaskParams{
		LeadID:       leadID,
		Title:        title,
		DueAt:        req.DueAt,
		AssignedToID: req.AssignedToID,
		CreatedByID:  actor.UserID(),
		RemindAt:     req.RemindAt,
	})
	if err != nil {
		return TaskResponse{}, mapErr(err)
	}

	s.bus.Publish(ctx, events.TaskCreated{
		BaseEvent:    events.NewBaseEvent(),
		TaskID:       task.ID,
		LeadID:       task.LeadID,
		Title:        task.Title,
		AssignedToID: task.AssignedToID,
		CreatedByID:  actor.UserID(),
	})

	return toTaskResponse(task, reminder), nil
}

func (s *Service) Complete(ctx context.Context, taskID uuid.UUID) (TaskResponse, error) {
	task, err := s.repo.CompleteTask(ctx, taskID)
	if err != nil {
		return TaskResponse{}, mapErr(err)
	}
	return toTaskResponse(task, nil), nil
}

func (s *Service) Delete(ctx context.Context, taskID uuid.UUID) error {
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *Service) DeleteReminder(ctx context.Context, reminderID uuid.UUID) error {
	if err := s.repo.DeleteReminder(ctx, reminderID); err != nil {
		return mapErr(err)
	}
	return nil
}

func (s *Service) ListByLead(ctx context.Context, leadID uuid.UUID) ([]TaskResponse, error) {
	items, err := s.repo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, mapErr(err)
	}

	out := make([]TaskResponse, len(items))
	for i, task := range items {
		out[i] = toTaskResponse(task, nil)
	}
	return out, nil
}

func mapErr(err error) error {
	switch err {
	case ErrTaskNotFound:
		return apperr.NotFound("task not found")
	case ErrReminderNotFound:
		return apperr.NotFound("reminder not found")
	case ErrLeadNotFound:
		return apperr.NotFound("lead not found")
	default:
		return apperr.Wrap(apperr.KindInternal, "task store failure", err)
	}
}

func toTaskResponse(task Task, reminder *Reminder) TaskResponse {
	out := TaskResponse{
		ID:           task.ID,
		LeadID:       task.LeadID,
		Title:        task.Title,
		DueAt:        task.DueAt,
		Status:       task.Status,
		AssignedToID: task.AssignedToID,
		CreatedByID:  task.CreatedByID,
		CreatedAt:    task.CreatedAt,
	}
	if reminder != nil {
		out.Reminder = &ReminderResponse{
			ID:       reminder.ID,
			RemindAt: reminder.RemindAt,
			Sent24h:  reminder.Sent24h,
			Sent1h:   reminder.Sent1h,
			Sent10m:  reminder.Sent10m,
		}
	}
	return out
}
