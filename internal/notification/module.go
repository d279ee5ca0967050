// Package notification subscribes to domain events and fans them out to
// in-app notifications and email. Domain modules publish events and never
// talk to delivery channels directly.
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dina02092005/crm-sub000/internal/email"
	"github.com/Dina02092005/crm-sub000/internal/events"
	apphttp "github.com/Dina02092005/crm-sub000/internal/http"
	notifhandler "github.com/Dina02092005/crm-sub000/internal/notification/handler"
	"github.com/Dina02092005/crm-sub000/internal/notification/inapp"
	"github.com/Dina02092005/crm-sub000/internal/reminder"
	"github.com/Dina02092005/crm-sub000/internal/tasks"
	"github.com/Dina02092005/crm-sub000/platform/config"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Recipient is the slice of an employee the notification module needs.
type Recipient struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// EmployeeReader resolves notification recipients.
type EmployeeReader interface {
	GetRecipient(ctx context.Context, id uuid.UUID) (Recipient, error)
	ListAdminRecipients(ctx context.Context) ([]Recipient, error)
}

// InAppSender persists an in-app notification. Satisfied by inapp.Service.
type InAppSender interface {
	Send(ctx context.Context, p inapp.SendParams) error
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender       email.Sender
	cfg          config.NotificationConfig
	log          *logger.Logger
	inApp        InAppSender
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
	employees    EmployeeReader
}

func New(pool *pgxpool.Pool, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	m := &Module{
		sender: sender,
		cfg:    cfg,
		log:    log,
	}

	if pool != nil {
		repo := inapp.NewRepository(pool)
		m.inAppService = inapp.NewService(repo, log)
		m.inApp = m.inAppService
		m.inAppHandler = notifhandler.NewHTTPHandler(m.inAppService)
	}

	return m
}

func (m *Module) Name() string { return "notification" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if m.inAppHandler == nil {
		return
	}
	notifications := ctx.Protected.Group("/notifications")
	m.inAppHandler.RegisterRoutes(notifications)
}

// SetEmployeeReader injects the recipient resolver (wired by the
// composition root to avoid a module cycle).
func (m *Module) SetEmployeeReader(reader EmployeeReader) { m.employees = reader }

// SetInAppSender overrides the in-app channel. Intended for tests.
func (m *Module) SetInAppSender(sender InAppSender) { m.inApp = sender }

func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// RegisterHandlers subscribes this module to the domain events it acts on.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadAssigned{}.EventName(), m)
	bus.Subscribe(events.LeadConverted{}.EventName(), m)
	bus.Subscribe(events.LeadLost{}.EventName(), m)
	bus.Subscribe(events.TaskCreated{}.EventName(), m)
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return m.handleLeadCreated(ctx, e)
	case events.LeadAssigned:
		return m.handleLeadAssigned(ctx, e)
	case events.LeadConverted:
		return m.handleLeadConverted(ctx, e)
	case events.LeadLost:
		return m.handleLeadLost(ctx, e)
	case events.TaskCreated:
		return m.handleTaskCreated(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleLeadCreated(ctx context.Context, e events.LeadCreated) error {
	source := e.Source
	if source == "" {
		source = "unknown source"
	}
	m.notifyAdmins(ctx, "New lead",
		fmt.Sprintf("Lead %q arrived via %s.", e.LeadName, source),
		&e.LeadID, "info")
	return nil
}

func (m *Module) handleLeadAssigned(ctx context.Context, e events.LeadAssigned) error {
	recipient, err := m.resolveRecipient(ctx, e.EmployeeID)
	if err != nil {
		return err
	}

	m.sendInApp(ctx, inapp.SendParams{
		UserID:       recipient.ID,
		Title:        "Lead assigned to you",
		Content:      fmt.Sprintf("Lead %q has been assigned to you.", e.LeadName),
		ResourceID:   &e.LeadID,
		ResourceType: "lead",
		Category:     "info",
	})

	if recipient.Email != "" {
		if err := m.sender.SendLeadAssignedEmail(ctx, recipient.Email, recipient.Name, e.LeadName); err != nil {
			m.log.DeliveryError("email", recipient.Email, err)
		}
	}
	return nil
}

// handleLeadConverted notifies the admins once and, when the lead had an
// assignee, that employee once.
func (m *Module) handleLeadConverted(ctx context.Context, e events.LeadConverted) error {
	m.notifyAdmins(ctx, "Lead converted",
		fmt.Sprintf("Lead %q was converted to a customer.", e.LeadName),
		&e.LeadID, "success")

	if e.AssignedEmployeeID == nil {
		return nil
	}

	recipient, err := m.resolveRecipient(ctx, *e.AssignedEmployeeID)
	if err != nil {
		return err
	}

	m.sendInApp(ctx, inapp.SendParams{
		UserID:       recipient.ID,
		Title:        "Your lead converted",
		Content:      fmt.Sprintf("Lead %q was converted to a customer.", e.LeadName),
		ResourceID:   &e.LeadID,
		ResourceType: "lead",
		Category:     "success",
	})

	if recipient.Email != "" {
		if err := m.sender.SendLeadConvertedEmail(ctx, recipient.Email, e.LeadName); err != nil {
			m.log.DeliveryError("email", recipient.Email, err)
		}
	}
	return nil
}

func (m *Module) handleLeadLost(ctx context.Context, e events.LeadLost) error {
	content := fmt.Sprintf("Lead %q was marked lost.", e.LeadName)
	if e.Reason != "" {
		content = fmt.Sprintf("Lead %q was marked lost: %s", e.LeadName, e.Reason)
	}
	m.notifyAdmins(ctx, "Lead lost", content, &e.LeadID, "warning")
	return nil
}

func (m *Module) handleTaskCreated(ctx context.Context, e events.TaskCreated) error {
	if e.AssignedToID == nil || *e.AssignedToID == e.CreatedByID {
		return nil
	}

	m.sendInApp(ctx, inapp.SendParams{
		UserID:       *e.AssignedToID,
		Title:        "Task assigned to you",
		Content:      fmt.Sprintf("Task %q was created for you.", e.Title),
		ResourceID:   &e.TaskID,
		ResourceType: "task",
		Category:     "info",
	})
	return nil
}

// RemindEmployee implements the sweep's delivery port: an in-app
// notification and an email, each independently best-effort.
func (m *Module) RemindEmployee(ctx context.Context, employeeID uuid.UUID, note reminder.Note) error {
	recipient, err := m.resolveRecipient(ctx, employeeID)
	if err != nil {
		return err
	}

	var inAppErr, emailErr error
	if m.inApp != nil {
		inAppErr = m.inApp.Send(ctx, inapp.SendParams{
			UserID:       recipient.ID,
			Title:        fmt.Sprintf("Reminder: %s", note.TaskTitle),
			Content:      fmt.Sprintf("Task %q for lead %q is due %s.", note.TaskTitle, note.LeadName, note.TaskDueAt.Format("Mon 2 Jan 15:04")),
			ResourceID:   &note.TaskID,
			ResourceType: "task",
			Category:     "warning",
		})
		if inAppErr != nil {
			m.log.DeliveryError("in_app", recipient.ID.String(), inAppErr)
		}
	}

	if recipient.Email != "" {
		emailErr = m.sender.SendTaskReminderEmail(ctx, recipient.Email, note.TaskTitle, note.LeadName, note.TaskDueAt, windowLabel(note.Window))
		if emailErr != nil {
			m.log.DeliveryError("email", recipient.Email, emailErr)
		}
	}

	return errors.Join(inAppErr, emailErr)
}

func (m *Module) resolveRecipient(ctx context.Context, id uuid.UUID) (Recipient, error) {
	if m.employees == nil {
		return Recipient{}, errors.New("employee reader not configured")
	}
	return m.employees.GetRecipient(ctx, id)
}

func (m *Module) notifyAdmins(ctx context.Context, title, content string, resourceID *uuid.UUID, category string) {
	if m.employees == nil {
		return
	}

	admins, err := m.employees.ListAdminRecipients(ctx)
	if err != nil {
		m.log.Error("admin recipient lookup failed", "error", err)
		return
	}

	for _, admin := range admins {
		m.sendInApp(ctx, inapp.SendParams{
			UserID:       admin.ID,
			Title:        title,
			Content:      content,
			ResourceID:   resourceID,
			ResourceType: "lead",
			Category:     category,
		})
	}
}

func (m *Module) sendInApp(ctx context.Context, p inapp.SendParams) {
	if m.inApp == nil {
		return
	}
	if err := m.inApp.Send(ctx, p); err != nil {
		m.log.DeliveryError("in_app", p.UserID.String(), err)
	}
}

func windowLabel(w tasks.Window) string {
	switch w {
	case tasks.Window10m:
		return "10 minute"
	case tasks.Window1h:
		return "1 hour"
	case tasks.Window24h:
		return "24 hour"
	default:
		return string(w)
	}
}
