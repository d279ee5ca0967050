package adapters

import (
	"context"

	"github.com/Dina02092005/crm-sub000/internal/employees"
	"github.com/Dina02092005/crm-sub000/internal/leads/domain"
	"github.com/Dina02092005/crm-sub000/internal/notification"

	"github.com/google/uuid"
)

// NotificationRecipientsAdapter resolves notification recipients from the
// employees store.
type NotificationRecipientsAdapter struct {
	repo *employees.Repository
}

func NewNotificationRecipientsAdapter(repo *employees.Repository) *NotificationRecipientsAdapter {
	return &NotificationRecipientsAdapter{repo: repo}
}

func (a *NotificationRecipientsAdapter) GetRecipient(ctx context.Context, id uuid.UUID) (notification.Recipient, error) {
	employee, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return notification.Recipient{}, err
	}
	return notification.Recipient{
		ID:    employee.ID,
		Name:  employee.Name,
		Email: employee.Email,
	}, nil
}

func (a *NotificationRecipientsAdapter) ListAdminRecipients(ctx context.Context) ([]notification.Recipient, error) {
	admins, err := a.repo.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	out := make([]notification.Recipient, len(admins))
	for i, admin := range admins {
		out[i] = notification.Recipient{
			ID:    admin.ID,
			Name:  admin.Name,
			Email: admin.Email,
		}
	}
	return out, nil
}
