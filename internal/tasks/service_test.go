package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/Dina02092005/crm-sub000/internal/events"
	"github.com/Dina02092005/crm-sub000/internal/leads/domain"
	"github.com/Dina02092005/crm-sub000/platform/apperr"
	"github.com/Dina02092005/crm-sub000/platform/httpkit"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/google/uuid"
)

type silentBus struct{}

func (silentBus) Publish(context.Context, events.Event) {}

func (silentBus) PublishSync(context.Context, events.Event) error { return nil }

func (silentBus) Subscribe(string, events.Handler) {}

func newValidationService() *Service {
	// Validation happens before the store is touched, so a nil repository
	// is enough for these paths.
	return NewService(nil, silentBus{}, logger.New("test"))
}

func salesActor() httpkit.Identity {
	return httpkit.NewIdentity(uuid.New(), []string{domain.RoleSales})
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	svc := newValidationService()

	_, err := svc.Create(context.Background(), uuid.New(), CreateTaskRequest{
		Title: "   ",
		DueAt: time.Now().Add(time.Hour),
	}, salesActor())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsReminderAfterDue(t *testing.T) {
	svc := newValidationService()

	due := time.Now().Add(time.Hour)
	remind := due.Add(time.Minute)
	_, err := svc.Create(context.Background(), uuid.New(), CreateTaskRequest{
		Title:    "Call back",
		DueAt:    due,
		RemindAt: &remind,
	}, salesActor())
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
