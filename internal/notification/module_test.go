package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dina02092005/crm-sub000/internal/events"
	"github.com/Dina02092005/crm-sub000/internal/notification/inapp"
	"github.com/Dina02092005/crm-sub000/internal/reminder"
	"github.com/Dina02092005/crm-sub000/internal/tasks"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/google/uuid"
)

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://app.example.com" }

type testSender struct {
	assignedCalls  int
	convertedCalls int
	reminderCalls  int
	failReminder   bool
}

func (s *testSender) SendLeadAssignedEmail(context.Context, string, string, string) error {
	s.assignedCalls++
	return nil
}

func (s *testSender) SendLeadConvertedEmail(context.Context, string, string) error {
	s.convertedCalls++
	return nil
}

func (s *testSender) SendTaskReminderEmail(context.Context, string, string, string, time.Time, string) error {
	if s.failReminder {
		return errors.New("smtp unavailable")
	}
	s.reminderCalls++
	return nil
}

func (s *testSender) SendCustomEmail(context.Context, string, string, string) error { return nil }

type testEmployeeReader struct {
	recipients map[uuid.UUID]Recipient
	admins     []Recipient
}

func (r *testEmployeeReader) GetRecipient(_ context.Context, id uuid.UUID) (Recipient, error) {
	recipient, ok := r.recipients[id]
	if !ok {
		return Recipient{}, errors.New("employee not found")
	}
	return recipient, nil
}

func (r *testEmployeeReader) ListAdminRecipients(context.Context) ([]Recipient, error) {
	return r.admins, nil
}

type testInAppSender struct {
	sent []inapp.SendParams
}

func (s *testInAppSender) Send(_ context.Context, p inapp.SendParams) error {
	s.sent = append(s.sent, p)
	return nil
}

func newTestModule(sender *testSender, reader *testEmployeeReader, inAppSender *testInAppSender) *Module {
	m := New(nil, sender, testNotificationConfig{}, logger.New("development"))
	m.SetEmployeeReader(reader)
	m.SetInAppSender(inAppSender)
	return m
}

func TestLeadConvertedNotifiesAdminsAndAssignee(t *testing.T) {
	assigneeID := uuid.New()
	adminID := uuid.New()
	sender := &testSender{}
	inAppSender := &testInAppSender{}
	reader := &testEmployeeReader{
		recipients: map[uuid.UUID]Recipient{
			assigneeID: {ID: assigneeID, Name: "Sam", Email: "sam@example.com"},
		},
		admins: []Recipient{{ID: adminID, Name: "Alex", Email: "alex@example.com"}},
	}

	m := newTestModule(sender, reader, inAppSender)
	err := m.Handle(context.Background(), events.LeadConverted{
		BaseEvent:          events.NewBaseEvent(),
		LeadID:             uuid.New(),
		LeadName:           "Ada Lovelace",
		AssignedEmployeeID: &assigneeID,
		ConvertedByID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(inAppSender.sent) != 2 {
		t.Fatalf("expected one admin and one assignee notification, got %d", len(inAppSender.sent))
	}
	if inAppSender.sent[0].UserID != adminID {
		t.Fatalf("expected admin notified first, got %s", inAppSender.sent[0].UserID)
	}
	if inAppSender.sent[1].UserID != assigneeID {
		t.Fatalf("expected assignee notified, got %s", inAppSender.sent[1].UserID)
	}
	if sender.convertedCalls != 1 {
		t.Fatalf("expected one conversion email, got %d", sender.convertedCalls)
	}
}

func TestLeadConvertedWithoutAssigneeOnlyNotifiesAdmins(t *testing.T) {
	adminID := uuid.New()
	sender := &testSender{}
	inAppSender := &testInAppSender{}
	reader := &testEmployeeReader{
		recipients: map[uuid.UUID]Recipient{},
		admins:     []Recipient{{ID: adminID, Name: "Alex", Email: "alex@example.com"}},
	}

	m := newTestModule(sender, reader, inAppSender)
	err := m.Handle(context.Background(), events.LeadConverted{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        uuid.New(),
		LeadName:      "Ada Lovelace",
		ConvertedByID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(inAppSender.sent) != 1 || inAppSender.sent[0].UserID != adminID {
		t.Fatalf("expected only the admin notification, got %d", len(inAppSender.sent))
	}
	if sender.convertedCalls != 0 {
		t.Fatalf("expected no conversion email without an assignee, got %d", sender.convertedCalls)
	}
}

func TestLeadAssignedNotifiesEmployee(t *testing.T) {
	employeeID := uuid.New()
	sender := &testSender{}
	inAppSender := &testInAppSender{}
	reader := &testEmployeeReader{
		recipients: map[uuid.UUID]Recipient{
			employeeID: {ID: employeeID, Name: "Sam", Email: "sam@example.com"},
		},
	}

	m := newTestModule(sender, reader, inAppSender)
	err := m.Handle(context.Background(), events.LeadAssigned{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       uuid.New(),
		LeadName:     "Ada Lovelace",
		EmployeeID:   employeeID,
		AssignedByID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(inAppSender.sent) != 1 || inAppSender.sent[0].UserID != employeeID {
		t.Fatalf("expected one in-app notification for the employee, got %d", len(inAppSender.sent))
	}
	if sender.assignedCalls != 1 {
		t.Fatalf("expected one assignment email, got %d", sender.assignedCalls)
	}
}

func TestTaskCreatedSkipsSelfAssignment(t *testing.T) {
	creatorID := uuid.New()
	sender := &testSender{}
	inAppSender := &testInAppSender{}
	m := newTestModule(sender, &testEmployeeReader{}, inAppSender)

	err := m.Handle(context.Background(), events.TaskCreated{
		BaseEvent:    events.NewBaseEvent(),
		TaskID:       uuid.New(),
		LeadID:       uuid.New(),
		Title:        "Call back",
		AssignedToID: &creatorID,
		CreatedByID:  creatorID,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(inAppSender.sent) != 0 {
		t.Fatalf("expected no self-notification, got %d", len(inAppSender.sent))
	}
}

func TestRemindEmployeeDeliversBothChannels(t *testing.T) {
	employeeID := uuid.New()
	sender := &testSender{}
	inAppSender := &testInAppSender{}
	reader := &testEmployeeReader{
		recipients: map[uuid.UUID]Recipient{
			employeeID: {ID: employeeID, Name: "Sam", Email: "sam@example.com"},
		},
	}

	m := newTestModule(sender, reader, inAppSender)
	err := m.RemindEmployee(context.Background(), employeeID, reminder.Note{
		Window:    tasks.Window10m,
		TaskID:    uuid.New(),
		TaskTitle: "Call back",
		TaskDueAt: time.Now().Add(time.Hour),
		LeadID:    uuid.New(),
		LeadName:  "Ada Lovelace",
	})
	if err != nil {
		t.Fatalf("RemindEmployee: %v", err)
	}

	if len(inAppSender.sent) != 1 {
		t.Fatalf("expected one in-app reminder, got %d", len(inAppSender.sent))
	}
	if sender.reminderCalls != 1 {
		t.Fatalf("expected one reminder email, got %d", sender.reminderCalls)
	}
}

func TestRemindEmployeeEmailFailureStillSendsInApp(t *testing.T) {
	employeeID := uuid.New()
	sender := &testSender{failReminder: true}
	inAppSender := &testInAppSender{}
	reader := &testEmployeeReader{
		recipients: map[uuid.UUID]Recipient{
			employeeID: {ID: employeeID, Name: "Sam", Email: "sam@example.com"},
		},
	}

	m := newTestModule(sender, reader, inAppSender)
	err := m.RemindEmployee(context.Background(), employeeID, reminder.Note{
		Window:    tasks.Window1h,
		TaskID:    uuid.New(),
		TaskTitle: "Call back",
		TaskDueAt: time.Now().Add(time.Hour),
		LeadID:    uuid.New(),
		LeadName:  "Ada Lovelace",
	})
	if err == nil {
		t.Fatal("expected the email failure to be reported")
	}

	if len(inAppSender.sent) != 1 {
		t.Fatalf("expected the in-app channel to deliver anyway, got %d", len(inAppSender.sent))
	}
}
