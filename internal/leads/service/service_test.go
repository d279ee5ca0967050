package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Dina02092005/crm-sub000/internal/events"
	"github.com/Dina02092005/crm-sub000/internal/leads/domain"
	"github.com/Dina02092005/crm-sub000/internal/leads/repository"
	"github.com/Dina02092005/crm-sub000/internal/leads/transport"
	"github.com/Dina02092005/crm-sub000/platform/apperr"
	"github.com/Dina02092005/crm-sub000/platform/httpkit"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/google/uuid"
)

// fakeStore is an in-memory LeadStore. Composite methods apply all writes
// or, when a failure is injected, none, mirroring the transactional
// contract of the real repository.
type fakeStore struct {
	mu          sync.Mutex
	leads       map[uuid.UUID]repository.Lead
	assignments []repository.Assignment
	activities  []repository.Activity

	failAssign       bool
	failLogComposite bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{leads: make(map[uuid.UUID]repository.Lead)}
}

var errInjected = errors.New("injected store failure")

func (f *fakeStore) Create(_ context.Context, p repository.CreateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead := repository.Lead{
		ID:          uuid.New(),
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		Source:      p.Source,
		Status:      p.Status,
		Temperature: p.Temperature,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListLeadsParams) ([]repository.Lead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		out = append(out, lead)
	}
	return out, len(out), nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, p repository.UpdateLeadParams) (repository.Lead, repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	previous, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.Lead{}, repository.ErrNotFound
	}
	updated := previous
	if p.Name != nil {
		updated.Name = *p.Name
	}
	if p.Email != nil {
		updated.Email = p.Email
	}
	if p.Phone != nil {
		updated.Phone = *p.Phone
	}
	if p.Source != nil {
		updated.Source = *p.Source
	}
	if p.Status != nil {
		updated.Status = *p.Status
	}
	if p.Temperature != nil {
		updated.Temperature = *p.Temperature
	}
	updated.UpdatedAt = time.Now()
	f.leads[id] = updated
	return previous, updated, nil
}

func (f *fakeStore) AssignLead(_ context.Context, p repository.AssignLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[p.LeadID]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	if f.failAssign {
		return repository.Lead{}, errInjected
	}
	f.assignments = append(f.assignments, repository.Assignment{
		ID:           uuid.New(),
		LeadID:       p.LeadID,
		EmployeeID:   p.EmployeeID,
		AssignedByID: p.AssignedByID,
		AssignedAt:   time.Now(),
	})
	lead.Status = domain.StatusAssigned
	f.leads[p.LeadID] = lead
	f.activities = append(f.activities, repository.Activity{
		ID:           uuid.New(),
		LeadID:       p.LeadID,
		AuthorID:     p.AssignedByID,
		ActivityType: domain.ActivityTaskCreated,
		Content:      p.ActivityContent,
		CreatedAt:    time.Now(),
	})
	return lead, nil
}

func (f *fakeStore) LogActivityWithLeadUpdate(_ context.Context, p repository.LogActivityParams) (repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[p.LeadID]
	if !ok {
		return repository.Activity{}, repository.ErrNotFound
	}
	if f.failLogComposite {
		// Simulated mid-transaction failure: nothing persists.
		return repository.Activity{}, errInjected
	}
	activity := repository.Activity{
		ID:           uuid.New(),
		LeadID:       p.LeadID,
		AuthorID:     p.AuthorID,
		ActivityType: p.ActivityType,
		Content:      p.Content,
		CreatedAt:    time.Now(),
	}
	f.activities = append(f.activities, activity)
	f.activities = append(f.activities,
		repository.Activity{ID: uuid.New(), LeadID: p.LeadID, AuthorID: p.AuthorID, ActivityType: domain.ActivityStatusChange},
		repository.Activity{ID: uuid.New(), LeadID: p.LeadID, AuthorID: p.AuthorID, ActivityType: domain.ActivityTemperatureChange},
	)
	lead.Status = domain.StatusInProgress
	lead.Temperature = domain.TemperatureWarm
	f.leads[p.LeadID] = lead
	return activity, nil
}

func (f *fakeStore) CloseLead(_ context.Context, p repository.CloseLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[p.LeadID]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.Status = p.Status
	f.leads[p.LeadID] = lead
	f.activities = append(f.activities, repository.Activity{
		ID:           uuid.New(),
		LeadID:       p.LeadID,
		AuthorID:     p.ActorID,
		ActivityType: domain.ActivityStatusChange,
		Content:      p.Activity,
		CreatedAt:    time.Now(),
	})
	return lead, nil
}

func (f *fakeStore) CurrentAssignment(_ context.Context, leadID uuid.UUID) (*repository.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var current *repository.Assignment
	for i := range f.assignments {
		a := f.assignments[i]
		if a.LeadID != leadID {
			continue
		}
		if current == nil || a.AssignedAt.After(current.AssignedAt) {
			current = &a
		}
	}
	return current, nil
}

func (f *fakeStore) ListAssignments(_ context.Context, leadID uuid.UUID) ([]repository.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Assignment, 0)
	for _, a := range f.assignments {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateActivity(_ context.Context, p repository.CreateActivityParams) (repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	activity := repository.Activity{
		ID:           uuid.New(),
		LeadID:       p.LeadID,
		AuthorID:     p.AuthorID,
		ActivityType: p.ActivityType,
		Content:      p.Content,
		CreatedAt:    time.Now(),
	}
	f.activities = append(f.activities, activity)
	return activity, nil
}

func (f *fakeStore) GetActivity(_ context.Context, id uuid.UUID) (repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.activities {
		if a.ID == id {
			return a, nil
		}
	}
	return repository.Activity{}, repository.ErrActivityNotFound
}

func (f *fakeStore) UpdateActivityContent(_ context.Context, id uuid.UUID, content string) (repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.activities {
		if a.ID == id {
			f.activities[i].Content = content
			f.activities[i].UpdatedAt = time.Now()
			return f.activities[i], nil
		}
	}
	return repository.Activity{}, repository.ErrActivityNotFound
}

func (f *fakeStore) DeleteActivity(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.activities {
		if a.ID == id {
			f.activities = append(f.activities[:i], f.activities[i+1:]...)
			return nil
		}
	}
	return repository.ErrActivityNotFound
}

func (f *fakeStore) ListActivities(_ context.Context, leadID uuid.UUID) ([]repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Activity, 0)
	for _, a := range f.activities {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) countActivities(leadID uuid.UUID, activityType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.activities {
		if a.LeadID == leadID && a.ActivityType == activityType {
			count++
		}
	}
	return count
}

var _ repository.LeadStore = (*fakeStore)(nil)

type fakeDirectory struct {
	employees map[uuid.UUID]EmployeeRef
}

func (f *fakeDirectory) GetEmployee(_ context.Context, id uuid.UUID) (EmployeeRef, error) {
	e, ok := f.employees[id]
	if !ok {
		return EmployeeRef{}, errors.New("employee not found")
	}
	return e, nil
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Event, 0)
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeDirectory, *recordingBus) {
	t.Helper()
	store := newFakeStore()
	directory := &fakeDirectory{employees: make(map[uuid.UUID]EmployeeRef)}
	bus := &recordingBus{}
	svc := New(store, directory, bus, logger.New("development"))
	return svc, store, directory, bus
}

func seedLead(t *testing.T, store *fakeStore, status string) repository.Lead {
	t.Helper()
	lead, err := store.Create(context.Background(), repository.CreateLeadParams{
		Name:        "Ada Lovelace",
		Phone:       "+15551234567",
		Source:      "WEBSITE",
		Status:      status,
		Temperature: domain.TemperatureCold,
	})
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return lead
}

func adminActor() httpkit.Identity {
	return httpkit.NewIdentity(uuid.New(), []string{domain.RoleAdmin})
}

func salesActor() httpkit.Identity {
	return httpkit.NewIdentity(uuid.New(), []string{domain.RoleSales})
}

func TestAssignCreatesAuditTrail(t *testing.T) {
	svc, store, directory, bus := newTestService(t)
	lead := seedLead(t, store, domain.StatusNew)
	employeeID := uuid.New()
	directory.employees[employeeID] = EmployeeRef{ID: employeeID, Name: "Eve", Email: "eve@example.com"}

	got, err := svc.Assign(context.Background(), lead.ID, employeeID, adminActor())
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}

	if got.Status != domain.StatusAssigned {
		t.Errorf("status = %s, want ASSIGNED", got.Status)
	}
	if len(store.assignments) != 1 {
		t.Errorf("assignments = %d, want 1", len(store.assignments))
	}
	if n := store.countActivities(lead.ID, domain.ActivityTaskCreated); n != 1 {
		t.Errorf("TASK_CREATED activities = %d, want 1", n)
	}
	if n := len(bus.named(events.LeadAssigned{}.EventName())); n != 1 {
		t.Errorf("LeadAssigned events = %d, want 1", n)
	}
}

func TestAssignForbiddenForSales(t *testing.T) {
	svc, store, directory, _ := newTestService(t)
	lead := seedLead(t, store, domain.StatusNew)
	employeeID := uuid.New()
	directory.employees[employeeID] = EmployeeRef{ID: employeeID, Name: "Eve"}

	_, err := svc.Assign(context.Background(), lead.ID, employeeID, salesActor())
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("err = %v, want Forbidden", err)
	}
	if len(store.assignments) != 0 {
		t.Error("no assignment should persist on forbidden call")
	}
}

func TestAssignUnknownEmployee(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	lead := seedLead(t, store, domain.StatusNew)

	_, err := svc.Assign(context.Background(), lead.ID, uuid.New(), adminActor())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestLogActivityCompositeAtomicity(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	lead := seedLead(t, store, domain.StatusAssigned)
	store.failLogComposite = true

	_, err := svc.LogActivity(context.Background(), lead.ID, transport.LogActivityRequest{
		Type:       domain.ActivityCall,
		Content:    "first contact",
		UpdateLead: true,
	}, salesActor())
	if err == nil {
		t.Fatal("expected injected failure")
	}

	if len(store.activities) != 0 {
		t.Errorf("activities = %d, want 0 after failed composite", len(store.activities))
	}
	current, _ := store.GetByID(context.Background(), lead.ID)
	if current.Status != domain.StatusAssigned || current.Temperature != domain.TemperatureCold {
		t.Errorf("lead mutated by failed composite: %s/%s", current.Status, current.Temperature)
	}
}

func TestLogActivityWithUpdateLeadTransitions(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	lead := seedLead(t, store, domain.StatusAssigned)

	_, err := svc.LogActivity(context.Background(), lead.ID, transport.LogActivityRequest{
		Type:       domain.ActivityCall,
		Content:    "first contact",
		UpdateLead: true,
	}, salesActor())
	if err != nil {
		t.Fatalf("LogActivity: %v", err)
	}

	current, _ := store.GetByID(context.Background(), lead.ID)
	if current.Status != domain.StatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", current.Status)
	}
	if current.Temperature != domain.TemperatureWarm {
		t.Errorf("temperature = %s, want WARM", current.Temperature)
	}
	if len(store.activities) != 3 {
		t.Errorf("activities = %d, want 3 (CALL + STATUS_CHANGE + TEMPERATURE_CHANGE)", len(store.activities))
	}
}

func TestEditActivityNoteOnly(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	lead := seedLead(t, store, domain.StatusInProgress)
	author := salesActor()

	call, err := svc.LogActivity(context.Background(), lead.ID, transport.LogActivityRequest{
		Type: domain.ActivityCall, Content: "called them",
	}, author)
	if err != nil {
		t.Fatalf("LogActivity: %v", err)
	}

	if _, err := svc.EditActivity(context.Background(), call.ID, "edited", author); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("editing CALL: err = %v, want Validation", err)
	}
	unchanged, _ := store.GetActivity(context.Background(), call.ID)
	if unchanged.Content != "called them" {
		t.Error("CALL activity content must be unchanged after rejected edit")
	}

	note, err := svc.LogActivity(context.Background(), lead.ID, transport.LogActivityRequest{
		Type: domain.ActivityNote, Content: "original note",
	}, author)
	if err != nil {
		t.Fatalf("LogActivity note: %v", err)
	}

	edited, err := svc.EditActivity(context.Background(), note.ID, "revised note", author)
	if err != nil {
		t.Fatalf("EditActivity note: %v", err)
	}
	if edited.Content != "revised note" {
		t.Errorf("content = %q, want revised note", edited.Content)
	}
	if edited.Type != domain.ActivityNote || !edited.CreatedAt.Equal(note.CreatedAt) {
		t.Error("type and createdAt must be preserved on edit")
	}
}

func TestDeleteActivityRequiresAdmin(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	lead := seedLead(t, store, domain.StatusInProgress)
	note, err := svc.LogActivity(context.Background(), lead.ID, transport.LogActivityRequest{
		Type: domain.ActivityNote, Content: "note",
	}, salesActor())
	if err != nil {
		t.Fatalf("LogActivity: %v", err)
	}

	if err := svc.DeleteActivity(context.Background(), note.ID, salesActor()); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("sales delete: err = %v, want Forbidden", err)
	}
	if err := svc.DeleteActivity(context.Background(), note.ID, adminActor()); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestConvertOrLoseTerminalState(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	lead := seedLead(t, store, domain.StatusConverted)
	before := store.countActivities(lead.ID, domain.ActivityStatusChange)

	reason := "went elsewhere"
	_, err := svc.ConvertOrLose(context.Background(), lead.ID, transport.CloseLeadRequest{
		Action: ActionLost, Reason: &reason,
	}, adminActor())
	if !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("err = %v, want InvalidState", err)
	}

	current, _ := store.GetByID(context.Background(), lead.ID)
	if current.Status != domain.StatusConverted {
		t.Error("lead must remain CONVERTED")
	}
	if after := store.countActivities(lead.ID, domain.ActivityStatusChange); after != before {
		t.Error("no activity may be created for a rejected close")
	}
}

func TestUpdateConversionNotification(t *testing.T) {
	svc, store, directory, bus := newTestService(t)
	lead := seedLead(t, store, domain.StatusNew)
	employeeID := uuid.New()
	directory.employees[employeeID] = EmployeeRef{ID: employeeID, Name: "Eve"}

	if _, err := svc.Assign(context.Background(), lead.ID, employeeID, adminActor()); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	status := domain.StatusConverted
	_, err := svc.Update(context.Background(), lead.ID, transport.UpdateLeadRequest{Status: &status}, adminActor())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	converted := bus.named(events.LeadConverted{}.EventName())
	if len(converted) != 1 {
		t.Fatalf("LeadConverted events = %d, want 1", len(converted))
	}
	event := converted[0].(events.LeadConverted)
	if event.AssignedEmployeeID == nil || *event.AssignedEmployeeID != employeeID {
		t.Error("conversion event must carry the current assignee")
	}

	// Same patch on an already-converted lead triggers nothing further.
	_, err = svc.Update(context.Background(), lead.ID, transport.UpdateLeadRequest{Status: &status}, adminActor())
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if n := len(bus.named(events.LeadConverted{}.EventName())); n != 1 {
		t.Errorf("LeadConverted events after repeat patch = %d, want 1", n)
	}
}

func TestUpdateTerminalStatusFrozen(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	lead := seedLead(t, store, domain.StatusLost)

	status := domain.StatusInProgress
	_, err := svc.Update(context.Background(), lead.ID, transport.UpdateLeadRequest{Status: &status}, adminActor())
	if !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("err = %v, want InvalidState", err)
	}
}

// Full lifecycle walk: NEW -> ASSIGNED -> IN_PROGRESS -> CONVERTED, then a
// rejected LOST.
func TestLeadLifecycleScenario(t *testing.T) {
	svc, store, directory, bus := newTestService(t)
	ctx := context.Background()
	admin := adminActor()
	sales := salesActor()

	lead := seedLead(t, store, domain.StatusNew)
	employeeID := uuid.New()
	directory.employees[employeeID] = EmployeeRef{ID: employeeID, Name: "E1"}

	assigned, err := svc.Assign(ctx, lead.ID, employeeID, admin)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assigned.Status != domain.StatusAssigned {
		t.Fatalf("status = %s, want ASSIGNED", assigned.Status)
	}
	if n := store.countActivities(lead.ID, domain.ActivityTaskCreated); n != 1 {
		t.Fatalf("TASK_CREATED = %d, want 1", n)
	}

	if _, err := svc.LogActivity(ctx, lead.ID, transport.LogActivityRequest{
		Type: domain.ActivityCall, Content: "first contact", UpdateLead: true,
	}, sales); err != nil {
		t.Fatalf("LogActivity: %v", err)
	}
	current, _ := store.GetByID(ctx, lead.ID)
	if current.Status != domain.StatusInProgress || current.Temperature != domain.TemperatureWarm {
		t.Fatalf("lead = %s/%s, want IN_PROGRESS/WARM", current.Status, current.Temperature)
	}

	converted, err := svc.ConvertOrLose(ctx, lead.ID, transport.CloseLeadRequest{Action: ActionConvert}, sales)
	if err != nil {
		t.Fatalf("ConvertOrLose: %v", err)
	}
	if converted.Status != domain.StatusConverted {
		t.Fatalf("status = %s, want CONVERTED", converted.Status)
	}
	if n := len(bus.named(events.LeadConverted{}.EventName())); n != 1 {
		t.Fatalf("LeadConverted events = %d, want 1", n)
	}

	if _, err := svc.ConvertOrLose(ctx, lead.ID, transport.CloseLeadRequest{Action: ActionLost}, sales); !apperr.Is(err, apperr.KindInvalidState) {
		t.Fatalf("close after convert: err = %v, want InvalidState", err)
	}
}
