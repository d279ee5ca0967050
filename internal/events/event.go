// Package events defines the domain events exchanged between modules.
package events

import (
	platformevents "github.com/Dina02092005/crm-sub000/platform/events"

	"github.com/google/uuid"
)

// Re-export core types so modules only import internal/events.
type (
	Event       = platformevents.Event
	BaseEvent   = platformevents.BaseEvent
	Handler     = platformevents.Handler
	HandlerFunc = platformevents.HandlerFunc
	Bus         = platformevents.Bus
)

// NewBaseEvent creates a new base event with the current timestamp.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is captured.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	LeadName string    `json:"leadName"`
	Source   string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadAssigned is published after an assignment transaction commits.
type LeadAssigned struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	LeadName     string    `json:"leadName"`
	EmployeeID   uuid.UUID `json:"employeeId"`
	AssignedByID uuid.UUID `json:"assignedById"`
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// LeadConverted is published when a lead reaches CONVERTED, either through
// the explicit conversion operation or a detected status patch.
type LeadConverted struct {
	BaseEvent
	LeadID             uuid.UUID  `json:"leadId"`
	LeadName           string     `json:"leadName"`
	AssignedEmployeeID *uuid.UUID `json:"assignedEmployeeId,omitempty"`
	ConvertedByID      uuid.UUID  `json:"convertedById"`
}

func (e LeadConverted) EventName() string { return "leads.converted" }

// LeadLost is published when a lead is marked LOST.
type LeadLost struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	LeadName string    `json:"leadName"`
	Reason   string    `json:"reason,omitempty"`
	LostByID uuid.UUID `json:"lostById"`
}

func (e LeadLost) EventName() string { return "leads.lost" }

// =============================================================================
// Task Domain Events
// =============================================================================

// TaskCreated is published when a follow-up task is created for a lead.
type TaskCreated struct {
	BaseEvent
	TaskID       uuid.UUID  `json:"taskId"`
	LeadID       uuid.UUID  `json:"leadId"`
	Title        string     `json:"title"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	CreatedByID  uuid.UUID  `json:"createdById"`
}

func (e TaskCreated) EventName() string { return "tasks.created" }
