// Package transport defines request and response DTOs for the leads module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	Name   string  `json:"name" validate:"required,max=200"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone  string  `json:"phone" validate:"required,max=32"`
	Source string  `json:"source" validate:"required,oneof=WEBSITE REFERRAL WHATSAPP PHONE WALK_IN OTHER"`
}

type AssignLeadRequest struct {
	EmployeeID uuid.UUID `json:"employeeId" validate:"required"`
}

type LogActivityRequest struct {
	Type       string `json:"type" validate:"required"`
	Content    string `json:"content" validate:"required,max=2000"`
	UpdateLead bool   `json:"updateLead"`
}

type UpdateLeadRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Source      *string `json:"source,omitempty"`
	Status      *string `json:"status,omitempty"`
	Temperature *string `json:"temperature,omitempty"`
}

type EditActivityRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type CloseLeadRequest struct {
	Action string  `json:"action" validate:"required,oneof=CONVERT LOST"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type LeadResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email,omitempty"`
	Phone       string    `json:"phone"`
	Source      string    `json:"source"`
	Status      string    `json:"status"`
	Temperature string    `json:"temperature"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AssignmentResponse struct {
	ID           uuid.UUID `json:"id"`
	LeadID       uuid.UUID `json:"leadId"`
	EmployeeID   uuid.UUID `json:"employeeId"`
	AssignedByID uuid.UUID `json:"assignedById"`
	AssignedAt   time.Time `json:"assignedAt"`
}

type ActivityResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	AuthorID  uuid.UUID `json:"authorId"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LeadDetailResponse is an explicit read-side projection: the lead with its
// timeline, assignment history and resolved current assignee.
type LeadDetailResponse struct {
	Lead            LeadResponse         `json:"lead"`
	CurrentAssignee *uuid.UUID           `json:"currentAssignee,omitempty"`
	Assignments     []AssignmentResponse `json:"assignments"`
	Activities      []ActivityResponse   `json:"activities"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}
