// Package adapters bridges module ports without introducing import cycles
// between the modules themselves.
package adapters

import (
	"context"

	"github.com/Dina02092005/crm-sub000/internal/employees"
	leadservice "github.com/Dina02092005/crm-sub000/internal/leads/service"

	"github.com/google/uuid"
)

// EmployeeDirectoryAdapter exposes employee lookups to the leads module.
type EmployeeDirectoryAdapter struct {
	repo *employees.Repository
}

func NewEmployeeDirectoryAdapter(repo *employees.Repository) *EmployeeDirectoryAdapter {
	return &EmployeeDirectoryAdapter{repo: repo}
}

func (a *EmployeeDirectoryAdapter) GetEmployee(ctx context.Context, id uuid.UUID) (leadservice.EmployeeRef, error) {
	employee, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return leadservice.EmployeeRef{}, err
	}
	return leadservice.EmployeeRef{
		ID:    employee.ID,
		Name:  employee.Name,
		Email: employee.Email,
	}, nil
}
