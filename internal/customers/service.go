package customers

import (
	"context"
	"errors"
	"time"

	leadrepo "github.com/Dina02092005/crm-sub000/internal/leads/repository"
	"github.com/Dina02092005/crm-sub000/platform/apperr"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Total int                `json:"total"`
}

// ProvisionFromLead creates the customer record for a freshly converted
// lead. Re-converting the same lead is a no-op: the unique lead_id
// constraint absorbs the duplicate.
func (s *Service) ProvisionFromLead(ctx context.Context, lead leadrepo.Lead) error {
	_, err := s.repo.Create(ctx, CreateParams{
		LeadID: lead.ID,
		Name:   lead.Name,
		Email:  lead.Email,
		Phone:  lead.Phone,
	})
	if errors.Is(err, ErrAlreadyExists) {
		s.log.Debug("customer already provisioned", "lead_id", lead.ID)
		return nil
	}
	return err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (CustomerResponse, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return CustomerResponse{}, apperr.NotFound("customer not found")
		}
		return CustomerResponse{}, apperr.Wrap(apperr.KindInternal, "customer store failure", err)
	}
	return toCustomerResponse(customer), nil
}

func (s *Service) List(ctx context.Context, page, pageSize int) (CustomerListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return CustomerListResponse{}, apperr.Wrap(apperr.KindInternal, "customer store failure", err)
	}

	out := CustomerListResponse{Items: make([]CustomerResponse, len(items)), Total: total}
	for i, c := range items {
		out.Items[i] = toCustomerResponse(c)
	}
	return out, nil
}

func toCustomerResponse(c Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		LeadID:    c.LeadID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}
