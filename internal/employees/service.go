package employees

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Dina02092005/crm-sub000/internal/employees/password"
	"github.com/Dina02092005/crm-sub000/internal/leads/domain"
	"github.com/Dina02092005/crm-sub000/platform/apperr"
	"github.com/Dina02092005/crm-sub000/platform/config"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Service struct {
	repo *Repository
	cfg  config.AuthConfig
	log  *logger.Logger
}

func NewService(repo *Repository, cfg config.AuthConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

type EmployeeResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginResult struct {
	AccessToken string           `json:"accessToken"`
	Employee    EmployeeResponse `json:"employee"`
}

// Login verifies credentials and issues a short-lived access token carrying
// the employee's roles. Credential and lookup failures are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (LoginResult, error) {
	employee, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}
	if err := password.Compare(employee.PasswordHash, plainPassword); err != nil {
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}
	if !employee.IsActive {
		return LoginResult{}, apperr.Forbidden("account is inactive")
	}

	token, err := s.signJWT(employee.ID, employee.Roles)
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.KindInternal, "token signing failed", err)
	}

	return LoginResult{
		AccessToken: token,
		Employee:    toEmployeeResponse(employee),
	}, nil
}

type CreateEmployeeRequest struct {
	Name     string   `json:"name" validate:"required,max=120"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,oneof=ADMIN MANAGER SALES"`
}

func (s *Service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return EmployeeResponse{}, apperr.Wrap(apperr.KindInternal, "password hashing failed", err)
	}

	employee, err := s.repo.Create(ctx, CreateParams{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Roles:        req.Roles,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return EmployeeResponse{}, apperr.Validation("email already in use")
		}
		return EmployeeResponse{}, apperr.Wrap(apperr.KindInternal, "employee store failure", err)
	}

	return toEmployeeResponse(employee), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (EmployeeResponse, error) {
	employee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return EmployeeResponse{}, apperr.NotFound("employee not found")
		}
		return EmployeeResponse{}, apperr.Wrap(apperr.KindInternal, "employee store failure", err)
	}
	return toEmployeeResponse(employee), nil
}

func (s *Service) List(ctx context.Context) ([]EmployeeResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "employee store failure", err)
	}

	out := make([]EmployeeResponse, len(items))
	for i, e := range items {
		out[i] = toEmployeeResponse(e)
	}
	return out, nil
}

// ListAdmins returns the active admin accounts, used for fan-out
// notifications.
func (s *Service) ListAdmins(ctx context.Context) ([]EmployeeResponse, error) {
	items, err := s.repo.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "employee store failure", err)
	}

	out := make([]EmployeeResponse, len(items))
	for i, e := range items {
		out[i] = toEmployeeResponse(e)
	}
	return out, nil
}

func (s *Service) signJWT(employeeID uuid.UUID, roles []string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   employeeID.String(),
		"type":  "access",
		"roles": roles,
		"exp":   time.Now().Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Roles:     e.Roles,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
	}
}
