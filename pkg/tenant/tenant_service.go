package tenant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service interface {
	GetCurrentTenant(ctx context.Context) (Tenant, error)
	GetTenantByUid(ctx context.Context, uid string) (Tenant, error)
	CreateTenant(ctx context.Context, t Tenant) (Tenant, error)
	UpdateCurrentTenant(ctx context.Context, t Tenant) (Tenant, error)
	GetAllTenants(ctx context.Context) ([]Tenant, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetCurrentTenant(ctx context.Context) (Tenant, error) {
	tenantId, err := CurrentId(ctx)
	if err != nil {
		return Tenant{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.Get(ctx, tenantId)
}

func (s *ServiceImpl) GetTenantByUid(ctx context.Context, uid string) (Tenant, error) {
	return s.repo.GetByUid(ctx, uid)
}

func (s *ServiceImpl) CreateTenant(ctx context.Context, t Tenant) (Tenant, error) {
	if t.Uid == "" {
		t.Uid = uuid.NewString()
	}
	if t.Currency == "" {
		t.Currency = "ARS"
	}
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return Tenant{}, err
	}
	t.Id = id
	return t, nil
}

func (s *ServiceImpl) UpdateCurrentTenant(ctx context.Context, t Tenant) (Tenant, error) {
	current, err := s.GetCurrentTenant(ctx)
	if err != nil {
		return Tenant{}, err
	}
	t.Id = current.Id
	t.Uid = current.Uid
	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return Tenant{}, err
	}
	if !updated {
		return Tenant{}, ErrTenantNotFound
	}
	return t, nil
}

func (s *ServiceImpl) GetAllTenants(ctx context.Context) ([]Tenant, error) {
	return s.repo.GetAll(ctx)
}
