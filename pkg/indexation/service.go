package indexation

import (
	"context"
	"fmt"

	"github.com/presu/presu/pkg/tenant"
)

type Service interface {
	GetRates(ctx context.Context, year int) (map[int]float64, error)
	// SetRate stores a monthly rate; a rate of exactly zero removes the row,
	// matching the sparse-cell convention of the grids.
	SetRate(ctx context.Context, year int, month int, rate float64) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetRates(ctx context.Context, year int) (map[int]float64, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.GetRates(ctx, tenantId, year)
}

func (s *ServiceImpl) SetRate(ctx context.Context, year int, month int, rate float64) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid month: %d", month)
	}
	if rate == 0 {
		_, err := s.repo.DeleteRate(ctx, tenantId, year, month)
		return err
	}
	return s.repo.SetRate(ctx, tenantId, year, month, rate)
}
