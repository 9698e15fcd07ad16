package tenant

import (
	"context"
)

type StubRepo struct {
	nextId int
	data   map[int]Tenant
}

func NewStubRepo() *StubRepo {
	return &StubRepo{data: map[int]Tenant{}}
}

func (s *StubRepo) Create(ctx context.Context, t Tenant) (int, error) {
	s.nextId++
	t.Id = s.nextId
	s.data[t.Id] = t
	return t.Id, nil
}

func (s *StubRepo) Get(ctx context.Context, id int) (Tenant, error) {
	t, ok := s.data[id]
	if !ok {
		return Tenant{}, ErrTenantNotFound
	}
	return t, nil
}

func (s *StubRepo) GetByUid(ctx context.Context, uid string) (Tenant, error) {
	for _, t := range s.data {
		if t.Uid == uid {
			return t, nil
		}
	}
	return Tenant{}, ErrTenantNotFound
}

func (s *StubRepo) GetAll(ctx context.Context) ([]Tenant, error) {
	tenants := make([]Tenant, 0, len(s.data))
	for _, t := range s.data {
		tenants = append(tenants, t)
	}
	return tenants, nil
}

func (s *StubRepo) Update(ctx context.Context, t Tenant) (bool, error) {
	if _, ok := s.data[t.Id]; !ok {
		return false, nil
	}
	s.data[t.Id] = t
	return true, nil
}

func (s *StubRepo) Cleanup() {
	s.data = map[int]Tenant{}
}
