package indexation

import "context"

type rateKey struct {
	tenantId int
	year     int
	month    int
}

type StubRepository struct {
	data map[rateKey]float64
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[rateKey]float64{}}
}

func (s *StubRepository) GetRates(ctx context.Context, tenantId int, year int) (map[int]float64, error) {
	rates := make(map[int]float64)
	for key, rate := range s.data {
		if key.tenantId == tenantId && key.year == year {
			rates[key.month] = rate
		}
	}
	return rates, nil
}

func (s *StubRepository) SetRate(ctx context.Context, tenantId int, year int, month int, rate float64) error {
	s.data[rateKey{tenantId, year, month}] = rate
	return nil
}

func (s *StubRepository) DeleteRate(ctx context.Context, tenantId int, year int, month int) (bool, error) {
	key := rateKey{tenantId, year, month}
	_, ok := s.data[key]
	delete(s.data, key)
	return ok, nil
}

func (s *StubRepository) Cleanup() {
	s.data = map[rateKey]float64{}
}
