package budget

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
)

// StubRepository is an in-memory Repository for tests. It enforces the same
// unique category name constraint as the database schema and can be told to
// reject cell writes to exercise the rollback path.
type StubRepository struct {
	// FailCellWrites makes UpsertValue, DeleteValue and UpdateConceptBase
	// fail, simulating a rejected write.
	FailCellWrites bool

	nextId     int64
	categories map[int64]Category
	concepts   map[int64]Concept
	values     map[stubValueKey]float64
}

type stubValueKey struct {
	tenantId int
	year     int
	key      ValueKey
}

var errWriteRejected = errors.New("write rejected by store")

func NewStubRepository() *StubRepository {
	return &StubRepository{
		categories: make(map[int64]Category),
		concepts:   make(map[int64]Concept),
		values:     make(map[stubValueKey]float64),
	}
}

func (r *StubRepository) StoreCategory(_ context.Context, _ int, c Category) (int64, error) {
	for _, existing := range r.categories {
		if existing.Name == c.Name {
			return 0, &pgconn.PgError{Code: "23505", ConstraintName: "budget_category_tenant_id_name_key"}
		}
	}
	r.nextId++
	c.Id = r.nextId
	c.Concepts = nil
	r.categories[c.Id] = c
	return c.Id, nil
}

func (r *StubRepository) ListCategories(_ context.Context, _ int) ([]Category, error) {
	categories := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		c.Concepts = nil
		for _, concept := range r.concepts {
			if concept.CategoryId == c.Id {
				c.Concepts = append(c.Concepts, concept)
			}
		}
		sort.Slice(c.Concepts, func(i, j int) bool { return c.Concepts[i].Id < c.Concepts[j].Id })
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Position < categories[j].Position })
	return categories, nil
}

func (r *StubRepository) UpdateCategory(_ context.Context, _ int, c Category) (bool, error) {
	if _, ok := r.categories[c.Id]; !ok {
		return false, nil
	}
	c.Concepts = nil
	r.categories[c.Id] = c
	return true, nil
}

func (r *StubRepository) DeleteCategory(_ context.Context, _ int, id int64) (bool, error) {
	if _, ok := r.categories[id]; !ok {
		return false, nil
	}
	delete(r.categories, id)
	return true, nil
}

func (r *StubRepository) FindMaxCategoryPosition(_ context.Context, _ int) (int, error) {
	maxPosition := 0
	for _, c := range r.categories {
		if c.Position > maxPosition {
			maxPosition = c.Position
		}
	}
	return maxPosition, nil
}

func (r *StubRepository) StoreConcept(_ context.Context, _ int, c Concept) (int64, error) {
	r.nextId++
	c.Id = r.nextId
	r.concepts[c.Id] = c
	return c.Id, nil
}

func (r *StubRepository) GetConcept(_ context.Context, _ int, id int64) (Concept, error) {
	c, ok := r.concepts[id]
	if !ok {
		return Concept{}, ErrConceptNotFound
	}
	return c, nil
}

func (r *StubRepository) UpdateConcept(_ context.Context, _ int, c Concept) (bool, error) {
	if _, ok := r.concepts[c.Id]; !ok {
		return false, nil
	}
	r.concepts[c.Id] = c
	return true, nil
}

func (r *StubRepository) UpdateConceptBase(_ context.Context, _ int, id int64, base float64) (bool, error) {
	if r.FailCellWrites {
		return false, errWriteRejected
	}
	c, ok := r.concepts[id]
	if !ok {
		return false, nil
	}
	c.BaseValue = base
	r.concepts[id] = c
	return true, nil
}

func (r *StubRepository) DeleteConcept(_ context.Context, _ int, id int64) (bool, error) {
	if _, ok := r.concepts[id]; !ok {
		return false, nil
	}
	delete(r.concepts, id)
	return true, nil
}

func (r *StubRepository) GetValues(_ context.Context, tenantId int, year int) (map[ValueKey]float64, error) {
	values := make(map[ValueKey]float64)
	for k, v := range r.values {
		if k.tenantId == tenantId && k.year == year {
			values[k.key] = v
		}
	}
	return values, nil
}

func (r *StubRepository) UpsertValue(_ context.Context, tenantId int, year int, key ValueKey, value float64) error {
	if r.FailCellWrites {
		return errWriteRejected
	}
	r.values[stubValueKey{tenantId, year, key}] = value
	return nil
}

func (r *StubRepository) DeleteValue(_ context.Context, tenantId int, year int, key ValueKey) (bool, error) {
	if r.FailCellWrites {
		return false, errWriteRejected
	}
	k := stubValueKey{tenantId, year, key}
	if _, ok := r.values[k]; !ok {
		return false, nil
	}
	delete(r.values, k)
	return true, nil
}
