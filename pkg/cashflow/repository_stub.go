package cashflow

import (
	"context"
	"errors"
	"sort"
)

// StubRepository is an in-memory Repository for tests. It can be told to
// reject entry writes to exercise the rollback path.
type StubRepository struct {
	FailEntryWrites bool

	nextId   int64
	sections map[int64]Section
	items    map[int64]Item
	entries  map[stubEntryKey]float64
}

type stubEntryKey struct {
	tenantId int
	year     int
	key      EntryKey
}

var errWriteRejected = errors.New("write rejected by store")

func NewStubRepository() *StubRepository {
	return &StubRepository{
		sections: make(map[int64]Section),
		items:    make(map[int64]Item),
		entries:  make(map[stubEntryKey]float64),
	}
}

func (r *StubRepository) StoreSection(_ context.Context, _ int, s Section) (int64, error) {
	r.nextId++
	s.Id = r.nextId
	s.Items = nil
	r.sections[s.Id] = s
	return s.Id, nil
}

func (r *StubRepository) ListSections(_ context.Context, _ int) ([]Section, error) {
	sections := make([]Section, 0, len(r.sections))
	for _, s := range r.sections {
		s.Items = nil
		for _, item := range r.items {
			if item.SectionId == s.Id {
				s.Items = append(s.Items, item)
			}
		}
		sort.Slice(s.Items, func(i, j int) bool { return s.Items[i].Id < s.Items[j].Id })
		sections = append(sections, s)
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Position < sections[j].Position })
	return sections, nil
}

func (r *StubRepository) UpdateSection(_ context.Context, _ int, s Section) (bool, error) {
	if _, ok := r.sections[s.Id]; !ok {
		return false, nil
	}
	s.Items = nil
	r.sections[s.Id] = s
	return true, nil
}

func (r *StubRepository) DeleteSection(_ context.Context, _ int, id int64) (bool, error) {
	if _, ok := r.sections[id]; !ok {
		return false, nil
	}
	delete(r.sections, id)
	return true, nil
}

func (r *StubRepository) FindMaxSectionPosition(_ context.Context, _ int) (int, error) {
	maxPosition := 0
	for _, s := range r.sections {
		if s.Position > maxPosition {
			maxPosition = s.Position
		}
	}
	return maxPosition, nil
}

func (r *StubRepository) StoreItem(_ context.Context, _ int, item Item) (int64, error) {
	if _, ok := r.sections[item.SectionId]; !ok {
		return 0, ErrSectionNotFound
	}
	r.nextId++
	item.Id = r.nextId
	r.items[item.Id] = item
	return item.Id, nil
}

func (r *StubRepository) UpdateItem(_ context.Context, _ int, item Item) (bool, error) {
	if _, ok := r.items[item.Id]; !ok {
		return false, nil
	}
	r.items[item.Id] = item
	return true, nil
}

func (r *StubRepository) DeleteItem(_ context.Context, _ int, id int64) (bool, error) {
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *StubRepository) GetEntries(_ context.Context, tenantId int, year int) (map[EntryKey]float64, error) {
	entries := make(map[EntryKey]float64)
	for k, v := range r.entries {
		if k.tenantId == tenantId && k.year == year {
			entries[k.key] = v
		}
	}
	return entries, nil
}

func (r *StubRepository) UpsertEntry(_ context.Context, tenantId int, year int, key EntryKey, value float64) error {
	if r.FailEntryWrites {
		return errWriteRejected
	}
	r.entries[stubEntryKey{tenantId, year, key}] = value
	return nil
}

func (r *StubRepository) DeleteEntry(_ context.Context, tenantId int, year int, key EntryKey) (bool, error) {
	if r.FailEntryWrites {
		return false, errWriteRejected
	}
	k := stubEntryKey{tenantId, year, key}
	if _, ok := r.entries[k]; !ok {
		return false, nil
	}
	delete(r.entries, k)
	return true, nil
}
