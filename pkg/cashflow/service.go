package cashflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/presu/presu/pkg/grid"
	"github.com/presu/presu/pkg/tenant"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")
var ErrInvalidKind = errors.New("section kind must be income or expense")

// GridData is an assembled cashflow grid for one year. The grid carries the
// per-section totals, the TOTAL GENERAL row, the markup-derived rows and the
// cumulative income-minus-expense column.
type GridData struct {
	Year     int
	Sections []Section
	Grid     *grid.Grid
}

type Service interface {
	CreateSection(ctx context.Context, s Section) (Section, error)
	UpdateSection(ctx context.Context, s Section) (bool, error)
	DeleteSection(ctx context.Context, id int64) (bool, error)

	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItem(ctx context.Context, item Item) (bool, error)
	DeleteItem(ctx context.Context, id int64) (bool, error)

	GetGrid(ctx context.Context, year int) (*GridData, error)
	// EditCell runs one full edit cycle for a cell, rolling back and reloading
	// from the store when the write is rejected.
	EditCell(ctx context.Context, year int, sectionId, itemId int64, month int, rawText string) (*GridData, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) CreateSection(ctx context.Context, section Section) (Section, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Section{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if section.Kind != KindIncome && section.Kind != KindExpense {
		return Section{}, ErrInvalidKind
	}

	maxPosition, err := s.repo.FindMaxSectionPosition(ctx, tenantId)
	if err != nil {
		return Section{}, err
	}
	section.Position = maxPosition + 100

	id, err := s.repo.StoreSection(ctx, tenantId, section)
	if err != nil {
		return Section{}, err
	}
	section.Id = id
	return section, nil
}

func (s *ServiceImpl) UpdateSection(ctx context.Context, section Section) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if section.Kind != KindIncome && section.Kind != KindExpense {
		return false, ErrInvalidKind
	}
	return s.repo.UpdateSection(ctx, tenantId, section)
}

func (s *ServiceImpl) DeleteSection(ctx context.Context, id int64) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.DeleteSection(ctx, tenantId, id)
}

func (s *ServiceImpl) CreateItem(ctx context.Context, item Item) (Item, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	id, err := s.repo.StoreItem(ctx, tenantId, item)
	if err != nil {
		return Item{}, err
	}
	item.Id = id
	return item, nil
}

func (s *ServiceImpl) UpdateItem(ctx context.Context, item Item) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.UpdateItem(ctx, tenantId, item)
}

func (s *ServiceImpl) DeleteItem(ctx context.Context, id int64) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.DeleteItem(ctx, tenantId, id)
}

func (s *ServiceImpl) GetGrid(ctx context.Context, year int) (*GridData, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.loadGrid(ctx, tenantId, year)
}

func (s *ServiceImpl) EditCell(ctx context.Context, year int, sectionId, itemId int64, month int, rawText string) (*GridData, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}

	data, err := s.loadGrid(ctx, tenantId, year)
	if err != nil {
		return nil, err
	}
	if itemId != 0 {
		if !hasItem(data.Sections, sectionId, itemId) {
			return nil, ErrItemNotFound
		}
	} else {
		section, ok := findSection(data.Sections, sectionId)
		if !ok {
			return nil, ErrSectionNotFound
		}
		if len(section.Items) > 0 {
			return nil, fmt.Errorf("section %d has items, edit an item cell", sectionId)
		}
	}

	store := &entryStore{repo: s.repo, tenantId: tenantId, year: year}
	sync := grid.NewSync(data.Grid, store, s.reloadFunc(data, tenantId, year))

	key := grid.CellKey{Row: grid.RowKey{ParentID: sectionId, ChildID: itemId}, Column: month}
	sync.BeginEdit(key)
	sync.Keystroke(key, rawText)
	if err := sync.CommitEdit(ctx, key); err != nil {
		// the grid was rolled back and reloaded; surface the store's message
		return data, err
	}
	return data, nil
}

func (s *ServiceImpl) loadGrid(ctx context.Context, tenantId int, year int) (*GridData, error) {
	sections, err := s.repo.ListSections(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.GetEntries(ctx, tenantId, year)
	if err != nil {
		return nil, err
	}

	aggregates := make([]grid.Aggregate, 0, len(sections))
	for _, section := range sections {
		agg := grid.Aggregate{ID: section.Id, Name: section.Name, Kind: gridKind(section.Kind), Markup: section.Markup}
		for _, item := range section.Items {
			agg.Rows = append(agg.Rows, grid.Row{ID: item.Id, Name: item.Name})
		}
		aggregates = append(aggregates, agg)
	}

	g := grid.New(yearMonths(), aggregates)
	populate(g, entries)
	return &GridData{Year: year, Sections: sections, Grid: g}, nil
}

func (s *ServiceImpl) reloadFunc(data *GridData, tenantId int, year int) grid.ReloadFunc {
	return func(ctx context.Context) error {
		entries, err := s.repo.GetEntries(ctx, tenantId, year)
		if err != nil {
			return err
		}
		data.Grid.ResetValues()
		populate(data.Grid, entries)
		return nil
	}
}

func populate(g *grid.Grid, entries map[EntryKey]float64) {
	for key, value := range entries {
		g.SetCommitted(grid.CellKey{
			Row:    grid.RowKey{ParentID: key.SectionId, ChildID: key.ItemId},
			Column: key.Month,
		}, value)
	}
}

// entryStore adapts the repository to the grid's CellStore.
type entryStore struct {
	repo     Repository
	tenantId int
	year     int
}

func (es *entryStore) Save(ctx context.Context, key grid.CellKey, value float64) error {
	entryKey := EntryKey{SectionId: key.Row.ParentID, ItemId: key.Row.ChildID, Month: key.Column}
	return es.repo.UpsertEntry(ctx, es.tenantId, es.year, entryKey, value)
}

func (es *entryStore) Delete(ctx context.Context, key grid.CellKey) error {
	entryKey := EntryKey{SectionId: key.Row.ParentID, ItemId: key.Row.ChildID, Month: key.Column}
	_, err := es.repo.DeleteEntry(ctx, es.tenantId, es.year, entryKey)
	return err
}

func gridKind(kind Kind) grid.Kind {
	if kind == KindIncome {
		return grid.KindIncome
	}
	return grid.KindExpense
}

func hasItem(sections []Section, sectionId, itemId int64) bool {
	for _, section := range sections {
		if section.Id != sectionId {
			continue
		}
		for _, item := range section.Items {
			if item.Id == itemId {
				return true
			}
		}
	}
	return false
}

func findSection(sections []Section, id int64) (Section, bool) {
	for _, section := range sections {
		if section.Id == id {
			return section, true
		}
	}
	return Section{}, false
}

func yearMonths() []int {
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
}
