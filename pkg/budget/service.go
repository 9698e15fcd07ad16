package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/presu/presu/internal/event_bus"
	"github.com/presu/presu/internal/utils"
	"github.com/presu/presu/pkg/grid"
	"github.com/presu/presu/pkg/indexation"
	"github.com/presu/presu/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")
var ErrInactiveMonth = errors.New("concept is not active in that month")

// RatesReader provides the configured inflation rates for a year.
// Implemented by the indexation service.
type RatesReader interface {
	GetRates(ctx context.Context, year int) (map[int]float64, error)
}

// GridData is an assembled budget grid for one year.
type GridData struct {
	Year       int
	Categories []Category
	Grid       *grid.Grid
}

type Service interface {
	CreateCategory(ctx context.Context, name string) (Category, error)
	UpdateCategory(ctx context.Context, c Category) (bool, error)
	DeleteCategory(ctx context.Context, id int64) (bool, error)

	CreateConcept(ctx context.Context, c Concept) (Concept, error)
	UpdateConcept(ctx context.Context, c Concept) (bool, error)
	DeleteConcept(ctx context.Context, id int64) (bool, error)

	GetGrid(ctx context.Context, year int) (*GridData, error)
	// EditCell runs one full edit cycle for a cell: the raw keystroke buffer
	// is normalized, parsed and committed optimistically; a rejected write is
	// rolled back and the returned grid reflects the reloaded store state.
	EditCell(ctx context.Context, year int, categoryId, conceptId int64, month int, rawText string) (*GridData, error)
}

type ServiceImpl struct {
	repo     Repository
	rates    RatesReader
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, rates RatesReader, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, rates: rates, eventBus: eventBus, clock: clock}
}

func (s *ServiceImpl) CreateCategory(ctx context.Context, name string) (Category, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current tenant: %w", err)
	}

	maxPosition, err := s.repo.FindMaxCategoryPosition(ctx, tenantId)
	if err != nil {
		return Category{}, err
	}
	c := Category{Name: name, Position: maxPosition + 100}

	id, err := s.repo.StoreCategory(ctx, tenantId, c)
	if isUniqueViolation(err) {
		// duplicate name: retry once with a disambiguated name before failing
		c.Name = fmt.Sprintf("%s-%d", name, s.clock.Now().Unix())
		log.Warnf("category name %q already exists, retrying as %q", name, c.Name)
		id, err = s.repo.StoreCategory(ctx, tenantId, c)
	}
	if err != nil {
		return Category{}, err
	}
	c.Id = id

	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, "budget.category.created", event_bus.BudgetCategoryCreated{
		Id:   c.Id,
		Name: c.Name,
	})); err != nil {
		log.Errorf("failed to publish category created event: %v", err)
	}

	return c, nil
}

func (s *ServiceImpl) UpdateCategory(ctx context.Context, c Category) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.UpdateCategory(ctx, tenantId, c)
}

func (s *ServiceImpl) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.DeleteCategory(ctx, tenantId, id)
}

func (s *ServiceImpl) CreateConcept(ctx context.Context, c Concept) (Concept, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Concept{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if c.FirstActiveMonth == 0 && len(c.ActiveMonths) > 0 {
		c.FirstActiveMonth = minMonth(c.ActiveMonths)
	}
	id, err := s.repo.StoreConcept(ctx, tenantId, c)
	if err != nil {
		return Concept{}, err
	}
	c.Id = id
	return c, nil
}

func (s *ServiceImpl) UpdateConcept(ctx context.Context, c Concept) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if c.FirstActiveMonth == 0 && len(c.ActiveMonths) > 0 {
		c.FirstActiveMonth = minMonth(c.ActiveMonths)
	}
	return s.repo.UpdateConcept(ctx, tenantId, c)
}

func (s *ServiceImpl) DeleteConcept(ctx context.Context, id int64) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.DeleteConcept(ctx, tenantId, id)
}

func (s *ServiceImpl) GetGrid(ctx context.Context, year int) (*GridData, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.loadGrid(ctx, tenantId, year)
}

func (s *ServiceImpl) EditCell(ctx context.Context, year int, categoryId, conceptId int64, month int, rawText string) (*GridData, error) {
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

	concepts := conceptsById(data.Categories)
	if conceptId != 0 {
		c, ok := concepts[conceptId]
		if !ok || c.CategoryId != categoryId {
			return nil, ErrConceptNotFound
		}
		if !c.IsActiveIn(month) {
			return nil, ErrInactiveMonth
		}
	} else {
		cat, ok := findCategory(data.Categories, categoryId)
		if !ok {
			return nil, ErrCategoryNotFound
		}
		if len(cat.Concepts) > 0 {
			return nil, fmt.Errorf("category %d has concepts, edit a concept cell", categoryId)
		}
	}

	store := &cellStore{repo: s.repo, tenantId: tenantId, year: year, concepts: concepts}
	sync := grid.NewSync(data.Grid, store, s.reloadFunc(data, tenantId, year))

	key := grid.CellKey{Row: grid.RowKey{ParentID: categoryId, ChildID: conceptId}, Column: month}
	sync.BeginEdit(key)
	sync.Keystroke(key, rawText)
	if err := sync.CommitEdit(ctx, key); err != nil {
		// the grid was rolled back and reloaded; surface the store's message
		return data, err
	}
	return data, nil
}

func (s *ServiceImpl) loadGrid(ctx context.Context, tenantId int, year int) (*GridData, error) {
	categories, err := s.repo.ListCategories(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	values, err := s.repo.GetValues(ctx, tenantId, year)
	if err != nil {
		return nil, err
	}
	rates, err := s.rates.GetRates(ctx, year)
	if err != nil {
		return nil, err
	}

	aggregates := make([]grid.Aggregate, 0, len(categories))
	for _, cat := range categories {
		agg := grid.Aggregate{ID: cat.Id, Name: cat.Name, Kind: grid.KindNeutral}
		for _, c := range cat.Concepts {
			agg.Rows = append(agg.Rows, grid.Row{ID: c.Id, Name: c.Name, RetainOverlay: c.Indexed})
		}
		aggregates = append(aggregates, agg)
	}

	g := grid.New(yearMonths(), aggregates)
	populate(g, categories, values, rates)
	return &GridData{Year: year, Categories: categories, Grid: g}, nil
}

// reloadFunc rebuilds the grid's committed values from the store, used after
// a rejected write and after saves that feed computed columns.
func (s *ServiceImpl) reloadFunc(data *GridData, tenantId int, year int) grid.ReloadFunc {
	return func(ctx context.Context) error {
		categories, err := s.repo.ListCategories(ctx, tenantId)
		if err != nil {
			return err
		}
		values, err := s.repo.GetValues(ctx, tenantId, year)
		if err != nil {
			return err
		}
		rates, err := s.rates.GetRates(ctx, year)
		if err != nil {
			return err
		}
		data.Categories = categories
		data.Grid.ResetValues()
		populate(data.Grid, categories, values, rates)
		return nil
	}
}

// populate fills the grid's committed values. Indexed concepts get derived,
// compounded values for their active months; stored cells of months a concept
// is inactive in are skipped so they never contribute to a total.
func populate(g *grid.Grid, categories []Category, values map[ValueKey]float64, rates map[int]float64) {
	for _, cat := range categories {
		for _, c := range cat.Concepts {
			for _, month := range g.Columns() {
				if !c.IsActiveIn(month) {
					continue
				}
				key := grid.CellKey{Row: grid.RowKey{ParentID: cat.Id, ChildID: c.Id}, Column: month}
				if c.Indexed {
					g.SetCommitted(key, indexation.EffectiveValue(c.BaseValue, c.FirstActiveMonth, rates, month))
				} else {
					g.SetCommitted(key, values[ValueKey{CategoryId: cat.Id, ConceptId: c.Id, Month: month}])
				}
			}
		}
		if len(cat.Concepts) == 0 {
			for _, month := range g.Columns() {
				key := grid.CellKey{Row: grid.RowKey{ParentID: cat.Id}, Column: month}
				g.SetCommitted(key, values[ValueKey{CategoryId: cat.Id, Month: month}])
			}
		}
	}
}

// cellStore adapts the repository to the grid's CellStore. Editing a cell of
// an indexed concept replaces its base value; everything else is a plain
// upsert or delete of the stored cell.
type cellStore struct {
	repo     Repository
	tenantId int
	year     int
	concepts map[int64]Concept
}

func (cs *cellStore) Save(ctx context.Context, key grid.CellKey, value float64) error {
	if c, ok := cs.concepts[key.Row.ChildID]; ok && c.Indexed {
		updated, err := cs.repo.UpdateConceptBase(ctx, cs.tenantId, c.Id, value)
		if err != nil {
			return err
		}
		if !updated {
			return ErrConceptNotFound
		}
		return nil
	}
	valueKey := ValueKey{CategoryId: key.Row.ParentID, ConceptId: key.Row.ChildID, Month: key.Column}
	return cs.repo.UpsertValue(ctx, cs.tenantId, cs.year, valueKey, value)
}

func (cs *cellStore) Delete(ctx context.Context, key grid.CellKey) error {
	if c, ok := cs.concepts[key.Row.ChildID]; ok && c.Indexed {
		_, err := cs.repo.UpdateConceptBase(ctx, cs.tenantId, c.Id, 0)
		return err
	}
	valueKey := ValueKey{CategoryId: key.Row.ParentID, ConceptId: key.Row.ChildID, Month: key.Column}
	_, err := cs.repo.DeleteValue(ctx, cs.tenantId, cs.year, valueKey)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func conceptsById(categories []Category) map[int64]Concept {
	concepts := make(map[int64]Concept)
	for _, cat := range categories {
		for _, c := range cat.Concepts {
			concepts[c.Id] = c
		}
	}
	return concepts
}

func findCategory(categories []Category, id int64) (Category, bool) {
	for _, cat := range categories {
		if cat.Id == id {
			return cat, true
		}
	}
	return Category{}, false
}

func minMonth(months []int) int {
	m := months[0]
	for _, month := range months[1:] {
		if month < m {
			m = month
		}
	}
	return m
}

func yearMonths() []int {
	return []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
}
