package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrCategoryNotFound = errors.New("category not found")
var ErrConceptNotFound = errors.New("concept not found")

// ValueKey locates one stored grid cell. ConceptId 0 addresses the directly
// editable cell of a concept-less category.
type ValueKey struct {
	CategoryId int64
	ConceptId  int64
	Month      int
}

type Repository interface {
	StoreCategory(ctx context.Context, tenantId int, c Category) (int64, error)
	ListCategories(ctx context.Context, tenantId int) ([]Category, error)
	UpdateCategory(ctx context.Context, tenantId int, c Category) (bool, error)
	DeleteCategory(ctx context.Context, tenantId int, id int64) (bool, error)
	FindMaxCategoryPosition(ctx context.Context, tenantId int) (int, error)

	StoreConcept(ctx context.Context, tenantId int, c Concept) (int64, error)
	GetConcept(ctx context.Context, tenantId int, id int64) (Concept, error)
	UpdateConcept(ctx context.Context, tenantId int, c Concept) (bool, error)
	UpdateConceptBase(ctx context.Context, tenantId int, id int64, base float64) (bool, error)
	DeleteConcept(ctx context.Context, tenantId int, id int64) (bool, error)

	GetValues(ctx context.Context, tenantId int, year int) (map[ValueKey]float64, error)
	UpsertValue(ctx context.Context, tenantId int, year int, key ValueKey, value float64) error
	DeleteValue(ctx context.Context, tenantId int, year int, key ValueKey) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreCategory(ctx context.Context, tenantId int, c Category) (int64, error) {
	query := `INSERT INTO budget_category (tenant_id, name, position) VALUES ($1, $2, $3) RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, query, tenantId, c.Name, c.Position).Scan(&id); err != nil {
		log.Errorf("could not store budget category: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) ListCategories(ctx context.Context, tenantId int) ([]Category, error) {
	query := `SELECT id, name, position FROM budget_category WHERE tenant_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query budget categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	byId := map[int64]int{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Id, &c.Name, &c.Position); err != nil {
			err := fmt.Errorf("could not scan budget category: %w", err)
			log.Error(err)
			return nil, err
		}
		byId[c.Id] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	conceptQuery := `SELECT id, category_id, name, base_value, first_active_month, active_months, indexed
			FROM budget_concept
			WHERE tenant_id = $1
			ORDER BY category_id, id`
	conceptRows, err := r.db.Query(ctx, conceptQuery, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query budget concepts: %w", err)
		log.Error(err)
		return nil, err
	}
	defer conceptRows.Close()

	for conceptRows.Next() {
		c, err := scanConcept(conceptRows)
		if err != nil {
			return nil, err
		}
		if idx, ok := byId[c.CategoryId]; ok {
			categories[idx].Concepts = append(categories[idx].Concepts, c)
		}
	}
	return categories, conceptRows.Err()
}

func (r *RepositoryImpl) UpdateCategory(ctx context.Context, tenantId int, c Category) (bool, error) {
	query := `UPDATE budget_category SET name = $1, position = $2 WHERE id = $3 AND tenant_id = $4`
	tag, err := r.db.Exec(ctx, query, c.Name, c.Position, c.Id, tenantId)
	if err != nil {
		log.Errorf("could not update budget category: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteCategory(ctx context.Context, tenantId int, id int64) (bool, error) {
	query := `DELETE FROM budget_category WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantId)
	if err != nil {
		log.Errorf("could not delete budget category: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) FindMaxCategoryPosition(ctx context.Context, tenantId int) (int, error) {
	query := `SELECT COALESCE(MAX(position), 0) FROM budget_category WHERE tenant_id = $1`
	var maxPosition int
	if err := r.db.QueryRow(ctx, query, tenantId).Scan(&maxPosition); err != nil {
		err := fmt.Errorf("could not find max category position: %w", err)
		log.Error(err)
		return 0, err
	}
	return maxPosition, nil
}

func (r *RepositoryImpl) StoreConcept(ctx context.Context, tenantId int, c Concept) (int64, error) {
	query := `INSERT INTO budget_concept (tenant_id, category_id, name, base_value, first_active_month, active_months, indexed)
				VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		tenantId,
		c.CategoryId,
		c.Name,
		c.BaseValue,
		c.FirstActiveMonth,
		activeMonthsParam(c.ActiveMonths),
		c.Indexed,
	).Scan(&id)
	if err != nil {
		log.Errorf("could not store budget concept: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) GetConcept(ctx context.Context, tenantId int, id int64) (Concept, error) {
	query := `SELECT id, category_id, name, base_value, first_active_month, active_months, indexed
				FROM budget_concept WHERE id = $1 AND tenant_id = $2`
	row := r.db.QueryRow(ctx, query, id, tenantId)
	c, err := scanConcept(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Concept{}, ErrConceptNotFound
	}
	return c, err
}

func (r *RepositoryImpl) UpdateConcept(ctx context.Context, tenantId int, c Concept) (bool, error) {
	query := `UPDATE budget_concept SET
				name = $1,
				base_value = $2,
				first_active_month = $3,
				active_months = $4,
				indexed = $5
			WHERE id = $6 AND tenant_id = $7`
	tag, err := r.db.Exec(ctx, query,
		c.Name,
		c.BaseValue,
		c.FirstActiveMonth,
		activeMonthsParam(c.ActiveMonths),
		c.Indexed,
		c.Id,
		tenantId,
	)
	if err != nil {
		log.Errorf("could not update budget concept: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) UpdateConceptBase(ctx context.Context, tenantId int, id int64, base float64) (bool, error) {
	query := `UPDATE budget_concept SET base_value = $1 WHERE id = $2 AND tenant_id = $3`
	tag, err := r.db.Exec(ctx, query, base, id, tenantId)
	if err != nil {
		log.Errorf("could not update concept base value: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteConcept(ctx context.Context, tenantId int, id int64) (bool, error) {
	query := `DELETE FROM budget_concept WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantId)
	if err != nil {
		log.Errorf("could not delete budget concept: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) GetValues(ctx context.Context, tenantId int, year int) (map[ValueKey]float64, error) {
	query := `SELECT category_id, COALESCE(concept_id, 0), month, value
				FROM budget_value WHERE tenant_id = $1 AND year = $2`
	rows, err := r.db.Query(ctx, query, tenantId, year)
	if err != nil {
		err := fmt.Errorf("could not query budget values: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	values := make(map[ValueKey]float64)
	for rows.Next() {
		var key ValueKey
		var value float64
		if err := rows.Scan(&key.CategoryId, &key.ConceptId, &key.Month, &value); err != nil {
			err := fmt.Errorf("could not scan budget value: %w", err)
			log.Error(err)
			return nil, err
		}
		values[key] = value
	}
	return values, rows.Err()
}

func (r *RepositoryImpl) UpsertValue(ctx context.Context, tenantId int, year int, key ValueKey, value float64) error {
	query := `INSERT INTO budget_value (tenant_id, year, category_id, concept_id, month, value)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (tenant_id, year, category_id, concept_id, month) DO UPDATE SET value = EXCLUDED.value`
	if _, err := r.db.Exec(ctx, query, tenantId, year, key.CategoryId, conceptIdParam(key.ConceptId), key.Month, value); err != nil {
		log.Errorf("could not upsert budget value: %v", err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) DeleteValue(ctx context.Context, tenantId int, year int, key ValueKey) (bool, error) {
	query := `DELETE FROM budget_value
				WHERE tenant_id = $1 AND year = $2 AND category_id = $3 AND concept_id IS NOT DISTINCT FROM $4 AND month = $5`
	tag, err := r.db.Exec(ctx, query, tenantId, year, key.CategoryId, conceptIdParam(key.ConceptId), key.Month)
	if err != nil {
		log.Errorf("could not delete budget value: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanConcept(row pgx.Row) (Concept, error) {
	var c Concept
	var activeMonths []int32
	if err := row.Scan(&c.Id, &c.CategoryId, &c.Name, &c.BaseValue, &c.FirstActiveMonth, &activeMonths, &c.Indexed); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Errorf("could not scan budget concept: %v", err)
		}
		return Concept{}, err
	}
	for _, m := range activeMonths {
		c.ActiveMonths = append(c.ActiveMonths, int(m))
	}
	return c, nil
}

func activeMonthsParam(months []int) []int32 {
	out := make([]int32, 0, len(months))
	for _, m := range months {
		out = append(out, int32(m))
	}
	return out
}

// conceptIdParam maps the 0 sentinel to NULL for category-owned cells.
func conceptIdParam(conceptId int64) interface{} {
	if conceptId == 0 {
		return nil
	}
	return conceptId
}
