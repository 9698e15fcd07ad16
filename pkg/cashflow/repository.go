package cashflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrSectionNotFound = errors.New("section not found")
var ErrItemNotFound = errors.New("item not found")

// EntryKey locates one stored grid cell. ItemId 0 addresses the directly
// editable cell of an item-less section.
type EntryKey struct {
	SectionId int64
	ItemId    int64
	Month     int
}

type Repository interface {
	StoreSection(ctx context.Context, tenantId int, s Section) (int64, error)
	ListSections(ctx context.Context, tenantId int) ([]Section, error)
	UpdateSection(ctx context.Context, tenantId int, s Section) (bool, error)
	DeleteSection(ctx context.Context, tenantId int, id int64) (bool, error)
	FindMaxSectionPosition(ctx context.Context, tenantId int) (int, error)

	StoreItem(ctx context.Context, tenantId int, item Item) (int64, error)
	UpdateItem(ctx context.Context, tenantId int, item Item) (bool, error)
	DeleteItem(ctx context.Context, tenantId int, id int64) (bool, error)

	GetEntries(ctx context.Context, tenantId int, year int) (map[EntryKey]float64, error)
	UpsertEntry(ctx context.Context, tenantId int, year int, key EntryKey, value float64) error
	DeleteEntry(ctx context.Context, tenantId int, year int, key EntryKey) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreSection(ctx context.Context, tenantId int, s Section) (int64, error) {
	query := `INSERT INTO cashflow_section (tenant_id, name, kind, markup, position) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, query, tenantId, s.Name, string(s.Kind), s.Markup, s.Position).Scan(&id); err != nil {
		log.Errorf("could not store cashflow section: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) ListSections(ctx context.Context, tenantId int) ([]Section, error) {
	query := `SELECT id, name, kind, markup, position FROM cashflow_section WHERE tenant_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query cashflow sections: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var sections []Section
	byId := map[int64]int{}
	for rows.Next() {
		var s Section
		var kind string
		if err := rows.Scan(&s.Id, &s.Name, &kind, &s.Markup, &s.Position); err != nil {
			err := fmt.Errorf("could not scan cashflow section: %w", err)
			log.Error(err)
			return nil, err
		}
		s.Kind = Kind(kind)
		byId[s.Id] = len(sections)
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemQuery := `SELECT id, section_id, name FROM cashflow_item WHERE tenant_id = $1 ORDER BY section_id, id`
	itemRows, err := r.db.Query(ctx, itemQuery, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query cashflow items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item Item
		if err := itemRows.Scan(&item.Id, &item.SectionId, &item.Name); err != nil {
			err := fmt.Errorf("could not scan cashflow item: %w", err)
			log.Error(err)
			return nil, err
		}
		if idx, ok := byId[item.SectionId]; ok {
			sections[idx].Items = append(sections[idx].Items, item)
		}
	}
	return sections, itemRows.Err()
}

func (r *RepositoryImpl) UpdateSection(ctx context.Context, tenantId int, s Section) (bool, error) {
	query := `UPDATE cashflow_section SET name = $1, kind = $2, markup = $3, position = $4 WHERE id = $5 AND tenant_id = $6`
	tag, err := r.db.Exec(ctx, query, s.Name, string(s.Kind), s.Markup, s.Position, s.Id, tenantId)
	if err != nil {
		log.Errorf("could not update cashflow section: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteSection(ctx context.Context, tenantId int, id int64) (bool, error) {
	query := `DELETE FROM cashflow_section WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantId)
	if err != nil {
		log.Errorf("could not delete cashflow section: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) FindMaxSectionPosition(ctx context.Context, tenantId int) (int, error) {
	query := `SELECT COALESCE(MAX(position), 0) FROM cashflow_section WHERE tenant_id = $1`
	var maxPosition int
	if err := r.db.QueryRow(ctx, query, tenantId).Scan(&maxPosition); err != nil {
		err := fmt.Errorf("could not find max section position: %w", err)
		log.Error(err)
		return 0, err
	}
	return maxPosition, nil
}

func (r *RepositoryImpl) StoreItem(ctx context.Context, tenantId int, item Item) (int64, error) {
	query := `INSERT INTO cashflow_item (tenant_id, section_id, name) VALUES ($1, $2, $3) RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, query, tenantId, item.SectionId, item.Name).Scan(&id); err != nil {
		if isForeignKeyViolation(err) {
			return 0, ErrSectionNotFound
		}
		log.Errorf("could not store cashflow item: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) UpdateItem(ctx context.Context, tenantId int, item Item) (bool, error) {
	query := `UPDATE cashflow_item SET name = $1 WHERE id = $2 AND tenant_id = $3`
	tag, err := r.db.Exec(ctx, query, item.Name, item.Id, tenantId)
	if err != nil {
		log.Errorf("could not update cashflow item: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteItem(ctx context.Context, tenantId int, id int64) (bool, error) {
	query := `DELETE FROM cashflow_item WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantId)
	if err != nil {
		log.Errorf("could not delete cashflow item: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) GetEntries(ctx context.Context, tenantId int, year int) (map[EntryKey]float64, error) {
	query := `SELECT section_id, COALESCE(item_id, 0), month, value
				FROM cashflow_entry WHERE tenant_id = $1 AND year = $2`
	rows, err := r.db.Query(ctx, query, tenantId, year)
	if err != nil {
		err := fmt.Errorf("could not query cashflow entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	entries := make(map[EntryKey]float64)
	for rows.Next() {
		var key EntryKey
		var value float64
		if err := rows.Scan(&key.SectionId, &key.ItemId, &key.Month, &value); err != nil {
			err := fmt.Errorf("could not scan cashflow entry: %w", err)
			log.Error(err)
			return nil, err
		}
		entries[key] = value
	}
	return entries, rows.Err()
}

func (r *RepositoryImpl) UpsertEntry(ctx context.Context, tenantId int, year int, key EntryKey, value float64) error {
	query := `INSERT INTO cashflow_entry (tenant_id, year, section_id, item_id, month, value)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (tenant_id, year, section_id, item_id, month) DO UPDATE SET value = EXCLUDED.value`
	if _, err := r.db.Exec(ctx, query, tenantId, year, key.SectionId, itemIdParam(key.ItemId), key.Month, value); err != nil {
		log.Errorf("could not upsert cashflow entry: %v", err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) DeleteEntry(ctx context.Context, tenantId int, year int, key EntryKey) (bool, error) {
	query := `DELETE FROM cashflow_entry
				WHERE tenant_id = $1 AND year = $2 AND section_id = $3 AND item_id IS NOT DISTINCT FROM $4 AND month = $5`
	tag, err := r.db.Exec(ctx, query, tenantId, year, key.SectionId, itemIdParam(key.ItemId), key.Month)
	if err != nil {
		log.Errorf("could not delete cashflow entry: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// itemIdParam maps the 0 sentinel to NULL for section-owned cells.
func itemIdParam(itemId int64) interface{} {
	if itemId == 0 {
		return nil
	}
	return itemId
}
