package tenant

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrTenantNotFound = errors.New("tenant not found")

type Repo interface {
	Create(ctx context.Context, t Tenant) (int, error)
	Get(ctx context.Context, id int) (Tenant, error)
	GetByUid(ctx context.Context, uid string) (Tenant, error)
	GetAll(ctx context.Context) ([]Tenant, error)
	Update(ctx context.Context, t Tenant) (bool, error)
}

type RepoImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Create(ctx context.Context, t Tenant) (int, error) {
	query := `INSERT INTO tenant (uid, name, currency, billable_users) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, t.Uid, t.Name, t.Currency, t.BillableUsers).Scan(&id)
	if err != nil {
		log.Errorf("failed to create tenant: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *RepoImpl) Get(ctx context.Context, id int) (Tenant, error) {
	query := `SELECT id, uid, name, currency, billable_users FROM tenant WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *RepoImpl) GetByUid(ctx context.Context, uid string) (Tenant, error) {
	query := `SELECT id, uid, name, currency, billable_users FROM tenant WHERE uid = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, uid))
}

func (r *RepoImpl) scanOne(row pgx.Row) (Tenant, error) {
	var t Tenant
	err := row.Scan(&t.Id, &t.Uid, &t.Name, &t.Currency, &t.BillableUsers)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tenant{}, ErrTenantNotFound
	} else if err != nil {
		log.Errorf("failed to get tenant: %v", err)
		return Tenant{}, err
	}
	return t, nil
}

func (r *RepoImpl) GetAll(ctx context.Context) ([]Tenant, error) {
	query := `SELECT id, uid, name, currency, billable_users FROM tenant ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		log.Errorf("failed to query tenants: %v", err)
		return nil, err
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.Id, &t.Uid, &t.Name, &t.Currency, &t.BillableUsers); err != nil {
			log.Errorf("failed to scan tenant: %v", err)
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *RepoImpl) Update(ctx context.Context, t Tenant) (bool, error) {
	query := `UPDATE tenant SET name = $1, currency = $2, billable_users = $3 WHERE id = $4`
	tag, err := r.db.Exec(ctx, query, t.Name, t.Currency, t.BillableUsers, t.Id)
	if err != nil {
		log.Errorf("failed to update tenant: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
