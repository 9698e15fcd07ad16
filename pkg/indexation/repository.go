package indexation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// GetRates returns the configured monthly rates for a year, keyed by month.
	// Months without a configured rate are simply absent.
	GetRates(ctx context.Context, tenantId int, year int) (map[int]float64, error)
	SetRate(ctx context.Context, tenantId int, year int, month int, rate float64) error
	DeleteRate(ctx context.Context, tenantId int, year int, month int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetRates(ctx context.Context, tenantId int, year int) (map[int]float64, error) {
	query := `SELECT month, rate FROM ipc_rate WHERE tenant_id = $1 AND year = $2 ORDER BY month`
	rows, err := r.db.Query(ctx, query, tenantId, year)
	if err != nil {
		err := fmt.Errorf("could not query ipc rates: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	rates := make(map[int]float64)
	for rows.Next() {
		var month int
		var rate float64
		if err := rows.Scan(&month, &rate); err != nil {
			err := fmt.Errorf("could not scan ipc rate: %w", err)
			log.Error(err)
			return nil, err
		}
		rates[month] = rate
	}
	return rates, rows.Err()
}

func (r *RepositoryImpl) SetRate(ctx context.Context, tenantId int, year int, month int, rate float64) error {
	query := `INSERT INTO ipc_rate (tenant_id, year, month, rate) VALUES ($1, $2, $3, $4)
				ON CONFLICT (tenant_id, year, month) DO UPDATE SET rate = EXCLUDED.rate`
	if _, err := r.db.Exec(ctx, query, tenantId, year, month, rate); err != nil {
		err := fmt.Errorf("could not store ipc rate: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) DeleteRate(ctx context.Context, tenantId int, year int, month int) (bool, error) {
	query := `DELETE FROM ipc_rate WHERE tenant_id = $1 AND year = $2 AND month = $3`
	tag, err := r.db.Exec(ctx, query, tenantId, year, month)
	if err != nil {
		err := fmt.Errorf("could not delete ipc rate: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
