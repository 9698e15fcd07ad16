package notification

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, tenantId int, n Notification) (int64, error)
	List(ctx context.Context, tenantId int) ([]Notification, error)
	CountUnread(ctx context.Context, tenantId int) (int, error)
	MarkAllRead(ctx context.Context, tenantId int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, tenantId int, n Notification) (int64, error) {
	query := `INSERT INTO notification (tenant_id, type, message, created_at, read)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, query, tenantId, n.Type, n.Message, n.CreatedAt, n.Read).Scan(&id); err != nil {
		log.Errorf("could not store notification: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) List(ctx context.Context, tenantId int) ([]Notification, error) {
	query := `SELECT id, type, message, created_at, read FROM notification
				WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query notifications: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.Id, &n.Type, &n.Message, &n.CreatedAt, &n.Read); err != nil {
			err := fmt.Errorf("could not scan notification: %w", err)
			log.Error(err)
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *RepositoryImpl) CountUnread(ctx context.Context, tenantId int) (int, error) {
	query := `SELECT COUNT(*) FROM notification WHERE tenant_id = $1 AND read = FALSE`
	var count int
	if err := r.db.QueryRow(ctx, query, tenantId).Scan(&count); err != nil {
		err := fmt.Errorf("could not count unread notifications: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r *RepositoryImpl) MarkAllRead(ctx context.Context, tenantId int) error {
	query := `UPDATE notification SET read = TRUE WHERE tenant_id = $1 AND read = FALSE`
	if _, err := r.db.Exec(ctx, query, tenantId); err != nil {
		log.Errorf("could not mark notifications read: %v", err)
		return err
	}
	return nil
}
