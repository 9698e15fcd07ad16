package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrDocumentNotFound = errors.New("document not found")

type Repository interface {
	Store(ctx context.Context, tenantId int, doc Document) error
	Get(ctx context.Context, tenantId int, id string) (Document, error)
	List(ctx context.Context, tenantId int) ([]Document, error)
	Delete(ctx context.Context, tenantId int, id string) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, tenantId int, doc Document) error {
	query := `INSERT INTO document (id, tenant_id, file_name, content_type, size, uploaded_at)
				VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.Exec(ctx, query, doc.Id, tenantId, doc.FileName, doc.ContentType, doc.Size, doc.UploadedAt); err != nil {
		log.Errorf("could not store document metadata: %v", err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Get(ctx context.Context, tenantId int, id string) (Document, error) {
	query := `SELECT id, file_name, content_type, size, uploaded_at FROM document WHERE id = $1 AND tenant_id = $2`
	var doc Document
	err := r.db.QueryRow(ctx, query, id, tenantId).
		Scan(&doc.Id, &doc.FileName, &doc.ContentType, &doc.Size, &doc.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		log.Errorf("could not get document metadata: %v", err)
		return Document{}, err
	}
	return doc, nil
}

func (r *RepositoryImpl) List(ctx context.Context, tenantId int) ([]Document, error) {
	query := `SELECT id, file_name, content_type, size, uploaded_at FROM document
				WHERE tenant_id = $1 ORDER BY uploaded_at DESC`
	rows, err := r.db.Query(ctx, query, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query documents: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.Id, &doc.FileName, &doc.ContentType, &doc.Size, &doc.UploadedAt); err != nil {
			err := fmt.Errorf("could not scan document: %w", err)
			log.Error(err)
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *RepositoryImpl) Delete(ctx context.Context, tenantId int, id string) (bool, error) {
	query := `DELETE FROM document WHERE id = $1 AND tenant_id = $2`
	tag, err := r.db.Exec(ctx, query, id, tenantId)
	if err != nil {
		log.Errorf("could not delete document metadata: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
