package document

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/presu/presu/internal/event_bus"
	"github.com/presu/presu/internal/utils"
	"github.com/presu/presu/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

const MaxUploadSize = 10 << 20 // 10 MB

var ErrNotPDF = errors.New("only application/pdf uploads are accepted")
var ErrTooLarge = errors.New("upload exceeds the 10 MB limit")

type Service interface {
	Upload(ctx context.Context, fileName string, contentType string, content io.Reader) (Document, error)
	Get(ctx context.Context, id string) (Document, error)
	List(ctx context.Context) ([]Document, error)
	Delete(ctx context.Context, id string) (bool, error)
	// Open returns the stored binary of a document owned by the current tenant.
	Open(ctx context.Context, id string) (Document, io.ReadCloser, error)
}

type ServiceImpl struct {
	repo     Repository
	store    Store
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, store Store, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, store: store, eventBus: eventBus, clock: clock}
}

func (s *ServiceImpl) Upload(ctx context.Context, fileName string, contentType string, content io.Reader) (Document, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	if contentType != "application/pdf" {
		return Document{}, ErrNotPDF
	}

	doc := Document{
		Id:          uuid.NewString(),
		FileName:    fileName,
		ContentType: contentType,
		UploadedAt:  s.clock.Now(),
	}

	// read one byte past the limit so an oversized upload is caught without
	// buffering the whole body
	size, err := s.store.Save(ctx, doc.Id, io.LimitReader(content, MaxUploadSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("could not store document: %w", err)
	}
	if size > MaxUploadSize {
		if err := s.store.Delete(ctx, doc.Id); err != nil {
			log.Errorf("could not remove oversized upload %s: %v", doc.Id, err)
		}
		return Document{}, ErrTooLarge
	}
	doc.Size = size

	if err := s.repo.Store(ctx, tenantId, doc); err != nil {
		if deleteErr := s.store.Delete(ctx, doc.Id); deleteErr != nil {
			log.Errorf("could not remove orphaned upload %s: %v", doc.Id, deleteErr)
		}
		return Document{}, err
	}

	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, "document.uploaded", event_bus.DocumentUploaded{
		Id:       doc.Id,
		FileName: doc.FileName,
		Size:     doc.Size,
	})); err != nil {
		log.Errorf("failed to publish document uploaded event: %v", err)
	}

	return doc, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Document, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.Get(ctx, tenantId, id)
}

func (s *ServiceImpl) List(ctx context.Context) ([]Document, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.List(ctx, tenantId)
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) (bool, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current tenant: %w", err)
	}
	deleted, err := s.repo.Delete(ctx, tenantId, id)
	if err != nil || !deleted {
		return deleted, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		log.Errorf("could not remove stored file %s: %v", id, err)
	}
	return true, nil
}

func (s *ServiceImpl) Open(ctx context.Context, id string) (Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}
	content, err := s.store.Open(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, content, nil
}
