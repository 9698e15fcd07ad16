package document

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/presu/presu/internal/event_bus"
	"github.com/presu/presu/internal/utils"
	"github.com/presu/presu/pkg/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return tenant.WithTenant(context.Background(), tenant.Tenant{Id: 1, Name: "Test"})
}

func newTestService(store Store) (*ServiceImpl, *StubRepository, *event_bus.EventBus) {
	repo := NewStubRepository()
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewService(repo, store, bus, clock), repo, bus
}

func TestServiceImpl_Upload(t *testing.T) {
	ctx := testContext()

	t.Run("stores the binary and its metadata", func(t *testing.T) {
		// given
		store := NewStubStore()
		service, repo, _ := newTestService(store)

		// when
		doc, err := service.Upload(ctx, "factura.pdf", "application/pdf", strings.NewReader("%PDF-1.4 content"))

		// then
		require.NoError(t, err)
		require.NoError(t, uuid.Validate(doc.Id))
		assert.Equal(t, "factura.pdf", doc.FileName)
		assert.Equal(t, int64(16), doc.Size)
		assert.True(t, store.Contains(doc.Id))

		stored, err := repo.Get(ctx, 1, doc.Id)
		require.NoError(t, err)
		assert.Equal(t, doc, stored)
	})

	t.Run("rejects anything that is not a pdf", func(t *testing.T) {
		store := NewStubStore()
		service, _, _ := newTestService(store)

		_, err := service.Upload(ctx, "photo.png", "image/png", strings.NewReader("data"))
		assert.ErrorIs(t, err, ErrNotPDF)
	})

	t.Run("rejects an oversized upload and removes the partial file", func(t *testing.T) {
		// given
		store := NewStubStore()
		service, _, _ := newTestService(store)
		oversized := io.MultiReader(
			strings.NewReader("%PDF-1.4 "),
			&nullReader{n: MaxUploadSize},
		)

		// when
		_, err := service.Upload(ctx, "huge.pdf", "application/pdf", oversized)

		// then
		assert.ErrorIs(t, err, ErrTooLarge)
		assert.Empty(t, store.files)
	})

	t.Run("publishes an uploaded event", func(t *testing.T) {
		// given
		store := NewStubStore()
		service, _, bus := newTestService(store)
		var received []event_bus.DocumentUploaded
		event_bus.SubscribeTyped[event_bus.DocumentUploaded](bus, "document.uploaded",
			func(e event_bus.EventT[event_bus.DocumentUploaded]) error {
				received = append(received, e.Data)
				return nil
			})

		// when
		doc, err := service.Upload(ctx, "factura.pdf", "application/pdf", strings.NewReader("%PDF"))

		// then
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, doc.Id, received[0].Id)
		assert.Equal(t, "factura.pdf", received[0].FileName)
	})

	t.Run("fails without tenant", func(t *testing.T) {
		service, _, _ := newTestService(NewStubStore())
		_, err := service.Upload(context.Background(), "factura.pdf", "application/pdf", strings.NewReader("%PDF"))
		assert.ErrorIs(t, err, tenant.ErrNoTenant)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	ctx := testContext()

	t.Run("removes metadata and the stored file", func(t *testing.T) {
		// given
		store := NewStubStore()
		service, _, _ := newTestService(store)
		doc, err := service.Upload(ctx, "factura.pdf", "application/pdf", strings.NewReader("%PDF"))
		require.NoError(t, err)

		// when
		deleted, err := service.Delete(ctx, doc.Id)

		// then
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.False(t, store.Contains(doc.Id))
		_, err = service.Get(ctx, doc.Id)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("reports a missing document", func(t *testing.T) {
		service, _, _ := newTestService(NewStubStore())
		deleted, err := service.Delete(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestFilesystemStore(t *testing.T) {
	t.Run("round trips a file", func(t *testing.T) {
		// given
		store, err := NewFilesystemStore(t.TempDir())
		require.NoError(t, err)

		// when
		size, err := store.Save(context.Background(), "doc-1", strings.NewReader("%PDF content"))
		require.NoError(t, err)

		// then
		assert.Equal(t, int64(12), size)
		content, err := store.Open(context.Background(), "doc-1")
		require.NoError(t, err)
		defer content.Close()
		data, err := io.ReadAll(content)
		require.NoError(t, err)
		assert.Equal(t, "%PDF content", string(data))
	})

	t.Run("reports a missing file", func(t *testing.T) {
		store, err := NewFilesystemStore(t.TempDir())
		require.NoError(t, err)

		_, err = store.Open(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrFileNotFound)
	})
}

// nullReader yields n zero bytes.
type nullReader struct {
	n int64
}

func (r *nullReader) Read(p []byte) (int, error) {
	if r.n <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > r.n {
		p = p[:r.n]
	}
	for i := range p {
		p[i] = 0
	}
	r.n -= int64(len(p))
	return len(p), nil
}
