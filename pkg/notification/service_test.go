package notification

import (
	"context"
	"testing"
	"time"

	"github.com/presu/presu/internal/event_bus"
	"github.com/presu/presu/internal/utils"
	"github.com/presu/presu/pkg/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return tenant.WithTenant(context.Background(), tenant.Tenant{Id: 1, Name: "Test"})
}

func newTestService() (*ServiceImpl, *event_bus.EventBus) {
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewService(NewStubRepository(), bus, clock), bus
}

func TestServiceImpl_BusEvents(t *testing.T) {
	ctx := testContext()

	t.Run("persists a notification per domain event", func(t *testing.T) {
		// given
		service, bus := newTestService()

		// when
		require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, "document.uploaded",
			event_bus.DocumentUploaded{Id: "doc-1", FileName: "factura.pdf"})))
		require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, "budget.category.created",
			event_bus.BudgetCategoryCreated{Id: 1, Name: "Ventas"})))

		// then
		count, err := service.CountUnread(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		notifications, err := service.List(ctx)
		require.NoError(t, err)
		require.Len(t, notifications, 2)
		messages := []string{notifications[0].Message, notifications[1].Message}
		assert.Contains(t, messages, `Document "factura.pdf" was uploaded`)
		assert.Contains(t, messages, `Budget category "Ventas" was created`)
	})

	t.Run("events without a tenant are ignored", func(t *testing.T) {
		// given
		service, bus := newTestService()

		// when
		require.NoError(t, bus.Publish(event_bus.NewEvent(context.Background(), "document.uploaded",
			event_bus.DocumentUploaded{Id: "doc-1", FileName: "factura.pdf"})))

		// then
		count, err := service.CountUnread(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("mark all read resets the count", func(t *testing.T) {
		// given
		service, bus := newTestService()
		require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, "payment.preference.created",
			event_bus.PaymentPreferenceCreated{PreferenceId: "pref-1", Title: "Suscripción"})))

		// when
		require.NoError(t, service.MarkAllRead(ctx))

		// then
		count, err := service.CountUnread(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestServiceImpl_Subscribe(t *testing.T) {
	ctx := testContext()

	t.Run("signals a listener when the count changes", func(t *testing.T) {
		// given
		service, bus := newTestService()
		ch, unsubscribe, err := service.Subscribe(ctx)
		require.NoError(t, err)
		defer unsubscribe()

		// when
		require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, "document.uploaded",
			event_bus.DocumentUploaded{Id: "doc-1", FileName: "factura.pdf"})))

		// then
		select {
		case count := <-ch:
			assert.Equal(t, 1, count)
		default:
			t.Fatal("expected a count signal")
		}
	})

	t.Run("does not re-signal an unchanged count", func(t *testing.T) {
		// given
		service, bus := newTestService()
		ch, unsubscribe, err := service.Subscribe(ctx)
		require.NoError(t, err)
		defer unsubscribe()
		require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, "document.uploaded",
			event_bus.DocumentUploaded{Id: "doc-1", FileName: "factura.pdf"})))
		<-ch

		// when: the fallback poll runs with nothing new
		service.poll(ctx)
		service.poll(ctx)

		// then
		select {
		case count := <-ch:
			t.Fatalf("unexpected signal with count %d", count)
		default:
		}
	})

	t.Run("unsubscribed listeners are not signalled", func(t *testing.T) {
		// given
		service, bus := newTestService()
		ch, unsubscribe, err := service.Subscribe(ctx)
		require.NoError(t, err)

		// when
		unsubscribe()
		require.NoError(t, bus.Publish(event_bus.NewEvent(ctx, "document.uploaded",
			event_bus.DocumentUploaded{Id: "doc-1", FileName: "factura.pdf"})))

		// then
		select {
		case <-ch:
			t.Fatal("unexpected signal after unsubscribe")
		default:
		}
	})

	t.Run("the fallback poll picks up counts changed outside the bus", func(t *testing.T) {
		// given
		repo := NewStubRepository()
		bus := event_bus.NewEventBus()
		clock := &utils.MockClock{FixedNow: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
		service := NewService(repo, bus, clock)
		ch, unsubscribe, err := service.Subscribe(ctx)
		require.NoError(t, err)
		defer unsubscribe()

		// a row written directly, bypassing the event bus
		_, err = repo.Store(ctx, 1, Notification{Type: "document.uploaded", Message: "external"})
		require.NoError(t, err)

		// when
		service.poll(ctx)

		// then
		select {
		case count := <-ch:
			assert.Equal(t, 1, count)
		default:
			t.Fatal("expected a count signal from the poll")
		}
	})
}
