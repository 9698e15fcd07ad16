package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/presu/presu/internal/event_bus"
	"github.com/presu/presu/internal/utils"
	"github.com/presu/presu/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	List(ctx context.Context) ([]Notification, error)
	CountUnread(ctx context.Context) (int, error)
	MarkAllRead(ctx context.Context) error
	// Subscribe registers a listener for unread-count changes of the current
	// tenant. The listener is only signalled when the count actually changed.
	Subscribe(ctx context.Context) (<-chan int, func(), error)
}

// ServiceImpl persists notifications for domain events published on the bus
// and keeps a per-tenant unread count. Counts are pushed to listeners on
// every event and additionally refreshed by a fallback poll, so a count
// changed outside the bus (another instance, direct SQL) still reaches
// subscribed clients.
type ServiceImpl struct {
	repo  Repository
	clock utils.Clock

	mu           sync.Mutex
	counts       map[int]int
	listeners    map[int]map[uint64]chan int
	nextListener uint64
}

func NewService(repo Repository, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	s := &ServiceImpl{
		repo:      repo,
		clock:     clock,
		counts:    make(map[int]int),
		listeners: make(map[int]map[uint64]chan int),
	}

	event_bus.SubscribeTyped[event_bus.BudgetCategoryCreated](bus, "budget.category.created",
		func(e event_bus.EventT[event_bus.BudgetCategoryCreated]) error {
			return s.record(e.Context(), "budget.category.created",
				fmt.Sprintf("Budget category %q was created", e.Data.Name))
		})
	event_bus.SubscribeTyped[event_bus.DocumentUploaded](bus, "document.uploaded",
		func(e event_bus.EventT[event_bus.DocumentUploaded]) error {
			return s.record(e.Context(), "document.uploaded",
				fmt.Sprintf("Document %q was uploaded", e.Data.FileName))
		})
	event_bus.SubscribeTyped[event_bus.PaymentPreferenceCreated](bus, "payment.preference.created",
		func(e event_bus.EventT[event_bus.PaymentPreferenceCreated]) error {
			return s.record(e.Context(), "payment.preference.created",
				fmt.Sprintf("Checkout %q was created", e.Data.Title))
		})

	return s
}

// StartPolling runs the fallback poll until the context is cancelled.
func (s *ServiceImpl) StartPolling(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.poll(ctx)
			}
		}
	}()
}

func (s *ServiceImpl) List(ctx context.Context) ([]Notification, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.repo.List(ctx, tenantId)
}

func (s *ServiceImpl) CountUnread(ctx context.Context) (int, error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current tenant: %w", err)
	}
	return s.refresh(ctx, tenantId)
}

func (s *ServiceImpl) MarkAllRead(ctx context.Context) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current tenant: %w", err)
	}
	if err := s.repo.MarkAllRead(ctx, tenantId); err != nil {
		return err
	}
	_, err = s.refresh(ctx, tenantId)
	return err
}

func (s *ServiceImpl) Subscribe(ctx context.Context) (<-chan int, func(), error) {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get current tenant: %w", err)
	}

	s.mu.Lock()
	s.nextListener++
	id := s.nextListener
	ch := make(chan int, 1)
	if s.listeners[tenantId] == nil {
		s.listeners[tenantId] = make(map[uint64]chan int)
	}
	s.listeners[tenantId][id] = ch
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if listeners := s.listeners[tenantId]; listeners != nil {
			delete(listeners, id)
			if len(listeners) == 0 {
				delete(s.listeners, tenantId)
			}
		}
	}
	return ch, unsubscribe, nil
}

func (s *ServiceImpl) record(ctx context.Context, eventType string, message string) error {
	tenantId, err := tenant.CurrentId(ctx)
	if err != nil {
		// events without a tenant (system jobs) produce no notification
		log.Debugf("notification skipped for %s: %v", eventType, err)
		return nil
	}

	if _, err := s.repo.Store(ctx, tenantId, Notification{
		Type:      eventType,
		Message:   message,
		CreatedAt: s.clock.Now(),
	}); err != nil {
		return err
	}
	_, err = s.refresh(ctx, tenantId)
	return err
}

// refresh reads the current unread count and signals listeners when it moved.
func (s *ServiceImpl) refresh(ctx context.Context, tenantId int) (int, error) {
	count, err := s.repo.CountUnread(ctx, tenantId)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.counts[tenantId]; ok && cached == count {
		return count, nil
	}
	s.counts[tenantId] = count
	for _, ch := range s.listeners[tenantId] {
		select {
		case ch <- count:
		default:
			// a slow listener keeps its stale value and catches up on the next signal
		}
	}
	return count, nil
}

// poll refreshes the count of every tenant with an active listener.
func (s *ServiceImpl) poll(ctx context.Context) {
	s.mu.Lock()
	tenantIds := make([]int, 0, len(s.listeners))
	for tenantId := range s.listeners {
		tenantIds = append(tenantIds, tenantId)
	}
	s.mu.Unlock()

	for _, tenantId := range tenantIds {
		if _, err := s.refresh(ctx, tenantId); err != nil {
			log.Errorf("could not refresh notification count for tenant %d: %v", tenantId, err)
		}
	}
}
