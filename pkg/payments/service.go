package payments

import (
	"context"
	"fmt"

	"github.com/presu/presu/internal/event_bus"
	"github.com/presu/presu/pkg/tenant"
	log "github.com/sirupsen/logrus"
)

// Checkout describes a billing checkout requested by a tenant.
type Checkout struct {
	Title       string
	Description string
	UnitPrice   float64
}

type Service interface {
	// CreateCheckout creates a gateway preference for the current tenant and
	// returns the URL the client must redirect to.
	CreateCheckout(ctx context.Context, checkout Checkout) (string, error)
}

type ServiceImpl struct {
	client   Client
	eventBus *event_bus.EventBus
	sandbox  bool
}

func NewService(client Client, eventBus *event_bus.EventBus, sandbox bool) *ServiceImpl {
	return &ServiceImpl{client: client, eventBus: eventBus, sandbox: sandbox}
}

func (s *ServiceImpl) CreateCheckout(ctx context.Context, checkout Checkout) (string, error) {
	t, err := tenant.CurrentTenant(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current tenant: %w", err)
	}

	quantity := t.BillableUsers
	if quantity < 1 {
		quantity = 1
	}
	preference, err := s.client.CreatePreference(ctx, PreferenceRequest{
		Title:       checkout.Title,
		Description: checkout.Description,
		Quantity:    quantity,
		UnitPrice:   checkout.UnitPrice,
		TenantRef:   t.Uid,
		Users:       t.BillableUsers,
	})
	if err != nil {
		return "", fmt.Errorf("could not create payment preference: %w", err)
	}

	redirectURL := preference.InitPoint
	if s.sandbox {
		redirectURL = preference.SandboxInitPoint
	}
	if redirectURL == "" {
		return "", ErrNoRedirectURL
	}

	if err := s.eventBus.Publish(event_bus.NewEvent(ctx, "payment.preference.created", event_bus.PaymentPreferenceCreated{
		PreferenceId: preference.Id,
		Title:        checkout.Title,
		Amount:       checkout.UnitPrice * float64(quantity),
	})); err != nil {
		log.Errorf("failed to publish preference created event: %v", err)
	}

	return redirectURL, nil
}
