package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceImpl_CreateTenant(t *testing.T) {
	t.Run("should assign uid and default currency", func(t *testing.T) {
		// given
		service := NewService(NewStubRepo())

		// when
		created, err := service.CreateTenant(context.Background(), Tenant{Name: "Estudio Sur"})

		// then
		require.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.NotEmpty(t, created.Uid)
		assert.Equal(t, "ARS", created.Currency)
	})

	t.Run("should keep provided currency", func(t *testing.T) {
		service := NewService(NewStubRepo())

		created, err := service.CreateTenant(context.Background(), Tenant{Name: "Norte", Currency: "USD"})

		require.NoError(t, err)
		assert.Equal(t, "USD", created.Currency)
	})
}

func TestServiceImpl_GetCurrentTenant(t *testing.T) {
	t.Run("should resolve tenant from context", func(t *testing.T) {
		// given
		service := NewService(NewStubRepo())
		created, err := service.CreateTenant(context.Background(), Tenant{Name: "Estudio Sur"})
		require.NoError(t, err)
		ctx := WithTenant(context.Background(), created)

		// when
		current, err := service.GetCurrentTenant(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, created.Id, current.Id)
		assert.Equal(t, "Estudio Sur", current.Name)
	})

	t.Run("should fail without tenant in context", func(t *testing.T) {
		service := NewService(NewStubRepo())

		_, err := service.GetCurrentTenant(context.Background())

		assert.ErrorIs(t, err, ErrNoTenant)
	})
}

func TestServiceImpl_UpdateCurrentTenant(t *testing.T) {
	t.Run("should keep id and uid of the current tenant", func(t *testing.T) {
		// given
		service := NewService(NewStubRepo())
		created, err := service.CreateTenant(context.Background(), Tenant{Name: "Estudio Sur"})
		require.NoError(t, err)
		ctx := WithTenant(context.Background(), created)

		// when
		updated, err := service.UpdateCurrentTenant(ctx, Tenant{Name: "Estudio Norte", Currency: "USD", BillableUsers: 7})

		// then
		require.NoError(t, err)
		assert.Equal(t, created.Id, updated.Id)
		assert.Equal(t, created.Uid, updated.Uid)
		assert.Equal(t, "Estudio Norte", updated.Name)
		assert.Equal(t, 7, updated.BillableUsers)
	})
}
