package test_utils

import (
	"context"

	"github.com/presu/presu/pkg/tenant"
)

type TestTenantProvider struct{}

func (p TestTenantProvider) GetCurrentTenant(ctx context.Context) (tenant.Tenant, error) {
	return tenant.Tenant{
		Id:            123,
		Uid:           "test-tenant-uid",
		Name:          "Test Tenant",
		Currency:      "ARS",
		BillableUsers: 1,
	}, nil
}
