package accounting

import (
	"context"

	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/erp/ledger/internal/domain/payment"
	"github.com/google/uuid"
)

// RoleResolver maps a posting role to the account code a tenant uses for it
type RoleResolver interface {
	CodeFor(ctx context.Context, tenantID uuid.UUID, role accounting.PostingRole) (string, error)
}

// ConfigRoleResolver resolves roles from a default map with optional per-tenant overrides
type ConfigRoleResolver struct {
	defaults accounting.RoleMap
	tenants  map[uuid.UUID]accounting.RoleMap
}

// NewConfigRoleResolver creates a resolver. Overrides are merged on top of the defaults.
func NewConfigRoleResolver(overrides map[string]string, tenantOverrides map[uuid.UUID]map[string]string) *ConfigRoleResolver {
	defaults := accounting.DefaultRoleMap().Merge(overrides)
	tenants := make(map[uuid.UUID]accounting.RoleMap, len(tenantOverrides))
	for tenantID, m := range tenantOverrides {
		tenants[tenantID] = defaults.Merge(m)
	}
	return &ConfigRoleResolver{defaults: defaults, tenants: tenants}
}

// CodeFor implements RoleResolver
func (r *ConfigRoleResolver) CodeFor(_ context.Context, tenantID uuid.UUID, role accounting.PostingRole) (string, error) {
	if m, ok := r.tenants[tenantID]; ok {
		return m.CodeFor(role)
	}
	return r.defaults.CodeFor(role)
}

var _ RoleResolver = (*ConfigRoleResolver)(nil)

// SettlementRole is the account role money moves through for a payment method.
// Cash goes to the cash account, every other method to the bank account.
func SettlementRole(method payment.Method) accounting.PostingRole {
	if method == payment.MethodCash {
		return accounting.RoleCash
	}
	return accounting.RoleBank
}
