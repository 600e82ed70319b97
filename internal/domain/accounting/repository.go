package accounting

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository persists the chart of accounts
type AccountRepository interface {
	Save(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
	// FindByCodes returns the accounts found, keyed by code. Missing codes are simply absent.
	FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) (map[string]*Account, error)
	// FindByIDs returns the accounts found, keyed by id
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Account, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, accountType *AccountType) ([]Account, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}

// VoucherFilter narrows a voucher listing
type VoucherFilter struct {
	shared.Filter
	VoucherType VoucherType
	ReferenceID *uuid.UUID
}

// VoucherRepository persists vouchers together with their entries
type VoucherRepository interface {
	// Create inserts the voucher and all its entries
	Create(ctx context.Context, voucher *Voucher) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Voucher, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter VoucherFilter) ([]Voucher, int64, error)
}

// LedgerReader answers the aggregate queries behind ledgers and reports
type LedgerReader interface {
	// EntriesForAccount returns rows for the account within [from, to], date ascending
	EntriesForAccount(ctx context.Context, tenantID, accountID uuid.UUID, from, to *time.Time) ([]LedgerRow, error)
	// NetBefore returns Σdebit - Σcredit of the account's entries dated strictly before date
	NetBefore(ctx context.Context, tenantID, accountID uuid.UUID, date time.Time) (decimal.Decimal, error)
	// Totals aggregates entries per account within [from, to]; a nil from means no lower bound.
	// Accounts without entries are included with zero totals.
	Totals(ctx context.Context, tenantID uuid.UUID, from *time.Time, to time.Time) ([]AccountTotals, error)
}
