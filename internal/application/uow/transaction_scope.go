package uow

import (
	"context"

	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/purchase"
	"github.com/erp/ledger/internal/domain/sales"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/stock"
)

// TransactionScope defines the interface for executing operations within a transaction.
// Processors own the transaction; the stock ledger and the accounting engine only ever
// receive the Repositories of a transaction that is already open.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to every ledger repository within one transaction.
// All repositories returned share the same underlying database transaction.
type Repositories interface {
	Products() stock.ProductRepository
	Movements() stock.MovementRepository
	Accounts() accounting.AccountRepository
	Vouchers() accounting.VoucherRepository
	Ledger() accounting.LedgerReader
	Sales() sales.Repository
	Purchases() purchase.Repository
	Payments() payment.Repository
	Sequences() shared.SequenceAllocator
}
