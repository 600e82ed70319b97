package persistence

import (
	"context"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/purchase"
	"github.com/erp/ledger/internal/domain/sales"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/stock"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
// Driver-level conflicts raised at commit are translated like any other write error.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.Repositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	return translateError(err)
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Products() stock.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) Movements() stock.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Accounts() accounting.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormTransactionalRepositories) Vouchers() accounting.VoucherRepository {
	return NewGormVoucherRepository(r.tx)
}

func (r *gormTransactionalRepositories) Ledger() accounting.LedgerReader {
	return NewGormLedgerReader(r.tx)
}

func (r *gormTransactionalRepositories) Sales() sales.Repository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormTransactionalRepositories) Purchases() purchase.Repository {
	return NewGormPurchaseRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() payment.Repository {
	return NewGormPaymentRepository(r.tx)
}

// Sequences returns the document number allocator bound to the transaction
func (r *gormTransactionalRepositories) Sequences() shared.SequenceAllocator {
	return NewGormSequenceAllocator(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ uow.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements Repositories
var _ uow.Repositories = (*gormTransactionalRepositories)(nil)
