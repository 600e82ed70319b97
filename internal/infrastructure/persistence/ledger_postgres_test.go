//go:build integration

package persistence_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	appsales "github.com/erp/ledger/internal/application/sales"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgresLedgerDB starts a disposable PostgreSQL container and applies the embedded migrations
func setupPostgresLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(20)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	status, err := m.Status()
	require.NoError(t, err)
	assert.False(t, status.Pending())
	assert.False(t, status.Dirty)

	return db
}

func TestPostgresLedger_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newLedgerFixtureOn(t, setupPostgresLedgerDB(t))
	p := f.product(t, "contended", 5, 1, "10", "4")

	const buyers = 12
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	invoices := make([]string, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sale, _, err := f.sales.CreateSale(f.ctx, f.tenantID, cashSale(p.ID, 1, "10"))
			errs[i] = err
			if err == nil {
				invoices[i] = sale.InvoiceNumber
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	succeeded := 0
	for i, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, shared.ErrInsufficientStock), "unexpected error: %v", err)
			continue
		}
		succeeded++
		assert.False(t, seen[invoices[i]], "duplicate invoice number %s", invoices[i])
		seen[invoices[i]] = true
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, int64(0), f.stockOf(t, p.ID))

	sum, err := f.movements.SumByProduct(f.ctx, f.tenantID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), sum)

	tb := f.trialBalance(t)
	assert.True(t, tb.IsBalanced)
	assertDecimal(t, "50", balanceRow(tb, "1000").DebitBalance)
}

func TestPostgresLedger_DuplicateKeyRaceCreatesOneSale(t *testing.T) {
	f := newLedgerFixtureOn(t, setupPostgresLedgerDB(t))
	p := f.product(t, "retry", 10, 0, "10", "4")

	req := cashSale(p.ID, 1, "10")
	req.IdempotencyKey = "till-3-0042"

	const attempts = 4
	var wg sync.WaitGroup
	results := make([]*appsales.SaleResponse, attempts)
	created := make([]bool, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], created[i], errs[i] = f.sales.CreateSale(f.ctx, f.tenantID, req)
		}(i)
	}
	wg.Wait()

	createdCount := 0
	var saleID string
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if created[i] {
			createdCount++
		}
		if saleID == "" {
			saleID = results[i].ID.String()
		}
		assert.Equal(t, saleID, results[i].ID.String())
	}
	assert.Equal(t, 1, createdCount)
	assert.Equal(t, int64(9), f.stockOf(t, p.ID))
}

func TestPostgresLedger_DuplicateKeyOnLastUnitReplays(t *testing.T) {
	f := newLedgerFixtureOn(t, setupPostgresLedgerDB(t))
	p := f.product(t, "single", 1, 0, "10", "4")

	req := cashSale(p.ID, 1, "10")
	req.IdempotencyKey = "till-1-0007"

	const attempts = 4
	var wg sync.WaitGroup
	results := make([]*appsales.SaleResponse, attempts)
	created := make([]bool, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], created[i], errs[i] = f.sales.CreateSale(f.ctx, f.tenantID, req)
		}(i)
	}
	wg.Wait()

	createdCount := 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i], "attempt %d", i)
		if created[i] {
			createdCount++
		}
		assert.Equal(t, results[0].ID, results[i].ID)
		assert.Equal(t, results[0].InvoiceNumber, results[i].InvoiceNumber)
	}
	assert.Equal(t, 1, createdCount)
	assert.Equal(t, int64(0), f.stockOf(t, p.ID))

	// replays roll back their counter increment
	other := f.product(t, "after", 1, 0, "5", "2")
	next, _, err := f.sales.CreateSale(f.ctx, f.tenantID, cashSale(other.ID, 1, "5"))
	require.NoError(t, err)
	prefix := results[0].InvoiceNumber[:len(results[0].InvoiceNumber)-4]
	assert.Equal(t, prefix+"0001", results[0].InvoiceNumber)
	assert.Equal(t, prefix+"0002", next.InvoiceNumber)
}

func TestPostgresLedger_SchemaRejectsNegativeStock(t *testing.T) {
	f := newLedgerFixtureOn(t, setupPostgresLedgerDB(t))
	p := f.product(t, "guarded", 1, 0, "10", "4")

	err := f.db.Exec(fmt.Sprintf("UPDATE products SET stock_quantity = -1 WHERE id = '%s'", p.ID)).Error
	assert.Error(t, err)
	assert.Equal(t, int64(1), f.stockOf(t, p.ID))
}
