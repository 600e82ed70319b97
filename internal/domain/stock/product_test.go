package stock

import (
	"errors"
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, stock, reorder int64) *Product {
	t.Helper()
	p, err := NewProduct(uuid.New(), "Widget", "W-1", stock)
	require.NoError(t, err)
	p.ReorderLevel = reorder
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("rejects empty tenant", func(t *testing.T) {
		_, err := NewProduct(uuid.Nil, "Widget", "W-1", 0)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects negative initial stock", func(t *testing.T) {
		_, err := NewProduct(uuid.New(), "Widget", "W-1", -1)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("creates active product", func(t *testing.T) {
		p, err := NewProduct(uuid.New(), "Widget", "W-1", 5)
		require.NoError(t, err)
		assert.True(t, p.IsActive)
		assert.Equal(t, int64(5), p.StockQuantity)
	})
}

func TestProduct_ApplyMovement(t *testing.T) {
	t.Run("decrease within stock", func(t *testing.T) {
		p := newTestProduct(t, 5, 0)
		prev, cur, err := p.ApplyMovement(-3)
		require.NoError(t, err)
		assert.Equal(t, int64(5), prev)
		assert.Equal(t, int64(2), cur)
		assert.Equal(t, int64(2), p.StockQuantity)
	})

	t.Run("decrease below zero is rejected and leaves stock untouched", func(t *testing.T) {
		p := newTestProduct(t, 2, 0)
		_, _, err := p.ApplyMovement(-3)
		require.Error(t, err)

		var stockErr *InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, int64(2), stockErr.Available)
		assert.Equal(t, int64(3), stockErr.Requested)
		assert.Contains(t, err.Error(), "available: 2, requested: 3")
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(2), p.StockQuantity)
	})

	t.Run("decrease to exactly zero is allowed", func(t *testing.T) {
		p := newTestProduct(t, 1, 0)
		_, cur, err := p.ApplyMovement(-1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), cur)
	})

	t.Run("increase", func(t *testing.T) {
		p := newTestProduct(t, 0, 0)
		_, cur, err := p.ApplyMovement(10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), cur)
	})

	t.Run("crossing reorder level raises event once", func(t *testing.T) {
		p := newTestProduct(t, 5, 2)
		_, _, err := p.ApplyMovement(-3)
		require.NoError(t, err)
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeStockBelowReorderLevel, p.GetDomainEvents()[0].EventType())

		p.ClearDomainEvents()
		_, _, err = p.ApplyMovement(-1)
		require.NoError(t, err)
		assert.Empty(t, p.GetDomainEvents())
	})
}

func TestProduct_IsLowStock(t *testing.T) {
	assert.True(t, newTestProduct(t, 2, 2).IsLowStock())
	assert.False(t, newTestProduct(t, 3, 2).IsLowStock())
	assert.False(t, newTestProduct(t, 0, 0).IsLowStock(), "no reorder level means never low")
}

func TestNewMovement(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewMovement(tenantID, productID, 0, MovementTypeSale, 0)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewMovement(tenantID, productID, 1, MovementType("gift"), 1)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("builds with options", func(t *testing.T) {
		ref := uuid.New()
		wh := uuid.New()
		m, err := NewMovement(tenantID, productID, -2, MovementTypeSale, 3)
		require.NoError(t, err)
		m.WithReference(ref).WithWarehouse(wh).WithReason("  checkout ")
		assert.Equal(t, &ref, m.ReferenceID)
		assert.Equal(t, &wh, m.WarehouseID)
		assert.Equal(t, "checkout", m.Reason)
		assert.Equal(t, int64(3), m.BalanceAfter)
	})
}
