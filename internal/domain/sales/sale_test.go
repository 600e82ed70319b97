package sales

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func TestPriceLine(t *testing.T) {
	t.Run("defaults from catalog", func(t *testing.T) {
		p, err := PriceLine(3, dec("10"), dec("10"), PriceOverrides{})
		require.NoError(t, err)
		assert.True(t, p.UnitPrice.Equal(dec("10")))
		assert.True(t, p.Tax.Equal(dec("3")))
		assert.True(t, p.Discount.IsZero())
		assert.True(t, p.LineTotal.Equal(dec("33")))
	})

	t.Run("overrides replace defaults", func(t *testing.T) {
		p, err := PriceLine(2, dec("10"), dec("10"), PriceOverrides{
			UnitPrice: ptr(dec("8")),
			Tax:       ptr(dec("0")),
			Discount:  ptr(dec("1")),
		})
		require.NoError(t, err)
		assert.True(t, p.LineTotal.Equal(dec("15")))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := PriceLine(0, dec("10"), dec("0"), PriceOverrides{})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects discount larger than line", func(t *testing.T) {
		_, err := PriceLine(1, dec("10"), dec("0"), PriceOverrides{Discount: ptr(dec("11"))})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("tax does not cover an oversized discount", func(t *testing.T) {
		_, err := PriceLine(1, dec("10"), dec("0"), PriceOverrides{Tax: ptr(dec("5")), Discount: ptr(dec("12"))})
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.ErrorContains(t, err, "Discount 12.00 exceeds line amount 10.00")
	})

	t.Run("discount equal to the goods value leaves the tax", func(t *testing.T) {
		p, err := PriceLine(2, dec("5"), dec("0"), PriceOverrides{Tax: ptr(dec("1")), Discount: ptr(dec("10"))})
		require.NoError(t, err)
		assert.True(t, p.LineTotal.Equal(dec("1")))
	})
}

func TestSale_Lifecycle(t *testing.T) {
	s, err := NewSale(uuid.New(), "INV-202403-0001", time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, s.Status)

	t.Run("cannot complete without items", func(t *testing.T) {
		assert.ErrorIs(t, s.Complete(), shared.ErrValidation)
	})

	p1, err := PriceLine(2, dec("25"), dec("0"), PriceOverrides{})
	require.NoError(t, err)
	p2, err := PriceLine(1, dec("45"), dec("0"), PriceOverrides{Tax: ptr(dec("5"))})
	require.NoError(t, err)
	require.NoError(t, s.AddItem(uuid.New(), "A", p1, dec("10")))
	require.NoError(t, s.AddItem(uuid.New(), "B", p2, dec("20")))

	assert.True(t, s.TotalAmount.Equal(dec("100")))
	assert.True(t, s.TaxAmount.Equal(dec("5")))
	assert.True(t, s.Subtotal.Equal(dec("95")))
	assert.True(t, s.CostTotal().Equal(dec("40")))

	require.NoError(t, s.Complete())
	assert.Equal(t, StatusCompleted, s.Status)
	require.Len(t, s.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeSaleCompleted, s.GetDomainEvents()[0].EventType())

	t.Run("items are frozen once completed", func(t *testing.T) {
		assert.ErrorIs(t, s.AddItem(uuid.New(), "C", p1, dec("1")), shared.ErrInvalidState)
	})

	t.Run("payment status follows paid amount", func(t *testing.T) {
		s.ApplyPaidAmount(dec("60"))
		assert.Equal(t, payment.StatusPartial, s.PaymentStatus)
		assert.True(t, s.Outstanding().Equal(dec("40")))
		s.ApplyPaidAmount(dec("100"))
		assert.Equal(t, payment.StatusPaid, s.PaymentStatus)
		assert.True(t, s.Outstanding().IsZero())
	})
}

func TestSale_IdempotencyKey(t *testing.T) {
	s, err := NewSale(uuid.New(), "INV-202403-0002", time.Now())
	require.NoError(t, err)
	s.SetIdempotencyKey("  ")
	assert.Nil(t, s.IdempotencyKey)
	s.SetIdempotencyKey("abc")
	require.NotNil(t, s.IdempotencyKey)
	assert.Equal(t, "abc", *s.IdempotencyKey)
}
