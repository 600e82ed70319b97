package purchase

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

func TestPurchase(t *testing.T) {
	tenantID := uuid.New()
	supplierID := uuid.New()

	t.Run("requires supplier and invoice number", func(t *testing.T) {
		_, err := NewPurchase(tenantID, uuid.Nil, "SUP-1", time.Now())
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		_, err = NewPurchase(tenantID, supplierID, " ", time.Now())
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("computes totals and confirms", func(t *testing.T) {
		p, err := NewPurchase(tenantID, supplierID, "SUP-1", time.Now())
		require.NoError(t, err)

		require.NoError(t, p.AddItem("Widget", LineInput{
			ProductID: uuid.New(),
			Quantity:  10,
			UnitPrice: decimal.NewFromInt(4),
			Tax:       decimal.NewFromInt(2),
			Discount:  decimal.NewFromInt(1),
		}))
		assert.True(t, p.TotalAmount.Equal(decimal.NewFromInt(41)))
		assert.True(t, p.Subtotal.Equal(decimal.NewFromInt(40)))

		require.NoError(t, p.Confirm())
		assert.Equal(t, StatusConfirmed, p.Status)
		assert.Len(t, p.GetDomainEvents(), 1)

		p.ApplyPaidAmount(decimal.NewFromInt(41))
		assert.Equal(t, payment.StatusPaid, p.PaymentStatus)
	})

	t.Run("rejects invalid lines", func(t *testing.T) {
		p, err := NewPurchase(tenantID, supplierID, "SUP-2", time.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, p.AddItem("X", LineInput{ProductID: uuid.New(), Quantity: 0, UnitPrice: decimal.NewFromInt(1)}), shared.ErrValidation)
		assert.ErrorIs(t, p.AddItem("X", LineInput{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}), shared.ErrValidation)
		assert.ErrorIs(t, p.AddItem("X", LineInput{
			ProductID: uuid.New(),
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(10),
			Tax:       decimal.NewFromInt(5),
			Discount:  decimal.NewFromInt(12),
		}), shared.ErrValidation)
		assert.True(t, p.TotalAmount.IsZero())
		assert.ErrorIs(t, p.Confirm(), shared.ErrValidation)
	})
}
