package accounting

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewVoucher_Balance(t *testing.T) {
	tenantID := uuid.New()
	cash, sales, tax := uuid.New(), uuid.New(), uuid.New()
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("balanced voucher is accepted", func(t *testing.T) {
		v, err := NewVoucher(tenantID, VoucherTypeJournal, date, []EntryLine{
			{AccountID: cash, Debit: d("100"), Credit: decimal.Zero},
			{AccountID: sales, Debit: decimal.Zero, Credit: d("90")},
			{AccountID: tax, Debit: decimal.Zero, Credit: d("10")},
		})
		require.NoError(t, err)
		assert.True(t, v.TotalDebit().Equal(d("100")))
		assert.True(t, v.TotalCredit().Equal(d("100")))
		require.Len(t, v.Entries, 3)
		assert.Equal(t, 1, v.Entries[0].LineNumber)
		assert.Equal(t, v.ID, v.Entries[2].VoucherID)
	})

	t.Run("unbalanced voucher reports the difference", func(t *testing.T) {
		_, err := NewVoucher(tenantID, VoucherTypeJournal, date, []EntryLine{
			{AccountID: cash, Debit: d("100"), Credit: decimal.Zero},
			{AccountID: sales, Debit: decimal.Zero, Credit: d("90")},
			{AccountID: tax, Debit: decimal.Zero, Credit: d("5")},
		})
		require.Error(t, err)

		var unbalanced *UnbalancedVoucherError
		require.True(t, errors.As(err, &unbalanced))
		assert.True(t, unbalanced.Difference.Equal(d("5")))
		assert.ErrorIs(t, err, shared.ErrUnbalancedVoucher)
	})

	t.Run("difference within tolerance is accepted", func(t *testing.T) {
		_, err := NewVoucher(tenantID, VoucherTypeJournal, date, []EntryLine{
			{AccountID: cash, Debit: d("100.005"), Credit: decimal.Zero},
			{AccountID: sales, Debit: decimal.Zero, Credit: d("100")},
		})
		assert.NoError(t, err)
	})

	t.Run("negative amounts are rejected", func(t *testing.T) {
		_, err := NewVoucher(tenantID, VoucherTypeJournal, date, []EntryLine{
			{AccountID: cash, Debit: d("-10"), Credit: decimal.Zero},
			{AccountID: sales, Debit: decimal.Zero, Credit: d("-10")},
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("all-zero line is rejected", func(t *testing.T) {
		_, err := NewVoucher(tenantID, VoucherTypeJournal, date, []EntryLine{
			{AccountID: cash, Debit: d("10"), Credit: decimal.Zero},
			{AccountID: sales, Debit: decimal.Zero, Credit: d("10")},
			{AccountID: tax, Debit: decimal.Zero, Credit: decimal.Zero},
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("single line is rejected", func(t *testing.T) {
		_, err := NewVoucher(tenantID, VoucherTypeJournal, date, []EntryLine{
			{AccountID: cash, Debit: d("10"), Credit: d("10")},
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestVoucher_Numbering(t *testing.T) {
	v, err := NewVoucher(uuid.New(), VoucherTypeSale, time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC), []EntryLine{
		{AccountID: uuid.New(), Debit: d("1"), Credit: decimal.Zero},
		{AccountID: uuid.New(), Debit: decimal.Zero, Credit: d("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, "SV-202407", v.SequencePrefix())
	v.AssignNumber(12)
	assert.Equal(t, "SV-202407-0012", v.VoucherNumber)
}

func TestRoleMap(t *testing.T) {
	m := DefaultRoleMap().Merge(map[string]string{"cash": "1010", "sales": ""})

	code, err := m.CodeFor(RoleCash)
	require.NoError(t, err)
	assert.Equal(t, "1010", code)

	code, err = m.CodeFor(RoleSales)
	require.NoError(t, err)
	assert.Equal(t, "4000", code, "blank override keeps the default")

	_, err = m.CodeFor(PostingRole("unknown"))
	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestCompactLines(t *testing.T) {
	lines := CompactLines([]RoleLine{
		DebitLine(RoleCash, d("10"), ""),
		CreditLine(RoleTaxPayable, decimal.Zero, ""),
		CreditLine(RoleSales, d("10"), ""),
	})
	require.Len(t, lines, 2)
	assert.Equal(t, RoleSales, lines[1].Role)
}
