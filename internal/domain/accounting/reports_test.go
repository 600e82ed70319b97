package accounting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLedger(t *testing.T) {
	rows := []LedgerRow{
		{EntryID: uuid.New(), Debit: d("100"), Credit: decimal.Zero},
		{EntryID: uuid.New(), Debit: decimal.Zero, Credit: d("30")},
		{EntryID: uuid.New(), Debit: d("5"), Credit: decimal.Zero},
	}
	l := BuildLedger(&Account{Code: "1000"}, d("20"), rows)

	require.Len(t, l.Lines, 3)
	assert.True(t, l.Lines[0].Balance.Equal(d("120")))
	assert.True(t, l.Lines[1].Balance.Equal(d("90")))
	assert.True(t, l.Lines[2].Balance.Equal(d("95")))
	assert.True(t, l.ClosingBalance.Equal(d("95")))
	assert.True(t, l.TotalDebit.Equal(d("105")))
	assert.True(t, l.TotalCredit.Equal(d("30")))
}

func TestBuildTrialBalance(t *testing.T) {
	asOf := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	tb := BuildTrialBalance(asOf, []AccountTotals{
		{Code: "1000", AccountType: AccountTypeAsset, Debit: d("160"), Credit: d("40")},
		{Code: "2000", AccountType: AccountTypeLiability, Debit: d("40"), Credit: d("100")},
		{Code: "4000", AccountType: AccountTypeIncome, Debit: decimal.Zero, Credit: d("60")},
		{Code: "6000", AccountType: AccountTypeExpense, Debit: decimal.Zero, Credit: decimal.Zero},
	})

	require.Len(t, tb.Rows, 4)
	assert.Equal(t, BalanceSideDebit, tb.Rows[0].BalanceSide)
	assert.True(t, tb.Rows[0].Balance.Equal(d("120")))
	assert.Equal(t, BalanceSideCredit, tb.Rows[1].BalanceSide)
	assert.True(t, tb.Rows[1].Balance.Equal(d("60")))
	assert.Equal(t, BalanceSideDebit, tb.Rows[3].BalanceSide, "zero balance counts as debit side")
	assert.True(t, tb.TotalDebit.Equal(d("120")))
	assert.True(t, tb.TotalCredit.Equal(d("120")))
	assert.True(t, tb.Difference.IsZero())
	assert.True(t, tb.IsBalanced())
}

func TestBuildProfitAndLoss(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	pl := BuildProfitAndLoss(from, to, []AccountTotals{
		{Code: "1000", AccountType: AccountTypeAsset, Debit: d("500")},
		{Code: "4000", AccountType: AccountTypeIncome, Debit: d("10"), Credit: d("300")},
		{Code: "5000", AccountType: AccountTypeExpense, Debit: d("120"), Credit: d("20")},
		{Code: "6000", AccountType: AccountTypeExpense, Debit: d("50")},
	})

	assert.True(t, pl.TotalIncome.Equal(d("290")))
	assert.True(t, pl.TotalExpense.Equal(d("150")))
	assert.True(t, pl.NetProfit.Equal(d("140")))
	assert.Len(t, pl.Income, 1)
	assert.Len(t, pl.Expenses, 2)
}

func TestAccount(t *testing.T) {
	tenantID := uuid.New()

	t.Run("validates code and name", func(t *testing.T) {
		_, err := NewAccount(tenantID, " ", "Cash", AccountTypeAsset)
		assert.Error(t, err)
		_, err = NewAccount(tenantID, "1000", "", AccountTypeAsset)
		assert.Error(t, err)
		_, err = NewAccount(tenantID, "1000", "Cash", AccountType("OTHER"))
		assert.Error(t, err)
	})

	t.Run("parent must share type", func(t *testing.T) {
		parent, err := NewAccount(tenantID, "1000", "Cash", AccountTypeAsset)
		require.NoError(t, err)
		child, err := NewAccount(tenantID, "1010", "Petty Cash", AccountTypeAsset)
		require.NoError(t, err)
		require.NoError(t, child.SetParent(parent))
		assert.Equal(t, parent.ID, *child.ParentID)

		income, err := NewAccount(tenantID, "4010", "Other Sales", AccountTypeIncome)
		require.NoError(t, err)
		assert.Error(t, income.SetParent(parent))
	})

	t.Run("parses type case-insensitively", func(t *testing.T) {
		at, err := ParseAccountType("Income")
		require.NoError(t, err)
		assert.Equal(t, AccountTypeIncome, at)
	})
}
