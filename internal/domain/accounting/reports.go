package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRow is a journal entry joined with its voucher, as read for a ledger
type LedgerRow struct {
	EntryID       uuid.UUID
	VoucherID     uuid.UUID
	VoucherNumber string
	VoucherType   VoucherType
	EntryDate     time.Time
	Description   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// LedgerLine is a ledger row with the running balance after it
type LedgerLine struct {
	LedgerRow
	Balance decimal.Decimal
}

// Ledger is an account's entries in date order with running balance
type Ledger struct {
	Account        *Account
	From           *time.Time
	To             *time.Time
	OpeningBalance decimal.Decimal
	Lines          []LedgerLine
	TotalDebit     decimal.Decimal
	TotalCredit    decimal.Decimal
	ClosingBalance decimal.Decimal
}

// BuildLedger accumulates balance += debit - credit over rows, which must already be
// ordered by date ascending.
func BuildLedger(account *Account, opening decimal.Decimal, rows []LedgerRow) *Ledger {
	l := &Ledger{
		Account:        account,
		OpeningBalance: opening,
		Lines:          make([]LedgerLine, 0, len(rows)),
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}
	balance := opening
	for _, r := range rows {
		balance = balance.Add(r.Debit).Sub(r.Credit)
		l.TotalDebit = l.TotalDebit.Add(r.Debit)
		l.TotalCredit = l.TotalCredit.Add(r.Credit)
		l.Lines = append(l.Lines, LedgerLine{LedgerRow: r, Balance: balance})
	}
	l.ClosingBalance = balance
	return l
}

// AccountTotals is the aggregated debit and credit of one account over a period
type AccountTotals struct {
	AccountID   uuid.UUID
	Code        string
	Name        string
	AccountType AccountType
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// BalanceSide says on which side an account's net balance falls
type BalanceSide string

const (
	BalanceSideDebit  BalanceSide = "Debit"
	BalanceSideCredit BalanceSide = "Credit"
)

// TrialBalanceRow is one account in a trial balance
type TrialBalanceRow struct {
	AccountTotals
	Balance     decimal.Decimal
	BalanceSide BalanceSide
}

// TrialBalance lists each account's net balance as of a date
type TrialBalance struct {
	AsOf        time.Time
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Difference  decimal.Decimal
}

// IsBalanced reports whether debit-side and credit-side totals agree within tolerance
func (tb *TrialBalance) IsBalanced() bool {
	return tb.Difference.Abs().LessThanOrEqual(BalanceTolerance)
}

// BuildTrialBalance nets each account: debit - credit >= 0 is a debit-side balance,
// otherwise the absolute value is a credit-side balance.
func BuildTrialBalance(asOf time.Time, totals []AccountTotals) *TrialBalance {
	tb := &TrialBalance{
		AsOf:        asOf,
		Rows:        make([]TrialBalanceRow, 0, len(totals)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, t := range totals {
		net := t.Debit.Sub(t.Credit)
		row := TrialBalanceRow{AccountTotals: t}
		if net.GreaterThanOrEqual(decimal.Zero) {
			row.Balance = net
			row.BalanceSide = BalanceSideDebit
			tb.TotalDebit = tb.TotalDebit.Add(net)
		} else {
			row.Balance = net.Abs()
			row.BalanceSide = BalanceSideCredit
			tb.TotalCredit = tb.TotalCredit.Add(row.Balance)
		}
		tb.Rows = append(tb.Rows, row)
	}
	tb.Difference = tb.TotalDebit.Sub(tb.TotalCredit)
	return tb
}

// ProfitAndLossLine is an income or expense account's contribution
type ProfitAndLossLine struct {
	AccountID uuid.UUID
	Code      string
	Name      string
	Amount    decimal.Decimal
}

// ProfitAndLoss summarizes income and expenses over a period
type ProfitAndLoss struct {
	From         time.Time
	To           time.Time
	Income       []ProfitAndLossLine
	Expenses     []ProfitAndLossLine
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetProfit    decimal.Decimal
}

// BuildProfitAndLoss sums income as credit - debit and expenses as debit - credit.
// Accounts of other types are ignored.
func BuildProfitAndLoss(from, to time.Time, totals []AccountTotals) *ProfitAndLoss {
	pl := &ProfitAndLoss{
		From:         from,
		To:           to,
		Income:       make([]ProfitAndLossLine, 0),
		Expenses:     make([]ProfitAndLossLine, 0),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, t := range totals {
		switch t.AccountType {
		case AccountTypeIncome:
			amount := t.Credit.Sub(t.Debit)
			pl.Income = append(pl.Income, ProfitAndLossLine{AccountID: t.AccountID, Code: t.Code, Name: t.Name, Amount: amount})
			pl.TotalIncome = pl.TotalIncome.Add(amount)
		case AccountTypeExpense:
			amount := t.Debit.Sub(t.Credit)
			pl.Expenses = append(pl.Expenses, ProfitAndLossLine{AccountID: t.AccountID, Code: t.Code, Name: t.Name, Amount: amount})
			pl.TotalExpense = pl.TotalExpense.Add(amount)
		}
	}
	pl.NetProfit = pl.TotalIncome.Sub(pl.TotalExpense)
	return pl
}
