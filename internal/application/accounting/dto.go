package accounting

import (
	"time"

	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents a request to add an account to the chart
type CreateAccountRequest struct {
	Code        string     `json:"code" binding:"required,max=20"`
	Name        string     `json:"name" binding:"required,max=200"`
	AccountType string     `json:"account_type" binding:"required"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Description string     `json:"description" binding:"max=500"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	AccountType string     `json:"account_type"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Description string     `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SeedChartResponse reports the result of seeding the default chart
type SeedChartResponse struct {
	Created  int               `json:"created"`
	Existing int               `json:"existing"`
	Accounts []AccountResponse `json:"accounts"`
}

// JournalEntryRequest is one line of a manual voucher
type JournalEntryRequest struct {
	AccountID   uuid.UUID       `json:"account_id" binding:"required"`
	Debit       decimal.Decimal `json:"debit" binding:"decimal_gte0"`
	Credit      decimal.Decimal `json:"credit" binding:"decimal_gte0"`
	Description string          `json:"description" binding:"max=500"`
}

// JournalVoucherRequest represents a manual journal voucher
type JournalVoucherRequest struct {
	Date    time.Time             `json:"date" binding:"required"`
	Entries []JournalEntryRequest `json:"entries" binding:"required,min=2,dive"`
	Notes   string                `json:"notes" binding:"max=1000"`
}

// EntryResponse represents a journal entry in API responses
type EntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNumber  int             `json:"line_number"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountCode string          `json:"account_code,omitempty"`
	AccountName string          `json:"account_name,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// VoucherResponse represents a voucher with its entries
type VoucherResponse struct {
	ID            uuid.UUID       `json:"id"`
	VoucherNumber string          `json:"voucher_number"`
	VoucherType   string          `json:"voucher_type"`
	VoucherDate   time.Time       `json:"voucher_date"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	AutoGenerated bool            `json:"auto_generated"`
	Notes         string          `json:"notes,omitempty"`
	TotalDebit    decimal.Decimal `json:"total_debit"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
	Entries       []EntryResponse `json:"entries,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// VoucherListFilter represents filter options for the voucher listing
type VoucherListFilter struct {
	VoucherType string     `form:"voucher_type" binding:"omitempty,oneof=journal payment receipt sale purchase"`
	ReferenceID *uuid.UUID `form:"reference_id"`
	StartDate   *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate     *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

// LedgerQuery selects an account ledger; both bounds are optional and inclusive
type LedgerQuery struct {
	AccountID uuid.UUID
	From      *time.Time
	To        *time.Time
}

// LedgerEntryResponse is one ledger line with its running balance
type LedgerEntryResponse struct {
	EntryID       uuid.UUID       `json:"entry_id"`
	VoucherID     uuid.UUID       `json:"voucher_id"`
	VoucherNumber string          `json:"voucher_number"`
	VoucherType   string          `json:"voucher_type"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description,omitempty"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
}

// LedgerResponse is an account ledger
type LedgerResponse struct {
	Account        AccountResponse       `json:"account"`
	From           *time.Time            `json:"from,omitempty"`
	To             *time.Time            `json:"to,omitempty"`
	OpeningBalance decimal.Decimal       `json:"opening_balance"`
	Entries        []LedgerEntryResponse `json:"entries"`
	TotalDebit     decimal.Decimal       `json:"total_debit"`
	TotalCredit    decimal.Decimal       `json:"total_credit"`
	ClosingBalance decimal.Decimal       `json:"closing_balance"`
}

// TrialBalanceRowResponse is one account in a trial balance
type TrialBalanceRowResponse struct {
	AccountID     uuid.UUID       `json:"account_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	AccountType   string          `json:"account_type"`
	TotalDebit    decimal.Decimal `json:"total_debit"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
	DebitBalance  decimal.Decimal `json:"debit_balance"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	BalanceSide   string          `json:"balance_side"`
}

// TrialBalanceResponse is the trial balance as of a date
type TrialBalanceResponse struct {
	AsOf        time.Time                 `json:"as_of"`
	Accounts    []TrialBalanceRowResponse `json:"accounts"`
	TotalDebit  decimal.Decimal           `json:"total_debit"`
	TotalCredit decimal.Decimal           `json:"total_credit"`
	Difference  decimal.Decimal           `json:"difference"`
	IsBalanced  bool                      `json:"is_balanced"`
}

// ProfitAndLossLineResponse is one income or expense account
type ProfitAndLossLineResponse struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ProfitAndLossResponse is the P&L over a period
type ProfitAndLossResponse struct {
	From         time.Time                   `json:"from"`
	To           time.Time                   `json:"to"`
	Income       []ProfitAndLossLineResponse `json:"income"`
	Expenses     []ProfitAndLossLineResponse `json:"expenses"`
	TotalIncome  decimal.Decimal             `json:"total_income"`
	TotalExpense decimal.Decimal             `json:"total_expense"`
	NetProfit    decimal.Decimal             `json:"net_profit"`
}

// ExportFile is a generated report ready for download
type ExportFile struct {
	FileName        string
	ContentType     string
	Content         []byte
	ArchiveLocation string
}

// ToAccountResponse converts an account to its response
func ToAccountResponse(a *accounting.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Code:        a.Code,
		Name:        a.Name,
		AccountType: a.AccountType.String(),
		ParentID:    a.ParentID,
		Description: a.Description,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt,
	}
}

// ToVoucherResponse converts a voucher; accounts may be nil, in which case codes are omitted
func ToVoucherResponse(v *accounting.Voucher, accounts map[uuid.UUID]*accounting.Account) VoucherResponse {
	resp := VoucherResponse{
		ID:            v.ID,
		VoucherNumber: v.VoucherNumber,
		VoucherType:   v.VoucherType.String(),
		VoucherDate:   v.VoucherDate,
		ReferenceID:   v.ReferenceID,
		AutoGenerated: v.AutoGenerated,
		Notes:         v.Notes,
		TotalDebit:    v.TotalDebit(),
		TotalCredit:   v.TotalCredit(),
		CreatedAt:     v.CreatedAt,
	}
	if len(v.Entries) > 0 {
		resp.Entries = make([]EntryResponse, len(v.Entries))
		for i, e := range v.Entries {
			resp.Entries[i] = EntryResponse{
				ID:          e.ID,
				LineNumber:  e.LineNumber,
				AccountID:   e.AccountID,
				Debit:       e.Debit,
				Credit:      e.Credit,
				Description: e.Description,
			}
			if a, ok := accounts[e.AccountID]; ok {
				resp.Entries[i].AccountCode = a.Code
				resp.Entries[i].AccountName = a.Name
			}
		}
	}
	return resp
}

// ToLedgerResponse converts a ledger
func ToLedgerResponse(l *accounting.Ledger) LedgerResponse {
	resp := LedgerResponse{
		Account:        ToAccountResponse(l.Account),
		From:           l.From,
		To:             l.To,
		OpeningBalance: l.OpeningBalance,
		Entries:        make([]LedgerEntryResponse, len(l.Lines)),
		TotalDebit:     l.TotalDebit,
		TotalCredit:    l.TotalCredit,
		ClosingBalance: l.ClosingBalance,
	}
	for i, line := range l.Lines {
		resp.Entries[i] = LedgerEntryResponse{
			EntryID:       line.EntryID,
			VoucherID:     line.VoucherID,
			VoucherNumber: line.VoucherNumber,
			VoucherType:   line.VoucherType.String(),
			Date:          line.EntryDate,
			Description:   line.Description,
			Debit:         line.Debit,
			Credit:        line.Credit,
			Balance:       line.Balance,
		}
	}
	return resp
}

// ToTrialBalanceResponse converts a trial balance
func ToTrialBalanceResponse(tb *accounting.TrialBalance) TrialBalanceResponse {
	resp := TrialBalanceResponse{
		AsOf:        tb.AsOf,
		Accounts:    make([]TrialBalanceRowResponse, len(tb.Rows)),
		TotalDebit:  tb.TotalDebit,
		TotalCredit: tb.TotalCredit,
		Difference:  tb.Difference,
		IsBalanced:  tb.IsBalanced(),
	}
	for i, row := range tb.Rows {
		r := TrialBalanceRowResponse{
			AccountID:     row.AccountID,
			Code:          row.Code,
			Name:          row.Name,
			AccountType:   row.AccountType.String(),
			TotalDebit:    row.Debit,
			TotalCredit:   row.Credit,
			DebitBalance:  decimal.Zero,
			CreditBalance: decimal.Zero,
			BalanceSide:   string(row.BalanceSide),
		}
		if row.BalanceSide == accounting.BalanceSideDebit {
			r.DebitBalance = row.Balance
		} else {
			r.CreditBalance = row.Balance
		}
		resp.Accounts[i] = r
	}
	return resp
}

// ToProfitAndLossResponse converts a P&L
func ToProfitAndLossResponse(pl *accounting.ProfitAndLoss) ProfitAndLossResponse {
	convert := func(lines []accounting.ProfitAndLossLine) []ProfitAndLossLineResponse {
		out := make([]ProfitAndLossLineResponse, len(lines))
		for i, l := range lines {
			out[i] = ProfitAndLossLineResponse{AccountID: l.AccountID, Code: l.Code, Name: l.Name, Amount: l.Amount}
		}
		return out
	}
	return ProfitAndLossResponse{
		From:         pl.From,
		To:           pl.To,
		Income:       convert(pl.Income),
		Expenses:     convert(pl.Expenses),
		TotalIncome:  pl.TotalIncome,
		TotalExpense: pl.TotalExpense,
		NetProfit:    pl.NetProfit,
	}
}
