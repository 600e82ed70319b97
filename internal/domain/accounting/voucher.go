package accounting

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the largest debit/credit difference still treated as balanced
var BalanceTolerance = decimal.NewFromFloat(0.01)

// VoucherType classifies a voucher by the event that produced it
type VoucherType string

const (
	VoucherTypeJournal  VoucherType = "journal"
	VoucherTypePayment  VoucherType = "payment"
	VoucherTypeReceipt  VoucherType = "receipt"
	VoucherTypeSale     VoucherType = "sale"
	VoucherTypePurchase VoucherType = "purchase"
)

// IsValid returns true if the voucher type is valid
func (t VoucherType) IsValid() bool {
	switch t {
	case VoucherTypeJournal, VoucherTypePayment, VoucherTypeReceipt, VoucherTypeSale, VoucherTypePurchase:
		return true
	}
	return false
}

// NumberPrefix returns the prefix used for voucher numbers of this type
func (t VoucherType) NumberPrefix() string {
	switch t {
	case VoucherTypeSale:
		return "SV"
	case VoucherTypePurchase:
		return "PV"
	case VoucherTypeReceipt:
		return "RV"
	case VoucherTypePayment:
		return "PY"
	default:
		return "JV"
	}
}

// String returns the string representation of VoucherType
func (t VoucherType) String() string {
	return string(t)
}

// JournalEntry is a single debit/credit posting against one account
type JournalEntry struct {
	ID          uuid.UUID
	VoucherID   uuid.UUID
	AccountID   uuid.UUID
	LineNumber  int
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	EntryDate   time.Time
	Description string
}

// EntryLine is the caller-supplied input for one journal entry
type EntryLine struct {
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// Voucher is a dated bundle of journal entries representing one accounting event.
// Vouchers are immutable once created.
type Voucher struct {
	shared.TenantAggregateRoot
	VoucherNumber string
	VoucherType   VoucherType
	VoucherDate   time.Time
	ReferenceID   *uuid.UUID
	AutoGenerated bool
	Notes         string
	Entries       []JournalEntry
}

// NewVoucher builds a voucher from entry lines and enforces the double-entry invariant.
// Every line must carry non-negative amounts, at least one of them non-zero, and the
// totals must agree within BalanceTolerance.
func NewVoucher(tenantID uuid.UUID, voucherType VoucherType, date time.Time, lines []EntryLine) (*Voucher, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Tenant ID cannot be empty")
	}
	if !voucherType.IsValid() {
		return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Invalid voucher type: %s", voucherType)
	}
	if date.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Voucher date is required")
	}
	if len(lines) < 2 {
		return nil, shared.NewDomainError(shared.CodeValidation, "A voucher needs at least two entries")
	}

	v := &Voucher{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		VoucherType:         voucherType,
		VoucherDate:         date.UTC(),
		Entries:             make([]JournalEntry, 0, len(lines)),
	}
	for i, line := range lines {
		if err := validateLine(i+1, line); err != nil {
			return nil, err
		}
		v.Entries = append(v.Entries, JournalEntry{
			ID:          uuid.New(),
			VoucherID:   v.ID,
			AccountID:   line.AccountID,
			LineNumber:  i + 1,
			Debit:       line.Debit,
			Credit:      line.Credit,
			EntryDate:   v.VoucherDate,
			Description: strings.TrimSpace(line.Description),
		})
	}
	if err := CheckBalance(v.TotalDebit(), v.TotalCredit()); err != nil {
		return nil, err
	}
	return v, nil
}

func validateLine(n int, line EntryLine) error {
	if line.AccountID == uuid.Nil {
		return shared.NewDomainErrorf(shared.CodeValidation, "Entry %d: account is required", n)
	}
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return shared.NewDomainErrorf(shared.CodeValidation, "Entry %d: amounts cannot be negative", n)
	}
	if line.Debit.IsZero() && line.Credit.IsZero() {
		return shared.NewDomainErrorf(shared.CodeValidation, "Entry %d: debit or credit must be non-zero", n)
	}
	return nil
}

// CheckBalance returns an UNBALANCED_VOUCHER error reporting the difference when
// |debit - credit| exceeds BalanceTolerance.
func CheckBalance(totalDebit, totalCredit decimal.Decimal) error {
	diff := totalDebit.Sub(totalCredit).Abs()
	if diff.GreaterThan(BalanceTolerance) {
		return &UnbalancedVoucherError{
			TotalDebit:  totalDebit,
			TotalCredit: totalCredit,
			Difference:  diff,
		}
	}
	return nil
}

// UnbalancedVoucherError reports a voucher whose debits and credits disagree
type UnbalancedVoucherError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Difference  decimal.Decimal
}

func (e *UnbalancedVoucherError) Error() string {
	return fmt.Sprintf("Voucher is not balanced: debit %s, credit %s, difference %s",
		e.TotalDebit.StringFixed(2), e.TotalCredit.StringFixed(2), e.Difference.StringFixed(2))
}

// Unwrap exposes the UNBALANCED_VOUCHER domain error
func (e *UnbalancedVoucherError) Unwrap() error {
	return shared.NewDomainError(shared.CodeUnbalancedVoucher, e.Error())
}

// TotalDebit sums the debit side
func (v *Voucher) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, e := range v.Entries {
		total = total.Add(e.Debit)
	}
	return total
}

// TotalCredit sums the credit side
func (v *Voucher) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, e := range v.Entries {
		total = total.Add(e.Credit)
	}
	return total
}

// MarkAutoGenerated flags a voucher posted by the system for a business event
func (v *Voucher) MarkAutoGenerated(referenceID uuid.UUID) {
	v.AutoGenerated = true
	if referenceID != uuid.Nil {
		ref := referenceID
		v.ReferenceID = &ref
	}
}

// AssignNumber sets the voucher number from its sequence within the month
func (v *Voucher) AssignNumber(seq int64) {
	v.VoucherNumber = shared.FormatDocumentNumber(v.VoucherType.NumberPrefix(), v.VoucherDate, seq)
}

// SequencePrefix is the counter key for numbering this voucher
func (v *Voucher) SequencePrefix() string {
	return shared.MonthPrefix(v.VoucherType.NumberPrefix(), v.VoucherDate)
}
