package payment

import "github.com/shopspring/decimal"

// Status is the settlement state of a sale or purchase. It is always derived from
// the payments recorded against the document and is never set directly.
type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusUnpaid, StatusPartial, StatusPaid:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// DeriveStatus is the single authoritative mapping from amounts to payment status.
// The checks run in order: paid >= total is paid, paid > 0 is partial, anything else unpaid.
// A zero-total document is therefore paid.
func DeriveStatus(total, paid decimal.Decimal) Status {
	switch {
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// Sum totals the amounts of the given payments
func Sum(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
