package sales

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LinePricing is the computed money of one line
type LinePricing struct {
	Quantity  int64
	UnitPrice decimal.Decimal
	Tax       decimal.Decimal
	Discount  decimal.Decimal
	LineTotal decimal.Decimal
}

// PriceOverrides are caller-supplied values that replace the catalog defaults
type PriceOverrides struct {
	UnitPrice *decimal.Decimal
	Tax       *decimal.Decimal
	Discount  *decimal.Decimal
}

// PriceLine computes a line from catalog defaults and overrides:
// unit price defaults to the sale price, tax to unitPrice × qty × taxPercent / 100,
// discount to zero and at most unitPrice × qty, and lineTotal = unitPrice × qty + tax - discount.
func PriceLine(qty int64, salePrice, taxPercent decimal.Decimal, o PriceOverrides) (LinePricing, error) {
	if qty < 1 {
		return LinePricing{}, shared.NewDomainError(shared.CodeValidation, "Quantity must be at least 1")
	}
	unitPrice := salePrice
	if o.UnitPrice != nil {
		unitPrice = *o.UnitPrice
	}
	if unitPrice.IsNegative() {
		return LinePricing{}, shared.NewDomainError(shared.CodeValidation, "Unit price cannot be negative")
	}
	q := decimal.NewFromInt(qty)
	gross := unitPrice.Mul(q)

	tax := gross.Mul(taxPercent).Div(hundred).Round(4)
	if o.Tax != nil {
		tax = *o.Tax
	}
	if tax.IsNegative() {
		return LinePricing{}, shared.NewDomainError(shared.CodeValidation, "Tax cannot be negative")
	}

	discount := decimal.Zero
	if o.Discount != nil {
		discount = *o.Discount
	}
	if discount.IsNegative() {
		return LinePricing{}, shared.NewDomainError(shared.CodeValidation, "Discount cannot be negative")
	}
	// Tax never absorbs a discount
	if discount.GreaterThan(gross) {
		return LinePricing{}, shared.NewDomainErrorf(shared.CodeValidation,
			"Discount %s exceeds line amount %s", discount.StringFixed(2), gross.StringFixed(2))
	}

	lineTotal := gross.Add(tax).Sub(discount)
	return LinePricing{
		Quantity:  qty,
		UnitPrice: unitPrice,
		Tax:       tax,
		Discount:  discount,
		LineTotal: lineTotal,
	}, nil
}
