package sales

import (
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleItemRequest is one checkout line. Exactly one of ProductID or Barcode identifies the product;
// the optional amounts override the catalog defaults.
type SaleItemRequest struct {
	ProductID *uuid.UUID       `json:"product_id"`
	Barcode   string           `json:"barcode" binding:"max=100"`
	Quantity  int64            `json:"quantity" binding:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"omitempty,decimal_gte0"`
	Tax       *decimal.Decimal `json:"tax" binding:"omitempty,decimal_gte0"`
	Discount  *decimal.Decimal `json:"discount" binding:"omitempty,decimal_gte0"`
}

// CheckoutPaymentRequest is money tendered at checkout
type CheckoutPaymentRequest struct {
	Method    string          `json:"method" binding:"required,oneof=cash card bank_transfer cheque mobile_money"`
	Amount    decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Reference string          `json:"reference" binding:"max=100"`
}

// CreateSaleRequest represents a POS checkout
type CreateSaleRequest struct {
	CustomerID     *uuid.UUID               `json:"customer_id"`
	SaleDate       *time.Time               `json:"sale_date"`
	Items          []SaleItemRequest        `json:"items" binding:"required,min=1,dive"`
	Payments       []CheckoutPaymentRequest `json:"payments" binding:"dive"`
	Notes          string                   `json:"notes" binding:"max=1000"`
	IdempotencyKey string                   `json:"idempotency_key" binding:"max=100"`
}

// PaymentRequest records a payment against an existing document
type PaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Method      string          `json:"method" binding:"required,oneof=cash card bank_transfer cheque mobile_money"`
	PaymentDate *time.Time      `json:"payment_date"`
	Reference   string          `json:"reference" binding:"max=100"`
	Notes       string          `json:"notes" binding:"max=500"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Tax         decimal.Decimal `json:"tax"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID           uuid.UUID       `json:"id"`
	DocumentType string          `json:"document_type"`
	DocumentID   uuid.UUID       `json:"document_id"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	PaymentDate  time.Time       `json:"payment_date"`
	Reference    string          `json:"reference,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	VoucherID    *uuid.UUID      `json:"voucher_id,omitempty"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	InvoiceNumber  string             `json:"invoice_number"`
	SaleDate       time.Time          `json:"sale_date"`
	CustomerID     *uuid.UUID         `json:"customer_id,omitempty"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	PaidAmount     decimal.Decimal    `json:"paid_amount"`
	Outstanding    decimal.Decimal    `json:"outstanding"`
	Status         string             `json:"status"`
	PaymentStatus  string             `json:"payment_status"`
	IdempotencyKey *string            `json:"idempotency_key,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	Items          []SaleItemResponse `json:"items,omitempty"`
	Payments       []PaymentResponse  `json:"payments,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// SaleListFilter represents filter options for the sale listing
type SaleListFilter struct {
	Status        string     `form:"status" binding:"omitempty,oneof=draft completed cancelled returned"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=unpaid partial paid"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	StartDate     *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate       *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
}

// DailyReportResponse summarizes one day of sales
type DailyReportResponse struct {
	Date          string                     `json:"date"`
	SaleCount     int64                      `json:"sale_count"`
	TotalRevenue  decimal.Decimal            `json:"total_revenue"`
	TotalTax      decimal.Decimal            `json:"total_tax"`
	TotalDiscount decimal.Decimal            `json:"total_discount"`
	TotalPaid     decimal.Decimal            `json:"total_paid"`
	ByMethod      map[string]decimal.Decimal `json:"by_method"`
}

// ToSaleResponse converts a sale and its payments
func ToSaleResponse(s *sales.Sale, payments []payment.Payment) SaleResponse {
	resp := SaleResponse{
		ID:             s.ID,
		InvoiceNumber:  s.InvoiceNumber,
		SaleDate:       s.SaleDate,
		CustomerID:     s.CustomerID,
		Subtotal:       s.Subtotal,
		TaxAmount:      s.TaxAmount,
		DiscountAmount: s.DiscountAmount,
		TotalAmount:    s.TotalAmount,
		PaidAmount:     s.PaidAmount,
		Outstanding:    s.Outstanding(),
		Status:         string(s.Status),
		PaymentStatus:  s.PaymentStatus.String(),
		IdempotencyKey: s.IdempotencyKey,
		Notes:          s.Notes,
		CreatedAt:      s.CreatedAt,
	}
	if len(s.Items) > 0 {
		resp.Items = make([]SaleItemResponse, len(s.Items))
		for i, it := range s.Items {
			resp.Items[i] = SaleItemResponse{
				ID:          it.ID,
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Tax:         it.Tax,
				Discount:    it.Discount,
				LineTotal:   it.LineTotal,
			}
		}
	}
	if len(payments) > 0 {
		resp.Payments = make([]PaymentResponse, len(payments))
		for i := range payments {
			resp.Payments[i] = ToPaymentResponse(&payments[i])
		}
	}
	return resp
}

// ToPaymentResponse converts a payment
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		DocumentType: string(p.DocumentType),
		DocumentID:   p.DocumentID,
		Amount:       p.Amount,
		Method:       p.Method.String(),
		PaymentDate:  p.PaymentDate,
		Reference:    p.Reference,
		Notes:        p.Notes,
		VoucherID:    p.VoucherID,
	}
}

// ToDailyReportResponse converts a daily summary
func ToDailyReportResponse(d *sales.DailySummary) DailyReportResponse {
	byMethod := make(map[string]decimal.Decimal, len(d.ByMethod))
	for m, v := range d.ByMethod {
		byMethod[m.String()] = v
	}
	return DailyReportResponse{
		Date:          d.Date.Format("2006-01-02"),
		SaleCount:     d.SaleCount,
		TotalRevenue:  d.TotalRevenue,
		TotalTax:      d.TotalTax,
		TotalDiscount: d.TotalDiscount,
		TotalPaid:     d.TotalPaid,
		ByMethod:      byMethod,
	}
}
