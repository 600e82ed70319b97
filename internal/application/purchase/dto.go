package purchase

import (
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/purchase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseItemRequest is one received line
type PurchaseItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
	Tax       decimal.Decimal `json:"tax" binding:"decimal_gte0"`
	Discount  decimal.Decimal `json:"discount" binding:"decimal_gte0"`
}

// CreatePurchaseRequest represents a supplier invoice received into stock
type CreatePurchaseRequest struct {
	SupplierID    uuid.UUID             `json:"supplier_id" binding:"required"`
	InvoiceNumber string                `json:"invoice_number" binding:"required,max=50"`
	PurchaseDate  time.Time             `json:"purchase_date"`
	Items         []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes         string                `json:"notes" binding:"max=1000"`
}

// PaymentRequest records a payment to the supplier
type PaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Method      string          `json:"method" binding:"required,oneof=cash card bank_transfer cheque mobile_money"`
	PaymentDate *time.Time      `json:"payment_date"`
	Reference   string          `json:"reference" binding:"max=100"`
	Notes       string          `json:"notes" binding:"max=500"`
}

// PurchaseItemResponse represents a purchase line in API responses
type PurchaseItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Tax         decimal.Decimal `json:"tax"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PaymentResponse represents a supplier payment in API responses
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	PurchaseID  uuid.UUID       `json:"purchase_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	PaymentDate time.Time       `json:"payment_date"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	VoucherID   *uuid.UUID      `json:"voucher_id,omitempty"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID             uuid.UUID              `json:"id"`
	InvoiceNumber  string                 `json:"invoice_number"`
	SupplierID     uuid.UUID              `json:"supplier_id"`
	PurchaseDate   time.Time              `json:"purchase_date"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	TaxAmount      decimal.Decimal        `json:"tax_amount"`
	DiscountAmount decimal.Decimal        `json:"discount_amount"`
	TotalAmount    decimal.Decimal        `json:"total_amount"`
	PaidAmount     decimal.Decimal        `json:"paid_amount"`
	Outstanding    decimal.Decimal        `json:"outstanding"`
	Status         string                 `json:"status"`
	PaymentStatus  string                 `json:"payment_status"`
	Notes          string                 `json:"notes,omitempty"`
	Items          []PurchaseItemResponse `json:"items,omitempty"`
	Payments       []PaymentResponse      `json:"payments,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// PurchaseListFilter represents filter options for the purchase listing
type PurchaseListFilter struct {
	Status        string     `form:"status" binding:"omitempty,oneof=draft confirmed cancelled"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=unpaid partial paid"`
	SupplierID    *uuid.UUID `form:"supplier_id"`
	StartDate     *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate       *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
}

// ToPurchaseResponse converts a purchase and its payments
func ToPurchaseResponse(p *purchase.Purchase, payments []payment.Payment) PurchaseResponse {
	resp := PurchaseResponse{
		ID:             p.ID,
		InvoiceNumber:  p.InvoiceNumber,
		SupplierID:     p.SupplierID,
		PurchaseDate:   p.PurchaseDate,
		Subtotal:       p.Subtotal,
		TaxAmount:      p.TaxAmount,
		DiscountAmount: p.DiscountAmount,
		TotalAmount:    p.TotalAmount,
		PaidAmount:     p.PaidAmount,
		Outstanding:    p.Outstanding(),
		Status:         string(p.Status),
		PaymentStatus:  p.PaymentStatus.String(),
		Notes:          p.Notes,
		CreatedAt:      p.CreatedAt,
	}
	if len(p.Items) > 0 {
		resp.Items = make([]PurchaseItemResponse, len(p.Items))
		for i, it := range p.Items {
			resp.Items[i] = PurchaseItemResponse{
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

// ToPaymentResponse converts a supplier payment
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		PurchaseID:  p.DocumentID,
		Amount:      p.Amount,
		Method:      p.Method.String(),
		PaymentDate: p.PaymentDate,
		Reference:   p.Reference,
		Notes:       p.Notes,
		VoucherID:   p.VoucherID,
	}
}
