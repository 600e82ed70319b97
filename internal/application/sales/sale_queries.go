package sales

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/sales"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// GetSale returns a sale with its items and payments
func (p *Processor) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := p.saleRepo.FindByID(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	payments, err := p.paymentRepo.FindByDocument(ctx, tenantID, payment.DocumentTypeSale, sale.ID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale, payments)
	return &resp, nil
}

// ListSales lists sales newest first without items
func (p *Processor) ListSales(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	var to *time.Time
	if filter.EndDate != nil {
		end := filter.EndDate.UTC().Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	domainFilter := sales.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			From:     filter.StartDate,
			To:       to,
		}.Normalize(),
		Status:        sales.Status(filter.Status),
		PaymentStatus: payment.Status(filter.PaymentStatus),
		CustomerID:    filter.CustomerID,
	}
	list, total, err := p.saleRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SaleResponse, len(list))
	for i := range list {
		list[i].Items = nil
		out[i] = ToSaleResponse(&list[i], nil)
	}
	return out, total, nil
}

// DailySalesReport summarizes completed sales of one UTC day
func (p *Processor) DailySalesReport(ctx context.Context, tenantID uuid.UUID, day time.Time) (*DailyReportResponse, error) {
	if day.IsZero() {
		day = p.now()
	}
	summary, err := p.saleRepo.DailySummary(ctx, tenantID, day.UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, err
	}
	resp := ToDailyReportResponse(summary)
	return &resp, nil
}
