package sales

import (
	"context"
	"fmt"
	"strings"

	appaccounting "github.com/erp/ledger/internal/application/accounting"
	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/sales"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordPayment records a customer payment against an existing sale.
// It posts a receipt voucher, stores the payment and recomputes the sale's paid amount
// and payment status from every payment referencing it, all in one transaction.
func (p *Processor) RecordPayment(ctx context.Context, tenantID, saleID uuid.UUID, req PaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "record_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrSaleID, saleID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrPaymentMethod, req.Method,
	)

	var recorded *payment.Payment
	var events []shared.DomainEvent
	err := p.scope.Execute(ctx, func(repos uow.Repositories) error {
		sale, err := repos.Sales().FindByIDForUpdate(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if !sale.Status.AcceptsPayments() {
			return shared.NewDomainErrorf(shared.CodeInvalidState, "Cannot record payment for a %s sale", sale.Status)
		}

		paid, err := repos.Payments().SumByDocument(ctx, tenantID, payment.DocumentTypeSale, sale.ID)
		if err != nil {
			return err
		}
		outstanding := sale.TotalAmount.Sub(paid)
		if req.Amount.GreaterThan(outstanding) {
			return shared.NewDomainErrorf(shared.CodeInvalidInput,
				"Payment amount %s exceeds outstanding balance %s", req.Amount.StringFixed(2), outstanding.StringFixed(2))
		}

		date := p.now()
		if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
			date = *req.PaymentDate
		}
		pay, err := payment.NewPayment(tenantID, payment.DocumentTypeSale, sale.ID, req.Amount, payment.Method(req.Method), date)
		if err != nil {
			return err
		}
		pay.WithParty(sale.CustomerID).WithDetails(req.Reference, req.Notes)

		desc := fmt.Sprintf("Receipt for %s", sale.InvoiceNumber)
		voucher, err := p.engine.Post(ctx, repos, appaccounting.Posting{
			TenantID:    tenantID,
			Type:        accounting.VoucherTypeReceipt,
			Date:        pay.PaymentDate,
			ReferenceID: sale.ID,
			Lines: []accounting.RoleLine{
				accounting.DebitLine(appaccounting.SettlementRole(pay.Method), pay.Amount, desc),
				accounting.CreditLine(accounting.RoleReceivable, pay.Amount, desc),
			},
			Notes: strings.TrimSpace(req.Notes),
		})
		if err != nil {
			return err
		}
		pay.LinkVoucher(voucher.ID)

		if err := repos.Payments().Save(ctx, pay); err != nil {
			return err
		}
		if err := applyPayments(ctx, repos, sale); err != nil {
			return err
		}

		recorded = pay
		events = []shared.DomainEvent{sales.NewSalePaymentRecordedEvent(sale, pay.ID, pay.Amount)}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	p.logger.Info("sale payment recorded",
		zap.String("sale_id", saleID.String()),
		zap.String("payment_id", recorded.ID.String()),
		zap.String("amount", recorded.Amount.String()),
	)
	p.publish(ctx, events)

	resp := ToPaymentResponse(recorded)
	return &resp, nil
}

// applyPayments is the single place a sale's paid amount and payment status are recomputed
func applyPayments(ctx context.Context, repos uow.Repositories, sale *sales.Sale) error {
	paid, err := repos.Payments().SumByDocument(ctx, sale.TenantID, payment.DocumentTypeSale, sale.ID)
	if err != nil {
		return err
	}
	sale.ApplyPaidAmount(paid)
	return repos.Sales().UpdatePayment(ctx, sale)
}
