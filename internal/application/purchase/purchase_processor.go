package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appaccounting "github.com/erp/ledger/internal/application/accounting"
	appstock "github.com/erp/ledger/internal/application/stock"
	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/accounting"
	"github.com/erp/ledger/internal/domain/payment"
	"github.com/erp/ledger/internal/domain/purchase"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/stock"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProcessorConfig holds purchase processor settings
type ProcessorConfig struct {
	// UpdatePurchasePrice refreshes each product's purchase price from the received unit price
	UpdatePurchasePrice bool
}

// Processor receives supplier purchases into stock and posts them to payables
type Processor struct {
	scope          uow.TransactionScope
	purchaseRepo   purchase.Repository
	paymentRepo    payment.Repository
	ledger         *appstock.Ledger
	engine         *appaccounting.Engine
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	cfg            ProcessorConfig
	now            func() time.Time
}

// NewProcessor creates a new purchase Processor
func NewProcessor(
	scope uow.TransactionScope,
	purchaseRepo purchase.Repository,
	paymentRepo payment.Repository,
	ledger *appstock.Ledger,
	engine *appaccounting.Engine,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *Processor {
	return &Processor{
		scope:        scope,
		purchaseRepo: purchaseRepo,
		paymentRepo:  paymentRepo,
		ledger:       ledger,
		engine:       engine,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (p *Processor) SetEventPublisher(publisher shared.EventPublisher) {
	p.eventPublisher = publisher
}

// CreatePurchase records a supplier invoice, increases stock and posts the payable
func (p *Processor) CreatePurchase(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseRequest) (*PurchaseResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrInvoiceNumber, req.InvoiceNumber,
		"items_count", len(req.Items),
	)

	if len(req.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "A purchase needs at least one item")
	}

	var created *purchase.Purchase
	var events []shared.DomainEvent
	err := p.scope.Execute(ctx, func(repos uow.Repositories) error {
		invoiceNumber := strings.TrimSpace(req.InvoiceNumber)
		exists, err := repos.Purchases().ExistsByInvoiceNumber(ctx, tenantID, invoiceNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainErrorf(shared.CodeAlreadyExists, "Purchase invoice %s already exists", invoiceNumber)
		}

		date := req.PurchaseDate
		if date.IsZero() {
			date = p.now()
		}
		pur, err := purchase.NewPurchase(tenantID, req.SupplierID, invoiceNumber, date)
		if err != nil {
			return err
		}
		pur.Notes = strings.TrimSpace(req.Notes)

		for _, line := range req.Items {
			product, err := repos.Products().FindByIDForUpdate(ctx, tenantID, line.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return stock.NewProductNotFoundError(line.ProductID.String())
				}
				return err
			}
			if err := pur.AddItem(product.Name, purchase.LineInput{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Tax:       line.Tax,
				Discount:  line.Discount,
			}); err != nil {
				return err
			}
		}
		if err := pur.Confirm(); err != nil {
			return err
		}
		if err := repos.Purchases().Create(ctx, pur); err != nil {
			return err
		}

		var collector shared.EventCollector
		for _, item := range pur.Items {
			moved, err := p.ledger.RecordMovement(ctx, repos, appstock.MovementInput{
				TenantID:    tenantID,
				ProductID:   item.ProductID,
				Quantity:    item.Quantity,
				Type:        stock.MovementTypePurchase,
				ReferenceID: &pur.ID,
				Reason:      pur.InvoiceNumber,
			})
			if err != nil {
				return err
			}
			if p.cfg.UpdatePurchasePrice {
				if err := moved.Product.UpdatePurchasePrice(item.UnitPrice); err != nil {
					return err
				}
				if err := repos.Products().UpdatePurchasePrice(ctx, moved.Product); err != nil {
					return err
				}
			}
			collector.Collect(moved.Product)
		}

		desc := fmt.Sprintf("Purchase %s", pur.InvoiceNumber)
		if _, err := p.engine.Post(ctx, repos, appaccounting.Posting{
			TenantID:    tenantID,
			Type:        accounting.VoucherTypePurchase,
			Date:        pur.PurchaseDate,
			ReferenceID: pur.ID,
			Lines: []accounting.RoleLine{
				accounting.DebitLine(accounting.RolePurchases, pur.TotalAmount, desc),
				accounting.CreditLine(accounting.RolePayable, pur.TotalAmount, desc),
			},
			Notes: desc,
		}); err != nil {
			return err
		}

		collector.Collect(pur)
		created = pur
		events = collector.Events()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrPurchaseID, created.ID.String())
	p.logger.Info("purchase confirmed",
		zap.String("purchase_id", created.ID.String()),
		zap.String("invoice_number", created.InvoiceNumber),
		zap.String("total_amount", created.TotalAmount.String()),
	)
	p.publish(ctx, events)

	resp := ToPurchaseResponse(created, nil)
	return &resp, nil
}

// RecordPayment records a payment to the supplier, posts a payment voucher and
// recomputes the purchase's paid amount and payment status
func (p *Processor) RecordPayment(ctx context.Context, tenantID, purchaseID uuid.UUID, req PaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "record_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPurchaseID, purchaseID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	var recorded *payment.Payment
	var events []shared.DomainEvent
	err := p.scope.Execute(ctx, func(repos uow.Repositories) error {
		pur, err := repos.Purchases().FindByIDForUpdate(ctx, tenantID, purchaseID)
		if err != nil {
			return err
		}
		if pur.Status == purchase.StatusCancelled {
			return shared.NewDomainError(shared.CodeInvalidState, "Cannot record payment for a cancelled purchase")
		}

		paid, err := repos.Payments().SumByDocument(ctx, tenantID, payment.DocumentTypePurchase, pur.ID)
		if err != nil {
			return err
		}
		outstanding := pur.TotalAmount.Sub(paid)
		if req.Amount.GreaterThan(outstanding) {
			return shared.NewDomainErrorf(shared.CodeInvalidInput,
				"Payment amount %s exceeds outstanding balance %s", req.Amount.StringFixed(2), outstanding.StringFixed(2))
		}

		date := p.now()
		if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
			date = *req.PaymentDate
		}
		pay, err := payment.NewPayment(tenantID, payment.DocumentTypePurchase, pur.ID, req.Amount, payment.Method(req.Method), date)
		if err != nil {
			return err
		}
		supplierID := pur.SupplierID
		pay.WithParty(&supplierID).WithDetails(req.Reference, req.Notes)

		desc := fmt.Sprintf("Payment for %s", pur.InvoiceNumber)
		voucher, err := p.engine.Post(ctx, repos, appaccounting.Posting{
			TenantID:    tenantID,
			Type:        accounting.VoucherTypePayment,
			Date:        pay.PaymentDate,
			ReferenceID: pur.ID,
			Lines: []accounting.RoleLine{
				accounting.DebitLine(accounting.RolePayable, pay.Amount, desc),
				accounting.CreditLine(appaccounting.SettlementRole(pay.Method), pay.Amount, desc),
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

		total, err := repos.Payments().SumByDocument(ctx, tenantID, payment.DocumentTypePurchase, pur.ID)
		if err != nil {
			return err
		}
		pur.ApplyPaidAmount(total)
		if err := repos.Purchases().UpdatePayment(ctx, pur); err != nil {
			return err
		}

		recorded = pay
		events = []shared.DomainEvent{purchase.NewPurchasePaymentRecordedEvent(pur, pay.ID, pay.Amount)}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	p.logger.Info("purchase payment recorded",
		zap.String("purchase_id", purchaseID.String()),
		zap.String("payment_id", recorded.ID.String()),
		zap.String("amount", recorded.Amount.String()),
	)
	p.publish(ctx, events)

	resp := ToPaymentResponse(recorded)
	return &resp, nil
}

// GetPurchase returns a purchase with its items and payments
func (p *Processor) GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	pur, err := p.purchaseRepo.FindByID(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	payments, err := p.paymentRepo.FindByDocument(ctx, tenantID, payment.DocumentTypePurchase, pur.ID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseResponse(pur, payments)
	return &resp, nil
}

// ListPurchases lists purchases newest first without items
func (p *Processor) ListPurchases(ctx context.Context, tenantID uuid.UUID, filter PurchaseListFilter) ([]PurchaseResponse, int64, error) {
	var to *time.Time
	if filter.EndDate != nil {
		end := filter.EndDate.UTC().Truncate(24 * time.Hour).Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	domainFilter := purchase.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			From:     filter.StartDate,
			To:       to,
		}.Normalize(),
		Status:        purchase.Status(filter.Status),
		PaymentStatus: payment.Status(filter.PaymentStatus),
		SupplierID:    filter.SupplierID,
	}
	list, total, err := p.purchaseRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PurchaseResponse, len(list))
	for i := range list {
		list[i].Items = nil
		out[i] = ToPurchaseResponse(&list[i], nil)
	}
	return out, total, nil
}

func (p *Processor) publish(ctx context.Context, events []shared.DomainEvent) {
	if p.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := p.eventPublisher.Publish(ctx, events...); err != nil {
		p.logger.Error("failed to publish purchase events", zap.Error(err))
	}
}
