package sales

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
	"github.com/erp/ledger/internal/domain/sales"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/stock"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultMaxRetries is how many times a checkout is attempted when it hits a transient conflict
const DefaultMaxRetries = 3

// CheckoutGuard serializes concurrent checkouts that carry the same idempotency key.
// The returned release func must always be called.
type CheckoutGuard interface {
	Acquire(ctx context.Context, tenantID uuid.UUID, idempotencyKey string) (release func(), err error)
}

// ProcessorConfig holds sale processor settings
type ProcessorConfig struct {
	MaxRetries int
}

// Processor turns a checkout into a sale, its stock movements and its voucher in one transaction
type Processor struct {
	scope          uow.TransactionScope
	saleRepo       sales.Repository
	paymentRepo    payment.Repository
	ledger         *appstock.Ledger
	engine         *appaccounting.Engine
	guard          CheckoutGuard
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	cfg            ProcessorConfig
	now            func() time.Time
}

// NewProcessor creates a new sale Processor
func NewProcessor(
	scope uow.TransactionScope,
	saleRepo sales.Repository,
	paymentRepo payment.Repository,
	ledger *appstock.Ledger,
	engine *appaccounting.Engine,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *Processor {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &Processor{
		scope:       scope,
		saleRepo:    saleRepo,
		paymentRepo: paymentRepo,
		ledger:      ledger,
		engine:      engine,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (p *Processor) SetEventPublisher(publisher shared.EventPublisher) {
	p.eventPublisher = publisher
}

// SetCheckoutGuard sets the guard for concurrent duplicate checkouts (optional)
func (p *Processor) SetCheckoutGuard(guard CheckoutGuard) {
	p.guard = guard
}

// checkoutResult is what one attempt produced
type checkoutResult struct {
	sale     *sales.Sale
	payments []payment.Payment
	replayed bool
	events   []shared.DomainEvent
}

// CreateSale processes a checkout. The bool result is false when the idempotency key
// matched an existing sale, which is returned unchanged.
func (p *Processor) CreateSale(ctx context.Context, tenantID uuid.UUID, req CreateSaleRequest) (*SaleResponse, bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrIdempotencyKey, req.IdempotencyKey,
		"items_count", len(req.Items),
	)

	if err := validateCheckout(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, false, err
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" && p.guard != nil {
		release, err := p.guard.Acquire(ctx, tenantID, key)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, false, err
		}
		defer release()
	}

	var result *checkoutResult
	var err error
	for attempt := 1; ; attempt++ {
		telemetry.SetAttribute(span, telemetry.SpanAttrAttempt, attempt)
		result, err = p.checkout(ctx, tenantID, key, req)
		if err == nil || !shared.IsRetryable(err) || attempt >= p.cfg.MaxRetries {
			break
		}
		p.logger.Warn("checkout hit a transient conflict, retrying",
			zap.String("tenant_id", tenantID.String()),
			zap.String("idempotency_key", key),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		p.logger.Info("checkout rejected",
			zap.String("tenant_id", tenantID.String()),
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
		return nil, false, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSaleID, result.sale.ID.String(),
		telemetry.SpanAttrInvoiceNumber, result.sale.InvoiceNumber,
		"replayed", result.replayed,
	)

	if result.replayed {
		p.logger.Info("checkout replayed from idempotency key",
			zap.String("sale_id", result.sale.ID.String()),
			zap.String("idempotency_key", key),
		)
	} else {
		p.logger.Info("sale completed",
			zap.String("sale_id", result.sale.ID.String()),
			zap.String("invoice_number", result.sale.InvoiceNumber),
			zap.String("total_amount", result.sale.TotalAmount.String()),
			zap.String("payment_status", result.sale.PaymentStatus.String()),
		)
		p.publish(ctx, result.events)
	}

	resp := ToSaleResponse(result.sale, result.payments)
	return &resp, !result.replayed, nil
}

// checkout runs one attempt of the orchestration inside one transaction
func (p *Processor) checkout(ctx context.Context, tenantID uuid.UUID, key string, req CreateSaleRequest) (*checkoutResult, error) {
	result := &checkoutResult{}
	err := p.scope.Execute(ctx, func(repos uow.Repositories) error {
		*result = checkoutResult{}

		if found, err := p.findReplay(ctx, repos, tenantID, key, result); err != nil || found {
			return err
		}

		saleDate := p.now().UTC()
		if req.SaleDate != nil && !req.SaleDate.IsZero() {
			saleDate = req.SaleDate.UTC()
		}

		seq, err := repos.Sequences().Next(ctx, tenantID, shared.MonthPrefix(sales.InvoicePrefix, saleDate))
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}

		// The counter lock serializes checkouts of the tenant, so a concurrent request with
		// the same key has committed by now and is visible to this lookup.
		if found, err := p.findReplay(ctx, repos, tenantID, key, result); err != nil {
			return err
		} else if found {
			return errReplayed
		}

		sale, err := sales.NewSale(tenantID, shared.FormatDocumentNumber(sales.InvoicePrefix, saleDate, seq), saleDate)
		if err != nil {
			return err
		}
		sale.SetIdempotencyKey(key)
		sale.CustomerID = req.CustomerID
		sale.Notes = strings.TrimSpace(req.Notes)

		if err := p.resolveItems(ctx, repos, sale, req.Items); err != nil {
			return err
		}

		payments, err := buildCheckoutPayments(sale, req.Payments)
		if err != nil {
			return err
		}
		sale.ApplyPaidAmount(payment.Sum(payments))

		if err := sale.Complete(); err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, sale); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return shared.NewDomainErrorf(shared.CodeConcurrencyConflict,
					"Sale collided with a concurrent checkout: %v", err)
			}
			return err
		}

		var collector shared.EventCollector
		for _, item := range sale.Items {
			moved, err := p.ledger.RecordMovement(ctx, repos, appstock.MovementInput{
				TenantID:    tenantID,
				ProductID:   item.ProductID,
				Quantity:    -item.Quantity,
				Type:        stock.MovementTypeSale,
				ReferenceID: &sale.ID,
				Reason:      sale.InvoiceNumber,
			})
			if err != nil {
				return err
			}
			collector.Collect(moved.Product)
		}

		voucher, err := p.engine.Post(ctx, repos, appaccounting.Posting{
			TenantID:    tenantID,
			Type:        accounting.VoucherTypeSale,
			Date:        sale.SaleDate,
			ReferenceID: sale.ID,
			Lines:       SalePostingLines(sale, payments),
			Notes:       fmt.Sprintf("Sale %s", sale.InvoiceNumber),
		})
		if err != nil {
			return err
		}

		for i := range payments {
			if voucher != nil {
				payments[i].LinkVoucher(voucher.ID)
			}
			if err := repos.Payments().Save(ctx, &payments[i]); err != nil {
				return err
			}
		}

		collector.Collect(sale)
		result.sale = sale
		result.payments = payments
		result.events = collector.Events()
		return nil
	})
	if errors.Is(err, errReplayed) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// errReplayed rolls back a checkout whose key was claimed after the first lookup,
// releasing the allocated invoice number.
var errReplayed = errors.New("checkout replayed")

// findReplay loads the sale already recorded under key into result
func (p *Processor) findReplay(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, key string, result *checkoutResult) (bool, error) {
	if key == "" {
		return false, nil
	}
	existing, err := repos.Sales().FindByIdempotencyKey(ctx, tenantID, key)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	payments, err := repos.Payments().FindByDocument(ctx, tenantID, payment.DocumentTypeSale, existing.ID)
	if err != nil {
		return false, err
	}
	result.sale, result.payments, result.replayed = existing, payments, true
	return true, nil
}

// resolveItems locks each product, checks availability and prices the line
func (p *Processor) resolveItems(ctx context.Context, repos uow.Repositories, sale *sales.Sale, items []SaleItemRequest) error {
	requested := make(map[uuid.UUID]int64, len(items))
	for _, line := range items {
		product, identifier, err := findProduct(ctx, repos, sale.TenantID, line)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return stock.NewProductNotFoundError(identifier)
		}

		already := requested[product.ID]
		if !product.CanFulfil(already + line.Quantity) {
			return stock.NewInsufficientStockError(product.ID, product.Name, product.StockQuantity-already, line.Quantity)
		}
		requested[product.ID] = already + line.Quantity

		pricing, err := sales.PriceLine(line.Quantity, product.SalePrice, product.TaxPercent, sales.PriceOverrides{
			UnitPrice: line.UnitPrice,
			Tax:       line.Tax,
			Discount:  line.Discount,
		})
		if err != nil {
			return err
		}
		if err := sale.AddItem(product.ID, product.Name, pricing, product.PurchasePrice); err != nil {
			return err
		}
	}
	return nil
}

func findProduct(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, line SaleItemRequest) (*stock.Product, string, error) {
	var (
		product    *stock.Product
		identifier string
		err        error
	)
	if line.ProductID != nil && *line.ProductID != uuid.Nil {
		identifier = line.ProductID.String()
		product, err = repos.Products().FindByIDForUpdate(ctx, tenantID, *line.ProductID)
	} else {
		identifier = strings.TrimSpace(line.Barcode)
		product, err = repos.Products().FindByBarcodeForUpdate(ctx, tenantID, identifier)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identifier, stock.NewProductNotFoundError(identifier)
		}
		return nil, identifier, err
	}
	return product, identifier, nil
}

func buildCheckoutPayments(sale *sales.Sale, reqs []CheckoutPaymentRequest) ([]payment.Payment, error) {
	payments := make([]payment.Payment, 0, len(reqs))
	for _, r := range reqs {
		pay, err := payment.NewPayment(sale.TenantID, payment.DocumentTypeSale, sale.ID, r.Amount, payment.Method(r.Method), sale.SaleDate)
		if err != nil {
			return nil, err
		}
		pay.WithParty(sale.CustomerID).WithDetails(r.Reference, "")
		payments = append(payments, *pay)
	}
	return payments, nil
}

// SalePostingLines builds the sale voucher by role. Tendered money is debited to the
// settlement account of its method up to the sale total, the remainder to receivable.
// Sales is credited total - tax, tax payable the tax, and COGS/inventory carry the cost.
func SalePostingLines(sale *sales.Sale, payments []payment.Payment) []accounting.RoleLine {
	remaining := sale.TotalAmount
	settled := map[accounting.PostingRole]decimal.Decimal{}
	for _, pay := range payments {
		if !remaining.IsPositive() {
			break
		}
		amount := decimal.Min(pay.Amount, remaining)
		role := appaccounting.SettlementRole(pay.Method)
		settled[role] = settled[role].Add(amount)
		remaining = remaining.Sub(amount)
	}

	cost := sale.CostTotal()
	desc := fmt.Sprintf("Sale %s", sale.InvoiceNumber)
	return []accounting.RoleLine{
		accounting.DebitLine(accounting.RoleCash, settled[accounting.RoleCash], desc),
		accounting.DebitLine(accounting.RoleBank, settled[accounting.RoleBank], desc),
		accounting.DebitLine(accounting.RoleReceivable, remaining, desc),
		accounting.CreditLine(accounting.RoleSales, sale.TotalAmount.Sub(sale.TaxAmount), desc),
		accounting.CreditLine(accounting.RoleTaxPayable, sale.TaxAmount, desc),
		accounting.DebitLine(accounting.RoleCOGS, cost, "Cost of goods sold "+sale.InvoiceNumber),
		accounting.CreditLine(accounting.RoleInventory, cost, "Cost of goods sold "+sale.InvoiceNumber),
	}
}

func validateCheckout(req CreateSaleRequest) error {
	if len(req.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "A sale needs at least one item")
	}
	for i, line := range req.Items {
		hasID := line.ProductID != nil && *line.ProductID != uuid.Nil
		hasBarcode := strings.TrimSpace(line.Barcode) != ""
		if !hasID && !hasBarcode {
			return shared.NewDomainErrorf(shared.CodeValidation, "Item %d: product_id or barcode is required", i+1)
		}
		if line.Quantity < 1 {
			return shared.NewDomainErrorf(shared.CodeValidation, "Item %d: quantity must be at least 1", i+1)
		}
	}
	return nil
}

func (p *Processor) publish(ctx context.Context, events []shared.DomainEvent) {
	if p.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := p.eventPublisher.Publish(ctx, events...); err != nil {
		p.logger.Error("failed to publish sale events", zap.Error(err))
	}
}
