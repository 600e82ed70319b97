package stock

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/ledger/internal/application/uow"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/stock"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// StockService handles stock queries and manual adjustments
type StockService struct {
	scope          uow.TransactionScope
	productRepo    stock.ProductRepository
	movementRepo   stock.MovementRepository
	ledger         *Ledger
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(
	scope uow.TransactionScope,
	productRepo stock.ProductRepository,
	movementRepo stock.MovementRepository,
	ledger *Ledger,
) *StockService {
	return &StockService{
		scope:        scope,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		ledger:       ledger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AdjustStock applies a manual correction in its own transaction
func (s *StockService) AdjustStock(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*AdjustStockResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "adjust")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrProductID, req.ProductID.String(),
		telemetry.SpanAttrQuantity, req.Quantity,
	)

	if strings.TrimSpace(req.Reason) == "" {
		return nil, shared.NewDomainError(shared.CodeValidation, "Adjustment reason is required")
	}
	if req.Quantity == 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Adjustment quantity cannot be zero")
	}

	var result *MovementResult
	var collector shared.EventCollector
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		collector.Reset()
		var err error
		result, err = s.ledger.RecordMovement(ctx, repos, MovementInput{
			TenantID:    tenantID,
			ProductID:   req.ProductID,
			Quantity:    req.Quantity,
			Type:        stock.MovementTypeAdjustment,
			WarehouseID: req.WarehouseID,
			Reason:      req.Reason,
		})
		if err != nil {
			return err
		}
		collector.Collect(result.Product)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, collector.Events())

	return &AdjustStockResponse{
		ProductID:     result.Product.ID,
		ProductName:   result.Product.Name,
		PreviousStock: result.Previous,
		NewStock:      result.Current,
		Adjustment:    req.Quantity,
		MovementID:    result.Movement.ID,
	}, nil
}

// GetLowStockProducts lists active products at or below their reorder level
func (s *StockService) GetLowStockProducts(ctx context.Context, tenantID uuid.UUID) ([]ProductStockResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]ProductStockResponse, len(products))
	for i := range products {
		out[i] = ToProductStockResponse(&products[i])
	}
	return out, nil
}

// GetStock returns the current stock of one product
func (s *StockService) GetStock(ctx context.Context, tenantID, productID uuid.UUID) (*ProductStockResponse, error) {
	product, err := s.productRepo.FindByID(ctx, tenantID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, stock.NewProductNotFoundError(productID.String())
		}
		return nil, err
	}
	resp := ToProductStockResponse(product)
	return &resp, nil
}

// ListMovements lists movements newest first
func (s *StockService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := stock.MovementFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			From:     filter.StartDate,
			To:       filter.EndDate,
		}.Normalize(),
		ProductID:    filter.ProductID,
		MovementType: stock.MovementType(filter.MovementType),
		ReferenceID:  filter.ReferenceID,
	}

	movements, total, err := s.movementRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out, total, nil
}

func (s *StockService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Publish errors are logged by the event bus
	_ = s.eventPublisher.Publish(ctx, events...)
}
