package handler

import (
	stockapp "github.com/erp/ledger/internal/application/stock"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// StockHandler handles stock level and movement endpoints
type StockHandler struct {
	BaseHandler
	service *stockapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *stockapp.StockService) *StockHandler {
	return &StockHandler{service: service}
}

type movementListQuery struct {
	listQuery
	ProductID    string `form:"product_id"`
	MovementType string `form:"movement_type" binding:"omitempty,oneof=purchase sale adjustment return transfer"`
	ReferenceID  string `form:"reference_id"`
}

// Adjust godoc
// @ID           adjustStock
// @Summary      Manually adjust stock
// @Description  Applies a signed quantity change and records an adjustment movement. Stock may not go negative.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body stockapp.AdjustStockRequest true "Adjustment"
// @Success      200 {object} APIResponse[stockapp.AdjustStockResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/adjustments [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req stockapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.AdjustStock(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetProductStock godoc
// @ID           getProductStock
// @Summary      Get stock of a product
// @Tags         stock
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[stockapp.ProductStockResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/products/{id} [get]
func (h *StockHandler) GetProductStock(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetStock(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// LowStock godoc
// @ID           listLowStock
// @Summary      List products at or below their reorder level
// @Tags         stock
// @Produce      json
// @Success      200 {object} APIResponse[[]stockapp.ProductStockResponse]
// @Security     BearerAuth
// @Router       /stock/low [get]
func (h *StockHandler) LowStock(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	result, err := h.service.GetLowStockProducts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListMovements godoc
// @ID           listStockMovements
// @Summary      List stock movements
// @Tags         stock
// @Produce      json
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        movement_type query string false "Movement type" Enums(purchase, sale, adjustment, return, transfer)
// @Param        reference_id query string false "Sale or purchase ID" format(uuid)
// @Param        start_date query string false "From date (YYYY-MM-DD)"
// @Param        end_date query string false "To date inclusive (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]stockapp.MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q movementListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	productID, err := optionalUUID(q.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product_id format")
		return
	}
	referenceID, err := optionalUUID(q.ReferenceID)
	if err != nil {
		h.BadRequest(c, "Invalid reference_id format")
		return
	}
	start, end, err := q.dates()
	if err != nil {
		h.BadRequest(c, "Dates must use YYYY-MM-DD")
		return
	}
	page := q.pagination()

	list, total, err := h.service.ListMovements(c.Request.Context(), tenantID, stockapp.MovementListFilter{
		ProductID:    productID,
		MovementType: q.MovementType,
		ReferenceID:  referenceID,
		StartDate:    start,
		EndDate:      end,
		Page:         page.Page,
		PageSize:     page.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, list, total, page.Page, page.PageSize)
}
