package handler

import (
	"time"

	salesapp "github.com/erp/ledger/internal/application/sales"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles point-of-sale checkout endpoints
type SaleHandler struct {
	BaseHandler
	processor *salesapp.Processor
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(processor *salesapp.Processor) *SaleHandler {
	return &SaleHandler{processor: processor}
}

type saleListQuery struct {
	listQuery
	Status        string `form:"status" binding:"omitempty,oneof=draft completed cancelled returned"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=unpaid partial paid"`
	CustomerID    string `form:"customer_id"`
}

// Create godoc
// @ID           createSale
// @Summary      Check out a sale
// @Description  Records a sale, deducts stock and posts the sale voucher in one transaction.
// @Description  Repeating a request with the same Idempotency-Key returns the original sale with 200.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID when JWT is disabled"
// @Param        Idempotency-Key header string false "Client checkout key; overrides idempotency_key in the body"
// @Param        request body salesapp.CreateSaleRequest true "Checkout request"
// @Success      201 {object} APIResponse[salesapp.SaleResponse]
// @Success      200 {object} APIResponse[salesapp.SaleResponse] "Replayed checkout"
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if key := c.GetHeader(middleware.IdempotencyKeyHeader); key != "" {
		req.IdempotencyKey = key
	}

	sale, created, err := h.processor.CreateSale(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if created {
		h.Created(c, sale)
		return
	}
	h.Success(c, sale)
}

// GetByID godoc
// @ID           getSale
// @Summary      Get a sale
// @Description  Returns the sale with its items and payments
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[salesapp.SaleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	saleID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	sale, err := h.processor.GetSale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List godoc
// @ID           listSales
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        status query string false "Sale status" Enums(draft, completed, cancelled, returned)
// @Param        payment_status query string false "Payment status" Enums(unpaid, partial, paid)
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        start_date query string false "From date (YYYY-MM-DD)"
// @Param        end_date query string false "To date inclusive (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]salesapp.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q saleListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	customerID, err := optionalUUID(q.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer_id format")
		return
	}
	start, end, err := q.dates()
	if err != nil {
		h.BadRequest(c, "Dates must use YYYY-MM-DD")
		return
	}
	page := q.pagination()

	list, total, err := h.processor.ListSales(c.Request.Context(), tenantID, salesapp.SaleListFilter{
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		CustomerID:    customerID,
		StartDate:     start,
		EndDate:       end,
		Page:          page.Page,
		PageSize:      page.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, list, total, page.Page, page.PageSize)
}

// RecordPayment godoc
// @ID           recordSalePayment
// @Summary      Record a payment against a sale
// @Description  Payments may not exceed the outstanding amount. The receipt voucher is posted in the same transaction.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body salesapp.PaymentRequest true "Payment"
// @Success      201 {object} APIResponse[salesapp.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id}/payments [post]
func (h *SaleHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	saleID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req salesapp.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	payment, err := h.processor.RecordPayment(c.Request.Context(), tenantID, saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// DailyReport godoc
// @ID           getDailySalesReport
// @Summary      Daily sales summary
// @Description  Totals of completed sales for one UTC day, with payments grouped by method
// @Tags         sales
// @Produce      json
// @Param        date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success      200 {object} APIResponse[salesapp.DailyReportResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/reports/daily [get]
func (h *SaleHandler) DailyReport(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var day time.Time
	if s := c.Query("date"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			h.BadRequest(c, "date must use YYYY-MM-DD")
			return
		}
		day = parsed
	}

	report, err := h.processor.DailySalesReport(c.Request.Context(), tenantID, day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
