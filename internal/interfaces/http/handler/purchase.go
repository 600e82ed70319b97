package handler

import (
	purchaseapp "github.com/erp/ledger/internal/application/purchase"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// PurchaseHandler handles supplier purchase endpoints
type PurchaseHandler struct {
	BaseHandler
	processor *purchaseapp.Processor
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(processor *purchaseapp.Processor) *PurchaseHandler {
	return &PurchaseHandler{processor: processor}
}

type purchaseListQuery struct {
	listQuery
	Status        string `form:"status" binding:"omitempty,oneof=draft confirmed cancelled"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=unpaid partial paid"`
	SupplierID    string `form:"supplier_id"`
}

// Create godoc
// @ID           createPurchase
// @Summary      Record a supplier purchase
// @Description  Increases stock and posts the purchase voucher against accounts payable
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        request body purchaseapp.CreatePurchaseRequest true "Purchase invoice"
// @Success      201 {object} APIResponse[purchaseapp.PurchaseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchases [post]
func (h *PurchaseHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req purchaseapp.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	purchase, err := h.processor.CreatePurchase(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, purchase)
}

// GetByID godoc
// @ID           getPurchase
// @Summary      Get a purchase
// @Tags         purchases
// @Produce      json
// @Param        id path string true "Purchase ID" format(uuid)
// @Success      200 {object} APIResponse[purchaseapp.PurchaseResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	purchaseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	purchase, err := h.processor.GetPurchase(c.Request.Context(), tenantID, purchaseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, purchase)
}

// List godoc
// @ID           listPurchases
// @Summary      List purchases
// @Tags         purchases
// @Produce      json
// @Param        status query string false "Purchase status" Enums(draft, confirmed, cancelled)
// @Param        payment_status query string false "Payment status" Enums(unpaid, partial, paid)
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        start_date query string false "From date (YYYY-MM-DD)"
// @Param        end_date query string false "To date inclusive (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]purchaseapp.PurchaseResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchases [get]
func (h *PurchaseHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q purchaseListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	supplierID, err := optionalUUID(q.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier_id format")
		return
	}
	start, end, err := q.dates()
	if err != nil {
		h.BadRequest(c, "Dates must use YYYY-MM-DD")
		return
	}
	page := q.pagination()

	list, total, err := h.processor.ListPurchases(c.Request.Context(), tenantID, purchaseapp.PurchaseListFilter{
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		SupplierID:    supplierID,
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
// @ID           recordPurchasePayment
// @Summary      Pay a supplier invoice
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase ID" format(uuid)
// @Param        request body purchaseapp.PaymentRequest true "Payment"
// @Success      201 {object} APIResponse[purchaseapp.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /purchases/{id}/payments [post]
func (h *PurchaseHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	purchaseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req purchaseapp.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	payment, err := h.processor.RecordPayment(c.Request.Context(), tenantID, purchaseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}
