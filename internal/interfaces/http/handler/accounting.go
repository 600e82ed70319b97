package handler

import (
	"fmt"
	"net/http"
	"time"

	accountingapp "github.com/erp/ledger/internal/application/accounting"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountingHandler handles the chart of accounts, vouchers and ledger reports
type AccountingHandler struct {
	BaseHandler
	service *accountingapp.AccountingService
}

// NewAccountingHandler creates a new AccountingHandler
func NewAccountingHandler(service *accountingapp.AccountingService) *AccountingHandler {
	return &AccountingHandler{service: service}
}

type voucherListQuery struct {
	listQuery
	VoucherType string `form:"voucher_type" binding:"omitempty,oneof=journal payment receipt sale purchase"`
	ReferenceID string `form:"reference_id"`
}

// CreateAccount godoc
// @ID           createAccount
// @Summary      Create a ledger account
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        request body accountingapp.CreateAccountRequest true "Account"
// @Success      201 {object} APIResponse[accountingapp.AccountResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/accounts [post]
func (h *AccountingHandler) CreateAccount(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req accountingapp.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// GetAccount godoc
// @ID           getAccount
// @Summary      Get a ledger account
// @Tags         accounting
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} APIResponse[accountingapp.AccountResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/accounts/{id} [get]
func (h *AccountingHandler) GetAccount(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	accountID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// ListAccounts godoc
// @ID           listAccounts
// @Summary      List ledger accounts
// @Tags         accounting
// @Produce      json
// @Param        account_type query string false "Account type" Enums(asset, liability, equity, income, expense)
// @Success      200 {object} APIResponse[[]accountingapp.AccountResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/accounts [get]
func (h *AccountingHandler) ListAccounts(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	accounts, err := h.service.ListAccounts(c.Request.Context(), tenantID, c.Query("account_type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// SeedChart godoc
// @ID           seedChartOfAccounts
// @Summary      Seed the default chart of accounts
// @Description  Creates the accounts the posting roles resolve to. Existing codes are left untouched.
// @Tags         accounting
// @Produce      json
// @Success      200 {object} APIResponse[accountingapp.SeedChartResponse]
// @Security     BearerAuth
// @Router       /accounting/accounts/seed [post]
func (h *AccountingHandler) SeedChart(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	result, err := h.service.SeedChartOfAccounts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CreateVoucher godoc
// @ID           createJournalVoucher
// @Summary      Post a manual journal voucher
// @Description  Entries must balance; each entry carries either a debit or a credit.
// @Tags         accounting
// @Accept       json
// @Produce      json
// @Param        request body accountingapp.JournalVoucherRequest true "Journal voucher"
// @Success      201 {object} APIResponse[accountingapp.VoucherResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/vouchers [post]
func (h *AccountingHandler) CreateVoucher(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req accountingapp.JournalVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	voucher, err := h.service.CreateJournalVoucher(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// GetVoucher godoc
// @ID           getVoucher
// @Summary      Get a voucher with its entries
// @Tags         accounting
// @Produce      json
// @Param        id path string true "Voucher ID" format(uuid)
// @Success      200 {object} APIResponse[accountingapp.VoucherResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/vouchers/{id} [get]
func (h *AccountingHandler) GetVoucher(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	voucherID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	voucher, err := h.service.GetVoucher(c.Request.Context(), tenantID, voucherID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// ListVouchers godoc
// @ID           listVouchers
// @Summary      List vouchers
// @Tags         accounting
// @Produce      json
// @Param        voucher_type query string false "Voucher type" Enums(journal, payment, receipt, sale, purchase)
// @Param        reference_id query string false "Source document ID" format(uuid)
// @Param        start_date query string false "From date (YYYY-MM-DD)"
// @Param        end_date query string false "To date inclusive (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]accountingapp.VoucherResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/vouchers [get]
func (h *AccountingHandler) ListVouchers(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var q voucherListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
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

	list, total, err := h.service.ListVouchers(c.Request.Context(), tenantID, accountingapp.VoucherListFilter{
		VoucherType: q.VoucherType,
		ReferenceID: referenceID,
		StartDate:   start,
		EndDate:     end,
		Page:        page.Page,
		PageSize:    page.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, list, total, page.Page, page.PageSize)
}

// GetLedger godoc
// @ID           getAccountLedger
// @Summary      Account ledger with running balance
// @Tags         accounting
// @Produce      json
// @Param        account_id path string true "Account ID" format(uuid)
// @Param        start_date query string false "From date (YYYY-MM-DD)"
// @Param        end_date query string false "To date inclusive (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[accountingapp.LedgerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/ledger/{account_id} [get]
func (h *AccountingHandler) GetLedger(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	accountID, ok := h.pathID(c, "account_id")
	if !ok {
		return
	}
	from, to, err := listQuery{StartDate: c.Query("start_date"), EndDate: c.Query("end_date")}.dates()
	if err != nil {
		h.BadRequest(c, "Dates must use YYYY-MM-DD")
		return
	}

	ledger, err := h.service.GetLedger(c.Request.Context(), tenantID, accountingapp.LedgerQuery{
		AccountID: accountID,
		From:      from,
		To:        to,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}

// GetTrialBalance godoc
// @ID           getTrialBalance
// @Summary      Trial balance
// @Tags         accounting
// @Produce      json
// @Param        as_of query string false "Balance date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} APIResponse[accountingapp.TrialBalanceResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/trial-balance [get]
func (h *AccountingHandler) GetTrialBalance(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	tb, err := h.service.GetTrialBalance(c.Request.Context(), tenantID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tb)
}

// ExportTrialBalance godoc
// @ID           exportTrialBalance
// @Summary      Download the trial balance as a spreadsheet
// @Description  The file is also archived to object storage when archiving is enabled; X-Archive-Location names the copy.
// @Tags         accounting
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        as_of query string false "Balance date (YYYY-MM-DD), defaults to today"
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/trial-balance/export [get]
func (h *AccountingHandler) ExportTrialBalance(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	file, err := h.service.ExportTrialBalance(c.Request.Context(), tenantID, asOf)
	if err != nil {
		if file == nil {
			h.HandleError(c, err)
			return
		}
		// archiving is best effort; the caller still gets the file
		logger.GetGinLogger(c).Warn("trial balance archive failed", zap.Error(err))
	}

	if file.ArchiveLocation != "" {
		c.Header("X-Archive-Location", file.ArchiveLocation)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// GetProfitAndLoss godoc
// @ID           getProfitAndLoss
// @Summary      Profit and loss for a period
// @Tags         accounting
// @Produce      json
// @Param        start_date query string false "From date (YYYY-MM-DD), defaults to the first of the month"
// @Param        end_date query string false "To date inclusive (YYYY-MM-DD), defaults to today"
// @Success      200 {object} APIResponse[accountingapp.ProfitAndLossResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /accounting/profit-loss [get]
func (h *AccountingHandler) GetProfitAndLoss(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	from, to, err := listQuery{StartDate: c.Query("start_date"), EndDate: c.Query("end_date")}.dates()
	if err != nil {
		h.BadRequest(c, "Dates must use YYYY-MM-DD")
		return
	}

	now := time.Now().UTC()
	if to == nil {
		to = &now
	}
	if from == nil {
		first := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
		from = &first
	}
	if from.After(*to) {
		h.BadRequest(c, "start_date must not be after end_date")
		return
	}

	pl, err := h.service.GetProfitAndLoss(c.Request.Context(), tenantID, *from, *to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pl)
}

func (h *AccountingHandler) asOf(c *gin.Context) (time.Time, bool) {
	s := c.Query("as_of")
	if s == "" {
		return time.Now().UTC(), true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		h.BadRequest(c, "as_of must use YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
