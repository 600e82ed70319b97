package router

import (
	"github.com/erp/ledger/internal/interfaces/http/handler"
)

// LedgerHandlers bundles the handlers exposed under /api/v1
type LedgerHandlers struct {
	Sales      *handler.SaleHandler
	Purchases  *handler.PurchaseHandler
	Stock      *handler.StockHandler
	Accounting *handler.AccountingHandler
}

// LedgerGroups returns the route groups of the ledger API
func LedgerGroups(h LedgerHandlers) []*DomainGroup {
	sales := NewDomainGroup("sales", "/sales").
		POST("", h.Sales.Create).
		GET("", h.Sales.List).
		GET("/:id", h.Sales.GetByID).
		POST("/:id/payments", h.Sales.RecordPayment)
	sales.Group("sales-reports", "/reports").
		GET("/daily", h.Sales.DailyReport)

	purchases := NewDomainGroup("purchases", "/purchases").
		POST("", h.Purchases.Create).
		GET("", h.Purchases.List).
		GET("/:id", h.Purchases.GetByID).
		POST("/:id/payments", h.Purchases.RecordPayment)

	stock := NewDomainGroup("stock", "/stock").
		POST("/adjustments", h.Stock.Adjust).
		GET("/low", h.Stock.LowStock).
		GET("/products/:id", h.Stock.GetProductStock).
		GET("/movements", h.Stock.ListMovements)

	accounting := NewDomainGroup("accounting", "/accounting")
	accounting.Group("accounts", "/accounts").
		POST("", h.Accounting.CreateAccount).
		GET("", h.Accounting.ListAccounts).
		POST("/seed", h.Accounting.SeedChart).
		GET("/:id", h.Accounting.GetAccount)
	accounting.Group("vouchers", "/vouchers").
		POST("", h.Accounting.CreateVoucher).
		GET("", h.Accounting.ListVouchers).
		GET("/:id", h.Accounting.GetVoucher)
	accounting.GET("/ledger/:account_id", h.Accounting.GetLedger).
		GET("/trial-balance", h.Accounting.GetTrialBalance).
		GET("/trial-balance/export", h.Accounting.ExportTrialBalance).
		GET("/profit-loss", h.Accounting.GetProfitAndLoss)

	return []*DomainGroup{sales, purchases, stock, accounting}
}
