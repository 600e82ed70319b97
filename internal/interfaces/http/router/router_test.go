package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouter_SetupUsesVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	g := NewDomainGroup("sales", "/sales").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
		POST("", func(c *gin.Context) { c.String(http.StatusCreated, "created") })
	r.Register(g).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/sales", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "list", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v2/sales", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDomainGroup_Subgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("accounting", "/accounting")
	assert.Equal(t, "accounting", g.Name())
	assert.Equal(t, "/accounting", g.Prefix())

	g.Group("accounts", "/accounts").GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
	g.GET("/trial-balance", func(c *gin.Context) { c.String(http.StatusOK, "tb") })
	g.RegisterRoutes(engine.Group("/api/v1"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounting/accounts/42", nil))
	assert.Equal(t, "42", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounting/trial-balance", nil))
	assert.Equal(t, "tb", w.Body.String())
}

func TestLedgerGroups_RouteTable(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	for _, g := range LedgerGroups(LedgerHandlers{
		Sales:      &handler.SaleHandler{},
		Purchases:  &handler.PurchaseHandler{},
		Stock:      &handler.StockHandler{},
		Accounting: &handler.AccountingHandler{},
	}) {
		r.Register(g)
	}
	r.Setup()

	var got []string
	for _, route := range engine.Routes() {
		got = append(got, route.Method+" "+route.Path)
	}
	sort.Strings(got)

	want := []string{
		"GET /api/v1/accounting/accounts",
		"GET /api/v1/accounting/accounts/:id",
		"GET /api/v1/accounting/ledger/:account_id",
		"GET /api/v1/accounting/profit-loss",
		"GET /api/v1/accounting/trial-balance",
		"GET /api/v1/accounting/trial-balance/export",
		"GET /api/v1/accounting/vouchers",
		"GET /api/v1/accounting/vouchers/:id",
		"GET /api/v1/purchases",
		"GET /api/v1/purchases/:id",
		"GET /api/v1/sales",
		"GET /api/v1/sales/:id",
		"GET /api/v1/sales/reports/daily",
		"GET /api/v1/stock/low",
		"GET /api/v1/stock/movements",
		"GET /api/v1/stock/products/:id",
		"POST /api/v1/accounting/accounts",
		"POST /api/v1/accounting/accounts/seed",
		"POST /api/v1/accounting/vouchers",
		"POST /api/v1/purchases",
		"POST /api/v1/purchases/:id/payments",
		"POST /api/v1/sales",
		"POST /api/v1/sales/:id/payments",
		"POST /api/v1/stock/adjustments",
	}
	assert.Equal(t, want, got)
}
