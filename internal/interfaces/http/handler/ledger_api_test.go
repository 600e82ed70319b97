package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appaccounting "github.com/erp/ledger/internal/application/accounting"
	apppurchase "github.com/erp/ledger/internal/application/purchase"
	appsales "github.com/erp/ledger/internal/application/sales"
	appstock "github.com/erp/ledger/internal/application/stock"
	"github.com/erp/ledger/internal/domain/stock"
	"github.com/erp/ledger/internal/infrastructure/export"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type fakeArchiver struct {
	keys []string
	err  error
}

func (f *fakeArchiver) Archive(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "s3://reports/" + key, nil
}

type apiFixture struct {
	t        *testing.T
	engine   *gin.Engine
	tenantID uuid.UUID
	products *persistence.GormProductRepository
	archiver *fakeArchiver
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	scope := persistence.NewGormTransactionScope(db)
	productRepo := persistence.NewGormProductRepository(db)
	movementRepo := persistence.NewGormMovementRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	ledger := appstock.NewLedger()
	engine := appaccounting.NewEngine(appaccounting.NewConfigRoleResolver(nil, nil))

	accountingService := appaccounting.NewAccountingService(scope,
		persistence.NewGormAccountRepository(db), persistence.NewGormVoucherRepository(db), persistence.NewGormLedgerReader(db))
	accountingService.SetTrialBalanceWriter(export.NewXLSXWriter())
	archiver := &fakeArchiver{}
	accountingService.SetReportArchiver(archiver)

	handlers := router.LedgerHandlers{
		Sales: handler.NewSaleHandler(appsales.NewProcessor(scope, persistence.NewGormSaleRepository(db), paymentRepo,
			ledger, engine, zap.NewNop(), appsales.ProcessorConfig{MaxRetries: 3})),
		Purchases: handler.NewPurchaseHandler(apppurchase.NewProcessor(scope, persistence.NewGormPurchaseRepository(db), paymentRepo,
			ledger, engine, zap.NewNop(), apppurchase.ProcessorConfig{})),
		Stock:      handler.NewStockHandler(appstock.NewStockService(scope, productRepo, movementRepo, ledger)),
		Accounting: handler.NewAccountingHandler(accountingService),
	}

	e := gin.New()
	e.Use(middleware.RequestID(), middleware.TenantMiddleware(middleware.DefaultTenantConfig()))
	r := router.NewRouter(e)
	for _, g := range router.LedgerGroups(handlers) {
		r.Register(g)
	}
	r.Setup()

	f := &apiFixture{t: t, engine: e, tenantID: uuid.New(), products: productRepo, archiver: archiver}
	f.do(http.MethodPost, "/api/v1/accounting/accounts/seed", nil, nil)
	return f
}

func (f *apiFixture) product(name string, qty int64, price, cost string) *stock.Product {
	f.t.Helper()
	p, err := stock.NewProduct(f.tenantID, name, "SKU-"+name, qty)
	require.NoError(f.t, err)
	p.SalePrice = decimal.RequireFromString(price)
	p.PurchasePrice = decimal.RequireFromString(cost)
	p.ReorderLevel = 2
	require.NoError(f.t, f.products.Save(context.Background(), p))
	return p
}

func (f *apiFixture) do(method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, f.tenantID.String())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func checkoutBody(productID uuid.UUID, qty int64, cash string) map[string]any {
	body := map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": qty}},
	}
	if cash != "" {
		body["payments"] = []map[string]any{{"method": "cash", "amount": cash}}
	}
	return body
}

func TestSaleAPI_CheckoutAndReplay(t *testing.T) {
	f := newAPIFixture(t)
	p := f.product("cola", 10, "5.00", "3.00")
	headers := map[string]string{middleware.IdempotencyKeyHeader: "till-1-0001"}

	w, env := f.do(http.MethodPost, "/api/v1/sales", checkoutBody(p.ID, 2, "10"), headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decodeData[appsales.SaleResponse](t, env)
	assert.Equal(t, "completed", sale.Status)
	assert.Equal(t, "paid", sale.PaymentStatus)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(10)))
	require.NotNil(t, sale.IdempotencyKey)
	assert.Equal(t, "till-1-0001", *sale.IdempotencyKey)

	w, env = f.do(http.MethodPost, "/api/v1/sales", checkoutBody(p.ID, 2, "10"), headers)
	require.Equal(t, http.StatusOK, w.Code, "replay returns the original sale")
	assert.Equal(t, sale.ID, decodeData[appsales.SaleResponse](t, env).ID)

	w, env = f.do(http.MethodGet, "/api/v1/stock/products/"+p.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(8), decodeData[appstock.ProductStockResponse](t, env).StockQuantity)

	w, env = f.do(http.MethodGet, "/api/v1/sales?payment_status=paid", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
}

func TestSaleAPI_Rejections(t *testing.T) {
	f := newAPIFixture(t)
	p := f.product("bread", 1, "2.00", "1.00")

	t.Run("insufficient stock", func(t *testing.T) {
		w, env := f.do(http.MethodPost, "/api/v1/sales", checkoutBody(p.ID, 3, ""), nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, dto.ErrCodeInsufficientStock, env.Error.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		w, env := f.do(http.MethodPost, "/api/v1/sales", checkoutBody(uuid.New(), 1, ""), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeProductNotFound, env.Error.Code)
	})

	t.Run("empty items", func(t *testing.T) {
		w, env := f.do(http.MethodPost, "/api/v1/sales", map[string]any{"items": []any{}}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	})

	t.Run("missing tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w, _ := f.do(http.MethodGet, "/api/v1/sales/not-a-uuid", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	w, env := f.do(http.MethodGet, "/api/v1/stock/products/"+p.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeData[appstock.ProductStockResponse](t, env).StockQuantity, "rejected checkouts leave stock untouched")
}

func TestSaleAPI_PaymentsAfterCheckout(t *testing.T) {
	f := newAPIFixture(t)
	p := f.product("rice", 5, "20.00", "12.00")

	w, env := f.do(http.MethodPost, "/api/v1/sales", checkoutBody(p.ID, 1, ""), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	sale := decodeData[appsales.SaleResponse](t, env)
	assert.Equal(t, "unpaid", sale.PaymentStatus)

	paymentsPath := "/api/v1/sales/" + sale.ID.String() + "/payments"
	w, _ = f.do(http.MethodPost, paymentsPath, map[string]any{"amount": "8", "method": "card"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = f.do(http.MethodPost, paymentsPath, map[string]any{"amount": "50", "method": "cash"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, env.Error.Code)

	w, env = f.do(http.MethodGet, "/api/v1/sales/"+sale.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeData[appsales.SaleResponse](t, env)
	assert.Equal(t, "partial", got.PaymentStatus)
	assert.True(t, got.Outstanding.Equal(decimal.NewFromInt(12)))
	assert.Len(t, got.Payments, 1)

	w, env = f.do(http.MethodGet, "/api/v1/sales/reports/daily?date="+time.Now().UTC().Format("2006-01-02"), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decodeData[appsales.DailyReportResponse](t, env).SaleCount)

	w, _ = f.do(http.MethodGet, "/api/v1/sales/reports/daily?date=yesterday", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurchaseAPI(t *testing.T) {
	f := newAPIFixture(t)
	p := f.product("flour", 0, "4.00", "2.00")

	body := map[string]any{
		"supplier_id":    uuid.New(),
		"invoice_number": "SUP-778",
		"items":          []map[string]any{{"product_id": p.ID, "quantity": 10, "unit_price": "2.5", "tax": "0", "discount": "0"}},
	}
	w, env := f.do(http.MethodPost, "/api/v1/purchases", body, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	purchase := decodeData[apppurchase.PurchaseResponse](t, env)
	assert.True(t, purchase.TotalAmount.Equal(decimal.NewFromInt(25)))

	w, env = f.do(http.MethodPost, "/api/v1/purchases", body, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeAlreadyExists, env.Error.Code)

	w, _ = f.do(http.MethodPost, "/api/v1/purchases/"+purchase.ID.String()+"/payments",
		map[string]any{"amount": "25", "method": "bank_transfer"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = f.do(http.MethodGet, "/api/v1/purchases/"+purchase.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", decodeData[apppurchase.PurchaseResponse](t, env).PaymentStatus)

	w, env = f.do(http.MethodGet, "/api/v1/stock/movements?movement_type=purchase&product_id="+p.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	movements := decodeData[[]appstock.MovementResponse](t, env)
	require.Len(t, movements, 1)
	assert.Equal(t, int64(10), movements[0].Quantity)

	w, _ = f.do(http.MethodGet, "/api/v1/purchases?supplier_id=nope", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStockAPI_Adjustments(t *testing.T) {
	f := newAPIFixture(t)
	p := f.product("soap", 3, "1.50", "0.80")

	w, env := f.do(http.MethodPost, "/api/v1/stock/adjustments",
		map[string]any{"product_id": p.ID, "quantity": -2, "reason": "damaged"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	adjusted := decodeData[appstock.AdjustStockResponse](t, env)
	assert.Equal(t, int64(3), adjusted.PreviousStock)
	assert.Equal(t, int64(1), adjusted.NewStock)

	w, env = f.do(http.MethodPost, "/api/v1/stock/adjustments",
		map[string]any{"product_id": p.ID, "quantity": -5, "reason": "count"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, env.Error.Code)

	w, env = f.do(http.MethodGet, "/api/v1/stock/low", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	low := decodeData[[]appstock.ProductStockResponse](t, env)
	require.Len(t, low, 1)
	assert.Equal(t, p.ID, low[0].ProductID)
}

func TestAccountingAPI(t *testing.T) {
	f := newAPIFixture(t)
	p := f.product("tea", 10, "6.00", "4.00")

	w, _ := f.do(http.MethodPost, "/api/v1/sales", checkoutBody(p.ID, 2, "12"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := f.do(http.MethodGet, "/api/v1/accounting/trial-balance", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tb := decodeData[appaccounting.TrialBalanceResponse](t, env)
	assert.True(t, tb.IsBalanced)
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))

	w, env = f.do(http.MethodGet, "/api/v1/accounting/accounts?account_type=asset", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	accounts := decodeData[[]appaccounting.AccountResponse](t, env)
	byCode := map[string]uuid.UUID{}
	for _, a := range accounts {
		byCode[a.Code] = a.ID
	}
	require.Contains(t, byCode, "1000")
	require.Contains(t, byCode, "1100")

	t.Run("ledger of cash", func(t *testing.T) {
		w, env := f.do(http.MethodGet, "/api/v1/accounting/ledger/"+byCode["1000"].String(), nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		ledger := decodeData[appaccounting.LedgerResponse](t, env)
		assert.True(t, ledger.ClosingBalance.Equal(decimal.NewFromInt(12)))
	})

	t.Run("unbalanced journal voucher", func(t *testing.T) {
		w, env := f.do(http.MethodPost, "/api/v1/accounting/vouchers", map[string]any{
			"date": time.Now().UTC(),
			"entries": []map[string]any{
				{"account_id": byCode["1000"], "debit": "100", "credit": "0"},
				{"account_id": byCode["1100"], "debit": "0", "credit": "90"},
			},
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeUnbalancedVoucher, env.Error.Code)
	})

	t.Run("balanced journal voucher", func(t *testing.T) {
		w, env := f.do(http.MethodPost, "/api/v1/accounting/vouchers", map[string]any{
			"date": time.Now().UTC(),
			"entries": []map[string]any{
				{"account_id": byCode["1100"], "debit": "5", "credit": "0"},
				{"account_id": byCode["1000"], "debit": "0", "credit": "5"},
			},
			"notes": "cash deposit",
		}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		voucher := decodeData[appaccounting.VoucherResponse](t, env)

		w, _ = f.do(http.MethodGet, "/api/v1/accounting/vouchers/"+voucher.ID.String(), nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, env = f.do(http.MethodGet, "/api/v1/accounting/vouchers?voucher_type=journal", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), env.Meta.Total)
	})

	t.Run("profit and loss", func(t *testing.T) {
		w, env := f.do(http.MethodGet, "/api/v1/accounting/profit-loss", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		pl := decodeData[appaccounting.ProfitAndLossResponse](t, env)
		assert.True(t, pl.NetProfit.Equal(decimal.NewFromInt(4)), "sales 12 minus cost 8")

		w, _ = f.do(http.MethodGet, "/api/v1/accounting/profit-loss?start_date=2024-02-01&end_date=2024-01-01", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAccountingAPI_ExportTrialBalance(t *testing.T) {
	f := newAPIFixture(t)

	w, _ := f.do(http.MethodGet, "/api/v1/accounting/trial-balance/export?as_of=2024-03-31", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.NewXLSXWriter().ContentType(), w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="trial-balance-2024-03-31.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "s3://reports/"+f.tenantID.String()+"/trial-balance-2024-03-31.xlsx", w.Header().Get("X-Archive-Location"))
	assert.NotZero(t, w.Body.Len())

	f.archiver.err = errors.New("bucket unavailable")
	w, _ = f.do(http.MethodGet, "/api/v1/accounting/trial-balance/export?as_of=2024-03-31", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code, "archive failures still return the file")
	assert.Empty(t, w.Header().Get("X-Archive-Location"))

	w, _ = f.do(http.MethodGet, "/api/v1/accounting/trial-balance/export?as_of=31-03-2024", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeDB struct {
	err error
}

func (f fakeDB) Ping() error { return f.err }

func (f fakeDB) Stats() (persistence.ConnectionStats, error) {
	return persistence.ConnectionStats{MaxOpenConnections: 25, OpenConnections: 2, Idle: 2}, nil
}

func TestSystemHandler_Health(t *testing.T) {
	for _, tc := range []struct {
		name   string
		db     fakeDB
		status int
		state  string
	}{
		{"healthy", fakeDB{}, http.StatusOK, "healthy"},
		{"database down", fakeDB{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unhealthy"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := gin.New()
			e.GET("/health", handler.NewSystemHandler(tc.db, "1.2.3").Health)

			w := httptest.NewRecorder()
			e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.status, w.Code)
			var env envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			health := decodeData[handler.HealthResponse](t, env)
			assert.Equal(t, tc.state, health.Status)
			assert.Equal(t, "1.2.3", health.Version)
		})
	}
}
