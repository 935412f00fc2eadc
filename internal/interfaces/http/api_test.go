package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/application/usecase"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/stockmaster-api/internal/interfaces/http"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type mockStockCache struct {
	mock.Mock
}

func (m *mockStockCache) Get(ctx context.Context, key entity.StockKey) (inventory.CachedLevel, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(inventory.CachedLevel), args.Error(1)
}

func (m *mockStockCache) Set(ctx context.Context, key entity.StockKey, qty decimal.Decimal, version int64) error {
	return m.Called(ctx, key, qty, version).Error(0)
}

func (m *mockStockCache) Invalidate(ctx context.Context, keys ...entity.StockKey) error {
	return m.Called(ctx, keys).Error(0)
}

// newAPI levanta la API completa sobre una base SQLite temporal.
func newAPI(t *testing.T, cache inventory.StockCache) *fiber.App {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	app := fiber.New()
	app.Use(apphttp.RequestLogger(logger.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC: usecase.NewWarehouseUseCase(store.Warehouses()),
		ProductUC:   usecase.NewProductUseCase(store.Products()),
		DocumentUC:  inventory.NewDocumentUseCase(store, store.Documents(), store.Warehouses(), store.Products()),
		ValidateUC:  inventory.NewValidateDocumentUseCase(store, cache, nil),
		StockQuery:  inventory.NewStockQueryUseCase(store.Stocks(), store.StockMoves(), cache, nil),
		ReconcileUC: inventory.NewReconcileUseCase(store),
		Replenish:   inventory.NewReplenishmentUseCase(store.Stocks(), store.Products(), store.Warehouses(), store.StockMoves()),
		JWTSecret:   testJWTSecret,
	})
	return app
}

// call envía una petición autenticada con el rol indicado y decodifica la respuesta en out (si no es nil).
func call(t *testing.T, app *fiber.App, method, path, role string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func seedCatalog(t *testing.T, app *fiber.App) (warehouseA, warehouseB, productID string) {
	t.Helper()
	var wa, wb dto.WarehouseResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/warehouses", "manager",
		dto.CreateWarehouseRequest{Name: "Central", Code: "cen"}, &wa))
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/warehouses", "admin",
		dto.CreateWarehouseRequest{Name: "Norte", Code: "nor", Type: "regional"}, &wb))
	var p dto.ProductResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/products", "manager",
		dto.CreateProductRequest{SKU: "tor-001", Name: "Tornillo"}, &p))
	return wa.ID, wb.ID, p.ID
}

func createDocument(t *testing.T, app *fiber.App, in dto.CreateDocumentRequest) dto.DocumentResponse {
	t.Helper()
	var doc dto.DocumentResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/documents", "staff", in, &doc))
	return doc
}

func line(productID string, qty int64) []dto.DocumentLineRequest {
	return []dto.DocumentLineRequest{{ProductID: productID, Quantity: decimal.NewFromInt(qty)}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de documentos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_FlujoRecepcionYEntrega(t *testing.T) {
	app := newAPI(t, nil)
	wa, _, productID := seedCatalog(t, app)

	receipt := createDocument(t, app, dto.CreateDocumentRequest{
		Type: "receipt", ToWarehouseID: wa, Counterparty: "Proveedor S.A.", Lines: line(productID, 10),
	})
	assert.Equal(t, "DRAFT", receipt.Status)
	assert.Equal(t, "TOR-001", receipt.Lines[0].ProductSKU)

	// staff no puede validar
	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodPost, "/api/documents/"+receipt.ID+"/validate", "staff", nil, &errBody))
	assert.Equal(t, "FORBIDDEN", errBody.Code)

	var done dto.DocumentResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/documents/"+receipt.ID+"/validate", "manager", nil, &done))
	assert.Equal(t, "DONE", done.Status)
	assert.Equal(t, testUserID, done.ValidatedBy)
	assert.NotNil(t, done.ValidatedAt)

	errBody = dto.ErrorResponse{}
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/documents/"+receipt.ID+"/validate", "manager", nil, &errBody))
	assert.Equal(t, "ALREADY_VALIDATED", errBody.Code)

	var level dto.StockLevelResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stock?product_id="+productID+"&warehouse_id="+wa, "staff", nil, &level))
	assert.True(t, decimal.NewFromInt(10).Equal(level.Quantity))

	delivery := createDocument(t, app, dto.CreateDocumentRequest{
		Type: "DELIVERY", FromWarehouseID: wa, Lines: line(productID, 15),
	})
	var insufficient struct {
		Code    string                       `json:"code"`
		Details dto.InsufficientStockDetails `json:"details"`
	}
	require.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/documents/"+delivery.ID+"/validate", "admin", nil, &insufficient))
	assert.Equal(t, "INSUFFICIENT_STOCK", insufficient.Code)
	assert.Equal(t, productID, insufficient.Details.ProductID)
	assert.Equal(t, wa, insufficient.Details.WarehouseID)
	assert.True(t, decimal.NewFromInt(10).Equal(insufficient.Details.Available))
	assert.True(t, decimal.NewFromInt(15).Equal(insufficient.Details.Requested))

	// el rechazo no deja el documento validado
	var still dto.DocumentResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/documents/"+delivery.ID, "staff", nil, &still))
	assert.Equal(t, "DRAFT", still.Status)

	var moves dto.StockMoveListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stock-moves?product_id="+productID, "staff", nil, &moves))
	require.Len(t, moves.Items, 1)
	assert.Equal(t, receipt.ID, moves.Items[0].DocumentID)
	assert.Equal(t, "RECEIPT", moves.Items[0].DocumentType)

	var rec dto.ReconcileResponse
	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodGet, "/api/stock/reconcile", "manager", nil, nil))
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stock/reconcile", "admin", nil, &rec))
	assert.True(t, rec.Consistent)
	assert.Empty(t, rec.Drifts)
	assert.Equal(t, 1, rec.MovesRead)
}

func TestAPI_TrasladoYCancelacion(t *testing.T) {
	app := newAPI(t, nil)
	wa, wb, productID := seedCatalog(t, app)

	receipt := createDocument(t, app, dto.CreateDocumentRequest{
		Type: "RECEIPT", ToWarehouseID: wa, ProofAttached: true, Lines: line(productID, 8),
	})
	assert.Equal(t, "READY", receipt.Status)
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/documents/"+receipt.ID+"/validate", "manager", nil, nil))

	transfer := createDocument(t, app, dto.CreateDocumentRequest{
		Type: "TRANSFER", FromWarehouseID: wa, ToWarehouseID: wb, Lines: line(productID, 3),
	})
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/documents/"+transfer.ID+"/validate", "manager", nil, nil))

	var byProduct dto.StockLevelListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stock/products/"+productID, "staff", nil, &byProduct))
	levels := map[string]decimal.Decimal{}
	for _, it := range byProduct.Items {
		levels[it.WarehouseID] = it.Quantity
	}
	assert.True(t, decimal.NewFromInt(5).Equal(levels[wa]))
	assert.True(t, decimal.NewFromInt(3).Equal(levels[wb]))

	draft := createDocument(t, app, dto.CreateDocumentRequest{
		Type: "DELIVERY", FromWarehouseID: wb, Lines: line(productID, 1),
	})
	var canceled dto.DocumentResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/documents/"+draft.ID+"/cancel", "manager", nil, &canceled))
	assert.Equal(t, "CANCELED", canceled.Status)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/documents/"+draft.ID+"/validate", "manager", nil, &errBody))
	assert.Equal(t, "DOCUMENT_CANCELED", errBody.Code)

	errBody = dto.ErrorResponse{}
	reason := "otro motivo"
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPut, "/api/documents/"+transfer.ID, "staff",
		dto.UpdateDocumentRequest{Reason: &reason}, &errBody))
	assert.Equal(t, "DOCUMENT_LOCKED", errBody.Code)

	var list dto.DocumentListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/documents?status=DONE", "staff", nil, &list))
	assert.Len(t, list.Items, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores de entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ErroresDeValidacion(t *testing.T) {
	app := newAPI(t, nil)
	wa, _, productID := seedCatalog(t, app)

	cases := []struct {
		name   string
		body   dto.CreateDocumentRequest
		status int
		code   string
	}{
		{"sin líneas", dto.CreateDocumentRequest{Type: "RECEIPT", ToWarehouseID: wa}, http.StatusBadRequest, "VALIDATION"},
		{"tipo desconocido", dto.CreateDocumentRequest{Type: "SCRAP", ToWarehouseID: wa, Lines: line(productID, 1)}, http.StatusUnprocessableEntity, "UNKNOWN_DOCUMENT_TYPE"},
		{"entrega sin origen", dto.CreateDocumentRequest{Type: "DELIVERY", Lines: line(productID, 1)}, http.StatusUnprocessableEntity, "MISSING_WAREHOUSE"},
		{"traslado misma bodega", dto.CreateDocumentRequest{Type: "TRANSFER", FromWarehouseID: wa, ToWarehouseID: wa, Lines: line(productID, 1)}, http.StatusUnprocessableEntity, "SAME_WAREHOUSE"},
		{"producto inexistente", dto.CreateDocumentRequest{Type: "RECEIPT", ToWarehouseID: wa, Lines: line("no-existe", 1)}, http.StatusNotFound, "NOT_FOUND"},
		{"cantidad cero", dto.CreateDocumentRequest{Type: "RECEIPT", ToWarehouseID: wa, Lines: line(productID, 0)}, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var errBody dto.ErrorResponse
			assert.Equal(t, tc.status, call(t, app, http.MethodPost, "/api/documents", "staff", tc.body, &errBody))
			assert.Equal(t, tc.code, errBody.Code)
		})
	}

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/warehouses", "admin",
		dto.CreateWarehouseRequest{Name: "Duplicada", Code: "CEN"}, &errBody))
	assert.Equal(t, "DUPLICATE", errBody.Code)

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/documents/no-existe", "staff", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/stock?product_id="+productID, "staff", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/api/documents", "", nil, nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// Caché de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_StockDesdeCache(t *testing.T) {
	cache := new(mockStockCache)
	key := entity.StockKey{ProductID: "p-1", WarehouseID: "w-1"}
	cache.On("Get", mock.Anything, key).Return(inventory.CachedLevel{Quantity: decimal.NewFromInt(7), Hit: true, Version: 3}, nil).Once()

	app := newAPI(t, cache)
	var level dto.StockLevelResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stock?product_id=p-1&warehouse_id=w-1", "staff", nil, &level))
	assert.True(t, decimal.NewFromInt(7).Equal(level.Quantity))
	cache.AssertExpectations(t)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAPI_CacheCaidaLeeDeLaBase(t *testing.T) {
	cache := new(mockStockCache)
	key := entity.StockKey{ProductID: "p-1", WarehouseID: "w-1"}
	cache.On("Get", mock.Anything, key).Return(inventory.CachedLevel{}, errors.New("redis caído")).Once()
	cache.On("Set", mock.Anything, key, mock.Anything, int64(0)).Return(errors.New("redis caído")).Once()

	app := newAPI(t, cache)
	var level dto.StockLevelResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stock?product_id=p-1&warehouse_id=w-1", "staff", nil, &level))
	assert.True(t, level.Quantity.IsZero())
	cache.AssertExpectations(t)
}

func TestAPI_ValidarInvalidaCache(t *testing.T) {
	cache := new(mockStockCache)
	cache.On("Invalidate", mock.Anything, mock.Anything).Return(nil).Once()

	app := newAPI(t, cache)
	wa, _, productID := seedCatalog(t, app)
	receipt := createDocument(t, app, dto.CreateDocumentRequest{Type: "RECEIPT", ToWarehouseID: wa, Lines: line(productID, 2)})
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/documents/"+receipt.ID+"/validate", "manager", nil, nil))

	cache.AssertCalled(t, "Invalidate", mock.Anything, []entity.StockKey{{ProductID: productID, WarehouseID: wa}})
}

// ──────────────────────────────────────────────────────────────────────────────
// Reposición
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Reposicion(t *testing.T) {
	app := newAPI(t, nil)
	wa, _, _ := seedCatalog(t, app)

	var p dto.ProductResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/products", "manager",
		dto.CreateProductRequest{SKU: "tue-002", Name: "Tuerca", ReorderLevel: decimal.NewFromInt(20)}, &p))

	receipt := createDocument(t, app, dto.CreateDocumentRequest{Type: "RECEIPT", ToWarehouseID: wa, Lines: line(p.ID, 5)})
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/documents/"+receipt.ID+"/validate", "manager", nil, nil))

	var out dto.ReplenishmentListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stock/replenishment/"+wa, "staff", nil, &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "TUE-002", out.Items[0].SKU)
	assert.Equal(t, 1, out.Items[0].Priority)
	assert.True(t, decimal.NewFromInt(25).Equal(out.Items[0].SuggestedOrderQty))

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/stock/replenishment/"+uuid.NewString(), "staff", nil, &errBody))
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}
