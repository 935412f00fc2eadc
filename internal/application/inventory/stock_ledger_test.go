package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake StockRepository en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeStockRepo struct {
	levels  map[entity.StockKey]decimal.Decimal
	locks   []entity.StockKey
	saves   []entity.StockKey
	saveErr error
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{levels: make(map[entity.StockKey]decimal.Decimal)}
}

func (f *fakeStockRepo) set(productID, warehouseID string, qty int64) {
	f.levels[entity.StockKey{ProductID: productID, WarehouseID: warehouseID}] = decimal.NewFromInt(qty)
}

func (f *fakeStockRepo) qty(productID, warehouseID string) decimal.Decimal {
	return f.levels[entity.StockKey{ProductID: productID, WarehouseID: warehouseID}]
}

func (f *fakeStockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	k := entity.StockKey{ProductID: productID, WarehouseID: warehouseID}
	return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: f.levels[k]}, nil
}

func (f *fakeStockRepo) LockForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	f.locks = append(f.locks, entity.StockKey{ProductID: productID, WarehouseID: warehouseID})
	return f.Get(ctx, productID, warehouseID)
}

func (f *fakeStockRepo) Save(_ context.Context, s *entity.Stock) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.levels[s.Key()] = s.Quantity
	f.saves = append(f.saves, s.Key())
	return nil
}

func (f *fakeStockRepo) ListByWarehouse(context.Context, string) ([]*entity.Stock, error) { return nil, nil }
func (f *fakeStockRepo) ListByProduct(context.Context, string) ([]*entity.Stock, error)   { return nil, nil }
func (f *fakeStockRepo) ListAll(context.Context) ([]*entity.Stock, error)                 { return nil, nil }

func key(p, w string) entity.StockKey { return entity.StockKey{ProductID: p, WarehouseID: w} }

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ──────────────────────────────────────────────────────────────────────────────
// StockLedger
// ──────────────────────────────────────────────────────────────────────────────

func TestStockLedger_LockEnOrdenCanonicoSinRepetir(t *testing.T) {
	repo := newFakeStockRepo()
	ledger := NewStockLedger(repo)
	ctx := context.Background()

	require.NoError(t, ledger.Lock(ctx, key("p2", "w1"), key("p1", "w2"), key("p1", "w1"), key("p2", "w1")))
	require.NoError(t, ledger.Lock(ctx, key("p1", "w1"), key("p0", "w9")))

	assert.Equal(t, []entity.StockKey{key("p1", "w1"), key("p1", "w2"), key("p2", "w1"), key("p0", "w9")}, repo.locks)
}

func TestStockLedger_ApplySumaYResta(t *testing.T) {
	repo := newFakeStockRepo()
	repo.set("p1", "w1", 5)
	ledger := NewStockLedger(repo)
	ctx := context.Background()

	require.NoError(t, ledger.Apply(ctx, key("p1", "w1"), dec(3)))
	require.NoError(t, ledger.Apply(ctx, key("p1", "w1"), dec(-8)))

	assert.True(t, repo.qty("p1", "w1").IsZero())
	assert.Equal(t, []entity.StockKey{key("p1", "w1")}, ledger.Touched())
}

func TestStockLedger_ApplyNegativoNoEscribe(t *testing.T) {
	repo := newFakeStockRepo()
	repo.set("p1", "w1", 2)
	ledger := NewStockLedger(repo)

	err := ledger.Apply(context.Background(), key("p1", "w1"), dec(-3))

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, dec(2).Equal(insufficient.Available))
	assert.True(t, dec(3).Equal(insufficient.Requested))
	assert.Empty(t, repo.saves)
	assert.Empty(t, ledger.Touched())
}

func TestStockLedger_ApplyDesbordadoNoEscribe(t *testing.T) {
	repo := newFakeStockRepo()
	repo.levels[key("p1", "w1")] = decimal.RequireFromString("99999999999999")
	ledger := NewStockLedger(repo)

	err := ledger.Apply(context.Background(), key("p1", "w1"), dec(1))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, repo.saves)
	assert.Empty(t, ledger.Touched())
}

func TestStockLedger_SetDevuelveAnterior(t *testing.T) {
	repo := newFakeStockRepo()
	repo.set("p1", "w1", 12)
	ledger := NewStockLedger(repo)

	prev, err := ledger.Set(context.Background(), key("p1", "w1"), dec(9))
	require.NoError(t, err)
	assert.True(t, dec(12).Equal(prev))
	assert.True(t, dec(9).Equal(repo.qty("p1", "w1")))

	q, err := ledger.Quantity(context.Background(), key("p1", "w1"))
	require.NoError(t, err)
	assert.True(t, dec(9).Equal(q))
}

func TestStockLedger_ErrorDeEscrituraSePropaga(t *testing.T) {
	repo := newFakeStockRepo()
	repo.saveErr = errors.New("disk full")
	ledger := NewStockLedger(repo)

	err := ledger.Apply(context.Background(), key("p1", "w1"), dec(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, ledger.Touched())
}

// ──────────────────────────────────────────────────────────────────────────────
// Handlers por tipo
// ──────────────────────────────────────────────────────────────────────────────

func testBuilder() moveBuilder {
	return moveBuilder{documentID: "doc-1", userID: "user-1", at: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func TestHandlerFor_TipoDesconocido(t *testing.T) {
	_, err := handlerFor(entity.DocumentType("SCRAP"))
	assert.ErrorIs(t, err, domain.ErrUnknownDocumentType)

	for _, dt := range entity.DocumentTypes {
		h, err := handlerFor(dt)
		require.NoError(t, err, dt)
		assert.NotNil(t, h)
	}
}

func TestApplyDelivery_LineasRepetidasSeSumanAntesDeEscribir(t *testing.T) {
	repo := newFakeStockRepo()
	repo.set("p1", "w1", 5)
	repo.set("p2", "w1", 10)
	doc := &entity.Document{
		Type:            entity.DocumentTypeDelivery,
		FromWarehouseID: "w1",
		Lines: []entity.DocumentLine{
			{ProductID: "p2", Quantity: dec(1)},
			{ProductID: "p1", Quantity: dec(3)},
			{ProductID: "p1", Quantity: dec(3)},
		},
	}

	_, err := applyDelivery(context.Background(), NewStockLedger(repo), doc, testBuilder())

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "p1", insufficient.ProductID)
	assert.True(t, dec(6).Equal(insufficient.Requested))
	assert.Empty(t, repo.saves, "ninguna línea se aplica si alguna no alcanza")
}

func TestApplyTransfer_MovimientosEnOrdenDeLinea(t *testing.T) {
	repo := newFakeStockRepo()
	repo.set("p1", "w1", 4)
	repo.set("p2", "w1", 4)
	doc := &entity.Document{
		Type:            entity.DocumentTypeTransfer,
		FromWarehouseID: "w1",
		ToWarehouseID:   "w2",
		Lines: []entity.DocumentLine{
			{ProductID: "p2", Quantity: dec(1)},
			{ProductID: "p1", Quantity: dec(4)},
		},
	}

	moves, err := applyTransfer(context.Background(), NewStockLedger(repo), doc, testBuilder())
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "p2", moves[0].ProductID)
	assert.Equal(t, "p1", moves[1].ProductID)
	for _, m := range moves {
		assert.Equal(t, "w1", m.FromWarehouseID)
		assert.Equal(t, "w2", m.ToWarehouseID)
		assert.True(t, m.QuantityChange.IsPositive())
		assert.Equal(t, "doc-1", m.DocumentID)
		assert.Equal(t, "user-1", m.ExecutedBy)
	}
	assert.True(t, repo.qty("p1", "w1").IsZero())
	assert.True(t, dec(4).Equal(repo.qty("p1", "w2")))
	assert.True(t, dec(3).Equal(repo.qty("p2", "w1")))

	// origen y destino se bloquean en una sola pasada ordenada
	assert.Equal(t, []entity.StockKey{key("p1", "w1"), key("p1", "w2"), key("p2", "w1"), key("p2", "w2")}, repo.locks)
}

func TestApplyTransfer_MismaBodega(t *testing.T) {
	repo := newFakeStockRepo()
	doc := &entity.Document{
		Type: entity.DocumentTypeTransfer, FromWarehouseID: "w1", ToWarehouseID: "w1",
		Lines: []entity.DocumentLine{{ProductID: "p1", Quantity: dec(1)}},
	}
	_, err := applyTransfer(context.Background(), NewStockLedger(repo), doc, testBuilder())
	assert.ErrorIs(t, err, domain.ErrSameWarehouse)
	assert.Empty(t, repo.locks)
}

func TestApplyAdjustment_DeltaFirmado(t *testing.T) {
	repo := newFakeStockRepo()
	repo.set("p1", "w1", 12)
	doc := &entity.Document{
		Type:          entity.DocumentTypeAdjustment,
		ToWarehouseID: "w1",
		Lines: []entity.DocumentLine{
			{ProductID: "p1", Quantity: dec(9)},
			{ProductID: "p2", Quantity: dec(4)},
		},
	}

	moves, err := applyAdjustment(context.Background(), NewStockLedger(repo), doc, testBuilder())
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.True(t, dec(-3).Equal(moves[0].QuantityChange))
	assert.True(t, dec(4).Equal(moves[1].QuantityChange))
	assert.Empty(t, moves[0].FromWarehouseID)
	assert.Equal(t, "w1", moves[0].ToWarehouseID)
	assert.True(t, dec(9).Equal(repo.qty("p1", "w1")))
}

func TestHandlers_SinBodegaRequerida(t *testing.T) {
	line := []entity.DocumentLine{{ProductID: "p1", Quantity: dec(1)}}
	cases := map[entity.DocumentType]*entity.Document{
		entity.DocumentTypeReceipt:    {Type: entity.DocumentTypeReceipt, Lines: line},
		entity.DocumentTypeDelivery:   {Type: entity.DocumentTypeDelivery, Lines: line},
		entity.DocumentTypeTransfer:   {Type: entity.DocumentTypeTransfer, FromWarehouseID: "w1", Lines: line},
		entity.DocumentTypeAdjustment: {Type: entity.DocumentTypeAdjustment, Lines: line},
	}
	for dt, doc := range cases {
		h, err := handlerFor(dt)
		require.NoError(t, err)
		repo := newFakeStockRepo()
		_, err = h(context.Background(), NewStockLedger(repo), doc, testBuilder())
		assert.ErrorIs(t, err, domain.ErrMissingWarehouse, dt)
		assert.Empty(t, repo.saves, dt)
	}
}
