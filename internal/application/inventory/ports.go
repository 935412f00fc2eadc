package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: todo se confirma junto o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		docRepo repository.DocumentRepository,
		stockRepo repository.StockRepository,
		moveRepo repository.StockMoveRepository,
	) error) error
}

// CachedLevel resultado de leer la caché. Version es la generación de la clave al momento de la
// lectura; Invalidate la incrementa.
type CachedLevel struct {
	Quantity decimal.Decimal
	Hit      bool
	Version  int64
}

// StockCache caché de lectura de niveles de stock (solo para consultas; el motor nunca lee de aquí).
type StockCache interface {
	Get(ctx context.Context, key entity.StockKey) (CachedLevel, error)
	// Set guarda qty solo si la generación de la clave sigue siendo version.
	Set(ctx context.Context, key entity.StockKey, qty decimal.Decimal, version int64) error
	Invalidate(ctx context.Context, keys ...entity.StockKey) error
}

// NopStockCache caché deshabilitada.
type NopStockCache struct{}

func (NopStockCache) Get(context.Context, entity.StockKey) (CachedLevel, error) {
	return CachedLevel{}, nil
}
func (NopStockCache) Set(context.Context, entity.StockKey, decimal.Decimal, int64) error { return nil }
func (NopStockCache) Invalidate(context.Context, ...entity.StockKey) error              { return nil }

// SnapshotRunner ejecuta lecturas sobre una vista consistente del stock y del libro (conciliación).
type SnapshotRunner interface {
	Snapshot(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		moveRepo repository.StockMoveRepository,
	) error) error
}
