package repository

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por bodega+producto.
// Las escrituras solo se hacen desde el StockLedger dentro de una transacción.
type StockRepository interface {
	// Get devuelve el stock actual; si no existe fila devuelve cantidad 0.
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// LockForUpdate crea la fila en 0 si no existe y la bloquea hasta el fin de la transacción.
	LockForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// Save escribe la cantidad absoluta del registro.
	Save(ctx context.Context, stock *entity.Stock) error
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Stock, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error)
	ListAll(ctx context.Context) ([]*entity.Stock, error)
}
