package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `product_id, warehouse_id, quantity, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una bodega; sin fila devuelve cantidad 0.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 AND warehouse_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// LockForUpdate asegura la fila (INSERT ... ON CONFLICT DO NOTHING) y la bloquea con SELECT ... FOR UPDATE.
// Sin la fila previa, dos transacciones podrían leer "0" sin bloquear nada.
func (r *StockRepo) LockForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`, productID, warehouseID); err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 AND warehouse_id = $2 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Save escribe la cantidad absoluta. El CHECK (quantity >= 0) de la tabla respalda la regla del ledger.
func (r *StockRepo) Save(ctx context.Context, stock *entity.Stock) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`,
		stock.ProductID, stock.WarehouseID, stock.Quantity)
	if err != nil {
		return mapWriteError("save stock", err)
	}
	return nil
}

// ListByWarehouse lista el stock de una bodega ordenado por producto.
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Stock, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock WHERE warehouse_id = $1 ORDER BY product_id`, warehouseID)
}

// ListByProduct lista el stock de un producto ordenado por bodega.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock WHERE product_id = $1 ORDER BY warehouse_id`, productID)
}

// ListAll lista todos los pares (producto, bodega).
func (r *StockRepo) ListAll(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock ORDER BY product_id, warehouse_id`)
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	if err := row.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
