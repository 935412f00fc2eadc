package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `product_id, warehouse_id, quantity, updated_at`

// StockRepo niveles de stock sobre SQLite.
type StockRepo struct {
	q querier
}

// Get devuelve el stock actual; sin fila devuelve cantidad 0.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	s, err := scanStock(r.q.QueryRowContext(ctx,
		`SELECT `+stockColumns+` FROM stock WHERE product_id = ? AND warehouse_id = ?`, productID, warehouseID))
	if errors.Is(err, sql.ErrNoRows) {
		return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// LockForUpdate asegura la fila. La transacción ya tiene el lock de escritura de la base (BEGIN IMMEDIATE).
func (r *StockRepo) LockForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	if _, err := r.q.ExecContext(ctx, `
		INSERT OR IGNORE INTO stock (product_id, warehouse_id, quantity, updated_at)
		VALUES (?, ?, '0', ?)`, productID, warehouseID, toMillis(time.Now())); err != nil {
		return nil, mapWriteError("ensure stock row", err)
	}
	s, err := scanStock(r.q.QueryRowContext(ctx,
		`SELECT `+stockColumns+` FROM stock WHERE product_id = ? AND warehouse_id = ?`, productID, warehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Save escribe la cantidad absoluta.
func (r *StockRepo) Save(ctx context.Context, stock *entity.Stock) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO stock (product_id, warehouse_id, quantity, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = excluded.quantity, updated_at = excluded.updated_at`,
		stock.ProductID, stock.WarehouseID, stock.Quantity.String(), toMillis(time.Now()))
	if err != nil {
		return mapWriteError("save stock", err)
	}
	return nil
}

func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Stock, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock WHERE warehouse_id = ? ORDER BY product_id`, warehouseID)
}

func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Stock, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock WHERE product_id = ? ORDER BY warehouse_id`, productID)
}

func (r *StockRepo) ListAll(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(ctx, `SELECT `+stockColumns+` FROM stock ORDER BY product_id, warehouse_id`)
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Stock, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStock(row rowScanner) (*entity.Stock, error) {
	var (
		s         entity.Stock
		updatedAt int64
	)
	if err := row.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &updatedAt); err != nil {
		return nil, err
	}
	s.UpdatedAt = fromMillis(updatedAt)
	return &s, nil
}
