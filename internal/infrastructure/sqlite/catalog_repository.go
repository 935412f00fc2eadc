package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.ProductRepository   = (*ProductRepo)(nil)
)

const (
	warehouseColumns = `id, name, code, address, type, status, created_at, updated_at`
	productColumns   = `id, name, sku, category, unit_measure, reorder_level, created_at, updated_at`
)

// WarehouseRepo bodegas sobre SQLite.
type WarehouseRepo struct {
	q querier
}

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO warehouses (`+warehouseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Name, w.Code, w.Address, w.Type, w.Status, toMillis(w.CreatedAt), toMillis(w.UpdatedAt))
	if err != nil {
		return mapWriteError("insert warehouse", err)
	}
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.getOne(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE id = ?`, id)
}

func (r *WarehouseRepo) GetByCode(ctx context.Context, code string) (*entity.Warehouse, error) {
	return r.getOne(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE code = ?`, code)
}

func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE warehouses SET name = ?, address = ?, type = ?, status = ?, updated_at = ? WHERE id = ?`,
		w.Name, w.Address, w.Type, w.Status, toMillis(w.UpdatedAt), w.ID)
	if err != nil {
		return mapWriteError("update warehouse", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+warehouseColumns+` FROM warehouses ORDER BY code LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

func (r *WarehouseRepo) getOne(ctx context.Context, query, arg string) (*entity.Warehouse, error) {
	w, err := scanWarehouse(r.q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

func scanWarehouse(row rowScanner) (*entity.Warehouse, error) {
	var (
		w                    entity.Warehouse
		createdAt, updatedAt int64
	)
	if err := row.Scan(&w.ID, &w.Name, &w.Code, &w.Address, &w.Type, &w.Status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	w.CreatedAt, w.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)
	return &w, nil
}

// ProductRepo productos sobre SQLite.
type ProductRepo struct {
	q querier
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.SKU, p.Category, p.UnitMeasure, p.ReorderLevel.String(), toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	if err != nil {
		return mapWriteError("insert product", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = ?`, sku)
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE products SET name = ?, category = ?, unit_measure = ?, reorder_level = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Category, p.UnitMeasure, p.ReorderLevel.String(), toMillis(p.UpdatedAt), p.ID)
	if err != nil {
		return mapWriteError("update product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY sku LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProductRepo) getOne(ctx context.Context, query, arg string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var (
		p                    entity.Product
		createdAt, updatedAt int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.UnitMeasure, &p.ReorderLevel, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt, p.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)
	return &p, nil
}
