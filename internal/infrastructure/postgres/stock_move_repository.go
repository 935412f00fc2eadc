package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.StockMoveRepository = (*StockMoveRepo)(nil)

const stockMoveSelect = `
	SELECT m.id, m.document_id, d.type, m.product_id, m.from_warehouse_id, m.to_warehouse_id,
	       m.quantity_change, m.executed_by, m.created_at
	FROM stock_moves m JOIN documents d ON d.id = m.document_id`

// StockMoveRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
type StockMoveRepo struct {
	q Querier
}

// NewStockMoveRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMoveRepository(q Querier) *StockMoveRepo {
	return &StockMoveRepo{q: q}
}

// CreateBatch inserta los movimientos en un solo batch; el orden de la identidad seq respeta el del slice.
func (r *StockMoveRepo) CreateBatch(ctx context.Context, moves []*entity.StockMove) error {
	if len(moves) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range moves {
		batch.Queue(`
			INSERT INTO stock_moves (id, document_id, product_id, from_warehouse_id, to_warehouse_id, quantity_change, executed_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, m.DocumentID, m.ProductID, nullable(m.FromWarehouseID), nullable(m.ToWarehouseID),
			m.QuantityChange, m.ExecutedBy, m.Timestamp,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	for range moves {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapWriteError("insert stock move", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close stock move batch: %w", err)
	}
	return nil
}

// List devuelve movimientos filtrados, más recientes primero.
func (r *StockMoveRepo) List(ctx context.Context, f repository.StockMoveFilter) ([]*entity.StockMove, error) {
	var w whereBuilder
	if f.WarehouseID != "" {
		w.add("(m.from_warehouse_id = ? OR m.to_warehouse_id = ?)", f.WarehouseID, f.WarehouseID)
	}
	if f.ProductID != "" {
		w.add("m.product_id = ?", f.ProductID)
	}
	if f.DocumentID != "" {
		w.add("m.document_id = ?", f.DocumentID)
	}
	if f.DocumentType != "" {
		w.add("d.type = ?", string(f.DocumentType))
	}
	if f.From != nil {
		w.add("m.created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("m.created_at <= ?", *f.To)
	}
	query := stockMoveSelect + w.sql() + " ORDER BY m.created_at DESC, m.seq DESC" + w.page(f.Limit, f.Offset)
	return r.list(ctx, query, w.args...)
}

// ListAll recorre todo el libro en orden de inserción.
func (r *StockMoveRepo) ListAll(ctx context.Context) ([]*entity.StockMove, error) {
	return r.list(ctx, stockMoveSelect+" ORDER BY m.seq")
}

func (r *StockMoveRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMove, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock moves: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMove
	for rows.Next() {
		var (
			m        entity.StockMove
			docType  string
			from, to *string
		)
		if err := rows.Scan(&m.ID, &m.DocumentID, &docType, &m.ProductID, &from, &to,
			&m.QuantityChange, &m.ExecutedBy, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan stock move: %w", err)
		}
		m.DocumentType = entity.DocumentType(docType)
		m.FromWarehouseID, m.ToWarehouseID = deref(from), deref(to)
		list = append(list, &m)
	}
	return list, rows.Err()
}
