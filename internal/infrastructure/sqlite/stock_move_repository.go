package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.StockMoveRepository = (*StockMoveRepo)(nil)

const stockMoveSelect = `
	SELECT m.id, m.document_id, d.type, m.product_id, m.from_warehouse_id, m.to_warehouse_id,
	       m.quantity_change, m.executed_by, m.created_at
	FROM stock_moves m JOIN documents d ON d.id = m.document_id`

// StockMoveRepo libro de movimientos sobre SQLite.
type StockMoveRepo struct {
	q querier
}

// CreateBatch inserta los movimientos en el orden recibido (seq autoincremental).
func (r *StockMoveRepo) CreateBatch(ctx context.Context, moves []*entity.StockMove) error {
	for _, m := range moves {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO stock_moves (id, document_id, product_id, from_warehouse_id, to_warehouse_id, quantity_change, executed_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.DocumentID, m.ProductID, nullString(m.FromWarehouseID), nullString(m.ToWarehouseID),
			m.QuantityChange.String(), m.ExecutedBy, toMillis(m.Timestamp),
		)
		if err != nil {
			return mapWriteError("insert stock move", err)
		}
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
		w.add("m.created_at >= ?", toMillis(*f.From))
	}
	if f.To != nil {
		w.add("m.created_at <= ?", toMillis(*f.To))
	}
	query := stockMoveSelect + w.sql() + ` ORDER BY m.created_at DESC, m.seq DESC LIMIT ? OFFSET ?`
	return r.list(ctx, query, append(w.args, f.Limit, f.Offset)...)
}

// ListAll recorre todo el libro en orden de inserción.
func (r *StockMoveRepo) ListAll(ctx context.Context) ([]*entity.StockMove, error) {
	return r.list(ctx, stockMoveSelect+` ORDER BY m.seq`)
}

func (r *StockMoveRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMove, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock moves: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMove
	for rows.Next() {
		var (
			m         entity.StockMove
			docType   string
			from, to  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.DocumentID, &docType, &m.ProductID, &from, &to,
			&m.QuantityChange, &m.ExecutedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scan stock move: %w", err)
		}
		m.DocumentType = entity.DocumentType(docType)
		m.FromWarehouseID, m.ToWarehouseID = from.String, to.String
		m.Timestamp = fromMillis(createdAt)
		list = append(list, &m)
	}
	return list, rows.Err()
}
