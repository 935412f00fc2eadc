package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `id, type, status, from_warehouse_id, to_warehouse_id, counterparty, reason,
	created_by, validated_by, created_at, updated_at, validated_at`

// DocumentRepo documentos y líneas sobre SQLite.
type DocumentRepo struct {
	q querier
}

// Create inserta cabecera y líneas.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, string(doc.Type), string(doc.Status), nullString(doc.FromWarehouseID), nullString(doc.ToWarehouseID),
		doc.Counterparty, doc.Reason, doc.CreatedBy, nullString(doc.ValidatedBy),
		toMillis(doc.CreatedAt), toMillis(doc.UpdatedAt), nullMillis(doc.ValidatedAt),
	)
	if err != nil {
		return mapWriteError("insert document", err)
	}
	return r.insertLines(ctx, doc)
}

// GetByID obtiene un documento con líneas resueltas; nil si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := scanDocument(r.q.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetForUpdate en SQLite equivale a GetByID: la transacción IMMEDIATE ya excluye a otros escritores.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

// Update reescribe la cabecera y reemplaza las líneas.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE documents SET status = ?, from_warehouse_id = ?, to_warehouse_id = ?,
			counterparty = ?, reason = ?, updated_at = ?
		WHERE id = ?`,
		string(doc.Status), nullString(doc.FromWarehouseID), nullString(doc.ToWarehouseID),
		doc.Counterparty, doc.Reason, toMillis(doc.UpdatedAt), doc.ID,
	)
	if err != nil {
		return mapWriteError("update document", err)
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM document_lines WHERE document_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("delete document lines: %w", err)
	}
	return r.insertLines(ctx, doc)
}

// Complete guarda la transición a DONE.
func (r *DocumentRepo) Complete(ctx context.Context, doc *entity.Document) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE documents SET status = ?, validated_by = ?, validated_at = ?, updated_at = ?
		WHERE id = ?`,
		string(doc.Status), nullString(doc.ValidatedBy), nullMillis(doc.ValidatedAt), toMillis(doc.UpdatedAt), doc.ID,
	)
	if err != nil {
		return fmt.Errorf("complete document: %w", err)
	}
	return nil
}

// List lista documentos con filtros, más recientes primero.
func (r *DocumentRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.Document, error) {
	var w whereBuilder
	if f.Type != "" {
		w.add("type = ?", string(f.Type))
	}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if f.WarehouseID != "" {
		w.add("(from_warehouse_id = ? OR to_warehouse_id = ?)", f.WarehouseID, f.WarehouseID)
	}
	if f.ProductID != "" {
		w.add("EXISTS (SELECT 1 FROM document_lines l WHERE l.document_id = documents.id AND l.product_id = ?)", f.ProductID)
	}
	if f.From != nil {
		w.add("created_at >= ?", toMillis(*f.From))
	}
	if f.To != nil {
		w.add("created_at <= ?", toMillis(*f.To))
	}
	query := `SELECT ` + documentColumns + ` FROM documents` + w.sql() + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`

	rows, err := r.q.QueryContext(ctx, query, append(w.args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var list []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *DocumentRepo) insertLines(ctx context.Context, doc *entity.Document) error {
	for i, l := range doc.Lines {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO document_lines (document_id, line_no, product_id, quantity) VALUES (?, ?, ?, ?)`,
			doc.ID, i+1, l.ProductID, l.Quantity.String()); err != nil {
			return mapWriteError("insert document line", err)
		}
	}
	return nil
}

// loadLines carga las líneas (con SKU y nombre del producto) de todos los documentos en una consulta.
func (r *DocumentRepo) loadLines(ctx context.Context, docs []*entity.Document) error {
	if len(docs) == 0 {
		return nil
	}
	args := make([]any, 0, len(docs))
	byID := make(map[string]*entity.Document, len(docs))
	for _, d := range docs {
		args = append(args, d.ID)
		byID[d.ID] = d
	}
	rows, err := r.q.QueryContext(ctx, `
		SELECT l.document_id, l.product_id, p.sku, p.name, l.quantity
		FROM document_lines l JOIN products p ON p.id = l.product_id
		WHERE l.document_id IN (`+placeholders(len(args))+`)
		ORDER BY l.document_id, l.line_no`, args...)
	if err != nil {
		return fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			docID string
			line  entity.DocumentLine
		)
		if err := rows.Scan(&docID, &line.ProductID, &line.ProductSKU, &line.ProductName, &line.Quantity); err != nil {
			return fmt.Errorf("scan document line: %w", err)
		}
		if d := byID[docID]; d != nil {
			d.Lines = append(d.Lines, line)
		}
	}
	return rows.Err()
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		d                    entity.Document
		docType, status      string
		from, to, validator  sql.NullString
		createdAt, updatedAt int64
		validatedAt          sql.NullInt64
	)
	if err := row.Scan(&d.ID, &docType, &status, &from, &to, &d.Counterparty, &d.Reason,
		&d.CreatedBy, &validator, &createdAt, &updatedAt, &validatedAt); err != nil {
		return nil, err
	}
	d.Type = entity.DocumentType(docType)
	d.Status = entity.DocumentStatus(status)
	d.FromWarehouseID, d.ToWarehouseID = from.String, to.String
	d.ValidatedBy = validator.String
	d.CreatedAt = fromMillis(createdAt)
	d.UpdatedAt = fromMillis(updatedAt)
	if validatedAt.Valid {
		t := fromMillis(validatedAt.Int64)
		d.ValidatedAt = &t
	}
	return &d, nil
}
