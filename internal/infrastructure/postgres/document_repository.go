package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `id, type, status, from_warehouse_id, to_warehouse_id, counterparty, reason,
	created_by, validated_by, created_at, updated_at, validated_at`

// DocumentRepo documentos y líneas sobre PostgreSQL (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create inserta cabecera y líneas.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		doc.ID, string(doc.Type), string(doc.Status), nullable(doc.FromWarehouseID), nullable(doc.ToWarehouseID),
		doc.Counterparty, doc.Reason, doc.CreatedBy, nullable(doc.ValidatedBy),
		doc.CreatedAt, doc.UpdatedAt, doc.ValidatedAt,
	)
	if err != nil {
		return mapWriteError("insert document", err)
	}
	return r.insertLines(ctx, doc)
}

// GetByID obtiene un documento con líneas resueltas; nil si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate igual que GetByID pero con la fila del documento bloqueada.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *DocumentRepo) get(ctx context.Context, id, lock string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1` + lock
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update reescribe la cabecera y reemplaza las líneas.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	_, err := r.q.Exec(ctx, `
		UPDATE documents SET status = $2, from_warehouse_id = $3, to_warehouse_id = $4,
			counterparty = $5, reason = $6, updated_at = $7
		WHERE id = $1`,
		doc.ID, string(doc.Status), nullable(doc.FromWarehouseID), nullable(doc.ToWarehouseID),
		doc.Counterparty, doc.Reason, doc.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update document", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("delete document lines: %w", err)
	}
	return r.insertLines(ctx, doc)
}

// Complete guarda la transición a DONE.
func (r *DocumentRepo) Complete(ctx context.Context, doc *entity.Document) error {
	_, err := r.q.Exec(ctx, `
		UPDATE documents SET status = $2, validated_by = $3, validated_at = $4, updated_at = $5
		WHERE id = $1`,
		doc.ID, string(doc.Status), nullable(doc.ValidatedBy), doc.ValidatedAt, doc.UpdatedAt,
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
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= ?", *f.To)
	}
	query := `SELECT ` + documentColumns + ` FROM documents` + w.sql() +
		` ORDER BY created_at DESC, id` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var list []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *DocumentRepo) insertLines(ctx context.Context, doc *entity.Document) error {
	if len(doc.Lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, l := range doc.Lines {
		batch.Queue(`INSERT INTO document_lines (document_id, line_no, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			doc.ID, i+1, l.ProductID, l.Quantity)
	}
	br := r.q.SendBatch(ctx, batch)
	for range doc.Lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapWriteError("insert document line", err)
		}
	}
	return br.Close()
}

// loadLines carga las líneas (con SKU y nombre del producto) de todos los documentos en una consulta.
func (r *DocumentRepo) loadLines(ctx context.Context, docs []*entity.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(docs))
	byID := make(map[string]*entity.Document, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
		byID[d.ID] = d
	}
	rows, err := r.q.Query(ctx, `
		SELECT l.document_id, l.product_id, p.sku, p.name, l.quantity
		FROM document_lines l JOIN products p ON p.id = l.product_id
		WHERE l.document_id = ANY($1)
		ORDER BY l.document_id, l.line_no`, ids)
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

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var (
		d                   entity.Document
		docType, status     string
		from, to, validator *string
		validatedAt         *time.Time
	)
	if err := row.Scan(&d.ID, &docType, &status, &from, &to, &d.Counterparty, &d.Reason,
		&d.CreatedBy, &validator, &d.CreatedAt, &d.UpdatedAt, &validatedAt); err != nil {
		return nil, err
	}
	d.Type = entity.DocumentType(docType)
	d.Status = entity.DocumentStatus(status)
	d.FromWarehouseID, d.ToWarehouseID = deref(from), deref(to)
	d.ValidatedBy = deref(validator)
	d.ValidatedAt = validatedAt
	return &d, nil
}
