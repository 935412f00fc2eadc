package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// DocumentFilter filtros para listar documentos. Campos vacíos no filtran.
type DocumentFilter struct {
	Type        entity.DocumentType
	Status      entity.DocumentStatus
	WarehouseID string // origen o destino
	ProductID   string // al menos una línea con el producto
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// DocumentRepository define el puerto de persistencia para documentos y sus líneas.
type DocumentRepository interface {
	// Create persiste el documento con sus líneas.
	Create(ctx context.Context, doc *entity.Document) error
	// GetByID carga el documento con líneas resueltas (SKU y nombre). nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// GetForUpdate igual que GetByID pero bloquea la fila del documento hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Document, error)
	// Update reescribe cabecera y reemplaza las líneas.
	Update(ctx context.Context, doc *entity.Document) error
	// Complete guarda la transición a DONE (estado, validated_by, validated_at).
	Complete(ctx context.Context, doc *entity.Document) error
	List(ctx context.Context, filter DocumentFilter) ([]*entity.Document, error)
}
