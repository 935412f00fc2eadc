package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// StockMoveFilter filtros para listar movimientos. Campos vacíos no filtran.
type StockMoveFilter struct {
	WarehouseID  string // origen o destino
	ProductID    string
	DocumentID   string
	DocumentType entity.DocumentType
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// StockMoveRepository puerto del libro de movimientos (solo inserción).
type StockMoveRepository interface {
	// CreateBatch agrega los movimientos en el orden recibido.
	CreateBatch(ctx context.Context, moves []*entity.StockMove) error
	// List devuelve los movimientos más recientes primero.
	List(ctx context.Context, filter StockMoveFilter) ([]*entity.StockMove, error)
	// ListAll recorre todo el libro en orden de inserción (conciliación).
	ListAll(ctx context.Context) ([]*entity.StockMove, error)
}
