package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Errores del motor de validación de documentos.
	ErrAlreadyValidated    = errors.New("el documento ya fue validado")
	ErrDocumentCanceled    = errors.New("el documento está cancelado")
	ErrDocumentLocked      = errors.New("el documento validado no se puede modificar")
	ErrMissingWarehouse    = errors.New("falta la bodega requerida por el tipo de documento")
	ErrSameWarehouse       = errors.New("la bodega origen y destino no pueden ser la misma")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrUnknownDocumentType = errors.New("tipo de documento desconocido")
)

// InsufficientStockError detalla el faltante de una línea. errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s en la bodega %s: disponible %s, solicitado %s",
		e.ProductID, e.WarehouseID, e.Available.String(), e.Requested.String())
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
