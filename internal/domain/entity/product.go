package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario. El stock se maneja por bodega en Stock.
type Product struct {
	ID           string
	Name         string
	SKU          string // único, en mayúsculas
	Category     string
	UnitMeasure  string
	ReorderLevel decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
