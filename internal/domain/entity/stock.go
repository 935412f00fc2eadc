package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuantityScale decimales que conservan las columnas de cantidad (NUMERIC(18,4)).
const QuantityScale = 4

// maxQuantity cota exclusiva de NUMERIC(18,4): 14 dígitos enteros.
var maxQuantity = decimal.New(1, 14)

// QuantityFits indica si q se guarda sin redondeo ni desbordamiento.
func QuantityFits(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale)) && q.Abs().LessThan(maxQuantity)
}

// Stock representa el stock actual de un producto en una bodega (proyección de los movimientos).
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}

// StockKey identifica un par (producto, bodega).
type StockKey struct {
	ProductID   string
	WarehouseID string
}

// Less orden canónico para adquirir bloqueos siempre en la misma secuencia.
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.WarehouseID < o.WarehouseID
}

// Key devuelve la clave del registro.
func (s *Stock) Key() StockKey {
	return StockKey{ProductID: s.ProductID, WarehouseID: s.WarehouseID}
}
