package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMove registro inmutable del efecto de una línea validada (libro mayor append-only).
type StockMove struct {
	ID              string
	DocumentID      string
	DocumentType    DocumentType // resuelto al listar, solo lectura
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	QuantityChange  decimal.Decimal
	ExecutedBy      string
	Timestamp       time.Time
}

// StockEffect variación que un movimiento produce en un par (producto, bodega).
type StockEffect struct {
	Key   StockKey
	Delta decimal.Decimal
}

// Effects traduce el movimiento a variaciones de stock.
// Con origen y destino (traslado) QuantityChange es la cantidad trasladada: resta en origen y suma en destino.
// Con un solo lado, QuantityChange ya trae el signo.
func (m *StockMove) Effects() []StockEffect {
	switch {
	case m.FromWarehouseID != "" && m.ToWarehouseID != "":
		return []StockEffect{
			{Key: StockKey{ProductID: m.ProductID, WarehouseID: m.FromWarehouseID}, Delta: m.QuantityChange.Neg()},
			{Key: StockKey{ProductID: m.ProductID, WarehouseID: m.ToWarehouseID}, Delta: m.QuantityChange},
		}
	case m.FromWarehouseID != "":
		return []StockEffect{{Key: StockKey{ProductID: m.ProductID, WarehouseID: m.FromWarehouseID}, Delta: m.QuantityChange}}
	case m.ToWarehouseID != "":
		return []StockEffect{{Key: StockKey{ProductID: m.ProductID, WarehouseID: m.ToWarehouseID}, Delta: m.QuantityChange}}
	}
	return nil
}
