package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevelResponse nivel de stock de un producto en una bodega.
type StockLevelResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// StockLevelListResponse lista de niveles de stock.
type StockLevelListResponse struct {
	Items []StockLevelResponse `json:"items"`
}

// StockMoveListQuery filtros de GET /api/stock-moves.
type StockMoveListQuery struct {
	WarehouseID  string `query:"warehouse_id"`
	ProductID    string `query:"product_id"`
	DocumentID   string `query:"document_id"`
	DocumentType string `query:"document_type"`
	From         string `query:"from"`
	To           string `query:"to"`
	Limit        int    `query:"limit"`
	Offset       int    `query:"offset"`
}

// StockMoveResponse movimiento del libro.
type StockMoveResponse struct {
	ID              string          `json:"id"`
	DocumentID      string          `json:"document_id"`
	DocumentType    string          `json:"document_type,omitempty"`
	ProductID       string          `json:"product_id"`
	FromWarehouseID string          `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string          `json:"to_warehouse_id,omitempty"`
	QuantityChange  decimal.Decimal `json:"quantity_change"`
	ExecutedBy      string          `json:"executed_by"`
	Timestamp       time.Time       `json:"timestamp"`
}

// StockMoveListResponse lista paginada de movimientos.
type StockMoveListResponse struct {
	Items []StockMoveResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// StockDriftResponse diferencia entre el stock guardado y el reconstruido desde el libro.
type StockDriftResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Stored      decimal.Decimal `json:"stored"`
	Expected    decimal.Decimal `json:"expected"`
}

// ReconcileResponse resultado de la conciliación.
type ReconcileResponse struct {
	CheckedPairs int                  `json:"checked_pairs"`
	MovesRead    int                  `json:"moves_read"`
	Consistent   bool                 `json:"consistent"`
	Drifts       []StockDriftResponse `json:"drifts"`
}

// InsufficientStockDetails detalle que acompaña al error INSUFFICIENT_STOCK.
type InsufficientStockDetails struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Available   decimal.Decimal `json:"available"`
	Requested   decimal.Decimal `json:"requested"`
}

// ReplenishmentSuggestion producto a reponer en una bodega.
type ReplenishmentSuggestion struct {
	Priority            int             `json:"priority"`
	ProductID           string          `json:"product_id"`
	SKU                 string          `json:"sku"`
	ProductName         string          `json:"product_name"`
	CurrentStock        decimal.Decimal `json:"current_stock"`
	ReorderLevel        decimal.Decimal `json:"reorder_level"`
	IdealStock          decimal.Decimal `json:"ideal_stock"`
	SuggestedOrderQty   decimal.Decimal `json:"suggested_order_qty"`
	DeliveredLast90Days decimal.Decimal `json:"delivered_last_90_days"`
}

// ReplenishmentListResponse lista de reposición ordenada por prioridad (1 = más urgente).
type ReplenishmentListResponse struct {
	WarehouseID string                    `json:"warehouse_id"`
	Items       []ReplenishmentSuggestion `json:"items"`
}
