package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLineRequest línea de un documento. En ADJUSTMENT la cantidad es el conteo absoluto.
type DocumentLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateDocumentRequest body para POST /api/documents.
type CreateDocumentRequest struct {
	Type            string                `json:"type" validate:"required"`
	FromWarehouseID string                `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string                `json:"to_warehouse_id,omitempty"`
	Counterparty    string                `json:"counterparty,omitempty" validate:"max=200"`
	Reason          string                `json:"reason,omitempty" validate:"max=500"`
	ProofAttached   bool                  `json:"proof_attached,omitempty"` // comprobante adjunto: RECEIPT nace READY
	Lines           []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateDocumentRequest body para PUT /api/documents/:id. Campos nil no se modifican;
// Lines no vacío reemplaza todas las líneas.
type UpdateDocumentRequest struct {
	FromWarehouseID *string               `json:"from_warehouse_id"`
	ToWarehouseID   *string               `json:"to_warehouse_id"`
	Counterparty    *string               `json:"counterparty" validate:"omitempty,max=200"`
	Reason          *string               `json:"reason" validate:"omitempty,max=500"`
	Status          *string               `json:"status"`
	Lines           []DocumentLineRequest `json:"lines" validate:"omitempty,min=1,dive"`
}

// DocumentListQuery filtros de GET /api/documents.
type DocumentListQuery struct {
	Type        string `query:"type"`
	Status      string `query:"status"`
	WarehouseID string `query:"warehouse_id"`
	ProductID   string `query:"product_id"`
	From        string `query:"from"` // RFC3339 o YYYY-MM-DD
	To          string `query:"to"`
	Limit       int    `query:"limit"`
	Offset      int    `query:"offset"`
}

// DocumentLineResponse línea con producto resuelto.
type DocumentLineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductSKU  string          `json:"product_sku,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// DocumentResponse salida de un documento.
type DocumentResponse struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`
	Status          string                 `json:"status"`
	FromWarehouseID string                 `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string                 `json:"to_warehouse_id,omitempty"`
	Counterparty    string                 `json:"counterparty,omitempty"`
	Reason          string                 `json:"reason,omitempty"`
	Lines           []DocumentLineResponse `json:"lines"`
	CreatedBy       string                 `json:"created_by"`
	ValidatedBy     string                 `json:"validated_by,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	ValidatedAt     *time.Time             `json:"validated_at,omitempty"`
}

// DocumentListResponse lista paginada de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
