package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType tipo de documento de movimiento de stock (conjunto cerrado).
type DocumentType string

const (
	DocumentTypeReceipt    DocumentType = "RECEIPT"    // entrada de proveedor
	DocumentTypeDelivery   DocumentType = "DELIVERY"   // salida a cliente
	DocumentTypeTransfer   DocumentType = "TRANSFER"   // traslado entre bodegas
	DocumentTypeAdjustment DocumentType = "ADJUSTMENT" // conteo físico
)

// DocumentTypes lista los tipos válidos en orden estable.
var DocumentTypes = []DocumentType{
	DocumentTypeReceipt,
	DocumentTypeDelivery,
	DocumentTypeTransfer,
	DocumentTypeAdjustment,
}

// ParseDocumentType normaliza y valida un tipo recibido como texto.
func ParseDocumentType(s string) (DocumentType, bool) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Valid indica si el tipo pertenece al conjunto conocido.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeReceipt, DocumentTypeDelivery, DocumentTypeTransfer, DocumentTypeAdjustment:
		return true
	}
	return false
}

// NeedsSource indica si el tipo exige bodega origen.
func (t DocumentType) NeedsSource() bool {
	return t == DocumentTypeDelivery || t == DocumentTypeTransfer
}

// NeedsDestination indica si el tipo exige bodega destino (en ajustes es la bodega contada).
func (t DocumentType) NeedsDestination() bool {
	return t == DocumentTypeReceipt || t == DocumentTypeTransfer || t == DocumentTypeAdjustment
}

// DocumentStatus estado del ciclo de vida del documento.
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "DRAFT"
	DocumentStatusWaiting  DocumentStatus = "WAITING"
	DocumentStatusReady    DocumentStatus = "READY"
	DocumentStatusDone     DocumentStatus = "DONE"
	DocumentStatusCanceled DocumentStatus = "CANCELED"
)

// ParseDocumentStatus normaliza y valida un estado recibido como texto.
func ParseDocumentStatus(s string) (DocumentStatus, bool) {
	st := DocumentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case DocumentStatusDraft, DocumentStatusWaiting, DocumentStatusReady, DocumentStatusDone, DocumentStatusCanceled:
		return st, true
	}
	return st, false
}

// Terminal indica si el estado ya no admite cambios (DONE o CANCELED).
func (s DocumentStatus) Terminal() bool {
	return s == DocumentStatusDone || s == DocumentStatusCanceled
}

// DocumentLine línea del documento: producto y cantidad.
// En ADJUSTMENT la cantidad es el valor contado absoluto, no un delta.
type DocumentLine struct {
	ProductID   string
	ProductSKU  string // resuelto al cargar, solo lectura
	ProductName string // resuelto al cargar, solo lectura
	Quantity    decimal.Decimal
}

// Document solicitud de movimiento de stock; sus líneas le pertenecen en exclusiva.
type Document struct {
	ID              string
	Type            DocumentType
	Status          DocumentStatus
	FromWarehouseID string // vacío = sin origen
	ToWarehouseID   string // vacío = sin destino
	Counterparty    string
	Reason          string
	Lines           []DocumentLine
	CreatedBy       string
	ValidatedBy     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ValidatedAt     *time.Time
}

// ProductIDs devuelve los productos de las líneas sin repetir, en orden de aparición.
func (d *Document) ProductIDs() []string {
	seen := make(map[string]struct{}, len(d.Lines))
	ids := make([]string, 0, len(d.Lines))
	for _, l := range d.Lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}

// MarkDone aplica la transición a DONE con el usuario que valida.
func (d *Document) MarkDone(userID string, at time.Time) {
	d.Status = DocumentStatusDone
	d.ValidatedBy = userID
	d.ValidatedAt = &at
	d.UpdatedAt = at
}
