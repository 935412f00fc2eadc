package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// DocumentUseCase alta, edición, cancelación y consulta de documentos.
// La validación (paso a DONE) vive en ValidateDocumentUseCase.
type DocumentUseCase struct {
	txRunner      TxRunner
	docRepo       repository.DocumentRepository
	warehouseRepo repository.WarehouseRepository
	productRepo   repository.ProductRepository
	now           func() time.Time
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(
	txRunner TxRunner,
	docRepo repository.DocumentRepository,
	warehouseRepo repository.WarehouseRepository,
	productRepo repository.ProductRepository,
) *DocumentUseCase {
	return &DocumentUseCase{
		txRunner:      txRunner,
		docRepo:       docRepo,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		now:           time.Now,
	}
}

// Create registra un documento nuevo en DRAFT (READY si es un RECEIPT con comprobante adjunto).
func (uc *DocumentUseCase) Create(ctx context.Context, userID string, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	docType, ok := entity.ParseDocumentType(in.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDocumentType, in.Type)
	}
	now := uc.now().UTC()
	doc := &entity.Document{
		ID:              uuid.New().String(),
		Type:            docType,
		Status:          entity.DocumentStatusDraft,
		FromWarehouseID: strings.TrimSpace(in.FromWarehouseID),
		ToWarehouseID:   strings.TrimSpace(in.ToWarehouseID),
		Counterparty:    strings.TrimSpace(in.Counterparty),
		Reason:          strings.TrimSpace(in.Reason),
		Lines:           toDocumentLines(in.Lines),
		CreatedBy:       userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if docType == entity.DocumentTypeReceipt && in.ProofAttached {
		doc.Status = entity.DocumentStatusReady
	}
	if err := uc.check(ctx, doc); err != nil {
		return nil, err
	}
	if err := uc.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}
	// Recargar para devolver SKU y nombre de producto resueltos.
	return uc.Get(ctx, doc.ID)
}

// Update edita un documento abierto (DRAFT, WAITING o READY).
func (uc *DocumentUseCase) Update(ctx context.Context, id string, in dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	err := uc.txRunner.Run(ctx, func(docRepo repository.DocumentRepository, _ repository.StockRepository, _ repository.StockMoveRepository) error {
		doc, err := lockOpenDocument(ctx, docRepo, id, domain.ErrDocumentLocked)
		if err != nil {
			return err
		}
		if in.FromWarehouseID != nil {
			doc.FromWarehouseID = strings.TrimSpace(*in.FromWarehouseID)
		}
		if in.ToWarehouseID != nil {
			doc.ToWarehouseID = strings.TrimSpace(*in.ToWarehouseID)
		}
		if in.Counterparty != nil {
			doc.Counterparty = strings.TrimSpace(*in.Counterparty)
		}
		if in.Reason != nil {
			doc.Reason = strings.TrimSpace(*in.Reason)
		}
		if in.Status != nil {
			st, ok := entity.ParseDocumentStatus(*in.Status)
			if !ok || st.Terminal() {
				return fmt.Errorf("%w: estado %q no permitido en edición", domain.ErrInvalidInput, *in.Status)
			}
			doc.Status = st
		}
		if len(in.Lines) > 0 {
			doc.Lines = toDocumentLines(in.Lines)
		}
		if err := uc.check(ctx, doc); err != nil {
			return err
		}
		doc.UpdatedAt = uc.now().UTC()
		return docRepo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// Cancel pasa un documento abierto a CANCELED. Un documento DONE no se puede cancelar.
func (uc *DocumentUseCase) Cancel(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	err := uc.txRunner.Run(ctx, func(docRepo repository.DocumentRepository, _ repository.StockRepository, _ repository.StockMoveRepository) error {
		doc, err := lockOpenDocument(ctx, docRepo, id, domain.ErrAlreadyValidated)
		if err != nil {
			return err
		}
		doc.Status = entity.DocumentStatusCanceled
		doc.UpdatedAt = uc.now().UTC()
		return docRepo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// Get obtiene un documento con sus líneas.
func (uc *DocumentUseCase) Get(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return ToDocumentResponse(doc), nil
}

// List lista documentos, más recientes primero.
func (uc *DocumentUseCase) List(ctx context.Context, q dto.DocumentListQuery) (*dto.DocumentListResponse, error) {
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()
	filter := repository.DocumentFilter{
		WarehouseID: strings.TrimSpace(q.WarehouseID),
		ProductID:   strings.TrimSpace(q.ProductID),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if q.Type != "" {
		t, ok := entity.ParseDocumentType(q.Type)
		if !ok {
			return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, q.Type)
		}
		filter.Type = t
	}
	if q.Status != "" {
		st, ok := entity.ParseDocumentStatus(q.Status)
		if !ok {
			return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, q.Status)
		}
		filter.Status = st
	}
	var err error
	if filter.From, filter.To, err = parseDateRange(q.From, q.To); err != nil {
		return nil, err
	}

	list, err := uc.docRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *ToDocumentResponse(d))
	}
	return &dto.DocumentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// check aplica las reglas de forma del documento y verifica que bodegas y productos existan.
func (uc *DocumentUseCase) check(ctx context.Context, doc *entity.Document) error {
	if err := checkShape(doc); err != nil {
		return err
	}
	for _, whID := range []string{doc.FromWarehouseID, doc.ToWarehouseID} {
		if whID == "" {
			continue
		}
		wh, err := uc.warehouseRepo.GetByID(ctx, whID)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, whID)
		}
	}
	for _, productID := range doc.ProductIDs() {
		p, err := uc.productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
		}
	}
	return nil
}

// checkShape reglas sin acceso a datos: bodegas por tipo, líneas y cantidades.
func checkShape(doc *entity.Document) error {
	t := doc.Type
	if (t.NeedsSource() && doc.FromWarehouseID == "") || (t.NeedsDestination() && doc.ToWarehouseID == "") {
		return domain.ErrMissingWarehouse
	}
	if !t.NeedsSource() && doc.FromWarehouseID != "" {
		return fmt.Errorf("%w: %s no usa bodega origen", domain.ErrInvalidInput, t)
	}
	if !t.NeedsDestination() && doc.ToWarehouseID != "" {
		return fmt.Errorf("%w: %s no usa bodega destino", domain.ErrInvalidInput, t)
	}
	if t == entity.DocumentTypeTransfer && doc.FromWarehouseID == doc.ToWarehouseID {
		return domain.ErrSameWarehouse
	}
	if len(doc.Lines) == 0 {
		return fmt.Errorf("%w: el documento necesita al menos una línea", domain.ErrInvalidInput)
	}
	for i, l := range doc.Lines {
		if l.ProductID == "" {
			return fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidInput, i+1)
		}
		if !entity.QuantityFits(l.Quantity) {
			return fmt.Errorf("%w: línea %d: cantidad %s fuera de rango (hasta %d decimales)", domain.ErrInvalidInput, i+1, l.Quantity, entity.QuantityScale)
		}
		if t == entity.DocumentTypeAdjustment {
			if l.Quantity.IsNegative() {
				return fmt.Errorf("%w: línea %d: el conteo no puede ser negativo", domain.ErrInvalidInput, i+1)
			}
			continue
		}
		if !l.Quantity.IsPositive() {
			return fmt.Errorf("%w: línea %d: la cantidad debe ser mayor que cero", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}

// lockOpenDocument bloquea el documento y exige que siga abierto. onDone es el error para DONE.
func lockOpenDocument(ctx context.Context, docRepo repository.DocumentRepository, id string, onDone error) (*entity.Document, error) {
	doc, err := docRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	switch doc.Status {
	case entity.DocumentStatusDone:
		return nil, onDone
	case entity.DocumentStatusCanceled:
		return nil, domain.ErrDocumentCanceled
	}
	return doc, nil
}

func toDocumentLines(in []dto.DocumentLineRequest) []entity.DocumentLine {
	lines := make([]entity.DocumentLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, entity.DocumentLine{ProductID: strings.TrimSpace(l.ProductID), Quantity: l.Quantity})
	}
	return lines
}

// ToDocumentResponse mapea la entidad a su DTO de salida.
func ToDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	if d == nil {
		return nil
	}
	lines := make([]dto.DocumentLineResponse, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, dto.DocumentLineResponse{
			ProductID:   l.ProductID,
			ProductSKU:  l.ProductSKU,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
		})
	}
	return &dto.DocumentResponse{
		ID:              d.ID,
		Type:            string(d.Type),
		Status:          string(d.Status),
		FromWarehouseID: d.FromWarehouseID,
		ToWarehouseID:   d.ToWarehouseID,
		Counterparty:    d.Counterparty,
		Reason:          d.Reason,
		Lines:           lines,
		CreatedBy:       d.CreatedBy,
		ValidatedBy:     d.ValidatedBy,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		ValidatedAt:     d.ValidatedAt,
	}
}
