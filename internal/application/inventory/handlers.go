package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// documentHandler aplica un documento sobre el ledger y devuelve los movimientos en orden de línea.
type documentHandler func(ctx context.Context, ledger *StockLedger, doc *entity.Document, mb moveBuilder) ([]*entity.StockMove, error)

// handlerFor resuelve el handler del tipo. Es un switch cerrado sobre entity.DocumentType.
func handlerFor(t entity.DocumentType) (documentHandler, error) {
	switch t {
	case entity.DocumentTypeReceipt:
		return applyReceipt, nil
	case entity.DocumentTypeDelivery:
		return applyDelivery, nil
	case entity.DocumentTypeTransfer:
		return applyTransfer, nil
	case entity.DocumentTypeAdjustment:
		return applyAdjustment, nil
	}
	return nil, domain.ErrUnknownDocumentType
}

// moveBuilder arma movimientos con los datos comunes de la validación.
type moveBuilder struct {
	documentID string
	userID     string
	at         time.Time
}

func (b moveBuilder) build(productID, from, to string, change decimal.Decimal) *entity.StockMove {
	return &entity.StockMove{
		ID:              uuid.New().String(),
		DocumentID:      b.documentID,
		ProductID:       productID,
		FromWarehouseID: from,
		ToWarehouseID:   to,
		QuantityChange:  change,
		ExecutedBy:      b.userID,
		Timestamp:       b.at,
	}
}

func applyReceipt(ctx context.Context, ledger *StockLedger, doc *entity.Document, mb moveBuilder) ([]*entity.StockMove, error) {
	dest := doc.ToWarehouseID
	if dest == "" {
		return nil, domain.ErrMissingWarehouse
	}
	if err := ledger.Lock(ctx, keysAt(doc.Lines, dest)...); err != nil {
		return nil, err
	}
	moves := make([]*entity.StockMove, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		key := entity.StockKey{ProductID: line.ProductID, WarehouseID: dest}
		if err := ledger.Apply(ctx, key, line.Quantity); err != nil {
			return nil, err
		}
		moves = append(moves, mb.build(line.ProductID, "", dest, line.Quantity))
	}
	return moves, nil
}

func applyDelivery(ctx context.Context, ledger *StockLedger, doc *entity.Document, mb moveBuilder) ([]*entity.StockMove, error) {
	src := doc.FromWarehouseID
	if src == "" {
		return nil, domain.ErrMissingWarehouse
	}
	moves := make([]*entity.StockMove, 0, len(doc.Lines))
	err := withdraw(ctx, ledger, src, doc.Lines, nil, func(line entity.DocumentLine) error {
		key := entity.StockKey{ProductID: line.ProductID, WarehouseID: src}
		if err := ledger.Apply(ctx, key, line.Quantity.Neg()); err != nil {
			return err
		}
		moves = append(moves, mb.build(line.ProductID, src, "", line.Quantity.Neg()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moves, nil
}

func applyTransfer(ctx context.Context, ledger *StockLedger, doc *entity.Document, mb moveBuilder) ([]*entity.StockMove, error) {
	src, dest := doc.FromWarehouseID, doc.ToWarehouseID
	if src == "" || dest == "" {
		return nil, domain.ErrMissingWarehouse
	}
	if src == dest {
		return nil, domain.ErrSameWarehouse
	}
	moves := make([]*entity.StockMove, 0, len(doc.Lines))
	err := withdraw(ctx, ledger, src, doc.Lines, keysAt(doc.Lines, dest), func(line entity.DocumentLine) error {
		from := entity.StockKey{ProductID: line.ProductID, WarehouseID: src}
		to := entity.StockKey{ProductID: line.ProductID, WarehouseID: dest}
		if err := ledger.Apply(ctx, from, line.Quantity.Neg()); err != nil {
			return err
		}
		if err := ledger.Apply(ctx, to, line.Quantity); err != nil {
			return err
		}
		moves = append(moves, mb.build(line.ProductID, src, dest, line.Quantity))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moves, nil
}

func applyAdjustment(ctx context.Context, ledger *StockLedger, doc *entity.Document, mb moveBuilder) ([]*entity.StockMove, error) {
	wh := doc.ToWarehouseID
	if wh == "" {
		return nil, domain.ErrMissingWarehouse
	}
	if err := ledger.Lock(ctx, keysAt(doc.Lines, wh)...); err != nil {
		return nil, err
	}
	moves := make([]*entity.StockMove, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		key := entity.StockKey{ProductID: line.ProductID, WarehouseID: wh}
		prev, err := ledger.Set(ctx, key, line.Quantity)
		if err != nil {
			return nil, err
		}
		moves = append(moves, mb.build(line.ProductID, "", wh, line.Quantity.Sub(prev)))
	}
	return moves, nil
}

// withdraw bloquea todo, verifica disponibilidad de todas las líneas contra source y recién
// entonces aplica cada línea. Líneas repetidas del mismo producto se suman en la verificación.
// extra son claves adicionales a bloquear en la misma pasada ordenada (destino del traslado).
func withdraw(
	ctx context.Context,
	ledger *StockLedger,
	source string,
	lines []entity.DocumentLine,
	extra []entity.StockKey,
	apply func(line entity.DocumentLine) error,
) error {
	keys := append(keysAt(lines, source), extra...)
	if err := ledger.Lock(ctx, keys...); err != nil {
		return err
	}

	requested := make(map[string]decimal.Decimal, len(lines))
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := requested[line.ProductID]; !ok {
			order = append(order, line.ProductID)
		}
		requested[line.ProductID] = requested[line.ProductID].Add(line.Quantity)
	}
	for _, productID := range order {
		key := entity.StockKey{ProductID: productID, WarehouseID: source}
		available, err := ledger.Quantity(ctx, key)
		if err != nil {
			return err
		}
		if requested[productID].GreaterThan(available) {
			return &domain.InsufficientStockError{
				ProductID:   productID,
				WarehouseID: source,
				Available:   available,
				Requested:   requested[productID],
			}
		}
	}

	for _, line := range lines {
		if err := apply(line); err != nil {
			return err
		}
	}
	return nil
}

func keysAt(lines []entity.DocumentLine, warehouseID string) []entity.StockKey {
	keys := make([]entity.StockKey, 0, len(lines))
	for _, line := range lines {
		keys = append(keys, entity.StockKey{ProductID: line.ProductID, WarehouseID: warehouseID})
	}
	return keys
}
