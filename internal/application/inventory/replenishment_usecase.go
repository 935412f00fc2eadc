package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

const (
	demandWindowDays = 90
	demandPageSize   = 500
)

var idealStockFactor = decimal.NewFromFloat(1.5)

// ReplenishmentUseCase arma la lista de reposición de una bodega: productos en o bajo su
// nivel de reorden, con la cantidad sugerida y una prioridad.
type ReplenishmentUseCase struct {
	stockRepo     repository.StockRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	moveRepo      repository.StockMoveRepository
	tracer        trace.Tracer
	now           func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	moveRepo repository.StockMoveRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		stockRepo:     stockRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		moveRepo:      moveRepo,
		tracer:        otel.Tracer(tracerName),
		now:           time.Now,
	}
}

// Suggest devuelve las sugerencias para warehouseID. Solo considera pares con registro de
// stock y productos con nivel de reorden mayor que cero.
func (uc *ReplenishmentUseCase) Suggest(ctx context.Context, warehouseID string) (*dto.ReplenishmentListResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.Replenishment", trace.WithAttributes(attribute.String("warehouse.id", warehouseID)))
	defer span.End()

	w, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrNotFound
	}

	// 1. Productos en o bajo el punto de reorden
	levels, err := uc.stockRepo.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.ReplenishmentSuggestion, 0)
	for _, s := range levels {
		p, err := uc.productRepo.GetByID(ctx, s.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || !p.ReorderLevel.IsPositive() || s.Quantity.GreaterThan(p.ReorderLevel) {
			continue
		}
		ideal := p.ReorderLevel.Mul(idealStockFactor)
		suggestions = append(suggestions, dto.ReplenishmentSuggestion{
			ProductID:         p.ID,
			SKU:               p.SKU,
			ProductName:       p.Name,
			CurrentStock:      s.Quantity,
			ReorderLevel:      p.ReorderLevel,
			IdealStock:        ideal,
			SuggestedOrderQty: ideal.Sub(s.Quantity),
		})
	}
	if len(suggestions) == 0 {
		return &dto.ReplenishmentListResponse{WarehouseID: warehouseID, Items: suggestions}, nil
	}

	// 2. Demanda reciente: unidades despachadas desde la bodega en la ventana
	demand, err := uc.deliveredUnits(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	for i := range suggestions {
		suggestions[i].DeliveredLast90Days = demand[suggestions[i].ProductID]
	}

	// 3. Orden: menor cobertura (stock/reorden), luego mayor demanda, luego SKU
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ca, cb := a.CurrentStock.Div(a.ReorderLevel), b.CurrentStock.Div(b.ReorderLevel)
		if !ca.Equal(cb) {
			return ca.LessThan(cb)
		}
		if !a.DeliveredLast90Days.Equal(b.DeliveredLast90Days) {
			return a.DeliveredLast90Days.GreaterThan(b.DeliveredLast90Days)
		}
		return a.SKU < b.SKU
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}

	span.SetAttributes(attribute.Int("replenishment.items", len(suggestions)))
	return &dto.ReplenishmentListResponse{WarehouseID: warehouseID, Items: suggestions}, nil
}

func (uc *ReplenishmentUseCase) deliveredUnits(ctx context.Context, warehouseID string) (map[string]decimal.Decimal, error) {
	from := uc.now().AddDate(0, 0, -demandWindowDays)
	out := make(map[string]decimal.Decimal)
	for offset := 0; ; offset += demandPageSize {
		moves, err := uc.moveRepo.List(ctx, repository.StockMoveFilter{
			WarehouseID:  warehouseID,
			DocumentType: entity.DocumentTypeDelivery,
			From:         &from,
			Limit:        demandPageSize,
			Offset:       offset,
		})
		if err != nil {
			return nil, err
		}
		for _, m := range moves {
			// las salidas se registran con signo negativo
			out[m.ProductID] = out[m.ProductID].Add(m.QuantityChange.Abs())
		}
		if len(moves) < demandPageSize {
			return out, nil
		}
	}
}
