package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// ReconcileUseCase reconstruye el stock desde el libro de movimientos y lo compara con el guardado.
type ReconcileUseCase struct {
	runner SnapshotRunner
	tracer trace.Tracer
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(runner SnapshotRunner) *ReconcileUseCase {
	return &ReconcileUseCase{runner: runner, tracer: otel.Tracer(tracerName)}
}

// Reconcile devuelve las diferencias encontradas; Consistent es true si no hay ninguna.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context) (*dto.ReconcileResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.Reconcile")
	defer span.End()

	var (
		stocks []*entity.Stock
		moves  []*entity.StockMove
	)
	err := uc.runner.Snapshot(ctx, func(stockRepo repository.StockRepository, moveRepo repository.StockMoveRepository) error {
		var err error
		if stocks, err = stockRepo.ListAll(ctx); err != nil {
			return err
		}
		moves, err = moveRepo.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	expected := make(map[entity.StockKey]decimal.Decimal)
	for _, m := range moves {
		for _, e := range m.Effects() {
			expected[e.Key] = expected[e.Key].Add(e.Delta)
		}
	}
	stored := make(map[entity.StockKey]decimal.Decimal, len(stocks))
	for _, s := range stocks {
		stored[s.Key()] = s.Quantity
	}

	keys := make([]entity.StockKey, 0, len(stored)+len(expected))
	for k := range stored {
		keys = append(keys, k)
	}
	for k := range expected {
		if _, ok := stored[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	drifts := make([]dto.StockDriftResponse, 0)
	for _, k := range keys {
		if stored[k].Equal(expected[k]) {
			continue
		}
		drifts = append(drifts, dto.StockDriftResponse{
			ProductID:   k.ProductID,
			WarehouseID: k.WarehouseID,
			Stored:      stored[k],
			Expected:    expected[k],
		})
	}
	span.SetAttributes(attribute.Int("reconcile.pairs", len(keys)), attribute.Int("reconcile.drifts", len(drifts)))
	return &dto.ReconcileResponse{
		CheckedPairs: len(keys),
		MovesRead:    len(moves),
		Consistent:   len(drifts) == 0,
		Drifts:       drifts,
	}, nil
}
