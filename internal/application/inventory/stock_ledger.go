package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// StockLedger es el único escritor de niveles de stock. Vive lo que dura una transacción:
// bloquea pares (producto, bodega), lee sobre la fila bloqueada y escribe el resultado.
type StockLedger struct {
	repo    repository.StockRepository
	locked  map[entity.StockKey]*entity.Stock
	touched []entity.StockKey
}

// NewStockLedger construye el ledger sobre un StockRepository atado a la transacción.
func NewStockLedger(repo repository.StockRepository) *StockLedger {
	return &StockLedger{repo: repo, locked: make(map[entity.StockKey]*entity.Stock)}
}

// Lock bloquea todas las claves en orden canónico. Claves ya bloqueadas se omiten.
func (l *StockLedger) Lock(ctx context.Context, keys ...entity.StockKey) error {
	pending := make([]entity.StockKey, 0, len(keys))
	seen := make(map[entity.StockKey]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := l.locked[k]; ok {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		pending = append(pending, k)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Less(pending[j]) })

	for _, k := range pending {
		s, err := l.repo.LockForUpdate(ctx, k.ProductID, k.WarehouseID)
		if err != nil {
			return fmt.Errorf("lock stock %s/%s: %w", k.ProductID, k.WarehouseID, err)
		}
		l.locked[k] = s
	}
	return nil
}

// Quantity devuelve la cantidad actual (0 si no hay registro).
func (l *StockLedger) Quantity(ctx context.Context, key entity.StockKey) (decimal.Decimal, error) {
	if s, ok := l.locked[key]; ok {
		return s.Quantity, nil
	}
	s, err := l.repo.Get(ctx, key.ProductID, key.WarehouseID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.Quantity, nil
}

// Apply suma delta (con signo). Si el resultado fuera negativo no escribe nada
// y devuelve *domain.InsufficientStockError.
func (l *StockLedger) Apply(ctx context.Context, key entity.StockKey, delta decimal.Decimal) error {
	s, err := l.row(ctx, key)
	if err != nil {
		return err
	}
	next := s.Quantity.Add(delta)
	if !entity.QuantityFits(next) {
		return fmt.Errorf("%w: stock %s/%s excede el máximo", domain.ErrInvalidInput, key.ProductID, key.WarehouseID)
	}
	if next.IsNegative() {
		return &domain.InsufficientStockError{
			ProductID:   key.ProductID,
			WarehouseID: key.WarehouseID,
			Available:   s.Quantity,
			Requested:   delta.Neg(),
		}
	}
	return l.write(ctx, s, next)
}

// Set fija la cantidad absoluta y devuelve la anterior, leída sobre la misma fila bloqueada.
func (l *StockLedger) Set(ctx context.Context, key entity.StockKey, target decimal.Decimal) (decimal.Decimal, error) {
	s, err := l.row(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	prev := s.Quantity
	if err := l.write(ctx, s, target); err != nil {
		return decimal.Zero, err
	}
	return prev, nil
}

// Touched claves escritas durante la transacción, en orden de primera escritura.
func (l *StockLedger) Touched() []entity.StockKey {
	out := make([]entity.StockKey, len(l.touched))
	copy(out, l.touched)
	return out
}

func (l *StockLedger) row(ctx context.Context, key entity.StockKey) (*entity.Stock, error) {
	if s, ok := l.locked[key]; ok {
		return s, nil
	}
	if err := l.Lock(ctx, key); err != nil {
		return nil, err
	}
	return l.locked[key], nil
}

func (l *StockLedger) write(ctx context.Context, s *entity.Stock, qty decimal.Decimal) error {
	updated := *s
	updated.Quantity = qty
	if err := l.repo.Save(ctx, &updated); err != nil {
		return fmt.Errorf("save stock %s/%s: %w", s.ProductID, s.WarehouseID, err)
	}
	key := s.Key()
	if !containsKey(l.touched, key) {
		l.touched = append(l.touched, key)
	}
	l.locked[key] = &updated
	return nil
}

func containsKey(keys []entity.StockKey, key entity.StockKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
