package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

// StockQueryUseCase consultas de solo lectura sobre niveles de stock y el libro de movimientos.
type StockQueryUseCase struct {
	stockRepo repository.StockRepository
	moveRepo  repository.StockMoveRepository
	cache     StockCache
	log       *logger.Logger
}

// NewStockQueryUseCase construye el caso de uso. cache y log pueden ser nil.
func NewStockQueryUseCase(stockRepo repository.StockRepository, moveRepo repository.StockMoveRepository, cache StockCache, log *logger.Logger) *StockQueryUseCase {
	if cache == nil {
		cache = NopStockCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockQueryUseCase{stockRepo: stockRepo, moveRepo: moveRepo, cache: cache, log: log.Named("stock_query")}
}

// GetLevel devuelve el stock de un producto en una bodega (0 si nunca hubo movimientos).
// Lee primero de la caché; una falla de caché no impide responder desde la base.
// El valor leído de la base solo se cachea si ninguna validación invalidó la clave entretanto.
func (uc *StockQueryUseCase) GetLevel(ctx context.Context, productID, warehouseID string) (*dto.StockLevelResponse, error) {
	key := entity.StockKey{ProductID: strings.TrimSpace(productID), WarehouseID: strings.TrimSpace(warehouseID)}
	if key.ProductID == "" || key.WarehouseID == "" {
		return nil, fmt.Errorf("%w: product_id y warehouse_id son requeridos", domain.ErrInvalidInput)
	}
	cached, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.log.Warn().Err(err).Msg("lectura de caché de stock")
	}
	if cached.Hit {
		return &dto.StockLevelResponse{ProductID: key.ProductID, WarehouseID: key.WarehouseID, Quantity: cached.Quantity}, nil
	}

	s, err := uc.stockRepo.Get(ctx, key.ProductID, key.WarehouseID)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, key, s.Quantity, cached.Version); err != nil {
		uc.log.Warn().Err(err).Msg("escritura de caché de stock")
	}
	return toStockLevelResponse(s), nil
}

// ListByWarehouse niveles de stock de una bodega.
func (uc *StockQueryUseCase) ListByWarehouse(ctx context.Context, warehouseID string) (*dto.StockLevelListResponse, error) {
	list, err := uc.stockRepo.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return toStockLevelList(list), nil
}

// ListByProduct niveles de stock de un producto en todas las bodegas.
func (uc *StockQueryUseCase) ListByProduct(ctx context.Context, productID string) (*dto.StockLevelListResponse, error) {
	list, err := uc.stockRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toStockLevelList(list), nil
}

// ListMoves lista movimientos del libro, más recientes primero.
func (uc *StockQueryUseCase) ListMoves(ctx context.Context, q dto.StockMoveListQuery) (*dto.StockMoveListResponse, error) {
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()
	filter := repository.StockMoveFilter{
		WarehouseID: strings.TrimSpace(q.WarehouseID),
		ProductID:   strings.TrimSpace(q.ProductID),
		DocumentID:  strings.TrimSpace(q.DocumentID),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if q.DocumentType != "" {
		t, ok := entity.ParseDocumentType(q.DocumentType)
		if !ok {
			return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, q.DocumentType)
		}
		filter.DocumentType = t
	}
	var err error
	if filter.From, filter.To, err = parseDateRange(q.From, q.To); err != nil {
		return nil, err
	}
	moves, err := uc.moveRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMoveResponse, 0, len(moves))
	for _, m := range moves {
		items = append(items, dto.StockMoveResponse{
			ID:              m.ID,
			DocumentID:      m.DocumentID,
			DocumentType:    string(m.DocumentType),
			ProductID:       m.ProductID,
			FromWarehouseID: m.FromWarehouseID,
			ToWarehouseID:   m.ToWarehouseID,
			QuantityChange:  m.QuantityChange,
			ExecutedBy:      m.ExecutedBy,
			Timestamp:       m.Timestamp,
		})
	}
	return &dto.StockMoveListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

func toStockLevelList(list []*entity.Stock) *dto.StockLevelListResponse {
	items := make([]dto.StockLevelResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toStockLevelResponse(s))
	}
	return &dto.StockLevelListResponse{Items: items}
}

func toStockLevelResponse(s *entity.Stock) *dto.StockLevelResponse {
	out := &dto.StockLevelResponse{ProductID: s.ProductID, WarehouseID: s.WarehouseID, Quantity: s.Quantity}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
