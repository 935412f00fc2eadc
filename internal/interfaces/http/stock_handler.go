package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
)

// StockHandler consultas del stock y del libro de movimientos (protegido).
type StockHandler struct {
	queries   *inventory.StockQueryUseCase
	reconcile *inventory.ReconcileUseCase
	replenish *inventory.ReplenishmentUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(queries *inventory.StockQueryUseCase, reconcile *inventory.ReconcileUseCase, replenish *inventory.ReplenishmentUseCase) *StockHandler {
	return &StockHandler{queries: queries, reconcile: reconcile, replenish: replenish}
}

// GetLevel godoc
// @Summary      Nivel de stock de un producto en una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true  "ID del producto"
// @Param        warehouse_id  query  string  true  "ID de la bodega"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) GetLevel(c *fiber.Ctx) error {
	out, err := h.queries.GetLevel(c.UserContext(), c.Query("product_id"), c.Query("warehouse_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListByWarehouse godoc
// @Summary      Stock de una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.StockLevelListResponse
// @Router       /api/stock/warehouses/{id} [get]
func (h *StockHandler) ListByWarehouse(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	out, err := h.queries.ListByWarehouse(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Stock de un producto en todas las bodegas
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelListResponse
// @Router       /api/stock/products/{id} [get]
func (h *StockHandler) ListByProduct(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	out, err := h.queries.ListByProduct(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListMoves godoc
// @Summary      Libro de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id   query  string  false  "Bodega origen o destino"
// @Param        product_id     query  string  false  "Producto"
// @Param        document_id    query  string  false  "Documento"
// @Param        document_type  query  string  false  "Tipo de documento"
// @Param        from           query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to             query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit          query  int     false  "Límite"  default(20)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockMoveListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-moves [get]
func (h *StockHandler) ListMoves(c *fiber.Ctx) error {
	var q dto.StockMoveListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	q.Limit, q.Offset = page(c)
	out, err := h.queries.ListMoves(c.UserContext(), q)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar stock contra el libro
// @Description  Recalcula cada saldo desde los movimientos y devuelve las diferencias.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/stock/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.reconcile.Reconcile(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición de una bodega
// @Description  Productos en o bajo su nivel de reorden, con cantidad sugerida y prioridad.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.ReplenishmentListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/replenishment/{id} [get]
func (h *StockHandler) Replenishment(c *fiber.Ctx) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	out, err := h.replenish.Suggest(c.UserContext(), id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
