package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/application/usecase"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC *usecase.WarehouseUseCase
	ProductUC   *usecase.ProductUseCase
	DocumentUC  *inventory.DocumentUseCase
	ValidateUC  *inventory.ValidateDocumentUseCase
	StockQuery  *inventory.StockQueryUseCase
	ReconcileUC *inventory.ReconcileUseCase
	Replenish   *inventory.ReplenishmentUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todas las rutas bajo /api requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	var (
		anyRole    = RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleStaff)
		supervisor = RequireRole(entity.RoleAdmin, entity.RoleManager)
		adminOnly  = RequireRole(entity.RoleAdmin)
	)

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Documents: cualquier rol crea y edita; validar y cancelar requiere supervisor.
	documents := api.Group("/documents")
	documentHandler := NewDocumentHandler(deps.DocumentUC, deps.ValidateUC)
	documents.Post("/", anyRole, documentHandler.Create)
	documents.Get("/", documentHandler.List)
	documents.Get("/:id", documentHandler.GetByID)
	documents.Put("/:id", anyRole, documentHandler.Update)
	documents.Post("/:id/validate", supervisor, documentHandler.Validate)
	documents.Post("/:id/cancel", supervisor, documentHandler.Cancel)

	// Stock y libro de movimientos (lectura)
	stockHandler := NewStockHandler(deps.StockQuery, deps.ReconcileUC, deps.Replenish)
	stock := api.Group("/stock")
	stock.Get("/", stockHandler.GetLevel)
	stock.Get("/reconcile", adminOnly, stockHandler.Reconcile)
	stock.Get("/warehouses/:id", stockHandler.ListByWarehouse)
	stock.Get("/products/:id", stockHandler.ListByProduct)
	stock.Get("/replenishment/:id", stockHandler.Replenishment)
	api.Get("/stock-moves", stockHandler.ListMoves)

	// Warehouses
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", supervisor, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", supervisor, warehouseHandler.Update)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", supervisor, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", supervisor, productHandler.Update)
}
