// Package storage arma el backend de persistencia configurado (PostgreSQL o SQLite)
// y expone los puertos que consumen los casos de uso.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/stockmaster-api/pkg/config"
)

// Backend repositorios fuera de transacción más los runners transaccionales.
type Backend struct {
	Driver     string
	TxRunner   inventory.TxRunner
	Snapshots  inventory.SnapshotRunner
	Documents  repository.DocumentRepository
	Stocks     repository.StockRepository
	StockMoves repository.StockMoveRepository
	Warehouses repository.WarehouseRepository
	Products   repository.ProductRepository

	ping  func(context.Context) error
	close func()
}

// Open conecta según cfg.Storage.Driver y aplica las migraciones embebidas.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return openSQLite(ctx, cfg.Storage.SQLitePath)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DB)
	}
	return nil, fmt.Errorf("driver de almacenamiento no soportado: %q", cfg.Storage.Driver)
}

func openPostgres(ctx context.Context, cfg config.DBConfig) (*Backend, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.ApplyMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migraciones postgres: %w", err)
	}
	tx := postgres.NewTxRunner(pool)
	return &Backend{
		Driver:     config.DriverPostgres,
		TxRunner:   tx,
		Snapshots:  tx,
		Documents:  postgres.NewDocumentRepository(pool),
		Stocks:     postgres.NewStockRepository(pool),
		StockMoves: postgres.NewStockMoveRepository(pool),
		Warehouses: postgres.NewWarehouseRepository(pool),
		Products:   postgres.NewProductRepository(pool),
		ping:       pool.Ping,
		close:      pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, path string) (*Backend, error) {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Driver:     config.DriverSQLite,
		TxRunner:   store,
		Snapshots:  store,
		Documents:  store.Documents(),
		Stocks:     store.Stocks(),
		StockMoves: store.StockMoves(),
		Warehouses: store.Warehouses(),
		Products:   store.Products(),
		ping:       store.Ping,
		close:      func() { _ = store.Close() },
	}, nil
}

// Ping verifica la conexión (health check).
func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

// Close libera la conexión.
func (b *Backend) Close() {
	if b != nil && b.close != nil {
		b.close()
	}
}
