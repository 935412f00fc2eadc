// Package sqlite implementa los puertos de persistencia sobre SQLite (modernc, sin cgo).
// Se usa en modo local (STORAGE_DRIVER=sqlite) y en las pruebas del motor de validación.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/sqlite/migrations"
)

var (
	_ inventory.TxRunner       = (*Store)(nil)
	_ inventory.SnapshotRunner = (*Store)(nil)
)

// Store maneja la conexión SQLite y entrega repositorios atados a la base o a una transacción.
type Store struct {
	db *sql.DB
}

// Open abre (o crea) la base en path y aplica las migraciones embebidas.
// Toda transacción arranca con BEGIN IMMEDIATE: los escritores se serializan y busy_timeout los hace esperar.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close cierra la base.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifica la conexión (health check).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Documents() *DocumentRepo   { return &DocumentRepo{q: s.db} }
func (s *Store) Stocks() *StockRepo         { return &StockRepo{q: s.db} }
func (s *Store) StockMoves() *StockMoveRepo { return &StockMoveRepo{q: s.db} }
func (s *Store) Products() *ProductRepo     { return &ProductRepo{q: s.db} }
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{q: s.db} }

// Run ejecuta fn en una transacción y hace Commit o Rollback.
func (s *Store) Run(ctx context.Context, fn func(
	docRepo repository.DocumentRepository,
	stockRepo repository.StockRepository,
	moveRepo repository.StockMoveRepository,
) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&DocumentRepo{q: tx}, &StockRepo{q: tx}, &StockMoveRepo{q: tx})
	})
}

// Snapshot ejecuta lecturas dentro de una transacción (vista consistente).
func (s *Store) Snapshot(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	moveRepo repository.StockMoveRepository,
) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&StockRepo{q: tx}, &StockMoveRepo{q: tx})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// querier es lo común entre *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// mapWriteError traduce violaciones de constraint a errores de dominio.
func mapWriteError(op string, err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
		case sqlite3lib.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%s: %w", op, domain.ErrInsufficientStock)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// placeholders devuelve "?, ?, ?" para n argumentos.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// whereBuilder arma cláusulas WHERE con placeholders "?".
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
