package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stockmaster-api/internal/domain"
)

func TestMapWriteError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	check := &pgconn.PgError{Code: "23514"}
	other := errors.New("conexión cerrada")

	assert.ErrorIs(t, mapWriteError("insert product", unique), domain.ErrDuplicate)
	assert.ErrorIs(t, mapWriteError("save stock", fmt.Errorf("exec: %w", check)), domain.ErrInsufficientStock)

	err := mapWriteError("save stock", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "save stock")
}

func TestMapWriteError_TextoConCodigoNoSeClasifica(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503", Message: "documento 23514-a no existe"}
	plain := errors.New("lote 23505 rechazado")

	for _, err := range []error{fk, plain} {
		mapped := mapWriteError("insert move", err)
		assert.NotErrorIs(t, mapped, domain.ErrInsufficientStock)
		assert.NotErrorIs(t, mapped, domain.ErrDuplicate)
		assert.ErrorIs(t, mapped, err)
	}
}

func TestWhereBuilder_NumeraPlaceholdersEnOrden(t *testing.T) {
	var w whereBuilder
	w.add("(m.from_warehouse_id = ? OR m.to_warehouse_id = ?)", "w1", "w1")
	w.add("m.product_id = ?", "p1")
	page := w.page(20, 40)

	assert.Equal(t, " WHERE (m.from_warehouse_id = $1 OR m.to_warehouse_id = $2) AND m.product_id = $3", w.sql())
	assert.Equal(t, " LIMIT $4 OFFSET $5", page)
	assert.Equal(t, []any{"w1", "w1", "p1", 20, 40}, w.args)
}

func TestWhereBuilder_SinCondiciones(t *testing.T) {
	var w whereBuilder
	assert.Equal(t, "", w.sql())
	assert.Equal(t, " LIMIT $1 OFFSET $2", w.page(10, 0))
}

func TestUpSection(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id TEXT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id TEXT);\n", UpSection(content))
	assert.Equal(t, "SELECT 1;", UpSection("SELECT 1;"))
}
