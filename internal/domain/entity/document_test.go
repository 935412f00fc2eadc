package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

func TestParseDocumentType(t *testing.T) {
	for _, in := range []string{"RECEIPT", "delivery", " Transfer ", "adjustment"} {
		dt, ok := entity.ParseDocumentType(in)
		assert.True(t, ok, in)
		assert.True(t, dt.Valid(), in)
	}
	_, ok := entity.ParseDocumentType("SCRAP")
	assert.False(t, ok)
	_, ok = entity.ParseDocumentType("")
	assert.False(t, ok)
}

func TestDocumentType_BodegasRequeridas(t *testing.T) {
	assert.False(t, entity.DocumentTypeReceipt.NeedsSource())
	assert.True(t, entity.DocumentTypeReceipt.NeedsDestination())
	assert.True(t, entity.DocumentTypeDelivery.NeedsSource())
	assert.False(t, entity.DocumentTypeDelivery.NeedsDestination())
	assert.True(t, entity.DocumentTypeTransfer.NeedsSource())
	assert.True(t, entity.DocumentTypeTransfer.NeedsDestination())
	assert.False(t, entity.DocumentTypeAdjustment.NeedsSource())
	assert.True(t, entity.DocumentTypeAdjustment.NeedsDestination())
}

func TestDocumentStatus(t *testing.T) {
	st, ok := entity.ParseDocumentStatus("ready")
	assert.True(t, ok)
	assert.Equal(t, entity.DocumentStatusReady, st)
	assert.False(t, st.Terminal())
	assert.True(t, entity.DocumentStatusDone.Terminal())
	assert.True(t, entity.DocumentStatusCanceled.Terminal())

	_, ok = entity.ParseDocumentStatus("ARCHIVED")
	assert.False(t, ok)
}

func TestDocument_ProductIDsSinRepetir(t *testing.T) {
	d := entity.Document{Lines: []entity.DocumentLine{{ProductID: "b"}, {ProductID: "a"}, {ProductID: "b"}}}
	assert.Equal(t, []string{"b", "a"}, d.ProductIDs())
}

func TestDocument_MarkDone(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	d := entity.Document{Status: entity.DocumentStatusReady}
	d.MarkDone("user-1", at)

	assert.Equal(t, entity.DocumentStatusDone, d.Status)
	assert.Equal(t, "user-1", d.ValidatedBy)
	assert.Equal(t, at, *d.ValidatedAt)
	assert.Equal(t, at, d.UpdatedAt)
}

func TestStockKey_Less(t *testing.T) {
	a := entity.StockKey{ProductID: "p1", WarehouseID: "w2"}
	b := entity.StockKey{ProductID: "p2", WarehouseID: "w1"}
	c := entity.StockKey{ProductID: "p1", WarehouseID: "w3"}

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, a.Less(c))
	assert.False(t, a.Less(a))
}

func TestStockMove_Effects(t *testing.T) {
	seven := decimal.NewFromInt(7)

	transfer := entity.StockMove{ProductID: "p", FromWarehouseID: "w1", ToWarehouseID: "w2", QuantityChange: seven}
	assert.Equal(t, []entity.StockEffect{
		{Key: entity.StockKey{ProductID: "p", WarehouseID: "w1"}, Delta: seven.Neg()},
		{Key: entity.StockKey{ProductID: "p", WarehouseID: "w2"}, Delta: seven},
	}, transfer.Effects())

	delivery := entity.StockMove{ProductID: "p", FromWarehouseID: "w1", QuantityChange: seven.Neg()}
	assert.Equal(t, []entity.StockEffect{{Key: entity.StockKey{ProductID: "p", WarehouseID: "w1"}, Delta: seven.Neg()}}, delivery.Effects())

	adjustment := entity.StockMove{ProductID: "p", ToWarehouseID: "w1", QuantityChange: decimal.NewFromInt(-3)}
	effects := adjustment.Effects()
	assert.Len(t, effects, 1)
	assert.True(t, decimal.NewFromInt(-3).Equal(effects[0].Delta))

	assert.Empty(t, (&entity.StockMove{ProductID: "p"}).Effects())
}

func TestQuantityFits(t *testing.T) {
	cases := map[string]bool{
		"0":                   true,
		"0.0001":              true,
		"-12.5":               true,
		"99999999999999.9999": true,
		"0.00001":             false,
		"1.23456":             false,
		"100000000000000":     false,
		"-1e15":               false,
	}
	for raw, want := range cases {
		assert.Equal(t, want, entity.QuantityFits(decimal.RequireFromString(raw)), raw)
	}
}
