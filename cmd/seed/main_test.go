package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseWarehouses(t *testing.T) {
	in := "code,name,address,type\ncen,Central,Calle 1,MAIN\nnor,Norte,,\n"
	got, err := parseWarehouses(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cen", got[0].Code)
	assert.Equal(t, "main", got[0].Type)
	assert.Equal(t, "Norte", got[1].Name)
	assert.Empty(t, got[1].Type)
}

func TestParseProducts_ColumnasEnOtroOrdenYComaDecimal(t *testing.T) {
	in := "\ufeffName,SKU,reorder_level\nTornillo,tor-001,\"12,5\"\nTuerca,tue-002,\n"
	got, err := parseProducts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "tor-001", got[0].SKU)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got[0].ReorderLevel))
	assert.True(t, got[1].ReorderLevel.IsZero())
}

func TestParseProducts_Errores(t *testing.T) {
	_, err := parseProducts(strings.NewReader("name\nTornillo\n"))
	assert.ErrorContains(t, err, "sku")

	_, err = parseProducts(strings.NewReader("sku,name,reorder_level\nA,B,mucho\n"))
	assert.ErrorContains(t, err, "línea 2")
}

func TestDecodeCharset_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("code,name\nbod-ñ,Bodega Ñandú\n")
	require.NoError(t, err)

	r, err := decodeCharset(bytes.NewReader([]byte(raw)), "ISO-8859-1")
	require.NoError(t, err)
	got, err := parseWarehouses(r)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bod-ñ", got[0].Code)
	assert.Equal(t, "Bodega Ñandú", got[0].Name)

	_, err = decodeCharset(bytes.NewReader(nil), "ebcdic")
	assert.Error(t, err)
}
