package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
)

func TestText(t *testing.T) {
	assert.Equal(t, "deposito", Text("  Depósito "))
	assert.Equal(t, "em estoque", Text("EM ESTOQUE"))
	assert.Equal(t, "assistencia", Text("Assistência"))
	assert.Equal(t, "", Text("   "))
}

func TestWarehouse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Loja", domain.WarehouseLoja},
		{"LOJA CENTRO", domain.WarehouseLoja},
		{"na loja", domain.WarehouseLoja},
		{"Depósito", domain.WarehouseDeposito},
		{"deposito 2", domain.WarehouseDeposito},
		{"DEPOSITO", domain.WarehouseDeposito},
		{"Showroom", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Warehouse(tt.in), "input %q", tt.in)
	}
}

func TestIsConfirmedInStock(t *testing.T) {
	assert.True(t, IsConfirmedInStock("em estoque"))
	assert.False(t, IsConfirmedInStock("vendido"))
	assert.False(t, IsConfirmedInStock(""))
	assert.False(t, IsConfirmedInStock("em estoque na loja"))
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"1234.56", 1234.56},
		{"12,5", 12.5},
		{"1,234.56", 1234.56},
		{"1.234.567", 1234567},
		{"200", 200},
		{" 75 ", 75},
		{"-3,5", -3.5},
	}
	for _, tt := range tests {
		got := Decimal(tt.in)
		require.NotNil(t, got, "input %q", tt.in)
		assert.InDelta(t, tt.want, *got, 1e-9, "input %q", tt.in)
	}

	for _, in := range []string{"", "abc", "12x", "1,2,3"} {
		assert.Nil(t, Decimal(in), "input %q", in)
	}
}

func TestInteger(t *testing.T) {
	two := Integer("2")
	require.NotNil(t, two)
	assert.Equal(t, 2, *two)

	trunc := Integer("3,9")
	require.NotNil(t, trunc)
	assert.Equal(t, 3, *trunc)

	assert.Nil(t, Integer("n/a"))
	assert.Nil(t, Integer(""))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "Mesa de Jantar", CollapseWhitespace("  Mesa   de \t Jantar "))
}
