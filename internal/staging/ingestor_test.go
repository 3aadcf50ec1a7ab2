package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/domain"
	"github.com/albertlreis/gerenciador-estoque-api-sub002/internal/sheet"
)

func testCols() map[string]int {
	return map[string]int{
		sheet.FieldCodigo:      0,
		sheet.FieldNome:        1,
		sheet.FieldCategoria:   2,
		sheet.FieldDeposito:    3,
		sheet.FieldStatus:      4,
		sheet.FieldQd:          5,
		sheet.FieldSetor:       6,
		sheet.FieldColuna:      7,
		sheet.FieldNivel:       8,
		sheet.FieldLargura:     9,
		sheet.FieldAltura:      10,
		sheet.FieldMaterial:    11,
		sheet.FieldLocalizacao: 12,
	}
}

func TestParseRow_ValidConfirmedRow(t *testing.T) {
	cells := []string{"SOF-01", "Sofá Paris 220x90x80cm", "Sofás", "Depósito", "Em Estoque", "3", "6", "F", "1"}
	row := parseRow(testCols(), cells, 2, "abc")

	assert.True(t, row.Valido)
	assert.Empty(t, row.Erros)
	assert.Equal(t, "SOF-01", row.Codigo)
	assert.Equal(t, domain.WarehouseDeposito, row.DepositoEfetivo)
	assert.True(t, row.EmEstoque)
	assert.Equal(t, 3, row.Qtd)

	require.NotNil(t, row.Dimensoes.LarguraCm)
	assert.Equal(t, 220.0, *row.Dimensoes.LarguraCm)

	assert.Equal(t, domain.LocationTipoPosicao, row.Local.Tipo)
	assert.Equal(t, "6-F1", row.Local.Codigo)
	assert.NotEmpty(t, row.HashLinha)
}

func TestParseRow_NoCodeColumn(t *testing.T) {
	cols := testCols()
	delete(cols, sheet.FieldCodigo)
	cells := []string{"ignored", "Mesa Jantar", "Mesas", "Loja", "Em Estoque", "1"}
	row := parseRow(cols, cells, 2, "abc")

	assert.True(t, row.Valido)
	assert.Empty(t, row.Codigo)
	assert.Contains(t, row.Avisos, "código ausente")
}

func TestParseRow_MissingCodeIsWarningOnly(t *testing.T) {
	cells := []string{"", "Mesa Jantar", "Mesas", "Loja", "Em Estoque", "1"}
	row := parseRow(testCols(), cells, 5, "abc")

	assert.True(t, row.Valido)
	assert.Contains(t, row.Avisos, "código ausente")
}

func TestParseRow_ConfirmedWithoutQuantityIsInvalid(t *testing.T) {
	cells := []string{"MES-02", "Mesa Jantar", "Mesas", "Loja", "Em Estoque", ""}
	row := parseRow(testCols(), cells, 3, "abc")

	assert.False(t, row.Valido)
	assert.Contains(t, row.Erros, "quantidade ausente ou inválida")
}

func TestParseRow_UnconfirmedZeroesQuantity(t *testing.T) {
	cells := []string{"MES-02", "Mesa Jantar", "Mesas", "Depósito", "Vendido", "4"}
	row := parseRow(testCols(), cells, 3, "abc")

	assert.True(t, row.Valido)
	assert.False(t, row.EmEstoque)
	assert.Equal(t, 0, row.Qtd)
	assert.Contains(t, row.Avisos, "linha não confirmada em estoque: quantidade zerada")
}

func TestParseRow_NegativeQuantity(t *testing.T) {
	cells := []string{"MES-02", "Mesa Jantar", "Mesas", "Depósito", "Em Estoque", "-2"}
	row := parseRow(testCols(), cells, 3, "abc")

	assert.False(t, row.Valido)
	assert.Contains(t, row.Erros, "quantidade negativa")
}

func TestParseRow_DimensionColumnsBeatName(t *testing.T) {
	cells := []string{"SOF-01", "Sofá 220x90x80", "", "Depósito", "Em Estoque", "1", "", "", "", "200", "85"}
	row := parseRow(testCols(), cells, 2, "abc")

	require.NotNil(t, row.Dimensoes.LarguraCm)
	assert.Equal(t, 200.0, *row.Dimensoes.LarguraCm)
	require.NotNil(t, row.Dimensoes.AlturaCm)
	assert.Equal(t, 85.0, *row.Dimensoes.AlturaCm)
	// Depth has no column value, so the name extraction fills it.
	require.NotNil(t, row.Dimensoes.ProfundidadeCm)
	assert.Equal(t, 90.0, *row.Dimensoes.ProfundidadeCm)
}

func TestParseRow_LegacyLocationFallback(t *testing.T) {
	cells := []string{"SOF-01", "Sofá", "", "Depósito", "Em Estoque", "1", "", "", "", "", "", "", "12B3"}
	row := parseRow(testCols(), cells, 2, "abc")

	assert.Equal(t, domain.LocationTipoPosicao, row.Local.Tipo)
	assert.Equal(t, "12-B3", row.Local.Codigo)
}

func TestResolveStockState(t *testing.T) {
	tests := []struct {
		name         string
		deposito     string
		status       string
		wantDeposito string
		wantInStock  bool
		wantAvisos   int
	}{
		{"confirmed with warehouse", "Depósito", "Em Estoque", domain.WarehouseDeposito, true, 0},
		{"confirmed accent-free", "deposito", "EM ESTOQUE", domain.WarehouseDeposito, true, 0},
		{"confirmed without warehouse defaults", "", "Em Estoque", domain.WarehouseDeposito, true, 1},
		{"empty status promoted by warehouse", "Loja", "", domain.WarehouseLoja, true, 0},
		{"unconfirmed status", "Loja", "Vendido", domain.WarehouseLoja, false, 1},
		{"nothing recognized", "", "", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deposito, inStock, avisos := resolveStockState(tt.deposito, tt.status)
			assert.Equal(t, tt.wantDeposito, deposito)
			assert.Equal(t, tt.wantInStock, inStock)
			assert.Len(t, avisos, tt.wantAvisos)
		})
	}
}

func TestIsBlankRow(t *testing.T) {
	assert.True(t, isBlankRow([]string{"", "  ", "\t"}))
	assert.True(t, isBlankRow(nil))
	assert.False(t, isBlankRow([]string{"", "X"}))
}

func TestHashRowIsStable(t *testing.T) {
	a := hashRow("file", 2, "COD", "Nome", "Depósito", "Em Estoque")
	b := hashRow("file", 2, "COD", "Nome", "Depósito", "Em Estoque")
	c := hashRow("file", 3, "COD", "Nome", "Depósito", "Em Estoque")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
