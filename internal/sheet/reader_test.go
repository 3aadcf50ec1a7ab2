package sheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, build func(f *excelize.File)) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	build(f)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestReadFrom_PrefersEstoqueSheet(t *testing.T) {
	r := workbookBytes(t, func(f *excelize.File) {
		require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"other", "data"}))
		_, err := f.NewSheet("Estoque")
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Estoque", "A1", &[]any{"Código", "Qtd"}))
		require.NoError(t, f.SetSheetRow("Estoque", "A2", &[]any{"X1", "2"}))
	})

	header, rows, err := ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"Código", "Qtd"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"X1", "2"}, rows[0])
}

func TestReadFrom_FallsBackToFirstSheet(t *testing.T) {
	r := workbookBytes(t, func(f *excelize.File) {
		require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Código"}))
		require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"X1"}))
	})

	header, rows, err := ReadFrom(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"Código"}, header)
	assert.Len(t, rows, 1)
}

func TestReadFrom_EmptySheet(t *testing.T) {
	r := workbookBytes(t, func(f *excelize.File) {})

	_, _, err := ReadFrom(r)
	assert.Error(t, err)
}
