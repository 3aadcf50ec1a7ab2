package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// stockSheetName is the sheet preferred by the ingestor when present.
const stockSheetName = "Estoque"

// Read opens an xlsx workbook and returns the header row and data rows of
// the "Estoque" sheet, or of the first sheet when no sheet has that name.
func Read(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	return readRows(f)
}

// ReadFrom is Read for an in-memory workbook.
func ReadFrom(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open xlsx stream: %w", err)
	}
	defer f.Close()

	return readRows(f)
}

func readRows(f *excelize.File) ([]string, [][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	sheet := sheets[0]
	for _, name := range sheets {
		if name == stockSheetName {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	return rows[0], rows[1:], nil
}
