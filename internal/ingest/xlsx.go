package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sales-insight/internal/models"
)

// ReadXLSX decodes the first worksheet of an Excel workbook. The first row is
// the header and blank rows are skipped.
func ReadXLSX(r io.Reader) (*models.Dataset, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheets
		}
		sheet = sheets[0]
	}

	it, err := wb.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer it.Close()

	var columns []string
	var rows [][]models.Cell
	for it.Next() {
		record, err := it.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(record) == 0 {
			continue
		}
		if columns == nil {
			columns = headerNames(record)
			continue
		}
		rows = append(rows, toRow(record))
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if columns == nil {
		return nil, ErrEmptyFile
	}

	return models.NewDataset(columns, rows), nil
}
