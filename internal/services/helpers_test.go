package services

import "sales-insight/internal/models"

// salesDataset builds a dataset with the five required columns. A nil value
// becomes a null cell.
func salesDataset(rows ...[]any) *models.Dataset {
	return datasetWith(models.RequiredColumns, rows...)
}

func datasetWith(columns []string, rows ...[]any) *models.Dataset {
	cells := make([][]models.Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]models.Cell, len(row))
		for j, v := range row {
			if v == nil {
				cells[i][j] = models.NullCell
				continue
			}
			cells[i][j] = models.Text(v.(string))
		}
	}
	return models.NewDataset(columns, cells)
}

// exampleDataset is the four-row reference dataset with one null date.
func exampleDataset() *models.Dataset {
	return salesDataset(
		[]any{"2024-01-01", "A", "2", "10", "X"},
		[]any{"2024-01-01", "B", "1", "5", "Y"},
		[]any{"2024-01-02", "A", "3", "10", "X"},
		[]any{nil, "A", "1", "10", "Z"},
	)
}
