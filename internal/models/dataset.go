package models

import "strings"

// Required sales columns. Every upload must carry all five.
const (
	ColumnDate     = "date"
	ColumnProduct  = "product"
	ColumnQuantity = "quantity"
	ColumnPrice    = "price"
	ColumnCustomer = "customer"
)

// RequiredColumns lists the required columns in reporting order.
var RequiredColumns = []string{ColumnDate, ColumnProduct, ColumnQuantity, ColumnPrice, ColumnCustomer}

// Cell is one raw value as read from an upload. Null marks a cell the decoder
// read as missing; Value is empty in that case.
type Cell struct {
	Value string
	Null  bool
}

// NullCell is the missing-value cell.
var NullCell = Cell{Null: true}

// Missing reports whether the cell holds no value: null, empty or only
// whitespace.
func (c Cell) Missing() bool {
	return c.Null || strings.TrimSpace(c.Value) == ""
}

// Text returns a present cell holding s.
func Text(s string) Cell {
	return Cell{Value: s}
}

// Dataset is an ordered, read-only table of raw cells with named columns.
// Every row has exactly len(Columns) cells.
type Dataset struct {
	Columns []string
	Rows    [][]Cell
}

// NewDataset builds a dataset, padding short rows with null cells and
// truncating long rows to the header width.
func NewDataset(columns []string, rows [][]Cell) *Dataset {
	width := len(columns)
	normalized := make([][]Cell, len(rows))
	for i, row := range rows {
		out := make([]Cell, width)
		for j := range out {
			if j < len(row) {
				out[j] = row[j]
			} else {
				out[j] = NullCell
			}
		}
		normalized[i] = out
	}

	cols := make([]string, width)
	copy(cols, columns)

	return &Dataset{Columns: cols, Rows: normalized}
}

func (d *Dataset) NumRows() int {
	return len(d.Rows)
}

func (d *Dataset) NumColumns() int {
	return len(d.Columns)
}

// ColumnIndex returns the position of the first column called name, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// MissingColumns returns the entries of required that the dataset lacks, in order.
func (d *Dataset) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !d.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Cell returns the cell at (row, col). Out-of-range positions read as null.
func (d *Dataset) Cell(row, col int) Cell {
	if row < 0 || row >= len(d.Rows) || col < 0 || col >= len(d.Rows[row]) {
		return NullCell
	}
	return d.Rows[row][col]
}

// NullCount counts missing cells in the named column. Unknown columns count zero.
func (d *Dataset) NullCount(name string) int {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return 0
	}
	count := 0
	for i := range d.Rows {
		if d.Cell(i, idx).Missing() {
			count++
		}
	}
	return count
}
