package table

import (
	"fmt"

	"github.com/apache/arrow/go/v14/arrow/memory"

	"sales-insight/internal/models"
)

// Table is the typed view of a sales dataset. Date is nil when the dataset has
// no date column.
type Table struct {
	Date     *Dates
	Product  *Text
	Quantity *Numeric
	Price    *Numeric
	Customer *Text
	rows     int
}

// FromDataset coerces the sales columns of ds. The caller must Release the table.
func FromDataset(mem memory.Allocator, ds *models.Dataset) (*Table, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	t := &Table{rows: ds.NumRows()}
	var err error

	if t.Product, err = NewText(mem, ds, models.ColumnProduct); err != nil {
		return nil, fmt.Errorf("build product column: %w", err)
	}
	if t.Customer, err = NewText(mem, ds, models.ColumnCustomer); err != nil {
		t.Release()
		return nil, fmt.Errorf("build customer column: %w", err)
	}
	if t.Quantity, err = NewNumeric(mem, ds, models.ColumnQuantity); err != nil {
		t.Release()
		return nil, fmt.Errorf("build quantity column: %w", err)
	}
	if t.Price, err = NewNumeric(mem, ds, models.ColumnPrice); err != nil {
		t.Release()
		return nil, fmt.Errorf("build price column: %w", err)
	}
	if ds.HasColumn(models.ColumnDate) {
		if t.Date, err = NewDates(mem, ds, models.ColumnDate); err != nil {
			t.Release()
			return nil, fmt.Errorf("build date column: %w", err)
		}
	}

	return t, nil
}

func (t *Table) Len() int {
	return t.rows
}

// Revenue returns quantity*price for row i, or false when either operand is missing.
func (t *Table) Revenue(i int) (float64, bool) {
	if !t.Quantity.Valid(i) || !t.Price.Valid(i) {
		return 0, false
	}
	return t.Quantity.Value(i) * t.Price.Value(i), true
}

func (t *Table) Release() {
	if t.Date != nil {
		t.Date.Release()
	}
	if t.Product != nil {
		t.Product.Release()
	}
	if t.Quantity != nil {
		t.Quantity.Release()
	}
	if t.Price != nil {
		t.Price.Release()
	}
	if t.Customer != nil {
		t.Customer.Release()
	}
}
