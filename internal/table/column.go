// Package table turns a raw dataset into typed, column-oriented Arrow arrays.
//
// Each typed column keeps two layers of validity: the Arrow null bitmap marks
// every cell without a usable value, and States records why, so original
// nulls and coercion failures stay distinguishable.
package table

import (
	"fmt"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"sales-insight/internal/models"
)

type CellState uint8

const (
	CellPresent CellState = iota
	CellNull
	CellInvalid
)

// ColumnNotFoundError reports a typed column requested from a dataset that lacks it.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// States records the pre-coercion state of every cell in a typed column.
type States []CellState

func (s States) count(want CellState) int {
	n := 0
	for _, st := range s {
		if st == want {
			n++
		}
	}
	return n
}

// OriginalNulls counts cells that were missing (null or blank) before coercion.
func (s States) OriginalNulls() int { return s.count(CellNull) }

// ConversionFailures counts non-blank cells that failed coercion.
func (s States) ConversionFailures() int { return s.count(CellInvalid) }

// Numeric is a float64 column. Values is null wherever States is not CellPresent.
type Numeric struct {
	Name   string
	Values *array.Float64
	States States
}

func (c *Numeric) Len() int { return c.Values.Len() }
func (c *Numeric) Valid(i int) bool { return c.Values.IsValid(i) }
func (c *Numeric) Value(i int) float64 { return c.Values.Value(i) }
func (c *Numeric) OriginalNulls() int { return c.States.OriginalNulls() }
func (c *Numeric) ConversionFailures() int { return c.States.ConversionFailures() }
func (c *Numeric) Release() { c.Values.Release() }

// CountWhere counts valid values matching pred.
func (c *Numeric) CountWhere(pred func(float64) bool) int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.Valid(i) && pred(c.Value(i)) {
			n++
		}
	}
	return n
}

// Dates is a calendar-date column backed by Arrow date32 (days since epoch).
type Dates struct {
	Name   string
	Values *array.Date32
	States States
}

func (c *Dates) Len() int { return c.Values.Len() }
func (c *Dates) Valid(i int) bool { return c.Values.IsValid(i) }
func (c *Dates) Day(i int) arrow.Date32 { return c.Values.Value(i) }
func (c *Dates) Time(i int) time.Time { return c.Values.Value(i).ToTime() }
func (c *Dates) OriginalNulls() int { return c.States.OriginalNulls() }
func (c *Dates) ConversionFailures() int { return c.States.ConversionFailures() }
func (c *Dates) Release() { c.Values.Release() }
func (c *Dates) ParsedCount() int { return c.Len() - c.Values.NullN() }

// Text is a string key column. Null cells stay null.
type Text struct {
	Name   string
	Values *array.String
}

func (c *Text) Len() int { return c.Values.Len() }
func (c *Text) Valid(i int) bool { return c.Values.IsValid(i) }
func (c *Text) Value(i int) string { return c.Values.Value(i) }
func (c *Text) Release() { c.Values.Release() }

func columnCells(ds *models.Dataset, name string) (int, error) {
	idx := ds.ColumnIndex(name)
	if idx < 0 {
		return -1, &ColumnNotFoundError{Column: name}
	}
	return idx, nil
}

// NewNumeric coerces the named column to float64.
func NewNumeric(mem memory.Allocator, ds *models.Dataset, name string) (*Numeric, error) {
	idx, err := columnCells(ds, name)
	if err != nil {
		return nil, err
	}

	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.Reserve(ds.NumRows())

	st := make(States, ds.NumRows())
	for i := range ds.Rows {
		cell := ds.Cell(i, idx)
		if cell.Missing() {
			st[i] = CellNull
			b.AppendNull()
			continue
		}
		v, ok := ParseNumber(cell.Value)
		if !ok {
			st[i] = CellInvalid
			b.AppendNull()
			continue
		}
		b.Append(v)
	}

	return &Numeric{Name: name, Values: b.NewFloat64Array(), States: st}, nil
}

// NewDates coerces the named column to calendar dates.
func NewDates(mem memory.Allocator, ds *models.Dataset, name string) (*Dates, error) {
	idx, err := columnCells(ds, name)
	if err != nil {
		return nil, err
	}

	b := array.NewDate32Builder(mem)
	defer b.Release()
	b.Reserve(ds.NumRows())

	st := make(States, ds.NumRows())
	for i := range ds.Rows {
		cell := ds.Cell(i, idx)
		if cell.Missing() {
			st[i] = CellNull
			b.AppendNull()
			continue
		}
		t, ok := ParseDate(cell.Value)
		if !ok {
			st[i] = CellInvalid
			b.AppendNull()
			continue
		}
		b.Append(arrow.Date32FromTime(t))
	}

	return &Dates{Name: name, Values: b.NewDate32Array(), States: st}, nil
}

// NewText copies the named column as strings.
func NewText(mem memory.Allocator, ds *models.Dataset, name string) (*Text, error) {
	idx, err := columnCells(ds, name)
	if err != nil {
		return nil, err
	}

	b := array.NewStringBuilder(mem)
	defer b.Release()
	b.Reserve(ds.NumRows())

	for i := range ds.Rows {
		cell := ds.Cell(i, idx)
		if cell.Missing() {
			b.AppendNull()
			continue
		}
		b.Append(cell.Value)
	}

	return &Text{Name: name, Values: b.NewStringArray()}, nil
}
