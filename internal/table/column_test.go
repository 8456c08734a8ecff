package table

import (
	"testing"
	"time"

	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-insight/internal/models"
)

func singleColumn(name string, cells ...models.Cell) *models.Dataset {
	rows := make([][]models.Cell, len(cells))
	for i, c := range cells {
		rows[i] = []models.Cell{c}
	}
	return models.NewDataset([]string{name}, rows)
}

func TestNewNumeric_SeparatesNullsFromFailures(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ds := singleColumn("quantity", models.NullCell, models.Text("abc"), models.Text("5"))

	col, err := NewNumeric(mem, ds, "quantity")
	require.NoError(t, err)
	defer col.Release()

	assert.Equal(t, 3, col.Len())
	assert.Equal(t, 1, col.OriginalNulls())
	assert.Equal(t, 1, col.ConversionFailures())
	assert.False(t, col.Valid(0))
	assert.False(t, col.Valid(1))
	require.True(t, col.Valid(2))
	assert.Equal(t, 5.0, col.Value(2))
	assert.Equal(t, []CellState{CellNull, CellInvalid, CellPresent}, []CellState(col.States))
}

func TestNewNumeric_BlankCellsAreNulls(t *testing.T) {
	ds := singleColumn("price", models.Text(""), models.Text("  \t"), models.Text(" 7 "))

	col, err := NewNumeric(memory.NewGoAllocator(), ds, "price")
	require.NoError(t, err)
	defer col.Release()

	assert.Equal(t, 2, col.OriginalNulls())
	assert.Equal(t, 0, col.ConversionFailures())
	require.True(t, col.Valid(2))
	assert.Equal(t, 7.0, col.Value(2))
}

func TestNewNumeric_MissingColumn(t *testing.T) {
	ds := singleColumn("price", models.Text("1"))

	_, err := NewNumeric(memory.NewGoAllocator(), ds, "quantity")

	var notFound *ColumnNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "quantity", notFound.Column)
}

func TestNewNumeric_CountWhere(t *testing.T) {
	ds := singleColumn("quantity",
		models.Text("0"), models.Text("-2"), models.Text("3"), models.NullCell, models.Text("x"))

	col, err := NewNumeric(memory.NewGoAllocator(), ds, "quantity")
	require.NoError(t, err)
	defer col.Release()

	assert.Equal(t, 2, col.CountWhere(func(v float64) bool { return v <= 0 }))
	assert.Equal(t, 1, col.CountWhere(func(v float64) bool { return v < 0 }))
}

func TestNewDates(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ds := singleColumn("date",
		models.Text("2024-01-05"), models.NullCell, models.Text("not a date"), models.Text("2024-01-01 13:45:00"))

	col, err := NewDates(mem, ds, "date")
	require.NoError(t, err)
	defer col.Release()

	assert.Equal(t, 1, col.OriginalNulls())
	assert.Equal(t, 1, col.ConversionFailures())
	assert.Equal(t, 2, col.ParsedCount())
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), col.Time(0).UTC())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), col.Time(3).UTC())
	assert.Equal(t, int(col.Day(0)-col.Day(3)), 4)
}

func TestNewText(t *testing.T) {
	ds := singleColumn("product", models.Text("A"), models.NullCell)

	col, err := NewText(memory.NewGoAllocator(), ds, "product")
	require.NoError(t, err)
	defer col.Release()

	assert.True(t, col.Valid(0))
	assert.Equal(t, "A", col.Value(0))
	assert.False(t, col.Valid(1))
}

func TestNewText_BlankCellsAreNull(t *testing.T) {
	ds := singleColumn("customer", models.Text(""), models.Text("   "), models.Text(" X "))

	col, err := NewText(memory.NewGoAllocator(), ds, "customer")
	require.NoError(t, err)
	defer col.Release()

	assert.False(t, col.Valid(0))
	assert.False(t, col.Valid(1))
	require.True(t, col.Valid(2))
	assert.Equal(t, " X ", col.Value(2))
}

func TestNewDates_BlankCellsAreNulls(t *testing.T) {
	ds := singleColumn("date", models.Text(" "), models.Text("2024-03-01"))

	col, err := NewDates(memory.NewGoAllocator(), ds, "date")
	require.NoError(t, err)
	defer col.Release()

	assert.Equal(t, 1, col.OriginalNulls())
	assert.Equal(t, 0, col.ConversionFailures())
	assert.Equal(t, 1, col.ParsedCount())
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"5", 5, true},
		{" 2.5 ", 2.5, true},
		{"-3", -3, true},
		{"1e3", 1000, true},
		{"abc", 0, false},
		{"", 0, false},
		{"inf", 0, false},
		{"NaN", 0, false},
		{"0x10", 0, false},
		{"1_000", 0, false},
		{"12,5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2024-03-09",
		"2024-03-09 10:11:12",
		"2024-03-09T10:11:12Z",
		"2024/03/09",
		"03/09/2024",
		"20240309",
		"Mar 9, 2024",
	} {
		t.Run(in, func(t *testing.T) {
			got, ok := ParseDate(in)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}

	for _, in := range []string{"", "yesterday", "2024-13-40", "09/03/24x"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, "ParseDate(%q) should fail", in)
	}
}

func TestFromDataset(t *testing.T) {
	ds := models.NewDataset(
		[]string{"product", "quantity", "price", "customer"},
		[][]models.Cell{
			{models.Text("A"), models.Text("2"), models.Text("10"), models.Text("X")},
			{models.Text("B"), models.Text("oops"), models.Text("5"), models.Text("Y")},
		},
	)

	tbl, err := FromDataset(nil, ds)
	require.NoError(t, err)
	defer tbl.Release()

	assert.Nil(t, tbl.Date, "date column should be absent")
	assert.Equal(t, 2, tbl.Len())

	rev, ok := tbl.Revenue(0)
	require.True(t, ok)
	assert.Equal(t, 20.0, rev)

	_, ok = tbl.Revenue(1)
	assert.False(t, ok)
}

func TestFromDataset_MissingRequired(t *testing.T) {
	ds := models.NewDataset([]string{"product"}, nil)

	_, err := FromDataset(nil, ds)
	assert.Error(t, err)
}
