package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"sales-insight/internal/models"
	"sales-insight/internal/table"
)

const dateLayout = "2006-01-02"

// Validator checks a sales dataset for structural and per-field integrity.
// It never mutates the dataset; all coercion happens on typed copies.
type Validator struct {
	mem    memory.Allocator
	checks []fieldCheck
}

// fieldCheck is one typed-column check. An unexpected failure in a required
// check is reported as an error; in any other check it becomes a warning.
type fieldCheck struct {
	column   string
	required bool
	run      func(*models.ValidationReport, *models.Dataset) error
}

func NewValidator() *Validator {
	v := &Validator{mem: memory.NewGoAllocator()}
	v.checks = []fieldCheck{
		{column: models.ColumnQuantity, required: true, run: v.checkQuantity},
		{column: models.ColumnPrice, required: true, run: v.checkPrice},
		{column: models.ColumnDate, run: v.checkDates},
	}
	return v
}

// Validate runs every check in order and returns a scored report.
// Missing required columns and an empty dataset short-circuit with one error.
func (v *Validator) Validate(ds *models.Dataset) *models.ValidationReport {
	report := models.NewValidationReport()
	report.Stats.TotalRows = ds.NumRows()
	report.Stats.TotalColumns = ds.NumColumns()
	report.Stats.Columns = append(report.Stats.Columns, ds.Columns...)

	if missing := ds.MissingColumns(models.RequiredColumns); len(missing) > 0 {
		report.AddError("Missing required columns: " + strings.Join(missing, ", "))
		return finish(report)
	}

	if ds.NumRows() == 0 {
		report.AddError("Dataset is empty")
		return finish(report)
	}

	total := ds.NumRows()

	dupes := countDuplicateRows(ds)
	report.Stats.DuplicateRows = dupes
	if dupes > 0 {
		report.AddWarning(fmt.Sprintf("Found %d duplicate rows (%s)", dupes, percent(dupes, total)))
	}

	for _, col := range models.RequiredColumns {
		nulls := ds.NullCount(col)
		report.Stats.MissingValuesTotal += nulls
		if nulls > 0 {
			report.AddWarning(fmt.Sprintf("Column '%s' has %d missing values (%s)", col, nulls, percent(nulls, total)))
		}
	}

	for _, c := range v.checks {
		runCheck(report, ds, c)
	}

	return finish(report)
}

func runCheck(report *models.ValidationReport, ds *models.Dataset, c fieldCheck) {
	err := guard(func() error { return c.run(report, ds) })
	if err == nil {
		return
	}
	if c.required {
		report.AddError(fmt.Sprintf("Error validating %s: %v", c.column, err))
		return
	}
	report.AddWarning(fmt.Sprintf("%s validation warning: %v", strings.ToUpper(c.column[:1])+c.column[1:], err))
}

func finish(report *models.ValidationReport) *models.ValidationReport {
	report.Valid = len(report.Errors) == 0
	report.QualityScore = QualityScore(
		report.Stats.TotalRows,
		len(report.Errors),
		len(report.Warnings),
		report.Stats.MissingValuesTotal,
		report.Stats.DuplicateRows,
	)
	return report
}

func (v *Validator) checkQuantity(report *models.ValidationReport, ds *models.Dataset) error {
	col, err := table.NewNumeric(v.mem, ds, models.ColumnQuantity)
	if err != nil {
		return err
	}
	defer col.Release()

	reportCoercion(report, col.Name, "converted to numeric", col.ConversionFailures(), col.OriginalNulls(), col.Len())

	if n := col.CountWhere(func(q float64) bool { return q <= 0 }); n > 0 {
		report.AddWarning(fmt.Sprintf("Column '%s' has %d zero or negative values (%s)", col.Name, n, percent(n, col.Len())))
	}
	return nil
}

func (v *Validator) checkPrice(report *models.ValidationReport, ds *models.Dataset) error {
	col, err := table.NewNumeric(v.mem, ds, models.ColumnPrice)
	if err != nil {
		return err
	}
	defer col.Release()

	reportCoercion(report, col.Name, "converted to numeric", col.ConversionFailures(), col.OriginalNulls(), col.Len())

	if n := col.CountWhere(func(p float64) bool { return p < 0 }); n > 0 {
		report.AddWarning(fmt.Sprintf("Column '%s' has %d negative values (%s)", col.Name, n, percent(n, col.Len())))
	}
	return nil
}

func (v *Validator) checkDates(report *models.ValidationReport, ds *models.Dataset) error {
	col, err := table.NewDates(v.mem, ds, models.ColumnDate)
	if err != nil {
		return err
	}
	defer col.Release()

	reportCoercion(report, col.Name, "parsed as dates", col.ConversionFailures(), col.OriginalNulls(), col.Len())

	if col.ParsedCount() == 0 {
		return nil
	}

	first := true
	var lo, hi int
	for i := 0; i < col.Len(); i++ {
		if !col.Valid(i) {
			continue
		}
		d := int(col.Day(i))
		if first || d < lo {
			lo = d
		}
		if first || d > hi {
			hi = d
		}
		first = false
	}

	report.Stats.DateRange = &models.DateRange{
		Min:      dayString(lo),
		Max:      dayString(hi),
		SpanDays: hi - lo,
	}
	return nil
}

// reportCoercion emits the two-tier warnings for a typed column: values that
// failed coercion, then values that were null to begin with.
func reportCoercion(report *models.ValidationReport, column, verb string, failures, nulls, total int) {
	if failures > 0 {
		report.AddWarning(fmt.Sprintf("Column '%s' has %d values that could not be %s (%s)",
			column, failures, verb, percent(failures, total)))
	}
	if nulls > 0 {
		report.AddWarning(fmt.Sprintf("Column '%s' has %d null values (%s)", column, nulls, percent(nulls, total)))
	}
}

// countDuplicateRows counts rows identical, across every column, to an earlier row.
func countDuplicateRows(ds *models.Dataset) int {
	seen := make(map[string]struct{}, ds.NumRows())
	dupes := 0

	var sb strings.Builder
	for _, row := range ds.Rows {
		sb.Reset()
		for _, cell := range row {
			if cell.Null {
				sb.WriteString("-|")
				continue
			}
			sb.WriteString(strconv.Itoa(len(cell.Value)))
			sb.WriteByte(':')
			sb.WriteString(cell.Value)
			sb.WriteByte('|')
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			dupes++
			continue
		}
		seen[key] = struct{}{}
	}
	return dupes
}

// guard runs fn and converts a panic into an error so one failing check
// cannot abort the report.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn()
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}

func dayString(days int) string {
	return arrow.Date32(days).ToTime().Format(dateLayout)
}
