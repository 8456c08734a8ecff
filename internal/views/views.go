// Package views renders the upload page and report fragments as templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"sales-insight/internal/models"
)

const (
	ReportID   = "report"
	datastarJS = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"
)

// UploadPage is the single page front end. Submitting the form posts the file
// to /sse/analyze and the response patches the #report element.
func UploadPage(maxFileSize int64, extensions []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sales Insight</title>
<script type="module" src="` + datastarJS + `"></script>
<style>
body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:960px;color:#1f2933}
table{border-collapse:collapse;width:100%;margin:.5rem 0 1.5rem}
th,td{border-bottom:1px solid #e4e7eb;padding:.35rem .6rem;text-align:left}
td.num{text-align:right;font-variant-numeric:tabular-nums}
.score{font-size:2rem;font-weight:600}
.invalid{color:#b42318}.valid{color:#067647}
.warnings li{color:#93370d}.errors li{color:#b42318}
</style>
</head>
<body>
<h1>Sales Insight</h1>
<form data-on-submit="@post('/sse/analyze', {contentType: 'form'})" enctype="multipart/form-data">
<input type="file" name="file" accept="`)
		b.WriteString(templ.EscapeString(strings.Join(extensions, ",")))
		b.WriteString(`" required>
<button type="submit">Analyze</button>
<p><small>`)
		fmt.Fprintf(&b, "Accepted: %s, up to %s.", templ.EscapeString(strings.Join(extensions, " ")), humanBytes(maxFileSize))
		b.WriteString(`</small></p>
</form>
<div id="` + ReportID + `"></div>
</body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Report renders the #report fragment for one analysis. Analytics are shown
// only when the dataset passed validation.
func Report(filename string, analysis *models.Analysis) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div id="` + ReportID + `">`)
		fmt.Fprintf(&b, "<h2>%s</h2>", templ.EscapeString(filename))
		if analysis != nil && analysis.Validation != nil {
			writeValidation(&b, analysis.Validation)
		}
		if analysis != nil && analysis.Analytics != nil {
			writeAnalytics(&b, analysis.Analytics)
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ReportError replaces the #report fragment with an error message.
func ReportError(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div id="%s"><p class="invalid">%s</p></div>`, ReportID, templ.EscapeString(message))
		return err
	})
}

func writeValidation(b *strings.Builder, v *models.ValidationReport) {
	status, class := "Valid", "valid"
	if !v.Valid {
		status, class = "Invalid", "invalid"
	}
	fmt.Fprintf(b, `<p class="%s">%s</p>`, class, status)
	fmt.Fprintf(b, `<p>Quality score <span class="score">%.1f</span></p>`, v.QualityScore)
	fmt.Fprintf(b, `<p>%d rows, %d columns, %d missing values, %d duplicate rows</p>`,
		v.Stats.TotalRows, v.Stats.TotalColumns, v.Stats.MissingValuesTotal, v.Stats.DuplicateRows)
	if dr := v.Stats.DateRange; dr != nil {
		fmt.Fprintf(b, `<p>Dates %s to %s (%d days)</p>`, dr.Min, dr.Max, dr.SpanDays)
	}
	writeList(b, "errors", v.Errors)
	writeList(b, "warnings", v.Warnings)
}

func writeList(b *strings.Builder, class string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, `<ul class="%s">`, class)
	for _, item := range items {
		fmt.Fprintf(b, "<li>%s</li>", templ.EscapeString(item))
	}
	b.WriteString("</ul>")
}

func writeAnalytics(b *strings.Builder, a *models.AnalyticsReport) {
	b.WriteString(`<table><tbody>`)
	fmt.Fprintf(b, `<tr><th>Total revenue</th><td class="num">%.2f</td></tr>`, a.TotalRevenue)
	fmt.Fprintf(b, `<tr><th>Total quantity</th><td class="num">%g</td></tr>`, a.TotalQuantity)
	fmt.Fprintf(b, `<tr><th>Orders</th><td class="num">%d</td></tr>`, a.TotalOrders)
	fmt.Fprintf(b, `<tr><th>Average order value</th><td class="num">%.2f</td></tr>`, a.AverageOrderValue)
	b.WriteString(`</tbody></table>`)

	writeTotals(b, "Top products by revenue", "Product", a.TopProductsByRevenue)
	writeTotals(b, "Top products by quantity", "Product", a.TopProductsByQuantity)
	writeTotals(b, "High value customers", "Customer", a.CustomerSegments.HighValue)
	writeTotals(b, "Medium value customers", "Customer", a.CustomerSegments.MediumValue)
	writeTotals(b, "Low value customers", "Customer", a.CustomerSegments.LowValue)
	writeTotals(b, "Monthly revenue", "Month", a.TimeAnalysis.MonthlyRevenue)
	writeTotals(b, "Daily revenue", "Date", a.TimeAnalysis.DailyRevenue)
}

func writeTotals(b *strings.Builder, title, keyHeader string, totals models.Totals) {
	if len(totals) == 0 {
		return
	}
	fmt.Fprintf(b, "<h3>%s</h3><table><thead><tr><th>%s</th><th>Value</th></tr></thead><tbody>", title, keyHeader)
	for _, t := range totals {
		fmt.Fprintf(b, `<tr><td>%s</td><td class="num">%.2f</td></tr>`, templ.EscapeString(t.Key), t.Value)
	}
	b.WriteString("</tbody></table>")
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
