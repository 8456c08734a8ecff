package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sales-insight/internal/models"
)

// Colors
var (
	accent  = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	warning = lipgloss.Color("#FFAA00")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(warning)
	errorStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	keyStyle     = lipgloss.NewStyle().Width(24).Foreground(muted)
)

func renderValidation(w io.Writer, filename string, r *models.ValidationReport) {
	fmt.Fprintln(w, titleStyle.Render(filename))

	status := successStyle.Render("VALID")
	if !r.Valid {
		status = errorStyle.Render("INVALID")
	}
	fmt.Fprintf(w, "%s  quality %s\n", status, scoreStyle(r.QualityScore).Render(fmt.Sprintf("%.1f", r.QualityScore)))

	fmt.Fprintln(w)
	field(w, "Rows", fmt.Sprint(r.Stats.TotalRows))
	field(w, "Columns", fmt.Sprint(r.Stats.TotalColumns))
	field(w, "Missing values", fmt.Sprint(r.Stats.MissingValuesTotal))
	field(w, "Duplicate rows", fmt.Sprint(r.Stats.DuplicateRows))
	if dr := r.Stats.DateRange; dr != nil {
		field(w, "Date range", fmt.Sprintf("%s to %s (%d days)", dr.Min, dr.Max, dr.SpanDays))
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render("Errors"))
		for _, msg := range r.Errors {
			fmt.Fprintln(w, errorStyle.Render("  ✗ ")+msg)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render("Warnings"))
		for _, msg := range r.Warnings {
			fmt.Fprintln(w, warningStyle.Render("  ! ")+msg)
		}
	}
}

func renderAnalytics(w io.Writer, a *models.AnalyticsReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Summary"))
	field(w, "Total revenue", money(a.TotalRevenue))
	field(w, "Total quantity", number(a.TotalQuantity))
	field(w, "Total orders", fmt.Sprint(a.TotalOrders))
	field(w, "Average order value", money(a.AverageOrderValue))

	totalsSection(w, "Top products by revenue", a.TopProductsByRevenue, money)
	totalsSection(w, "Top products by quantity", a.TopProductsByQuantity, number)

	seg := a.CustomerSegments
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Customer segments"))
	field(w, "High value", fmt.Sprintf("%d customers, %s", len(seg.HighValue), money(seg.HighValue.Sum())))
	field(w, "Medium value", fmt.Sprintf("%d customers, %s", len(seg.MediumValue), money(seg.MediumValue.Sum())))
	field(w, "Low value", fmt.Sprintf("%d customers, %s", len(seg.LowValue), money(seg.LowValue.Sum())))

	totalsSection(w, "Monthly revenue", a.TimeAnalysis.MonthlyRevenue, money)
}

func totalsSection(w io.Writer, title string, t models.Totals, format func(float64) string) {
	if len(t) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render(title))
	for _, row := range t {
		field(w, row.Key, format(row.Value))
	}
}

func field(w io.Writer, key, value string) {
	fmt.Fprintln(w, "  "+keyStyle.Render(key)+value)
}

func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 90:
		return successStyle
	case score >= 70:
		return warningStyle.Bold(true)
	default:
		return errorStyle
	}
}

func money(v float64) string {
	return "$" + number(v)
}

// number formats v with two decimals and thousands separators.
func number(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

func mutedf(format string, args ...any) string {
	return mutedStyle.Render(fmt.Sprintf(format, args...))
}
