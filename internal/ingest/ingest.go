// Package ingest decodes uploaded CSV and XLSX files into datasets.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sales-insight/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("ingest: unsupported format")
	ErrEmptyFile         = errors.New("ingest: file has no header row")
	ErrNoSheets          = errors.New("ingest: workbook has no sheets")
)

type Format uint8

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// FormatOf picks the decoder for a file name by its extension.
func FormatOf(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatUnknown
	}
}

// Read decodes r in the given format.
func Read(r io.Reader, format Format) (*models.Dataset, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ReadFile decodes the file at path, choosing the format from its extension.
func ReadFile(path string) (*models.Dataset, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, format)
}

var nullTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNullToken reports whether a raw value stands for a missing cell.
func IsNullToken(s string) bool {
	_, ok := nullTokens[strings.TrimSpace(s)]
	return ok
}

func toCell(s string) models.Cell {
	if IsNullToken(s) {
		return models.NullCell
	}
	return models.Text(s)
}

func toRow(record []string) []models.Cell {
	row := make([]models.Cell, len(record))
	for i, v := range record {
		row[i] = toCell(v)
	}
	return row
}

// headerNames trims column names, names blank ones by position and suffixes
// repeats with .1, .2 and so on.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	repeats := make(map[string]int)
	for i, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		candidate := name
		for used[candidate] {
			repeats[name]++
			candidate = name + "." + strconv.Itoa(repeats[name])
		}
		used[candidate] = true
		names[i] = candidate
	}
	return names
}
