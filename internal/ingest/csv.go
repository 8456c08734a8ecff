package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"sales-insight/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV decodes a comma-separated upload. The first record is the header.
// Rows shorter than the header are padded with nulls and longer rows are
// truncated to the header width.
func ReadCSV(r io.Reader) (*models.Dataset, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := headerNames(header)

	var rows [][]models.Cell
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, toRow(record))
	}

	return models.NewDataset(columns, rows), nil
}
