package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strings"
)

// rowSeparator joins flattened spreadsheet rows into one document string.
const rowSeparator = " | "

// flattenSpreadsheet exports a Google Sheet as CSV and collapses it into a
// single text blob: non-empty cells joined with a space, rows joined with
// " | ". Tabular structure is deliberately discarded; downstream consumers
// expect one blob per record, not a table.
func (r *Router) flattenSpreadsheet(ctx context.Context, fileID, name string) Result {
	data, err := r.fetcher.Export(ctx, fileID, mimeCSV)
	if err != nil {
		slog.Warn("Spreadsheet export failed.", "fileId", fileID, "fileName", name, "error", err)
		return failure(ReasonTransport, err)
	}

	text, err := flattenCSV(data)
	if err != nil {
		slog.Warn("Spreadsheet CSV payload could not be parsed.", "fileId", fileID, "fileName", name, "error", err)
		return failure(ReasonDecode, err)
	}

	return Result{Text: text, Status: StatusOK}
}

// flattenCSV turns CSV bytes into one flat string. Empty cells are dropped
// rather than preserved as placeholders, so cell position is not recoverable
// from the output.
func flattenCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable field counts

	var rows []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		var cells []string
		for _, cell := range record {
			if cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " "))
		}
	}

	return strings.Join(rows, rowSeparator), nil
}
