package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"partsledger/internal/core/types"
)

// RowCandidate is one workbook line that parsed into usable values. The
// spare part and unit are still free-form labels at this point.
type RowCandidate struct {
	Row      int
	Name     string
	Quantity types.Quantity
	Unit     string
}

// RowError is a row-level or document-level parse diagnostic. Row is nil
// for document-level failures.
type RowError struct {
	Row     *int
	Message string
}

// ParseOutput carries everything extracted from one workbook.
type ParseOutput struct {
	Rows   []RowCandidate
	Errors []RowError
}

// ParseWorkbook reads the first sheet of an xlsx workbook. Column layout
// is name, quantity, unit; the first row is treated as a header. Malformed
// rows produce RowErrors, never a failed parse. Only a workbook that
// cannot be opened at all yields a document-level error.
func ParseWorkbook(data []byte) ParseOutput {
	var out ParseOutput

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		out.Errors = append(out.Errors, RowError{Message: "workbook cannot be opened"})
		return out
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		out.Errors = append(out.Errors, RowError{Message: "workbook has no sheets"})
		return out
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		out.Errors = append(out.Errors, RowError{Message: fmt.Sprintf("read sheet %q: %v", sheets[0], err)})
		return out
	}
	if len(rows) <= 1 {
		out.Errors = append(out.Errors, RowError{Message: "workbook has no data rows"})
		return out
	}

	for i, cells := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		name := cellAt(cells, 0)
		qtyRaw := cellAt(cells, 1)
		unit := cellAt(cells, 2)

		if name == "" && qtyRaw == "" && unit == "" {
			continue // blank row
		}
		if name == "" {
			out.Errors = append(out.Errors, rowError(rowNum, "item name is missing"))
			continue
		}
		if qtyRaw == "" {
			out.Errors = append(out.Errors, rowError(rowNum, "quantity is missing"))
			continue
		}

		qty, err := decimal.NewFromString(strings.ReplaceAll(qtyRaw, ",", "."))
		if err != nil {
			out.Errors = append(out.Errors, rowError(rowNum, fmt.Sprintf("quantity %q is not a number", qtyRaw)))
			continue
		}
		if err := types.ValidateQuantity(qty); err != nil {
			out.Errors = append(out.Errors, rowError(rowNum, fmt.Sprintf("quantity %s: %v", qty, err)))
			continue
		}

		out.Rows = append(out.Rows, RowCandidate{
			Row:      rowNum,
			Name:     name,
			Quantity: qty,
			Unit:     unit,
		})
	}
	return out
}

func cellAt(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func rowError(row int, message string) RowError {
	r := row
	return RowError{Row: &r, Message: message}
}
