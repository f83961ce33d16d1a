package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseWorkbook(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Name", "Quantity", "Unit"},
		{"Oil filter", "2", "pcs"},
		{"Hydraulic oil", "12,5", "l"},
		{"Brake pad", "1.25", ""},
	})

	out := ParseWorkbook(data)
	require.Empty(t, out.Errors)
	require.Len(t, out.Rows, 3)

	assert.Equal(t, "Oil filter", out.Rows[0].Name)
	assert.Equal(t, "2", out.Rows[0].Quantity.String())
	assert.Equal(t, "pcs", out.Rows[0].Unit)
	assert.Equal(t, 2, out.Rows[0].Row)

	// Comma decimal separators are accepted.
	assert.Equal(t, "12.5", out.Rows[1].Quantity.String())
	assert.Equal(t, "", out.Rows[2].Unit)
}

func TestParseWorkbookBadRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Name", "Quantity", "Unit"},
		{"", "3", "pcs"},
		{"Gasket", "", "pcs"},
		{"Bolt", "abc", "pcs"},
		{"Washer", "0.001", "pcs"},
		{"Spring", "1.5", "pcs"},
	})

	out := ParseWorkbook(data)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "Spring", out.Rows[0].Name)

	require.Len(t, out.Errors, 4)
	for _, e := range out.Errors {
		require.NotNil(t, e.Row)
	}
	assert.Equal(t, 2, *out.Errors[0].Row)
	assert.Contains(t, out.Errors[0].Message, "name is missing")
	assert.Contains(t, out.Errors[1].Message, "quantity is missing")
	assert.Contains(t, out.Errors[2].Message, "not a number")
}

func TestParseWorkbookSkipsBlankRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Name", "Quantity", "Unit"},
		{"", "", ""},
		{"Valve", "1", "pcs"},
	})

	out := ParseWorkbook(data)
	assert.Empty(t, out.Errors)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, 3, out.Rows[0].Row)
}

func TestParseWorkbookEmpty(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Name", "Quantity", "Unit"},
	})

	out := ParseWorkbook(data)
	assert.Empty(t, out.Rows)
	require.Len(t, out.Errors, 1)
	assert.Nil(t, out.Errors[0].Row)
	assert.Contains(t, out.Errors[0].Message, "no data rows")
}

func TestParseWorkbookGarbage(t *testing.T) {
	out := ParseWorkbook([]byte("not a workbook"))
	assert.Empty(t, out.Rows)
	require.Len(t, out.Errors, 1)
	assert.Nil(t, out.Errors[0].Row)
}

func TestValidateWorkbook(t *testing.T) {
	valid := buildWorkbook(t, [][]any{
		{"Name", "Quantity", "Unit"},
		{"Oil filter", "2", "pcs"},
	})

	tests := []struct {
		name     string
		data     []byte
		filename string
		wantErr  string
	}{
		{"valid xlsx", valid, "invoice.xlsx", ""},
		{"empty file", nil, "invoice.xlsx", "empty"},
		{"no extension", valid, "invoice", "extension"},
		{"bad extension", valid, "invoice.pdf", "unsupported"},
		{"corrupt content", []byte("garbage bytes here"), "invoice.xlsx", "invalid file type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkbook(tt.data, tt.filename)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateWorkbookTooLarge(t *testing.T) {
	big := make([]byte, MaxFileSize+1)
	err := ValidateWorkbook(big, "invoice.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
