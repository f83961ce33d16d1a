// Package ingest validates and parses uploaded invoice workbooks and
// resolves parsed rows against the catalogs.
package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"partsledger/internal/core/apperror"
)

// MaxFileSize bounds an uploaded workbook.
const MaxFileSize = 5 * 1024 * 1024

var allowedMIMETypes = map[string]struct{}{
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	// Some producers label xlsx as a plain zip.
	"application/zip": {},
}

// ValidateWorkbook checks an uploaded file before it is stored: extension,
// size, sniffed MIME type and, for xlsx, that the archive actually opens.
// Legacy xls files pass on extension and MIME checks alone.
func ValidateWorkbook(data []byte, filename string) error {
	if len(data) == 0 {
		return apperror.NewValidation("uploaded file is empty")
	}
	if len(data) > MaxFileSize {
		return apperror.NewValidation(
			fmt.Sprintf("file is too large (%d bytes), maximum is %d", len(data), MaxFileSize)).
			WithDetail("size", len(data))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "xlsx", "xls":
	case "":
		return apperror.NewValidation("file must have an extension").
			WithDetail("filename", filename)
	default:
		return apperror.NewValidation("unsupported file extension").
			WithDetail("extension", ext)
	}

	mime := mimetype.Detect(data).String()
	if _, ok := allowedMIMETypes[mime]; !ok {
		return apperror.NewValidation("invalid file type").
			WithDetail("mime", mime)
	}

	if ext == "xlsx" {
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return apperror.NewValidation("the file is not a valid spreadsheet").WithCause(err)
		}
		f.Close()
	}
	return nil
}
