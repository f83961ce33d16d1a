// Package invoice provides the purchase invoice document with its immutable
// version history. An invoice never stores parsed content directly: every
// uploaded workbook becomes a new InvoiceVersion, and the invoice tracks
// which version is active.
package invoice

import (
	"context"
	"fmt"
	"time"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/entity"
	"partsledger/internal/core/id"
	"partsledger/internal/core/types"
)

// MinNumber is the smallest valid invoice number.
const MinNumber = 1

// Invoice is the document header. Content lives in versions.
type Invoice struct {
	entity.BaseDocument

	// Number is the supplier invoice number (unique within a report month)
	Number int `db:"number" json:"number"`

	// Date is the document date; must fall inside the report month
	Date time.Time `db:"date" json:"date"`

	// CompanyID is the purchasing company
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// ReportMonthID is the owning period
	ReportMonthID id.ID `db:"report_month_id" json:"reportMonthId"`

	// ActiveVersionID points at the version whose items are current.
	// Nil only while the invoice has no versions yet.
	ActiveVersionID *id.ID `db:"active_version_id" json:"activeVersionId,omitempty"`
}

// New creates an invoice header without versions.
func New(number int, date time.Time, companyID, reportMonthID id.ID) *Invoice {
	return &Invoice{
		BaseDocument:  entity.NewBaseDocument(),
		Number:        number,
		Date:          date,
		CompanyID:     companyID,
		ReportMonthID: reportMonthID,
	}
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if inv.Number < MinNumber {
		return apperror.NewValidation("invoice number must be positive").
			WithDetail("field", "number").
			WithDetail("value", inv.Number)
	}
	if inv.Date.IsZero() {
		return apperror.NewValidation("invoice date is required").
			WithDetail("field", "date")
	}
	if id.IsNil(inv.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "company_id")
	}
	if id.IsNil(inv.ReportMonthID) {
		return apperror.NewValidation("report month is required").
			WithDetail("field", "report_month_id")
	}
	return nil
}

// IsActive reports whether versionID is the invoice's active version.
func (inv *Invoice) IsActive(versionID id.ID) bool {
	return inv.ActiveVersionID != nil && *inv.ActiveVersionID == versionID
}

func (inv *Invoice) String() string {
	return fmt.Sprintf("invoice #%d of %s", inv.Number, inv.Date.Format("2006-01-02"))
}

// Version is one immutable upload of the invoice workbook. Version numbers
// start at 1 and grow by exactly 1 per upload, with no gaps, ever.
type Version struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// InvoiceID is the owning invoice
	InvoiceID id.ID `db:"invoice_id" json:"invoiceId"`

	// Number is the sequential version number within the invoice (1-based)
	Number int `db:"version" json:"version"`

	// FileRef addresses the stored workbook in the blob store
	FileRef string `db:"file_ref" json:"fileRef"`

	// FileName is the original upload name, kept for download headers
	FileName string `db:"file_name" json:"fileName"`

	// CreatedAt is the upload timestamp
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewVersion creates a version record. The number is assigned by the
// service under the invoice row lock, never by the caller.
func NewVersion(invoiceID id.ID, number int, fileRef, fileName string) *Version {
	return &Version{
		ID:        id.New(),
		InvoiceID: invoiceID,
		Number:    number,
		FileRef:   fileRef,
		FileName:  fileName,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks version invariants.
func (v *Version) Validate(ctx context.Context) error {
	if id.IsNil(v.InvoiceID) {
		return apperror.NewValidation("invoice reference is required").
			WithDetail("field", "invoice_id")
	}
	if v.Number < 1 {
		return apperror.NewValidation("version number must be positive").
			WithDetail("field", "version").
			WithDetail("value", v.Number)
	}
	if v.FileRef == "" {
		return apperror.NewValidation("source file is required").
			WithDetail("field", "file_ref")
	}
	return nil
}

// Item is one parsed row of a version. Items are written once when parse
// results are attached and never mutated afterwards.
type Item struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// VersionID is the owning version
	VersionID id.ID `db:"version_id" json:"versionId"`

	// SparePartID is the resolved spare part
	SparePartID id.ID `db:"spare_part_id" json:"sparePartId"`

	// Name is the raw part label as it appeared in the workbook
	Name string `db:"name" json:"name"`

	// Quantity is the purchased quantity (scale 2, at least 0.01)
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitID is the resolved measurement unit; nil when the workbook
	// label matched no known unit
	UnitID *id.ID `db:"unit_id" json:"unitId,omitempty"`
}

// NewItem creates an invoice item.
func NewItem(versionID, sparePartID id.ID, name string, quantity types.Quantity, unitID *id.ID) *Item {
	return &Item{
		ID:          id.New(),
		VersionID:   versionID,
		SparePartID: sparePartID,
		Name:        name,
		Quantity:    quantity,
		UnitID:      unitID,
	}
}

// UnitUnknown reports whether the unit could not be resolved. Derived from
// UnitID so the two can never disagree.
func (i *Item) UnitUnknown() bool {
	return i.UnitID == nil
}

// Validate checks item invariants.
func (i *Item) Validate(ctx context.Context) error {
	if id.IsNil(i.VersionID) {
		return apperror.NewValidation("version reference is required").
			WithDetail("field", "version_id")
	}
	if id.IsNil(i.SparePartID) {
		return apperror.NewValidation("spare part is required").
			WithDetail("field", "spare_part_id")
	}
	if err := types.ValidateQuantity(i.Quantity); err != nil {
		return err
	}
	return nil
}

// ParsingError records one diagnostic produced while parsing a version's
// workbook. Stored next to the items so operators can see why rows were
// skipped.
type ParsingError struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// VersionID is the owning version
	VersionID id.ID `db:"version_id" json:"versionId"`

	// Message is the diagnostic text, truncated to fit storage
	Message string `db:"message" json:"message"`

	// Row is the 1-based workbook row, when known
	Row *int `db:"row_num" json:"row,omitempty"`

	// CreatedAt is the record timestamp
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewParsingError creates a parsing error record, truncating the message
// to entity.MaxErrorMessageLength.
func NewParsingError(versionID id.ID, message string, row *int) *ParsingError {
	if len(message) > entity.MaxErrorMessageLength {
		message = truncateUTF8(message, entity.MaxErrorMessageLength)
	}
	return &ParsingError{
		ID:        id.New(),
		VersionID: versionID,
		Message:   message,
		Row:       row,
		CreatedAt: time.Now().UTC(),
	}
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
