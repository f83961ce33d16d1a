// Package writeoff provides the write-off fact register. A fact records
// that a quantity of a spare part was consumed by a piece of equipment.
// Facts denormalize equipment attributes at write-off time: the register
// is history, and history does not change when catalogs are edited.
package writeoff

import (
	"context"
	"time"

	"partsledger/internal/core/apperror"
	"partsledger/internal/core/id"
	"partsledger/internal/core/types"
)

// Source tells where a fact came from.
type Source string

const (
	// SourceInvoice marks a fact derived from an invoice item
	SourceInvoice Source = "invoice"

	// SourceManual marks a fact entered by hand
	SourceManual Source = "manual"
)

// Status is the fact lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
)

// EquipmentSnapshot captures equipment attributes at write-off time.
type EquipmentSnapshot struct {
	// EquipmentName as it was when the fact was recorded
	EquipmentName string `db:"equipment_name" json:"equipmentName"`

	// InventoryNumber of the equipment at that time
	InventoryNumber string `db:"equipment_inventory_number" json:"equipmentInventoryNumber"`

	// SequenceNumber of the equipment at that time
	SequenceNumber int `db:"equipment_sequence_number" json:"equipmentSequenceNumber"`

	// CompanyName of the owning company at that time
	CompanyName string `db:"company_name" json:"companyName"`
}

// Validate checks snapshot completeness.
func (s EquipmentSnapshot) Validate() error {
	if s.EquipmentName == "" {
		return apperror.NewValidation("equipment name is required").
			WithDetail("field", "equipment_name")
	}
	if s.InventoryNumber == "" {
		return apperror.NewValidation("equipment inventory number is required").
			WithDetail("field", "equipment_inventory_number")
	}
	if s.SequenceNumber < 1 {
		return apperror.NewValidation("equipment sequence number must be positive").
			WithDetail("field", "equipment_sequence_number")
	}
	if s.CompanyName == "" {
		return apperror.NewValidation("company name is required").
			WithDetail("field", "company_name")
	}
	return nil
}

// Fact is one write-off record. Everything except Status is immutable
// after creation; corrections are made by canceling and recording a new
// fact, never by editing.
type Fact struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// SparePartID is the consumed part
	SparePartID id.ID `db:"spare_part_id" json:"sparePartId"`

	// Quantity consumed (scale 2, at least 0.01)
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// FactDate is the business date of the write-off
	FactDate time.Time `db:"fact_date" json:"factDate"`

	// ReportMonthID is the owning period
	ReportMonthID id.ID `db:"report_month_id" json:"reportMonthId"`

	EquipmentSnapshot

	// InvoiceItemID links the source item; set exactly when Source is
	// SourceInvoice
	InvoiceItemID *id.ID `db:"invoice_item_id" json:"invoiceItemId,omitempty"`

	// Source of the record
	Source Source `db:"source" json:"source"`

	// Status of the record
	Status Status `db:"status" json:"status"`

	// CreatedAt is the record timestamp
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewFact creates an active write-off fact.
func NewFact(sparePartID id.ID, quantity types.Quantity, factDate time.Time, reportMonthID id.ID,
	snapshot EquipmentSnapshot, source Source, invoiceItemID *id.ID) *Fact {
	return &Fact{
		ID:                id.New(),
		SparePartID:       sparePartID,
		Quantity:          quantity,
		FactDate:          factDate,
		ReportMonthID:     reportMonthID,
		EquipmentSnapshot: snapshot,
		InvoiceItemID:     invoiceItemID,
		Source:            source,
		Status:            StatusActive,
		CreatedAt:         time.Now().UTC(),
	}
}

// Validate checks fact invariants, including the source linkage rule:
// invoice-sourced facts must reference an invoice item, manual facts
// must not.
func (f *Fact) Validate(ctx context.Context) error {
	if id.IsNil(f.SparePartID) {
		return apperror.NewValidation("spare part is required").
			WithDetail("field", "spare_part_id")
	}
	if err := types.ValidateQuantity(f.Quantity); err != nil {
		return err
	}
	if f.FactDate.IsZero() {
		return apperror.NewValidation("fact date is required").
			WithDetail("field", "fact_date")
	}
	if id.IsNil(f.ReportMonthID) {
		return apperror.NewValidation("report month is required").
			WithDetail("field", "report_month_id")
	}
	if err := f.EquipmentSnapshot.Validate(); err != nil {
		return err
	}

	switch f.Source {
	case SourceInvoice:
		if f.InvoiceItemID == nil {
			return apperror.NewValidation("invoice-sourced fact must reference an invoice item").
				WithDetail("field", "invoice_item_id")
		}
	case SourceManual:
		if f.InvoiceItemID != nil {
			return apperror.NewValidation("manual fact must not reference an invoice item").
				WithDetail("field", "invoice_item_id")
		}
	default:
		return apperror.NewValidation("invalid source").
			WithDetail("field", "source").
			WithDetail("value", string(f.Source))
	}

	if f.Status != StatusActive && f.Status != StatusCanceled {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(f.Status))
	}
	return nil
}

// Cancel flips the fact to canceled. Idempotent; reports whether the call
// changed anything.
func (f *Fact) Cancel() bool {
	if f.Status == StatusCanceled {
		return false
	}
	f.Status = StatusCanceled
	return true
}

// CloneAsManual produces a new manual fact carrying this fact's part and
// report month. Used to re-record a canceled invoice-sourced fact by hand;
// the original is untouched.
func (f *Fact) CloneAsManual(quantity types.Quantity, factDate time.Time, snapshot EquipmentSnapshot) *Fact {
	return NewFact(f.SparePartID, quantity, factDate, f.ReportMonthID, snapshot, SourceManual, nil)
}
