package dto

import (
	"time"

	"partsledger/internal/domain/reportmonth"
)

// --- Request DTOs ---

// CreateReportMonthRequest is the request body for opening a period.
type CreateReportMonthRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required"`
}

// UpdateReportMonthRequest moves an empty period to another year/month.
type UpdateReportMonthRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required"`
}

// ReportMonthFilter narrows period listings.
type ReportMonthFilter struct {
	Year     *int  `form:"year"`
	IsClosed *bool `form:"isClosed"`
	Limit    int   `form:"limit"`
	Offset   int   `form:"offset"`
}

// ToFilter converts query parameters to the repository filter.
func (f *ReportMonthFilter) ToFilter() reportmonth.ListFilter {
	filter := reportmonth.DefaultListFilter()
	filter.Year = f.Year
	filter.IsClosed = f.IsClosed
	if f.Limit > 0 {
		filter.Limit = f.Limit
	}
	filter.Offset = f.Offset
	return filter
}

// --- Response DTOs ---

// ReportMonthResponse is the response body for a period.
type ReportMonthResponse struct {
	ID        string     `json:"id"`
	Year      int        `json:"year"`
	Month     int        `json:"month"`
	Period    string     `json:"period"`
	IsClosed  bool       `json:"isClosed"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// FromReportMonth creates response DTO from domain entity.
func FromReportMonth(m *reportmonth.ReportMonth) *ReportMonthResponse {
	return &ReportMonthResponse{
		ID:        m.ID.String(),
		Year:      m.Year,
		Month:     m.Month,
		Period:    m.Period(),
		IsClosed:  m.IsClosed,
		ClosedAt:  m.ClosedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromReportMonths maps a slice of periods.
func FromReportMonths(months []*reportmonth.ReportMonth) []*ReportMonthResponse {
	out := make([]*ReportMonthResponse, 0, len(months))
	for _, m := range months {
		out = append(out, FromReportMonth(m))
	}
	return out
}
