package timeentry

import (
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/timeentry"
	"github.com/shopspring/decimal"
)

// instantLayout renders instants as UTC ISO-8601 with millisecond precision.
const instantLayout = "2006-01-02T15:04:05.000Z07:00"

func formatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

func formatInstantPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatInstant(*t)
	return &s
}

func decimalToFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

// mapReference falls back to the bare id when the referenced row was not joined.
func mapReference(id *string, ref *timeentry.Reference) *timeentry.ReferenceResponse {
	if id == nil {
		return nil
	}
	out := &timeentry.ReferenceResponse{ID: *id}
	if ref != nil {
		out.Name = ref.Name
		out.Email = ref.Email
	}
	return out
}

func mapTimeEntryToResponse(e timeentry.TimeEntry) timeentry.TimeEntryResponse {
	return timeentry.TimeEntryResponse{
		ID:                  e.ID,
		Employee:            *mapReference(&e.EmployeeID, e.Employee),
		Date:                formatInstant(e.Date),
		EntryTime:           formatInstant(e.EntryTime),
		ExitTime:            formatInstantPtr(e.ExitTime),
		Status:              e.Status,
		Notes:               e.Notes,
		DailyRate:           decimalToFloat(e.DailyRate),
		ExtraHours:          decimalToFloat(e.ExtraHours),
		ExtraHoursRate:      decimalToFloat(e.ExtraHoursRate),
		Total:               decimalToFloat(e.Total),
		ExtraHoursFormatted: e.ExtraHoursFormatted,
		RegularHours:        decimalToFloat(e.RegularHours),
		TotalHours:          decimalToFloat(e.TotalHours),
		ApprovedBy:          mapReference(e.ApprovedBy, e.Approver),
		ApprovedAt:          formatInstantPtr(e.ApprovedAt),
		RejectedBy:          mapReference(e.RejectedBy, e.Rejecter),
		RejectedAt:          formatInstantPtr(e.RejectedAt),
		RejectedReason:      e.RejectedReason,
		LastEditedBy:        e.LastEditedBy,
		CreatedAt:           formatInstant(e.CreatedAt),
		UpdatedAt:           formatInstant(e.UpdatedAt),
	}
}
