package timeentry

import (
	"strconv"
	"strings"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/nullable"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Numeric is a caller-supplied number sent either as a JSON number or a numeric string.
// Decoding never fails; coercion happens in Decimal.
type Numeric string

func (n *Numeric) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	*n = Numeric(strings.TrimSpace(s))
	return nil
}

func (n Numeric) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(string(n))
}

type CreateTimeEntryRequest struct {
	EmployeeID          string   `json:"employee"`
	Date                string   `json:"date"`
	EntryTime           string   `json:"entryTime"`
	ExitTime            *string  `json:"exitTime,omitempty"`
	Notes               *string  `json:"notes,omitempty"`
	Status              *Status  `json:"status,omitempty"`
	DailyRate           *Numeric `json:"dailyRate,omitempty"`
	ExtraHours          *Numeric `json:"extraHours,omitempty"`
	ExtraHoursRate      *Numeric `json:"extraHoursRate,omitempty"`
	Total               *Numeric `json:"total,omitempty"`
	ExtraHoursFormatted *string  `json:"extraHoursFormatted,omitempty"`
}

func (r *CreateTimeEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee",
			Message: "employee is required",
		})
	}
	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	}
	if validator.IsEmpty(r.EntryTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "entryTime",
			Message: "entryTime is required",
		})
	}
	if r.Status != nil && !r.Status.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of pending, approved, rejected",
		})
	}
	if r.Notes != nil && len(*r.Notes) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 2000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RegisterExitRequest struct {
	ExitTime string `json:"exitTime"`
}

func (r *RegisterExitRequest) Validate() error {
	if validator.IsEmpty(r.ExitTime) {
		return validator.ValidationErrors{{
			Field:   "exitTime",
			Message: "exitTime is required",
		}}
	}
	return nil
}

type UpdateStatusRequest struct {
	Status Status  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
	Reason *string `json:"reason,omitempty"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != StatusApproved && r.Status != StatusRejected {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be either approved or rejected",
		})
	}
	if r.Reason != nil && r.Status == StatusApproved {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is only accepted when rejecting",
		})
	}
	if r.Notes != nil && len(*r.Notes) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 2000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateTimeEntryRequest is a partial update. Absent fields are left untouched;
// fields sent as null are cleared.
type UpdateTimeEntryRequest struct {
	EmployeeID          *string                 `json:"employee,omitempty"`
	Date                *string                 `json:"date,omitempty"`
	EntryTime           nullable.Field[string]  `json:"entryTime"`
	ExitTime            nullable.Field[string]  `json:"exitTime"`
	Notes               nullable.Field[string]  `json:"notes"`
	DailyRate           nullable.Field[Numeric] `json:"dailyRate"`
	ExtraHours          nullable.Field[Numeric] `json:"extraHours"`
	ExtraHoursRate      nullable.Field[Numeric] `json:"extraHoursRate"`
	Total               nullable.Field[Numeric] `json:"total"`
	ExtraHoursFormatted nullable.Field[string]  `json:"extraHoursFormatted"`
}

func (r *UpdateTimeEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "employee",
			Message: "employee cannot be changed",
		})
	}
	if r.Date != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date cannot be changed",
		})
	}
	if r.EntryTime.IsNull() {
		errs = append(errs, validator.ValidationError{
			Field:   "entryTime",
			Message: "entryTime cannot be removed",
		})
	}
	if r.Notes.Value != nil && len(*r.Notes.Value) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 2000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TouchesHours reports whether the update changes an input of the derived hours.
func (r *UpdateTimeEntryRequest) TouchesHours() bool {
	return r.EntryTime.Set || r.ExitTime.Set || r.ExtraHours.Set
}

type DateRangeFilter struct {
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	EmployeeID *string `json:"employeeId,omitempty"`
}

func (f *DateRangeFilter) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(f.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "startDate",
			Message: "startDate must be a date in YYYY-MM-DD format",
		})
	}
	if _, ok := validator.IsValidDate(f.EndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "endDate",
			Message: "endDate must be a date in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ReferenceResponse is a nested employee or user summary.
type ReferenceResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type TimeEntryResponse struct {
	ID                  string             `json:"id"`
	Employee            ReferenceResponse  `json:"employee"`
	Date                string             `json:"date"`
	EntryTime           string             `json:"entryTime"`
	ExitTime            *string            `json:"exitTime,omitempty"`
	Status              Status             `json:"status"`
	Notes               *string            `json:"notes,omitempty"`
	DailyRate           *float64           `json:"dailyRate,omitempty"`
	ExtraHours          *float64           `json:"extraHours,omitempty"`
	ExtraHoursRate      *float64           `json:"extraHoursRate,omitempty"`
	Total               *float64           `json:"total,omitempty"`
	ExtraHoursFormatted *string            `json:"extraHoursFormatted,omitempty"`
	RegularHours        *float64           `json:"regularHours,omitempty"`
	TotalHours          *float64           `json:"totalHours,omitempty"`
	ApprovedBy          *ReferenceResponse `json:"approvedBy,omitempty"`
	ApprovedAt          *string            `json:"approvedAt,omitempty"`
	RejectedBy          *ReferenceResponse `json:"rejectedBy,omitempty"`
	RejectedAt          *string            `json:"rejectedAt,omitempty"`
	RejectedReason      *string            `json:"rejectedReason,omitempty"`
	LastEditedBy        *string            `json:"lastEditedBy,omitempty"`
	CreatedAt           string             `json:"createdAt"`
	UpdatedAt           string             `json:"updatedAt"`
}
