package timeentry

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// TimeEntry is one attendance record: an employee's clock-in and clock-out on a calendar day.
type TimeEntry struct {
	ID         string
	EmployeeID string
	// Date is the start of the entry's calendar day in the reference timezone.
	Date      time.Time
	EntryTime time.Time
	ExitTime  *time.Time
	Status    Status
	Notes     *string

	// Caller-supplied, stored as-is
	DailyRate           *decimal.Decimal
	ExtraHours          *decimal.Decimal
	ExtraHoursRate      *decimal.Decimal
	Total               *decimal.Decimal
	ExtraHoursFormatted *string

	// Derived from EntryTime, ExitTime and ExtraHours
	RegularHours *decimal.Decimal
	TotalHours   *decimal.Decimal

	ApprovedBy     *string
	ApprovedAt     *time.Time
	RejectedBy     *string
	RejectedAt     *time.Time
	RejectedReason *string
	LastEditedBy   *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	Employee *Reference
	Approver *Reference
	Rejecter *Reference
}

// Reference is the display summary of a linked employee or user.
type Reference struct {
	ID    string
	Name  string
	Email *string
}

// HasExit reports whether the exit instant has been registered.
func (t *TimeEntry) HasExit() bool {
	return t.ExitTime != nil
}

// StatusChange is the full set of columns written by a status transition.
type StatusChange struct {
	ID             string
	Status         Status
	Notes          *string
	ApprovedBy     *string
	ApprovedAt     *time.Time
	RejectedBy     *string
	RejectedAt     *time.Time
	RejectedReason *string
}

// ListFilter selects entries for listing. Nil fields do not filter.
type ListFilter struct {
	EmployeeID *string
	From       *time.Time
	To         *time.Time
}
