package timeentry

import (
	"context"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
)

type TimeEntryRepository interface {
	// GetByID returns the entry with its employee, approver and rejecter resolved.
	GetByID(ctx context.Context, id string) (TimeEntry, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (TimeEntry, error)
	// FindByEmployeeAndWindow returns nil when no entry falls inside the window.
	FindByEmployeeAndWindow(ctx context.Context, employeeID string, window clock.Window) (*TimeEntry, error)
	// List orders by date descending, then entry time ascending.
	List(ctx context.Context, filter ListFilter) ([]TimeEntry, error)
	Create(ctx context.Context, entry TimeEntry) (TimeEntry, error)
	Update(ctx context.Context, entry TimeEntry) error
	UpdateStatus(ctx context.Context, change StatusChange) error
	Delete(ctx context.Context, id string) error
}

// EmployeeDirectory resolves employee references.
type EmployeeDirectory interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}
