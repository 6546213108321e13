package timeentry

import "context"

type TimeEntryService interface {
	// Create attributes the entry to actorID when it is non-empty.
	Create(ctx context.Context, req CreateTimeEntryRequest, actorID string) (TimeEntryResponse, error)
	RegisterExit(ctx context.Context, id string, req RegisterExitRequest, actorID string) (TimeEntryResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest, actorID string) (TimeEntryResponse, error)
	Update(ctx context.Context, id string, req UpdateTimeEntryRequest, actorID string) (TimeEntryResponse, error)
	Get(ctx context.Context, id string) (TimeEntryResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]TimeEntryResponse, error)
	ListByDateRange(ctx context.Context, filter DateRangeFilter) ([]TimeEntryResponse, error)
	Remove(ctx context.Context, id string) error
}
