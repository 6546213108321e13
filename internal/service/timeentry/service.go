package timeentry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type TimeEntryServiceImpl struct {
	timeentry.TimeEntryRepository
	timeentry.EmployeeDirectory
	tx    database.Transactor
	clock clock.Clock
}

// Create implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Create(ctx context.Context, req timeentry.CreateTimeEntryRequest, actorID string) (timeentry.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, asInvalidInput(err)
	}

	loc := s.clock.Location()
	var errs validator.ValidationErrors

	employeeID, ok := canonicalID(req.EmployeeID)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "employee", Message: "employee must be a valid id"})
	}
	date, err := clock.ParseDate(req.Date, loc)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be a valid date"})
	}
	entryTime, err := clock.ParseInstant(req.EntryTime, loc)
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "entryTime", Message: "entryTime must be a valid ISO-8601 instant"})
	}
	var exitTime *time.Time
	if req.ExitTime != nil {
		t, err := clock.ParseInstant(*req.ExitTime, loc)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "exitTime", Message: "exitTime must be a valid ISO-8601 instant"})
		} else {
			exitTime = &t
		}
	}
	dailyRate := coerceNumeric("dailyRate", req.DailyRate, &errs)
	extraHours := coerceNumeric("extraHours", req.ExtraHours, &errs)
	extraHoursRate := coerceNumeric("extraHoursRate", req.ExtraHoursRate, &errs)
	total := coerceNumeric("total", req.Total, &errs)

	if len(errs) > 0 {
		return timeentry.TimeEntryResponse{}, timeentry.InvalidInput(errs)
	}
	if exitTime != nil && exitTime.Before(entryTime) {
		return timeentry.TimeEntryResponse{}, timeentry.InvalidField("exitTime", "exitTime must not be before entryTime")
	}

	var actor *string
	if strings.TrimSpace(actorID) != "" {
		a, ok := canonicalID(actorID)
		if !ok {
			return timeentry.TimeEntryResponse{}, timeentry.ErrUnresolved
		}
		actor = &a
	}

	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	window := clock.DayWindow(date, loc)
	existing, err := s.TimeEntryRepository.FindByEmployeeAndWindow(ctx, employeeID, window)
	if err != nil {
		return timeentry.TimeEntryResponse{}, fmt.Errorf("failed to check existing time entry: %w", err)
	}
	if existing != nil {
		return timeentry.TimeEntryResponse{}, timeentry.ErrDuplicateEntry
	}

	id, err := uuid.NewV7()
	if err != nil {
		return timeentry.TimeEntryResponse{}, fmt.Errorf("failed to generate time entry id: %w", err)
	}

	status := timeentry.StatusPending
	if req.Status != nil {
		status = *req.Status
	}

	regularHours, totalHours := computeHours(entryTime, exitTime, extraHours)
	newEntry := timeentry.TimeEntry{
		ID:                  id.String(),
		EmployeeID:          employeeID,
		Date:                window.Start,
		EntryTime:           entryTime,
		ExitTime:            exitTime,
		Status:              status,
		Notes:               req.Notes,
		DailyRate:           dailyRate,
		ExtraHours:          extraHours,
		ExtraHoursRate:      extraHoursRate,
		Total:               total,
		ExtraHoursFormatted: req.ExtraHoursFormatted,
		RegularHours:        regularHours,
		TotalHours:          totalHours,
		ApprovedBy:          actor,
	}
	if actor != nil {
		now := s.clock.Now()
		switch status {
		case timeentry.StatusApproved:
			newEntry.ApprovedAt = &now
		case timeentry.StatusRejected:
			newEntry.RejectedBy = actor
			newEntry.RejectedAt = &now
		}
	}

	created, err := s.TimeEntryRepository.Create(ctx, newEntry)
	if err != nil {
		return timeentry.TimeEntryResponse{}, translateStorageError("failed to create time entry", err)
	}

	slog.Info("time entry created", "time_entry_id", created.ID, "employee_id", employeeID, "status", status)

	return s.project(ctx, created.ID)
}

// RegisterExit implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) RegisterExit(ctx context.Context, id string, req timeentry.RegisterExitRequest, actorID string) (timeentry.TimeEntryResponse, error) {
	entryID, ok := canonicalID(id)
	if !ok {
		return timeentry.TimeEntryResponse{}, timeentry.InvalidField("id", "id must be a valid id")
	}
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, asInvalidInput(err)
	}
	exitTime, err := clock.ParseInstant(req.ExitTime, s.clock.Location())
	if err != nil {
		return timeentry.TimeEntryResponse{}, timeentry.InvalidField("exitTime", "exitTime must be a valid ISO-8601 instant")
	}
	actor, ok := canonicalID(actorID)
	if !ok {
		return timeentry.TimeEntryResponse{}, timeentry.ErrUnresolved
	}

	// The row lock serializes concurrent exit registrations for the same entry.
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.TimeEntryRepository.GetByIDForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.HasExit() {
			return timeentry.ErrExitAlreadyRegistered
		}
		if exitTime.Before(entry.EntryTime) {
			return timeentry.InvalidField("exitTime", "exitTime must not be before entryTime")
		}

		entry.ExitTime = &exitTime
		entry.RegularHours, entry.TotalHours = computeHours(entry.EntryTime, entry.ExitTime, entry.ExtraHours)
		entry.ApprovedBy = &actor

		return s.TimeEntryRepository.Update(ctx, entry)
	})
	if err != nil {
		return timeentry.TimeEntryResponse{}, translateStorageError("failed to register exit", err)
	}

	slog.Info("time entry exit registered", "time_entry_id", entryID, "actor_id", actor)

	return s.project(ctx, entryID)
}

// UpdateStatus implements timeentry.TimeEntryService.
// Any status is reachable from any other; approvedBy always records the last actor.
func (s *TimeEntryServiceImpl) UpdateStatus(ctx context.Context, id string, req timeentry.UpdateStatusRequest, actorID string) (timeentry.TimeEntryResponse, error) {
	entryID, ok := canonicalID(id)
	if !ok {
		return timeentry.TimeEntryResponse{}, timeentry.InvalidField("id", "id must be a valid id")
	}
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, asInvalidInput(err)
	}
	actor, ok := canonicalID(actorID)
	if !ok {
		return timeentry.TimeEntryResponse{}, timeentry.ErrUnresolved
	}

	now := s.clock.Now()
	change := timeentry.StatusChange{
		ID:         entryID,
		Status:     req.Status,
		Notes:      req.Notes,
		ApprovedBy: &actor,
	}
	switch req.Status {
	case timeentry.StatusApproved:
		change.ApprovedAt = &now
	case timeentry.StatusRejected:
		change.RejectedBy = &actor
		change.RejectedAt = &now
		change.RejectedReason = req.Reason
	}

	if err := s.TimeEntryRepository.UpdateStatus(ctx, change); err != nil {
		return timeentry.TimeEntryResponse{}, translateStorageError("failed to update time entry status", err)
	}

	slog.Info("time entry status updated", "time_entry_id", entryID, "status", req.Status, "actor_id", actor)

	return s.project(ctx, entryID)
}

// Update implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Update(ctx context.Context, id string, req timeentry.UpdateTimeEntryRequest, actorID string) (timeentry.TimeEntryResponse, error) {
	entryID, ok := canonicalID(id)
	if !ok {
		return timeentry.TimeEntryResponse{}, timeentry.InvalidField("id", "id must be a valid id")
	}
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, asInvalidInput(err)
	}

	loc := s.clock.Location()
	var errs validator.ValidationErrors

	var entryTime *time.Time
	if req.EntryTime.Value != nil {
		t, err := clock.ParseInstant(*req.EntryTime.Value, loc)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "entryTime", Message: "entryTime must be a valid ISO-8601 instant"})
		}
		entryTime = &t
	}
	var exitTime *time.Time
	if req.ExitTime.Value != nil {
		t, err := clock.ParseInstant(*req.ExitTime.Value, loc)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "exitTime", Message: "exitTime must be a valid ISO-8601 instant"})
		}
		exitTime = &t
	}
	dailyRate := coerceNumeric("dailyRate", req.DailyRate.Value, &errs)
	extraHours := coerceNumeric("extraHours", req.ExtraHours.Value, &errs)
	extraHoursRate := coerceNumeric("extraHoursRate", req.ExtraHoursRate.Value, &errs)
	total := coerceNumeric("total", req.Total.Value, &errs)

	if len(errs) > 0 {
		return timeentry.TimeEntryResponse{}, timeentry.InvalidInput(errs)
	}

	actor, ok := canonicalID(actorID)
	if !ok {
		return timeentry.TimeEntryResponse{}, timeentry.ErrUnresolved
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.TimeEntryRepository.GetByIDForUpdate(ctx, entryID)
		if err != nil {
			return err
		}

		if req.EntryTime.Set {
			entry.EntryTime = *entryTime
		}
		if req.ExitTime.Set {
			entry.ExitTime = exitTime
		}
		if req.Notes.Set {
			entry.Notes = req.Notes.Value
		}
		if req.DailyRate.Set {
			entry.DailyRate = dailyRate
		}
		if req.ExtraHours.Set {
			entry.ExtraHours = extraHours
		}
		if req.ExtraHoursRate.Set {
			entry.ExtraHoursRate = extraHoursRate
		}
		if req.Total.Set {
			entry.Total = total
		}
		if req.ExtraHoursFormatted.Set {
			entry.ExtraHoursFormatted = req.ExtraHoursFormatted.Value
		}

		if req.TouchesHours() {
			if entry.ExitTime != nil && entry.ExitTime.Before(entry.EntryTime) {
				return timeentry.InvalidField("exitTime", "exitTime must not be before entryTime")
			}
			entry.RegularHours, entry.TotalHours = computeHours(entry.EntryTime, entry.ExitTime, entry.ExtraHours)
		}

		entry.ApprovedBy = &actor
		entry.LastEditedBy = &actor

		return s.TimeEntryRepository.Update(ctx, entry)
	})
	if err != nil {
		return timeentry.TimeEntryResponse{}, translateStorageError("failed to update time entry", err)
	}

	slog.Info("time entry updated", "time_entry_id", entryID, "actor_id", actor)

	return s.project(ctx, entryID)
}

// Get implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Get(ctx context.Context, id string) (timeentry.TimeEntryResponse, error) {
	entryID, ok := canonicalID(id)
	if !ok {
		return timeentry.TimeEntryResponse{}, timeentry.InvalidField("id", "id must be a valid id")
	}
	return s.project(ctx, entryID)
}

// ListByEmployee implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]timeentry.TimeEntryResponse, error) {
	id, ok := canonicalID(employeeID)
	if !ok {
		return nil, timeentry.InvalidField("employeeId", "employeeId must be a valid id")
	}
	return s.list(ctx, timeentry.ListFilter{EmployeeID: &id})
}

// ListByDateRange implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ListByDateRange(ctx context.Context, filter timeentry.DateRangeFilter) ([]timeentry.TimeEntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, asInvalidInput(err)
	}

	loc := s.clock.Location()
	start, err := clock.ParseDate(filter.StartDate, loc)
	if err != nil {
		return nil, timeentry.InvalidField("startDate", "startDate must be a date in YYYY-MM-DD format")
	}
	end, err := clock.ParseDate(filter.EndDate, loc)
	if err != nil {
		return nil, timeentry.InvalidField("endDate", "endDate must be a date in YYYY-MM-DD format")
	}
	if start.After(end) {
		return nil, timeentry.InvalidField("startDate", "startDate must be on or before endDate")
	}

	window := clock.RangeWindow(start, end, loc)
	listFilter := timeentry.ListFilter{From: &window.Start, To: &window.End}

	if filter.EmployeeID != nil && strings.TrimSpace(*filter.EmployeeID) != "" {
		id, ok := canonicalID(*filter.EmployeeID)
		if !ok {
			return nil, timeentry.InvalidField("employeeId", "employeeId must be a valid id")
		}
		listFilter.EmployeeID = &id
	}

	return s.list(ctx, listFilter)
}

// Remove implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Remove(ctx context.Context, id string) error {
	entryID, ok := canonicalID(id)
	if !ok {
		return timeentry.InvalidField("id", "id must be a valid id")
	}

	if err := s.TimeEntryRepository.Delete(ctx, entryID); err != nil {
		return translateStorageError("failed to delete time entry", err)
	}

	slog.Info("time entry removed", "time_entry_id", entryID)
	return nil
}

func (s *TimeEntryServiceImpl) list(ctx context.Context, filter timeentry.ListFilter) ([]timeentry.TimeEntryResponse, error) {
	entries, err := s.TimeEntryRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	responses := make([]timeentry.TimeEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, mapTimeEntryToResponse(e))
	}
	return responses, nil
}

// project re-reads the entry with references resolved.
func (s *TimeEntryServiceImpl) project(ctx context.Context, id string) (timeentry.TimeEntryResponse, error) {
	entry, err := s.TimeEntryRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, timeentry.ErrTimeEntryNotFound) {
			return timeentry.TimeEntryResponse{}, timeentry.ErrTimeEntryNotFound
		}
		return timeentry.TimeEntryResponse{}, fmt.Errorf("failed to get time entry: %w", err)
	}
	return mapTimeEntryToResponse(entry), nil
}

func (s *TimeEntryServiceImpl) ensureEmployee(ctx context.Context, employeeID string) error {
	exists, err := s.EmployeeDirectory.ExistsByID(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to resolve employee: %w", err)
	}
	if !exists {
		return timeentry.ErrUnresolved
	}
	return nil
}

// computeHours returns regular and total hours rounded to 2 decimals, or nil
// for both while either boundary is unknown.
func computeHours(entry time.Time, exit *time.Time, extraHours *decimal.Decimal) (regular, total *decimal.Decimal) {
	if exit == nil {
		return nil, nil
	}
	r := clock.DiffHours(entry, *exit).Round(2)
	t := r
	if extraHours != nil {
		t = r.Add(*extraHours)
	}
	t = t.Round(2)
	return &r, &t
}

// canonicalID lower-cases a well-formed UUID.
func canonicalID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !validator.IsValidUUID(s) {
		return "", false
	}
	return uuid.MustParse(s).String(), true
}

func coerceNumeric(field string, n *timeentry.Numeric, errs *validator.ValidationErrors) *decimal.Decimal {
	if n == nil {
		return nil
	}
	d, err := n.Decimal()
	if err != nil {
		*errs = append(*errs, validator.ValidationError{Field: field, Message: field + " must be a number"})
		return nil
	}
	return &d
}

func asInvalidInput(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return timeentry.InvalidInput(errs)
	}
	return fmt.Errorf("%w: %w", timeentry.ErrInvalidInput, err)
}

// translateStorageError keeps domain errors and maps constraint violations to them.
func translateStorageError(op string, err error) error {
	for _, domainErr := range []error{
		timeentry.ErrInvalidInput,
		timeentry.ErrTimeEntryNotFound,
		timeentry.ErrDuplicateEntry,
		timeentry.ErrExitAlreadyRegistered,
		timeentry.ErrUnresolved,
	} {
		if errors.Is(err, domainErr) {
			return err
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return timeentry.ErrDuplicateEntry
		case pgerrcode.ForeignKeyViolation:
			return timeentry.ErrUnresolved
		case pgerrcode.InvalidTextRepresentation, pgerrcode.InvalidDatetimeFormat, pgerrcode.DatetimeFieldOverflow,
			pgerrcode.NumericValueOutOfRange:
			return fmt.Errorf("%w: %s", timeentry.ErrInvalidInput, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func NewTimeEntryService(
	timeEntryRepo timeentry.TimeEntryRepository,
	employeeDirectory timeentry.EmployeeDirectory,
	tx database.Transactor,
	clk clock.Clock,
) timeentry.TimeEntryService {
	return &TimeEntryServiceImpl{
		TimeEntryRepository: timeEntryRepo,
		EmployeeDirectory:   employeeDirectory,
		tx:                  tx,
		clock:               clk,
	}
}
