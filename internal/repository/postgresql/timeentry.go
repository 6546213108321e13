package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const timeEntrySelect = `
	SELECT
		t.id, t.employee_id, t.date, t.entry_time, t.exit_time, t.status, t.notes,
		t.daily_rate, t.extra_hours, t.extra_hours_rate, t.total, t.extra_hours_formatted,
		t.regular_hours, t.total_hours,
		t.approved_by, t.approved_at, t.rejected_by, t.rejected_at, t.rejected_reason,
		t.last_edited_by, t.created_at, t.updated_at,
		e.name, e.email,
		ua.name, ua.email,
		ur.name, ur.email
	FROM time_entries t
	LEFT JOIN employees e ON e.id = t.employee_id
	LEFT JOIN users ua ON ua.id = t.approved_by
	LEFT JOIN users ur ON ur.id = t.rejected_by
`

type timeEntryRepository struct {
	db *database.DB
}

func scanTimeEntry(row pgx.Row) (timeentry.TimeEntry, error) {
	var (
		te                          timeentry.TimeEntry
		employeeName, employeeEmail *string
		approverName, approverEmail *string
		rejecterName, rejecterEmail *string
	)
	err := row.Scan(
		&te.ID, &te.EmployeeID, &te.Date, &te.EntryTime, &te.ExitTime, &te.Status, &te.Notes,
		&te.DailyRate, &te.ExtraHours, &te.ExtraHoursRate, &te.Total, &te.ExtraHoursFormatted,
		&te.RegularHours, &te.TotalHours,
		&te.ApprovedBy, &te.ApprovedAt, &te.RejectedBy, &te.RejectedAt, &te.RejectedReason,
		&te.LastEditedBy, &te.CreatedAt, &te.UpdatedAt,
		&employeeName, &employeeEmail,
		&approverName, &approverEmail,
		&rejecterName, &rejecterEmail,
	)
	if err != nil {
		return timeentry.TimeEntry{}, err
	}

	if employeeName != nil {
		te.Employee = &timeentry.Reference{ID: te.EmployeeID, Name: *employeeName, Email: employeeEmail}
	}
	if te.ApprovedBy != nil && approverName != nil {
		te.Approver = &timeentry.Reference{ID: *te.ApprovedBy, Name: *approverName, Email: approverEmail}
	}
	if te.RejectedBy != nil && rejecterName != nil {
		te.Rejecter = &timeentry.Reference{ID: *te.RejectedBy, Name: *rejecterName, Email: rejecterEmail}
	}
	return te, nil
}

// GetByID implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) GetByID(ctx context.Context, id string) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	te, err := scanTimeEntry(q.QueryRow(ctx, timeEntrySelect+`WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to get time entry by ID: %w", err)
	}
	return te, nil
}

// GetByIDForUpdate implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) GetByIDForUpdate(ctx context.Context, id string) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	// Only the time_entries row is locked; the joined rows sit on the nullable side.
	te, err := scanTimeEntry(q.QueryRow(ctx, timeEntrySelect+`WHERE t.id = $1 FOR UPDATE OF t`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to lock time entry: %w", err)
	}
	return te, nil
}

// FindByEmployeeAndWindow implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) FindByEmployeeAndWindow(ctx context.Context, employeeID string, window clock.Window) (*timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := timeEntrySelect + `
		WHERE t.employee_id = $1 AND t.date BETWEEN $2 AND $3
		ORDER BY t.date
		LIMIT 1`

	te, err := scanTimeEntry(q.QueryRow(ctx, query, employeeID, window.Start, window.End))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find time entry by employee and day: %w", err)
	}
	return &te, nil
}

// List implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) List(ctx context.Context, filter timeentry.ListFilter) ([]timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("t.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("t.date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("t.date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}

	query := timeEntrySelect
	if len(conditions) > 0 {
		query += "WHERE " + strings.Join(conditions, " AND ")
	}
	query += `
		ORDER BY t.date DESC, t.entry_time ASC, t.id ASC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]timeentry.TimeEntry, 0)
	for rows.Next() {
		te, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, te)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate time entries: %w", err)
	}

	return entries, nil
}

// Create implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) Create(ctx context.Context, te timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_entries (
			id, employee_id, date, entry_time, exit_time, status, notes,
			daily_rate, extra_hours, extra_hours_rate, total, extra_hours_formatted,
			regular_hours, total_hours,
			approved_by, approved_at, rejected_by, rejected_at, rejected_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		te.ID, te.EmployeeID, te.Date, te.EntryTime, te.ExitTime, te.Status, te.Notes,
		te.DailyRate, te.ExtraHours, te.ExtraHoursRate, te.Total, te.ExtraHoursFormatted,
		te.RegularHours, te.TotalHours,
		te.ApprovedBy, te.ApprovedAt, te.RejectedBy, te.RejectedAt, te.RejectedReason,
	).Scan(&te.CreatedAt, &te.UpdatedAt)
	if err != nil {
		return timeentry.TimeEntry{}, err
	}

	return te, nil
}

// Update implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) Update(ctx context.Context, te timeentry.TimeEntry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_entries SET
			entry_time = $2, exit_time = $3, status = $4, notes = $5,
			daily_rate = $6, extra_hours = $7, extra_hours_rate = $8, total = $9, extra_hours_formatted = $10,
			regular_hours = $11, total_hours = $12,
			approved_by = $13, approved_at = $14, rejected_by = $15, rejected_at = $16, rejected_reason = $17,
			last_edited_by = $18, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		te.ID, te.EntryTime, te.ExitTime, te.Status, te.Notes,
		te.DailyRate, te.ExtraHours, te.ExtraHoursRate, te.Total, te.ExtraHoursFormatted,
		te.RegularHours, te.TotalHours,
		te.ApprovedBy, te.ApprovedAt, te.RejectedBy, te.RejectedAt, te.RejectedReason,
		te.LastEditedBy,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return timeentry.ErrTimeEntryNotFound
	}

	return nil
}

// UpdateStatus implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) UpdateStatus(ctx context.Context, change timeentry.StatusChange) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_entries SET
			status = $2,
			notes = COALESCE($3, notes),
			approved_by = $4, approved_at = $5,
			rejected_by = $6, rejected_at = $7, rejected_reason = $8,
			updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query,
		change.ID, change.Status, change.Notes,
		change.ApprovedBy, change.ApprovedAt,
		change.RejectedBy, change.RejectedAt, change.RejectedReason,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return timeentry.ErrTimeEntryNotFound
	}

	return nil
}

// Delete implements timeentry.TimeEntryRepository.
func (r *timeEntryRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return timeentry.ErrTimeEntryNotFound
	}

	return nil
}

func NewTimeEntryRepository(db *database.DB) timeentry.TimeEntryRepository {
	return &timeEntryRepository{db: db}
}
