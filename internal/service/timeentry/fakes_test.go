package timeentry

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/jackc/pgx/v5/pgconn"
)

// memoryStore is an in-memory repository, employee directory and transactor.
// Rows locked with GetByIDForUpdate stay locked until the transaction ends.
type memoryStore struct {
	mu        sync.Mutex
	entries   map[string]timeentry.TimeEntry
	employees map[string]timeentry.Reference
	users     map[string]timeentry.Reference
	rowLocks  map[string]*sync.Mutex
	now       func() time.Time

	// skipWindowLookup simulates a concurrent create racing past the pre-check.
	skipWindowLookup bool
}

func newMemoryStore(now time.Time) *memoryStore {
	return &memoryStore{
		entries:   make(map[string]timeentry.TimeEntry),
		employees: make(map[string]timeentry.Reference),
		users:     make(map[string]timeentry.Reference),
		rowLocks:  make(map[string]*sync.Mutex),
		now:       func() time.Time { return now },
	}
}

func (s *memoryStore) addEmployee(id, name string) {
	s.employees[id] = timeentry.Reference{ID: id, Name: name}
}

func (s *memoryStore) addUser(id, name string) {
	s.users[id] = timeentry.Reference{ID: id, Name: name}
}

func (s *memoryStore) snapshot(id string) (timeentry.TimeEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

type memoryTx struct {
	held []*sync.Mutex
	undo []func()
}

type memoryTxKey struct{}

func txFrom(ctx context.Context) *memoryTx {
	tx, _ := ctx.Value(memoryTxKey{}).(*memoryTx)
	return tx
}

func (s *memoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	tx := &memoryTx{}
	err := fn(context.WithValue(ctx, memoryTxKey{}, tx))
	if err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
	}
	for _, m := range tx.held {
		m.Unlock()
	}
	return err
}

func (s *memoryStore) rowLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rowLocks[id]
	if !ok {
		m = &sync.Mutex{}
		s.rowLocks[id] = m
	}
	return m
}

func (s *memoryStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := s.employees[id]
	return ok, nil
}

func (s *memoryStore) resolve(e timeentry.TimeEntry) timeentry.TimeEntry {
	if ref, ok := s.employees[e.EmployeeID]; ok {
		e.Employee = &ref
	}
	if e.ApprovedBy != nil {
		if ref, ok := s.users[*e.ApprovedBy]; ok {
			e.Approver = &ref
		}
	}
	if e.RejectedBy != nil {
		if ref, ok := s.users[*e.RejectedBy]; ok {
			e.Rejecter = &ref
		}
	}
	return e
}

func (s *memoryStore) GetByID(ctx context.Context, id string) (timeentry.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
	}
	return s.resolve(e), nil
}

func (s *memoryStore) GetByIDForUpdate(ctx context.Context, id string) (timeentry.TimeEntry, error) {
	tx := txFrom(ctx)
	if tx == nil {
		return timeentry.TimeEntry{}, errors.New("GetByIDForUpdate called outside a transaction")
	}
	m := s.rowLock(id)
	m.Lock()
	tx.held = append(tx.held, m)

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
	}
	return e, nil
}

func (s *memoryStore) FindByEmployeeAndWindow(ctx context.Context, employeeID string, window clock.Window) (*timeentry.TimeEntry, error) {
	if s.skipWindowLookup {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.EmployeeID == employeeID && window.Contains(e.Date) {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) List(ctx context.Context, filter timeentry.ListFilter) ([]timeentry.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []timeentry.TimeEntry
	for _, e := range s.entries {
		if filter.EmployeeID != nil && e.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		out = append(out, s.resolve(e))
	}
	slices.SortFunc(out, func(a, b timeentry.TimeEntry) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return a.EntryTime.Compare(b.EntryTime)
	})
	return out, nil
}

func (s *memoryStore) Create(ctx context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[entry.EmployeeID]; !ok {
		return timeentry.TimeEntry{}, &pgconn.PgError{Code: "23503", ConstraintName: "time_entries_employee_id_fkey"}
	}
	for _, e := range s.entries {
		if e.EmployeeID == entry.EmployeeID && e.Date.Equal(entry.Date) {
			return timeentry.TimeEntry{}, &pgconn.PgError{Code: "23505", ConstraintName: "time_entries_employee_date_key"}
		}
	}
	entry.CreatedAt = s.now()
	entry.UpdatedAt = entry.CreatedAt
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *memoryStore) Update(ctx context.Context, entry timeentry.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.entries[entry.ID]
	if !ok {
		return timeentry.ErrTimeEntryNotFound
	}
	if tx := txFrom(ctx); tx != nil {
		tx.undo = append(tx.undo, func() { s.entries[old.ID] = old })
	}
	entry.Employee, entry.Approver, entry.Rejecter = nil, nil, nil
	entry.UpdatedAt = s.now()
	s.entries[entry.ID] = entry
	return nil
}

func (s *memoryStore) UpdateStatus(ctx context.Context, change timeentry.StatusChange) error {
	m := s.rowLock(change.ID)
	m.Lock()
	defer m.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[change.ID]
	if !ok {
		return timeentry.ErrTimeEntryNotFound
	}
	e.Status = change.Status
	if change.Notes != nil {
		e.Notes = change.Notes
	}
	e.ApprovedBy = change.ApprovedBy
	e.ApprovedAt = change.ApprovedAt
	e.RejectedBy = change.RejectedBy
	e.RejectedAt = change.RejectedAt
	e.RejectedReason = change.RejectedReason
	e.UpdatedAt = s.now()
	s.entries[change.ID] = e
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return timeentry.ErrTimeEntryNotFound
	}
	delete(s.entries, id)
	return nil
}
