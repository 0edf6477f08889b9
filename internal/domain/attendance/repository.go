package attendance

import (
	"context"
	"time"
)

// EventRepository is the append-only ledger store. There is no update and
// no delete; the only uniqueness the store enforces is the partial unique
// index backing duplicate-exit prevention.
type EventRepository interface {
	// Append inserts one event and returns its id. Appending a second EXIT
	// for the same (employee, date) must fail with ErrDuplicateExit even
	// under concurrent submission.
	Append(ctx context.Context, event AttendanceEvent) (string, error)

	// ListByEmployeeAndDate returns all events of one (employee, date) pair
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]AttendanceEvent, error)

	// HasExit reports whether an EXIT event exists for (employee, date)
	HasExit(ctx context.Context, employeeID string, date time.Time) (bool, error)

	// ListEvidenceRefs returns the evidence references of all events on or
	// after since. Used by the orphan sweeper to tell live files from
	// leftovers of failed registrations.
	ListEvidenceRefs(ctx context.Context, since time.Time) ([]string, error)
}

// TxRunner executes fn atomically. The context passed to fn carries the
// transaction; repository calls made with it run their statements on it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}
