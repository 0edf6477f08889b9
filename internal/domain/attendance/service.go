package attendance

import (
	"context"
	"time"
)

// Registrar is the write path: one punch, one short-lived transaction.
type Registrar interface {
	// SubmitEntry validates and commits one ENTRY event. Requires an
	// evidence photo; fails with ErrMissingEvidence without one and with
	// ErrNoScheduleAssigned when no schedule governs the date. Repeated
	// entries on one day are allowed; the day projection absorbs them.
	SubmitEntry(ctx context.Context, req SubmitEntryRequest) (EventResponse, error)

	// SubmitExit validates and commits one EXIT event. Exit is the only
	// event type enforced as singular per (employee, date); a second
	// submission fails with ErrDuplicateExit.
	SubmitExit(ctx context.Context, req SubmitExitRequest) (EventResponse, error)
}

// Ledger is the read path over the event store.
type Ledger interface {
	// ProjectDay recomputes the day projection from raw events and the
	// schedule resolved for that date.
	ProjectDay(ctx context.Context, employeeID string, date time.Time) (DayProjection, error)
}
