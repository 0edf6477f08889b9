package schedule

import (
	"context"
	"time"
)

// ScheduleRepository is the read-only schedule directory. Schedule CRUD
// lives in the HR system; the core only resolves.
type ScheduleRepository interface {
	// ListAssignments returns all assignments of an employee, each with its
	// schedule embedded, in storage order. No priority ordering is applied:
	// overlapping assignments are a data defect and resolution beyond
	// "first found" is deliberately unspecified.
	ListAssignments(ctx context.Context, employeeID string) ([]ScheduleAssignment, error)

	// GetSchedule returns a schedule by id
	GetSchedule(ctx context.Context, id string) (Schedule, error)
}

// Resolver resolves the single schedule governing an employee on a date.
// A nil schedule with nil error means "none assigned", an expected
// outcome rather than a failure.
type Resolver interface {
	Resolve(ctx context.Context, employeeID string, date time.Time) (*Schedule, error)
}
