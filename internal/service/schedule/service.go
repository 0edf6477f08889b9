package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
)

type ResolverImpl struct {
	schedule.ScheduleRepository
}

func NewResolver(scheduleRepo schedule.ScheduleRepository) schedule.Resolver {
	return &ResolverImpl{ScheduleRepository: scheduleRepo}
}

// Resolve implements schedule.Resolver. It selects assignments whose
// validity interval covers the date, intersects with schedules covering the
// date's ISO weekday, and returns the first match. No schedule resolving is
// an expected outcome and returns (nil, nil).
//
// When the data holds more than one qualifying assignment the result is
// whatever comes first in storage order. That overlap is a data-quality
// defect upstream; the resolver does not invent a priority rule on top of
// it.
func (r *ResolverImpl) Resolve(ctx context.Context, employeeID string, date time.Time) (*schedule.Schedule, error) {
	assignments, err := r.ListAssignments(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule assignments: %w", err)
	}

	weekday := schedule.ISOWeekday(date)
	for _, assignment := range assignments {
		if !assignment.ActiveOn(date) {
			continue
		}
		if !assignment.Schedule.CoversWeekday(weekday) {
			continue
		}
		sched := assignment.Schedule
		return &sched, nil
	}

	return nil, nil
}
