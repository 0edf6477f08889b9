package attendance

import (
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
)

// DayProjection is the derived day-level view of the ledger. It is computed
// on read and never persisted.
type DayProjection struct {
	EmployeeID     string
	Date           time.Time
	EffectiveEntry *schedule.MinuteOfDay
	EffectiveExit  *schedule.MinuteOfDay
	EntryCategory  *Category
	ExitCategory   *Category
	WorkedMinutes  *int
}

// ProjectDay folds the raw events of one (employee, date) pair into a
// DayProjection: effective entry is the earliest ENTRY punch, effective
// exit the latest EXIT punch. WorkedMinutes is only defined when the
// difference is strictly between 0 and 1440 minutes; negative or absurd
// durations (clock skew, missing punches) stay undefined rather than
// poisoning downstream sums. Categories are filled only when a schedule
// governs the day.
func ProjectDay(employeeID string, date time.Time, events []AttendanceEvent, sched *schedule.Schedule) DayProjection {
	p := DayProjection{
		EmployeeID: employeeID,
		Date:       date,
	}

	for _, ev := range events {
		switch ev.Type {
		case EventEntry:
			if p.EffectiveEntry == nil || ev.ClockTime < *p.EffectiveEntry {
				t := ev.ClockTime
				p.EffectiveEntry = &t
			}
		case EventExit:
			if p.EffectiveExit == nil || ev.ClockTime > *p.EffectiveExit {
				t := ev.ClockTime
				p.EffectiveExit = &t
			}
		}
	}

	if p.EffectiveEntry != nil && p.EffectiveExit != nil {
		worked := int(*p.EffectiveExit - *p.EffectiveEntry)
		if worked > 0 && worked < 24*60 {
			p.WorkedMinutes = &worked
		}
	}

	if sched != nil {
		if p.EffectiveEntry != nil {
			c := ClassifyEntry(sched.EntryTime, sched.ToleranceMinutes, *p.EffectiveEntry)
			p.EntryCategory = &c
		}
		if p.EffectiveExit != nil {
			c := ClassifyExit(sched.ExitTime, sched.ToleranceMinutes, *p.EffectiveExit)
			p.ExitCategory = &c
		}
	}

	return p
}
