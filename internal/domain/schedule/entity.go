package schedule

import (
	"fmt"
	"time"
)

// MinuteOfDay is a wall-clock offset in minutes since midnight. All
// schedule and punch comparisons happen in this space on a single calendar
// day; shifts crossing midnight are not supported.
type MinuteOfDay int

// ParseMinuteOfDay parses "HH:MM" into a minute offset.
func ParseMinuteOfDay(clock string) (MinuteOfDay, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	return MinuteOfDay(t.Hour()*60 + t.Minute()), nil
}

// MinuteOfDayFromTime projects a timestamp onto its wall-clock minute offset.
func MinuteOfDayFromTime(t time.Time) MinuteOfDay {
	return MinuteOfDay(t.Hour()*60 + t.Minute())
}

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// ISOWeekday returns 1=Monday .. 7=Sunday for a date.
func ISOWeekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

type Schedule struct {
	ID               string
	Name             string
	EntryTime        MinuteOfDay
	ExitTime         MinuteOfDay
	ToleranceMinutes int
	Weekdays         []int // ISO weekdays covered, 1=Monday..7=Sunday
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CoversWeekday reports whether the schedule applies on the given ISO weekday.
func (s Schedule) CoversWeekday(isoWeekday int) bool {
	for _, d := range s.Weekdays {
		if d == isoWeekday {
			return true
		}
	}
	return false
}

// ScheduleAssignment links an employee to a schedule for a validity
// interval. ValidUntil nil means open-ended.
type ScheduleAssignment struct {
	ID         string
	EmployeeID string
	ScheduleID string
	ValidFrom  time.Time
	ValidUntil *time.Time
	Schedule   Schedule
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ActiveOn reports whether the assignment's validity interval covers date.
func (a ScheduleAssignment) ActiveOn(date time.Time) bool {
	if date.Before(a.ValidFrom) {
		return false
	}
	if a.ValidUntil != nil && date.After(*a.ValidUntil) {
		return false
	}
	return true
}
