package stats

import (
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
)

// ScopeStats is the punctuality roll-up for one scope and date. Arrival
// buckets partition the active employee set: every active employee lands in
// exactly one of early/on-time/late/absences.
type ScopeStats struct {
	Scope org.Scope `json:"scope"`
	Date  string    `json:"date"`

	TotalEmployees   int     `json:"total_employees"`
	EarlyArrivals    int     `json:"early_arrivals"`
	OnTimeArrivals   int     `json:"on_time_arrivals"`
	LateArrivals     int     `json:"late_arrivals"`
	Absences         int     `json:"absences"`
	EarlyExits       int     `json:"early_exits"`
	OnTimeExits      int     `json:"on_time_exits"`
	LateExits        int     `json:"late_exits"`
	TotalWorkedHours float64 `json:"total_worked_hours"`
}

// EmployeeDayRow is one employee's line in a scope roll-up, used by the
// report export.
type EmployeeDayRow struct {
	EmployeeID      string
	FullName        string
	EstablishmentID string
	Projection      attendance.DayProjection
	ArrivalBucket   *attendance.Category // aggregation-path bucketing, nil when absent
	ScheduleName    *string
}

// ScopeReport couples the roll-up with its per-employee rows.
type ScopeReport struct {
	Stats ScopeStats
	Rows  []EmployeeDayRow
	Date  time.Time
}
