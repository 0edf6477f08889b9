package attendance

import (
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
)

type EventType string

const (
	EventEntry EventType = "ENTRY"
	EventExit  EventType = "EXIT"
)

type Category string

const (
	CategoryEarly  Category = "EARLY"
	CategoryOnTime Category = "ON_TIME"
	CategoryLate   Category = "LATE"
)

// AttendanceEvent is one immutable row of the ledger. Events are only ever
// appended; a failed registration compensates by deleting its evidence
// file, never by mutating the row.
type AttendanceEvent struct {
	ID          string
	EmployeeID  string
	Date        time.Time // calendar day, midnight-truncated
	Type        EventType
	ClockTime   schedule.MinuteOfDay
	Punctuality Category
	Note        *string
	EvidenceRef *string
	IsManual    bool
	CreatedAt   time.Time
}
