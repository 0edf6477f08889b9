package attendance

import (
	"io"
	"mime/multipart"

	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/validator"
)

// SubmitEntryRequest carries one entry punch. EmployeeID is normally taken
// from the access token; managers may set it together with Date and
// ObservedTime to register a manual correction.
type SubmitEntryRequest struct {
	EmployeeID   string  `json:"employee_id"`
	Date         *string `json:"date,omitempty"`          // "YYYY-MM-DD", manual only
	ObservedTime *string `json:"observed_time,omitempty"` // "HH:MM", manual only
	Note         *string `json:"note,omitempty"`

	File       io.Reader             `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *SubmitEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Date != nil {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.ObservedTime != nil {
		if _, ok := validator.IsValidClockTime(*r.ObservedTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "observed_time",
				Message: "observed_time must be in HH:MM format",
			})
		}
	}
	if r.Note != nil && len(*r.Note) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SubmitExitRequest carries one exit punch. The evidence photo is optional
// on exit; exits without one are committed without an evidence reference.
type SubmitExitRequest struct {
	EmployeeID   string  `json:"employee_id"`
	Date         *string `json:"date,omitempty"`
	ObservedTime *string `json:"observed_time,omitempty"`
	Note         *string `json:"note,omitempty"`

	File       io.Reader             `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *SubmitExitRequest) Validate() error {
	entry := SubmitEntryRequest{
		EmployeeID:   r.EmployeeID,
		Date:         r.Date,
		ObservedTime: r.ObservedTime,
		Note:         r.Note,
	}
	return entry.Validate()
}

// EventResponse is the committed-event view returned by the registrar.
type EventResponse struct {
	EventID     string  `json:"event_id"`
	EmployeeID  string  `json:"employee_id"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	ClockTime   string  `json:"clock_time"`
	Punctuality string  `json:"punctuality"`
	Note        *string `json:"note,omitempty"`
	EvidenceURL *string `json:"evidence_url,omitempty"`
	IsManual    bool    `json:"is_manual"`
}

// ProjectionResponse is the day-level read model served to reporting
// consumers. Absent fields are genuinely absent, not zero values.
type ProjectionResponse struct {
	EmployeeID     string  `json:"employee_id"`
	Date           string  `json:"date"`
	EffectiveEntry *string `json:"effective_entry,omitempty"`
	EffectiveExit  *string `json:"effective_exit,omitempty"`
	EntryCategory  *string `json:"entry_category,omitempty"`
	ExitCategory   *string `json:"exit_category,omitempty"`
	WorkedMinutes  *int    `json:"worked_minutes,omitempty"`
}
