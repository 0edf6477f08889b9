package attendance

import "errors"

// Attendance domain errors
var (
	// Registration errors
	ErrMissingEvidence    = errors.New("entry registration requires an evidence photo")
	ErrNoScheduleAssigned = errors.New("no schedule assigned for this date")
	ErrDuplicateExit      = errors.New("an exit has already been recorded for this date")

	// Infrastructure errors
	ErrEvidencePersist  = errors.New("failed to persist evidence file")
	ErrStoreUnavailable = errors.New("attendance store unavailable")
	ErrInvalidInput     = errors.New("malformed date or time")
)
