package response

import (
	"errors"
	"net/http"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/auth"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/user"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrManagerPrivilegeRequired):
		Forbidden(w, "Manager privilege required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrMissingEvidence):
		BadRequest(w, "Entry registration requires an evidence photo", nil)
	case errors.Is(err, attendance.ErrNoScheduleAssigned):
		BadRequest(w, "No schedule assigned for this date", nil)
	case errors.Is(err, attendance.ErrDuplicateExit):
		Conflict(w, "An exit has already been recorded for this date")
	case errors.Is(err, attendance.ErrInvalidInput):
		BadRequest(w, "Malformed date or time", nil)
	case errors.Is(err, attendance.ErrEvidencePersist):
		InternalServerError(w, "Failed to persist evidence file")
	case errors.Is(err, attendance.ErrStoreUnavailable):
		ServiceUnavailable(w, "Attendance store unavailable")

	// Directory domain errors
	case errors.Is(err, org.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, org.ErrEstablishmentNotFound):
		NotFound(w, "Establishment not found")
	case errors.Is(err, org.ErrUnknownScopeLevel):
		BadRequest(w, "Unknown scope level", nil)

	// Schedule domain errors
	case errors.Is(err, schedule.ErrScheduleNotFound):
		NotFound(w, "Schedule not found")
	case errors.Is(err, schedule.ErrAssignmentNotFound):
		NotFound(w, "Schedule assignment not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
