package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// The attendance_events table carries a partial unique index:
//
//	CREATE UNIQUE INDEX attendance_events_single_exit
//	ON attendance_events (employee_id, date) WHERE type = 'EXIT';
//
// That index, not application code, is what makes duplicate-exit prevention
// hold under concurrent submission.
const uniqueViolationCode = "23505"

type attendanceEventRepository struct {
	db *database.DB
}

func NewAttendanceEventRepository(db *database.DB) attendance.EventRepository {
	return &attendanceEventRepository{db: db}
}

// Append implements attendance.EventRepository.
func (r *attendanceEventRepository) Append(ctx context.Context, event attendance.AttendanceEvent) (string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_events (
			employee_id, date, type, clock_time_minutes, punctuality,
			note, evidence_ref, is_manual
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING id
	`

	var id string
	err := q.QueryRow(ctx, query,
		event.EmployeeID,
		event.Date,
		string(event.Type),
		int(event.ClockTime),
		string(event.Punctuality),
		event.Note,
		event.EvidenceRef,
		event.IsManual,
	).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return "", attendance.ErrDuplicateExit
		}
		return "", storeErr("failed to append attendance event", err)
	}

	return id, nil
}

// ListByEmployeeAndDate implements attendance.EventRepository.
func (r *attendanceEventRepository) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.AttendanceEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, type, clock_time_minutes, punctuality,
			   note, evidence_ref, is_manual, created_at
		FROM attendance_events
		WHERE employee_id = $1
		  AND date = $2
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, storeErr("failed to list attendance events", err)
	}
	defer rows.Close()

	var events []attendance.AttendanceEvent
	for rows.Next() {
		var ev attendance.AttendanceEvent
		var eventType, punctuality string
		var clockMinutes int
		if err := rows.Scan(
			&ev.ID, &ev.EmployeeID, &ev.Date, &eventType, &clockMinutes, &punctuality,
			&ev.Note, &ev.EvidenceRef, &ev.IsManual, &ev.CreatedAt,
		); err != nil {
			return nil, storeErr("failed to scan attendance event", err)
		}
		ev.Type = attendance.EventType(eventType)
		ev.ClockTime = schedule.MinuteOfDay(clockMinutes)
		ev.Punctuality = attendance.Category(punctuality)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate attendance events", err)
	}

	return events, nil
}

// HasExit implements attendance.EventRepository.
func (r *attendanceEventRepository) HasExit(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT 1
		FROM attendance_events
		WHERE employee_id = $1
		  AND date = $2
		  AND type = 'EXIT'
		LIMIT 1
	`

	var one int
	err := q.QueryRow(ctx, query, employeeID, date).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, storeErr("failed to check for exit event", err)
	}
	return true, nil
}

// ListEvidenceRefs implements attendance.EventRepository.
func (r *attendanceEventRepository) ListEvidenceRefs(ctx context.Context, since time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT evidence_ref
		FROM attendance_events
		WHERE evidence_ref IS NOT NULL
		  AND date >= $1
	`

	rows, err := q.Query(ctx, query, since)
	if err != nil {
		return nil, storeErr("failed to list evidence refs", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, storeErr("failed to scan evidence ref", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate evidence refs", err)
	}

	return refs, nil
}
