package postgresql

import (
	"context"
	"errors"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// ListAssignments implements schedule.ScheduleRepository. Rows come back in
// insertion order; resolution takes the first match and nothing here
// applies any priority ordering on top.
func (r *scheduleRepository) ListAssignments(ctx context.Context, employeeID string) ([]schedule.ScheduleAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT sa.id, sa.employee_id, sa.schedule_id, sa.valid_from, sa.valid_until,
			   sa.created_at, sa.updated_at,
			   s.id, s.name, s.entry_minutes, s.exit_minutes, s.tolerance_minutes,
			   s.weekdays, s.created_at, s.updated_at
		FROM schedule_assignments sa
		JOIN schedules s ON s.id = sa.schedule_id
		WHERE sa.employee_id = $1
		ORDER BY sa.id ASC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, storeErr("failed to list schedule assignments", err)
	}
	defer rows.Close()

	var assignments []schedule.ScheduleAssignment
	for rows.Next() {
		var a schedule.ScheduleAssignment
		var entryMinutes, exitMinutes int
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.ScheduleID, &a.ValidFrom, &a.ValidUntil,
			&a.CreatedAt, &a.UpdatedAt,
			&a.Schedule.ID, &a.Schedule.Name, &entryMinutes, &exitMinutes, &a.Schedule.ToleranceMinutes,
			&a.Schedule.Weekdays, &a.Schedule.CreatedAt, &a.Schedule.UpdatedAt,
		); err != nil {
			return nil, storeErr("failed to scan schedule assignment", err)
		}
		a.Schedule.EntryTime = schedule.MinuteOfDay(entryMinutes)
		a.Schedule.ExitTime = schedule.MinuteOfDay(exitMinutes)
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to iterate schedule assignments", err)
	}

	return assignments, nil
}

// GetSchedule implements schedule.ScheduleRepository.
func (r *scheduleRepository) GetSchedule(ctx context.Context, id string) (schedule.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, entry_minutes, exit_minutes, tolerance_minutes,
			   weekdays, created_at, updated_at
		FROM schedules
		WHERE id = $1
	`

	var s schedule.Schedule
	var entryMinutes, exitMinutes int
	err := q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &entryMinutes, &exitMinutes, &s.ToleranceMinutes,
		&s.Weekdays, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Schedule{}, schedule.ErrScheduleNotFound
		}
		return schedule.Schedule{}, storeErr("failed to get schedule", err)
	}

	s.EntryTime = schedule.MinuteOfDay(entryMinutes)
	s.ExitTime = schedule.MinuteOfDay(exitMinutes)
	return s, nil
}
