package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/user"
	"github.com/clockwise-hq/attendance-backend-go/internal/service/evidence"
	"github.com/go-chi/jwtauth/v5"
)

const evidenceURLExpiry = 24 * time.Hour

type RegistrarImpl struct {
	attendance.EventRepository
	schedule.Resolver
	evidenceService evidence.Service
	tx              attendance.TxRunner
	logger          *slog.Logger
	now             func() time.Time
}

func NewRegistrar(
	eventRepo attendance.EventRepository,
	resolver schedule.Resolver,
	evidenceService evidence.Service,
	tx attendance.TxRunner,
	logger *slog.Logger,
) *RegistrarImpl {
	return &RegistrarImpl{
		EventRepository: eventRepo,
		Resolver:        resolver,
		evidenceService: evidenceService,
		tx:              tx,
		logger:          logger,
		now:             time.Now,
	}
}

// punchContext is the resolved who/when of one submission, after merging
// token claims with any manual-correction overrides.
type punchContext struct {
	employeeID string
	date       time.Time
	observed   schedule.MinuteOfDay
	isManual   bool
}

// resolvePunch merges the access-token claims with the request overrides.
// A request targeting another employee, or carrying an explicit date or
// clock time, is a manual correction and requires the manager role.
func (r *RegistrarImpl) resolvePunch(ctx context.Context, reqEmployeeID string, reqDate, reqObserved *string) (punchContext, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return punchContext{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	tokenEmployeeID, _ := claims["employee_id"].(string)
	role, _ := claims["role"].(string)

	now := r.now().UTC()
	pc := punchContext{
		employeeID: tokenEmployeeID,
		date:       truncateToDay(now),
		observed:   schedule.MinuteOfDayFromTime(now),
	}

	if reqEmployeeID != "" && reqEmployeeID != tokenEmployeeID {
		pc.employeeID = reqEmployeeID
		pc.isManual = true
	}
	if reqDate != nil {
		parsed, err := time.Parse("2006-01-02", *reqDate)
		if err != nil {
			return punchContext{}, attendance.ErrInvalidInput
		}
		pc.date = parsed
		pc.isManual = true
	}
	if reqObserved != nil {
		observed, err := schedule.ParseMinuteOfDay(*reqObserved)
		if err != nil {
			return punchContext{}, attendance.ErrInvalidInput
		}
		pc.observed = observed
		pc.isManual = true
	}

	if pc.isManual && role != string(user.RoleManager) && role != string(user.RoleAdmin) {
		return punchContext{}, user.ErrManagerPrivilegeRequired
	}
	if pc.employeeID == "" {
		return punchContext{}, fmt.Errorf("employee_id claim is missing or invalid")
	}

	return pc, nil
}

// SubmitEntry implements attendance.Registrar.
func (r *RegistrarImpl) SubmitEntry(ctx context.Context, req attendance.SubmitEntryRequest) (attendance.EventResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EventResponse{}, err
	}
	if req.File == nil || req.FileHeader == nil {
		return attendance.EventResponse{}, attendance.ErrMissingEvidence
	}

	pc, err := r.resolvePunch(ctx, req.EmployeeID, req.Date, req.ObservedTime)
	if err != nil {
		return attendance.EventResponse{}, err
	}

	sched, err := r.Resolver.Resolve(ctx, pc.employeeID, pc.date)
	if err != nil {
		return attendance.EventResponse{}, fmt.Errorf("failed to resolve schedule: %w", err)
	}
	if sched == nil {
		return attendance.EventResponse{}, attendance.ErrNoScheduleAssigned
	}

	// An early arrival on the write path is on time: the punch record
	// answers "was this person late", not "when did they show up".
	category := attendance.ClassifyEntry(sched.EntryTime, sched.ToleranceMinutes, pc.observed)

	ref, err := r.evidenceService.SavePunchPhoto(ctx, pc.employeeID, pc.date, req.File, req.FileHeader.Filename, string(attendance.EventEntry))
	if err != nil {
		return attendance.EventResponse{}, fmt.Errorf("%w: %v", attendance.ErrEvidencePersist, err)
	}

	event := attendance.AttendanceEvent{
		EmployeeID:  pc.employeeID,
		Date:        pc.date,
		Type:        attendance.EventEntry,
		ClockTime:   pc.observed,
		Punctuality: category,
		Note:        req.Note,
		EvidenceRef: &ref,
		IsManual:    pc.isManual,
	}

	eventID, err := r.EventRepository.Append(ctx, event)
	if err != nil {
		// The photo is already on disk; remove it so a failed commit
		// leaves no trace.
		if delErr := r.evidenceService.Delete(ctx, ref); delErr != nil {
			r.logger.Warn("failed to delete evidence after aborted entry",
				slog.String("evidence_ref", ref),
				slog.String("error", delErr.Error()),
			)
		}
		return attendance.EventResponse{}, fmt.Errorf("failed to append entry event: %w", err)
	}

	return r.toResponse(ctx, eventID, event), nil
}

// SubmitExit implements attendance.Registrar.
func (r *RegistrarImpl) SubmitExit(ctx context.Context, req attendance.SubmitExitRequest) (attendance.EventResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EventResponse{}, err
	}

	pc, err := r.resolvePunch(ctx, req.EmployeeID, req.Date, req.ObservedTime)
	if err != nil {
		return attendance.EventResponse{}, err
	}

	hasExit, err := r.EventRepository.HasExit(ctx, pc.employeeID, pc.date)
	if err != nil {
		return attendance.EventResponse{}, fmt.Errorf("failed to check existing exit: %w", err)
	}
	if hasExit {
		return attendance.EventResponse{}, attendance.ErrDuplicateExit
	}

	sched, err := r.Resolver.Resolve(ctx, pc.employeeID, pc.date)
	if err != nil {
		return attendance.EventResponse{}, fmt.Errorf("failed to resolve schedule: %w", err)
	}
	if sched == nil {
		return attendance.EventResponse{}, attendance.ErrNoScheduleAssigned
	}

	category := attendance.ClassifyExit(sched.ExitTime, sched.ToleranceMinutes, pc.observed)

	var ref *string
	if req.File != nil && req.FileHeader != nil {
		uploaded, err := r.evidenceService.SavePunchPhoto(ctx, pc.employeeID, pc.date, req.File, req.FileHeader.Filename, string(attendance.EventExit))
		if err != nil {
			return attendance.EventResponse{}, fmt.Errorf("%w: %v", attendance.ErrEvidencePersist, err)
		}
		ref = &uploaded
	}

	event := attendance.AttendanceEvent{
		EmployeeID:  pc.employeeID,
		Date:        pc.date,
		Type:        attendance.EventExit,
		ClockTime:   pc.observed,
		Punctuality: category,
		Note:        req.Note,
		EvidenceRef: ref,
		IsManual:    pc.isManual,
	}

	// The unique index on (employee, date, EXIT) is the real guard; the
	// HasExit check above only gives the common case a clean error before
	// any file write. The recheck and insert share one transaction so both
	// statements see the same snapshot.
	var eventID string
	err = r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := r.EventRepository.HasExit(txCtx, pc.employeeID, pc.date)
		if err != nil {
			return fmt.Errorf("failed to check existing exit: %w", err)
		}
		if exists {
			return attendance.ErrDuplicateExit
		}
		eventID, err = r.EventRepository.Append(txCtx, event)
		return err
	})
	if err != nil {
		if ref != nil {
			if delErr := r.evidenceService.Delete(ctx, *ref); delErr != nil {
				r.logger.Warn("failed to delete evidence after aborted exit",
					slog.String("evidence_ref", *ref),
					slog.String("error", delErr.Error()),
				)
			}
		}
		if errors.Is(err, attendance.ErrDuplicateExit) {
			return attendance.EventResponse{}, attendance.ErrDuplicateExit
		}
		return attendance.EventResponse{}, fmt.Errorf("failed to append exit event: %w", err)
	}

	return r.toResponse(ctx, eventID, event), nil
}

func (r *RegistrarImpl) toResponse(ctx context.Context, eventID string, event attendance.AttendanceEvent) attendance.EventResponse {
	resp := attendance.EventResponse{
		EventID:     eventID,
		EmployeeID:  event.EmployeeID,
		Date:        event.Date.Format("2006-01-02"),
		Type:        string(event.Type),
		ClockTime:   event.ClockTime.String(),
		Punctuality: string(event.Punctuality),
		Note:        event.Note,
		IsManual:    event.IsManual,
	}
	if event.EvidenceRef != nil {
		url, err := r.evidenceService.GetURL(ctx, *event.EvidenceRef, evidenceURLExpiry)
		if err != nil {
			r.logger.Warn("failed to build evidence URL",
				slog.String("evidence_ref", *event.EvidenceRef),
				slog.String("error", err.Error()),
			)
		} else {
			resp.EvidenceURL = &url
		}
	}
	return resp
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LedgerImpl is the read path over the event store.
type LedgerImpl struct {
	attendance.EventRepository
	schedule.Resolver
	directory org.DirectoryRepository
}

func NewLedger(eventRepo attendance.EventRepository, resolver schedule.Resolver, directory org.DirectoryRepository) *LedgerImpl {
	return &LedgerImpl{
		EventRepository: eventRepo,
		Resolver:        resolver,
		directory:       directory,
	}
}

// ProjectDay implements attendance.Ledger. Unknown employees are an error;
// an empty projection would be indistinguishable from a real absence.
func (l *LedgerImpl) ProjectDay(ctx context.Context, employeeID string, date time.Time) (attendance.DayProjection, error) {
	if _, err := l.directory.GetEmployee(ctx, employeeID); err != nil {
		return attendance.DayProjection{}, err
	}

	events, err := l.EventRepository.ListByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.DayProjection{}, fmt.Errorf("failed to list events: %w", err)
	}

	sched, err := l.Resolver.Resolve(ctx, employeeID, date)
	if err != nil {
		return attendance.DayProjection{}, fmt.Errorf("failed to resolve schedule: %w", err)
	}

	return attendance.ProjectDay(employeeID, date, events, sched), nil
}
