package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/stats"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/cache"
	"golang.org/x/sync/errgroup"
)

const (
	// Roll-ups are recomputed from raw events on every miss; a short TTL
	// keeps dashboards cheap without noticeable staleness.
	statsCacheTTL = 30 * time.Second

	aggregateConcurrency = 16
)

type AggregatorImpl struct {
	org.DirectoryRepository
	attendance.EventRepository
	schedule.Resolver
	cache  cache.Cache
	logger *slog.Logger
}

func NewAggregator(
	directory org.DirectoryRepository,
	eventRepo attendance.EventRepository,
	resolver schedule.Resolver,
	statsCache cache.Cache,
	logger *slog.Logger,
) *AggregatorImpl {
	return &AggregatorImpl{
		DirectoryRepository: directory,
		EventRepository:     eventRepo,
		Resolver:            resolver,
		cache:               statsCache,
		logger:              logger,
	}
}

// Aggregate implements stats.Aggregator.
func (a *AggregatorImpl) Aggregate(ctx context.Context, scope org.Scope, date time.Time) (stats.ScopeStats, error) {
	key := statsCacheKey(scope, date)

	var cached stats.ScopeStats
	if err := a.cache.GetJSON(ctx, key, &cached); err == nil {
		cached.Scope = scope
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		a.logger.Warn("stats cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	report, err := a.aggregate(ctx, scope, date)
	if err != nil {
		return stats.ScopeStats{}, err
	}

	if err := a.cache.SetJSON(ctx, key, report.Stats, statsCacheTTL); err != nil {
		a.logger.Warn("stats cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	return report.Stats, nil
}

// AggregateWithRows implements stats.Aggregator. Report rows are never
// cached; exports want the freshest per-employee detail.
func (a *AggregatorImpl) AggregateWithRows(ctx context.Context, scope org.Scope, date time.Time) (stats.ScopeReport, error) {
	return a.aggregate(ctx, scope, date)
}

// Breakdown implements stats.Aggregator.
func (a *AggregatorImpl) Breakdown(ctx context.Context, scope org.Scope, date time.Time) ([]stats.ScopeStats, error) {
	var children []org.Scope
	switch scope.Level {
	case org.ScopeCompany:
		sites, err := a.DirectoryRepository.ListSites(ctx, scope.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list sites: %w", err)
		}
		for _, site := range sites {
			children = append(children, org.Scope{Level: org.ScopeSite, ID: site.ID})
		}
	case org.ScopeSite:
		establishments, err := a.DirectoryRepository.ListEstablishments(ctx, scope.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list establishments: %w", err)
		}
		for _, est := range establishments {
			children = append(children, org.Scope{Level: org.ScopeEstablishment, ID: est.ID})
		}
	default:
		// Establishments are leaves
		return nil, org.ErrUnknownScopeLevel
	}

	out := make([]stats.ScopeStats, 0, len(children))
	for _, child := range children {
		childStats, err := a.Aggregate(ctx, child, date)
		if err != nil {
			return nil, err
		}
		out = append(out, childStats)
	}
	return out, nil
}

// aggregate runs the same per-employee pipeline for every scope level: the
// level only changes which employees the directory returns. Each employee
// is classified independently and in parallel; each goroutine writes only
// its own slot of the row slice, so the reduction below needs no locking.
func (a *AggregatorImpl) aggregate(ctx context.Context, scope org.Scope, date time.Time) (stats.ScopeReport, error) {
	employees, err := a.DirectoryRepository.ListActiveEmployees(ctx, scope)
	if err != nil {
		if errors.Is(err, org.ErrEstablishmentNotFound) || errors.Is(err, org.ErrUnknownScopeLevel) {
			return stats.ScopeReport{}, err
		}
		return stats.ScopeReport{}, fmt.Errorf("failed to list employees in scope: %w", err)
	}

	rows := make([]stats.EmployeeDayRow, len(employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(aggregateConcurrency)
	for i, emp := range employees {
		g.Go(func() error {
			rows[i] = a.classifyEmployee(gctx, emp, date)
			return nil
		})
	}
	// Workers never return errors; per-employee failures become absences.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return stats.ScopeReport{}, err
	}

	result := stats.ScopeStats{
		Scope:          scope,
		Date:           date.Format("2006-01-02"),
		TotalEmployees: len(employees),
	}

	totalWorkedMinutes := 0
	for _, row := range rows {
		if row.ArrivalBucket == nil {
			result.Absences++
			continue
		}
		switch *row.ArrivalBucket {
		case attendance.CategoryEarly:
			result.EarlyArrivals++
		case attendance.CategoryOnTime:
			result.OnTimeArrivals++
		case attendance.CategoryLate:
			result.LateArrivals++
		}
		if row.Projection.ExitCategory != nil {
			switch *row.Projection.ExitCategory {
			case attendance.CategoryEarly:
				result.EarlyExits++
			case attendance.CategoryOnTime:
				result.OnTimeExits++
			case attendance.CategoryLate:
				result.LateExits++
			}
		}
		if row.Projection.WorkedMinutes != nil {
			totalWorkedMinutes += *row.Projection.WorkedMinutes
		}
	}
	result.TotalWorkedHours = float64(totalWorkedMinutes) / 60.0

	return stats.ScopeReport{Stats: result, Rows: rows, Date: date}, nil
}

// classifyEmployee computes one employee's row. Any failure along the way
// (resolver error, store error) degrades that employee to an absence; a
// bad record must never abort the whole scope.
func (a *AggregatorImpl) classifyEmployee(ctx context.Context, emp org.Employee, date time.Time) stats.EmployeeDayRow {
	row := stats.EmployeeDayRow{
		EmployeeID:      emp.ID,
		FullName:        emp.FullName,
		EstablishmentID: emp.EstablishmentID,
	}

	sched, err := a.Resolver.Resolve(ctx, emp.ID, date)
	if err != nil {
		a.logger.Warn("schedule resolution failed during aggregation",
			slog.String("employee_id", emp.ID),
			slog.String("error", err.Error()),
		)
		return row
	}
	if sched == nil {
		// No schedule governs this day: the employee counts as absent.
		return row
	}
	row.ScheduleName = &sched.Name

	events, err := a.EventRepository.ListByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		a.logger.Warn("event listing failed during aggregation",
			slog.String("employee_id", emp.ID),
			slog.String("error", err.Error()),
		)
		return row
	}

	row.Projection = attendance.ProjectDay(emp.ID, date, events, sched)
	if row.Projection.EffectiveEntry == nil {
		return row
	}

	// Dashboards distinguish early birds from merely-on-time arrivals,
	// unlike the write path where early collapses into on time.
	bucket := attendance.BucketArrival(sched.EntryTime, sched.ToleranceMinutes, *row.Projection.EffectiveEntry)
	row.ArrivalBucket = &bucket
	return row
}

func statsCacheKey(scope org.Scope, date time.Time) string {
	return fmt.Sprintf("stats:%s:%s:%s", scope.Level, scope.ID, date.Format("2006-01-02"))
}
