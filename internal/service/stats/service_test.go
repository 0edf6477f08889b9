package stats

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/clockwise-hq/attendance-backend-go/internal/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	employees      []org.Employee
	byScope        map[org.Scope][]org.Employee
	sites          []org.Site
	establishments []org.Establishment
	err            error
}

func (f *fakeDirectory) GetEmployee(ctx context.Context, id string) (org.Employee, error) {
	return org.Employee{}, org.ErrEmployeeNotFound
}

func (f *fakeDirectory) GetAncestry(ctx context.Context, establishmentID string) (org.Ancestry, error) {
	return org.Ancestry{}, org.ErrEstablishmentNotFound
}

func (f *fakeDirectory) ListActiveEmployees(ctx context.Context, scope org.Scope) ([]org.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.byScope != nil {
		return f.byScope[scope], nil
	}
	return f.employees, nil
}

func (f *fakeDirectory) ListSites(ctx context.Context, companyID string) ([]org.Site, error) {
	return f.sites, nil
}

func (f *fakeDirectory) ListEstablishments(ctx context.Context, siteID string) ([]org.Establishment, error) {
	return f.establishments, nil
}

type fakeEventRepo struct {
	events map[string][]attendance.AttendanceEvent
	errFor map[string]error
}

func (f *fakeEventRepo) Append(ctx context.Context, event attendance.AttendanceEvent) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeEventRepo) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.AttendanceEvent, error) {
	if err := f.errFor[employeeID]; err != nil {
		return nil, err
	}
	return f.events[employeeID], nil
}

func (f *fakeEventRepo) HasExit(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	return false, nil
}

func (f *fakeEventRepo) ListEvidenceRefs(ctx context.Context, since time.Time) ([]string, error) {
	return nil, nil
}

type fakeResolver struct {
	schedules map[string]*schedule.Schedule
	errFor    map[string]error
}

func (f *fakeResolver) Resolve(ctx context.Context, employeeID string, date time.Time) (*schedule.Schedule, error) {
	if err := f.errFor[employeeID]; err != nil {
		return nil, err
	}
	return f.schedules[employeeID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func minute(t *testing.T, clock string) schedule.MinuteOfDay {
	t.Helper()
	m, err := schedule.ParseMinuteOfDay(clock)
	require.NoError(t, err)
	return m
}

func punch(t *testing.T, employeeID string, eventType attendance.EventType, clock string) attendance.AttendanceEvent {
	t.Helper()
	return attendance.AttendanceEvent{
		EmployeeID: employeeID,
		Type:       eventType,
		ClockTime:  minute(t, clock),
	}
}

func dayShift(t *testing.T) *schedule.Schedule {
	t.Helper()
	return &schedule.Schedule{
		ID:               "day",
		Name:             "Day Shift",
		EntryTime:        minute(t, "09:00"),
		ExitTime:         minute(t, "17:00"),
		ToleranceMinutes: 10,
		Weekdays:         []int{1, 2, 3, 4, 5},
	}
}

func employees(ids ...string) []org.Employee {
	out := make([]org.Employee, 0, len(ids))
	for _, id := range ids {
		out = append(out, org.Employee{ID: id, EstablishmentID: "est-1", FullName: "Employee " + id, Active: true})
	}
	return out
}

func TestAggregatePartitionsEmployees(t *testing.T) {
	sched := dayShift(t)
	directory := &fakeDirectory{employees: employees("early", "ontime", "late", "absent")}
	resolver := &fakeResolver{schedules: map[string]*schedule.Schedule{
		"early":  sched,
		"ontime": sched,
		"late":   sched,
		"absent": sched,
	}}
	events := &fakeEventRepo{events: map[string][]attendance.AttendanceEvent{
		"early": {
			punch(t, "early", attendance.EventEntry, "08:30"),
			punch(t, "early", attendance.EventExit, "17:00"),
		},
		"ontime": {
			punch(t, "ontime", attendance.EventEntry, "09:05"),
			punch(t, "ontime", attendance.EventExit, "16:45"),
		},
		"late": {
			punch(t, "late", attendance.EventEntry, "09:20"),
			punch(t, "late", attendance.EventExit, "17:30"),
		},
	}}

	agg := NewAggregator(directory, events, resolver, cache.Noop(), testLogger())

	scope := org.Scope{Level: org.ScopeEstablishment, ID: "est-1"}
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	result, err := agg.Aggregate(context.Background(), scope, date)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalEmployees)
	assert.Equal(t, 1, result.EarlyArrivals)
	assert.Equal(t, 1, result.OnTimeArrivals)
	assert.Equal(t, 1, result.LateArrivals)
	assert.Equal(t, 1, result.Absences)

	// Arrival buckets plus absences cover every employee exactly once
	assert.Equal(t, result.TotalEmployees,
		result.EarlyArrivals+result.OnTimeArrivals+result.LateArrivals+result.Absences)

	// 16:45 is early exit, 17:00 on time, 17:30 late
	assert.Equal(t, 1, result.EarlyExits)
	assert.Equal(t, 1, result.OnTimeExits)
	assert.Equal(t, 1, result.LateExits)

	// 510 + 460 + 490 minutes
	assert.InDelta(t, 1460.0/60.0, result.TotalWorkedHours, 0.0001)
}

func TestAggregateFailuresFoldIntoAbsences(t *testing.T) {
	sched := dayShift(t)
	directory := &fakeDirectory{employees: employees("ok", "resolver-broken", "store-broken", "unscheduled")}
	resolver := &fakeResolver{
		schedules: map[string]*schedule.Schedule{
			"ok":           sched,
			"store-broken": sched,
		},
		errFor: map[string]error{"resolver-broken": errors.New("resolver down")},
	}
	events := &fakeEventRepo{
		events: map[string][]attendance.AttendanceEvent{
			"ok": {punch(t, "ok", attendance.EventEntry, "09:00")},
		},
		errFor: map[string]error{"store-broken": errors.New("store down")},
	}

	agg := NewAggregator(directory, events, resolver, cache.Noop(), testLogger())

	scope := org.Scope{Level: org.ScopeSite, ID: "site-1"}
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	result, err := agg.Aggregate(context.Background(), scope, date)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalEmployees)
	assert.Equal(t, 1, result.OnTimeArrivals)
	assert.Equal(t, 3, result.Absences)
}

func TestAggregateWithRowsKeepsPerEmployeeDetail(t *testing.T) {
	sched := dayShift(t)
	directory := &fakeDirectory{employees: employees("a", "b")}
	resolver := &fakeResolver{schedules: map[string]*schedule.Schedule{"a": sched, "b": sched}}
	events := &fakeEventRepo{events: map[string][]attendance.AttendanceEvent{
		"a": {punch(t, "a", attendance.EventEntry, "08:40")},
	}}

	agg := NewAggregator(directory, events, resolver, cache.Noop(), testLogger())

	scope := org.Scope{Level: org.ScopeCompany, ID: "co-1"}
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	report, err := agg.AggregateWithRows(context.Background(), scope, date)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	// Rows stay in directory order regardless of worker interleaving
	assert.Equal(t, "a", report.Rows[0].EmployeeID)
	assert.Equal(t, "b", report.Rows[1].EmployeeID)

	require.NotNil(t, report.Rows[0].ArrivalBucket)
	assert.Equal(t, attendance.CategoryEarly, *report.Rows[0].ArrivalBucket)
	assert.Nil(t, report.Rows[1].ArrivalBucket)
}

func TestAggregateServesCachedStats(t *testing.T) {
	sched := dayShift(t)
	directory := &fakeDirectory{employees: employees("a")}
	resolver := &fakeResolver{schedules: map[string]*schedule.Schedule{"a": sched}}
	events := &fakeEventRepo{events: map[string][]attendance.AttendanceEvent{
		"a": {punch(t, "a", attendance.EventEntry, "09:00")},
	}}

	agg := NewAggregator(directory, events, resolver, newMemoryCache(), testLogger())

	scope := org.Scope{Level: org.ScopeEstablishment, ID: "est-1"}
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	first, err := agg.Aggregate(context.Background(), scope, date)
	require.NoError(t, err)

	// Mutate the world; the cached roll-up must still be served.
	directory.employees = employees("a", "b", "c")

	second, err := agg.Aggregate(context.Background(), scope, date)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBreakdownRollsUpPerEstablishment(t *testing.T) {
	sched := dayShift(t)
	directory := &fakeDirectory{
		establishments: []org.Establishment{
			{ID: "est-1", SiteID: "site-1", Name: "Floor"},
			{ID: "est-2", SiteID: "site-1", Name: "Warehouse"},
		},
		byScope: map[org.Scope][]org.Employee{
			{Level: org.ScopeEstablishment, ID: "est-1"}: employees("a", "b"),
			{Level: org.ScopeEstablishment, ID: "est-2"}: employees("c"),
		},
	}
	resolver := &fakeResolver{schedules: map[string]*schedule.Schedule{
		"a": sched, "b": sched, "c": sched,
	}}
	events := &fakeEventRepo{events: map[string][]attendance.AttendanceEvent{
		"a": {punch(t, "a", attendance.EventEntry, "09:00")},
		"c": {punch(t, "c", attendance.EventEntry, "09:30")},
	}}

	agg := NewAggregator(directory, events, resolver, cache.Noop(), testLogger())

	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	rows, err := agg.Breakdown(context.Background(), org.Scope{Level: org.ScopeSite, ID: "site-1"}, date)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, org.Scope{Level: org.ScopeEstablishment, ID: "est-1"}, rows[0].Scope)
	assert.Equal(t, 2, rows[0].TotalEmployees)
	assert.Equal(t, 1, rows[0].OnTimeArrivals)
	assert.Equal(t, 1, rows[0].Absences)

	assert.Equal(t, org.Scope{Level: org.ScopeEstablishment, ID: "est-2"}, rows[1].Scope)
	assert.Equal(t, 1, rows[1].TotalEmployees)
	assert.Equal(t, 1, rows[1].LateArrivals)
}

func TestBreakdownChildCountsSumToParentAggregate(t *testing.T) {
	sched := dayShift(t)
	siteScope := org.Scope{Level: org.ScopeSite, ID: "site-1"}
	directory := &fakeDirectory{
		establishments: []org.Establishment{
			{ID: "est-1", SiteID: "site-1", Name: "Floor"},
			{ID: "est-2", SiteID: "site-1", Name: "Warehouse"},
		},
		byScope: map[org.Scope][]org.Employee{
			siteScope: employees("a", "b", "c"),
			{Level: org.ScopeEstablishment, ID: "est-1"}: employees("a", "b"),
			{Level: org.ScopeEstablishment, ID: "est-2"}: employees("c"),
		},
	}
	resolver := &fakeResolver{schedules: map[string]*schedule.Schedule{
		"a": sched, "b": sched, "c": sched,
	}}
	events := &fakeEventRepo{events: map[string][]attendance.AttendanceEvent{
		"a": {punch(t, "a", attendance.EventEntry, "09:00")},
		"c": {punch(t, "c", attendance.EventEntry, "08:30")},
	}}

	agg := NewAggregator(directory, events, resolver, cache.Noop(), testLogger())

	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	parent, err := agg.Aggregate(context.Background(), siteScope, date)
	require.NoError(t, err)
	children, err := agg.Breakdown(context.Background(), siteScope, date)
	require.NoError(t, err)

	var total, early, onTime, late, absences int
	for _, child := range children {
		total += child.TotalEmployees
		early += child.EarlyArrivals
		onTime += child.OnTimeArrivals
		late += child.LateArrivals
		absences += child.Absences
	}
	assert.Equal(t, parent.TotalEmployees, total)
	assert.Equal(t, parent.EarlyArrivals, early)
	assert.Equal(t, parent.OnTimeArrivals, onTime)
	assert.Equal(t, parent.LateArrivals, late)
	assert.Equal(t, parent.Absences, absences)
}

func TestBreakdownRejectsLeafScope(t *testing.T) {
	agg := NewAggregator(&fakeDirectory{}, &fakeEventRepo{}, &fakeResolver{}, cache.Noop(), testLogger())

	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	_, err := agg.Breakdown(context.Background(), org.Scope{Level: org.ScopeEstablishment, ID: "est-1"}, date)

	assert.ErrorIs(t, err, org.ErrUnknownScopeLevel)
}

// newMemoryCache is a map-backed cache.Cache for tests.
type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}
