package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"testing"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventRepo struct {
	appended  []attendance.AttendanceEvent
	appendErr error
	hasExit   bool
	events    []attendance.AttendanceEvent
}

func (f *fakeEventRepo) Append(ctx context.Context, event attendance.AttendanceEvent) (string, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	f.appended = append(f.appended, event)
	return fmt.Sprintf("event-%d", len(f.appended)), nil
}

func (f *fakeEventRepo) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.AttendanceEvent, error) {
	return f.events, nil
}

func (f *fakeEventRepo) HasExit(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	return f.hasExit, nil
}

func (f *fakeEventRepo) ListEvidenceRefs(ctx context.Context, since time.Time) ([]string, error) {
	return nil, nil
}

type fakeResolver struct {
	sched *schedule.Schedule
	err   error
}

func (f *fakeResolver) Resolve(ctx context.Context, employeeID string, date time.Time) (*schedule.Schedule, error) {
	return f.sched, f.err
}

type fakeEvidence struct {
	saved   []string
	deleted []string
	saveErr error
}

func (f *fakeEvidence) SavePunchPhoto(ctx context.Context, employeeID string, date time.Time, file io.Reader, filename string, kind string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	ref := fmt.Sprintf("evidence/%s/%s-%s.jpg", date.Format("2006-01-02"), employeeID, kind)
	f.saved = append(f.saved, ref)
	return ref, nil
}

func (f *fakeEvidence) Delete(ctx context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeEvidence) GetURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	return "http://localhost:8080/uploads/" + ref, nil
}

func (f *fakeEvidence) ListRefs(ctx context.Context, before time.Time) ([]string, error) {
	return nil, nil
}

type fakeDirectory struct {
	employees map[string]org.Employee
}

func (f *fakeDirectory) GetEmployee(ctx context.Context, id string) (org.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return org.Employee{}, org.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeDirectory) GetAncestry(ctx context.Context, establishmentID string) (org.Ancestry, error) {
	return org.Ancestry{}, nil
}

func (f *fakeDirectory) ListActiveEmployees(ctx context.Context, scope org.Scope) ([]org.Employee, error) {
	return nil, nil
}

func (f *fakeDirectory) ListSites(ctx context.Context, companyID string) ([]org.Site, error) {
	return nil, nil
}

func (f *fakeDirectory) ListEstablishments(ctx context.Context, siteID string) ([]org.Establishment, error) {
	return nil, nil
}

// fakeTx runs fn on the caller's context; the real runner wraps it in a
// database transaction.
type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
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

func authedContext(t *testing.T, employeeID string, role user.Role) context.Context {
	t.Helper()
	tok := jwt.New()
	require.NoError(t, tok.Set("employee_id", employeeID))
	require.NoError(t, tok.Set("role", string(role)))
	require.NoError(t, tok.Set("type", "access"))
	return jwtauth.NewContext(context.Background(), tok, nil)
}

func photo() (io.Reader, *multipart.FileHeader) {
	return bytes.NewReader([]byte("jpeg bytes")), &multipart.FileHeader{Filename: "punch.jpg"}
}

// newTestRegistrar pins the clock to 2025-03-03 09:05 UTC, a Monday.
func newTestRegistrar(repo *fakeEventRepo, resolver *fakeResolver, evidence *fakeEvidence) *RegistrarImpl {
	r := NewRegistrar(repo, resolver, evidence, fakeTx{}, testLogger())
	r.now = func() time.Time {
		return time.Date(2025, 3, 3, 9, 5, 0, 0, time.UTC)
	}
	return r
}

func TestSubmitEntryRequiresEvidence(t *testing.T) {
	repo := &fakeEventRepo{}
	registrar := newTestRegistrar(repo, &fakeResolver{sched: dayShift(t)}, &fakeEvidence{})

	ctx := authedContext(t, "emp-1", user.RoleEmployee)
	_, err := registrar.SubmitEntry(ctx, attendance.SubmitEntryRequest{})

	assert.ErrorIs(t, err, attendance.ErrMissingEvidence)
	assert.Empty(t, repo.appended)
}

func TestSubmitEntryNoScheduleAssigned(t *testing.T) {
	repo := &fakeEventRepo{}
	evidence := &fakeEvidence{}
	registrar := newTestRegistrar(repo, &fakeResolver{sched: nil}, evidence)

	file, header := photo()
	ctx := authedContext(t, "emp-1", user.RoleEmployee)
	_, err := registrar.SubmitEntry(ctx, attendance.SubmitEntryRequest{File: file, FileHeader: header})

	assert.ErrorIs(t, err, attendance.ErrNoScheduleAssigned)
	assert.Empty(t, repo.appended)
	// Nothing was written, so there is nothing to compensate
	assert.Empty(t, evidence.saved)
	assert.Empty(t, evidence.deleted)
}

func TestSubmitEntryCommits(t *testing.T) {
	repo := &fakeEventRepo{}
	evidence := &fakeEvidence{}
	registrar := newTestRegistrar(repo, &fakeResolver{sched: dayShift(t)}, evidence)

	file, header := photo()
	ctx := authedContext(t, "emp-1", user.RoleEmployee)
	resp, err := registrar.SubmitEntry(ctx, attendance.SubmitEntryRequest{File: file, FileHeader: header})

	require.NoError(t, err)
	assert.Equal(t, "emp-1", resp.EmployeeID)
	assert.Equal(t, "ENTRY", resp.Type)
	assert.Equal(t, "09:05", resp.ClockTime)
	assert.Equal(t, "ON_TIME", resp.Punctuality)
	assert.False(t, resp.IsManual)
	require.NotNil(t, resp.EvidenceURL)

	require.Len(t, repo.appended, 1)
	require.NotNil(t, repo.appended[0].EvidenceRef)
	assert.Empty(t, evidence.deleted)
}

func TestSubmitEntryDeletesEvidenceWhenAppendFails(t *testing.T) {
	repo := &fakeEventRepo{appendErr: errors.New("insert failed")}
	evidence := &fakeEvidence{}
	registrar := newTestRegistrar(repo, &fakeResolver{sched: dayShift(t)}, evidence)

	file, header := photo()
	ctx := authedContext(t, "emp-1", user.RoleEmployee)
	_, err := registrar.SubmitEntry(ctx, attendance.SubmitEntryRequest{File: file, FileHeader: header})

	require.Error(t, err)
	require.Len(t, evidence.saved, 1)
	require.Len(t, evidence.deleted, 1)
	assert.Equal(t, evidence.saved[0], evidence.deleted[0])
}

func TestSubmitEntryManualCorrectionRequiresManager(t *testing.T) {
	repo := &fakeEventRepo{}
	registrar := newTestRegistrar(repo, &fakeResolver{sched: dayShift(t)}, &fakeEvidence{})

	date := "2025-03-03"
	observed := "08:45"
	file, header := photo()
	req := attendance.SubmitEntryRequest{
		EmployeeID:   "emp-2",
		Date:         &date,
		ObservedTime: &observed,
		File:         file,
		FileHeader:   header,
	}

	ctx := authedContext(t, "emp-1", user.RoleEmployee)
	_, err := registrar.SubmitEntry(ctx, req)
	assert.ErrorIs(t, err, user.ErrManagerPrivilegeRequired)

	file, header = photo()
	req.File = file
	req.FileHeader = header
	ctx = authedContext(t, "mgr-1", user.RoleManager)
	resp, err := registrar.SubmitEntry(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "emp-2", resp.EmployeeID)
	assert.Equal(t, "08:45", resp.ClockTime)
	assert.True(t, resp.IsManual)
}

func TestSubmitExitDuplicate(t *testing.T) {
	repo := &fakeEventRepo{hasExit: true}
	registrar := newTestRegistrar(repo, &fakeResolver{sched: dayShift(t)}, &fakeEvidence{})

	ctx := authedContext(t, "emp-1", user.RoleEmployee)
	_, err := registrar.SubmitExit(ctx, attendance.SubmitExitRequest{})

	assert.ErrorIs(t, err, attendance.ErrDuplicateExit)
	assert.Empty(t, repo.appended)
}

func TestSubmitExitDuplicateUnderRace(t *testing.T) {
	// HasExit saw nothing, but the insert hit the unique index: a
	// concurrent submission won.
	repo := &fakeEventRepo{hasExit: false, appendErr: attendance.ErrDuplicateExit}
	registrar := newTestRegistrar(repo, &fakeResolver{sched: dayShift(t)}, &fakeEvidence{})

	ctx := authedContext(t, "emp-1", user.RoleEmployee)
	_, err := registrar.SubmitExit(ctx, attendance.SubmitExitRequest{})

	assert.ErrorIs(t, err, attendance.ErrDuplicateExit)
}

func TestSubmitExitWithoutPhotoCommits(t *testing.T) {
	repo := &fakeEventRepo{}
	evidence := &fakeEvidence{}
	registrar := newTestRegistrar(repo, &fakeResolver{sched: dayShift(t)}, evidence)

	ctx := authedContext(t, "emp-1", user.RoleEmployee)
	resp, err := registrar.SubmitExit(ctx, attendance.SubmitExitRequest{})

	require.NoError(t, err)
	assert.Equal(t, "EXIT", resp.Type)
	// 09:05 against a 17:00 scheduled exit is an early leave
	assert.Equal(t, "EARLY", resp.Punctuality)
	assert.Nil(t, resp.EvidenceURL)
	assert.Empty(t, evidence.saved)
	require.Len(t, repo.appended, 1)
	assert.Nil(t, repo.appended[0].EvidenceRef)
}

func TestProjectDayReadsThroughResolver(t *testing.T) {
	sched := dayShift(t)
	repo := &fakeEventRepo{events: []attendance.AttendanceEvent{
		{EmployeeID: "emp-1", Type: attendance.EventEntry, ClockTime: minute(t, "08:55")},
		{EmployeeID: "emp-1", Type: attendance.EventExit, ClockTime: minute(t, "17:05")},
	}}
	directory := &fakeDirectory{employees: map[string]org.Employee{
		"emp-1": {ID: "emp-1", FullName: "Test Employee", Active: true},
	}}
	ledger := NewLedger(repo, &fakeResolver{sched: sched}, directory)

	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	p, err := ledger.ProjectDay(context.Background(), "emp-1", date)

	require.NoError(t, err)
	require.NotNil(t, p.EffectiveEntry)
	require.NotNil(t, p.EffectiveExit)
	require.NotNil(t, p.WorkedMinutes)
	assert.Equal(t, 490, *p.WorkedMinutes)
	require.NotNil(t, p.EntryCategory)
	assert.Equal(t, attendance.CategoryOnTime, *p.EntryCategory)
	require.NotNil(t, p.ExitCategory)
	assert.Equal(t, attendance.CategoryOnTime, *p.ExitCategory)
}

func TestProjectDayUnknownEmployee(t *testing.T) {
	ledger := NewLedger(&fakeEventRepo{}, &fakeResolver{sched: dayShift(t)}, &fakeDirectory{})

	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	_, err := ledger.ProjectDay(context.Background(), "ghost", date)

	assert.ErrorIs(t, err, org.ErrEmployeeNotFound)
}
