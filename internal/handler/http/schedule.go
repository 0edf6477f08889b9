package http

import (
	"net/http"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/clockwise-hq/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ScheduleHandler interface {
	ListAssignments(w http.ResponseWriter, r *http.Request)
	GetEffective(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleRepo schedule.ScheduleRepository
	resolver     schedule.Resolver
}

func NewScheduleHandler(scheduleRepo schedule.ScheduleRepository, resolver schedule.Resolver) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleRepo: scheduleRepo,
		resolver:     resolver,
	}
}

type assignmentResponse struct {
	AssignmentID string           `json:"assignment_id"`
	ValidFrom    string           `json:"valid_from"`
	ValidUntil   *string          `json:"valid_until,omitempty"`
	Schedule     scheduleResponse `json:"schedule"`
}

type scheduleResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	EntryTime        string `json:"entry_time"`
	ExitTime         string `json:"exit_time"`
	ToleranceMinutes int    `json:"tolerance_minutes"`
	Weekdays         []int  `json:"weekdays"`
}

// ListAssignments implements ScheduleHandler. Assignments are returned in
// storage order, the same order the resolver walks them.
func (h *scheduleHandlerImpl) ListAssignments(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	assignments, err := h.scheduleRepo.ListAssignments(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		item := assignmentResponse{
			AssignmentID: a.ID,
			ValidFrom:    a.ValidFrom.Format("2006-01-02"),
			Schedule:     toScheduleResponse(a.Schedule),
		}
		if a.ValidUntil != nil {
			s := a.ValidUntil.Format("2006-01-02")
			item.ValidUntil = &s
		}
		out = append(out, item)
	}

	response.Success(w, out)
}

// GetEffective implements ScheduleHandler. It returns the schedule the
// resolver would apply to the employee on the given date, or null when none
// is assigned.
func (h *scheduleHandlerImpl) GetEffective(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().UTC().Format("2006-01-02")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		response.HandleError(w, attendance.ErrInvalidInput)
		return
	}

	sched, err := h.resolver.Resolve(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if sched == nil {
		response.Success(w, nil)
		return
	}

	resp := toScheduleResponse(*sched)
	response.Success(w, resp)
}

func toScheduleResponse(s schedule.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:               s.ID,
		Name:             s.Name,
		EntryTime:        s.EntryTime.String(),
		ExitTime:         s.ExitTime.String(),
		ToleranceMinutes: s.ToleranceMinutes,
		Weekdays:         s.Weekdays,
	}
}
