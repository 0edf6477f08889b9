package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	SubmitEntry(w http.ResponseWriter, r *http.Request)
	SubmitExit(w http.ResponseWriter, r *http.Request)
	GetDay(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	registrar attendance.Registrar
	ledger    attendance.Ledger
}

func NewAttendanceHandler(registrar attendance.Registrar, ledger attendance.Ledger) AttendanceHandler {
	return &attendanceHandlerImpl{
		registrar: registrar,
		ledger:    ledger,
	}
}

// SubmitEntry implements AttendanceHandler.
func (h *attendanceHandlerImpl) SubmitEntry(w http.ResponseWriter, r *http.Request) {
	var req attendance.SubmitEntryRequest

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	// The 'data' field is optional on a plain self-punch; it carries the
	// manual-correction overrides when present.
	if dataJSON := r.FormValue("data"); dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
			slog.Error("Failed to unmarshal JSON data", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	file, fileHeader, err := r.FormFile("photo")
	if err != nil {
		if err == http.ErrMissingFile {
			response.HandleError(w, attendance.ErrMissingEvidence)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	req.File = file
	req.FileHeader = fileHeader

	result, err := h.registrar.SubmitEntry(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Entry registered", result)
}

// SubmitExit implements AttendanceHandler.
func (h *attendanceHandlerImpl) SubmitExit(w http.ResponseWriter, r *http.Request) {
	var req attendance.SubmitExitRequest

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	if dataJSON := r.FormValue("data"); dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
			slog.Error("Failed to unmarshal JSON data", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	// Photo is optional on exit
	file, fileHeader, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		req.File = file
		req.FileHeader = fileHeader
	} else if err != http.ErrMissingFile {
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}

	result, err := h.registrar.SubmitExit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Exit registered", result)
}

// GetDay implements AttendanceHandler. It serves the recomputed day
// projection for one employee and date.
func (h *attendanceHandlerImpl) GetDay(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().UTC().Format("2006-01-02")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		response.HandleError(w, attendance.ErrInvalidInput)
		return
	}

	projection, err := h.ledger.ProjectDay(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, toProjectionResponse(projection))
}

func toProjectionResponse(p attendance.DayProjection) attendance.ProjectionResponse {
	resp := attendance.ProjectionResponse{
		EmployeeID: p.EmployeeID,
		Date:       p.Date.Format("2006-01-02"),
	}
	if p.EffectiveEntry != nil {
		s := p.EffectiveEntry.String()
		resp.EffectiveEntry = &s
	}
	if p.EffectiveExit != nil {
		s := p.EffectiveExit.String()
		resp.EffectiveExit = &s
	}
	if p.EntryCategory != nil {
		s := string(*p.EntryCategory)
		resp.EntryCategory = &s
	}
	if p.ExitCategory != nil {
		s := string(*p.ExitCategory)
		resp.ExitCategory = &s
	}
	if p.WorkedMinutes != nil {
		m := *p.WorkedMinutes
		resp.WorkedMinutes = &m
	}
	return resp
}
