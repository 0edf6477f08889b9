package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
	"github.com/clockwise-hq/attendance-backend-go/internal/handler/http/response"
	"github.com/clockwise-hq/attendance-backend-go/internal/service/report"
)

type ReportHandler interface {
	ExportDaily(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.Service
}

func NewReportHandler(reportService report.Service) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

// ExportDaily implements ReportHandler. Scope comes from query params so
// one endpoint serves all three levels.
func (h *reportHandlerImpl) ExportDaily(w http.ResponseWriter, r *http.Request) {
	level := org.ScopeLevel(strings.ToUpper(r.URL.Query().Get("level")))
	scopeID := r.URL.Query().Get("scope_id")
	if scopeID == "" {
		response.BadRequest(w, "scope_id is required", nil)
		return
	}

	switch level {
	case org.ScopeCompany, org.ScopeSite, org.ScopeEstablishment:
	default:
		response.HandleError(w, org.ErrUnknownScopeLevel)
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

	// Build the workbook in memory first so a failed aggregation still
	// gets a proper error response instead of a truncated download.
	var buf bytes.Buffer
	scope := org.Scope{Level: level, ID: scopeID}
	if err := h.reportService.ExportDaily(r.Context(), scope, date, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s-%s.xlsx", strings.ToLower(string(level)), dateStr)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, _ = buf.WriteTo(w)
}
