package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/stats"
	"github.com/clockwise-hq/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type StatsHandler interface {
	GetCompanyStats(w http.ResponseWriter, r *http.Request)
	GetSiteStats(w http.ResponseWriter, r *http.Request)
	GetEstablishmentStats(w http.ResponseWriter, r *http.Request)
	GetCompanyBreakdown(w http.ResponseWriter, r *http.Request)
	GetSiteBreakdown(w http.ResponseWriter, r *http.Request)
}

type statsHandlerImpl struct {
	aggregator stats.Aggregator
}

func NewStatsHandler(aggregator stats.Aggregator) StatsHandler {
	return &statsHandlerImpl{aggregator: aggregator}
}

// GetCompanyStats implements StatsHandler.
func (h *statsHandlerImpl) GetCompanyStats(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, org.ScopeCompany, chi.URLParam(r, "companyID"))
}

// GetSiteStats implements StatsHandler.
func (h *statsHandlerImpl) GetSiteStats(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, org.ScopeSite, chi.URLParam(r, "siteID"))
}

// GetEstablishmentStats implements StatsHandler.
func (h *statsHandlerImpl) GetEstablishmentStats(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, org.ScopeEstablishment, chi.URLParam(r, "establishmentID"))
}

// GetCompanyBreakdown implements StatsHandler.
func (h *statsHandlerImpl) GetCompanyBreakdown(w http.ResponseWriter, r *http.Request) {
	h.serveBreakdown(w, r, org.ScopeCompany, chi.URLParam(r, "companyID"))
}

// GetSiteBreakdown implements StatsHandler.
func (h *statsHandlerImpl) GetSiteBreakdown(w http.ResponseWriter, r *http.Request) {
	h.serveBreakdown(w, r, org.ScopeSite, chi.URLParam(r, "siteID"))
}

func (h *statsHandlerImpl) serve(w http.ResponseWriter, r *http.Request, level org.ScopeLevel, scopeID string) {
	scope, date, ok := h.scopeAndDate(w, r, level, scopeID)
	if !ok {
		return
	}

	result, err := h.aggregator.Aggregate(r.Context(), scope, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statsHandlerImpl) serveBreakdown(w http.ResponseWriter, r *http.Request, level org.ScopeLevel, scopeID string) {
	scope, date, ok := h.scopeAndDate(w, r, level, scopeID)
	if !ok {
		return
	}

	result, err := h.aggregator.Breakdown(r.Context(), scope, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *statsHandlerImpl) scopeAndDate(w http.ResponseWriter, r *http.Request, level org.ScopeLevel, scopeID string) (org.Scope, time.Time, bool) {
	if strings.TrimSpace(scopeID) == "" {
		response.BadRequest(w, "Scope ID is required", nil)
		return org.Scope{}, time.Time{}, false
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().UTC().Format("2006-01-02")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		response.HandleError(w, attendance.ErrInvalidInput)
		return org.Scope{}, time.Time{}, false
	}

	return org.Scope{Level: level, ID: scopeID}, date, true
}
