package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"water7/internal/core"
	"water7/internal/reports"
)

// passcodeHeader carries the shared passcode on mutating requests.
const passcodeHeader = "X-Passcode"

type expensePayload struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type createReportRequest struct {
	Date       string           `json:"date"`
	WaterSales string           `json:"waterSales"`
	SoapSales  string           `json:"soapSales"`
	Expenses   []expensePayload `json:"expenses"`
}

type updateReportRequest struct {
	Date       *string           `json:"date"`
	WaterSales *string           `json:"waterSales"`
	SoapSales  *string           `json:"soapSales"`
	Expenses   *[]expensePayload `json:"expenses"`
}

func toExpenses(payload []expensePayload) []core.Expense {
	out := make([]core.Expense, len(payload))
	for i, e := range payload {
		out[i] = core.Expense{
			ID:          e.ID,
			Description: sanitizeInput(e.Description),
			Amount:      sanitizeInput(e.Amount),
		}
	}
	return out
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMonthFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	list, err := s.svc.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []core.Report{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, want YYYY-MM-DD"})
		return
	}

	draft := core.Draft{
		Date:       date,
		WaterSales: sanitizeInput(req.WaterSales),
		SoapSales:  sanitizeInput(req.SoapSales),
		Expenses:   toExpenses(req.Expenses),
	}

	report, err := s.svc.Create(r.Context(), r.Header.Get(passcodeHeader), draft)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOverview(report.Date)
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	var req updateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	patch := core.Patch{}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, want YYYY-MM-DD"})
			return
		}
		patch.Date = &date
	}
	if req.WaterSales != nil {
		v := sanitizeInput(*req.WaterSales)
		patch.WaterSales = &v
	}
	if req.SoapSales != nil {
		v := sanitizeInput(*req.SoapSales)
		patch.SoapSales = &v
	}
	if req.Expenses != nil {
		expenses := toExpenses(*req.Expenses)
		patch.Expenses = &expenses
	}

	// A date change can move the report between months; remember the current
	// month so its cached aggregate is dropped too.
	var previousDate time.Time
	if patch.Date != nil {
		if current, err := s.svc.Get(r.Context(), r.PathValue("id")); err == nil {
			previousDate = current.Date
		}
	}

	report, err := s.svc.Update(r.Context(), r.Header.Get(passcodeHeader), r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateOverview(report.Date)
	s.invalidateOverview(previousDate)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Best effort lookup so the overview cache entry for the report's month
	// can be dropped after the delete.
	var reportDate time.Time
	if report, err := s.svc.Get(r.Context(), id); err == nil {
		reportDate = report.Date
	}

	if err := s.svc.Delete(r.Context(), r.Header.Get(passcodeHeader), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if !reportDate.IsZero() {
		s.invalidateOverview(reportDate)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReportText(w http.ResponseWriter, r *http.Request) {
	text, err := s.svc.SummaryText(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// Overview aggregates one month of reports.
type Overview struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	ReportCount   int     `json:"reportCount"`
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetIncome     float64 `json:"netIncome"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMonthFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if filter == nil {
		now := time.Now().UTC()
		filter = &reports.MonthFilter{Year: now.Year(), Month: now.Month()}
	}

	key := overviewKey(filter.Year, filter.Month)
	if data, found := s.overviewCache.Get(key); found {
		slog.DebugContext(r.Context(), "Overview cache hit", "year", filter.Year, "month", int(filter.Month))
		writeJSON(w, http.StatusOK, data)
		return
	}

	list, err := s.svc.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	overview := Overview{Year: filter.Year, Month: int(filter.Month), ReportCount: len(list)}
	for _, report := range list {
		overview.TotalIncome += report.TotalIncome
		overview.TotalExpenses += report.TotalExpenses
		overview.NetIncome += report.NetIncome
	}

	s.overviewCache.Set(key, overview)
	writeJSON(w, http.StatusOK, overview)
}

type verifyPasscodeRequest struct {
	Passcode string `json:"passcode"`
}

type verifyPasscodeResponse struct {
	Valid bool `json:"valid"`
}

func (s *Server) handleVerifyPasscode(w http.ResponseWriter, r *http.Request) {
	var req verifyPasscodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, verifyPasscodeResponse{
		Valid: s.svc.VerifyPasscode(r.Context(), req.Passcode),
	})
}

func overviewKey(year int, month time.Month) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(int(month))
}

func (s *Server) invalidateOverview(date time.Time) {
	if date.IsZero() {
		return
	}
	date = date.UTC()
	s.overviewCache.Delete(overviewKey(date.Year(), date.Month()))
}
