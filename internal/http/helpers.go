package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"water7/internal/core"
	"water7/internal/reports"
	"water7/internal/services"
)

// parseMonthFilter extracts an optional month filter from year/month query
// parameters. Both must be present and valid for a filter to apply.
func parseMonthFilter(r *http.Request) (*reports.MonthFilter, error) {
	yearStr := strings.TrimSpace(r.URL.Query().Get("year"))
	monthStr := strings.TrimSpace(r.URL.Query().Get("month"))
	if yearStr == "" && monthStr == "" {
		return nil, nil
	}
	if yearStr == "" || monthStr == "" {
		return nil, fmt.Errorf("year and month must be provided together")
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1970 || year > 9999 {
		return nil, fmt.Errorf("invalid year %q", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %q", monthStr)
	}

	return &reports.MonthFilter{Year: year, Month: time.Month(month)}, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, dateStr)
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeServiceError maps domain errors onto HTTP statuses. Unknown errors are
// reported as 500 without leaking internals.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *reports.NotFoundError
	var perm *reports.PermissionError

	switch {
	case errors.Is(err, services.ErrPasscodeRejected):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid passcode"})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error()})
	case errors.As(err, &perm):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "permission denied by the data store"})
	case errors.Is(err, core.ErrZeroDate), errors.Is(err, core.ErrNoExpenses):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"request_id", requestIDFrom(r.Context()),
			"method", r.Method,
			"url", r.URL.Path,
			"error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
