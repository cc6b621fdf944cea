/*
handlers.go - HTTP API handlers for the payout service

PURPOSE:
  Exposes the allocation engine via REST. Handles HTTP request/response,
  JSON serialization, and delegates all semantics to the payroll package.

ENDPOINTS:
  Employees:
    GET  /api/employees        List the directory
    PUT  /api/employees        Atomic full-list replace

  Schedule:
    GET  /api/schedule         Fetch events for a range; preview who was
                               recognized and which dates need pool amounts

  Payouts:
    POST /api/payouts          Compute payouts (shift_based or daily_total)

  Tips:
    POST /api/tips/parse       Parse pasted tip payload text

REQUEST FLOW:
  1. Parse HTTP request
  2. Load employee directory snapshot
  3. Build an Engine for this call and run it
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (payroll.IsClientError)
  - 502: Calendar fetch failures
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The service is meant to run on a trusted network for a
  single shop's operator.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brewshift/payout/payroll"
)

// EventSource fetches shift events for a time range. Implemented by
// gcal.Client; nil when no calendar is configured.
type EventSource interface {
	FetchEvents(ctx context.Context, timeMin, timeMax time.Time) ([]payroll.ShiftEvent, error)
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Config carries the shop-wide engine settings.
type Config struct {
	Timezone    string // IANA zone, "" = UTC
	OpenTime    string // "HH:MM"
	SwitchTime  string // "HH:MM"
	CloseTime   string // "HH:MM"
	Unallocated payroll.UnallocatedPolicy
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Directory payroll.Directory
	Events    EventSource

	normalizer  *payroll.Normalizer
	boundaries  payroll.Boundaries
	location    *time.Location
	unallocated payroll.UnallocatedPolicy
}

// NewHandler validates the configuration once and builds the handler.
func NewHandler(dir payroll.Directory, events EventSource, cfg Config) (*Handler, error) {
	normalizer, err := payroll.NewNormalizer(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	boundaries, err := payroll.ParseBoundaries(cfg.OpenTime, cfg.SwitchTime, cfg.CloseTime)
	if err != nil {
		return nil, err
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, &payroll.ConfigurationError{Field: "timezone", Cause: err}
		}
	}

	return &Handler{
		Directory:   dir,
		Events:      events,
		normalizer:  normalizer,
		boundaries:  boundaries,
		location:    loc,
		unallocated: cfg.Unallocated,
	}, nil
}

// engineFor builds a per-request engine over a directory snapshot.
func (h *Handler) engineFor(employees []payroll.Employee) *payroll.Engine {
	return &payroll.Engine{
		Employees:   employees,
		Normalizer:  h.normalizer,
		Boundaries:  h.boundaries,
		Unallocated: h.unallocated,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the directory in stored order.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Directory.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, emp := range employees {
		dtos[i] = toEmployeeDTO(emp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ReplaceEmployees atomically overwrites the full directory.
func (h *Handler) ReplaceEmployees(w http.ResponseWriter, r *http.Request) {
	var req ReplaceEmployeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	employees := make([]payroll.Employee, len(req.Employees))
	seen := make(map[string]bool, len(req.Employees))
	for i, dto := range req.Employees {
		if strings.TrimSpace(dto.Name) == "" {
			writeError(w, http.StatusBadRequest, "Employee name must not be empty", nil)
			return
		}
		lower := strings.ToLower(dto.Name)
		if seen[lower] {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Duplicate employee name %q", dto.Name), nil)
			return
		}
		seen[lower] = true
		if dto.BaseRate < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Negative base rate for %q", dto.Name), nil)
			return
		}
		if dto.SwitchOverride != "" {
			if _, err := payroll.ParseTimeOfDay(dto.SwitchOverride); err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid switch_override for %q", dto.Name), err)
				return
			}
		}
		employees[i] = fromEmployeeDTO(dto)
	}

	if err := h.Directory.Replace(r.Context(), employees); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, emp := range employees {
		dtos[i] = toEmployeeDTO(emp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SCHEDULE PREVIEW
// =============================================================================

// SchedulePreview fetches events for ?start&end and reports which employees
// the matcher recognizes plus the dates needing tip amounts.
func (h *Handler) SchedulePreview(w http.ResponseWriter, r *http.Request) {
	startDay, endDay, err := h.parseRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	events, ok := h.fetchEvents(w, r.Context(), startDay, endDay)
	if !ok {
		return
	}

	employees, err := h.Directory.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	recognized := make(map[string]bool)
	for _, ev := range events {
		for _, emp := range payroll.MatchEmployees(ev.Title, ev.Attendees, employees) {
			recognized[emp.Name] = true
		}
	}
	names := make([]string, 0, len(recognized))
	for name := range recognized {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	// Inclusive: the end day itself gets a pool input row.
	var dates []string
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}

	writeJSON(w, http.StatusOK, SchedulePreviewDTO{
		Events:     events,
		Recognized: names,
		Dates:      dates,
	})
}

// =============================================================================
// PAYOUT COMPUTATION
// =============================================================================

// ComputePayouts runs one engine invocation.
func (h *Handler) ComputePayouts(w http.ResponseWriter, r *http.Request) {
	var req PayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	events := req.Events
	if events == nil {
		startDay, endDay, err := h.parseRange(req.Start, req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range", err)
			return
		}
		var ok bool
		events, ok = h.fetchEvents(w, r.Context(), startDay, endDay)
		if !ok {
			return
		}
	}

	employees, err := h.Directory.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	engine := h.engineFor(employees)

	var (
		result       *payroll.Result
		parseWarning []string
	)
	switch req.Mode {
	case "", "shift_based":
		pools := make(map[string]payroll.WindowPools, len(req.Pools))
		for date, p := range req.Pools {
			pools[date] = payroll.WindowPools{
				Opening: decimal.NewFromFloat(p.OpeningAmount),
				Closing: decimal.NewFromFloat(p.ClosingAmount),
			}
		}
		result, err = engine.ComputeShiftBased(events, pools)

	case "daily_total":
		daily := make(map[string]decimal.Decimal, len(req.DailyTips))
		for date, amount := range req.DailyTips {
			daily[date] = decimal.NewFromFloat(amount)
		}
		if req.TipPayload != "" {
			startDay, endDay, rangeErr := h.parseRange(req.Start, req.End)
			if rangeErr != nil {
				writeError(w, http.StatusBadRequest, "Invalid date range", rangeErr)
				return
			}
			parsed, warnings := payroll.ParseTipPayload(req.TipPayload, startDay, endDay)
			parseWarning = warnings
			for date, amount := range parsed {
				daily[date] = amount
			}
		}
		result, err = engine.ComputeDailyTotal(events, daily)

	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown mode %q", req.Mode), nil)
		return
	}

	if err != nil {
		status := http.StatusInternalServerError
		if payroll.IsClientError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Computation failed", err)
		return
	}

	result.Warnings = append(parseWarning, result.Warnings...)
	writeJSON(w, http.StatusOK, toPayoutResponse(result))
}

// =============================================================================
// TIP PAYLOAD PARSING
// =============================================================================

// ParseTips runs the payload parser standalone, for previewing amounts
// before computing.
func (h *Handler) ParseTips(w http.ResponseWriter, r *http.Request) {
	var req ParseTipsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	startDay, endDay, err := h.parseRange(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	daily, warnings := payroll.ParseTipPayload(req.Payload, startDay, endDay)
	out := make(map[string]float64, len(daily))
	for date, amount := range daily {
		f, _ := amount.Float64()
		out[date] = f
	}

	writeJSON(w, http.StatusOK, ParseTipsResponse{DailyTips: out, Warnings: warnings})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseRange parses start/end date strings. Both ends are inclusive; an end
// before start is clamped to start, yielding a one-day range.
func (h *Handler) parseRange(start, end string) (time.Time, time.Time, error) {
	startDay, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	endDay, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	if endDay.Before(startDay) {
		endDay = startDay
	}
	return startDay, endDay, nil
}

// fetchEvents pulls events from the calendar for the inclusive [startDay,
// endDay] range in the configured zone. Writes the error response itself when
// it fails.
func (h *Handler) fetchEvents(w http.ResponseWriter, ctx context.Context, startDay, endDay time.Time) ([]payroll.ShiftEvent, bool) {
	if h.Events == nil {
		writeError(w, http.StatusBadRequest, "No calendar configured; supply events inline", nil)
		return nil, false
	}

	timeMin := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, h.location)
	timeMax := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 0, 0, 0, 0, h.location).AddDate(0, 0, 1)

	events, err := h.Events.FetchEvents(ctx, timeMin, timeMax)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Calendar fetch failed", err)
		return nil, false
	}
	return events, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := ErrorResponse{Error: msg}
	if err != nil {
		body.Error = fmt.Sprintf("%s: %v", msg, err)
	}
	writeJSON(w, status, body)
}
