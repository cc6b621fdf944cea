/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the internal
  domain model from the external contract. Currency crosses the wire as
  plain JSON numbers; internally everything is decimal.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/types.go: the domain model these mirror
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/brewshift/payout/payroll"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents a directory entry in API traffic (both directions).
type EmployeeDTO struct {
	Name           string   `json:"name"`
	Aliases        []string `json:"aliases"`
	BaseRate       float64  `json:"base_rate"`
	SwitchOverride string   `json:"switch_override,omitempty"`
}

// ReplaceEmployeesRequest is the atomic full-list overwrite.
type ReplaceEmployeesRequest struct {
	Employees []EmployeeDTO `json:"employees"`
}

// =============================================================================
// SCHEDULE PREVIEW
// =============================================================================

// SchedulePreviewDTO is the operator's pre-compute view: the fetched events,
// which employees were recognized on them, and the dates that need tip-pool
// amounts filled in.
type SchedulePreviewDTO struct {
	Events     []payroll.ShiftEvent `json:"events"`
	Recognized []string             `json:"recognized_employees"`
	Dates      []string             `json:"dates_to_fill"`
}

// =============================================================================
// PAYOUT COMPUTATION
// =============================================================================

// WindowPoolsDTO is one day's operator-entered opening/closing tip totals.
type WindowPoolsDTO struct {
	OpeningAmount float64 `json:"opening_amount"`
	ClosingAmount float64 `json:"closing_amount"`
}

// PayoutRequest drives one computation. Events may be supplied inline (the
// engine's native contract) or omitted, in which case they are fetched from
// the calendar for the inclusive [start, end] range. Exactly one tip input
// applies per mode:
// pools for shift_based; daily_tips or tip_payload for daily_total.
type PayoutRequest struct {
	Start string `json:"start"` // YYYY-MM-DD
	End   string `json:"end"`   // YYYY-MM-DD
	Mode  string `json:"mode"`  // "shift_based" (default) or "daily_total"

	// A present-but-empty events array means "inline, nobody worked" and is
	// computed as such; only an absent events key triggers a calendar fetch.
	Events []payroll.ShiftEvent `json:"events,omitempty"`

	Pools      map[string]WindowPoolsDTO `json:"pools,omitempty"`
	DailyTips  map[string]float64        `json:"daily_tips,omitempty"`
	TipPayload string                    `json:"tip_payload,omitempty"`
}

// PayoutRowDTO is one employee's final payout.
type PayoutRowDTO struct {
	Name    string  `json:"name"`
	BasePay float64 `json:"base_pay"`
	Tips    float64 `json:"tips"`
	Total   float64 `json:"total"`
}

// SummaryDTO aggregates the computation.
type SummaryDTO struct {
	Days            int                   `json:"days"`
	TotalBase       float64               `json:"total_base"`
	TotalTips       float64               `json:"total_tips"`
	GrandTotal      float64               `json:"grand_total"`
	ScheduleHeaders []string              `json:"schedule_headers"`
	ScheduleRows    []payroll.ScheduleRow `json:"schedule_rows"`
}

// PayoutResponse is the full computation result.
type PayoutResponse struct {
	Rows     []PayoutRowDTO `json:"rows"`
	Summary  SummaryDTO     `json:"summary"`
	Warnings []string       `json:"warnings,omitempty"`
}

// =============================================================================
// TIP PAYLOAD PARSING
// =============================================================================

// ParseTipsRequest runs the payload parser on its own, for previewing.
type ParseTipsRequest struct {
	Payload string `json:"payload"`
	Start   string `json:"start"` // YYYY-MM-DD, inclusive
	End     string `json:"end"`   // YYYY-MM-DD, inclusive
}

// ParseTipsResponse is the extracted per-day amounts plus parse warnings.
type ParseTipsResponse struct {
	DailyTips map[string]float64 `json:"daily_tips"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(emp payroll.Employee) EmployeeDTO {
	rate, _ := emp.BaseRate.Float64()
	return EmployeeDTO{
		Name:           emp.Name,
		Aliases:        emp.Aliases,
		BaseRate:       rate,
		SwitchOverride: emp.SwitchOverride,
	}
}

func fromEmployeeDTO(dto EmployeeDTO) payroll.Employee {
	return payroll.Employee{
		Name:           dto.Name,
		Aliases:        dto.Aliases,
		BaseRate:       decimal.NewFromFloat(dto.BaseRate),
		SwitchOverride: dto.SwitchOverride,
	}
}

func toPayoutResponse(result *payroll.Result) PayoutResponse {
	rows := make([]PayoutRowDTO, len(result.Rows))
	for i, r := range result.Rows {
		base, _ := r.BasePay.Float64()
		tips, _ := r.Tips.Float64()
		total, _ := r.Total.Float64()
		rows[i] = PayoutRowDTO{Name: r.Name, BasePay: base, Tips: tips, Total: total}
	}

	totalBase, _ := result.Summary.TotalBase.Float64()
	totalTips, _ := result.Summary.TotalTips.Float64()
	grand, _ := result.Summary.GrandTotal.Float64()

	return PayoutResponse{
		Rows: rows,
		Summary: SummaryDTO{
			Days:            result.Summary.Days,
			TotalBase:       totalBase,
			TotalTips:       totalTips,
			GrandTotal:      grand,
			ScheduleHeaders: result.Summary.ScheduleHeaders,
			ScheduleRows:    result.Summary.ScheduleRows,
		},
		Warnings: result.Warnings,
	}
}
