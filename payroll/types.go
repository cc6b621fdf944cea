/*
Package payroll is the wage and tip allocation engine.

PURPOSE:
  Given a set of calendar-derived shift events, the employee directory, and
  operator-entered tip pools, this package computes each employee's flat base
  pay and their weighted share of the pooled tips, plus a display-only
  schedule matrix for operator review.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: directory entry (name, match aliases, per-shift base rate)
  - ShiftEvent: one calendar event, start/end kept as raw strings until the
    Normalizer turns them into comparable local instants
  - Attendee: normalized attendee representation (email + response status);
    accepts both the plain-string and object wire forms
  - WindowPools / PayoutRow / Summary / Result: engine inputs and outputs

DESIGN PRINCIPLES:
  1. Purity: every computation is a function of its inputs; a call owns its
     accumulators, so concurrent invocations are safe.
  2. Precision: currency uses decimal.Decimal, rounded to 2 places only when
     rows are shaped, never mid-accumulation.
  3. Ingestion normalization: heterogeneous wire shapes (all-day vs timestamp
     starts, string vs object attendees) are resolved at the boundary, before
     any matching or bucketing runs.

SEE ALSO:
  - engine.go: the allocation engine itself
  - coverage.go: hour-quantized effective-hours computation
  - match.go: event-to-employee matching
*/
package payroll

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MustParseDecimal parses a decimal string, returning zero on failure.
// Intended for literals in configuration and tests.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// EMPLOYEE - Directory entry
// =============================================================================

// Employee is one directory entry. Names are unique and case-preserved;
// sorting and lookups compare them case-insensitively.
type Employee struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`

	// BaseRate is paid once per shift the employee is matched to,
	// independent of shift length and of who else works it.
	BaseRate decimal.Decimal `json:"base_rate"`

	// SwitchOverride is a per-employee alternate opening/closing boundary
	// ("HH:MM"). It is persisted and round-tripped but the distribution
	// algorithm applies the shop-wide boundary to everyone.
	SwitchOverride string `json:"switch_override,omitempty"`
}

// =============================================================================
// SHIFT EVENT - Calendar input
// =============================================================================

// ShiftEvent is one scheduled block of time sourced from the calendar.
// Start and End stay in their wire form (RFC 3339 timestamp or bare
// YYYY-MM-DD for all-day events) until the Normalizer parses them.
type ShiftEvent struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Start     string     `json:"start"`
	End       string     `json:"end"`
	Attendees []Attendee `json:"attendees,omitempty"`
}

// Attendee is the single normalized attendee representation. The calendar
// API sometimes delivers attendees as plain email strings and sometimes as
// objects carrying an email and a response status; both forms decode into
// this struct. ResponseStatus is carried but never consulted by matching.
type Attendee struct {
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

// UnmarshalJSON accepts either a bare string ("bob@shop.com") or an object
// ({"email": "bob@shop.com", "responseStatus": "accepted"}).
func (a *Attendee) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Email = s
		a.ResponseStatus = ""
		return nil
	}
	type wire Attendee
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = Attendee(w)
	return nil
}

// =============================================================================
// TIP POOLS - Operator input
// =============================================================================

// WindowPools holds one day's operator-entered tip totals for shift-based
// distribution. Zero amounts mean "nothing to distribute", not "unknown".
type WindowPools struct {
	Opening decimal.Decimal `json:"opening_amount"`
	Closing decimal.Decimal `json:"closing_amount"`
}

// Window names the sub-range of the business day a bucket of credit
// belongs to.
type Window string

const (
	WindowOpening Window = "opening"
	WindowClosing Window = "closing"
)

// =============================================================================
// OUTPUT - Payout rows, summary, schedule matrix
// =============================================================================

// PayoutRow is one employee's final payout. Every known employee gets a row,
// even an all-zero one. Amounts are rounded to 2 decimal places.
type PayoutRow struct {
	Name    string          `json:"name"`
	BasePay decimal.Decimal `json:"base_pay"`
	Tips    decimal.Decimal `json:"tips"`
	Total   decimal.Decimal `json:"total"`
}

// ScheduleRow is one day of the display-only schedule matrix.
// Cell codes: "O"/"C" sole opening/closing worker, "O*"/"C*" shared window,
// "/"-joined when an employee covers both, "✓" in daily-total mode.
type ScheduleRow struct {
	Date      string            `json:"date"`
	DayOfWeek string            `json:"day_of_week"`
	Cells     map[string]string `json:"cells"`
}

// Summary aggregates the computation across the whole range.
type Summary struct {
	Days            int             `json:"days"`
	TotalBase       decimal.Decimal `json:"total_base"`
	TotalTips       decimal.Decimal `json:"total_tips"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	ScheduleHeaders []string        `json:"schedule_headers"`
	ScheduleRows    []ScheduleRow   `json:"schedule_rows"`
}

// Result is the full output of one engine invocation. Warnings carry
// non-fatal conditions (e.g. an undistributed pool under UnallocatedReport).
type Result struct {
	Rows     []PayoutRow `json:"rows"`
	Summary  Summary     `json:"summary"`
	Warnings []string    `json:"warnings,omitempty"`
}
