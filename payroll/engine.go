/*
engine.go - The payout engine

PURPOSE:
  Turns shift events, the employee directory, and tip-pool inputs into payout
  rows and a summary. Two strategies share identical base-pay accrual and
  row/summary shaping and differ only in tip distribution:

  ComputeShiftBased:  per day, the opening and closing windows each have
                      their own pool, distributed by effective-hours weight
                      within that window.
  ComputeDailyTotal:  per day, a single pool over the whole [OPEN, CLOSE)
                      span, same mechanics.

BASE PAY:
  Every matched employee accrues their flat base rate once per shift,
  independent of duration and of co-workers.

ACCUMULATION:
  Tip shares accumulate at full decimal precision; rounding to 2 places
  happens only when rows are shaped. The shares of a distributed pool sum
  back to the pool amount up to that final rounding.

STATE:
  Each Compute call owns its accumulators. The Engine itself holds only
  configuration, so one Engine may serve concurrent computations.

SEE ALSO:
  - coverage.go: effective-hours tables consumed here
  - schedule.go: display matrix
*/
package payroll

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// UNALLOCATED POOL POLICY
// =============================================================================

// UnallocatedPolicy decides what happens to a nonzero tip pool on a
// day/window with zero effective hours.
type UnallocatedPolicy int

const (
	// UnallocatedDrop silently discards the pool (historical behavior).
	UnallocatedDrop UnallocatedPolicy = iota

	// UnallocatedReport discards the pool but records a warning naming the
	// day, window, and amount.
	UnallocatedReport

	// UnallocatedSplitEven splits the pool equally among all known
	// employees, worked or not.
	UnallocatedSplitEven
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes payouts. It is a pure function of its inputs: no I/O, no
// retained state between calls.
type Engine struct {
	Employees   []Employee
	Normalizer  *Normalizer
	Boundaries  Boundaries
	Unallocated UnallocatedPolicy

	// Now supplies the default single-day range when no events exist.
	// Nil means time.Now.
	Now func() time.Time
}

// computation is the per-call working state: one of these per Compute
// invocation, never shared.
type computation struct {
	basePay  map[string]decimal.Decimal
	tips     map[string]decimal.Decimal
	warnings []string
}

func (e *Engine) newComputation() *computation {
	c := &computation{
		basePay: make(map[string]decimal.Decimal, len(e.Employees)),
		tips:    make(map[string]decimal.Decimal, len(e.Employees)),
	}
	for _, emp := range e.Employees {
		c.basePay[emp.Name] = decimal.Zero
		c.tips[emp.Name] = decimal.Zero
	}
	return c
}

// resolveShifts parses every event's bounds and matches its employees.
// A single unparsable timestamp fails the whole computation.
func (e *Engine) resolveShifts(events []ShiftEvent) ([]AssignedShift, error) {
	if e.Normalizer == nil {
		return nil, &ConfigurationError{Field: "normalizer", Cause: fmt.Errorf("not set")}
	}

	shifts := make([]AssignedShift, 0, len(events))
	for _, ev := range events {
		start, err := e.Normalizer.Parse(ev.Start)
		if err != nil {
			return nil, err
		}
		end, err := e.Normalizer.Parse(ev.End)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, AssignedShift{
			Event:     ev,
			Start:     start,
			End:       end,
			Employees: MatchEmployees(ev.Title, ev.Attendees, e.Employees),
		})
	}
	return shifts, nil
}

// accrueBasePay credits each matched employee's flat rate once per shift.
func (c *computation) accrueBasePay(shifts []AssignedShift) {
	for _, shift := range shifts {
		for _, emp := range shift.Employees {
			c.basePay[emp.Name] = c.basePay[emp.Name].Add(emp.BaseRate)
		}
	}
}

// dateRange spans from the earliest shift's start day through the day after
// the latest shift's end day (end-exclusive). With no shifts it defaults to
// a single day.
func (e *Engine) dateRange(shifts []AssignedShift) (time.Time, time.Time, int) {
	if len(shifts) == 0 {
		now := time.Now
		if e.Now != nil {
			now = e.Now
		}
		start := day(now())
		return start, start.AddDate(0, 0, 1), 1
	}

	start, end := shifts[0].Start, shifts[0].End
	for _, s := range shifts[1:] {
		if s.Start.Before(start) {
			start = s.Start
		}
		if s.End.After(end) {
			end = s.End
		}
	}
	startDay := day(start)
	endDay := day(end.AddDate(0, 0, 1))

	days := int(endDay.Sub(startDay).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return startDay, endDay, days
}

// distribute splits one pool by effective-hours weight, falling back to the
// configured unallocated policy when nobody earned credit.
func (e *Engine) distribute(c *computation, date string, window string, pool decimal.Decimal, eff map[string]float64) {
	if !pool.IsPositive() {
		return
	}

	total := 0.0
	for _, h := range eff {
		total += h
	}

	if total > 0 {
		for name, hours := range eff {
			share := pool.Mul(decimal.NewFromFloat(hours / total))
			c.tips[name] = c.tips[name].Add(share)
		}
		return
	}

	switch e.Unallocated {
	case UnallocatedSplitEven:
		if len(e.Employees) == 0 {
			c.warnings = append(c.warnings, fmt.Sprintf(
				"$%s for %s on %s undistributed: no employees", pool.StringFixed(2), window, date))
			return
		}
		share := pool.Div(decimal.NewFromInt(int64(len(e.Employees))))
		for _, emp := range e.Employees {
			c.tips[emp.Name] = c.tips[emp.Name].Add(share)
		}
	case UnallocatedReport:
		c.warnings = append(c.warnings, fmt.Sprintf(
			"$%s for %s on %s undistributed: no effective hours", pool.StringFixed(2), window, date))
	default:
		// UnallocatedDrop: pool is simply not distributed.
	}
}

// =============================================================================
// SHIFT-BASED STRATEGY
// =============================================================================

// ComputeShiftBased distributes per-day opening/closing pools by
// effective-hours weight within each window.
func (e *Engine) ComputeShiftBased(events []ShiftEvent, pools map[string]WindowPools) (*Result, error) {
	shifts, err := e.resolveShifts(events)
	if err != nil {
		return nil, err
	}

	c := e.newComputation()
	c.accrueBasePay(shifts)

	startDay, endDay, days := e.dateRange(shifts)
	hours := BuildWindowedHours(shifts, e.Boundaries)

	var scheduleRows []ScheduleRow
	for d := startDay; d.Before(endDay); d = d.AddDate(0, 0, 1) {
		key := DateKey(d)

		dayHours := hours[key]
		opening := dayHours[WindowOpening]
		closing := dayHours[WindowClosing]

		dayPools := pools[key]
		e.distribute(c, key, string(WindowOpening), dayPools.Opening, opening)
		e.distribute(c, key, string(WindowClosing), dayPools.Closing, closing)

		scheduleRows = append(scheduleRows, buildWindowedScheduleRow(d, e.Employees, opening, closing))
	}

	return e.shapeResult(c, days, scheduleRows), nil
}

// =============================================================================
// DAILY-TOTAL STRATEGY
// =============================================================================

// ComputeDailyTotal distributes one pool per day over the whole
// [OPEN, CLOSE) span.
func (e *Engine) ComputeDailyTotal(events []ShiftEvent, dailyTips map[string]decimal.Decimal) (*Result, error) {
	shifts, err := e.resolveShifts(events)
	if err != nil {
		return nil, err
	}

	c := e.newComputation()
	c.accrueBasePay(shifts)

	startDay, endDay, days := e.dateRange(shifts)
	hours := BuildDailyHours(shifts, e.Boundaries)

	var scheduleRows []ScheduleRow
	for d := startDay; d.Before(endDay); d = d.AddDate(0, 0, 1) {
		key := DateKey(d)
		dayHours := hours[key]

		e.distribute(c, key, "day", dailyTips[key], dayHours)

		scheduleRows = append(scheduleRows, buildDailyScheduleRow(d, e.Employees, dayHours))
	}

	return e.shapeResult(c, days, scheduleRows), nil
}

// =============================================================================
// ROW AND SUMMARY SHAPING
// =============================================================================

// shapeResult rounds, sorts, and aggregates. One row per known employee,
// all-zero rows included, sorted by name case-insensitively.
func (e *Engine) shapeResult(c *computation, days int, scheduleRows []ScheduleRow) *Result {
	rows := make([]PayoutRow, 0, len(e.Employees))
	for _, emp := range e.Employees {
		base := c.basePay[emp.Name]
		tips := c.tips[emp.Name]
		rows = append(rows, PayoutRow{
			Name:    emp.Name,
			BasePay: base.Round(2),
			Tips:    tips.Round(2),
			Total:   base.Add(tips).Round(2),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})

	totalBase, totalTips, grand := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		totalBase = totalBase.Add(r.BasePay)
		totalTips = totalTips.Add(r.Tips)
		grand = grand.Add(r.Total)
	}

	headers := make([]string, len(e.Employees))
	for i, emp := range e.Employees {
		headers[i] = emp.Name
	}

	return &Result{
		Rows: rows,
		Summary: Summary{
			Days:            days,
			TotalBase:       totalBase,
			TotalTips:       totalTips,
			GrandTotal:      grand,
			ScheduleHeaders: headers,
			ScheduleRows:    scheduleRows,
		},
		Warnings: c.warnings,
	}
}
