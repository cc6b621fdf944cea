/*
coverage.go - Hour-quantized effective-hours computation

PURPOSE:
  Converts (shift -> matched employees) pairs into fractional hourly work
  credit. This is the system's defining rule: an hour-slot is a scarce,
  shared resource. Adding a second worker to an hour does not create a second
  hour's worth of credit; it splits the slot's credit by headcount.

ALGORITHM:
  1. Quantize every shift into whole-hour buckets from its local start to
     its local end (end-exclusive), recording each matched employee's overlap
     minutes per (date, hour). Minutes from multiple overlapping shifts in
     the same hour sum.
  2. Per bucket, each of the N distinct present employees is credited
     (their minutes / 60) / N effective hours.
  3. A bucket's credit lands in the window its clock hour starts in:
     [OPEN, SWITCH) opening, [SWITCH, CLOSE) closing, or the single
     [OPEN, CLOSE) span in daily mode. Hours outside [OPEN, CLOSE) earn
     nothing, even if worked.

INVARIANT:
  The summed credit of a single bucket is at most 1.0, reaching exactly 1.0
  only when every contributing employee covers the full 60 minutes.

SEE ALSO:
  - engine.go: turns effective hours plus tip pools into payouts
*/
package payroll

import "time"

// AssignedShift pairs one parsed shift event with the employees matched to
// it. Start and End are naive local instants from the Normalizer.
type AssignedShift struct {
	Event     ShiftEvent
	Start     time.Time
	End       time.Time
	Employees []Employee
}

// WindowedHours is date -> window -> employee name -> effective hours.
type WindowedHours map[string]map[Window]map[string]float64

// DailyHours is date -> employee name -> effective hours.
type DailyHours map[string]map[string]float64

// bucketMinutes is date -> clock hour -> employee name -> minutes present.
type bucketMinutes map[string]map[int]map[string]float64

// buildBucketMinutes quantizes shifts into whole-hour buckets. Zero- and
// negative-length shifts contribute nothing.
func buildBucketMinutes(shifts []AssignedShift) bucketMinutes {
	buckets := make(bucketMinutes)

	for _, shift := range shifts {
		if len(shift.Employees) == 0 || !shift.Start.Before(shift.End) {
			continue
		}

		cur := shift.Start.Truncate(time.Hour)
		for cur.Before(shift.End) {
			next := cur.Add(time.Hour)

			overlapStart := maxTime(shift.Start, cur)
			overlapEnd := minTime(shift.End, next)
			minutes := overlapEnd.Sub(overlapStart).Minutes()

			if minutes > 0 {
				date := DateKey(cur)
				hour := cur.Hour()
				if buckets[date] == nil {
					buckets[date] = make(map[int]map[string]float64)
				}
				if buckets[date][hour] == nil {
					buckets[date][hour] = make(map[string]float64)
				}
				for _, emp := range shift.Employees {
					buckets[date][hour][emp.Name] += minutes
				}
			}

			cur = next
		}
	}
	return buckets
}

// BuildWindowedHours computes per-day opening/closing effective hours for
// shift-based tip distribution.
func BuildWindowedHours(shifts []AssignedShift, b Boundaries) WindowedHours {
	out := make(WindowedHours)

	for date, hours := range buildBucketMinutes(shifts) {
		for hour, byName := range hours {
			window, ok := b.windowFor(hour)
			if !ok {
				continue
			}
			n := float64(len(byName))
			if out[date] == nil {
				out[date] = map[Window]map[string]float64{
					WindowOpening: {},
					WindowClosing: {},
				}
			}
			for name, minutes := range byName {
				out[date][window][name] += (minutes / 60.0) / n
			}
		}
	}
	return out
}

// BuildDailyHours computes per-day effective hours over the single combined
// [OPEN, CLOSE) window, for daily-total tip distribution.
func BuildDailyHours(shifts []AssignedShift, b Boundaries) DailyHours {
	out := make(DailyHours)

	for date, hours := range buildBucketMinutes(shifts) {
		for hour, byName := range hours {
			if !b.inDay(hour) {
				continue
			}
			n := float64(len(byName))
			if out[date] == nil {
				out[date] = make(map[string]float64)
			}
			for name, minutes := range byName {
				out[date][name] += (minutes / 60.0) / n
			}
		}
	}
	return out
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
