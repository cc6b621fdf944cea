/*
time.go - Timestamp normalization and business-day boundaries

PURPOSE:
  Calendar events arrive with heterogeneous start/end representations:
  all-day dates ("2026-02-03"), offset-bearing timestamps
  ("2026-02-03T08:00:00-06:00"), and UTC "Z" timestamps. The Normalizer
  collapses all of them into a single naive, locally-zoned instant so that
  every downstream comparison is offset-free and directly comparable.

NAIVE INSTANT CONVENTION:
  A "naive" instant is carried as a time.Time whose Location is time.UTC,
  used purely as an offset-free container. Offset-bearing inputs are first
  converted into the configured local zone, then their offset is dropped.

SEE ALSO:
  - coverage.go: consumes naive instants for hour bucketing
  - errors.go: TimeParseError
*/
package payroll

import (
	"fmt"
	"time"
)

// =============================================================================
// NORMALIZER - Heterogeneous timestamps to naive local instants
// =============================================================================

// Normalizer parses event timestamps into naive instants in a fixed local
// zone.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a Normalizer for the given IANA zone name.
// An empty name means UTC.
func NewNormalizer(tzName string) (*Normalizer, error) {
	if tzName == "" {
		return &Normalizer{loc: time.UTC}, nil
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, &ConfigurationError{Field: "timezone", Cause: err}
	}
	return &Normalizer{loc: loc}, nil
}

// Parse converts an ISO-8601-like string into a naive local instant.
//
//   - "YYYY-MM-DD" (all-day) parses as local midnight
//   - offset-bearing and "Z" timestamps are converted into the configured
//     zone and the offset is dropped
//   - bare "YYYY-MM-DDTHH:MM:SS" is taken as already local
//
// An empty or unparsable string yields a *TimeParseError.
func (n *Normalizer) Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &TimeParseError{Input: s}
	}

	// All-day events: YYYY-MM-DD means local midnight.
	if len(s) == 10 && s[4] == '-' && s[7] == '-' {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, &TimeParseError{Input: s, Cause: err}
		}
		return t, nil
	}

	// Offset-bearing or Z-suffixed timestamp. RFC 3339 treats "Z" as the
	// explicit zero offset, so no textual rewrite is needed.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		local := t.In(n.loc)
		return stripOffset(local), nil
	}

	// Timestamp with no offset at all: already local.
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}

	return time.Time{}, &TimeParseError{Input: s}
}

// stripOffset rebuilds the wall-clock reading of t as a naive instant.
func stripOffset(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// =============================================================================
// TIME OF DAY - Business-day boundaries
// =============================================================================

// TimeOfDay is a clock time within a business day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return TimeOfDay{}, &ConfigurationError{Field: "time of day", Cause: fmt.Errorf("%q: %w", s, err)}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, &ConfigurationError{Field: "time of day", Cause: fmt.Errorf("%q out of range", s)}
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// Before reports strict clock ordering.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

func (t TimeOfDay) BeforeOrEqual(other TimeOfDay) bool { return !other.Before(t) }

// Boundaries are the shop-wide business-day cut points. Opening window is
// [Open, Switch), closing window is [Switch, Close); clock hours outside
// [Open, Close) earn no credit even if worked.
type Boundaries struct {
	Open   TimeOfDay
	Switch TimeOfDay
	Close  TimeOfDay
}

// ParseBoundaries parses the three "HH:MM" cut points and validates their
// ordering.
func ParseBoundaries(open, switchAt, close string) (Boundaries, error) {
	o, err := ParseTimeOfDay(open)
	if err != nil {
		return Boundaries{}, err
	}
	s, err := ParseTimeOfDay(switchAt)
	if err != nil {
		return Boundaries{}, err
	}
	c, err := ParseTimeOfDay(close)
	if err != nil {
		return Boundaries{}, err
	}
	b := Boundaries{Open: o, Switch: s, Close: c}
	if !b.Open.Before(b.Switch) || !b.Switch.Before(b.Close) {
		return Boundaries{}, &ConfigurationError{
			Field: "boundaries",
			Cause: fmt.Errorf("require open < switch < close, got %s / %s / %s", o, s, c),
		}
	}
	return b, nil
}

// windowFor assigns a clock hour (by its start) to a window, or reports that
// it falls outside the business day entirely.
func (b Boundaries) windowFor(hour int) (Window, bool) {
	h := TimeOfDay{Hour: hour}
	switch {
	case b.Open.BeforeOrEqual(h) && h.Before(b.Switch):
		return WindowOpening, true
	case b.Switch.BeforeOrEqual(h) && h.Before(b.Close):
		return WindowClosing, true
	default:
		return "", false
	}
}

// inDay reports whether a clock hour falls inside [Open, Close), the single
// combined window used by daily-total mode.
func (b Boundaries) inDay(hour int) bool {
	h := TimeOfDay{Hour: hour}
	return b.Open.BeforeOrEqual(h) && h.Before(b.Close)
}

// =============================================================================
// DATE KEYS
// =============================================================================

// DateKey formats a naive instant's calendar day as YYYY-MM-DD. All per-day
// maps (tip pools, effective hours, schedule rows) are keyed this way.
func DateKey(t time.Time) string { return t.Format("2006-01-02") }

// day truncates a naive instant to its calendar day.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
