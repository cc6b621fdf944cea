package payroll

import (
	"errors"
	"testing"
	"time"
)

// =============================================================================
// NORMALIZER TESTS
// =============================================================================

func chicago(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer("America/Chicago")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return n
}

func TestNormalizer_AllDayDate_ParsesAsLocalMidnight(t *testing.T) {
	n := chicago(t)

	got, err := n.Parse("2026-02-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizer_UTCTimestamp_ConvertedToLocalAndStripped(t *testing.T) {
	// GIVEN: a "Z" timestamp, 14:00 UTC on a February day
	// WHEN: normalizing into America/Chicago (UTC-6 in winter)
	// THEN: the naive instant reads 08:00, offset-free

	n := chicago(t)

	got, err := n.Parse("2026-02-03T14:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, time.February, 3, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizer_OffsetTimestamp_OffsetDropped(t *testing.T) {
	n := chicago(t)

	// Already expressed in the local offset: wall clock is preserved.
	got, err := n.Parse("2026-02-03T08:00:00-06:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, time.February, 3, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizer_BareTimestamp_TakenAsLocal(t *testing.T) {
	n := chicago(t)

	got, err := n.Parse("2026-02-03T08:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, time.February, 3, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizer_EmptyString_TimeParseError(t *testing.T) {
	n := chicago(t)

	_, err := n.Parse("")
	if err == nil {
		t.Fatal("expected error for empty timestamp")
	}
	if !errors.Is(err, ErrTimeParse) {
		t.Errorf("expected ErrTimeParse, got %v", err)
	}
	var tpe *TimeParseError
	if !errors.As(err, &tpe) {
		t.Errorf("expected *TimeParseError, got %T", err)
	}
}

func TestNormalizer_Garbage_TimeParseError(t *testing.T) {
	n := chicago(t)

	_, err := n.Parse("next tuesday at noon")
	if !errors.Is(err, ErrTimeParse) {
		t.Errorf("expected ErrTimeParse, got %v", err)
	}
}

func TestNewNormalizer_UnknownZone_ConfigurationError(t *testing.T) {
	_, err := NewNormalizer("Nowhere/Atlantis")
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

// =============================================================================
// BOUNDARY TESTS
// =============================================================================

func TestParseBoundaries_ValidOrdering(t *testing.T) {
	b, err := ParseBoundaries("08:00", "14:00", "21:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w, ok := b.windowFor(8); !ok || w != WindowOpening {
		t.Errorf("hour 8: expected opening, got %v %v", w, ok)
	}
	if w, ok := b.windowFor(13); !ok || w != WindowOpening {
		t.Errorf("hour 13: expected opening, got %v %v", w, ok)
	}
	if w, ok := b.windowFor(14); !ok || w != WindowClosing {
		t.Errorf("hour 14: expected closing, got %v %v", w, ok)
	}
	if w, ok := b.windowFor(20); !ok || w != WindowClosing {
		t.Errorf("hour 20: expected closing, got %v %v", w, ok)
	}
	if _, ok := b.windowFor(7); ok {
		t.Error("hour 7: expected outside business day")
	}
	if _, ok := b.windowFor(21); ok {
		t.Error("hour 21: expected outside business day")
	}
}

func TestParseBoundaries_BadOrdering_ConfigurationError(t *testing.T) {
	if _, err := ParseBoundaries("14:00", "08:00", "21:00"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, s := range []string{"", "25:00", "08:61", "noon"} {
		if _, err := ParseTimeOfDay(s); err == nil {
			t.Errorf("%q: expected error", s)
		}
	}
}
