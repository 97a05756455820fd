package ledger

import (
	"math"
	"testing"
)

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyThreshold, false},
		{"threshold", PolicyThreshold, false},
		{"Threshold", PolicyThreshold, false},
		{"derived", PolicyDerived, false},
		{"DERIVED", PolicyDerived, false},
		{"bogus", "", true},
	}
	for _, c := range cases {
		got, err := ParsePolicy(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParsePolicy(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePolicy(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestApplyProgressAccumulates(t *testing.T) {
	level, progress := ApplyProgress(1, 0, 2)
	if level != 1 || progress != 2 {
		t.Errorf("got level=%d progress=%v, want 1, 2", level, progress)
	}

	level, progress = ApplyProgress(level, progress, 3)
	if level != 1 || progress != 5 {
		t.Errorf("got level=%d progress=%v, want 1, 5", level, progress)
	}
}

func TestApplyProgressLevelUp(t *testing.T) {
	// Threshold for level 1 is 10; crossing it steps to 2 and zeroes progress.
	level, progress := ApplyProgress(1, 8, 2)
	if level != 2 {
		t.Errorf("level = %d, want 2", level)
	}
	if progress != 0 {
		t.Errorf("progress = %v, want 0", progress)
	}
}

func TestApplyProgressSingleStepOnly(t *testing.T) {
	// A huge amount crosses several thresholds but the level moves once.
	level, progress := ApplyProgress(1, 0, 25)
	if level != 2 {
		t.Errorf("level = %d, want 2 (single step)", level)
	}
	if progress != 0 {
		t.Errorf("progress = %v, want 0", progress)
	}
}

func TestApplyProgressHigherLevelThreshold(t *testing.T) {
	// Level 3 needs 30 accumulated progress.
	level, progress := ApplyProgress(3, 25, 4)
	if level != 3 || progress != 29 {
		t.Errorf("got level=%d progress=%v, want 3, 29", level, progress)
	}
	level, progress = ApplyProgress(3, 29, 1)
	if level != 4 || progress != 0 {
		t.Errorf("got level=%d progress=%v, want 4, 0", level, progress)
	}
}

func TestDerivedLevel(t *testing.T) {
	cases := []struct {
		total float64
		want  int
	}{
		{0, 1},
		{9.99, 1},
		{10, 2},
		{25, 3},
		{100, 11},
		{-5, 1},
	}
	for _, c := range cases {
		if got := DerivedLevel(c.total); got != c.want {
			t.Errorf("DerivedLevel(%v) = %d, want %d", c.total, got, c.want)
		}
	}
}

func TestDerivedLevelMonotonic(t *testing.T) {
	prev := 0
	for total := 0.0; total <= 200; total += 0.7 {
		level := DerivedLevel(total)
		if level < prev {
			t.Fatalf("level decreased: total=%v level=%d prev=%d", total, level, prev)
		}
		prev = level
	}
}

func TestProgressFractionBounds(t *testing.T) {
	for total := -10.0; total <= 200; total += 0.3 {
		f := ProgressFraction(total)
		if f < 0 || f > 1 {
			t.Fatalf("ProgressFraction(%v) = %v, out of [0,1]", total, f)
		}
	}
}

func TestProgressFractionValue(t *testing.T) {
	// total 25 sits halfway through level 3 (20..30).
	if got := ProgressFraction(25); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("ProgressFraction(25) = %v, want 0.5", got)
	}
	if got := ProgressFraction(0); got != 0 {
		t.Errorf("ProgressFraction(0) = %v, want 0", got)
	}
}
