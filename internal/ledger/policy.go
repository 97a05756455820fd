package ledger

import (
	"fmt"
	"strings"
)

// levelSpan is the amount of earnings that separates one level from the next
// under the derived policy, and the multiplier for threshold targets.
const levelSpan = 10.0

// Policy selects how levels are computed. A deployment picks one policy at
// startup and sticks with it; the two are not interchangeable mid-flight.
type Policy string

const (
	// PolicyThreshold accumulates progress per completion and steps the
	// level up by one when progress reaches level x 10, resetting progress
	// to zero.
	PolicyThreshold Policy = "threshold"

	// PolicyDerived computes the level directly from all-time earnings on
	// every view: floor(total/10) + 1.
	PolicyDerived Policy = "derived"
)

// ParsePolicy maps a config string to a Policy. Empty defaults to threshold.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "threshold":
		return PolicyThreshold, nil
	case "derived":
		return PolicyDerived, nil
	default:
		return "", fmt.Errorf("unknown level policy %q", s)
	}
}

// ApplyProgress advances threshold-policy level state by one earned amount.
// The level moves at most one step per call even when the new progress
// crosses several thresholds at once; that carry-free single step is the
// established behavior and callers depend on it staying that way.
func ApplyProgress(level int, progress, amount float64) (int, float64) {
	progress += amount
	if progress >= float64(level)*levelSpan {
		return level + 1, 0
	}
	return level, progress
}

// DerivedLevel computes the derived-policy level from all-time earnings.
func DerivedLevel(totalEarned float64) int {
	if totalEarned < 0 {
		totalEarned = 0
	}
	return int(totalEarned/levelSpan) + 1
}

// ProgressFraction reports how far through the current level the given
// all-time earnings sit, clamped to [0, 1].
func ProgressFraction(totalEarned float64) float64 {
	level := DerivedLevel(totalEarned)
	f := (totalEarned - float64(level-1)*levelSpan) / levelSpan
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
