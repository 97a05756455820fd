package ledger

import "time"

// DateKey formats a time as the calendar-day string stored in
// last_bonus_date and compared by the weekly reset guard.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ResetDue reports whether the weekly reset should fire now: today is the
// configured reset day and the last bonus was not already credited today.
// The date guard is what makes the reset idempotent per calendar day.
func ResetDue(now time.Time, resetDay time.Weekday, lastBonusDate string) bool {
	return now.Weekday() == resetDay && lastBonusDate != DateKey(now)
}
