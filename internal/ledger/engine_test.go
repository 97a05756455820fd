package ledger

import (
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/ewanbell/choretab/internal/database"
	"github.com/ewanbell/choretab/internal/store"
)

func setupEngine(t *testing.T, policy Policy) (*Engine, *store.UserStore, *store.LedgerStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := store.NewUserStore(db)
	ls := store.NewLedgerStore(db)
	ss := store.NewSettingsStore(db)
	return NewEngine(us, ls, ss, policy, slog.Default()), us, ls
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecordCompletionUpdatesSessionTotal(t *testing.T) {
	e, us, ls := setupEngine(t, PolicyThreshold)
	u, err := us.Create("maya", "secret", 1.70)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	now := time.Now()
	amounts := []float64{2.0, 3.0, 2.0}
	for _, a := range amounts {
		if _, err := e.RecordCompletion(u.ID, "Wash the dishes", a, now); err != nil {
			t.Fatalf("record completion: %v", err)
		}
	}

	total, err := ls.SessionTotal(u.ID)
	if err != nil {
		t.Fatalf("session total: %v", err)
	}
	if !almostEqual(total, 7.0) {
		t.Errorf("session total = %v, want 7.0", total)
	}

	// Repeat completions each produce their own event.
	count, err := ls.SessionCount(u.ID)
	if err != nil {
		t.Fatalf("session count: %v", err)
	}
	if count != 3 {
		t.Errorf("session count = %d, want 3", count)
	}
}

func TestRecordCompletionThresholdLevelUp(t *testing.T) {
	e, us, _ := setupEngine(t, PolicyThreshold)
	u, _ := us.Create("maya", "secret", 0)

	now := time.Now()
	if _, err := e.RecordCompletion(u.ID, "Big job", 25, now); err != nil {
		t.Fatalf("record completion: %v", err)
	}

	got, _ := us.GetByID(u.ID)
	if got.Level != 2 {
		t.Errorf("level = %d, want 2 (one step per completion)", got.Level)
	}
	if got.LevelProgress != 0 {
		t.Errorf("progress = %v, want 0 after level-up", got.LevelProgress)
	}
	if !almostEqual(got.TotalEarned, 25) {
		t.Errorf("total earned = %v, want 25", got.TotalEarned)
	}
}

func TestRecordCompletionDerivedLevel(t *testing.T) {
	e, us, _ := setupEngine(t, PolicyDerived)
	u, _ := us.Create("maya", "secret", 0)

	now := time.Now()
	if _, err := e.RecordCompletion(u.ID, "Big job", 25, now); err != nil {
		t.Fatalf("record completion: %v", err)
	}

	got, _ := us.GetByID(u.ID)
	if got.Level != 3 {
		t.Errorf("level = %d, want 3 (floor(25/10)+1)", got.Level)
	}

	level, fraction := e.LevelView(got)
	if level != 3 {
		t.Errorf("view level = %d, want 3", level)
	}
	if !almostEqual(fraction, 0.5) {
		t.Errorf("fraction = %v, want 0.5", fraction)
	}
}

func TestWeeklyResetWorkedExample(t *testing.T) {
	// base_amount=1.70, completions of 2.00 and 3.00 before the reset.
	e, us, ls := setupEngine(t, PolicyThreshold)
	u, _ := us.Create("maya", "secret", 1.70)

	sunday := time.Date(2024, 6, 9, 9, 0, 0, 0, time.UTC)
	if _, err := e.RecordCompletion(u.ID, "Take out the trash", 2.0, sunday.Add(-time.Hour)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := e.RecordCompletion(u.ID, "Wash the dishes", 3.0, sunday.Add(-time.Hour)); err != nil {
		t.Fatalf("record: %v", err)
	}

	total, _ := ls.SessionTotal(u.ID)
	if !almostEqual(total, 5.0) {
		t.Fatalf("pre-reset session total = %v, want 5.0", total)
	}

	before, _ := us.GetByID(u.ID)
	res, err := e.MaybeRunWeeklyReset(u.ID, sunday)
	if err != nil {
		t.Fatalf("weekly reset: %v", err)
	}
	if !res.Ran {
		t.Fatal("expected reset to run on Sunday")
	}
	if res.ArchivedCount != 2 || !almostEqual(res.ArchivedTotal, 5.0) {
		t.Errorf("archived = %d/%v, want 2/5.0", res.ArchivedCount, res.ArchivedTotal)
	}
	if !almostEqual(res.BonusAmount, 1.70) {
		t.Errorf("bonus = %v, want 1.70", res.BonusAmount)
	}

	after, _ := us.GetByID(u.ID)
	if !almostEqual(after.LevelProgress, before.LevelProgress+1.70) {
		t.Errorf("progress = %v, want %v", after.LevelProgress, before.LevelProgress+1.70)
	}
	if after.LastBonusDate != "2024-06-09" {
		t.Errorf("last bonus date = %q, want 2024-06-09", after.LastBonusDate)
	}

	// Session is empty, history keeps both events.
	sessionCount, _ := ls.SessionCount(u.ID)
	if sessionCount != 0 {
		t.Errorf("session count after reset = %d, want 0", sessionCount)
	}
	historyCount, _ := ls.HistoryCount(u.ID)
	if historyCount != 2 {
		t.Errorf("history count after reset = %d, want 2", historyCount)
	}
}

func TestWeeklyResetIdempotentPerDay(t *testing.T) {
	e, us, _ := setupEngine(t, PolicyThreshold)
	u, _ := us.Create("maya", "secret", 1.70)

	sunday := time.Date(2024, 6, 9, 9, 0, 0, 0, time.UTC)
	res, err := e.MaybeRunWeeklyReset(u.ID, sunday)
	if err != nil {
		t.Fatalf("first reset: %v", err)
	}
	if !res.Ran {
		t.Fatal("expected first reset to run")
	}

	// Same day, later hour: guarded by last_bonus_date.
	res, err = e.MaybeRunWeeklyReset(u.ID, sunday.Add(6*time.Hour))
	if err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if res.Ran {
		t.Error("reset ran twice on the same day")
	}

	got, _ := us.GetByID(u.ID)
	if !almostEqual(got.LevelProgress, 1.70) {
		t.Errorf("progress = %v, want a single 1.70 bonus", got.LevelProgress)
	}

	// Next week it fires again.
	res, err = e.MaybeRunWeeklyReset(u.ID, sunday.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("next week reset: %v", err)
	}
	if !res.Ran {
		t.Error("expected reset to run the following week")
	}
}

func TestWeeklyResetNotDueOnOtherDays(t *testing.T) {
	e, us, _ := setupEngine(t, PolicyThreshold)
	u, _ := us.Create("maya", "secret", 1.70)

	wednesday := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	res, err := e.MaybeRunWeeklyReset(u.ID, wednesday)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if res.Ran {
		t.Error("reset ran on a Wednesday with Sunday configured")
	}
}

func TestWeeklyResetDerivedPolicy(t *testing.T) {
	e, us, _ := setupEngine(t, PolicyDerived)
	u, _ := us.Create("maya", "secret", 12)

	sunday := time.Date(2024, 6, 9, 9, 0, 0, 0, time.UTC)
	res, err := e.MaybeRunWeeklyReset(u.ID, sunday)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !res.Ran {
		t.Fatal("expected reset to run")
	}

	got, _ := us.GetByID(u.ID)
	if !almostEqual(got.TotalEarned, 12) {
		t.Errorf("total earned = %v, want 12", got.TotalEarned)
	}
	if got.Level != 2 {
		t.Errorf("level = %d, want 2 (derived from total)", got.Level)
	}
}

func TestClearSessionNeverReducesHistory(t *testing.T) {
	e, us, ls := setupEngine(t, PolicyThreshold)
	u, _ := us.Create("maya", "secret", 0)

	now := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := e.RecordCompletion(u.ID, "Vacuum the floor", 4.0, now); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	historyBefore, _ := ls.HistoryTotal(u.ID)
	if err := ls.ClearSession(u.ID); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	historyAfter, _ := ls.HistoryTotal(u.ID)

	if !almostEqual(historyBefore, historyAfter) {
		t.Errorf("history total changed across clear: %v -> %v", historyBefore, historyAfter)
	}
	sessionTotal, _ := ls.SessionTotal(u.ID)
	if sessionTotal != 0 {
		t.Errorf("session total after clear = %v, want 0", sessionTotal)
	}
}
