// Package ledger implements the earnings engine: the completion ledger's
// leveling rules, achievement tiers, and the weekly base-amount reset.
package ledger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ewanbell/choretab/internal/model"
	"github.com/ewanbell/choretab/internal/store"
)

// Engine applies the configured level policy to completions and runs the
// weekly reset. All mutations go through the stores; the engine itself keeps
// no state beyond its policy.
type Engine struct {
	users    *store.UserStore
	ledger   *store.LedgerStore
	settings *store.SettingsStore
	policy   Policy
	logger   *slog.Logger
}

func NewEngine(us *store.UserStore, ls *store.LedgerStore, ss *store.SettingsStore, policy Policy, logger *slog.Logger) *Engine {
	return &Engine{users: us, ledger: ls, settings: ss, policy: policy, logger: logger}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// RecordCompletion appends a completion event for the user and advances their
// earnings and level state under the configured policy.
func (e *Engine) RecordCompletion(userID int64, choreName string, amount float64, now time.Time) (*model.Completion, error) {
	u, err := e.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("record completion: user %d not found", userID)
	}

	c, err := e.ledger.Record(userID, choreName, amount, now)
	if err != nil {
		return nil, err
	}

	total := u.TotalEarned + amount
	level, progress := e.advance(u.Level, u.LevelProgress, amount, total)
	if err := e.users.SetLevelState(userID, level, progress, total); err != nil {
		return nil, err
	}

	if level > u.Level {
		e.logger.Info("level up", "user", u.Username, "level", level)
	}
	return c, nil
}

// ResetResult describes what a weekly reset did, for the summary banner.
type ResetResult struct {
	Ran           bool    `json:"ran"`
	ArchivedCount int     `json:"archived_count"`
	ArchivedTotal float64 `json:"archived_total"`
	BonusAmount   float64 `json:"bonus_amount"`
}

// MaybeRunWeeklyReset fires the weekly reset if it is due for this user:
// credit the base amount, stamp today as the last bonus date, and archive the
// session ledger. Calling it again the same day is a no-op. It is meant to
// run at the start of each authenticated summary view; there is no timer.
func (e *Engine) MaybeRunWeeklyReset(userID int64, now time.Time) (*ResetResult, error) {
	u, err := e.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("weekly reset: user %d not found", userID)
	}

	if !ResetDue(now, e.settings.ResetWeekday(), u.LastBonusDate) {
		return &ResetResult{}, nil
	}

	sessionTotal, err := e.ledger.SessionTotal(userID)
	if err != nil {
		return nil, err
	}
	sessionCount, err := e.ledger.SessionCount(userID)
	if err != nil {
		return nil, err
	}

	total := u.TotalEarned + u.BaseAmount
	level, progress := e.advance(u.Level, u.LevelProgress, u.BaseAmount, total)

	if err := e.users.SetLevelState(userID, level, progress, total); err != nil {
		return nil, err
	}
	if err := e.users.SetLastBonusDate(userID, DateKey(now)); err != nil {
		return nil, err
	}
	if err := e.ledger.ClearSession(userID); err != nil {
		return nil, err
	}

	e.logger.Info("weekly reset",
		"user", u.Username,
		"archived", sessionCount,
		"archived_total", sessionTotal,
		"bonus", u.BaseAmount,
	)

	return &ResetResult{
		Ran:           true,
		ArchivedCount: sessionCount,
		ArchivedTotal: sessionTotal,
		BonusAmount:   u.BaseAmount,
	}, nil
}

// LevelView returns the level and progress fraction to display for a user.
// Under the derived policy both come from all-time earnings; under the
// threshold policy they come from the stored level state.
func (e *Engine) LevelView(u *model.User) (int, float64) {
	if e.policy == PolicyDerived {
		return DerivedLevel(u.TotalEarned), ProgressFraction(u.TotalEarned)
	}
	target := float64(u.Level) * levelSpan
	f := u.LevelProgress / target
	if f > 1 {
		f = 1
	}
	return u.Level, f
}

// advance computes the next level state for one credited amount.
func (e *Engine) advance(level int, progress, amount, total float64) (int, float64) {
	if e.policy == PolicyDerived {
		// Stored level is synced for display; progress holds the
		// remainder above the current level's floor.
		lvl := DerivedLevel(total)
		return lvl, total - float64(lvl-1)*levelSpan
	}
	return ApplyProgress(level, progress, amount)
}
