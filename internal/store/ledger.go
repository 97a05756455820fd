package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ewanbell/choretab/internal/model"
)

// LedgerStore is the append-only completion log. Rows with archived = 0 form
// the clearable session view; all rows together are the permanent history,
// so the history always contains every event the session ever held.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.Completion, error) {
	var c model.Completion
	var archived int
	err := scanner.Scan(&c.ID, &c.UserID, &c.ChoreName, &c.Amount, &archived, &c.CompletedAt)
	if err != nil {
		return nil, err
	}
	c.Archived = archived != 0
	return &c, nil
}

const completionCols = `id, user_id, chore_name, amount, archived, completed_at`

// Record appends a completion event. The name need not exist in the catalog
// (one-off entries) and repeat completions each get their own row. The amount
// is a snapshot; nothing ever rewrites it.
func (s *LedgerStore) Record(userID int64, choreName string, amount float64, at time.Time) (*model.Completion, error) {
	choreName = strings.TrimSpace(choreName)
	if choreName == "" || amount < 0 {
		return nil, ErrInvalidInput
	}

	result, err := s.db.Exec(
		`INSERT INTO completions (user_id, chore_name, amount, completed_at) VALUES (?, ?, ?, ?)`,
		userID, choreName, amount, at.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+completionCols+` FROM completions WHERE id = ?`, id)
	return scanCompletion(row)
}

// ClearSession archives the user's current session events. History is
// untouched; this is the soft reset behind both the clear button and the
// weekly reset.
func (s *LedgerStore) ClearSession(userID int64) error {
	_, err := s.db.Exec(`UPDATE completions SET archived = 1 WHERE user_id = ? AND archived = 0`, userID)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *LedgerStore) SessionEvents(userID int64) ([]model.Completion, error) {
	return s.listEvents(
		`SELECT `+completionCols+` FROM completions WHERE user_id = ? AND archived = 0 ORDER BY completed_at ASC, id ASC`,
		userID,
	)
}

func (s *LedgerStore) HistoryEvents(userID int64) ([]model.Completion, error) {
	return s.listEvents(
		`SELECT `+completionCols+` FROM completions WHERE user_id = ? ORDER BY completed_at ASC, id ASC`,
		userID,
	)
}

func (s *LedgerStore) listEvents(query string, args ...any) ([]model.Completion, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var events []model.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		events = append(events, *c)
	}
	return events, rows.Err()
}

func (s *LedgerStore) SessionTotal(userID int64) (float64, error) {
	return s.sum(`SELECT COALESCE(SUM(amount), 0) FROM completions WHERE user_id = ? AND archived = 0`, userID)
}

func (s *LedgerStore) HistoryTotal(userID int64) (float64, error) {
	return s.sum(`SELECT COALESCE(SUM(amount), 0) FROM completions WHERE user_id = ?`, userID)
}

func (s *LedgerStore) SessionCount(userID int64) (int, error) {
	return s.count(`SELECT COUNT(*) FROM completions WHERE user_id = ? AND archived = 0`, userID)
}

func (s *LedgerStore) HistoryCount(userID int64) (int, error) {
	return s.count(`SELECT COUNT(*) FROM completions WHERE user_id = ?`, userID)
}

// TotalInWindow sums all events (session and archived) recorded within the
// given duration before now. Used for the last-7-days and last-30-days rows
// on the summary.
func (s *LedgerStore) TotalInWindow(userID int64, now time.Time, window time.Duration) (float64, error) {
	return s.sum(
		`SELECT COALESCE(SUM(amount), 0) FROM completions WHERE user_id = ? AND completed_at >= ?`,
		userID, now.Add(-window).UTC(),
	)
}

func (s *LedgerStore) sum(query string, args ...any) (float64, error) {
	var total sql.NullFloat64
	if err := s.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum completions: %w", err)
	}
	return total.Float64, nil
}

func (s *LedgerStore) count(query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return n, nil
}
