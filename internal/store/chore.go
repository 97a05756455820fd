package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ewanbell/choretab/internal/model"
)

// ChoreStore holds the shared chore catalog, keyed by chore name.
type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	err := scanner.Scan(&c.ID, &c.Name, &c.Amount, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const choreCols = `id, name, amount, created_at`

// Add upserts a catalog entry. An empty name or non-positive amount is a
// silent no-op (nil, nil), matching the add form's behavior of simply not
// accepting the input. Re-adding an existing name overwrites its amount.
func (s *ChoreStore) Add(name string, amount float64) (*model.Chore, error) {
	name = strings.TrimSpace(name)
	if name == "" || amount <= 0 {
		return nil, nil
	}

	_, err := s.db.Exec(
		`INSERT INTO chores (name, amount) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET amount = excluded.amount`,
		name, amount,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert chore: %w", err)
	}
	return s.GetByName(name)
}

func (s *ChoreStore) GetByName(name string) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE name = ?`, name)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

// Remove deletes a catalog entry by name. Removing a name that is not in the
// catalog is not an error. Recorded completions are never touched.
func (s *ChoreStore) Remove(name string) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

// List returns the catalog in insertion order.
func (s *ChoreStore) List() ([]model.Chore, error) {
	rows, err := s.db.Query(`SELECT ` + choreCols + ` FROM chores ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}
