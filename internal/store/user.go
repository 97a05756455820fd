package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ewanbell/choretab/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.BaseAmount, &u.Theme, &u.Avatar,
		&u.Level, &u.LevelProgress, &u.TotalEarned, &u.LastBonusDate,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, username, password_hash, base_amount, theme, avatar, level, level_progress, total_earned, last_bonus_date, created_at, updated_at`

// Create registers a new user. The password is stored only as a bcrypt hash.
// New accounts start at level 1 with no progress and no earnings.
func (s *UserStore) Create(username, password string, baseAmount float64) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if baseAmount < 0 {
		return nil, ErrInvalidInput
	}

	existing, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO users (username, password_hash, base_amount) VALUES (?, ?, ?)`,
		username, string(hash), baseAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Authenticate verifies username and password, returning ErrAuthFailure for
// both an unknown user and a wrong password.
func (s *UserStore) Authenticate(username, password string) (*model.User, error) {
	u, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrAuthFailure
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthFailure
	}
	return u, nil
}

// ChangePassword replaces the stored hash after verifying the old password.
func (s *UserStore) ChangePassword(username, oldPassword, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidInput
	}

	u, err := s.GetByUsername(username)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.db.Exec(
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		string(hash), time.Now().UTC(), u.ID,
	); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *UserStore) SetBaseAmount(id int64, amount float64) error {
	if amount < 0 {
		return ErrInvalidInput
	}
	return s.setField(id, "base_amount", amount)
}

func (s *UserStore) SetTheme(id int64, theme string) error {
	return s.setField(id, "theme", theme)
}

func (s *UserStore) SetAvatar(id int64, ref string) error {
	return s.setField(id, "avatar", ref)
}

// SetLevelState writes the level fields as one unit so a completion or bonus
// never leaves them half-updated.
func (s *UserStore) SetLevelState(id int64, level int, progress, totalEarned float64) error {
	_, err := s.db.Exec(
		`UPDATE users SET level = ?, level_progress = ?, total_earned = ?, updated_at = ? WHERE id = ?`,
		level, progress, totalEarned, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update level state: %w", err)
	}
	return nil
}

func (s *UserStore) SetLastBonusDate(id int64, date string) error {
	return s.setField(id, "last_bonus_date", date)
}

func (s *UserStore) setField(id int64, column string, value any) error {
	_, err := s.db.Exec(
		`UPDATE users SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return nil
}
