package model

import "time"

type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	BaseAmount    float64   `json:"base_amount"`
	Theme         string    `json:"theme"`
	Avatar        string    `json:"avatar"`
	Level         int       `json:"level"`
	LevelProgress float64   `json:"level_progress"`
	TotalEarned   float64   `json:"total_earned"`
	LastBonusDate string    `json:"last_bonus_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
