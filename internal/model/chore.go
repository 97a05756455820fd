package model

import "time"

// Chore is a catalog entry: a named task with the amount it pays out.
type Chore struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Completion is one recorded chore completion. The amount is snapshotted at
// completion time; later catalog edits never change it.
type Completion struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ChoreName   string    `json:"chore_name"`
	Amount      float64   `json:"amount"`
	Archived    bool      `json:"archived"`
	CompletedAt time.Time `json:"completed_at"`
}
