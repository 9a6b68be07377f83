package models

import "time"

// Match is a single reported outcome. There are no draws.
type Match struct {
	ID        int       `json:"id" db:"id"`
	WinnerID  int       `json:"winner_id" db:"winner"`
	LoserID   int       `json:"loser_id" db:"loser"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
