package models

import "time"

// RoundSnapshot is what gets pushed to subscribers and archived after every
// change to the tournament data.
type RoundSnapshot struct {
	ID           string     `json:"id"`
	Reason       string     `json:"reason"`
	Standings    []Standing `json:"standings"`
	Pairings     []Pairing  `json:"pairings"`
	PairingError string     `json:"pairing_error,omitempty"`
	MatchCount   int        `json:"match_count"`
	GeneratedAt  time.Time  `json:"generated_at"`
}
