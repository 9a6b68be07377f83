package models

// Pairing is one head-to-head assignment for the next round.
type Pairing struct {
	Player1ID   int    `json:"player1_id"`
	Player1Name string `json:"player1_name"`
	Player2ID   int    `json:"player2_id"`
	Player2Name string `json:"player2_name"`
	IsBye       bool   `json:"is_bye,omitempty"`
}
