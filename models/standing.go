package models

// Standing is a derived row of the ranking. It is never stored.
type Standing struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Wins    int    `json:"wins"`
	Matches int    `json:"matches"`
}

// Losses is derived from the other two counters.
func (s Standing) Losses() int {
	return s.Matches - s.Wins
}
