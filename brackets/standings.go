package brackets

import (
	"sort"

	"github.com/Dosada05/swiss-tournament/models"
)

// CalculateStandings builds one row per player from the full match history
// and orders the rows by wins descending. Players with equal wins are ordered
// by ascending ID, so the same input always produces the same ranking.
//
// Matches that reference a player missing from players are skipped; the
// storage layer's foreign keys keep that from happening in practice.
func CalculateStandings(players []models.Player, matches []models.Match) []models.Standing {
	standings := make([]models.Standing, 0, len(players))
	rowByID := make(map[int]int, len(players))

	for _, p := range players {
		if _, dup := rowByID[p.ID]; dup {
			continue
		}
		rowByID[p.ID] = len(standings)
		standings = append(standings, models.Standing{ID: p.ID, Name: p.Name})
	}

	for _, m := range matches {
		winnerRow, okWinner := rowByID[m.WinnerID]
		loserRow, okLoser := rowByID[m.LoserID]
		if !okWinner || !okLoser {
			continue
		}
		standings[winnerRow].Wins++
		standings[winnerRow].Matches++
		standings[loserRow].Matches++
	}

	SortStandings(standings)
	return standings
}

// SortStandings orders rows in place: wins descending, then ID ascending.
func SortStandings(standings []models.Standing) {
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].ID < standings[j].ID
	})
}
