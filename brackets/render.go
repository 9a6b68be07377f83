package brackets

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/swiss-tournament/models"
)

// BuildStandingsOutput formats standings into an aligned text table. Players
// tied on wins share a place; only the first of them shows it.
func BuildStandingsOutput(standings []models.Standing) string {
	if len(standings) == 0 {
		return "No players registered\n"
	}

	rows := make([][]string, 0, len(standings))
	priorWins := -1
	for idx, s := range standings {
		var place string
		if idx == 0 || s.Wins != priorWins {
			place = fmt.Sprintf("%d.", idx+1)
			priorWins = s.Wins
		}
		rows = append(rows, []string{
			place,
			strconv.Itoa(s.ID),
			s.Name,
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Losses()),
			strconv.Itoa(s.Matches),
		})
	}

	return renderTable([]string{"Place", "ID", "Name", "Wins", "Losses", "Matches"}, rows)
}

// BuildPairingsOutput formats pairings into an aligned text table, one board
// per pairing. A bye is listed last without a board number.
func BuildPairingsOutput(pairings []models.Pairing) string {
	if len(pairings) == 0 {
		return "No pairings\n"
	}

	rows := make([][]string, 0, len(pairings))
	for idx, p := range pairings {
		board := fmt.Sprintf("%d.", idx+1)
		p2 := fmt.Sprintf("%s(%d)", p.Player2Name, p.Player2ID)
		if p.IsBye {
			board = "n/a"
			p2 = ByePlayerName
		}
		rows = append(rows, []string{board, fmt.Sprintf("%s(%d)", p.Player1Name, p.Player1ID), p2})
	}

	return renderTable([]string{"Board", "Player 1", "Player 2"}, rows)
}

// renderTable left-aligns every column to its widest cell. Widths are counted
// in runes so that non-ASCII names line up.
func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(padRight(cell, widths[i]))
		}
		sb.WriteByte('\n')
	}
	writeRow(header)
	for _, r := range rows {
		writeRow(r)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
