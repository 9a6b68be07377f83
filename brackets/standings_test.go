package brackets

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/Dosada05/swiss-tournament/models"
)

func fourPlayers() []models.Player {
	return []models.Player{
		{ID: 1, Name: "A"},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C"},
		{ID: 4, Name: "D"},
	}
}

// TestCalculateStandingsScenario reports A beats B, C beats D, A beats C and
// checks the resulting order and counters.
func TestCalculateStandingsScenario(t *testing.T) {
	matches := []models.Match{
		{ID: 1, WinnerID: 1, LoserID: 2},
		{ID: 2, WinnerID: 3, LoserID: 4},
		{ID: 3, WinnerID: 1, LoserID: 3},
	}

	got := CalculateStandings(fourPlayers(), matches)
	want := []models.Standing{
		{ID: 1, Name: "A", Wins: 2, Matches: 2},
		{ID: 3, Name: "C", Wins: 1, Matches: 2},
		{ID: 2, Name: "B", Wins: 0, Matches: 1},
		{ID: 4, Name: "D", Wins: 0, Matches: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CalculateStandings() = %+v; want %+v", got, want)
	}
}

func TestCalculateStandingsNoMatches(t *testing.T) {
	players := []models.Player{{ID: 7, Name: "G"}, {ID: 2, Name: "B"}, {ID: 5, Name: "E"}}

	got := CalculateStandings(players, nil)
	if len(got) != len(players) {
		t.Fatalf("got %d rows; want %d", len(got), len(players))
	}
	wantOrder := []int{2, 5, 7}
	for i, s := range got {
		if s.ID != wantOrder[i] {
			t.Errorf("row %d: ID = %d; want %d", i, s.ID, wantOrder[i])
		}
		if s.Wins != 0 || s.Matches != 0 {
			t.Errorf("row %d: wins=%d matches=%d; want 0/0", i, s.Wins, s.Matches)
		}
	}
}

func TestCalculateStandingsEmpty(t *testing.T) {
	got := CalculateStandings(nil, nil)
	if got == nil {
		t.Fatal("CalculateStandings(nil, nil) returned nil; want empty slice")
	}
	if len(got) != 0 {
		t.Fatalf("got %d rows; want 0", len(got))
	}
}

func TestCalculateStandingsSkipsUnknownPlayers(t *testing.T) {
	matches := []models.Match{
		{ID: 1, WinnerID: 1, LoserID: 99},
		{ID: 2, WinnerID: 2, LoserID: 1},
	}
	got := CalculateStandings(fourPlayers(), matches)
	total := 0
	for _, s := range got {
		total += s.Matches
	}
	if total != 2 {
		t.Errorf("sum of matches = %d; want 2", total)
	}
	if got[0].ID != 2 || got[0].Wins != 1 {
		t.Errorf("leader = %+v; want player 2 with 1 win", got[0])
	}
}

func randomMatches(r *rand.Rand, players []models.Player, n int) []models.Match {
	matches := make([]models.Match, 0, n)
	for i := 0; i < n; i++ {
		w := players[r.Intn(len(players))].ID
		l := players[r.Intn(len(players))].ID
		for l == w {
			l = players[r.Intn(len(players))].ID
		}
		matches = append(matches, models.Match{ID: i + 1, WinnerID: w, LoserID: l})
	}
	return matches
}

func randomPlayers(n int) []models.Player {
	players := make([]models.Player, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, models.Player{ID: i + 1, Name: string(rune('A' + i%26))})
	}
	return players
}

// TestCalculateStandingsInvariants checks the counting invariants and the
// ordering rules over a spread of random histories.
func TestCalculateStandingsInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for iter := 0; iter < 200; iter++ {
		players := randomPlayers(2 + r.Intn(20))
		matches := randomMatches(r, players, r.Intn(60))

		got := CalculateStandings(players, matches)

		if len(got) != len(players) {
			t.Fatalf("iter %d: got %d rows; want %d", iter, len(got), len(players))
		}
		total := 0
		for _, s := range got {
			if s.Wins > s.Matches {
				t.Errorf("iter %d: player %d wins %d > matches %d", iter, s.ID, s.Wins, s.Matches)
			}
			if s.Losses() < 0 {
				t.Errorf("iter %d: player %d has negative losses", iter, s.ID)
			}
			total += s.Matches
		}
		if total != 2*len(matches) {
			t.Errorf("iter %d: sum of matches = %d; want %d", iter, total, 2*len(matches))
		}
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			if prev.Wins < cur.Wins || (prev.Wins == cur.Wins && prev.ID > cur.ID) {
				t.Errorf("iter %d: rows %d and %d out of order: %+v, %+v", iter, i-1, i, prev, cur)
			}
		}
	}
}

// TestCalculateStandingsReproducible feeds the same data in different input
// orders and expects the identical ranking every time.
func TestCalculateStandingsReproducible(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	players := randomPlayers(12)
	matches := randomMatches(r, players, 30)

	first := CalculateStandings(players, matches)
	for i := 0; i < 20; i++ {
		shuffledPlayers := append([]models.Player(nil), players...)
		r.Shuffle(len(shuffledPlayers), func(a, b int) {
			shuffledPlayers[a], shuffledPlayers[b] = shuffledPlayers[b], shuffledPlayers[a]
		})
		shuffledMatches := append([]models.Match(nil), matches...)
		r.Shuffle(len(shuffledMatches), func(a, b int) {
			shuffledMatches[a], shuffledMatches[b] = shuffledMatches[b], shuffledMatches[a]
		})

		got := CalculateStandings(shuffledPlayers, shuffledMatches)
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: standings differ:\n got %+v\nwant %+v", i, got, first)
		}
	}
}
