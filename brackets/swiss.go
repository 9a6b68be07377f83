package brackets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/swiss-tournament/models"
)

// OddPolicy decides what happens to the last-ranked player when the number
// of players is odd.
type OddPolicy string

const (
	OddPolicyError OddPolicy = "error"
	OddPolicyBye   OddPolicy = "bye"
)

const (
	ByePlayerID   = 0
	ByePlayerName = "BYE"
)

var (
	ErrOddCompetitorCount = errors.New("odd number of competitors")
	ErrUnknownOddPolicy   = errors.New("unknown odd player policy")
)

// OddCompetitorCountError names the player left without an opponent.
type OddCompetitorCountError struct {
	Count    int
	Unpaired models.Standing
}

func (e *OddCompetitorCountError) Error() string {
	return fmt.Sprintf("cannot pair %d competitors: %q (id %d) has no opponent",
		e.Count, e.Unpaired.Name, e.Unpaired.ID)
}

func (e *OddCompetitorCountError) Unwrap() error {
	return ErrOddCompetitorCount
}

func ParseOddPolicy(s string) (OddPolicy, error) {
	switch OddPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OddPolicyError:
		return OddPolicyError, nil
	case OddPolicyBye:
		return OddPolicyBye, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownOddPolicy, s, OddPolicyError, OddPolicyBye)
	}
}

type SwissGenerator struct {
	oddPolicy OddPolicy
}

func NewSwissGenerator(oddPolicy OddPolicy) PairingGenerator {
	if oddPolicy == "" {
		oddPolicy = OddPolicyError
	}
	return &SwissGenerator{oddPolicy: oddPolicy}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// GeneratePairings pairs neighbours in the standings: 1st with 2nd, 3rd with
// 4th and so on. With an odd count the last-ranked player either gets a bye
// or the whole call fails, depending on the policy. A partial list is never
// returned.
func (g *SwissGenerator) GeneratePairings(params GeneratePairingsParams) ([]models.Pairing, error) {
	standings := params.Standings
	n := len(standings)

	if n%2 == 1 && g.oddPolicy != OddPolicyBye {
		return nil, &OddCompetitorCountError{Count: n, Unpaired: standings[n-1]}
	}

	pairings := make([]models.Pairing, 0, (n+1)/2)
	for i := 0; i+1 < n; i += 2 {
		p1, p2 := standings[i], standings[i+1]
		pairings = append(pairings, models.Pairing{
			Player1ID:   p1.ID,
			Player1Name: p1.Name,
			Player2ID:   p2.ID,
			Player2Name: p2.Name,
		})
	}

	if n%2 == 1 {
		last := standings[n-1]
		pairings = append(pairings, models.Pairing{
			Player1ID:   last.ID,
			Player1Name: last.Name,
			Player2ID:   ByePlayerID,
			Player2Name: ByePlayerName,
			IsBye:       true,
		})
	}

	return pairings, nil
}
