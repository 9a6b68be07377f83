package brackets

import (
	"github.com/Dosada05/swiss-tournament/models"
)

type GeneratePairingsParams struct {
	// Standings must already be in ranking order.
	Standings []models.Standing
}

type PairingGenerator interface {
	GeneratePairings(params GeneratePairingsParams) ([]models.Pairing, error)

	GetName() string
}
