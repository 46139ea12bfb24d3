package brackets

import (
	"context"
	"math/rand"

	"github.com/openleague/league-system/models"
)

// GenerateParams carries everything a generator needs. Rand is injectable so
// random seeding stays reproducible in tests; a nil Rand means the generator
// seeds its own source.
type GenerateParams struct {
	Tournament   *models.Tournament
	Participants []*models.TournamentParticipant
	Rand         *rand.Rand
}

// Generator produces the full set of match rows for a tournament start.
// Generators are pure: they never touch persistence.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]*models.BracketMatch, error)

	Name() string
}
