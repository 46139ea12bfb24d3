package brackets

import "errors"

// Structural and state errors surfaced by the pure engines. The service layer
// wraps these into its own error vocabulary at the public boundary.
var (
	ErrNotEnoughParticipants = errors.New("not enough participants (minimum 2)")
	ErrMissingSeed           = errors.New("manual seeding requires a seed for every participant")
	ErrSeedCollision         = errors.New("duplicate seed assignment")
	ErrInvalidGroupConfig    = errors.New("invalid group size or advance count")

	ErrMatchAlreadyDecided      = errors.New("match is already decided")
	ErrMatchMissingParticipants = errors.New("match participants are not determined yet")
	ErrInvalidOutcome           = errors.New("invalid match outcome")
	ErrNothingToUndo            = errors.New("match has no recorded result to undo")
	ErrDownstreamPlayed         = errors.New("downstream match already played")

	ErrUnsatisfiablePairing = errors.New("no pairing exists without a rematch")

	ErrGroupAlreadyDecided = errors.New("group result is already recorded")
	ErrInvalidPlacements   = errors.New("placements must order exactly the group participants")
)
