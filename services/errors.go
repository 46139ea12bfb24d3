package services

import "errors"

// Sentinel errors of the service layer. Handlers translate these to HTTP
// status codes; everything else surfaces as an internal error.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid tournament status transition")
	ErrNotEditable       = errors.New("tournament is not editable in its current status")
	ErrDuplicateEntrant  = errors.New("entrant is already registered")
	ErrRoundNotFinished  = errors.New("current round is not finished yet")
	ErrTournamentOver    = errors.New("tournament has already run its final round")
	ErrStaleState        = errors.New("tournament state changed underneath the request")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrForbidden         = errors.New("operation not permitted for this user")
)
