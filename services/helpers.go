package services

import (
	"fmt"

	"github.com/openleague/league-system/models"
)

// validTransitions is the tournament lifecycle: draft -> in_progress ->
// completed, with reopening as the single backward edge.
var validTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.TournamentDraft:      {models.TournamentInProgress},
	models.TournamentInProgress: {models.TournamentCompleted},
	models.TournamentCompleted:  {models.TournamentInProgress},
}

func canTransition(from, to models.TournamentStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// requireInProgress gates operations that record or rewind results. A
// completed tournament maps to ErrStaleState: the caller most likely raced a
// completion it has not seen yet, and a refresh (or an explicit reopen) is
// the answer rather than a fixed request.
func requireInProgress(t *models.Tournament, op string) error {
	switch t.Status {
	case models.TournamentInProgress:
		return nil
	case models.TournamentCompleted:
		return fmt.Errorf("%w: tournament completed, %s needs a reopen", ErrStaleState, op)
	default:
		return fmt.Errorf("%w: %s requires an in-progress tournament", ErrNotEditable, op)
	}
}

func roomID(tournamentID int) string {
	return fmt.Sprintf("tournament:%d", tournamentID)
}

func intPtr(v int) *int {
	return &v
}
