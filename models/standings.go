package models

// SwissStanding is the computed per-participant line of a Swiss table. It is
// never persisted; it is derived in full from the ordered match history.
type SwissStanding struct {
	ParticipantID int     `json:"participant_id"`
	Name          string  `json:"name,omitempty"`
	Points        float64 `json:"points"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
	Byes          int     `json:"byes"`
	Buchholz      float64 `json:"buchholz"`
}
