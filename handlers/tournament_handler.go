package handlers

import (
	"net/http"

	"github.com/openleague/league-system/models"
	"github.com/openleague/league-system/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	viewService       services.ViewService
}

func NewTournamentHandler(ts services.TournamentService, vs services.ViewService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts, viewService: vs}
}

type createTournamentInput struct {
	EventID              int                         `json:"event_id"`
	Name                 string                      `json:"name"`
	Type                 string                      `json:"type"`
	SeedingType          string                      `json:"seeding_type"`
	ParticipantType      string                      `json:"participant_type"`
	BestOf               int                         `json:"best_of"`
	RoundBestOf          map[int]int                 `json:"round_best_of"`
	TotalRounds          *int                        `json:"total_rounds"`
	GroupSize            *int                        `json:"group_size"`
	AdvanceCount         *int                        `json:"advance_count"`
	PlacementPointConfig models.PlacementPointConfig `json:"placement_point_config"`
	GameTypeID           *int                        `json:"game_type_id"`
}

// CreateHandler handles POST /tournaments.
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input createTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t := &models.Tournament{
		EventID:              input.EventID,
		Name:                 input.Name,
		Type:                 models.TournamentType(input.Type),
		SeedingType:          models.SeedingType(input.SeedingType),
		ParticipantType:      models.ParticipantType(input.ParticipantType),
		BestOf:               input.BestOf,
		RoundBestOf:          input.RoundBestOf,
		TotalRounds:          input.TotalRounds,
		GroupSize:            input.GroupSize,
		AdvanceCount:         input.AdvanceCount,
		PlacementPointConfig: input.PlacementPointConfig,
		GameTypeID:           input.GameTypeID,
	}
	if err := h.tournamentService.Create(r.Context(), t); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}: the full view with
// participants, matches and groups.
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	t, err := h.viewService.TournamentView(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /tournaments/{tournamentID}.
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addParticipantInput struct {
	Entrant models.Entrant `json:"entrant"`
	Seed    *int           `json:"seed"`
}

// AddParticipantHandler handles POST /tournaments/{tournamentID}/participants.
func (h *TournamentHandler) AddParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input addParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	p, err := h.tournamentService.AddParticipant(r.Context(), id, input.Entrant, input.Seed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": p}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveParticipantHandler handles DELETE /tournaments/{tournamentID}/participants/{participantID}.
func (h *TournamentHandler) RemoveParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.RemoveParticipant(r.Context(), id, participantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setSeedsInput struct {
	// participant id -> seed number
	Seeds map[int]int `json:"seeds"`
}

// SetSeedsHandler handles PUT /tournaments/{tournamentID}/seeds.
func (h *TournamentHandler) SetSeedsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input setSeedsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.SetSeeds(r.Context(), id, input.Seeds); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartHandler handles POST /tournaments/{tournamentID}/start.
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Start(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	t, err := h.viewService.TournamentView(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type gameResultInput struct {
	WinnerSlot        int  `json:"winner_slot"`
	Participant1Score int  `json:"participant1_score"`
	Participant2Score int  `json:"participant2_score"`
	Draw              bool `json:"draw"`
}

// RecordResultHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/results.
func (h *TournamentHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input gameResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Draw {
		err = h.tournamentService.RecordDraw(r.Context(), id, matchID, input.Participant1Score, input.Participant2Score)
	} else {
		err = h.tournamentService.RecordMatchResult(r.Context(), id, matchID, models.GameResult{
			WinnerSlot:        input.WinnerSlot,
			Participant1Score: input.Participant1Score,
			Participant2Score: input.Participant2Score,
		})
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type forfeitInput struct {
	ForfeitingSlot int `json:"forfeiting_slot"`
}

// ForfeitHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/forfeit.
func (h *TournamentHandler) ForfeitHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input forfeitInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.ForfeitMatch(r.Context(), id, matchID, input.ForfeitingSlot); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UndoResultHandler handles DELETE /tournaments/{tournamentID}/matches/{matchID}/results.
func (h *TournamentHandler) UndoResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.UndoMatchResult(r.Context(), id, matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type groupResultInput struct {
	// Ordered finish list, best first.
	Placements []int `json:"placements"`
}

// RecordGroupResultHandler handles POST /tournaments/{tournamentID}/groups/{groupID}/results.
func (h *TournamentHandler) RecordGroupResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input groupResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.RecordGroupResult(r.Context(), id, groupID, input.Placements); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type advanceRoundInput struct {
	AllowRematch bool `json:"allow_rematch"`
}

// AdvanceRoundHandler handles POST /tournaments/{tournamentID}/rounds.
func (h *TournamentHandler) AdvanceRoundHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input advanceRoundInput
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	if err := h.tournamentService.AdvanceRound(r.Context(), id, input.AllowRematch); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	t, err := h.viewService.TournamentView(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReopenHandler handles POST /tournaments/{tournamentID}/reopen.
func (h *TournamentHandler) ReopenHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Reopen(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StandingsHandler handles GET /tournaments/{tournamentID}/standings.
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.viewService.SwissStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
