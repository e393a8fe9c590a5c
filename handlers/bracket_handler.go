package handlers

import (
	"net/http"

	"github.com/Dosada05/sabo-arena/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

type generateBracketInput struct {
	PlayerIDs []string `json:"player_ids"`
}

// GenerateHandler godoc
// @Summary Generate the SABO-16 bracket
// @Description Builds all 27 matches. Without a body the registered participants are seeded in order.
// @Tags bracket
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param input body generateBracketInput false "Explicit seeding, 16 player ids"
// @Success 201 {object} map[string]services.BracketView
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [post]
func (h *BracketHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input generateBracketInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	view, err := h.bracketService.GenerateAndSaveBracket(r.Context(), id, input.PlayerIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler godoc
// @Summary Get the bracket with progress
// @Tags bracket
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]services.BracketView
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ProgressHandler godoc
// @Summary Tournament progress
// @Tags bracket
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]services.ProgressView
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/bracket/progress [get]
func (h *BracketHandler) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	progress, err := h.bracketService.GetProgress(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"progress": progress}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ValidationHandler godoc
// @Summary Structural validation report of the stored bracket
// @Tags bracket
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]brackets.ValidationReport
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/bracket/validation [get]
func (h *BracketHandler) ValidationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.bracketService.ValidateBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"validation": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReadyMatchesHandler godoc
// @Summary Matches that can be played now
// @Tags bracket
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string][]models.Match
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/matches/ready [get]
func (h *BracketHandler) ReadyMatchesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.ListReadyMatches(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PendingMatchesHandler lists matches still waiting on upstream results.
func (h *BracketHandler) PendingMatchesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.ListPendingMatches(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
