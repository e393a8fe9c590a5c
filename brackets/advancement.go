package brackets

import (
	"fmt"

	"github.com/Dosada05/sabo-arena/models"
)

// Route is the outcome of Advance for one side of a match.
type Route struct {
	ToRound    Round `json:"to_round,omitempty"`
	Eliminated bool  `json:"eliminated,omitempty"`
	// Champion is set for the winner of the terminal round.
	Champion bool `json:"champion,omitempty"`
}

// Placement is a concrete destination seat.
type Placement struct {
	Round       Round  `json:"round"`
	MatchNumber int    `json:"match_number"`
	MatchID     string `json:"match_id"`
	Slot        Slot   `json:"slot"`
}

// MatchResult is what an organizer reports for a ready match.
type MatchResult struct {
	WinnerID    string `json:"winner_id"`
	WinnerScore *int   `json:"winner_score,omitempty"`
	LoserScore  *int   `json:"loser_score,omitempty"`
}

// Advancement describes every change RecordResult or AdvanceMatch applied to the instance.
type Advancement struct {
	MatchID         string          `json:"match_id"`
	WinnerID        string          `json:"winner_id"`
	LoserID         string          `json:"loser_id"`
	WinnerPlacement *Placement      `json:"winner_placement,omitempty"`
	LoserPlacement  *Placement      `json:"loser_placement,omitempty"`
	EliminatedID    *string         `json:"eliminated_id,omitempty"`
	ChampionID      *string         `json:"champion_id,omitempty"`
	Updated         []*models.Match `json:"-"`
}

type Resolver struct {
	topology Topology
}

func NewResolver(t Topology) *Resolver {
	return &Resolver{topology: t}
}

// Advance is total over the declared rounds crossed with the outcome.
func (r *Resolver) Advance(fromRound int, isWinner bool) (Route, error) {
	round := Round(fromRound)
	if _, err := r.topology.MatchesInRound(round); err != nil {
		return Route{}, err
	}
	if isWinner {
		next, ok := r.topology.WinnerPath[round]
		if !ok {
			return Route{Champion: true}, nil
		}
		return Route{ToRound: next}, nil
	}
	next, ok := r.topology.LoserPath[round]
	if !ok {
		return Route{Eliminated: true}, nil
	}
	return Route{ToRound: next}, nil
}

// Place resolves the seat an entrant takes when leaving (fromRound, fromMatch).
// ok is false when the entrant is eliminated or crowned.
func (r *Resolver) Place(fromRound, fromMatch int, isWinner bool) (Placement, Route, bool, error) {
	route, err := r.Advance(fromRound, isWinner)
	if err != nil {
		return Placement{}, route, false, err
	}
	count, _ := r.topology.MatchesInRound(Round(fromRound))
	if fromMatch < 1 || fromMatch > count {
		return Placement{}, route, false, fmt.Errorf("%w: round %d has %d matches, got %d", ErrInvalidMatchNumber, fromRound, count, fromMatch)
	}
	if route.Eliminated || route.Champion {
		return Placement{}, route, false, nil
	}

	if route.ToRound == r.topology.Convergence {
		for _, seat := range r.topology.SemifinalSeats {
			if int(seat.FromRound) == fromRound && seat.FromMatch == fromMatch {
				return Placement{
					Round:       route.ToRound,
					MatchNumber: seat.MatchNumber,
					MatchID:     MatchID(route.ToRound, seat.MatchNumber),
					Slot:        seat.Slot,
				}, route, true, nil
			}
		}
		return Placement{}, route, false, fmt.Errorf("%w: R%dM%d", ErrNoPlacement, fromRound, fromMatch)
	}

	n := FoldMatchNumber(fromMatch)
	return Placement{
		Round:       route.ToRound,
		MatchNumber: n,
		MatchID:     MatchID(route.ToRound, n),
		Slot:        SlotFor(fromMatch),
	}, route, true, nil
}

type seatKey struct {
	round int
	match int
}

type fill struct {
	match  *models.Match
	slot   Slot
	player string
}

// plan checks every destination before anything is mutated.
func (r *Resolver) plan(index map[seatKey]*models.Match, m *models.Match, winnerID, loserID string, adv *Advancement) ([]fill, error) {
	var fills []fill

	sides := []struct {
		isWinner bool
		player   string
	}{{true, winnerID}, {false, loserID}}

	for _, side := range sides {
		if side.player == "" {
			continue
		}
		placement, route, ok, err := r.Place(m.RoundNumber, m.MatchNumber, side.isWinner)
		if err != nil {
			return nil, fmt.Errorf("routing %s of match %s: %w", outcomeName(side.isWinner), m.ID, err)
		}
		if !ok {
			player := side.player
			switch {
			case route.Champion:
				adv.ChampionID = &player
			case route.Eliminated:
				adv.EliminatedID = &player
			}
			continue
		}

		dest, found := index[seatKey{int(placement.Round), placement.MatchNumber}]
		if !found {
			return nil, fmt.Errorf("%w: destination %s for %s of match %s", ErrMatchNotFound, placement.MatchID, outcomeName(side.isWinner), m.ID)
		}
		placement.MatchID = dest.ID
		current := slotValue(dest, placement.Slot)
		if current != "" && current != side.player {
			return nil, fmt.Errorf("%w: %s slot of match %s holds %s", ErrSlotOccupied, placement.Slot, dest.ID, current)
		}

		p := placement
		if side.isWinner {
			adv.WinnerPlacement = &p
		} else {
			adv.LoserPlacement = &p
		}
		if current == "" {
			fills = append(fills, fill{match: dest, slot: placement.Slot, player: side.player})
		}
	}
	return fills, nil
}

func outcomeName(isWinner bool) string {
	if isWinner {
		return "winner"
	}
	return "loser"
}

func slotValue(m *models.Match, s Slot) string {
	p := m.Player1ID
	if s == SlotSecond {
		p = m.Player2ID
	}
	if p == nil {
		return ""
	}
	return *p
}

func apply(fills []fill) []*models.Match {
	touched := make([]*models.Match, 0, len(fills))
	for _, f := range fills {
		player := f.player
		if f.slot == SlotSecond {
			f.match.Player2ID = &player
		} else {
			f.match.Player1ID = &player
		}
		if f.match.Status == models.MatchStatusPending && f.match.HasBothPlayers() {
			f.match.Status = models.MatchStatusReady
		}
		touched = append(touched, f.match)
	}
	return touched
}

func indexBySeat(matches []*models.Match) map[seatKey]*models.Match {
	index := make(map[seatKey]*models.Match, len(matches))
	for _, m := range matches {
		if m == nil {
			continue
		}
		index[seatKey{m.RoundNumber, m.MatchNumber}] = m
	}
	return index
}

// AdvanceMatch routes the winner and loser of a completed match into their destination slots.
func (r *Resolver) AdvanceMatch(matches []*models.Match, m *models.Match) (*Advancement, error) {
	if m == nil || m.WinnerID == nil || *m.WinnerID == "" || m.Status != models.MatchStatusCompleted {
		id := ""
		if m != nil {
			id = m.ID
		}
		return nil, fmt.Errorf("%w: %s", ErrIncompleteMatch, id)
	}

	if !m.HasBothPlayers() {
		return nil, fmt.Errorf("%w: %s has an empty player slot", ErrIncompleteMatch, m.ID)
	}
	if !m.HasPlayer(*m.WinnerID) {
		return nil, fmt.Errorf("%w: %q in %s", ErrWinnerNotInMatch, *m.WinnerID, m.ID)
	}

	adv := &Advancement{MatchID: m.ID, WinnerID: *m.WinnerID, LoserID: m.LoserID()}
	fills, err := r.plan(indexBySeat(matches), m, adv.WinnerID, adv.LoserID, adv)
	if err != nil {
		return nil, err
	}
	adv.Updated = append([]*models.Match{m}, apply(fills)...)
	return adv, nil
}

// RecordResult completes a ready match and applies the advancement to the instance in place.
// Nothing is mutated when an error is returned.
func (r *Resolver) RecordResult(matches []*models.Match, matchID string, result MatchResult) (*Advancement, error) {
	var m *models.Match
	for _, candidate := range matches {
		if candidate != nil && candidate.ID == matchID {
			m = candidate
			break
		}
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.Status == models.MatchStatusCompleted {
		return nil, fmt.Errorf("%w: %s", ErrMatchAlreadyCompleted, matchID)
	}
	if m.Status != models.MatchStatusReady || !m.HasBothPlayers() {
		return nil, fmt.Errorf("%w: %s is %s", ErrMatchNotReady, matchID, m.Status)
	}
	if result.WinnerID == "" || !m.HasPlayer(result.WinnerID) {
		return nil, fmt.Errorf("%w: %q in %s", ErrWinnerNotInMatch, result.WinnerID, matchID)
	}
	if err := checkScores(result); err != nil {
		return nil, err
	}

	loserID := *m.Player1ID
	if loserID == result.WinnerID {
		loserID = *m.Player2ID
	}

	adv := &Advancement{MatchID: m.ID, WinnerID: result.WinnerID, LoserID: loserID}
	fills, err := r.plan(indexBySeat(matches), m, result.WinnerID, loserID, adv)
	if err != nil {
		return nil, err
	}

	winner := result.WinnerID
	m.WinnerID = &winner
	m.Status = models.MatchStatusCompleted
	if *m.Player1ID == winner {
		m.ScorePlayer1, m.ScorePlayer2 = copyInt(result.WinnerScore), copyInt(result.LoserScore)
	} else {
		m.ScorePlayer1, m.ScorePlayer2 = copyInt(result.LoserScore), copyInt(result.WinnerScore)
	}

	adv.Updated = append([]*models.Match{m}, apply(fills)...)
	return adv, nil
}

func checkScores(result MatchResult) error {
	if result.WinnerScore != nil && *result.WinnerScore < 0 {
		return fmt.Errorf("%w: negative winner score", ErrInvalidScore)
	}
	if result.LoserScore != nil && *result.LoserScore < 0 {
		return fmt.Errorf("%w: negative loser score", ErrInvalidScore)
	}
	if result.WinnerScore != nil && result.LoserScore != nil && *result.WinnerScore <= *result.LoserScore {
		return fmt.Errorf("%w: winner score %d must exceed loser score %d", ErrInvalidScore, *result.WinnerScore, *result.LoserScore)
	}
	return nil
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
