package brackets

import (
	"math"
	"sort"

	"github.com/Dosada05/sabo-arena/models"
)

const (
	StageTournamentComplete = "Tournament Complete"
	StageGrandFinal         = "Grand Final"
	StageSemifinalsReady    = "Semifinals Ready"
	StageLosersActive       = "Losers Brackets Active"
	StageWinnersActive      = "Winners Bracket Active"
)

const (
	ActionCompleteFinal   = "Complete the Grand Final"
	ActionStartSemifinals = "Start Semifinals (4 finalists)"
	ActionCompleteLosersA = "Complete Losers Branch A"
	ActionCompleteLosersB = "Complete Losers Branch B"
	ActionCompleteWinners = "Complete Winners Bracket matches"
)

type StageCount struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func (c StageCount) Done() bool {
	return c.Completed >= c.Total
}

type StageBreakdown struct {
	Winners    StageCount `json:"winners"`
	LosersA    StageCount `json:"losersA"`
	LosersB    StageCount `json:"losersB"`
	Semifinals StageCount `json:"semifinals"`
	Final      StageCount `json:"final"`
}

type TournamentProgress struct {
	TotalMatches       int            `json:"totalMatches"`
	CompletedMatches   int            `json:"completedMatches"`
	ProgressPercentage int            `json:"progressPercentage"`
	CurrentStage       string         `json:"currentStage"`
	NextActions        []string       `json:"nextActions"`
	StageBreakdown     StageBreakdown `json:"stageBreakdown"`
}

// SemifinalEntrant is one convergence seat and, once decided, the player filling it.
type SemifinalEntrant struct {
	Seat     SemifinalSeat `json:"seat"`
	PlayerID *string       `json:"player_id,omitempty"`
}

type ProgressTracker struct {
	topology Topology
}

func NewProgressTracker(t Topology) *ProgressTracker {
	return &ProgressTracker{topology: t}
}

// Progress summarises the instance. Totals come from the topology, so the breakdown always
// sums to the topology's match count no matter what the instance contains.
func (p *ProgressTracker) Progress(matches []*models.Match) TournamentProgress {
	totals := p.topology.TotalsByType()
	completed := make(map[models.BracketType]int)
	completedMatches := 0

	for _, m := range matches {
		if m == nil || m.Status != models.MatchStatusCompleted {
			continue
		}
		completedMatches++
		if bt, err := Round(m.RoundNumber).BracketType(); err == nil {
			completed[bt]++
		}
	}

	count := func(bt models.BracketType) StageCount {
		return StageCount{Completed: completed[bt], Total: totals[bt]}
	}
	breakdown := StageBreakdown{
		Winners:    count(models.BracketWinners),
		LosersA:    count(models.BracketLosersA),
		LosersB:    count(models.BracketLosersB),
		Semifinals: count(models.BracketSemifinals),
		Final:      count(models.BracketFinal),
	}

	total := p.topology.TotalMatches()
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(completedMatches) / float64(total) * 100))
		if percentage > 100 {
			percentage = 100
		}
	}

	stage, actions := currentStage(breakdown)
	return TournamentProgress{
		TotalMatches:       total,
		CompletedMatches:   completedMatches,
		ProgressPercentage: percentage,
		CurrentStage:       stage,
		NextActions:        actions,
		StageBreakdown:     breakdown,
	}
}

func currentStage(b StageBreakdown) (string, []string) {
	actions := []string{}
	switch {
	case b.Final.Done():
		return StageTournamentComplete, actions
	case b.Semifinals.Done():
		return StageGrandFinal, append(actions, ActionCompleteFinal)
	case b.Winners.Done() && b.LosersA.Done() && b.LosersB.Done():
		return StageSemifinalsReady, append(actions, ActionStartSemifinals)
	case b.Winners.Done():
		if !b.LosersA.Done() {
			actions = append(actions, ActionCompleteLosersA)
		}
		if !b.LosersB.Done() {
			actions = append(actions, ActionCompleteLosersB)
		}
		return StageLosersActive, actions
	default:
		return StageWinnersActive, append(actions, ActionCompleteWinners)
	}
}

// IsRoundComplete is false for a round with no matches in the instance.
func (p *ProgressTracker) IsRoundComplete(matches []*models.Match, round int) bool {
	found := false
	for _, m := range matches {
		if m == nil || m.RoundNumber != round {
			continue
		}
		found = true
		if m.Status != models.MatchStatusCompleted || m.WinnerID == nil {
			return false
		}
	}
	return found
}

// ReadyMatches returns playable matches ordered by round and match number.
func (p *ProgressTracker) ReadyMatches(matches []*models.Match) []*models.Match {
	return filterSorted(matches, func(m *models.Match) bool {
		return m.Status == models.MatchStatusReady && m.HasBothPlayers()
	})
}

// PendingMatches returns matches still waiting on an upstream result.
func (p *ProgressTracker) PendingMatches(matches []*models.Match) []*models.Match {
	return filterSorted(matches, func(m *models.Match) bool {
		return m.Status == models.MatchStatusPending || (m.Status != models.MatchStatusCompleted && !m.HasBothPlayers())
	})
}

// SemifinalEntrants resolves each convergence seat from the feeding match's winner.
func (p *ProgressTracker) SemifinalEntrants(matches []*models.Match) []SemifinalEntrant {
	index := indexBySeat(matches)
	out := make([]SemifinalEntrant, 0, len(p.topology.SemifinalSeats))
	for _, seat := range p.topology.SemifinalSeats {
		entrant := SemifinalEntrant{Seat: seat}
		if src, ok := index[seatKey{int(seat.FromRound), seat.FromMatch}]; ok && src.Status == models.MatchStatusCompleted && src.WinnerID != nil {
			id := *src.WinnerID
			entrant.PlayerID = &id
		}
		out = append(out, entrant)
	}
	return out
}

// Champion returns the winner of the terminal round once it is completed.
func (p *ProgressTracker) Champion(matches []*models.Match) (string, bool) {
	for _, m := range matches {
		if m == nil {
			continue
		}
		if _, err := p.topology.MatchesInRound(Round(m.RoundNumber)); err != nil {
			continue
		}
		if _, advances := p.topology.WinnerPath[Round(m.RoundNumber)]; advances {
			continue
		}
		if m.Status == models.MatchStatusCompleted && m.WinnerID != nil {
			return *m.WinnerID, true
		}
	}
	return "", false
}

func filterSorted(matches []*models.Match, keep func(*models.Match) bool) []*models.Match {
	out := make([]*models.Match, 0)
	for _, m := range matches {
		if m != nil && keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].MatchNumber < out[j].MatchNumber
	})
	return out
}
