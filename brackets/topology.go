package brackets

import (
	"fmt"

	"github.com/Dosada05/sabo-arena/models"
)

// Round is one of the ten legal SABO-16 round numbers.
type Round int

const (
	RoundWinners1  Round = 1
	RoundWinners2  Round = 2
	RoundWinners3  Round = 3
	RoundLosersA1  Round = 101
	RoundLosersA2  Round = 102
	RoundLosersA3  Round = 103
	RoundLosersB1  Round = 201
	RoundLosersB2  Round = 202
	RoundSemifinal Round = 250
	RoundFinal     Round = 300
)

// AllRounds lists the legal rounds in play order.
var AllRounds = []Round{
	RoundWinners1, RoundWinners2, RoundWinners3,
	RoundLosersA1, RoundLosersA2, RoundLosersA3,
	RoundLosersB1, RoundLosersB2,
	RoundSemifinal, RoundFinal,
}

// ParseRound converts a stored round number into a Round.
func ParseRound(n int) (Round, error) {
	r := Round(n)
	if _, err := r.BracketType(); err != nil {
		return 0, err
	}
	return r, nil
}

// BracketType classifies the round. Every new round constant must be added here.
func (r Round) BracketType() (models.BracketType, error) {
	switch r {
	case RoundWinners1, RoundWinners2, RoundWinners3:
		return models.BracketWinners, nil
	case RoundLosersA1, RoundLosersA2, RoundLosersA3:
		return models.BracketLosersA, nil
	case RoundLosersB1, RoundLosersB2:
		return models.BracketLosersB, nil
	case RoundSemifinal:
		return models.BracketSemifinals, nil
	case RoundFinal:
		return models.BracketFinal, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidRound, int(r))
	}
}

// Slot is the player position inside a match.
type Slot int

const (
	SlotFirst  Slot = 1
	SlotSecond Slot = 2
)

func (s Slot) String() string {
	if s == SlotSecond {
		return "second"
	}
	return "first"
}

func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SlotFor is the fold rule: odd source matches feed the first slot, even ones the second.
func SlotFor(fromMatchNumber int) Slot {
	if fromMatchNumber%2 == 0 {
		return SlotSecond
	}
	return SlotFirst
}

// FoldMatchNumber is the destination match number under the fold rule: (1,2)→1, (3,4)→2, …
func FoldMatchNumber(fromMatchNumber int) int {
	return (fromMatchNumber + 1) / 2
}

// MatchID is the deterministic identifier the generator assigns to a bracket slot.
func MatchID(round Round, matchNumber int) string {
	return fmt.Sprintf("R%dM%d", int(round), matchNumber)
}

type RoundSpec struct {
	Round   Round `json:"round"`
	Matches int   `json:"matches"`
}

// BranchGroup is one row of the topology table.
type BranchGroup struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Rounds []RoundSpec `json:"rounds"`
	Total  int         `json:"total"`
	Note   string      `json:"note"`
}

func (g BranchGroup) RoundNumbers() []Round {
	out := make([]Round, len(g.Rounds))
	for i, rs := range g.Rounds {
		out[i] = rs.Round
	}
	return out
}

func (g BranchGroup) MatchesPerRound() []int {
	out := make([]int, len(g.Rounds))
	for i, rs := range g.Rounds {
		out[i] = rs.Matches
	}
	return out
}

// SemifinalSeat fixes which upstream finalist occupies which semifinal slot.
type SemifinalSeat struct {
	MatchNumber int    `json:"match_number"`
	Slot        Slot   `json:"slot"`
	FromRound   Round  `json:"from_round"`
	FromMatch   int    `json:"from_match"`
	Label       string `json:"label"`
}

// Topology is the single source of truth for the bracket shape and its routing tables.
// Treat it as immutable; Sabo16 hands out a fresh copy on every call.
type Topology struct {
	Name        string
	PlayerCount int
	SeedRound   Round
	Convergence Round
	Groups      []BranchGroup
	// WinnerPath has no entry for the terminal round.
	WinnerPath map[Round]Round
	// LoserPath only lists rounds whose losers get a second chance.
	LoserPath      map[Round]Round
	SemifinalSeats []SemifinalSeat
}

func Sabo16() Topology {
	return Topology{
		Name:        "SABO-16",
		PlayerCount: 16,
		SeedRound:   RoundWinners1,
		Convergence: RoundSemifinal,
		Groups: []BranchGroup{
			{
				Key:    "winners",
				Label:  "Winners bracket",
				Rounds: []RoundSpec{{RoundWinners1, 8}, {RoundWinners2, 4}, {RoundWinners3, 2}},
				Total:  14,
				Note:   "stops at two finalists",
			},
			{
				Key:    "losers_branch_a",
				Label:  "Losers Branch A",
				Rounds: []RoundSpec{{RoundLosersA1, 4}, {RoundLosersA2, 2}, {RoundLosersA3, 1}},
				Total:  7,
				Note:   "fed by the 8 winners round 1 losers",
			},
			{
				Key:    "losers_branch_b",
				Label:  "Losers Branch B",
				Rounds: []RoundSpec{{RoundLosersB1, 2}, {RoundLosersB2, 1}},
				Total:  3,
				Note:   "fed by the 4 winners round 2 losers",
			},
			{
				Key:    "finals",
				Label:  "Finals",
				Rounds: []RoundSpec{{RoundSemifinal, 2}, {RoundFinal, 1}},
				Total:  3,
				Note:   "2 winners finalists + Losers A finalist + Losers B finalist",
			},
		},
		WinnerPath: map[Round]Round{
			RoundWinners1:  RoundWinners2,
			RoundWinners2:  RoundWinners3,
			RoundWinners3:  RoundSemifinal,
			RoundLosersA1:  RoundLosersA2,
			RoundLosersA2:  RoundLosersA3,
			RoundLosersA3:  RoundSemifinal,
			RoundLosersB1:  RoundLosersB2,
			RoundLosersB2:  RoundSemifinal,
			RoundSemifinal: RoundFinal,
		},
		LoserPath: map[Round]Round{
			RoundWinners1: RoundLosersA1,
			RoundWinners2: RoundLosersB1,
		},
		SemifinalSeats: []SemifinalSeat{
			{MatchNumber: 1, Slot: SlotFirst, FromRound: RoundWinners3, FromMatch: 1, Label: "WB_finalist_1"},
			{MatchNumber: 1, Slot: SlotSecond, FromRound: RoundLosersA3, FromMatch: 1, Label: "LB_A_finalist"},
			{MatchNumber: 2, Slot: SlotFirst, FromRound: RoundWinners3, FromMatch: 2, Label: "WB_finalist_2"},
			{MatchNumber: 2, Slot: SlotSecond, FromRound: RoundLosersB2, FromMatch: 1, Label: "LB_B_finalist"},
		},
	}
}

// TotalMatches sums every group.
func (t Topology) TotalMatches() int {
	total := 0
	for _, g := range t.Groups {
		total += g.Total
	}
	return total
}

// Rounds returns every round of the topology in table order.
func (t Topology) Rounds() []Round {
	var out []Round
	for _, g := range t.Groups {
		out = append(out, g.RoundNumbers()...)
	}
	return out
}

// MatchesInRound returns the declared match count, or ErrInvalidRound.
func (t Topology) MatchesInRound(r Round) (int, error) {
	for _, g := range t.Groups {
		for _, rs := range g.Rounds {
			if rs.Round == r {
				return rs.Matches, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidRound, int(r))
}

// GroupOf returns the branch group that declares the round.
func (t Topology) GroupOf(r Round) (BranchGroup, error) {
	for _, g := range t.Groups {
		for _, rs := range g.Rounds {
			if rs.Round == r {
				return g, nil
			}
		}
	}
	return BranchGroup{}, fmt.Errorf("%w: %d", ErrInvalidRound, int(r))
}

// BracketTypeOf fails with ErrInvalidRound for rounds this topology does not declare.
func (t Topology) BracketTypeOf(round int) (models.BracketType, error) {
	r := Round(round)
	if _, err := t.MatchesInRound(r); err != nil {
		return "", err
	}
	return r.BracketType()
}

// TotalsByType sums declared match counts per bracket type.
func (t Topology) TotalsByType() map[models.BracketType]int {
	out := make(map[models.BracketType]int)
	for _, g := range t.Groups {
		for _, rs := range g.Rounds {
			bt, err := rs.Round.BracketType()
			if err != nil {
				continue
			}
			out[bt] += rs.Matches
		}
	}
	return out
}
