package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/sabo-arena/models"
)

// ValidationReport collects every structural problem; it is never returned as an error.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type Validator struct {
	topology Topology
}

func NewValidator(t Topology) *Validator {
	return &Validator{topology: t}
}

// Validate checks the instance against the topology: total count, per-group counts and round
// sets (errors), then per-round numbering and player coverage (warnings).
func (v *Validator) Validate(matches []*models.Match) ValidationReport {
	report := ValidationReport{Errors: []string{}, Warnings: []string{}}

	expectedTotal := v.topology.TotalMatches()
	if len(matches) != expectedTotal {
		report.Errors = append(report.Errors, fmt.Sprintf("Expected %d matches, found %d", expectedTotal, len(matches)))
	}

	byGroup := make(map[string][]*models.Match, len(v.topology.Groups))
	byRound := make(map[Round][]*models.Match)
	for i, m := range matches {
		if m == nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Match at position %d is missing", i))
			continue
		}
		group, err := v.topology.GroupOf(Round(m.RoundNumber))
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Match %s has invalid round %d", m.ID, m.RoundNumber))
			continue
		}
		byGroup[group.Key] = append(byGroup[group.Key], m)
		byRound[Round(m.RoundNumber)] = append(byRound[Round(m.RoundNumber)], m)
	}

	for _, group := range v.topology.Groups {
		found := byGroup[group.Key]
		if len(found) != group.Total {
			report.Errors = append(report.Errors, fmt.Sprintf("%s should have %d matches, found %d", group.Label, group.Total, len(found)))
		}

		declared := roundSet(group.RoundNumbers())
		present := make(map[Round]struct{})
		for _, m := range found {
			present[Round(m.RoundNumber)] = struct{}{}
		}
		if !sameRounds(declared, present) {
			report.Errors = append(report.Errors, fmt.Sprintf("%s rounds should be %v, found %v", group.Label, sortedRounds(declared), sortedRounds(present)))
		}
	}

	for _, round := range v.topology.Rounds() {
		roundMatches, ok := byRound[round]
		if !ok {
			continue
		}
		count, _ := v.topology.MatchesInRound(round)

		numbers := make([]int, 0, len(roundMatches))
		for _, m := range roundMatches {
			numbers = append(numbers, m.MatchNumber)
		}
		sort.Ints(numbers)
		if !isContiguous(numbers, count) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Round %d match numbers should be 1..%d, found %v", round, count, numbers))
		}

		players := make(map[string]struct{})
		for _, m := range roundMatches {
			if m.Player1ID != nil && *m.Player1ID != "" {
				players[*m.Player1ID] = struct{}{}
			}
			if m.Player2ID != nil && *m.Player2ID != "" {
				players[*m.Player2ID] = struct{}{}
			}
		}
		slots := count * 2
		if len(players)*2 < slots {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Round %d has %d distinct players across %d slots (expected at least %d)", round, len(players), slots, (slots+1)/2))
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}

func roundSet(rounds []Round) map[Round]struct{} {
	out := make(map[Round]struct{}, len(rounds))
	for _, r := range rounds {
		out[r] = struct{}{}
	}
	return out
}

func sameRounds(a, b map[Round]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for r := range a {
		if _, ok := b[r]; !ok {
			return false
		}
	}
	return true
}

func sortedRounds(set map[Round]struct{}) []int {
	out := make([]int, 0, len(set))
	for r := range set {
		out = append(out, int(r))
	}
	sort.Ints(out)
	return out
}

// isContiguous reports whether sorted equals exactly 1..count.
func isContiguous(sorted []int, count int) bool {
	if len(sorted) != count {
		return false
	}
	for i, n := range sorted {
		if n != i+1 {
			return false
		}
	}
	return true
}
