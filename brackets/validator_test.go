package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateExtraMatch(t *testing.T) {
	matches := freshBracket(t)
	extra := findMatch(t, matches, "R300M1").Clone()
	extra.ID = "R300M2"
	extra.MatchNumber = 2
	matches = append(matches, extra)

	report := NewValidator(Sabo16()).Validate(matches)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, "Expected 27 matches, found 28")
	assert.Contains(t, report.Errors, "Finals should have 3 matches, found 4")
}

func TestValidateMissingRound(t *testing.T) {
	matches := freshBracket(t)
	kept := matches[:0]
	for _, m := range matches {
		if m.RoundNumber != int(RoundLosersB2) {
			kept = append(kept, m)
		}
	}

	report := NewValidator(Sabo16()).Validate(kept)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, "Expected 27 matches, found 26")
	assert.Contains(t, report.Errors, "Losers Branch B should have 3 matches, found 2")
	assert.Contains(t, report.Errors, "Losers Branch B rounds should be [201 202], found [201]")
}

func TestValidateInvalidRound(t *testing.T) {
	matches := freshBracket(t)
	findMatch(t, matches, "R3M2").RoundNumber = 4

	report := NewValidator(Sabo16()).Validate(matches)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, "Match R3M2 has invalid round 4")
	assert.Contains(t, report.Errors, "Winners bracket should have 14 matches, found 13")
}

func TestValidateNumberingGapIsWarningOnly(t *testing.T) {
	matches := freshBracket(t)
	findMatch(t, matches, "R102M2").MatchNumber = 3

	report := NewValidator(Sabo16()).Validate(matches)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Contains(t, report.Warnings, "Round 102 match numbers should be 1..2, found [1 3]")
}

func TestValidateFreshBracketWarnsAboutEmptyRounds(t *testing.T) {
	report := NewValidator(Sabo16()).Validate(freshBracket(t))
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Contains(t, report.Warnings, "Round 2 has 0 distinct players across 8 slots (expected at least 4)")
	assert.Contains(t, report.Warnings, "Round 300 has 0 distinct players across 2 slots (expected at least 1)")
	for _, w := range report.Warnings {
		assert.NotContains(t, w, "Round 1 ")
	}
}

func TestValidateNilEntry(t *testing.T) {
	matches := freshBracket(t)
	matches[4] = nil

	report := NewValidator(Sabo16()).Validate(matches)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, "Match at position 4 is missing")
}

func TestValidateEmptyInstance(t *testing.T) {
	report := NewValidator(Sabo16()).Validate(nil)
	require.False(t, report.Valid)
	assert.Contains(t, report.Errors, "Expected 27 matches, found 0")
	assert.NotNil(t, report.Warnings)
	assert.Empty(t, report.Warnings)
}
