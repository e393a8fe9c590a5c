package brackets

import (
	"testing"

	"github.com/Dosada05/sabo-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceTable(t *testing.T) {
	r := NewResolver(Sabo16())

	tests := []struct {
		from     int
		isWinner bool
		want     Route
	}{
		{1, true, Route{ToRound: 2}},
		{2, true, Route{ToRound: 3}},
		{3, true, Route{ToRound: 250}},
		{101, true, Route{ToRound: 102}},
		{102, true, Route{ToRound: 103}},
		{103, true, Route{ToRound: 250}},
		{201, true, Route{ToRound: 202}},
		{202, true, Route{ToRound: 250}},
		{250, true, Route{ToRound: 300}},
		{300, true, Route{Champion: true}},

		{1, false, Route{ToRound: 101}},
		{2, false, Route{ToRound: 201}},
		{3, false, Route{Eliminated: true}},
		{101, false, Route{Eliminated: true}},
		{102, false, Route{Eliminated: true}},
		{103, false, Route{Eliminated: true}},
		{201, false, Route{Eliminated: true}},
		{202, false, Route{Eliminated: true}},
		{250, false, Route{Eliminated: true}},
		{300, false, Route{Eliminated: true}},
	}

	for _, tt := range tests {
		got, err := r.Advance(tt.from, tt.isWinner)
		require.NoError(t, err, "round %d winner=%v", tt.from, tt.isWinner)
		assert.Equal(t, tt.want, got, "round %d winner=%v", tt.from, tt.isWinner)

		again, _ := r.Advance(tt.from, tt.isWinner)
		assert.Equal(t, got, again, "advance must be deterministic")
	}
	assert.Len(t, tests, 20)
}

func TestAdvanceRejectsUnknownRound(t *testing.T) {
	r := NewResolver(Sabo16())
	for _, bad := range []int{0, 4, 104, 203, 260, 400} {
		_, err := r.Advance(bad, true)
		assert.ErrorIs(t, err, ErrInvalidRound)
		_, err = r.Advance(bad, false)
		assert.ErrorIs(t, err, ErrInvalidRound)
	}
}

func TestPlace(t *testing.T) {
	r := NewResolver(Sabo16())

	tests := []struct {
		name      string
		round     int
		match     int
		isWinner  bool
		want      Placement
		eliminate bool
	}{
		{"wb r1 m1 winner", 1, 1, true, Placement{Round: 2, MatchNumber: 1, MatchID: "R2M1", Slot: SlotFirst}, false},
		{"wb r1 m2 winner", 1, 2, true, Placement{Round: 2, MatchNumber: 1, MatchID: "R2M1", Slot: SlotSecond}, false},
		{"wb r1 m7 loser", 1, 7, false, Placement{Round: 101, MatchNumber: 4, MatchID: "R101M4", Slot: SlotFirst}, false},
		{"wb r1 m8 loser", 1, 8, false, Placement{Round: 101, MatchNumber: 4, MatchID: "R101M4", Slot: SlotSecond}, false},
		{"wb r2 m3 loser", 2, 3, false, Placement{Round: 201, MatchNumber: 2, MatchID: "R201M2", Slot: SlotFirst}, false},
		{"wb r3 m1 winner", 3, 1, true, Placement{Round: 250, MatchNumber: 1, MatchID: "R250M1", Slot: SlotFirst}, false},
		{"wb r3 m2 winner", 3, 2, true, Placement{Round: 250, MatchNumber: 2, MatchID: "R250M2", Slot: SlotFirst}, false},
		{"wb r3 m2 loser", 3, 2, false, Placement{}, true},
		{"losers a final", 103, 1, true, Placement{Round: 250, MatchNumber: 1, MatchID: "R250M1", Slot: SlotSecond}, false},
		{"losers b final", 202, 1, true, Placement{Round: 250, MatchNumber: 2, MatchID: "R250M2", Slot: SlotSecond}, false},
		{"losers a r2", 102, 2, true, Placement{Round: 103, MatchNumber: 1, MatchID: "R103M1", Slot: SlotSecond}, false},
		{"semifinal 2", 250, 2, true, Placement{Round: 300, MatchNumber: 1, MatchID: "R300M1", Slot: SlotSecond}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, route, ok, err := r.Place(tt.round, tt.match, tt.isWinner)
			require.NoError(t, err)
			if tt.eliminate {
				assert.False(t, ok)
				assert.True(t, route.Eliminated)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, _, _, err := r.Place(1, 9, true)
	assert.ErrorIs(t, err, ErrInvalidMatchNumber)
}

func TestAdvanceMatchRequiresWinner(t *testing.T) {
	r := NewResolver(Sabo16())
	matches := freshBracket(t)

	_, err := r.AdvanceMatch(matches, findMatch(t, matches, "R1M1"))
	assert.ErrorIs(t, err, ErrIncompleteMatch)

	_, err = r.AdvanceMatch(matches, nil)
	assert.ErrorIs(t, err, ErrIncompleteMatch)

	outsider := "outsider"
	m := findMatch(t, matches, "R1M1")
	m.WinnerID = &outsider
	m.Status = models.MatchStatusCompleted
	_, err = r.AdvanceMatch(matches, m)
	assert.ErrorIs(t, err, ErrWinnerNotInMatch)

	halfEmpty := findMatch(t, matches, "R1M2")
	winner := *halfEmpty.Player1ID
	halfEmpty.WinnerID = &winner
	halfEmpty.Player2ID = nil
	halfEmpty.Status = models.MatchStatusCompleted
	_, err = r.AdvanceMatch(matches, halfEmpty)
	assert.ErrorIs(t, err, ErrIncompleteMatch)

	for _, dest := range []string{"R2M1", "R101M1"} {
		d := findMatch(t, matches, dest)
		assert.Nil(t, d.Player1ID, dest)
		assert.Nil(t, d.Player2ID, dest)
	}
}

func TestAdvanceMatchFillsSlots(t *testing.T) {
	r := NewResolver(Sabo16())
	matches := freshBracket(t)

	m := findMatch(t, matches, "R1M2")
	winner := *m.Player2ID
	m.WinnerID = &winner
	m.Status = models.MatchStatusCompleted

	adv, err := r.AdvanceMatch(matches, m)
	require.NoError(t, err)
	assert.Equal(t, "player-04", adv.WinnerID)
	assert.Equal(t, "player-03", adv.LoserID)

	r2 := findMatch(t, matches, "R2M1")
	require.NotNil(t, r2.Player2ID)
	assert.Nil(t, r2.Player1ID)
	assert.Equal(t, "player-04", *r2.Player2ID)
	assert.Equal(t, models.MatchStatusPending, r2.Status)

	la := findMatch(t, matches, "R101M1")
	require.NotNil(t, la.Player2ID)
	assert.Equal(t, "player-03", *la.Player2ID)

	again, err := r.AdvanceMatch(matches, m)
	require.NoError(t, err, "re-applying the same advancement is a no-op")
	assert.Len(t, again.Updated, 1)
}

func TestRecordResultAlternatingWinnersRoundOne(t *testing.T) {
	r := NewResolver(Sabo16())
	matches := freshBracket(t)

	// odd matches first: every R2 match gets exactly its first slot
	for n := 1; n <= 8; n += 2 {
		m := findMatch(t, matches, MatchID(RoundWinners1, n))
		_, err := r.RecordResult(matches, m.ID, MatchResult{WinnerID: *m.Player1ID})
		require.NoError(t, err)
	}
	for n := 1; n <= 4; n++ {
		m := findMatch(t, matches, MatchID(RoundWinners2, n))
		assert.NotNil(t, m.Player1ID, "R2M%d first slot", n)
		assert.Nil(t, m.Player2ID, "R2M%d second slot", n)
		assert.Equal(t, models.MatchStatusPending, m.Status)
	}

	for n := 2; n <= 8; n += 2 {
		m := findMatch(t, matches, MatchID(RoundWinners1, n))
		_, err := r.RecordResult(matches, m.ID, MatchResult{WinnerID: *m.Player2ID})
		require.NoError(t, err)
	}

	players := seededPlayers(16)
	for n := 1; n <= 4; n++ {
		m := findMatch(t, matches, MatchID(RoundWinners2, n))
		require.True(t, m.HasBothPlayers())
		assert.Equal(t, models.MatchStatusReady, m.Status)
		// R1 match 2n-1 was won by its first player, R1 match 2n by its second
		assert.Equal(t, players[4*(n-1)], *m.Player1ID)
		assert.Equal(t, players[4*(n-1)+3], *m.Player2ID)

		la := findMatch(t, matches, MatchID(RoundLosersA1, n))
		require.True(t, la.HasBothPlayers())
		assert.Equal(t, models.MatchStatusReady, la.Status)
		assert.Equal(t, players[4*(n-1)+1], *la.Player1ID)
		assert.Equal(t, players[4*(n-1)+2], *la.Player2ID)
	}
}

func TestRecordResultErrors(t *testing.T) {
	r := NewResolver(Sabo16())
	matches := freshBracket(t)

	_, err := r.RecordResult(matches, "R9M9", MatchResult{WinnerID: "player-01"})
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = r.RecordResult(matches, "R2M1", MatchResult{WinnerID: "player-01"})
	assert.ErrorIs(t, err, ErrMatchNotReady)

	_, err = r.RecordResult(matches, "R1M1", MatchResult{WinnerID: "player-05"})
	assert.ErrorIs(t, err, ErrWinnerNotInMatch)

	_, err = r.RecordResult(matches, "R1M1", MatchResult{WinnerID: "player-01", WinnerScore: intPtr(3), LoserScore: intPtr(5)})
	assert.ErrorIs(t, err, ErrInvalidScore)

	m := findMatch(t, matches, "R1M1")
	assert.Equal(t, models.MatchStatusReady, m.Status, "failed submissions leave the match untouched")
	assert.Nil(t, m.WinnerID)

	_, err = r.RecordResult(matches, "R1M1", MatchResult{WinnerID: "player-02", WinnerScore: intPtr(7), LoserScore: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, *m.ScorePlayer1)
	assert.Equal(t, 7, *m.ScorePlayer2)

	_, err = r.RecordResult(matches, "R1M1", MatchResult{WinnerID: "player-02"})
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
}

func TestRecordResultSlotOccupiedLeavesMatchUntouched(t *testing.T) {
	r := NewResolver(Sabo16())
	matches := freshBracket(t)

	intruder := "someone-else"
	findMatch(t, matches, "R2M1").Player1ID = &intruder

	_, err := r.RecordResult(matches, "R1M1", MatchResult{WinnerID: "player-01"})
	assert.ErrorIs(t, err, ErrSlotOccupied)

	m := findMatch(t, matches, "R1M1")
	assert.Equal(t, models.MatchStatusReady, m.Status)
	assert.Nil(t, m.WinnerID)
	assert.Nil(t, findMatch(t, matches, "R101M1").Player1ID)
}

func TestWinnersRoundThreeLoserIsEliminated(t *testing.T) {
	r := NewResolver(Sabo16())
	matches := freshBracket(t)
	playWhile(t, r, matches, func(round int) bool { return round <= 2 })

	m := findMatch(t, matches, "R3M2")
	require.Equal(t, models.MatchStatusReady, m.Status)
	loser := *m.Player2ID

	adv, err := r.RecordResult(matches, "R3M2", MatchResult{WinnerID: *m.Player1ID})
	require.NoError(t, err)
	require.NotNil(t, adv.EliminatedID)
	assert.Equal(t, loser, *adv.EliminatedID)
	assert.Nil(t, adv.LoserPlacement)
	require.NotNil(t, adv.WinnerPlacement)
	assert.Equal(t, "R250M2", adv.WinnerPlacement.MatchID)
	assert.Equal(t, SlotFirst, adv.WinnerPlacement.Slot)

	for _, other := range matches {
		if other.RoundNumber > 3 {
			assert.False(t, other.HasPlayer(loser), "eliminated player found in %s", other.ID)
		}
	}
}

func TestFullTournamentCrownsChampion(t *testing.T) {
	r := NewResolver(Sabo16())
	matches := freshBracket(t)
	playWhile(t, r, matches, anyRound)

	for _, m := range matches {
		assert.Equal(t, models.MatchStatusCompleted, m.Status, "match %s", m.ID)
	}

	tracker := NewProgressTracker(Sabo16())
	champion, ok := tracker.Champion(matches)
	require.True(t, ok)
	assert.Equal(t, "player-01", champion)

	entrants := tracker.SemifinalEntrants(matches)
	require.Len(t, entrants, 4)
	for _, e := range entrants {
		assert.NotNil(t, e.PlayerID, "seat %s", e.Seat.Label)
	}

	report := NewValidator(Sabo16()).Validate(matches)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestAlternateTopologyNeedsNoResolverChanges(t *testing.T) {
	mini := Topology{
		Name:        "mini-4",
		PlayerCount: 4,
		SeedRound:   RoundWinners1,
		Groups: []BranchGroup{{
			Key:    "winners",
			Label:  "Winners bracket",
			Rounds: []RoundSpec{{RoundWinners1, 2}, {RoundWinners2, 1}},
			Total:  3,
		}},
		WinnerPath: map[Round]Round{RoundWinners1: RoundWinners2},
		LoserPath:  map[Round]Round{},
	}

	matches, err := NewSabo16Generator(mini).Generate(seededPlayers(4))
	require.NoError(t, err)
	require.Len(t, matches, 3)

	r := NewResolver(mini)
	route, err := r.Advance(2, true)
	require.NoError(t, err)
	assert.True(t, route.Champion)

	_, err = r.Advance(101, true)
	assert.ErrorIs(t, err, ErrInvalidRound)

	_, err = r.RecordResult(matches, "R1M1", MatchResult{WinnerID: "player-01"})
	require.NoError(t, err)
	_, err = r.RecordResult(matches, "R1M2", MatchResult{WinnerID: "player-04"})
	require.NoError(t, err)
	adv, err := r.RecordResult(matches, "R2M1", MatchResult{WinnerID: "player-04"})
	require.NoError(t, err)
	require.NotNil(t, adv.ChampionID)
	assert.Equal(t, "player-04", *adv.ChampionID)

	assert.True(t, NewValidator(mini).Validate(matches).Valid)
}
