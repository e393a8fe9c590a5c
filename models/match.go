package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusReady     MatchStatus = "ready"
	MatchStatusCompleted MatchStatus = "completed"
)

// BracketType is derived from the round number and never stored on its own.
type BracketType string

const (
	BracketWinners    BracketType = "winners"
	BracketLosersA    BracketType = "losers_a"
	BracketLosersB    BracketType = "losers_b"
	BracketSemifinals BracketType = "semifinals"
	BracketFinal      BracketType = "final"
)

// Match is one node of a SABO-16 bracket.
type Match struct {
	ID           string      `json:"id" db:"id"`
	TournamentID string      `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int         `json:"round_number" db:"round_number"`
	MatchNumber  int         `json:"match_number" db:"match_number"`
	BracketType  BracketType `json:"bracket_type" db:"-"`

	Player1ID *string `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID *string `json:"player2_id,omitempty" db:"player2_id"`
	WinnerID  *string `json:"winner_id,omitempty" db:"winner_id"`

	ScorePlayer1 *int `json:"score_player1,omitempty" db:"score_player1"`
	ScorePlayer2 *int `json:"score_player2,omitempty" db:"score_player2"`

	Status           MatchStatus `json:"status" db:"status"`
	NextMatchID      *string     `json:"next_match_id,omitempty" db:"next_match_id"`
	LoserNextMatchID *string     `json:"loser_next_match_id,omitempty" db:"loser_next_match_id"`

	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// HasBothPlayers reports whether both player slots are filled.
func (m *Match) HasBothPlayers() bool {
	return m.Player1ID != nil && *m.Player1ID != "" && m.Player2ID != nil && *m.Player2ID != ""
}

func (m *Match) HasPlayer(playerID string) bool {
	return (m.Player1ID != nil && *m.Player1ID == playerID) || (m.Player2ID != nil && *m.Player2ID == playerID)
}

// LoserID returns the player that did not win. Empty until the match is completed.
func (m *Match) LoserID() string {
	if m.WinnerID == nil || !m.HasBothPlayers() {
		return ""
	}
	if *m.Player1ID == *m.WinnerID {
		return *m.Player2ID
	}
	return *m.Player1ID
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (m *Match) Clone() *Match {
	c := *m
	c.Player1ID = cloneString(m.Player1ID)
	c.Player2ID = cloneString(m.Player2ID)
	c.WinnerID = cloneString(m.WinnerID)
	c.NextMatchID = cloneString(m.NextMatchID)
	c.LoserNextMatchID = cloneString(m.LoserNextMatchID)
	c.ScorePlayer1 = cloneInt(m.ScorePlayer1)
	c.ScorePlayer2 = cloneInt(m.ScorePlayer2)
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
