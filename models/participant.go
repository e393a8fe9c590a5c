package models

import "time"

type Participant struct {
	ID           int       `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	PlayerID     string    `json:"player_id" db:"player_id"`
	DisplayName  *string   `json:"display_name,omitempty" db:"display_name"`
	Seed         int       `json:"seed" db:"seed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
