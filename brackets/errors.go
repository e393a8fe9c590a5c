package brackets

import "errors"

var (
	ErrInvalidPlayerCount = errors.New("SABO-16 bracket requires exactly 16 players")
	ErrInvalidPlayerID    = errors.New("player id must not be empty")
	ErrDuplicatePlayer    = errors.New("player appears more than once in the seeding list")
	ErrInvalidRound       = errors.New("invalid SABO round")
	ErrInvalidMatchNumber = errors.New("match number out of range for round")
	ErrNoPlacement        = errors.New("no destination seat for advancing entrant")

	// ErrIncompleteMatch is a programmer error: advancement was requested before a winner was recorded.
	ErrIncompleteMatch = errors.New("match has no recorded winner")

	ErrMatchNotFound         = errors.New("match not found in bracket")
	ErrMatchNotReady         = errors.New("match is not ready to be played")
	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrWinnerNotInMatch      = errors.New("winner is not a player of this match")
	ErrInvalidScore          = errors.New("invalid match score")
	ErrSlotOccupied          = errors.New("destination slot is already taken by another player")
)
