package services

import "errors"

// Errors shared by the services and the HTTP error mapping.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrTournamentNotFound                = errors.New("tournament not found")
	ErrTournamentNameConflict            = errors.New("tournament name already exists")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentNotActive               = errors.New("tournament is not in progress")

	ErrRegistrationNotOpen  = errors.New("tournament registration is not open")
	ErrTournamentFull       = errors.New("tournament registration is full")
	ErrRegistrationConflict = errors.New("player is already registered for this tournament")
	ErrSeedTaken            = errors.New("seed is already taken in this tournament")

	ErrBracketAlreadyGenerated = errors.New("bracket has already been generated for this tournament")
	ErrBracketNotGenerated     = errors.New("bracket has not been generated yet")
	ErrBracketInvalid          = errors.New("generated bracket failed structural validation")
	ErrMatchNotFound           = errors.New("match not found")
)
