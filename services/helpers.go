package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/sabo-arena/brackets"
	"github.com/Dosada05/sabo-arena/models"
	"github.com/Dosada05/sabo-arena/repositories"
	"github.com/Dosada05/sabo-arena/storage"
	"github.com/google/uuid"
)

// Broadcaster is the part of the WebSocket hub the services need.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

func broadcast(b Broadcaster, tournamentID, messageType string, payload interface{}) {
	if b == nil {
		return
	}
	room := brackets.RoomForTournament(tournamentID)
	b.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    messageType,
		Payload: payload,
		RoomID:  room,
	})
}

func populateSnapshotURL(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament != nil && tournament.SnapshotKey != nil && *tournament.SnapshotKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*tournament.SnapshotKey)
		if url != "" {
			tournament.SnapshotURL = &url
		}
	}
}

// checkTournamentID rejects ids that cannot exist before they reach the uuid column.
func checkTournamentID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrTournamentNotFound, id)
	}
	return nil
}

func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrParticipantConflict):
		return ErrRegistrationConflict
	case errors.Is(err, repositories.ErrParticipantSeedConflict):
		return ErrSeedTaken
	case errors.Is(err, repositories.ErrParticipantTournamentInvalid),
		errors.Is(err, repositories.ErrMatchTournamentInvalid):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchSlotConflict):
		return ErrBracketAlreadyGenerated
	}
	return err
}
