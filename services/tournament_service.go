package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/sabo-arena/brackets"
	"github.com/Dosada05/sabo-arena/models"
	"github.com/Dosada05/sabo-arena/repositories"
	"github.com/Dosada05/sabo-arena/storage"
	"github.com/google/uuid"
)

type CreateTournamentInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type RegisterParticipantInput struct {
	PlayerID    string  `json:"player_id"`
	DisplayName *string `json:"display_name,omitempty"`
	// Seed is the 1-based seeding position; zero takes the next free one.
	Seed int `json:"seed,omitempty"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	RegisterParticipant(ctx context.Context, tournamentID string, input RegisterParticipantInput) (*models.Participant, error)
	ListParticipants(ctx context.Context, tournamentID string) ([]models.Participant, error)
	CancelTournament(ctx context.Context, id string) (*models.Tournament, error)
}

type tournamentService struct {
	tx              repositories.Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	hub             Broadcaster
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	hub Broadcaster,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		hub:             hub,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}

	t := &models.Tournament{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     input.Description,
		Status:          models.StatusRegistration,
		MaxParticipants: models.SaboPlayerCount,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.Info("tournament created", slog.String("tournament_id", t.ID), slog.String("name", t.Name))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	if err := checkTournamentID(id); err != nil {
		return nil, err
	}
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	populateSnapshotURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for i := range tournaments {
		populateSnapshotURL(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) RegisterParticipant(ctx context.Context, tournamentID string, input RegisterParticipantInput) (*models.Participant, error) {
	if err := checkTournamentID(tournamentID); err != nil {
		return nil, err
	}
	playerID := strings.TrimSpace(input.PlayerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player_id is required", ErrValidationFailed)
	}
	if input.Seed < 0 || input.Seed > models.SaboPlayerCount {
		return nil, fmt.Errorf("%w: seed must be between 1 and %d", ErrValidationFailed, models.SaboPlayerCount)
	}

	p := &models.Participant{
		TournamentID: tournamentID,
		PlayerID:     playerID,
		DisplayName:  input.DisplayName,
		Seed:         input.Seed,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.StatusRegistration {
			return ErrRegistrationNotOpen
		}

		count, err := s.participantRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if count >= t.MaxParticipants {
			return ErrTournamentFull
		}
		if p.Seed == 0 {
			p.Seed = count + 1
		}
		return s.participantRepo.Create(ctx, exec, p)
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.Info("participant registered",
		slog.String("tournament_id", tournamentID),
		slog.String("player_id", p.PlayerID),
		slog.Int("seed", p.Seed),
	)
	return p, nil
}

func (s *tournamentService) ListParticipants(ctx context.Context, tournamentID string) ([]models.Participant, error) {
	if err := checkTournamentID(tournamentID); err != nil {
		return nil, err
	}
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapRepositoryError(err)
	}
	participants, err := s.participantRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

// CancelTournament drops the bracket of a tournament that has not finished.
func (s *tournamentService) CancelTournament(ctx context.Context, id string) (*models.Tournament, error) {
	if err := checkTournamentID(id); err != nil {
		return nil, err
	}

	var tournament *models.Tournament
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, id)
		if err != nil {
			return err
		}
		switch t.Status {
		case models.StatusCompleted, models.StatusCanceled:
			return fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, models.StatusCanceled)
		}
		if err := s.matchRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, id, models.StatusCanceled); err != nil {
			return err
		}
		t.Status = models.StatusCanceled
		tournament = t
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.Info("tournament canceled", slog.String("tournament_id", id))
	broadcast(s.hub, id, brackets.MessageTournamentCanceled, map[string]string{"tournament_id": id})
	return tournament, nil
}
