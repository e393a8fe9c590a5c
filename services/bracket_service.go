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
	"golang.org/x/sync/errgroup"
)

// BracketView is the full bracket of one tournament as served to clients.
type BracketView struct {
	Tournament   *models.Tournament          `json:"tournament"`
	Participants []models.Participant        `json:"participants"`
	Matches      []*models.Match             `json:"matches"`
	Groups       []brackets.BranchGroup      `json:"groups"`
	Progress     brackets.TournamentProgress `json:"progress"`
}

type ProgressView struct {
	brackets.TournamentProgress
	SemifinalEntrants []brackets.SemifinalEntrant `json:"semifinalEntrants"`
	ChampionID        *string                     `json:"championId,omitempty"`
}

type BracketService interface {
	GenerateAndSaveBracket(ctx context.Context, tournamentID string, playerIDs []string) (*BracketView, error)
	GetBracket(ctx context.Context, tournamentID string) (*BracketView, error)
	ValidateBracket(ctx context.Context, tournamentID string) (*brackets.ValidationReport, error)
	GetProgress(ctx context.Context, tournamentID string) (*ProgressView, error)
	ListReadyMatches(ctx context.Context, tournamentID string) ([]*models.Match, error)
	ListPendingMatches(ctx context.Context, tournamentID string) ([]*models.Match, error)
}

type bracketService struct {
	tx              repositories.Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	topology        brackets.Topology
	generator       brackets.BracketGenerator
	validator       *brackets.Validator
	tracker         *brackets.ProgressTracker
	hub             Broadcaster
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewBracketService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	topology brackets.Topology,
	hub Broadcaster,
	uploader storage.FileUploader,
	logger *slog.Logger,
) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		topology:        topology,
		generator:       brackets.NewSabo16Generator(topology),
		validator:       brackets.NewValidator(topology),
		tracker:         brackets.NewProgressTracker(topology),
		hub:             hub,
		uploader:        uploader,
		logger:          logger,
	}
}

// GenerateAndSaveBracket seeds the bracket from playerIDs, or from the registered participants in
// seed order when playerIDs is empty, and moves the tournament to active.
func (s *bracketService) GenerateAndSaveBracket(ctx context.Context, tournamentID string, playerIDs []string) (*BracketView, error) {
	if err := checkTournamentID(tournamentID); err != nil {
		return nil, err
	}

	var view *BracketView
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		switch t.Status {
		case models.StatusRegistration:
		case models.StatusActive, models.StatusCompleted:
			return ErrBracketAlreadyGenerated
		default:
			return fmt.Errorf("%w: cannot start a %s tournament", ErrTournamentInvalidStatusTransition, t.Status)
		}

		participants, err := s.participantRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		players, err := resolvePlayers(playerIDs, participants)
		if err != nil {
			return err
		}

		matches, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			TournamentID: tournamentID,
			PlayerIDs:    players,
		})
		if err != nil {
			return err
		}
		if report := s.validator.Validate(matches); !report.Valid {
			return fmt.Errorf("%w: %s", ErrBracketInvalid, strings.Join(report.Errors, "; "))
		}

		if err := s.matchRepo.CreateBatch(ctx, exec, matches); err != nil {
			return err
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusActive); err != nil {
			return err
		}
		t.Status = models.StatusActive

		view = s.newView(t, participants, matches)
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.Info("bracket generated",
		slog.String("tournament_id", tournamentID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("matches", len(view.Matches)),
	)
	broadcast(s.hub, tournamentID, brackets.MessageBracketGenerated, map[string]interface{}{
		"tournament_id": tournamentID,
		"matches":       view.Matches,
	})
	return view, nil
}

func resolvePlayers(playerIDs []string, participants []models.Participant) ([]string, error) {
	if len(playerIDs) == 0 {
		players := make([]string, len(participants))
		for i, p := range participants {
			players[i] = p.PlayerID
		}
		return players, nil
	}
	if len(participants) == 0 {
		return playerIDs, nil
	}

	registered := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		registered[p.PlayerID] = struct{}{}
	}
	for _, id := range playerIDs {
		if _, ok := registered[id]; !ok {
			return nil, fmt.Errorf("%w: player %q is not registered for this tournament", ErrValidationFailed, id)
		}
	}
	return playerIDs, nil
}

func (s *bracketService) newView(t *models.Tournament, participants []models.Participant, matches []*models.Match) *BracketView {
	populateSnapshotURL(t, s.uploader)
	if participants == nil {
		participants = []models.Participant{}
	}
	if matches == nil {
		matches = []*models.Match{}
	}
	return &BracketView{
		Tournament:   t,
		Participants: participants,
		Matches:      matches,
		Groups:       s.topology.Groups,
		Progress:     s.tracker.Progress(matches),
	}
}

// GetBracket loads the tournament, its participants and its matches concurrently.
// A tournament still in registration has an empty match list.
func (s *bracketService) GetBracket(ctx context.Context, tournamentID string) (*BracketView, error) {
	if err := checkTournamentID(tournamentID); err != nil {
		return nil, err
	}

	var (
		tournament   *models.Tournament
		participants []models.Participant
		matches      []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, nil, tournamentID)
		if err != nil {
			return err
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		p, err := s.participantRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		participants = p
		return nil
	})
	g.Go(func() error {
		m, err := s.matchRepo.ListByTournament(gCtx, nil, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		matches = m
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("failed to load bracket", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return nil, mapRepositoryError(err)
	}
	return s.newView(tournament, participants, matches), nil
}

// loadMatches fails with ErrBracketNotGenerated when the tournament exists but has no matches.
func (s *bracketService) loadMatches(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	if err := checkTournamentID(tournamentID); err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if len(matches) > 0 {
		return matches, nil
	}
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapRepositoryError(err)
	}
	return nil, ErrBracketNotGenerated
}

func (s *bracketService) ValidateBracket(ctx context.Context, tournamentID string) (*brackets.ValidationReport, error) {
	matches, err := s.loadMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	report := s.validator.Validate(matches)
	if !report.Valid {
		s.logger.Warn("stored bracket is structurally invalid",
			slog.String("tournament_id", tournamentID),
			slog.Any("errors", report.Errors),
		)
	}
	return &report, nil
}

func (s *bracketService) GetProgress(ctx context.Context, tournamentID string) (*ProgressView, error) {
	matches, err := s.loadMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	view := &ProgressView{
		TournamentProgress: s.tracker.Progress(matches),
		SemifinalEntrants:  s.tracker.SemifinalEntrants(matches),
	}
	if champion, ok := s.tracker.Champion(matches); ok {
		view.ChampionID = &champion
	}
	return view, nil
}

func (s *bracketService) ListReadyMatches(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	matches, err := s.loadMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return s.tracker.ReadyMatches(matches), nil
}

func (s *bracketService) ListPendingMatches(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	matches, err := s.loadMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return s.tracker.PendingMatches(matches), nil
}
