package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/sabo-arena/brackets"
	"github.com/Dosada05/sabo-arena/models"
	"github.com/Dosada05/sabo-arena/repositories"
	"github.com/Dosada05/sabo-arena/storage"
)

// SubmitResultView is returned after a result has been recorded and advanced.
type SubmitResultView struct {
	Match       *models.Match         `json:"match"`
	Advancement *brackets.Advancement `json:"advancement"`
	Updated     []*models.Match       `json:"updated_matches"`
	Completed   bool                  `json:"tournament_completed"`
}

// BracketSnapshot is the JSON export stored when a tournament finishes.
type BracketSnapshot struct {
	Tournament   *models.Tournament          `json:"tournament"`
	Participants []models.Participant        `json:"participants"`
	Matches      []*models.Match             `json:"matches"`
	Progress     brackets.TournamentProgress `json:"progress"`
	ChampionID   string                      `json:"champion_id"`
	ExportedAt   time.Time                   `json:"exported_at"`
}

type MatchService interface {
	GetMatch(ctx context.Context, tournamentID, matchID string) (*models.Match, error)
	SubmitResult(ctx context.Context, tournamentID, matchID string, result brackets.MatchResult) (*SubmitResultView, error)
}

type matchService struct {
	tx              repositories.Transactor
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	resolver        *brackets.Resolver
	tracker         *brackets.ProgressTracker
	hub             Broadcaster
	uploader        storage.FileUploader
	logger          *slog.Logger
	now             func() time.Time
}

func NewMatchService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	topology brackets.Topology,
	hub Broadcaster,
	uploader storage.FileUploader,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		resolver:        brackets.NewResolver(topology),
		tracker:         brackets.NewProgressTracker(topology),
		hub:             hub,
		uploader:        uploader,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *matchService) GetMatch(ctx context.Context, tournamentID, matchID string) (*models.Match, error) {
	if err := checkTournamentID(tournamentID); err != nil {
		return nil, err
	}
	m, err := s.matchRepo.GetByID(ctx, tournamentID, matchID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return m, nil
}

// SubmitResult records a ready match's result and routes both players, all under the
// tournament's row locks. Completing the terminal match finishes the tournament.
func (s *matchService) SubmitResult(ctx context.Context, tournamentID, matchID string, result brackets.MatchResult) (*SubmitResultView, error) {
	if err := checkTournamentID(tournamentID); err != nil {
		return nil, err
	}

	var (
		view       *SubmitResultView
		tournament *models.Tournament
		matches    []*models.Match
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.StatusActive {
			return fmt.Errorf("%w: status is %s", ErrTournamentNotActive, t.Status)
		}

		matches, err = s.matchRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}

		adv, err := s.resolver.RecordResult(matches, matchID, result)
		if err != nil {
			return err
		}

		completedAt := s.now().UTC()
		adv.Updated[0].CompletedAt = &completedAt
		for _, m := range adv.Updated {
			if err := s.matchRepo.Update(ctx, exec, m); err != nil {
				return fmt.Errorf("failed to persist match %s: %w", m.ID, err)
			}
		}

		view = &SubmitResultView{Match: adv.Updated[0], Advancement: adv, Updated: adv.Updated}

		if adv.ChampionID != nil {
			if err := s.tournamentRepo.SetChampion(ctx, exec, tournamentID, adv.ChampionID); err != nil {
				return err
			}
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusCompleted); err != nil {
				return err
			}
			t.Status = models.StatusCompleted
			t.ChampionID = adv.ChampionID
			view.Completed = true
		}
		tournament = t
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.Info("match result recorded",
		slog.String("tournament_id", tournamentID),
		slog.String("match_id", matchID),
		slog.String("winner_id", view.Advancement.WinnerID),
		slog.Int("updated_matches", len(view.Updated)),
	)
	broadcast(s.hub, tournamentID, brackets.MessageMatchUpdated, map[string]interface{}{
		"tournament_id": tournamentID,
		"advancement":   view.Advancement,
		"matches":       view.Updated,
	})

	if view.Completed {
		s.finish(ctx, tournament, matches)
	}
	return view, nil
}

// finish exports the bracket and announces the champion. Snapshot failures are logged and
// never undo the recorded result.
func (s *matchService) finish(ctx context.Context, t *models.Tournament, matches []*models.Match) {
	champion := ""
	if t.ChampionID != nil {
		champion = *t.ChampionID
	}
	s.logger.Info("tournament completed", slog.String("tournament_id", t.ID), slog.String("champion_id", champion))

	if s.uploader != nil {
		if err := s.uploadSnapshot(ctx, t, matches, champion); err != nil {
			s.logger.Error("failed to store bracket snapshot", slog.String("tournament_id", t.ID), slog.Any("error", err))
		}
	}

	broadcast(s.hub, t.ID, brackets.MessageTournamentComplete, map[string]interface{}{
		"tournament_id": t.ID,
		"champion_id":   champion,
		"snapshot_url":  t.SnapshotURL,
	})
}

func (s *matchService) uploadSnapshot(ctx context.Context, t *models.Tournament, matches []*models.Match, champion string) error {
	participants, err := s.participantRepo.ListByTournament(ctx, nil, t.ID)
	if err != nil {
		return err
	}

	key := storage.SnapshotKey(t.ID)
	snapshot := BracketSnapshot{
		Tournament:   t,
		Participants: participants,
		Matches:      matches,
		Progress:     s.tracker.Progress(matches),
		ChampionID:   champion,
		ExportedAt:   s.now().UTC(),
	}
	if _, err := storage.UploadJSON(ctx, s.uploader, key, snapshot); err != nil {
		return err
	}

	if err := s.tournamentRepo.UpdateSnapshotKey(ctx, t.ID, &key); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned snapshot", slog.String("key", key), slog.Any("error", delErr))
		}
		return fmt.Errorf("failed to save snapshot key: %w", err)
	}
	t.SnapshotKey = &key
	populateSnapshotURL(t, s.uploader)
	return nil
}
