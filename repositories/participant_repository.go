package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sabo-arena/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantConflict          = errors.New("player already registered for this tournament")
	ErrParticipantSeedConflict      = errors.New("seed already taken in this tournament")
	ErrParticipantTournamentInvalid = errors.New("participant tournament conflict or invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Participant, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	query := `
		INSERT INTO participants (tournament_id, player_id, display_name, seed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := pick(r.db, exec).QueryRowContext(ctx, query,
		p.TournamentID,
		p.PlayerID,
		p.DisplayName,
		p.Seed,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		if mapped := r.handleParticipantError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

// ListByTournament returns participants in seed order.
func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Participant, error) {
	query := `
		SELECT id, tournament_id, player_id, display_name, seed, created_at
		FROM participants
		WHERE tournament_id = $1
		ORDER BY seed ASC, id ASC`

	rows, err := pick(r.db, exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0, models.SaboPlayerCount)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(&p.ID, &p.TournamentID, &p.PlayerID, &p.DisplayName, &p.Seed, &p.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM participants WHERE tournament_id = $1`
	if err := pick(r.db, exec).QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants for tournament %s: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) handleParticipantError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505": // unique_violation
		switch pqErr.Constraint {
		case "participants_tournament_id_player_id_key":
			return ErrParticipantConflict
		case "participants_tournament_id_seed_key":
			return ErrParticipantSeedConflict
		}
	case "23503": // foreign_key_violation
		if pqErr.Constraint == "participants_tournament_id_fkey" {
			return ErrParticipantTournamentInvalid
		}
	}
	return err
}
