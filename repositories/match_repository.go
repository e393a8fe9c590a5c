package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sabo-arena/brackets"
	"github.com/Dosada05/sabo-arena/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchSlotConflict      = errors.New("match already exists for this round and match number")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
)

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Match, error)
	GetByID(ctx context.Context, tournamentID, matchID string) (*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, round_number, match_number, player1_id, player2_id, winner_id,
	score_player1, score_player2, status, next_match_id, loser_next_match_id,
	completed_at, created_at, updated_at`

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// CreateBatch inserts the whole bracket with one statement by unnesting column arrays.
func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	var (
		tournamentID = matches[0].TournamentID
		ids          = make([]string, len(matches))
		rounds       = make([]int64, len(matches))
		numbers      = make([]int64, len(matches))
		player1      = make([]sql.NullString, len(matches))
		player2      = make([]sql.NullString, len(matches))
		statuses     = make([]string, len(matches))
		next         = make([]sql.NullString, len(matches))
		loserNext    = make([]sql.NullString, len(matches))
	)
	for i, m := range matches {
		if m.TournamentID != tournamentID {
			return fmt.Errorf("CreateBatch: match %s belongs to tournament %s, expected %s", m.ID, m.TournamentID, tournamentID)
		}
		ids[i] = m.ID
		rounds[i] = int64(m.RoundNumber)
		numbers[i] = int64(m.MatchNumber)
		player1[i] = nullString(m.Player1ID)
		player2[i] = nullString(m.Player2ID)
		statuses[i] = string(m.Status)
		next[i] = nullString(m.NextMatchID)
		loserNext[i] = nullString(m.LoserNextMatchID)
	}

	query := `
		INSERT INTO sabo_matches
			(tournament_id, id, round_number, match_number, player1_id, player2_id,
			 status, next_match_id, loser_next_match_id)
		SELECT $1, u.id, u.round_number, u.match_number, u.player1_id, u.player2_id,
		       u.status::match_status, u.next_match_id, u.loser_next_match_id
		FROM unnest($2::text[], $3::int[], $4::int[], $5::text[], $6::text[], $7::text[], $8::text[], $9::text[])
			AS u(id, round_number, match_number, player1_id, player2_id, status, next_match_id, loser_next_match_id)
		RETURNING id, created_at, updated_at`

	rows, err := pick(r.db, exec).QueryContext(ctx, query,
		tournamentID,
		pq.Array(ids),
		pq.Array(rounds),
		pq.Array(numbers),
		pq.Array(player1),
		pq.Array(player2),
		pq.Array(statuses),
		pq.Array(next),
		pq.Array(loserNext),
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	defer rows.Close()

	byID := make(map[string]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	for rows.Next() {
		var id string
		var m models.Match
		if scanErr := rows.Scan(&id, &m.CreatedAt, &m.UpdatedAt); scanErr != nil {
			return fmt.Errorf("failed to scan inserted match: %w", scanErr)
		}
		if target, ok := byID[id]; ok {
			target.CreatedAt, target.UpdatedAt = m.CreatedAt, m.UpdatedAt
		}
	}
	if err = rows.Err(); err != nil {
		return r.handleMatchError(err)
	}
	return nil
}

// ListByTournament returns the bracket ordered by round and match number. Inside a
// transaction the rows are locked so concurrent result submissions serialize.
func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM sabo_matches
		WHERE tournament_id = $1
		ORDER BY round_number ASC, match_number ASC`
	if exec != nil {
		query += ` FOR UPDATE`
	}

	rows, err := pick(r.db, exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0, 27)
	for rows.Next() {
		m := &models.Match{}
		if scanErr := scanMatch(rows, m); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, tournamentID, matchID string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM sabo_matches WHERE tournament_id = $1 AND id = $2`

	m := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, tournamentID, matchID), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %s: %w", matchID, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE sabo_matches
		SET player1_id = $1, player2_id = $2, winner_id = $3,
		    score_player1 = $4, score_player2 = $5, status = $6,
		    completed_at = $7, updated_at = NOW()
		WHERE tournament_id = $8 AND id = $9
		RETURNING updated_at`

	err := pick(r.db, exec).QueryRowContext(ctx, query,
		m.Player1ID, m.Player2ID, m.WinnerID,
		m.ScorePlayer1, m.ScorePlayer2, m.Status,
		m.CompletedAt, m.TournamentID, m.ID,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return r.handleMatchError(err)
	}
	return nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	query := `DELETE FROM sabo_matches WHERE tournament_id = $1`
	if _, err := pick(r.db, exec).ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches for tournament %s: %w", tournamentID, err)
	}
	return nil
}

// scanMatch also derives the bracket type, which is not stored.
func scanMatch(row interface{ Scan(...interface{}) error }, m *models.Match) error {
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.RoundNumber,
		&m.MatchNumber,
		&m.Player1ID,
		&m.Player2ID,
		&m.WinnerID,
		&m.ScorePlayer1,
		&m.ScorePlayer2,
		&m.Status,
		&m.NextMatchID,
		&m.LoserNextMatchID,
		&m.CompletedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	round, err := brackets.ParseRound(m.RoundNumber)
	if err != nil {
		return fmt.Errorf("match %s: %w", m.ID, err)
	}
	bt, err := round.BracketType()
	if err != nil {
		return fmt.Errorf("match %s: %w", m.ID, err)
	}
	m.BracketType = bt
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "sabo_matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "sabo_matches_pkey", "sabo_matches_tournament_id_round_number_match_number_key":
			return ErrMatchSlotConflict
		}
	}
	return err
}
