package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/Dosada05/sabo-arena/brackets"
	"github.com/Dosada05/sabo-arena/models"
	"github.com/Dosada05/sabo-arena/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTournament(t *testing.T, env *testEnv, name string) *models.Tournament {
	t.Helper()
	tournament, err := env.tournamentSv.CreateTournament(context.Background(), CreateTournamentInput{Name: name})
	require.NoError(t, err)
	return tournament
}

func registerField(t *testing.T, env *testEnv, tournamentID string, n int) []string {
	t.Helper()
	players := make([]string, n)
	for i := range players {
		players[i] = fmt.Sprintf("player-%02d", i+1)
		_, err := env.tournamentSv.RegisterParticipant(context.Background(), tournamentID, RegisterParticipantInput{PlayerID: players[i]})
		require.NoError(t, err)
	}
	return players
}

func TestCreateTournament(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.tournamentSv.CreateTournament(ctx, CreateTournamentInput{Name: "   "})
	assert.ErrorIs(t, err, ErrValidationFailed)

	tournament := createTournament(t, env, "Friday Nine-Ball")
	_, err = uuid.Parse(tournament.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusRegistration, tournament.Status)
	assert.Equal(t, 16, tournament.MaxParticipants)

	_, err = env.tournamentSv.CreateTournament(ctx, CreateTournamentInput{Name: "Friday Nine-Ball"})
	assert.ErrorIs(t, err, ErrTournamentNameConflict)

	status := models.StatusRegistration
	list, err := env.tournamentSv.ListTournaments(ctx, repositories.ListTournamentsFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetTournamentNotFound(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.tournamentSv.GetTournament(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	_, err = env.tournamentSv.GetTournament(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestRegisterParticipant(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := createTournament(t, env, "Open")

	_, err := env.tournamentSv.RegisterParticipant(ctx, tournament.ID, RegisterParticipantInput{PlayerID: ""})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = env.tournamentSv.RegisterParticipant(ctx, tournament.ID, RegisterParticipantInput{PlayerID: "x", Seed: 17})
	assert.ErrorIs(t, err, ErrValidationFailed)

	registerField(t, env, tournament.ID, 15)

	_, err = env.tournamentSv.RegisterParticipant(ctx, tournament.ID, RegisterParticipantInput{PlayerID: "player-03"})
	assert.ErrorIs(t, err, ErrRegistrationConflict)
	_, err = env.tournamentSv.RegisterParticipant(ctx, tournament.ID, RegisterParticipantInput{PlayerID: "late", Seed: 4})
	assert.ErrorIs(t, err, ErrSeedTaken)

	last, err := env.tournamentSv.RegisterParticipant(ctx, tournament.ID, RegisterParticipantInput{PlayerID: "player-16"})
	require.NoError(t, err)
	assert.Equal(t, 16, last.Seed)

	_, err = env.tournamentSv.RegisterParticipant(ctx, tournament.ID, RegisterParticipantInput{PlayerID: "player-17"})
	assert.ErrorIs(t, err, ErrTournamentFull)

	participants, err := env.tournamentSv.ListParticipants(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, participants, 16)
	for i, p := range participants {
		assert.Equal(t, i+1, p.Seed)
	}
}

func TestRegisterParticipantClosedAfterBracket(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := createTournament(t, env, "Closed")
	registerField(t, env, tournament.ID, 16)

	_, err := env.bracketSv.GenerateAndSaveBracket(ctx, tournament.ID, nil)
	require.NoError(t, err)

	_, err = env.tournamentSv.RegisterParticipant(ctx, tournament.ID, RegisterParticipantInput{PlayerID: "late"})
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)
}

func TestCancelTournament(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	tournament := createTournament(t, env, "Canceled Cup")
	registerField(t, env, tournament.ID, 16)

	_, err := env.bracketSv.GenerateAndSaveBracket(ctx, tournament.ID, nil)
	require.NoError(t, err)

	canceled, err := env.tournamentSv.CancelTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, canceled.Status)
	assert.Empty(t, env.store.matches[tournament.ID])
	assert.Contains(t, env.hub.types(), brackets.MessageTournamentCanceled)

	_, err = env.tournamentSv.CancelTournament(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)

	_, err = env.bracketSv.GenerateAndSaveBracket(ctx, tournament.ID, nil)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)
}
