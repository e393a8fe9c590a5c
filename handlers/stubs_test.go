package handlers

import (
	"context"
	"errors"

	"github.com/Dosada05/sabo-arena/brackets"
	"github.com/Dosada05/sabo-arena/models"
	"github.com/Dosada05/sabo-arena/repositories"
	"github.com/Dosada05/sabo-arena/services"
)

var errNotStubbed = errors.New("not stubbed")

type stubTournamentService struct {
	create     func(services.CreateTournamentInput) (*models.Tournament, error)
	get        func(id string) (*models.Tournament, error)
	list       func(repositories.ListTournamentsFilter) ([]models.Tournament, error)
	register   func(id string, in services.RegisterParticipantInput) (*models.Participant, error)
	cancel     func(id string) (*models.Tournament, error)
	lastFilter repositories.ListTournamentsFilter
}

func (s *stubTournamentService) CreateTournament(_ context.Context, in services.CreateTournamentInput) (*models.Tournament, error) {
	if s.create == nil {
		return nil, errNotStubbed
	}
	return s.create(in)
}

func (s *stubTournamentService) GetTournament(_ context.Context, id string) (*models.Tournament, error) {
	if s.get == nil {
		return nil, errNotStubbed
	}
	return s.get(id)
}

func (s *stubTournamentService) ListTournaments(_ context.Context, f repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	s.lastFilter = f
	if s.list == nil {
		return []models.Tournament{}, nil
	}
	return s.list(f)
}

func (s *stubTournamentService) RegisterParticipant(_ context.Context, id string, in services.RegisterParticipantInput) (*models.Participant, error) {
	if s.register == nil {
		return nil, errNotStubbed
	}
	return s.register(id, in)
}

func (s *stubTournamentService) ListParticipants(context.Context, string) ([]models.Participant, error) {
	return []models.Participant{}, nil
}

func (s *stubTournamentService) CancelTournament(_ context.Context, id string) (*models.Tournament, error) {
	if s.cancel == nil {
		return nil, errNotStubbed
	}
	return s.cancel(id)
}

type stubBracketService struct {
	generate  func(id string, playerIDs []string) (*services.BracketView, error)
	ready     func(id string) ([]*models.Match, error)
	gotPlayer []string
}

func (s *stubBracketService) GenerateAndSaveBracket(_ context.Context, id string, playerIDs []string) (*services.BracketView, error) {
	s.gotPlayer = playerIDs
	if s.generate == nil {
		return nil, errNotStubbed
	}
	return s.generate(id, playerIDs)
}

func (s *stubBracketService) GetBracket(context.Context, string) (*services.BracketView, error) {
	return nil, services.ErrBracketNotGenerated
}

func (s *stubBracketService) ValidateBracket(context.Context, string) (*brackets.ValidationReport, error) {
	return &brackets.ValidationReport{Valid: true, Errors: []string{}, Warnings: []string{}}, nil
}

func (s *stubBracketService) GetProgress(context.Context, string) (*services.ProgressView, error) {
	return nil, services.ErrBracketNotGenerated
}

func (s *stubBracketService) ListReadyMatches(_ context.Context, id string) ([]*models.Match, error) {
	if s.ready == nil {
		return nil, errNotStubbed
	}
	return s.ready(id)
}

func (s *stubBracketService) ListPendingMatches(context.Context, string) ([]*models.Match, error) {
	return []*models.Match{}, nil
}

type stubMatchService struct {
	submit    func(tid, mid string, r brackets.MatchResult) (*services.SubmitResultView, error)
	gotResult brackets.MatchResult
}

func (s *stubMatchService) GetMatch(_ context.Context, _ string, mid string) (*models.Match, error) {
	if mid == "R1M1" {
		return &models.Match{ID: "R1M1", RoundNumber: 1, MatchNumber: 1, Status: models.MatchStatusReady}, nil
	}
	return nil, services.ErrMatchNotFound
}

func (s *stubMatchService) SubmitResult(_ context.Context, tid, mid string, r brackets.MatchResult) (*services.SubmitResultView, error) {
	s.gotResult = r
	if s.submit == nil {
		return nil, errNotStubbed
	}
	return s.submit(tid, mid, r)
}

type stubAuthService struct{}

func (stubAuthService) Login(_ context.Context, in services.LoginInput) (*services.Principal, error) {
	if in.Username == "admin" && in.Password == "correct horse" {
		return &services.Principal{Username: "admin", Role: services.RoleAdmin}, nil
	}
	return nil, services.ErrInvalidCredentials
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }
