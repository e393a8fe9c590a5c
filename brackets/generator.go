package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/sabo-arena/models"
)

type GenerateBracketParams struct {
	TournamentID string
	PlayerIDs    []string
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}

type Sabo16Generator struct {
	topology Topology
	resolver *Resolver
}

func NewSabo16Generator(t Topology) *Sabo16Generator {
	return &Sabo16Generator{topology: t, resolver: NewResolver(t)}
}

func (g *Sabo16Generator) GetName() string {
	return g.topology.Name
}

func (g *Sabo16Generator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := g.Generate(params.PlayerIDs)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		m.TournamentID = params.TournamentID
	}
	return matches, nil
}

// Generate builds the full match skeleton. Seed-round matches pair playerIDs[2i] with
// playerIDs[2i+1]; every other match starts player-less and pending.
func (g *Sabo16Generator) Generate(playerIDs []string) ([]*models.Match, error) {
	if len(playerIDs) != g.topology.PlayerCount {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, len(playerIDs))
	}
	seen := make(map[string]struct{}, len(playerIDs))
	for i, id := range playerIDs {
		if id == "" {
			return nil, fmt.Errorf("%w: position %d", ErrInvalidPlayerID, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}

	matches := make([]*models.Match, 0, g.topology.TotalMatches())
	for _, group := range g.topology.Groups {
		for _, rs := range group.Rounds {
			bracketType, err := rs.Round.BracketType()
			if err != nil {
				return nil, err
			}
			for n := 1; n <= rs.Matches; n++ {
				m := &models.Match{
					ID:          MatchID(rs.Round, n),
					RoundNumber: int(rs.Round),
					MatchNumber: n,
					BracketType: bracketType,
					Status:      models.MatchStatusPending,
				}

				if rs.Round == g.topology.SeedRound {
					p1, p2 := playerIDs[2*(n-1)], playerIDs[2*(n-1)+1]
					m.Player1ID, m.Player2ID = &p1, &p2
					m.Status = models.MatchStatusReady
				}

				if err := g.wire(m); err != nil {
					return nil, err
				}
				matches = append(matches, m)
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].RoundNumber != matches[j].RoundNumber {
			return matches[i].RoundNumber < matches[j].RoundNumber
		}
		return matches[i].MatchNumber < matches[j].MatchNumber
	})

	return matches, nil
}

// wire sets next_match_id and loser_next_match_id from the same placement rules the resolver uses.
func (g *Sabo16Generator) wire(m *models.Match) error {
	winner, _, ok, err := g.resolver.Place(m.RoundNumber, m.MatchNumber, true)
	if err != nil {
		return err
	}
	if ok {
		id := winner.MatchID
		m.NextMatchID = &id
	}

	loser, _, ok, err := g.resolver.Place(m.RoundNumber, m.MatchNumber, false)
	if err != nil {
		return err
	}
	if ok {
		id := loser.MatchID
		m.LoserNextMatchID = &id
	}
	return nil
}
