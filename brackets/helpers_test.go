package brackets

import (
	"fmt"
	"testing"

	"github.com/Dosada05/sabo-arena/models"
	"github.com/stretchr/testify/require"
)

func seededPlayers(n int) []string {
	players := make([]string, n)
	for i := range players {
		players[i] = fmt.Sprintf("player-%02d", i+1)
	}
	return players
}

func freshBracket(t *testing.T) []*models.Match {
	t.Helper()
	matches, err := NewSabo16Generator(Sabo16()).Generate(seededPlayers(16))
	require.NoError(t, err)
	return matches
}

func findMatch(t *testing.T, matches []*models.Match, id string) *models.Match {
	t.Helper()
	for _, m := range matches {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("match %s not found", id)
	return nil
}

func intPtr(i int) *int { return &i }

// playWhile records a first-slot win for every ready match whose round satisfies keep,
// until no such match is left.
func playWhile(t *testing.T, r *Resolver, matches []*models.Match, keep func(round int) bool) {
	t.Helper()
	tracker := NewProgressTracker(Sabo16())
	for i := 0; i < len(matches); i++ {
		played := false
		for _, m := range tracker.ReadyMatches(matches) {
			if !keep(m.RoundNumber) {
				continue
			}
			_, err := r.RecordResult(matches, m.ID, MatchResult{
				WinnerID:    *m.Player1ID,
				WinnerScore: intPtr(7),
				LoserScore:  intPtr(3),
			})
			require.NoError(t, err)
			played = true
		}
		if !played {
			return
		}
	}
}

func anyRound(int) bool { return true }
