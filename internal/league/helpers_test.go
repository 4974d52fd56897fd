package league

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// simFunc adapts a function to MatchSimulator
type simFunc func(home, away FootballTeam, ctx GameContext) (Outcome, error)

func (f simFunc) Simulate(home, away FootballTeam, ctx GameContext) (Outcome, error) {
	return f(home, away, ctx)
}

// alphabeticalSim lets the team with the alphabetically smaller short name win 21-10
func alphabeticalSim() MatchSimulator {
	return simFunc(func(home, away FootballTeam, ctx GameContext) (Outcome, error) {
		if home.ShortName < away.ShortName {
			return Outcome{HomeScore: 21, AwayScore: 10}, nil
		}
		return Outcome{HomeScore: 10, AwayScore: 21}, nil
	})
}

// scriptedSim decides each game by the winner listed for the pair, e.g. "A-B": "A".
// Pairs missing from the script end in a 17-17 tie. Margins default to 7.
func scriptedSim(winners map[string]string, margins map[string]int) MatchSimulator {
	return simFunc(func(home, away FootballTeam, ctx GameContext) (Outcome, error) {
		key := pairKey(home.ShortName, away.ShortName)
		winner, ok := winners[key]
		if !ok {
			return Outcome{HomeScore: 17, AwayScore: 17}, nil
		}
		margin := 7
		if m, ok := margins[key]; ok {
			margin = m
		}
		if winner == home.ShortName {
			return Outcome{HomeScore: 17 + margin, AwayScore: 17}, nil
		}
		return Outcome{HomeScore: 17, AwayScore: 17 + margin}, nil
	})
}

// randomSim draws scores from a seeded source, avoiding ties in sudden death
func randomSim(seed int64) MatchSimulator {
	rng := rand.New(rand.NewSource(seed))
	return simFunc(func(home, away FootballTeam, ctx GameContext) (Outcome, error) {
		h, a := rng.Intn(35), rng.Intn(35)
		if ctx.SuddenDeath && h == a {
			h++
		}
		return Outcome{HomeScore: h, AwayScore: a}, nil
	})
}

func failingSim(after int) MatchSimulator {
	calls := 0
	return simFunc(func(home, away FootballTeam, ctx GameContext) (Outcome, error) {
		calls++
		if calls > after {
			return Outcome{}, errors.New("engine failure")
		}
		return Outcome{HomeScore: 3, AwayScore: 0}, nil
	})
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "-" + b
}

// newSeasonWithTeams adds teams with the given short names under IDs 0..n-1
func newSeasonWithTeams(t *testing.T, shortNames ...string) *Season {
	t.Helper()
	s := NewSeason(2024)
	for i, short := range shortNames {
		team, err := NewFootballTeam("Team "+short, short)
		require.NoError(t, err)
		require.NoError(t, s.AddTeam(i, team))
	}
	return s
}

// newStructuredSeason builds conferences of divisions, numbering teams T0, T1, ...
// in the order the sizes are listed
func newStructuredSeason(t *testing.T, sizes [][]int) *Season {
	t.Helper()
	s := NewSeason(2024)
	id := 0
	for ci, divisions := range sizes {
		conf, err := s.AddConference(fmt.Sprintf("Conference %d", ci))
		require.NoError(t, err)
		for di, size := range divisions {
			div, err := s.AddDivision(conf, fmt.Sprintf("Division %d-%d", ci, di))
			require.NoError(t, err)
			for k := 0; k < size; k++ {
				team, err := NewFootballTeam(fmt.Sprintf("Team %d", id), fmt.Sprintf("T%d", id))
				require.NoError(t, err)
				require.NoError(t, s.AddTeam(id, team))
				require.NoError(t, s.AssignTeam(id, conf, div))
				id++
			}
		}
	}
	return s
}

// fourTeamSeason is A, B, C, D in one division with a single round robin
func fourTeamSeason(t *testing.T) *Season {
	t.Helper()
	s := newSeasonWithTeams(t, "A", "B", "C", "D")
	require.NoError(t, s.AddDefaultConference())
	require.NoError(t, s.GenerateSchedule(ScheduleOptions{DivisionGames: 1}))
	return s
}

func standingIDs(rows []Standing) []int {
	ids := make([]int, len(rows))
	for i, r := range rows {
		ids[i] = r.TeamID
	}
	return ids
}

func finalTopTeams(t *testing.T, s *Season, num int) []int {
	t.Helper()
	rows, err := s.Standings(StandingsOptions{})
	require.NoError(t, err)
	ids := standingIDs(rows)[:num]
	sort.Ints(ids)
	return ids
}
