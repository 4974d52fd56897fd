package league

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conferencesFor(t *testing.T, sizes [][]int) []Conference {
	t.Helper()
	return newStructuredSeason(t, sizes).Conferences()
}

// relation classifies a pair of teams in the structure
func relation(conferences []Conference, a, b int) string {
	for _, c := range conferences {
		da, oka := c.DivisionOf(a)
		db, okb := c.DivisionOf(b)
		if oka && okb {
			if da == db {
				return "division"
			}
			return "conference"
		}
	}
	return "cross"
}

func TestGenerateSchedule_FourTeamsOneDivision(t *testing.T) {
	conferences := conferencesFor(t, [][]int{{4}})

	weeks, err := GenerateSchedule(conferences, ScheduleOptions{DivisionGames: 1})
	require.NoError(t, err)

	assert.Len(t, weeks, 3)
	total := 0
	meetings := make(map[[2]int]int)
	for _, week := range weeks {
		total += len(week)
		for _, p := range week {
			a, b := p.Home, p.Away
			if a > b {
				a, b = b, a
			}
			meetings[[2]int{a, b}]++
		}
	}
	assert.Equal(t, 6, total)
	assert.Len(t, meetings, 6)
	for pair, n := range meetings {
		assert.Equal(t, 1, n, "pair %v", pair)
	}
}

func TestGenerateSchedule_Properties(t *testing.T) {
	tests := []struct {
		name  string
		sizes [][]int
		opts  ScheduleOptions
	}{
		{"two divisions of two", [][]int{{2, 2}}, DefaultScheduleOptions()},
		{"one division of six", [][]int{{6}}, ScheduleOptions{DivisionGames: 2}},
		{"odd sized divisions", [][]int{{3, 3}}, ScheduleOptions{DivisionGames: 2, ConferenceGames: 1, Seed: 7}},
		{"two conferences", [][]int{{2, 2}, {2, 2}}, ScheduleOptions{DivisionGames: 2, ConferenceGames: 1, CrossConferenceGames: 2, Seed: 3}},
		{"three conferences", [][]int{{2}, {2}, {2}}, ScheduleOptions{DivisionGames: 1, CrossConferenceGames: 1}},
		{"three conferences seeded", [][]int{{2}, {2}, {2}}, ScheduleOptions{DivisionGames: 1, CrossConferenceGames: 1, Seed: 17}},
		{"three conferences two games", [][]int{{2, 2}, {2, 2}, {2, 2}}, ScheduleOptions{DivisionGames: 1, CrossConferenceGames: 2, Seed: 9}},
		{"twelve teams", [][]int{{3, 3}, {3, 3}}, ScheduleOptions{DivisionGames: 2, ConferenceGames: 1, CrossConferenceGames: 3, Seed: 11}},
		{"uneven divisions", [][]int{{4, 2}}, ScheduleOptions{DivisionGames: 1, ConferenceGames: 2, Seed: 5}},
		{"shifted and permuted", [][]int{{4, 4}}, ScheduleOptions{DivisionGames: 2, ConferenceGames: 1, Seed: 42, Shift: 5, Permute: true}},
		{"explicit week count", [][]int{{4}}, ScheduleOptions{DivisionGames: 1, Weeks: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conferences := conferencesFor(t, tt.sizes)
			numTeams := 0
			for _, c := range conferences {
				numTeams += c.NumTeams()
			}

			weeks, err := GenerateSchedule(conferences, tt.opts)
			require.NoError(t, err)

			lo, hi := WeekBounds(numTeams)
			assert.GreaterOrEqual(t, len(weeks), lo)
			assert.LessOrEqual(t, len(weeks), hi)
			if tt.opts.Weeks > 0 {
				assert.Len(t, weeks, tt.opts.Weeks)
			}

			meetings := make(map[[2]int]int)
			cross := make(map[int]int)
			for wi, week := range weeks {
				seen := make(map[int]bool)
				for _, p := range week {
					assert.NotEqual(t, p.Home, p.Away, "self matchup in week %d", wi)
					assert.False(t, seen[p.Home], "team %d twice in week %d", p.Home, wi)
					assert.False(t, seen[p.Away], "team %d twice in week %d", p.Away, wi)
					seen[p.Home], seen[p.Away] = true, true

					a, b := p.Home, p.Away
					if a > b {
						a, b = b, a
					}
					meetings[[2]int{a, b}]++
					if relation(conferences, a, b) == "cross" {
						cross[a]++
						cross[b]++
					}
				}
			}

			for a := 0; a < numTeams; a++ {
				for b := a + 1; b < numTeams; b++ {
					switch relation(conferences, a, b) {
					case "division":
						assert.Equal(t, tt.opts.DivisionGames, meetings[[2]int{a, b}], "division pair %d-%d", a, b)
					case "conference":
						assert.Equal(t, tt.opts.ConferenceGames, meetings[[2]int{a, b}], "conference pair %d-%d", a, b)
					}
				}
				if len(conferences) > 1 {
					assert.Equal(t, tt.opts.CrossConferenceGames, cross[a], "cross games of team %d", a)
				}
			}
		})
	}
}

func TestGenerateSchedule_CrossConferenceCountsAcrossSeeds(t *testing.T) {
	conferences := conferencesFor(t, [][]int{{2}, {2}, {2}})

	for seed := int64(0); seed < 20; seed++ {
		weeks, err := GenerateSchedule(conferences, ScheduleOptions{DivisionGames: 1, CrossConferenceGames: 1, Seed: seed})
		require.NoError(t, err, "seed %d", seed)

		cross := make(map[int]int)
		for _, week := range weeks {
			for _, p := range week {
				if relation(conferences, p.Home, p.Away) == "cross" {
					cross[p.Home]++
					cross[p.Away]++
				}
			}
		}
		for team := 0; team < 6; team++ {
			assert.Equal(t, 1, cross[team], "seed %d team %d", seed, team)
		}
	}
}

func TestGenerateSchedule_Deterministic(t *testing.T) {
	conferences := conferencesFor(t, [][]int{{4, 4}, {4, 4}})
	opts := ScheduleOptions{DivisionGames: 2, ConferenceGames: 1, CrossConferenceGames: 4, Seed: 99, Permute: true}

	first, err := GenerateSchedule(conferences, opts)
	require.NoError(t, err)
	second, err := GenerateSchedule(conferences, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateSchedule_Shift(t *testing.T) {
	conferences := conferencesFor(t, [][]int{{2, 2}})
	base, err := GenerateSchedule(conferences, DefaultScheduleOptions())
	require.NoError(t, err)

	opts := DefaultScheduleOptions()
	opts.Shift = 1
	shifted, err := GenerateSchedule(conferences, opts)
	require.NoError(t, err)

	require.Equal(t, len(base), len(shifted))
	assert.Equal(t, base[len(base)-1], shifted[0])
	assert.Equal(t, base[:len(base)-1], shifted[1:])

	opts.Shift = len(base)
	wrapped, err := GenerateSchedule(conferences, opts)
	require.NoError(t, err)
	assert.Equal(t, base, wrapped)
}

func TestGenerateSchedule_PermuteKeepsWeeks(t *testing.T) {
	conferences := conferencesFor(t, [][]int{{4, 4}})
	opts := ScheduleOptions{DivisionGames: 2, ConferenceGames: 1, Seed: 4}
	base, err := GenerateSchedule(conferences, opts)
	require.NoError(t, err)

	opts.Permute = true
	permuted, err := GenerateSchedule(conferences, opts)
	require.NoError(t, err)

	assert.ElementsMatch(t, base, permuted)
}

func TestGenerateSchedule_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sizes   [][]int
		opts    ScheduleOptions
		wantErr error
	}{
		{"no conferences", nil, DefaultScheduleOptions(), ErrNoConferenceStructure},
		{"odd team count", [][]int{{5}}, DefaultScheduleOptions(), ErrInvalidTeamCount},
		{"too few teams", [][]int{{2}}, DefaultScheduleOptions(), ErrInvalidTeamCount},
		{"negative games", [][]int{{4}}, ScheduleOptions{DivisionGames: -1}, ErrInvalidScheduleOptions},
		{"weeks below bound", [][]int{{4}}, ScheduleOptions{DivisionGames: 1, Weeks: 2}, ErrScheduleLengthOutOfBounds},
		{"weeks above bound", [][]int{{4}}, ScheduleOptions{DivisionGames: 1, Weeks: 10}, ErrScheduleLengthOutOfBounds},
		{"games do not fit", [][]int{{4}}, ScheduleOptions{DivisionGames: 2, Weeks: 3}, ErrUnsatisfiableSchedule},
		{"no games", [][]int{{4}}, ScheduleOptions{}, ErrUnsatisfiableSchedule},
		{"unbalanced conferences", [][]int{{4}, {2}}, ScheduleOptions{DivisionGames: 1, CrossConferenceGames: 1}, ErrUnsatisfiableSchedule},
		{"too few games to spread", [][]int{{2, 2}}, ScheduleOptions{DivisionGames: 1, Weeks: 3}, ErrScheduleLengthOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var conferences []Conference
			if tt.sizes != nil {
				conferences = conferencesFor(t, tt.sizes)
			}
			_, err := GenerateSchedule(conferences, tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRoundRobinRounds(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6, 7, 8} {
		teams := make([]int, n)
		for i := range teams {
			teams[i] = i * 10
		}
		rounds := roundRobinRounds(teams)

		meetings := make(map[[2]int]int)
		for _, round := range rounds {
			seen := make(map[int]bool)
			for _, p := range round {
				assert.False(t, seen[p.Home] || seen[p.Away], "n=%d: team twice in a round", n)
				seen[p.Home], seen[p.Away] = true, true
				a, b := p.Home, p.Away
				if a > b {
					a, b = b, a
				}
				meetings[[2]int{a, b}]++
			}
		}
		assert.Len(t, meetings, n*(n-1)/2, "n=%d", n)
		for pair, count := range meetings {
			assert.Equal(t, 1, count, "n=%d pair %v", n, pair)
		}
	}
}
