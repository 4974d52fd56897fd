package league

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decisiveSim draws random scores but never lets a game end level
func decisiveSim(seed int64) MatchSimulator {
	rng := rand.New(rand.NewSource(seed))
	return simFunc(func(home, away FootballTeam, ctx GameContext) (Outcome, error) {
		h, a := rng.Intn(35), rng.Intn(35)
		if h == a {
			h++
		}
		return Outcome{HomeScore: h, AwayScore: a}, nil
	})
}

// divisionScript for two divisions of two: T0 and T1 share a division and win the most,
// T2 takes the other division with a losing record
var divisionScript = map[string]string{
	"T0-T1": "T0",
	"T0-T2": "T0",
	"T0-T3": "T0",
	"T1-T2": "T1",
	"T1-T3": "T1",
	"T2-T3": "T2",
}

func entryOf(t *testing.T, p PlayoffPicture, teamID int) PlayoffPictureEntry {
	t.Helper()
	e, ok := p.Entry(teamID)
	require.True(t, ok, "team %d missing from picture", teamID)
	return e
}

func TestPlayoffPicture_EndOfSeason(t *testing.T) {
	s := fourTeamSeason(t)
	require.NoError(t, s.SimulateRegularSeason(alphabeticalSim()))

	picture, err := s.PlayoffPicture(PlayoffPictureOptions{NumPlayoffTeams: 2})
	require.NoError(t, err)
	require.Len(t, picture.Entries, 4)

	a := entryOf(t, picture, 0)
	assert.Equal(t, PlayoffStatus{Kind: StatusClinchedTopSeed}, a.Status)
	assert.Zero(t, a.GamesBack)

	b := entryOf(t, picture, 1)
	assert.Equal(t, PlayoffStatus{Kind: StatusClinchedPlayoffs, CurrentSeed: 2}, b.Status)

	c := entryOf(t, picture, 2)
	assert.Equal(t, StatusEliminated, c.Status.Kind)
	assert.Equal(t, 1.0, c.GamesBack)

	d := entryOf(t, picture, 3)
	assert.Equal(t, StatusEliminated, d.Status.Kind)
	assert.Equal(t, 2.0, d.GamesBack)

	for _, e := range picture.Entries {
		assert.Nil(t, e.MagicNumber, "team %d", e.TeamID)
		assert.Zero(t, e.RemainingGames)
	}
	assert.Equal(t, []int{0, 1}, picture.ClinchedTeams())
	assert.Equal(t, []int{2, 3}, picture.EliminatedTeams())
}

func TestPlayoffPicture_MidSeason(t *testing.T) {
	s := newSeasonWithTeams(t, "A", "B", "C", "D")
	require.NoError(t, s.AddDefaultConference())
	require.NoError(t, s.GenerateSchedule(ScheduleOptions{DivisionGames: 2}))
	require.Equal(t, 6, s.NumWeeks())
	for i := 0; i < 3; i++ {
		_, err := s.SimulateNextWeek(alphabeticalSim())
		require.NoError(t, err)
	}

	picture, err := s.PlayoffPicture(PlayoffPictureOptions{NumPlayoffTeams: 2})
	require.NoError(t, err)

	tests := []struct {
		team      int
		status    PlayoffStatus
		magic     int
		gamesBack float64
	}{
		{0, PlayoffStatus{Kind: StatusInPlayoffPosition, CurrentSeed: 1}, 2, 0},
		{1, PlayoffStatus{Kind: StatusInPlayoffPosition, CurrentSeed: 2}, 3, 0},
		{2, PlayoffStatus{Kind: StatusInTheHunt}, 5, 1},
		{3, PlayoffStatus{Kind: StatusInTheHunt}, 6, 2},
	}
	for _, tt := range tests {
		e := entryOf(t, picture, tt.team)
		assert.Equal(t, tt.status, e.Status, "team %d", tt.team)
		require.NotNil(t, e.MagicNumber, "team %d", tt.team)
		assert.Equal(t, tt.magic, *e.MagicNumber, "team %d", tt.team)
		assert.Equal(t, tt.gamesBack, e.GamesBack, "team %d", tt.team)
		assert.Equal(t, 3, e.RemainingGames)
	}
	assert.Empty(t, picture.ClinchedTeams())
	assert.Empty(t, picture.EliminatedTeams())
}

// winsOutSim lets the named team win every game it plays and decides the rest alphabetically
func winsOutSim(short string) MatchSimulator {
	rest := alphabeticalSim()
	return simFunc(func(home, away FootballTeam, ctx GameContext) (Outcome, error) {
		switch short {
		case home.ShortName:
			return Outcome{HomeScore: 24, AwayScore: 3}, nil
		case away.ShortName:
			return Outcome{HomeScore: 3, AwayScore: 24}, nil
		}
		return rest.Simulate(home, away, ctx)
	})
}

func TestPlayoffPicture_MagicNumberNeverIncreases(t *testing.T) {
	tests := []struct {
		name         string
		team         int
		playoffTeams int
	}{
		{"last team wins out for two spots", 3, 2},
		{"third team wins out for one spot", 2, 1},
		{"last team wins out for three spots", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shortNames := []string{"A", "B", "C", "D"}
			s := newSeasonWithTeams(t, shortNames...)
			require.NoError(t, s.AddDefaultConference())
			require.NoError(t, s.GenerateSchedule(ScheduleOptions{DivisionGames: 2}))
			sim := winsOutSim(shortNames[tt.team])

			previous := -1
			clinched := false
			for week := 0; week < s.NumWeeks(); week++ {
				_, err := s.SimulateNextWeek(sim)
				require.NoError(t, err)

				picture, err := s.PlayoffPicture(PlayoffPictureOptions{NumPlayoffTeams: tt.playoffTeams})
				require.NoError(t, err)
				e := entryOf(t, picture, tt.team)
				require.NotEqual(t, StatusEliminated, e.Status.Kind, "week %d", week)

				if e.Status.Clinched() {
					assert.Nil(t, e.MagicNumber, "week %d", week)
					clinched = true
					continue
				}
				assert.False(t, clinched, "clinch lost in week %d", week)
				require.NotNil(t, e.MagicNumber, "week %d", week)
				if previous >= 0 {
					assert.LessOrEqual(t, *e.MagicNumber, previous, "week %d", week)
				}
				previous = *e.MagicNumber
			}
			assert.True(t, clinched || previous == 0, "ended with magic number %d", previous)
		})
	}
}

func TestPlayoffPicture_Soundness(t *testing.T) {
	for seed := int64(1); seed <= 6; seed++ {
		s := newStructuredSeason(t, [][]int{{4, 4}})
		require.NoError(t, s.GenerateSchedule(ScheduleOptions{DivisionGames: 2, ConferenceGames: 1, Seed: seed}))
		sim := decisiveSim(seed)

		var pictures []PlayoffPicture
		for {
			if _, ok := s.CurrentWeek(); !ok {
				break
			}
			_, err := s.SimulateNextWeek(sim)
			require.NoError(t, err)
			p, err := s.PlayoffPicture(PlayoffPictureOptions{NumPlayoffTeams: 4})
			require.NoError(t, err)
			pictures = append(pictures, p)
		}

		final := make(map[int]bool)
		for _, id := range finalTopTeams(t, s, 4) {
			final[id] = true
		}
		for week, p := range pictures {
			for _, e := range p.Entries {
				if e.Status.Clinched() {
					assert.True(t, final[e.TeamID], "seed %d week %d: team %d clinched but missed", seed, week, e.TeamID)
				}
				if e.Status.Kind == StatusEliminated {
					assert.False(t, final[e.TeamID], "seed %d week %d: team %d eliminated but qualified", seed, week, e.TeamID)
				}
			}
		}

		last := pictures[len(pictures)-1]
		assert.Len(t, last.ClinchedTeams(), 4)
		assert.Len(t, last.EliminatedTeams(), 4)
	}
}

func TestPlayoffPicture_PerConference(t *testing.T) {
	s := newStructuredSeason(t, [][]int{{2, 2}, {2, 2}})
	require.NoError(t, s.GenerateSchedule(ScheduleOptions{DivisionGames: 2, ConferenceGames: 1, CrossConferenceGames: 2, Seed: 2}))
	require.NoError(t, s.SimulateRegularSeason(alphabeticalSim()))

	picture, err := s.PlayoffPicture(PlayoffPictureOptions{NumPlayoffTeams: 1, PerConference: true})
	require.NoError(t, err)
	require.Len(t, picture.Entries, 8)

	assert.Equal(t, []int{0, 4}, picture.ClinchedTeams())
	for _, e := range picture.Entries[:4] {
		assert.Equal(t, 0, e.Conference)
	}
	assert.Equal(t, StatusClinchedTopSeed, entryOf(t, picture, 4).Status.Kind)
}

func TestPlayoffPicture_DivisionWinnersGuaranteed(t *testing.T) {
	s := newStructuredSeason(t, [][]int{{2, 2}})
	require.NoError(t, s.GenerateSchedule(ScheduleOptions{DivisionGames: 1, ConferenceGames: 1}))
	require.NoError(t, s.SimulateRegularSeason(scriptedSim(divisionScript, nil)))

	picture, err := s.PlayoffPicture(PlayoffPictureOptions{NumPlayoffTeams: 2, DivisionWinnersGuaranteed: true})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, picture.ClinchedTeams())
	assert.Equal(t, PlayoffStatus{Kind: StatusClinchedPlayoffs, CurrentSeed: 2}, entryOf(t, picture, 2).Status)
	assert.Equal(t, StatusEliminated, entryOf(t, picture, 1).Status.Kind)

	picture, err = s.PlayoffPicture(PlayoffPictureOptions{NumPlayoffTeams: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, picture.ClinchedTeams())
}

func TestPlayoffPicture_Errors(t *testing.T) {
	s := newSeasonWithTeams(t, "A", "B", "C", "D")
	require.NoError(t, s.AddDefaultConference())
	_, err := s.PlayoffPicture(PlayoffPictureOptions{NumPlayoffTeams: 2})
	assert.ErrorIs(t, err, ErrInvalidState)

	s = fourTeamSeason(t)
	_, err = s.PlayoffPicture(PlayoffPictureOptions{})
	assert.ErrorIs(t, err, ErrInvalidPlayoffOptions)
	_, err = s.PlayoffPicture(PlayoffPictureOptions{NumPlayoffTeams: 5})
	assert.ErrorIs(t, err, ErrInvalidPlayoffOptions)

	picture, err := s.PlayoffPicture(PlayoffPictureOptions{NumPlayoffTeams: 4})
	require.NoError(t, err)
	assert.Len(t, picture.ClinchedTeams(), 4)
}
