package league

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playedLeague runs one full season for four franchises named A to D
func playedLeague(t *testing.T, year int) *League {
	t.Helper()
	l := NewLeague()
	for i := 0; i < 4; i++ {
		l.AddTeam()
	}
	s, err := l.AddSeason(year)
	require.NoError(t, err)
	for i, short := range []string{"A", "B", "C", "D"} {
		team, err := NewFootballTeam("Team "+short, short)
		require.NoError(t, err)
		require.NoError(t, l.AddSeasonTeam(i, team))
	}
	require.NoError(t, s.AddDefaultConference())
	require.NoError(t, s.GenerateSchedule(ScheduleOptions{DivisionGames: 1}))
	require.NoError(t, s.SimulateRegularSeason(alphabeticalSim()))
	require.NoError(t, s.GeneratePlayoffs(PlayoffOptions{NumTeams: 2}))
	require.NoError(t, s.SimulatePlayoffs(alphabeticalSim()))
	return l
}

func TestLeague_AddTeam(t *testing.T) {
	l := NewLeague()
	assert.Equal(t, 0, l.AddTeam())
	assert.Equal(t, 1, l.AddTeam())
	assert.Equal(t, 2, l.AddTeam())
	assert.Equal(t, []int{0, 1, 2}, l.TeamIDs())
	assert.True(t, l.HasTeam(1))
	assert.False(t, l.HasTeam(3))
}

func TestLeague_AddSeason(t *testing.T) {
	l := NewLeague()
	_, err := l.Season()
	assert.ErrorIs(t, err, ErrNoSeason)
	assert.ErrorIs(t, l.AddSeasonTeam(0, FootballTeam{Name: "X", ShortName: "X"}), ErrNoSeason)

	s, err := l.AddSeason(0)
	require.NoError(t, err)
	assert.Equal(t, time.Now().Year(), s.Year())

	_, err = l.AddSeason(0)
	assert.ErrorIs(t, err, ErrSeasonInProgress)
	assert.ErrorIs(t, l.AddSeasonTeam(5, FootballTeam{Name: "X", ShortName: "X"}), ErrTeamNotFound)
}

func TestLeague_SeasonsAndHistory(t *testing.T) {
	l := playedLeague(t, 2023)

	next, err := l.AddSeason(0)
	require.NoError(t, err)
	assert.Equal(t, 2024, next.Year())
	assert.Same(t, next, l.CurrentSeason())
	require.Len(t, l.PastSeasons(), 1)
	assert.Equal(t, 2023, l.PastSeasons()[0].Year())
	assert.Len(t, l.AllSeasons(), 2)

	renamed, err := NewFootballTeam("Renamed B", "RB")
	require.NoError(t, err)
	require.NoError(t, l.AddSeasonTeam(1, renamed))

	history, err := l.TeamHistory(1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, SeasonSummary{
		Year:          2023,
		Name:          "Team B",
		ShortName:     "B",
		State:         StateComplete,
		Record:        Record{Wins: 2, Losses: 1},
		Playoffs:      true,
		PlayoffRecord: Record{Losses: 1},
	}, history[0])
	assert.Equal(t, "RB", history[1].ShortName)
	assert.Equal(t, StateCreated, history[1].State)

	history, err = l.TeamHistory(0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Champion)

	record, err := l.TeamRecord(0)
	require.NoError(t, err)
	assert.Equal(t, Record{Wins: 3}, record)

	_, err = l.TeamHistory(9)
	assert.ErrorIs(t, err, ErrTeamNotFound)
	_, err = l.TeamRecord(9)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestLeague_JSONRoundTrip(t *testing.T) {
	l := playedLeague(t, 2023)
	_, err := l.AddSeason(0)
	require.NoError(t, err)

	data, err := json.Marshal(l)
	require.NoError(t, err)

	var decoded League
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, l.TeamIDs(), decoded.TeamIDs())
	require.Len(t, decoded.PastSeasons(), 1)
	assert.Equal(t, StateComplete, decoded.PastSeasons()[0].State())
	assert.Equal(t, 2024, decoded.CurrentSeason().Year())

	champion, ok := decoded.PastSeasons()[0].Champion()
	require.True(t, ok)
	assert.Equal(t, 0, champion)
}

func TestLeague_UnmarshalRejectsUnknownTeams(t *testing.T) {
	l := playedLeague(t, 2023)
	data, err := json.Marshal(l)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["teams"] = json.RawMessage(`{"0":{"id":0},"1":{"id":1},"2":{"id":2}}`)
	data, err = json.Marshal(raw)
	require.NoError(t, err)

	var decoded League
	assert.ErrorIs(t, json.Unmarshal(data, &decoded), ErrTeamNotFound)

	raw["teams"] = json.RawMessage(`{"0":{"id":1}}`)
	data, err = json.Marshal(raw)
	require.NoError(t, err)
	assert.ErrorIs(t, json.Unmarshal(data, &decoded), ErrDuplicateTeamID)
}

func TestSeason_FindTeams(t *testing.T) {
	s := NewSeason(2024)
	for i, tt := range []struct{ name, short string }{
		{"Springfield Ravens", "RAV"},
		{"Shelbyville Sharks", "SHK"},
		{"Capital City Capitals", "CAP"},
		{"Ogdenville Owls", "OWL"},
	} {
		team, err := NewFootballTeam(tt.name, tt.short)
		require.NoError(t, err)
		require.NoError(t, s.AddTeam(i, team))
	}

	matches := s.FindTeams("shk")
	require.NotEmpty(t, matches)
	assert.Equal(t, 1, matches[0].TeamID)
	assert.Equal(t, 3.0, matches[0].Score)

	matches = s.FindTeams("ravens")
	require.NotEmpty(t, matches)
	assert.Equal(t, 0, matches[0].TeamID)

	matches = s.FindTeams("Ogdenvile Owls")
	require.NotEmpty(t, matches)
	assert.Equal(t, 3, matches[0].TeamID)
	assert.Equal(t, "OWL", matches[0].ShortName)

	assert.Empty(t, s.FindTeams("   "))
	assert.Empty(t, s.FindTeams("zzzzzzzz"))
}
