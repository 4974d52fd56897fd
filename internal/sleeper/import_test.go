package sleeper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildImport(t *testing.T) {
	l := &League{
		LeagueID: "42",
		Name:     "Office League",
		Season:   "2024",
		Settings: LeagueSettings{PlayoffTeams: 2, Divisions: 2},
		Metadata: map[string]string{"division_1": "North"},
	}
	users := []User{
		{UserID: "u1", DisplayName: "alpha", Metadata: UserMetadata{TeamName: "Alpha Dogs"}},
		{UserID: "u2", DisplayName: "bravo"},
		{UserID: "u3", Username: "charlie_c"},
		{UserID: "u4", DisplayName: "Alpha Dawgs"},
	}
	rosters := []Roster{
		{RosterID: 4, OwnerID: "u4", Settings: RosterSettings{FPTS: 300, FPTSAgainst: 500, Division: 2}},
		{RosterID: 1, OwnerID: "u1", Settings: RosterSettings{FPTS: 500, FPTSAgainst: 300, Division: 1}},
		{RosterID: 2, OwnerID: "u2", Settings: RosterSettings{FPTS: 400, FPTSAgainst: 400, Division: 1}},
		{RosterID: 3, OwnerID: "u3", Settings: RosterSettings{FPTS: 400, FPTSAgainst: 400, Division: 2}},
	}

	imp, err := BuildImport(l, users, rosters)
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "Division 2"}, imp.Divisions)
	assert.Equal(t, 2, imp.PlayoffTeams)
	require.Len(t, imp.Teams, 4)

	tests := []struct {
		rosterID int
		name     string
		short    string
		division int
		offense  int
		defense  int
	}{
		{1, "Alpha Dogs", "AD", 0, 90, 90},
		{2, "bravo", "BRAV", 0, 65, 65},
		{3, "charlie_c", "CC", 1, 65, 65},
		{4, "Alpha Dawgs", "AD2", 1, 40, 40},
	}
	for i, tt := range tests {
		got := imp.Teams[i]
		assert.Equal(t, tt.rosterID, got.RosterID)
		assert.Equal(t, tt.name, got.Team.Name)
		assert.Equal(t, tt.short, got.Team.ShortName)
		assert.Equal(t, tt.division, got.Division)
		assert.Equal(t, tt.offense, got.Team.Offense.Overall(0), "roster %d offense", tt.rosterID)
		assert.Equal(t, tt.defense, got.Team.Defense.Overall(0), "roster %d defense", tt.rosterID)
	}
}

func TestBuildImport_Fallbacks(t *testing.T) {
	l := &League{LeagueID: "7"}
	rosters := []Roster{
		{RosterID: 1, OwnerID: "ghost"},
		{RosterID: 2, OwnerID: "u1", Settings: RosterSettings{Division: 3}},
	}
	users := []User{{UserID: "u1", DisplayName: strings.Repeat("x", 80)}}

	imp, err := BuildImport(l, users, rosters)
	require.NoError(t, err)
	assert.Equal(t, []string{"Division 1"}, imp.Divisions)

	assert.Equal(t, "Team 1", imp.Teams[0].Team.Name)
	assert.Equal(t, "T1", imp.Teams[0].Team.ShortName)
	assert.Equal(t, 65, imp.Teams[0].Team.Offense.Overall(0))

	assert.Len(t, imp.Teams[1].Team.Name, 64)
	assert.Equal(t, "XXXX", imp.Teams[1].Team.ShortName)
	assert.Equal(t, 0, imp.Teams[1].Division)
}

func TestBuildImport_Errors(t *testing.T) {
	_, err := BuildImport(nil, nil, nil)
	assert.Error(t, err)
	_, err = BuildImport(&League{LeagueID: "1"}, nil, nil)
	assert.Error(t, err)
}

func TestUniqueShortName(t *testing.T) {
	used := make(map[string]bool)
	assert.Equal(t, "ABCD", uniqueShortName("ABCD", used))
	assert.Equal(t, "ABC2", uniqueShortName("ABCD", used))
	assert.Equal(t, "ABC3", uniqueShortName("ABCD", used))
	assert.Equal(t, "X", uniqueShortName("X", used))
	assert.Equal(t, "X2", uniqueShortName("X", used))
}
