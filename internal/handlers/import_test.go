package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/sam-maryland/league-sim-mcp-server/internal/sleeper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sleeperFixture() *MockSleeperClient {
	return &MockSleeperClient{
		GetLeagueFunc: func(ctx context.Context, leagueID string) (*sleeper.League, error) {
			return &sleeper.League{
				LeagueID: leagueID,
				Name:     "Office League",
				Season:   "2024",
				Settings: sleeper.LeagueSettings{PlayoffTeams: 2, NumTeams: 4, Divisions: 2},
				Metadata: map[string]string{"division_1": "Upstairs", "division_2": "Downstairs"},
			}, nil
		},
		GetLeagueUsersFunc: func(ctx context.Context, leagueID string) ([]sleeper.User, error) {
			return []sleeper.User{
				{UserID: "u1", DisplayName: "alpha", Metadata: sleeper.UserMetadata{TeamName: "Alpha Dogs"}},
				{UserID: "u2", DisplayName: "bravo"},
				{UserID: "u3", DisplayName: "charlie"},
				{UserID: "u4", DisplayName: "delta"},
			}, nil
		},
		GetLeagueRostersFunc: func(ctx context.Context, leagueID string) ([]sleeper.Roster, error) {
			return []sleeper.Roster{
				{RosterID: 1, OwnerID: "u1", Settings: sleeper.RosterSettings{FPTS: 1500, FPTSAgainst: 1200, Division: 1}},
				{RosterID: 2, OwnerID: "u2", Settings: sleeper.RosterSettings{FPTS: 1300, FPTSAgainst: 1300, Division: 1}},
				{RosterID: 3, OwnerID: "u3", Settings: sleeper.RosterSettings{FPTS: 1250, FPTSAgainst: 1400, Division: 2}},
				{RosterID: 4, OwnerID: "u4", Settings: sleeper.RosterSettings{FPTS: 1100, FPTSAgainst: 1250, Division: 2}},
			}, nil
		},
	}
}

func TestImportHandler_HandleImportSleeperLeague(t *testing.T) {
	ctx := context.Background()
	d := testDeps(t)
	h := NewImportHandler(sleeperFixture(), d)

	var imported ImportResult
	result, err := h.HandleImportSleeperLeague(ctx, map[string]interface{}{"sleeper_league_id": "123456789"})
	resp := decode(t, result, err, &imported)

	assert.Equal(t, "Office League", imported.League.Name)
	require.NotNil(t, imported.League.CurrentSeason)
	season := imported.League.CurrentSeason
	assert.Equal(t, 2024, season.Year)
	assert.Equal(t, "teams_assigned", season.State)
	require.Len(t, season.Teams, 4)
	assert.Equal(t, "Alpha Dogs", season.Teams[0].Name)
	assert.Equal(t, 90, season.Teams[0].Offense["overall"])

	require.Len(t, season.Conferences, 1)
	divisions := season.Conferences[0].Divisions
	require.Len(t, divisions, 2)
	assert.Equal(t, "Upstairs", divisions[0].Name)
	assert.Equal(t, []int{0, 1}, divisions[0].Teams)
	assert.Equal(t, []int{2, 3}, divisions[1].Teams)
	assert.Equal(t, map[int]int{1: 0, 2: 1, 3: 2, 4: 3}, imported.Teams)
	require.NotNil(t, imported.Sleeper)
	assert.Equal(t, "123456789", imported.Sleeper.LeagueID)

	// the imported league plays like any other
	result, err = NewSeasonHandler(d).HandleGenerateSchedule(ctx, map[string]interface{}{
		"league_id":        resp.Metadata.LeagueID,
		"conference_games": float64(1),
	})
	decode(t, result, err, nil)
}

func TestImportHandler_Overrides(t *testing.T) {
	d := testDeps(t)
	h := NewImportHandler(sleeperFixture(), d)

	var imported ImportResult
	result, err := h.HandleImportSleeperLeague(context.Background(), map[string]interface{}{
		"sleeper_league_id": "123456789",
		"name":              "Replay",
		"year":              float64(2030),
	})
	decode(t, result, err, &imported)
	assert.Equal(t, "Replay", imported.League.Name)
	assert.Equal(t, 2030, imported.League.CurrentSeason.Year)
}

func TestImportHandler_Errors(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]interface{}
		client    *MockSleeperClient
		wantError bool
		contains  string
	}{
		{
			name:      "missing league id",
			args:      map[string]interface{}{},
			client:    sleeperFixture(),
			wantError: true,
		},
		{
			name: "sleeper api error",
			args: map[string]interface{}{"sleeper_league_id": "invalid"},
			client: &MockSleeperClient{
				GetLeagueFunc: func(ctx context.Context, leagueID string) (*sleeper.League, error) {
					return nil, &sleeper.SleeperError{Type: "not_found", Message: "league not found", StatusCode: 404}
				},
			},
			contains: "league not found",
		},
		{
			name: "rosters unavailable",
			args: map[string]interface{}{"sleeper_league_id": "123"},
			client: func() *MockSleeperClient {
				c := sleeperFixture()
				c.GetLeagueRostersFunc = func(ctx context.Context, leagueID string) ([]sleeper.Roster, error) {
					return nil, errors.New("connection reset")
				}
				return c
			}(),
			contains: "connection reset",
		},
		{
			name: "no rosters",
			args: map[string]interface{}{"sleeper_league_id": "123"},
			client: func() *MockSleeperClient {
				c := sleeperFixture()
				c.GetLeagueRostersFunc = func(ctx context.Context, leagueID string) ([]sleeper.Roster, error) {
					return []sleeper.Roster{}, nil
				}
				return c
			}(),
			contains: "has no rosters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDeps(t)
			h := NewImportHandler(tt.client, d)
			result, err := h.HandleImportSleeperLeague(context.Background(), tt.args)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			requireToolError(t, result, err, tt.contains)

			ids, err := d.Repo.IDs(context.Background())
			require.NoError(t, err)
			assert.Empty(t, ids)
		})
	}
}
