package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/league-sim-mcp-server/internal/config"
	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sam-maryland/league-sim-mcp-server/internal/sleeper"
	"github.com/sam-maryland/league-sim-mcp-server/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// MockSleeperClient is a mock implementation of the sleeper.Client interface for testing
type MockSleeperClient struct {
	GetLeagueFunc        func(ctx context.Context, leagueID string) (*sleeper.League, error)
	GetLeagueUsersFunc   func(ctx context.Context, leagueID string) ([]sleeper.User, error)
	GetLeagueRostersFunc func(ctx context.Context, leagueID string) ([]sleeper.Roster, error)
}

func (m *MockSleeperClient) GetLeague(ctx context.Context, leagueID string) (*sleeper.League, error) {
	if m.GetLeagueFunc != nil {
		return m.GetLeagueFunc(ctx, leagueID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockSleeperClient) GetLeagueUsers(ctx context.Context, leagueID string) ([]sleeper.User, error) {
	if m.GetLeagueUsersFunc != nil {
		return m.GetLeagueUsersFunc(ctx, leagueID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockSleeperClient) GetLeagueRosters(ctx context.Context, leagueID string) ([]sleeper.Roster, error) {
	if m.GetLeagueRostersFunc != nil {
		return m.GetLeagueRostersFunc(ctx, leagueID)
	}
	return nil, errors.New("not implemented")
}

// homeWins lets the home side win every game 21-10
type homeWins struct{}

func (homeWins) Simulate(home, away league.FootballTeam, ctx league.GameContext) (league.Outcome, error) {
	return league.Outcome{HomeScore: 21, AwayScore: 10}, nil
}

// testResponse mirrors APIResponse with the payload left undecoded
type testResponse struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Summary  string          `json:"summary"`
	Metadata Metadata        `json:"metadata"`
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return Deps{
		Repo: store.NewRepository(store.NewMemoryStore(), logger),
		Settings: &config.LeagueConfig{
			DefaultSettings: config.LeagueSettings{
				Name:     "Test",
				Schedule: league.ScheduleOptions{DivisionGames: 1},
				Playoffs: league.PlayoffOptions{NumTeams: 4},
			},
			Leagues: make(map[string]config.LeagueSettings),
		},
		Simulator: homeWins{},
		Logger:    logger,
	}
}

// decode unwraps a successful tool result, decoding its data into out when set
func decode(t *testing.T, result *mcp.CallToolResult, err error, out interface{}) testResponse {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	require.False(t, result.IsError, text.Text)

	var resp testResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	require.True(t, resp.Success)
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return resp
}

// requireToolError checks that a call failed as a tool error rather than a protocol error
func requireToolError(t *testing.T, result *mcp.CallToolResult, err error, contains string) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, result)
	require.True(t, result.IsError)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	require.Contains(t, text.Text, contains)
}

func teamArgs(name, short string) map[string]interface{} {
	return map[string]interface{}{"name": name, "short_name": short}
}

// createTestLeague creates a league whose first season holds four teams
func createTestLeague(t *testing.T, h *LeagueHandler) string {
	t.Helper()
	result, err := h.HandleCreateLeague(context.Background(), map[string]interface{}{
		"name": "Test League",
		"year": float64(2024),
		"teams": []interface{}{
			teamArgs("Aardvarks", "AAR"),
			teamArgs("Badgers", "BAD"),
			teamArgs("Coyotes", "COY"),
			teamArgs("Dingoes", "DIN"),
		},
	})
	resp := decode(t, result, err, nil)
	require.NotEmpty(t, resp.Metadata.LeagueID)
	return resp.Metadata.LeagueID
}

// playSeason schedules and plays the current season through the championship
func playSeason(t *testing.T, d Deps, leagueID string) {
	t.Helper()
	ctx := context.Background()
	sh := NewSeasonHandler(d)
	ph := NewPlayoffHandler(d)
	for _, step := range []func(context.Context, map[string]interface{}) (*mcp.CallToolResult, error){
		sh.HandleGenerateSchedule,
		sh.HandleSimulateSeason,
		ph.HandleGeneratePlayoffs,
		ph.HandleSimulatePlayoffs,
	} {
		result, err := step(ctx, map[string]interface{}{"league_id": leagueID})
		decode(t, result, err, nil)
	}
}
