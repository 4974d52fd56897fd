package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sam-maryland/league-sim-mcp-server/internal/store"
	"github.com/sirupsen/logrus"
)

// LeagueHandler handles league and team MCP tools
type LeagueHandler struct {
	base
}

// NewLeagueHandler creates a new league handler
func NewLeagueHandler(d Deps) *LeagueHandler {
	return &LeagueHandler{base: newBase(d)}
}

func teamProperties() map[string]interface{} {
	ratings := func(desc string) map[string]interface{} {
		return map[string]interface{}{
			"type":                 "object",
			"description":          desc,
			"additionalProperties": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 100},
		}
	}
	return map[string]interface{}{
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Full team name, at most 64 characters",
			"required":    true,
		},
		"short_name": map[string]interface{}{
			"type":        "string",
			"description": "Abbreviation shown in schedules, at most 4 characters",
			"required":    true,
		},
		"offense": ratings("Offensive ratings 0-100, e.g. {\"overall\": 75}"),
		"defense": ratings("Defensive ratings 0-100"),
		"coach":   ratings("Coaching ratings 0-100"),
	}
}

// CreateLeagueTool returns the MCP tool definition for create_league
func (h *LeagueHandler) CreateLeagueTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_league",
		Description: "Create a new league with a first season, optionally entering teams into it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "League name",
					"required":    true,
				},
				"year": map[string]interface{}{
					"type":        "integer",
					"description": "Year of the first season. Defaults to the current year.",
				},
				"teams": map[string]interface{}{
					"type":        "array",
					"description": "Teams to enter into the first season",
					"items": map[string]interface{}{
						"type":       "object",
						"properties": teamProperties(),
					},
				},
			},
		},
	}
}

// HandleCreateLeague handles the create_league tool call
func (h *LeagueHandler) HandleCreateLeague(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling create_league")

	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	year, err := optionalIntArg(args, "year")
	if err != nil {
		return nil, err
	}
	teams, err := teamsArg(args)
	if err != nil {
		return nil, err
	}

	l := league.NewLeague()
	y := 0
	if year != nil {
		y = *year
	}
	if _, err := l.AddSeason(y); err != nil {
		return h.fail("create league", "", err)
	}
	for i, team := range teams {
		if err := l.AddSeasonTeam(l.AddTeam(), team); err != nil {
			return h.fail("create league", "", fmt.Errorf("team %d: %w", i, err))
		}
	}

	entry, err := h.repo.Create(ctx, name, l)
	if err != nil {
		return h.fail("create league", "", err)
	}

	h.logger.WithFields(logrus.Fields{
		"league_id": entry.ID,
		"teams":     len(teams),
	}).Info("Created league")

	return h.respond(entry, leagueView(entry, true),
		fmt.Sprintf("Created league '%s' (%s) with a %d season and %d teams",
			entry.Name, entry.ID, l.CurrentSeason().Year(), len(teams)))
}

func teamsArg(args map[string]interface{}) ([]league.FootballTeam, error) {
	raw, ok := args["teams"]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("teams must be an array of objects")
	}
	teams := make([]league.FootballTeam, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("teams[%d] must be an object", i)
		}
		team, err := teamArg(obj)
		if err != nil {
			return nil, fmt.Errorf("teams[%d]: %w", i, err)
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// ListLeaguesTool returns the MCP tool definition for list_leagues
func (h *LeagueHandler) ListLeaguesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_leagues",
		Description: "List every stored league with its current season and state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// HandleListLeagues handles the list_leagues tool call
func (h *LeagueHandler) HandleListLeagues(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling list_leagues")

	entries, err := h.repo.List(ctx)
	if err != nil {
		return h.fail("list leagues", "", err)
	}

	views := make([]LeagueView, 0, len(entries))
	for _, e := range entries {
		v := leagueView(e, false)
		v.PastSeasons = nil
		views = append(views, v)
	}
	return h.respond(nil, views, fmt.Sprintf("Found %d leagues", len(views)))
}

// GetLeagueTool returns the MCP tool definition for get_league
func (h *LeagueHandler) GetLeagueTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_league",
		Description: "Get a league's teams, conference structure, current season state and past seasons",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
			},
		},
	}
}

// HandleGetLeague handles the get_league tool call
func (h *LeagueHandler) HandleGetLeague(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_league")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	entry, err := h.load(ctx, leagueID)
	if err != nil {
		return h.fail("get league", leagueID, err)
	}

	summary := fmt.Sprintf("League '%s' has %d teams and no season", entry.Name, len(entry.League.TeamIDs()))
	if s := entry.League.CurrentSeason(); s != nil {
		summary = fmt.Sprintf("League '%s' - %d season, %d teams, %s",
			entry.Name, s.Year(), s.NumTeams(), s.State())
	}
	return h.respond(entry, leagueView(entry, true), summary)
}

// DeleteLeagueTool returns the MCP tool definition for delete_league
func (h *LeagueHandler) DeleteLeagueTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_league",
		Description: "Permanently delete a league and all of its seasons",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
			},
		},
	}
}

// HandleDeleteLeague handles the delete_league tool call
func (h *LeagueHandler) HandleDeleteLeague(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling delete_league")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	if err := h.repo.Delete(ctx, leagueID); err != nil {
		return h.fail("delete league", leagueID, err)
	}
	return h.respond(nil, map[string]string{"league_id": leagueID}, fmt.Sprintf("Deleted league %s", leagueID))
}

// AddTeamTool returns the MCP tool definition for add_team
func (h *LeagueHandler) AddTeamTool() mcp.Tool {
	props := teamProperties()
	props["league_id"] = leagueIDProperty()
	props["team_id"] = map[string]interface{}{
		"type":        "integer",
		"description": "Existing franchise ID to enter into the current season. A new franchise is created when omitted.",
	}
	return mcp.Tool{
		Name:        "add_team",
		Description: "Add a team to the current season before its schedule is generated",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
		},
	}
}

// HandleAddTeam handles the add_team tool call
func (h *LeagueHandler) HandleAddTeam(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling add_team")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	team, err := teamArg(args)
	if err != nil {
		return nil, err
	}
	existing, err := optionalIntArg(args, "team_id")
	if err != nil {
		return nil, err
	}

	var teamID int
	entry, err := h.update(ctx, leagueID, func(e *store.Entry, s *league.Season) error {
		if existing != nil {
			teamID = *existing
		} else {
			teamID = e.League.AddTeam()
		}
		return e.League.AddSeasonTeam(teamID, team)
	})
	if err != nil {
		return h.fail("add team", leagueID, err)
	}

	s := entry.League.CurrentSeason()
	var view TeamView
	for _, v := range teamViews(s) {
		if v.TeamID == teamID {
			view = v
		}
	}
	return h.respond(entry, view, fmt.Sprintf("Added %s (%s) as team %d; the %d season now has %d teams",
		team.Name, team.ShortName, teamID, s.Year(), s.NumTeams()))
}

// FindTeamTool returns the MCP tool definition for find_team
func (h *LeagueHandler) FindTeamTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_team",
		Description: "Find teams in the current season by name or abbreviation, tolerating typos",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Team name, partial name or short name",
					"required":    true,
				},
			},
		},
	}
}

// HandleFindTeam handles the find_team tool call
func (h *LeagueHandler) HandleFindTeam(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling find_team")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	entry, err := h.load(ctx, leagueID)
	if err != nil {
		return h.fail("find team", leagueID, err)
	}
	s, err := entry.League.Season()
	if err != nil {
		return h.fail("find team", leagueID, err)
	}

	matches := s.FindTeams(query)
	if matches == nil {
		matches = []league.TeamMatch{}
	}
	summary := fmt.Sprintf("No teams match %q", query)
	if len(matches) > 0 {
		summary = fmt.Sprintf("Best match for %q: %s (team %d)", query, matches[0].Name, matches[0].TeamID)
	}
	return h.respond(entry, matches, summary)
}

// NewSeasonTool returns the MCP tool definition for new_season
func (h *LeagueHandler) NewSeasonTool() mcp.Tool {
	return mcp.Tool{
		Name:        "new_season",
		Description: "Archive the completed current season and start a new one",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"year": map[string]interface{}{
					"type":        "integer",
					"description": "Season year. Defaults to the year after the previous season.",
				},
				"carry_over_teams": map[string]interface{}{
					"type":        "boolean",
					"description": "Enter the previous season's teams and conference structure (default true)",
				},
			},
		},
	}
}

// HandleNewSeason handles the new_season tool call
func (h *LeagueHandler) HandleNewSeason(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling new_season")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	year, err := optionalIntArg(args, "year")
	if err != nil {
		return nil, err
	}
	carry, err := optionalBoolArg(args, "carry_over_teams")
	if err != nil {
		return nil, err
	}
	carryOver := carry == nil || *carry

	entry, err := h.repo.Update(ctx, leagueID, func(e *store.Entry) error {
		previous := e.League.CurrentSeason()
		y := 0
		if year != nil {
			y = *year
		}
		next, err := e.League.AddSeason(y)
		if err != nil {
			return err
		}
		if previous == nil || !carryOver {
			return nil
		}
		for _, id := range previous.TeamIDs() {
			team, _ := previous.Team(id)
			if err := next.AddTeam(id, team); err != nil {
				return err
			}
		}
		if conferences := previous.Conferences(); len(conferences) > 0 {
			return next.SetConferences(conferences)
		}
		return nil
	})
	if err != nil {
		return h.fail("start new season", leagueID, err)
	}

	s := entry.League.CurrentSeason()
	return h.respond(entry, seasonView(s, true),
		fmt.Sprintf("Started the %d season with %d teams (%s)", s.Year(), s.NumTeams(), s.State()))
}

// GetTeamHistoryTool returns the MCP tool definition for get_team_history
func (h *LeagueHandler) GetTeamHistoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_team_history",
		Description: "Get a franchise's season-by-season records, playoff appearances and championships",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"team_id": map[string]interface{}{
					"type":        "integer",
					"description": "Franchise ID",
					"required":    true,
				},
			},
		},
	}
}

// TeamHistory is a franchise's career summary
type TeamHistory struct {
	TeamID        int                    `json:"team_id"`
	Record        league.Record          `json:"record"`
	Championships int                    `json:"championships"`
	Seasons       []league.SeasonSummary `json:"seasons"`
}

// HandleGetTeamHistory handles the get_team_history tool call
func (h *LeagueHandler) HandleGetTeamHistory(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_team_history")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	teamID, err := intArg(args, "team_id")
	if err != nil {
		return nil, err
	}
	entry, err := h.load(ctx, leagueID)
	if err != nil {
		return h.fail("get team history", leagueID, err)
	}

	seasons, err := entry.League.TeamHistory(teamID)
	if err != nil {
		return h.fail("get team history", leagueID, err)
	}
	record, err := entry.League.TeamRecord(teamID)
	if err != nil {
		return h.fail("get team history", leagueID, err)
	}

	history := TeamHistory{TeamID: teamID, Record: record, Seasons: seasons}
	if history.Seasons == nil {
		history.Seasons = []league.SeasonSummary{}
	}
	name := fmt.Sprintf("Team %d", teamID)
	for _, s := range seasons {
		name = s.Name
		if s.Champion {
			history.Championships++
		}
	}

	return h.respond(entry, history, fmt.Sprintf("%s: %s over %d seasons, %d championships",
		name, record, len(seasons), history.Championships))
}
