package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sam-maryland/league-sim-mcp-server/internal/sleeper"
	"github.com/sirupsen/logrus"
)

// ImportHandler creates simulator leagues from Sleeper fantasy leagues
type ImportHandler struct {
	base
	client sleeper.Client
}

// NewImportHandler creates a new import handler
func NewImportHandler(client sleeper.Client, d Deps) *ImportHandler {
	return &ImportHandler{base: newBase(d), client: client}
}

// ImportResult is the created league together with the source of each team
type ImportResult struct {
	League  LeagueView      `json:"league"`
	Sleeper *sleeper.Import `json:"sleeper"`
	Teams   map[int]int     `json:"team_ids_by_roster"`
}

// ImportSleeperLeagueTool returns the MCP tool definition for import_sleeper_league
func (h *ImportHandler) ImportSleeperLeagueTool() mcp.Tool {
	return mcp.Tool{
		Name:        "import_sleeper_league",
		Description: "Create a league from a Sleeper fantasy league: one team per roster, rated from points scored and allowed, grouped into the Sleeper divisions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sleeper_league_id": map[string]interface{}{
					"type":        "string",
					"description": "The Sleeper league ID",
					"required":    true,
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "League name. Defaults to the Sleeper league name.",
				},
				"year": map[string]interface{}{
					"type":        "integer",
					"description": "Season year. Defaults to the Sleeper season.",
				},
			},
		},
	}
}

// HandleImportSleeperLeague handles the import_sleeper_league tool call
func (h *ImportHandler) HandleImportSleeperLeague(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling import_sleeper_league")

	sleeperID, err := stringArg(args, "sleeper_league_id")
	if err != nil {
		return nil, err
	}
	name, err := optionalStringArg(args, "name")
	if err != nil {
		return nil, err
	}
	year, err := optionalIntArg(args, "year")
	if err != nil {
		return nil, err
	}

	sl, err := h.client.GetLeague(ctx, sleeperID)
	if err != nil {
		return h.fail("get Sleeper league", "", err)
	}
	users, err := h.client.GetLeagueUsers(ctx, sleeperID)
	if err != nil {
		return h.fail("get Sleeper league users", "", err)
	}
	rosters, err := h.client.GetLeagueRosters(ctx, sleeperID)
	if err != nil {
		return h.fail("get Sleeper league rosters", "", err)
	}

	imp, err := sleeper.BuildImport(sl, users, rosters)
	if err != nil {
		return h.fail("import Sleeper league", "", err)
	}

	seasonYear := 0
	if year != nil {
		seasonYear = *year
	} else if y, err := strconv.Atoi(imp.Season); err == nil {
		seasonYear = y
	}
	if name == "" {
		name = truncate(imp.Name, league.MaxNameLength)
	}
	if name == "" {
		name = "Sleeper " + sleeperID
	}

	l, teamIDs, err := buildImportedLeague(imp, seasonYear)
	if err != nil {
		return h.fail("import Sleeper league", "", err)
	}
	entry, err := h.repo.Create(ctx, name, l)
	if err != nil {
		return h.fail("import Sleeper league", "", err)
	}

	h.logger.WithFields(logrus.Fields{
		"league_id":         entry.ID,
		"sleeper_league_id": sleeperID,
		"teams":             len(imp.Teams),
	}).Info("Imported Sleeper league")

	result := ImportResult{League: leagueView(entry, true), Sleeper: imp, Teams: teamIDs}
	return h.respond(entry, result, fmt.Sprintf("Imported '%s' from Sleeper as league %s: %d teams in %d divisions",
		imp.Name, entry.ID, len(imp.Teams), len(l.CurrentSeason().Conferences()[0].Divisions)))
}

// buildImportedLeague enters every imported team into a first season, one conference
// holding the non-empty Sleeper divisions
func buildImportedLeague(imp *sleeper.Import, year int) (*league.League, map[int]int, error) {
	l := league.NewLeague()
	if _, err := l.AddSeason(year); err != nil {
		return nil, nil, err
	}

	teamIDs := make(map[int]int, len(imp.Teams))
	members := make([][]int, len(imp.Divisions))
	for _, t := range imp.Teams {
		id := l.AddTeam()
		if err := l.AddSeasonTeam(id, t.Team); err != nil {
			return nil, nil, fmt.Errorf("roster %d: %w", t.RosterID, err)
		}
		teamIDs[t.RosterID] = id
		members[t.Division] = append(members[t.Division], id)
	}

	var divisions []league.Division
	for i, ids := range members {
		if len(ids) == 0 {
			continue
		}
		d, err := league.NewDivision(truncate(imp.Divisions[i], league.MaxNameLength), ids...)
		if err != nil {
			return nil, nil, err
		}
		divisions = append(divisions, d)
	}
	conf, err := league.NewConference(truncate(imp.Name, league.MaxNameLength), divisions...)
	if err != nil {
		return nil, nil, err
	}
	if err := l.CurrentSeason().SetConferences([]league.Conference{conf}); err != nil {
		return nil, nil, err
	}
	return l, teamIDs, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
