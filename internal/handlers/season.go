package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sam-maryland/league-sim-mcp-server/internal/store"
	"github.com/sirupsen/logrus"
)

// SeasonHandler handles conference structure, schedule, simulation and standings tools
type SeasonHandler struct {
	base
}

// NewSeasonHandler creates a new season handler
func NewSeasonHandler(d Deps) *SeasonHandler {
	return &SeasonHandler{base: newBase(d)}
}

func nameProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
		"required":    true,
	}
}

func indexProperty(desc string, required bool) map[string]interface{} {
	p := map[string]interface{}{
		"type":        "integer",
		"description": desc,
		"minimum":     0,
	}
	if required {
		p["required"] = true
	}
	return p
}

// AddConferenceTool returns the MCP tool definition for add_conference
func (h *SeasonHandler) AddConferenceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_conference",
		Description: "Add an empty conference to the current season",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"name":      nameProperty("Conference name"),
			},
		},
	}
}

// HandleAddConference handles the add_conference tool call
func (h *SeasonHandler) HandleAddConference(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling add_conference")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}

	var index int
	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		index, err = s.AddConference(name)
		return err
	})
	if err != nil {
		return h.fail("add conference", leagueID, err)
	}
	return h.respond(entry, entry.League.CurrentSeason().Conferences(),
		fmt.Sprintf("Added conference '%s' at index %d", name, index))
}

// AddDivisionTool returns the MCP tool definition for add_division
func (h *SeasonHandler) AddDivisionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_division",
		Description: "Add an empty division to a conference of the current season",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id":  leagueIDProperty(),
				"conference": indexProperty("Conference index", true),
				"name":       nameProperty("Division name"),
			},
		},
	}
}

// HandleAddDivision handles the add_division tool call
func (h *SeasonHandler) HandleAddDivision(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling add_division")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	conference, err := intArg(args, "conference")
	if err != nil {
		return nil, err
	}
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}

	var index int
	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		index, err = s.AddDivision(conference, name)
		return err
	})
	if err != nil {
		return h.fail("add division", leagueID, err)
	}
	return h.respond(entry, entry.League.CurrentSeason().Conferences(),
		fmt.Sprintf("Added division '%s' to conference %d at index %d", name, conference, index))
}

// AssignTeamTool returns the MCP tool definition for assign_team
func (h *SeasonHandler) AssignTeamTool() mcp.Tool {
	return mcp.Tool{
		Name:        "assign_team",
		Description: "Place a team into a division, moving it out of any division it was in",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id":  leagueIDProperty(),
				"team_id":    indexProperty("Team ID", true),
				"conference": indexProperty("Conference index", true),
				"division":   indexProperty("Division index within the conference", true),
			},
		},
	}
}

// HandleAssignTeam handles the assign_team tool call
func (h *SeasonHandler) HandleAssignTeam(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling assign_team")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	teamID, err := intArg(args, "team_id")
	if err != nil {
		return nil, err
	}
	conference, err := intArg(args, "conference")
	if err != nil {
		return nil, err
	}
	division, err := intArg(args, "division")
	if err != nil {
		return nil, err
	}

	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		return s.AssignTeam(teamID, conference, division)
	})
	if err != nil {
		return h.fail("assign team", leagueID, err)
	}
	s := entry.League.CurrentSeason()
	conf := s.Conferences()[conference]
	return h.respond(entry, conf, fmt.Sprintf("Assigned %s to %s / %s",
		teamName(s, teamID), conf.Name, conf.Divisions[division].Name))
}

// GenerateScheduleTool returns the MCP tool definition for generate_schedule
func (h *SeasonHandler) GenerateScheduleTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_schedule",
		Description: "Generate the regular-season schedule. Teams with no conference structure are placed into a single default division.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"division_games": map[string]interface{}{
					"type":        "integer",
					"description": "Games against each division rival",
				},
				"conference_games": map[string]interface{}{
					"type":        "integer",
					"description": "Games against each conference opponent outside the division",
				},
				"cross_conference_games": map[string]interface{}{
					"type":        "integer",
					"description": "Total games per team against other conferences",
				},
				"weeks": map[string]interface{}{
					"type":        "integer",
					"description": "Target number of weeks. Defaults to the fewest that fit.",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for the schedule's random choices",
				},
				"shift": map[string]interface{}{
					"type":        "integer",
					"description": "Rotate the week order by this many weeks",
				},
				"permute": map[string]interface{}{
					"type":        "boolean",
					"description": "Shuffle the week order using the seed",
				},
			},
		},
	}
}

// scheduleOptions overlays explicit arguments on the league's configured schedule
func (h *SeasonHandler) scheduleOptions(leagueID string, args map[string]interface{}) (league.ScheduleOptions, error) {
	opts := h.leagueSettings(leagueID).Schedule
	ints := []struct {
		key string
		dst *int
	}{
		{"division_games", &opts.DivisionGames},
		{"conference_games", &opts.ConferenceGames},
		{"cross_conference_games", &opts.CrossConferenceGames},
		{"weeks", &opts.Weeks},
		{"shift", &opts.Shift},
	}
	for _, f := range ints {
		v, err := optionalIntArg(args, f.key)
		if err != nil {
			return opts, err
		}
		if v != nil {
			*f.dst = *v
		}
	}
	seed, err := optionalIntArg(args, "seed")
	if err != nil {
		return opts, err
	}
	if seed != nil {
		opts.Seed = int64(*seed)
	}
	permute, err := optionalBoolArg(args, "permute")
	if err != nil {
		return opts, err
	}
	if permute != nil {
		opts.Permute = *permute
	}
	return opts, opts.Validate()
}

// HandleGenerateSchedule handles the generate_schedule tool call
func (h *SeasonHandler) HandleGenerateSchedule(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling generate_schedule")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	opts, err := h.scheduleOptions(leagueID, args)
	if err != nil {
		return nil, err
	}

	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		if len(s.Conferences()) == 0 {
			if err := s.AddDefaultConference(); err != nil {
				return err
			}
		}
		return s.GenerateSchedule(opts)
	})
	if err != nil {
		return h.fail("generate schedule", leagueID, err)
	}

	s := entry.League.CurrentSeason()
	weeks := make([]WeekView, 0, s.NumWeeks())
	for i, w := range s.Weeks() {
		weeks = append(weeks, weekView(s, i, w, false))
	}
	h.logger.WithFields(logrus.Fields{
		"league_id": leagueID,
		"weeks":     s.NumWeeks(),
	}).Info("Generated schedule")

	return h.respond(entry, weeks, fmt.Sprintf("Generated a %d-week schedule for %d teams", s.NumWeeks(), s.NumTeams()))
}

// GetWeekTool returns the MCP tool definition for get_week
func (h *SeasonHandler) GetWeekTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_week",
		Description: "Get the matchups and results of a regular-season week",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"week":      indexProperty("Week index, starting at 0. Defaults to the current week.", false),
				"season_year": map[string]interface{}{
					"type":        "integer",
					"description": "Year of an archived season. Defaults to the current season.",
				},
				"include_stats": map[string]interface{}{
					"type":        "boolean",
					"description": "Include the simulator's game log and team stats",
				},
			},
		},
	}
}

// HandleGetWeek handles the get_week tool call
func (h *SeasonHandler) HandleGetWeek(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_week")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	week, err := optionalIntArg(args, "week")
	if err != nil {
		return nil, err
	}
	year, err := optionalIntArg(args, "season_year")
	if err != nil {
		return nil, err
	}
	stats, err := optionalBoolArg(args, "include_stats")
	if err != nil {
		return nil, err
	}

	entry, err := h.load(ctx, leagueID)
	if err != nil {
		return h.fail("get week", leagueID, err)
	}
	s, err := seasonOf(entry, year)
	if err != nil {
		return h.fail("get week", leagueID, err)
	}

	index := s.NumWeeks() - 1
	if week != nil {
		index = *week
	} else if current, ok := s.CurrentWeek(); ok {
		index = current
	}
	w, err := s.Week(index)
	if err != nil {
		return h.fail("get week", leagueID, err)
	}

	view := weekView(s, index, w, stats != nil && *stats)
	played := 0
	for _, m := range view.Matchups {
		if m.Complete {
			played++
		}
	}
	return h.respond(entry, view, fmt.Sprintf("Week %d of %d: %d of %d games played",
		index, s.NumWeeks(), played, len(view.Matchups)))
}

// SimulateMatchupTool returns the MCP tool definition for simulate_matchup
func (h *SeasonHandler) SimulateMatchupTool() mcp.Tool {
	return mcp.Tool{
		Name:        "simulate_matchup",
		Description: "Simulate one regular-season game. Earlier weeks must be complete. Without week and matchup the next unplayed game is simulated.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"week":      indexProperty("Week index, given together with matchup", false),
				"matchup":   indexProperty("Matchup index within the week", false),
			},
		},
	}
}

// HandleSimulateMatchup handles the simulate_matchup tool call
func (h *SeasonHandler) HandleSimulateMatchup(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling simulate_matchup")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	weekArg, err := optionalIntArg(args, "week")
	if err != nil {
		return nil, err
	}
	matchupArg, err := optionalIntArg(args, "matchup")
	if err != nil {
		return nil, err
	}
	if (weekArg == nil) != (matchupArg == nil) {
		return nil, fmt.Errorf("week and matchup must be given together")
	}

	var week, matchup int
	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		if weekArg != nil {
			week, matchup = *weekArg, *matchupArg
			return s.SimulateMatchup(week, matchup, h.sim)
		}
		week, matchup, err = s.SimulateNextMatchup(h.sim)
		return err
	})
	if err != nil {
		return h.fail("simulate matchup", leagueID, err)
	}

	s := entry.League.CurrentSeason()
	w, _ := s.Week(week)
	view := matchupView(s, matchup, w.Matchups[matchup], true)
	return h.respond(entry, view, fmt.Sprintf("Week %d: %s %d, %s %d",
		week, view.AwayTeam, *view.AwayScore, view.HomeTeam, *view.HomeScore))
}

// SimulateWeekTool returns the MCP tool definition for simulate_week
func (h *SeasonHandler) SimulateWeekTool() mcp.Tool {
	return mcp.Tool{
		Name:        "simulate_week",
		Description: "Simulate every remaining game of a week. Defaults to the current week.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"week":      indexProperty("Week index. Defaults to the first incomplete week.", false),
			},
		},
	}
}

// HandleSimulateWeek handles the simulate_week tool call
func (h *SeasonHandler) HandleSimulateWeek(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling simulate_week")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	week, err := optionalIntArg(args, "week")
	if err != nil {
		return nil, err
	}

	var played int
	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		if week != nil {
			played = *week
			return s.SimulateWeek(*week, h.sim)
		}
		played, err = s.SimulateNextWeek(h.sim)
		return err
	})
	if err != nil {
		return h.fail("simulate week", leagueID, err)
	}

	s := entry.League.CurrentSeason()
	w, _ := s.Week(played)
	return h.respond(entry, weekView(s, played, w, false),
		fmt.Sprintf("Simulated week %d of %d; season is %s", played, s.NumWeeks(), s.State()))
}

// SimulateSeasonTool returns the MCP tool definition for simulate_season
func (h *SeasonHandler) SimulateSeasonTool() mcp.Tool {
	return mcp.Tool{
		Name:        "simulate_season",
		Description: "Simulate every remaining regular-season game and return the final standings",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id":      leagueIDProperty(),
				"tiebreak_order": tiebreakProperty(),
			},
		},
	}
}

// HandleSimulateSeason handles the simulate_season tool call
func (h *SeasonHandler) HandleSimulateSeason(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling simulate_season")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	order, err := h.tiebreakOrder(leagueID, args)
	if err != nil {
		return nil, err
	}

	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		return s.SimulateRegularSeason(h.sim)
	})
	if err != nil {
		return h.fail("simulate season", leagueID, err)
	}

	s := entry.League.CurrentSeason()
	standings, err := s.Standings(league.StandingsOptions{TiebreakOrder: order})
	if err != nil {
		return h.fail("simulate season", leagueID, err)
	}
	summary := fmt.Sprintf("Simulated the %d regular season", s.Year())
	if len(standings) > 0 {
		summary += fmt.Sprintf("; %s finished first at %s", standings[0].Name, standings[0].Record)
	}
	return h.respond(entry, standings, summary)
}

// GetStandingsTool returns the MCP tool definition for get_standings
func (h *SeasonHandler) GetStandingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_standings",
		Description: "Get ranked standings for the league, a conference or a division",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id":  leagueIDProperty(),
				"conference": indexProperty("Only rank teams of this conference", false),
				"division":   indexProperty("Only rank teams of this division. Needs conference.", false),
				"group_by": map[string]interface{}{
					"type":        "string",
					"description": "Return one table per conference or division instead of a single table",
					"enum":        []string{"league", "conference", "division"},
				},
				"season_year": map[string]interface{}{
					"type":        "integer",
					"description": "Year of an archived season. Defaults to the current season.",
				},
				"tiebreak_order": tiebreakProperty(),
			},
		},
	}
}

// HandleGetStandings handles the get_standings tool call
func (h *SeasonHandler) HandleGetStandings(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_standings")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	conference, err := optionalIntArg(args, "conference")
	if err != nil {
		return nil, err
	}
	division, err := optionalIntArg(args, "division")
	if err != nil {
		return nil, err
	}
	groupBy, err := optionalStringArg(args, "group_by")
	if err != nil {
		return nil, err
	}
	year, err := optionalIntArg(args, "season_year")
	if err != nil {
		return nil, err
	}
	order, err := h.tiebreakOrder(leagueID, args)
	if err != nil {
		return nil, err
	}

	entry, err := h.load(ctx, leagueID)
	if err != nil {
		return h.fail("get standings", leagueID, err)
	}
	s, err := seasonOf(entry, year)
	if err != nil {
		return h.fail("get standings", leagueID, err)
	}

	switch groupBy {
	case "conference":
		tables, err := s.StandingsByConference(order)
		if err != nil {
			return h.fail("get standings", leagueID, err)
		}
		return h.respond(entry, tables, fmt.Sprintf("Standings for %d conferences", len(tables)))
	case "division":
		tables, err := s.StandingsByDivision(order)
		if err != nil {
			return h.fail("get standings", leagueID, err)
		}
		return h.respond(entry, tables, fmt.Sprintf("Standings for %d divisions", len(tables)))
	case "", "league":
	default:
		return nil, fmt.Errorf("group_by must be one of league, conference, division")
	}

	rows, err := s.Standings(league.StandingsOptions{Conference: conference, Division: division, TiebreakOrder: order})
	if err != nil {
		return h.fail("get standings", leagueID, err)
	}
	summary := fmt.Sprintf("Standings for %d teams", len(rows))
	if len(rows) > 0 {
		summary += fmt.Sprintf("; %s leads at %s", rows[0].Name, rows[0].Record)
	}
	return h.respond(entry, rows, summary)
}

// GetPlayoffPictureTool returns the MCP tool definition for get_playoff_picture
func (h *SeasonHandler) GetPlayoffPictureTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_playoff_picture",
		Description: "Get each team's playoff status (clinched, in position, in the hunt, eliminated) with games back and magic numbers",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"num_playoff_teams": map[string]interface{}{
					"type":        "integer",
					"description": "Playoff spots. Defaults to the league settings.",
				},
				"per_conference": map[string]interface{}{
					"type":        "boolean",
					"description": "Count playoff spots per conference",
				},
				"division_winners_guaranteed": map[string]interface{}{
					"type":        "boolean",
					"description": "Division winners always take a playoff spot",
				},
				"tiebreak_order": tiebreakProperty(),
			},
		},
	}
}

// HandleGetPlayoffPicture handles the get_playoff_picture tool call
func (h *SeasonHandler) HandleGetPlayoffPicture(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_playoff_picture")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	playoffs, err := playoffOptions(h.leagueSettings(leagueID).Playoffs, args, "num_playoff_teams")
	if err != nil {
		return nil, err
	}
	order, err := h.tiebreakOrder(leagueID, args)
	if err != nil {
		return nil, err
	}

	entry, err := h.load(ctx, leagueID)
	if err != nil {
		return h.fail("get playoff picture", leagueID, err)
	}
	s, err := entry.League.Season()
	if err != nil {
		return h.fail("get playoff picture", leagueID, err)
	}

	picture, err := s.PlayoffPicture(league.PlayoffPictureOptions{
		NumPlayoffTeams:           playoffs.NumTeams,
		PerConference:             playoffs.PerConference,
		DivisionWinnersGuaranteed: playoffs.DivisionWinnersGuaranteed,
		TiebreakOrder:             order,
	})
	if err != nil {
		return h.fail("get playoff picture", leagueID, err)
	}
	return h.respond(entry, picture, fmt.Sprintf("%d playoff spots: %d teams clinched, %d eliminated",
		picture.NumPlayoffTeams, len(picture.ClinchedTeams()), len(picture.EliminatedTeams())))
}

// playoffOptions overlays explicit arguments on the configured playoff format
func playoffOptions(opts league.PlayoffOptions, args map[string]interface{}, numKey string) (league.PlayoffOptions, error) {
	num, err := optionalIntArg(args, numKey)
	if err != nil {
		return opts, err
	}
	if num != nil {
		opts.NumTeams = *num
	}
	perConf, err := optionalBoolArg(args, "per_conference")
	if err != nil {
		return opts, err
	}
	if perConf != nil {
		opts.PerConference = *perConf
	}
	divWinners, err := optionalBoolArg(args, "division_winners_guaranteed")
	if err != nil {
		return opts, err
	}
	if divWinners != nil {
		opts.DivisionWinnersGuaranteed = *divWinners
	}
	return opts, nil
}
