package handlers

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sam-maryland/league-sim-mcp-server/internal/store"
	"github.com/sirupsen/logrus"
)

// PlayoffHandler handles playoff bracket tools
type PlayoffHandler struct {
	base
}

// NewPlayoffHandler creates a new playoff handler
func NewPlayoffHandler(d Deps) *PlayoffHandler {
	return &PlayoffHandler{base: newBase(d)}
}

func bracketProperty(required bool) map[string]interface{} {
	p := map[string]interface{}{
		"type":        "integer",
		"description": "Conference bracket index, or -1 for the bracket of conference champions",
		"minimum":     -1,
	}
	if required {
		p["required"] = true
	}
	return p
}

// GeneratePlayoffsTool returns the MCP tool definition for generate_playoffs
func (h *PlayoffHandler) GeneratePlayoffsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_playoffs",
		Description: "Seed the playoff field from the final regular-season standings and pair the first round",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"num_teams": map[string]interface{}{
					"type":        "integer",
					"description": "Playoff teams, per conference when per_conference is set. Defaults to the league settings.",
				},
				"per_conference": map[string]interface{}{
					"type":        "boolean",
					"description": "Run a bracket per conference with a final bracket of conference champions",
				},
				"division_winners_guaranteed": map[string]interface{}{
					"type":        "boolean",
					"description": "Division winners always qualify and take the top seeds",
				},
				"tiebreak_order": tiebreakProperty(),
			},
		},
	}
}

// HandleGeneratePlayoffs handles the generate_playoffs tool call
func (h *PlayoffHandler) HandleGeneratePlayoffs(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling generate_playoffs")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	opts, err := playoffOptions(h.leagueSettings(leagueID).Playoffs, args, "num_teams")
	if err != nil {
		return nil, err
	}
	if opts.TiebreakOrder, err = h.tiebreakOrder(leagueID, args); err != nil {
		return nil, err
	}

	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		return s.GeneratePlayoffs(opts)
	})
	if err != nil {
		return h.fail("generate playoffs", leagueID, err)
	}

	s := entry.League.CurrentSeason()
	h.logger.WithFields(logrus.Fields{
		"league_id": leagueID,
		"teams":     s.Playoffs().Teams.Len(),
	}).Info("Generated playoffs")

	return h.respond(entry, playoffsView(s, false),
		fmt.Sprintf("Seeded %d playoff teams", s.Playoffs().Teams.Len()))
}

// AdvancePlayoffsTool returns the MCP tool definition for advance_playoffs
func (h *PlayoffHandler) AdvancePlayoffsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "advance_playoffs",
		Description: "Pair the next round of every bracket whose current round is complete",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
			},
		},
	}
}

// HandleAdvancePlayoffs handles the advance_playoffs tool call
func (h *PlayoffHandler) HandleAdvancePlayoffs(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling advance_playoffs")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}

	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		return s.AdvancePlayoffs()
	})
	if err != nil {
		return h.fail("advance playoffs", leagueID, err)
	}
	s := entry.League.CurrentSeason()
	return h.respond(entry, playoffsView(s, false), fmt.Sprintf("Advanced the playoffs; season is %s", s.State()))
}

// SimulatePlayoffMatchupTool returns the MCP tool definition for simulate_playoff_matchup
func (h *PlayoffHandler) SimulatePlayoffMatchupTool() mcp.Tool {
	return mcp.Tool{
		Name:        "simulate_playoff_matchup",
		Description: "Simulate one playoff game of a bracket's current round. Plays the next unplayed game when bracket and matchup are omitted.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"bracket":   bracketProperty(false),
				"matchup":   indexProperty("Matchup index within the bracket's current round", false),
			},
		},
	}
}

// HandleSimulatePlayoffMatchup handles the simulate_playoff_matchup tool call
func (h *PlayoffHandler) HandleSimulatePlayoffMatchup(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling simulate_playoff_matchup")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	bracket, err := optionalIntArg(args, "bracket")
	if err != nil {
		return nil, err
	}
	matchup, err := optionalIntArg(args, "matchup")
	if err != nil {
		return nil, err
	}
	if (bracket == nil) != (matchup == nil) {
		return nil, fmt.Errorf("bracket and matchup must be given together")
	}

	var b, m int
	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		if bracket != nil {
			b, m = *bracket, *matchup
			return s.SimulatePlayoffMatchup(b, m, h.sim)
		}
		b, m, err = s.SimulateNextPlayoffMatchup(h.sim)
		return err
	})
	if err != nil {
		return h.fail("simulate playoff matchup", leagueID, err)
	}

	s := entry.League.CurrentSeason()
	p := s.Playoffs()
	rounds := p.WinnersBracket
	if b != league.WinnersBracket {
		rounds = p.ConferenceBrackets[b]
	}
	round := rounds[len(rounds)-1]
	view := matchupView(s, m, round.Matchups[m], true)
	return h.respond(entry, view, fmt.Sprintf("%s, round %d: %s %d, %s %d",
		bracketName(s, b), len(rounds)-1, view.AwayTeam, *view.AwayScore, view.HomeTeam, *view.HomeScore))
}

// SimulatePlayoffsTool returns the MCP tool definition for simulate_playoffs
func (h *PlayoffHandler) SimulatePlayoffsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "simulate_playoffs",
		Description: "Simulate the playoffs through the championship, or only the current round",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
				"round_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only play the unplayed games of the current round",
				},
			},
		},
	}
}

// HandleSimulatePlayoffs handles the simulate_playoffs tool call
func (h *PlayoffHandler) HandleSimulatePlayoffs(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling simulate_playoffs")

	leagueID, err := stringArg(args, "league_id")
	if err != nil {
		return nil, err
	}
	roundOnly, err := optionalBoolArg(args, "round_only")
	if err != nil {
		return nil, err
	}

	entry, err := h.update(ctx, leagueID, func(_ *store.Entry, s *league.Season) error {
		if roundOnly != nil && *roundOnly {
			return s.SimulatePlayoffRound(h.sim)
		}
		return s.SimulatePlayoffs(h.sim)
	})
	if err != nil {
		return h.fail("simulate playoffs", leagueID, err)
	}

	s := entry.League.CurrentSeason()
	view := playoffsView(s, false)
	summary := fmt.Sprintf("Simulated the current playoff round; season is %s", s.State())
	if view.ChampionID != nil {
		summary = fmt.Sprintf("%s won the %d championship", view.Champion, s.Year())
		h.logger.WithFields(logrus.Fields{
			"league_id": leagueID,
			"champion":  *view.ChampionID,
		}).Info("Season complete")
	}
	return h.respond(entry, view, summary)
}

// GetBracketTool returns the MCP tool definition for get_bracket
func (h *PlayoffHandler) GetBracketTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_bracket",
		Description: "Get the playoff seeds, every bracket round and the champion",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league_id": leagueIDProperty(),
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

// HandleGetBracket handles the get_bracket tool call
func (h *PlayoffHandler) HandleGetBracket(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_bracket")

	leagueID, err := stringArg(args, "league_id")
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
		return h.fail("get bracket", leagueID, err)
	}
	s, err := seasonOf(entry, year)
	if err != nil {
		return h.fail("get bracket", leagueID, err)
	}

	view := playoffsView(s, stats != nil && *stats)
	summary := fmt.Sprintf("%d playoffs: %d teams, %s", s.Year(), len(view.Seeds), s.State())
	if len(view.Seeds) == 0 {
		summary = fmt.Sprintf("%d playoffs have not been generated (%s)", s.Year(), s.State())
	}
	if view.ChampionID != nil {
		summary += fmt.Sprintf(", champion %s", view.Champion)
	}
	return h.respond(entry, view, summary)
}
