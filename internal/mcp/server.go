package mcp

import (
	"context"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sam-maryland/league-sim-mcp-server/internal/config"
	"github.com/sam-maryland/league-sim-mcp-server/internal/handlers"
	"github.com/sam-maryland/league-sim-mcp-server/internal/sleeper"
	"github.com/sirupsen/logrus"
)

type toolFunc func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// Toolset routes tool calls to the league handlers
type Toolset struct {
	logger *logrus.Logger
	tools  []mcp.Tool
	routes map[string]toolFunc
}

func NewToolset(deps handlers.Deps, sleeperClient sleeper.Client) *Toolset {
	leagueHandler := handlers.NewLeagueHandler(deps)
	seasonHandler := handlers.NewSeasonHandler(deps)
	playoffHandler := handlers.NewPlayoffHandler(deps)
	importHandler := handlers.NewImportHandler(sleeperClient, deps)

	t := &Toolset{logger: deps.Logger, routes: make(map[string]toolFunc)}
	register := func(tool mcp.Tool, fn toolFunc) {
		t.tools = append(t.tools, tool)
		t.routes[tool.Name] = fn
	}

	register(leagueHandler.CreateLeagueTool(), leagueHandler.HandleCreateLeague)
	register(leagueHandler.ListLeaguesTool(), leagueHandler.HandleListLeagues)
	register(leagueHandler.GetLeagueTool(), leagueHandler.HandleGetLeague)
	register(leagueHandler.DeleteLeagueTool(), leagueHandler.HandleDeleteLeague)
	register(leagueHandler.AddTeamTool(), leagueHandler.HandleAddTeam)
	register(leagueHandler.FindTeamTool(), leagueHandler.HandleFindTeam)
	register(leagueHandler.NewSeasonTool(), leagueHandler.HandleNewSeason)
	register(leagueHandler.GetTeamHistoryTool(), leagueHandler.HandleGetTeamHistory)

	register(seasonHandler.AddConferenceTool(), seasonHandler.HandleAddConference)
	register(seasonHandler.AddDivisionTool(), seasonHandler.HandleAddDivision)
	register(seasonHandler.AssignTeamTool(), seasonHandler.HandleAssignTeam)
	register(seasonHandler.GenerateScheduleTool(), seasonHandler.HandleGenerateSchedule)
	register(seasonHandler.GetWeekTool(), seasonHandler.HandleGetWeek)
	register(seasonHandler.SimulateMatchupTool(), seasonHandler.HandleSimulateMatchup)
	register(seasonHandler.SimulateWeekTool(), seasonHandler.HandleSimulateWeek)
	register(seasonHandler.SimulateSeasonTool(), seasonHandler.HandleSimulateSeason)
	register(seasonHandler.GetStandingsTool(), seasonHandler.HandleGetStandings)
	register(seasonHandler.GetPlayoffPictureTool(), seasonHandler.HandleGetPlayoffPicture)

	register(playoffHandler.GeneratePlayoffsTool(), playoffHandler.HandleGeneratePlayoffs)
	register(playoffHandler.AdvancePlayoffsTool(), playoffHandler.HandleAdvancePlayoffs)
	register(playoffHandler.SimulatePlayoffMatchupTool(), playoffHandler.HandleSimulatePlayoffMatchup)
	register(playoffHandler.SimulatePlayoffsTool(), playoffHandler.HandleSimulatePlayoffs)
	register(playoffHandler.GetBracketTool(), playoffHandler.HandleGetBracket)

	register(importHandler.ImportSleeperLeagueTool(), importHandler.HandleImportSleeperLeague)

	return t
}

// Tools lists every tool definition in registration order
func (t *Toolset) Tools() []mcp.Tool {
	return append([]mcp.Tool(nil), t.tools...)
}

// Names lists the registered tool names alphabetically
func (t *Toolset) Names() []string {
	names := make([]string, 0, len(t.routes))
	for name := range t.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call routes a tool call to its handler. Unknown tools are reported as tool errors.
func (t *Toolset) Call(ctx context.Context, name string, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	t.logger.WithFields(logrus.Fields{
		"tool": name,
		"args": arguments,
	}).Info("Tool called")

	fn, ok := t.routes[name]
	if !ok {
		t.logger.WithField("tool", name).Warn("Unknown tool called")
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{
					Type: "text",
					Text: "Unknown tool: " + name,
				},
			},
			IsError: true,
		}, nil
	}
	if arguments == nil {
		arguments = map[string]interface{}{}
	}
	return fn(ctx, arguments)
}

// NewLeagueSimMCPServer creates the MCP server and registers every league tool
func NewLeagueSimMCPServer(cfg config.ServerConfig, deps handlers.Deps, sleeperClient sleeper.Client) *server.DefaultServer {
	logger := deps.Logger
	toolset := NewToolset(deps, sleeperClient)

	s := server.NewDefaultServer(cfg.Name, cfg.Version)
	if s == nil {
		logger.Error("Failed to create MCP server instance")
		return nil
	}

	logger.Info("MCP server instance created successfully")

	s.HandleListTools(func(ctx context.Context, cursor *string) (*mcp.ListToolsResult, error) {
		tools := toolset.Tools()
		logger.WithField("tools_count", len(tools)).Info("Listing available tools")
		return &mcp.ListToolsResult{
			Tools: tools,
		}, nil
	})

	s.HandleCallTool(toolset.Call)

	logger.WithField("tools", len(toolset.Names())).Info("All tools registered successfully")
	return s
}
