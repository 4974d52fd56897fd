package main

import (
	"errors"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sam-maryland/league-sim-mcp-server/internal/autosim"
	"github.com/sam-maryland/league-sim-mcp-server/internal/config"
	"github.com/sam-maryland/league-sim-mcp-server/internal/handlers"
	"github.com/sam-maryland/league-sim-mcp-server/internal/logging"
	"github.com/sam-maryland/league-sim-mcp-server/internal/mcp"
	"github.com/sam-maryland/league-sim-mcp-server/internal/simulator"
	"github.com/sam-maryland/league-sim-mcp-server/internal/sleeper"
	"github.com/sam-maryland/league-sim-mcp-server/internal/store"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadLeagueSettings()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load league settings")
	}
	if err := run(cfg); err != nil {
		os.Exit(1)
	}
}

// run serves until stdin closes, releasing the store and scheduler on the way out
func run(cfg *config.LeagueConfig) error {
	logger := logging.New(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"settings_file": cfg.File,
		"store":         cfg.Store.Backend,
		"autosim":       cfg.AutoSim.Enabled,
	}).Info("Configuration loaded")

	leagueStore, err := store.Open(cfg.Store, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to open league store")
		return err
	}
	defer leagueStore.Close()

	repo := store.NewRepository(leagueStore, logger)
	sim := simulator.NewRatingSimulator(cfg.Simulator, logger)

	if cfg.AutoSim.Enabled {
		runner, err := autosim.NewRunner(cfg.AutoSim, repo, cfg, sim, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to create auto-simulation runner")
			return err
		}
		if err := runner.Start(); err != nil {
			logger.WithError(err).Error("Failed to start auto-simulation")
			return err
		}
		defer func() {
			if err := runner.Stop(); err != nil {
				logger.WithError(err).Warn("Failed to stop auto-simulation")
			}
		}()
	}

	deps := handlers.Deps{
		Repo:      repo,
		Settings:  cfg,
		Simulator: sim,
		Logger:    logger,
	}
	mcpServer := mcp.NewLeagueSimMCPServer(cfg.Server, deps, sleeper.NewHTTPClient(cfg.Sleeper.BaseURL, logger))
	if mcpServer == nil {
		return errors.New("failed to create MCP server")
	}

	logger.Info("Starting League Simulator MCP Server...")

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.WithError(err).Error("Server failed")
		return err
	}
	return nil
}
