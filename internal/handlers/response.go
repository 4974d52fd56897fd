package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/league-sim-mcp-server/internal/config"
	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sam-maryland/league-sim-mcp-server/internal/store"
	"github.com/sirupsen/logrus"
)

const responseSource = "league_simulator"

// APIResponse represents the standard response format for our tools
type APIResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Summary  string      `json:"summary"`
	Error    string      `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata contains response metadata
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	LeagueID    string    `json:"league_id,omitempty"`
	SeasonYear  int       `json:"season_year,omitempty"`
	SeasonState string    `json:"season_state,omitempty"`
}

// Deps are the collaborators shared by every handler
type Deps struct {
	Repo      *store.Repository
	Settings  *config.LeagueConfig
	Simulator league.MatchSimulator
	Logger    *logrus.Logger
}

type base struct {
	repo     *store.Repository
	settings *config.LeagueConfig
	sim      league.MatchSimulator
	logger   *logrus.Logger
	now      func() time.Time
}

func newBase(d Deps) base {
	settings := d.Settings
	if settings == nil {
		settings = &config.LeagueConfig{Leagues: make(map[string]config.LeagueSettings)}
	}
	return base{
		repo:     d.Repo,
		settings: settings,
		sim:      d.Simulator,
		logger:   d.Logger,
		now:      time.Now,
	}
}

// leagueSettings resolves the rules for a stored league
func (b *base) leagueSettings(leagueID string) config.LeagueSettings {
	return b.settings.GetLeagueSettings(leagueID)
}

// tiebreakOrder prefers the explicit argument, then the league's configured order
func (b *base) tiebreakOrder(leagueID string, args map[string]interface{}) ([]league.TiebreakerType, error) {
	order, err := optionalTiebreakArg(args)
	if err != nil || order != nil {
		return order, err
	}
	return b.leagueSettings(leagueID).Tiebreakers()
}

// respond wraps data in the response envelope
func (b *base) respond(entry *store.Entry, data interface{}, summary string) (*mcp.CallToolResult, error) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Summary: summary,
		Metadata: Metadata{
			Timestamp: b.now().UTC(),
			Source:    responseSource,
		},
	}
	if entry != nil {
		response.Metadata.LeagueID = entry.ID
		if s := entry.League.CurrentSeason(); s != nil {
			response.Metadata.SeasonYear = s.Year()
			response.Metadata.SeasonState = s.State().String()
		}
	}

	jsonResponse, err := formatJSONResponse(response)
	if err != nil {
		b.logger.WithError(err).Error("Failed to format response")
		return errorResult("Error formatting response: %s", err.Error()), nil
	}
	return textResult(jsonResponse), nil
}

// fail logs the error and reports it as a tool error
func (b *base) fail(action string, leagueID string, err error) (*mcp.CallToolResult, error) {
	entry := b.logger.WithError(err)
	if leagueID != "" {
		entry = entry.WithField("league_id", leagueID)
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
		entry.Warn("Failed to " + action)
		return errorResult("Failed to %s: league %q not found", action, leagueID), nil
	}
	entry.Error("Failed to " + action)
	return errorResult("Failed to %s: %s", action, err.Error()), nil
}

// load returns a private snapshot of a league
func (b *base) load(ctx context.Context, leagueID string) (*store.Entry, error) {
	return b.repo.Get(ctx, leagueID)
}

// update runs fn against the current season and stores the result when fn succeeds
func (b *base) update(ctx context.Context, leagueID string, fn func(e *store.Entry, s *league.Season) error) (*store.Entry, error) {
	return b.repo.Update(ctx, leagueID, func(e *store.Entry) error {
		s, err := e.League.Season()
		if err != nil {
			return err
		}
		return fn(e, s)
	})
}

// seasonOf picks the current season, or an archived one when year is set
func seasonOf(e *store.Entry, year *int) (*league.Season, error) {
	if year == nil {
		return e.League.Season()
	}
	for _, s := range e.League.AllSeasons() {
		if s.Year() == *year {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: no season %d", league.ErrNoSeason, *year)
}

func leagueIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "The league ID returned by create_league",
		"required":    true,
	}
}

func tiebreakProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Tiebreaker order. Options: head_to_head, division_record, conference_record, point_differential. Defaults to the league settings.",
		"items": map[string]interface{}{
			"type": "string",
			"enum": []string{"head_to_head", "division_record", "conference_record", "point_differential"},
		},
	}
}
