package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sam-maryland/league-sim-mcp-server/internal/logging"
	"github.com/sam-maryland/league-sim-mcp-server/internal/simulator"
	"github.com/sam-maryland/league-sim-mcp-server/internal/store"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LEAGUE_SIM_STORE_BACKEND
const EnvPrefix = "LEAGUE_SIM"

// configPaths are searched in order for league_settings.json
var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
}

// LeagueSettings represents the rules for a specific league
type LeagueSettings struct {
	Name          string                 `mapstructure:"name" json:"name"`
	Description   string                 `mapstructure:"description" json:"description"`
	Schedule      league.ScheduleOptions `mapstructure:"schedule" json:"schedule"`
	Playoffs      league.PlayoffOptions  `mapstructure:"playoffs" json:"playoffs"`
	TiebreakOrder []string               `mapstructure:"tiebreak_order" json:"tiebreak_order"`
	Notes         string                 `mapstructure:"notes" json:"notes,omitempty"`
}

// Tiebreakers parses the configured tiebreak order
func (s LeagueSettings) Tiebreakers() ([]league.TiebreakerType, error) {
	if len(s.TiebreakOrder) == 0 {
		return league.DefaultTiebreakOrder, nil
	}
	return league.ParseTiebreakOrder(s.TiebreakOrder)
}

type ServerConfig struct {
	Name    string `mapstructure:"name" json:"name"`
	Version string `mapstructure:"version" json:"version"`
}

// AutoSimConfig schedules unattended week-by-week simulation
type AutoSimConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Cron    string `mapstructure:"cron" json:"cron"`
}

type SleeperConfig struct {
	BaseURL string `mapstructure:"base_url" json:"base_url"`
}

// LeagueConfig represents the entire configuration file
type LeagueConfig struct {
	Server          ServerConfig              `mapstructure:"server" json:"server"`
	Logging         logging.Config            `mapstructure:"logging" json:"logging"`
	Store           store.Config              `mapstructure:"store" json:"store"`
	Simulator       simulator.Config          `mapstructure:"simulator" json:"simulator"`
	AutoSim         AutoSimConfig             `mapstructure:"autosim" json:"autosim"`
	Sleeper         SleeperConfig             `mapstructure:"sleeper" json:"sleeper"`
	DefaultSettings LeagueSettings            `mapstructure:"default_settings" json:"default_settings"`
	Leagues         map[string]LeagueSettings `mapstructure:"leagues" json:"leagues"`

	// File is the settings file that was read, empty when running on defaults
	File string `mapstructure:"-" json:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "League Simulator")
	v.SetDefault("server.version", "1.0.0")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.dir", "data/leagues")
	v.SetDefault("store.redis_url", "")
	v.SetDefault("store.key_prefix", "league-sim:league:")

	sim := simulator.DefaultConfig()
	v.SetDefault("simulator.seed", sim.Seed)
	v.SetDefault("simulator.possessions", sim.Possessions)
	v.SetDefault("simulator.home_advantage", sim.HomeAdvantage)

	v.SetDefault("autosim.enabled", false)
	v.SetDefault("autosim.cron", "0 * * * *")

	v.SetDefault("sleeper.base_url", "https://api.sleeper.app/v1")

	schedule := league.DefaultScheduleOptions()
	v.SetDefault("default_settings.name", "Default League")
	v.SetDefault("default_settings.description", "Division rivals twice, conference opponents once")
	v.SetDefault("default_settings.schedule.division_games", schedule.DivisionGames)
	v.SetDefault("default_settings.schedule.conference_games", schedule.ConferenceGames)
	v.SetDefault("default_settings.schedule.cross_conference_games", schedule.CrossConferenceGames)
	v.SetDefault("default_settings.playoffs.num_teams", 4)
	v.SetDefault("default_settings.playoffs.per_conference", false)
	v.SetDefault("default_settings.playoffs.division_winners_guaranteed", false)

	order := make([]string, len(league.DefaultTiebreakOrder))
	for i, t := range league.DefaultTiebreakOrder {
		order[i] = string(t)
	}
	v.SetDefault("default_settings.tiebreak_order", order)
}

// LoadLeagueSettings reads configs/league_settings.json from the usual locations,
// falling back to defaults when no file exists
func LoadLeagueSettings() (*LeagueConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("league_settings")
	v.SetConfigType("json")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	return load(v)
}

// LoadLeagueSettingsFile reads an explicit settings file
func LoadLeagueSettingsFile(path string) (*LeagueConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*LeagueConfig, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read league settings: %w", err)
		}
	}

	var cfg LeagueConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse league settings from %s: %w", v.ConfigFileUsed(), err)
	}
	cfg.File = v.ConfigFileUsed()
	if cfg.Leagues == nil {
		cfg.Leagues = make(map[string]LeagueSettings)
	}

	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// overrideFromEnv applies the conventional unprefixed variables
func overrideFromEnv(cfg *LeagueConfig) {
	if v := os.Getenv("REDIS_URL"); v != "" && cfg.Store.RedisURL == "" {
		cfg.Store.RedisURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" && os.Getenv(EnvPrefix+"_LOGGING_LEVEL") == "" {
		cfg.Logging.Level = v
	}
}

// Validate checks every tiebreak order and schedule block
func (c *LeagueConfig) Validate() error {
	check := func(key string, s LeagueSettings) error {
		if _, err := s.Tiebreakers(); err != nil {
			return fmt.Errorf("league settings %s: %w", key, err)
		}
		if err := s.Schedule.Validate(); err != nil {
			return fmt.Errorf("league settings %s: %w", key, err)
		}
		if s.Playoffs.NumTeams < 0 {
			return fmt.Errorf("league settings %s: %w: num_teams %d", key, league.ErrInvalidPlayoffOptions, s.Playoffs.NumTeams)
		}
		return nil
	}
	if err := check("default_settings", c.DefaultSettings); err != nil {
		return err
	}
	for id, s := range c.Leagues {
		if err := check(id, s); err != nil {
			return err
		}
	}
	return nil
}

// GetLeagueSettings returns settings for a specific league ID. Blocks an override
// leaves empty are taken from the defaults.
func (c *LeagueConfig) GetLeagueSettings(leagueID string) LeagueSettings {
	settings, exists := c.Leagues[leagueID]
	if !exists {
		return c.DefaultSettings
	}

	if settings.Name == "" {
		settings.Name = c.DefaultSettings.Name
	}
	if settings.Schedule == (league.ScheduleOptions{}) {
		settings.Schedule = c.DefaultSettings.Schedule
	}
	if settings.Playoffs.NumTeams == 0 {
		settings.Playoffs = c.DefaultSettings.Playoffs
	}
	if len(settings.TiebreakOrder) == 0 {
		settings.TiebreakOrder = c.DefaultSettings.TiebreakOrder
	}
	return settings
}

// HasCustomSettings reports whether a league overrides the defaults
func (c *LeagueConfig) HasCustomSettings(leagueID string) bool {
	_, exists := c.Leagues[leagueID]
	return exists
}
