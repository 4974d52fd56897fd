package simulator

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sirupsen/logrus"
)

const (
	defaultRating      = 50
	defaultPossessions = 11
	defaultHomeEdge    = 3
	maxOvertimePeriods = 10
	touchdownPoints    = 7
	fieldGoalPoints    = 3
)

// Config tunes the rating simulator
type Config struct {
	// Seed fixes the random source. Zero seeds from the clock.
	Seed          int64 `mapstructure:"seed" json:"seed"`
	Possessions   int   `mapstructure:"possessions" json:"possessions"`
	HomeAdvantage int   `mapstructure:"home_advantage" json:"home_advantage"`
}

// DefaultConfig returns the standard tuning
func DefaultConfig() Config {
	return Config{Possessions: defaultPossessions, HomeAdvantage: defaultHomeEdge}
}

// TeamStats is the per-team box score stored with each played game
type TeamStats struct {
	Possessions int `json:"possessions"`
	Touchdowns  int `json:"touchdowns"`
	FieldGoals  int `json:"field_goals"`
	Punts       int `json:"punts"`
	Turnovers   int `json:"turnovers"`
}

// Points is the score implied by the scoring plays
func (s TeamStats) Points() int {
	return s.Touchdowns*touchdownPoints + s.FieldGoals*fieldGoalPoints
}

// Drive is one possession of the game log
type Drive struct {
	Offense string `json:"offense"`
	Result  string `json:"result"`
	Points  int    `json:"points"`
}

// GameLog is the game record stored with each played matchup
type GameLog struct {
	OvertimePeriods int     `json:"overtime_periods"`
	Drives          []Drive `json:"drives"`
}

// RatingSimulator resolves games possession by possession, weighting every drive by the
// offense overall against the opposing defense overall. It is safe for concurrent use.
type RatingSimulator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	config Config
	logger *logrus.Logger
}

// NewRatingSimulator creates a simulator, filling unset tuning with defaults
func NewRatingSimulator(config Config, logger *logrus.Logger) *RatingSimulator {
	if config.Possessions <= 0 {
		config.Possessions = defaultPossessions
	}
	if config.HomeAdvantage < 0 {
		config.HomeAdvantage = 0
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RatingSimulator{
		rng:    rand.New(rand.NewSource(seed)),
		config: config,
		logger: logger,
	}
}

type side struct {
	team  league.FootballTeam
	edge  int
	stats TeamStats
}

// Simulate implements league.MatchSimulator
func (s *RatingSimulator) Simulate(home, away league.FootballTeam, ctx league.GameContext) (league.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &side{team: home, edge: s.config.HomeAdvantage}
	a := &side{team: away}
	var log GameLog

	offense, defense := h, a
	if s.rng.Intn(2) == 1 {
		offense, defense = a, h
	}
	for i := 0; i < 2*s.config.Possessions; i++ {
		log.Drives = append(log.Drives, s.drive(offense, defense))
		offense, defense = defense, offense
	}

	// sudden death: each period gives both sides a possession, the first score ends it
	for ctx.SuddenDeath && h.stats.Points() == a.stats.Points() {
		if log.OvertimePeriods == maxOvertimePeriods {
			winner := h
			if strength(a.team, 0) > strength(h.team, s.config.HomeAdvantage) {
				winner = a
			}
			winner.stats.FieldGoals++
			log.Drives = append(log.Drives, Drive{Offense: winner.team.ShortName, Result: "field_goal", Points: fieldGoalPoints})
			break
		}
		log.OvertimePeriods++
		for i := 0; i < 2 && h.stats.Points() == a.stats.Points(); i++ {
			log.Drives = append(log.Drives, s.drive(offense, defense))
			offense, defense = defense, offense
		}
	}

	outcome := league.Outcome{HomeScore: h.stats.Points(), AwayScore: a.stats.Points()}
	var err error
	if outcome.Game, err = json.Marshal(log); err != nil {
		return league.Outcome{}, fmt.Errorf("failed to encode game log: %w", err)
	}
	if outcome.HomeStats, err = json.Marshal(h.stats); err != nil {
		return league.Outcome{}, fmt.Errorf("failed to encode home stats: %w", err)
	}
	if outcome.AwayStats, err = json.Marshal(a.stats); err != nil {
		return league.Outcome{}, fmt.Errorf("failed to encode away stats: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"home":       home.ShortName,
			"away":       away.ShortName,
			"home_score": outcome.HomeScore,
			"away_score": outcome.AwayScore,
			"overtime":   log.OvertimePeriods,
		}).Debug("Simulated game")
	}
	return outcome, nil
}

// drive plays one possession and records it on the offense
func (s *RatingSimulator) drive(offense, defense *side) Drive {
	diff := strength(offense.team, offense.edge) - defense.team.Defense.Overall(defaultRating)
	if diff > 50 {
		diff = 50
	}
	if diff < -50 {
		diff = -50
	}
	d := float64(diff)

	pTouchdown := 0.20 + d*0.003
	pFieldGoal := 0.13 + d*0.001
	pTurnover := 0.12 - d*0.001

	offense.stats.Possessions++
	drive := Drive{Offense: offense.team.ShortName}
	switch roll := s.rng.Float64(); {
	case roll < pTouchdown:
		offense.stats.Touchdowns++
		drive.Result, drive.Points = "touchdown", touchdownPoints
	case roll < pTouchdown+pFieldGoal:
		offense.stats.FieldGoals++
		drive.Result, drive.Points = "field_goal", fieldGoalPoints
	case roll < pTouchdown+pFieldGoal+pTurnover:
		offense.stats.Turnovers++
		drive.Result = "turnover"
	default:
		offense.stats.Punts++
		drive.Result = "punt"
	}
	return drive
}

// strength is the offense overall plus any home edge
func strength(team league.FootballTeam, edge int) int {
	return team.Offense.Overall(defaultRating) + edge
}
