package autosim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sam-maryland/league-sim-mcp-server/internal/config"
	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sam-maryland/league-sim-mcp-server/internal/store"
	"github.com/sirupsen/logrus"
)

// tickTimeout bounds one scheduled pass over every league
const tickTimeout = 2 * time.Minute

// Actions reported by Step
const (
	ActionIdle              = "idle"
	ActionScheduled         = "generated_schedule"
	ActionSimulatedWeek     = "simulated_week"
	ActionGeneratedPlayoffs = "generated_playoffs"
	ActionSimulatedRound    = "simulated_playoff_round"
	ActionAdvancedPlayoffs  = "advanced_playoffs"
)

// ErrIdle is returned by Step when the league has nothing to advance
var ErrIdle = errors.New("nothing to advance")

// SettingsSource resolves the rules a league is played under
type SettingsSource interface {
	GetLeagueSettings(leagueID string) config.LeagueSettings
}

// StepResult reports what one tick did to one league
type StepResult struct {
	LeagueID string `json:"league_id"`
	Action   string `json:"action"`
	Week     *int   `json:"week,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Runner moves every stored league forward one step on a cron schedule
type Runner struct {
	s        gocron.Scheduler
	cron     string
	repo     *store.Repository
	settings SettingsSource
	sim      league.MatchSimulator
	logger   *logrus.Logger
}

func NewRunner(cfg config.AutoSimConfig, repo *store.Repository, settings SettingsSource, sim league.MatchSimulator, logger *logrus.Logger) (*Runner, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Runner{
		s:        s,
		cron:     cfg.Cron,
		repo:     repo,
		settings: settings,
		sim:      sim,
		logger:   logger,
	}, nil
}

// Start registers the tick job and starts the scheduler
func (r *Runner) Start() error {
	_, err := r.s.NewJob(
		gocron.CronJob(r.cron, false),
		gocron.NewTask(r.run),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create auto-simulation job: %w", err)
	}

	r.s.Start()
	r.logger.WithField("cron", r.cron).Info("Auto-simulation started")
	return nil
}

func (r *Runner) Stop() error {
	return r.s.Shutdown()
}

func (r *Runner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	results, err := r.Tick(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Auto-simulation tick failed")
		return
	}
	advanced := 0
	for _, res := range results {
		if res.Action != ActionIdle && res.Error == "" {
			advanced++
		}
	}
	r.logger.WithFields(logrus.Fields{
		"leagues":  len(results),
		"advanced": advanced,
	}).Info("Auto-simulation tick complete")
}

// Tick advances every stored league by one step. A league that fails is reported
// and left unchanged; the others still advance.
func (r *Runner) Tick(ctx context.Context) ([]StepResult, error) {
	ids, err := r.repo.IDs(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := StepResult{LeagueID: id}
		_, err := r.repo.Update(ctx, id, func(e *store.Entry) error {
			action, week, err := Step(e.League, r.settings.GetLeagueSettings(id), r.sim)
			res.Action, res.Week = action, week
			return err
		})
		switch {
		case errors.Is(err, ErrIdle):
			res.Action = ActionIdle
		case err != nil:
			res.Error = err.Error()
			r.logger.WithError(err).WithField("league_id", id).Warn("Failed to advance league")
		}
		results = append(results, res)
	}
	return results, nil
}

// Step moves the current season of l forward by one unit of work: schedule it,
// play a week, seed the playoffs, or play or advance a playoff round.
func Step(l *league.League, settings config.LeagueSettings, sim league.MatchSimulator) (string, *int, error) {
	season := l.CurrentSeason()
	if season == nil {
		return ActionIdle, nil, ErrIdle
	}

	switch season.State() {
	case league.StateTeamsAssigned:
		if err := season.GenerateSchedule(settings.Schedule); err != nil {
			return "", nil, err
		}
		return ActionScheduled, nil, nil

	case league.StateScheduled, league.StateInProgress:
		week, err := season.SimulateNextWeek(sim)
		if err != nil {
			return "", nil, err
		}
		return ActionSimulatedWeek, &week, nil

	case league.StateRegularSeasonComplete:
		order, err := settings.Tiebreakers()
		if err != nil {
			return "", nil, err
		}
		opts := settings.Playoffs
		opts.TiebreakOrder = order
		if err := season.GeneratePlayoffs(opts); err != nil {
			return "", nil, err
		}
		return ActionGeneratedPlayoffs, nil, nil

	case league.StatePlayoffsGenerated, league.StatePlayoffsInProgress:
		err := season.SimulatePlayoffRound(sim)
		if err == nil {
			return ActionSimulatedRound, nil, nil
		}
		if !errors.Is(err, league.ErrMatchupComplete) {
			return "", nil, err
		}
		if err := season.AdvancePlayoffs(); err != nil {
			return "", nil, err
		}
		return ActionAdvancedPlayoffs, nil, nil
	}

	return ActionIdle, nil, ErrIdle
}
