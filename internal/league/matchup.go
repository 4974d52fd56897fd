package league

import (
	"encoding/json"
	"fmt"
)

// Result is the outcome of a completed matchup relative to one team
type Result int

const (
	Win Result = iota
	Loss
	Tie
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Tie:
		return "tie"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// GameContext is the game state filled in by the match simulator
type GameContext struct {
	HomeShortName string `json:"home_short_name"`
	AwayShortName string `json:"away_short_name"`
	HomeScore     int    `json:"home_score"`
	AwayScore     int    `json:"away_score"`
	GameOver      bool   `json:"game_over"`
	SuddenDeath   bool   `json:"sudden_death,omitempty"`
}

// Matchup is one scheduled game between two teams of a season
type Matchup struct {
	HomeTeam  int             `json:"home_team"`
	AwayTeam  int             `json:"away_team"`
	Context   GameContext     `json:"context"`
	Game      json.RawMessage `json:"game,omitempty"`
	HomeStats json.RawMessage `json:"home_stats,omitempty"`
	AwayStats json.RawMessage `json:"away_stats,omitempty"`
}

func newMatchup(home, away int, homeShort, awayShort string) Matchup {
	return Matchup{
		HomeTeam: home,
		AwayTeam: away,
		Context: GameContext{
			HomeShortName: homeShort,
			AwayShortName: awayShort,
		},
	}
}

// Complete reports whether the game has been played
func (m Matchup) Complete() bool {
	return m.Context.GameOver
}

// Participated reports whether the team is home or away
func (m Matchup) Participated(teamID int) bool {
	return m.HomeTeam == teamID || m.AwayTeam == teamID
}

// Opponent returns the other team of the matchup
func (m Matchup) Opponent(teamID int) (int, bool) {
	switch teamID {
	case m.HomeTeam:
		return m.AwayTeam, true
	case m.AwayTeam:
		return m.HomeTeam, true
	}
	return 0, false
}

// Result returns the team's result, false if incomplete or not a participant
func (m Matchup) Result(teamID int) (Result, bool) {
	if !m.Complete() || !m.Participated(teamID) {
		return 0, false
	}
	home, away := m.Context.HomeScore, m.Context.AwayScore
	if home == away {
		return Tie, true
	}
	if (teamID == m.HomeTeam) == (home > away) {
		return Win, true
	}
	return Loss, true
}

// Winner returns the winning team, false if incomplete or tied
func (m Matchup) Winner() (int, bool) {
	r, ok := m.Result(m.HomeTeam)
	if !ok || r == Tie {
		return 0, false
	}
	if r == Win {
		return m.HomeTeam, true
	}
	return m.AwayTeam, true
}

// Loser returns the losing team, false if incomplete or tied
func (m Matchup) Loser() (int, bool) {
	winner, ok := m.Winner()
	if !ok {
		return 0, false
	}
	opponent, _ := m.Opponent(winner)
	return opponent, true
}

// Points returns points scored and allowed by the team
func (m Matchup) Points(teamID int) (scored, allowed int) {
	if teamID == m.HomeTeam {
		return m.Context.HomeScore, m.Context.AwayScore
	}
	return m.Context.AwayScore, m.Context.HomeScore
}

func (m Matchup) clone() Matchup {
	m.Game = cloneRaw(m.Game)
	m.HomeStats = cloneRaw(m.HomeStats)
	m.AwayStats = cloneRaw(m.AwayStats)
	return m
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

// Outcome is what a MatchSimulator reports for a game
type Outcome struct {
	HomeScore int
	AwayScore int
	Game      json.RawMessage
	HomeStats json.RawMessage
	AwayStats json.RawMessage
}

// MatchSimulator resolves a scheduled game into a final score.
// Implementations own their randomness; the core never draws random numbers for games.
type MatchSimulator interface {
	Simulate(home, away FootballTeam, ctx GameContext) (Outcome, error)
}

// apply records a simulated outcome on the matchup
func (m *Matchup) apply(o Outcome) error {
	if o.HomeScore < 0 || o.AwayScore < 0 {
		return fmt.Errorf("negative score %d-%d", o.HomeScore, o.AwayScore)
	}
	if m.Context.SuddenDeath && o.HomeScore == o.AwayScore {
		return fmt.Errorf("%w: %d-%d", ErrUndecidedPlayoffGame, o.HomeScore, o.AwayScore)
	}
	m.Context.HomeScore = o.HomeScore
	m.Context.AwayScore = o.AwayScore
	m.Context.GameOver = true
	m.Game = cloneRaw(o.Game)
	m.HomeStats = cloneRaw(o.HomeStats)
	m.AwayStats = cloneRaw(o.AwayStats)
	return nil
}

// Record is a derived win/loss/tie tally
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// Add counts one result
func (r *Record) Add(result Result) {
	switch result {
	case Win:
		r.Wins++
	case Loss:
		r.Losses++
	case Tie:
		r.Ties++
	}
}

// Merge adds another record's totals
func (r *Record) Merge(other Record) {
	r.Wins += other.Wins
	r.Losses += other.Losses
	r.Ties += other.Ties
}

// Games is the number of decided games
func (r Record) Games() int {
	return r.Wins + r.Losses + r.Ties
}

// WinPct is (wins + 0.5 ties) / games, zero with no games
func (r Record) WinPct() float64 {
	if r.Games() == 0 {
		return 0
	}
	return (float64(r.Wins) + 0.5*float64(r.Ties)) / float64(r.Games())
}

func (r Record) String() string {
	return fmt.Sprintf("%d-%d-%d", r.Wins, r.Losses, r.Ties)
}

// comparePct orders two records by win percentage without floating point error.
// Records with no games rank as 0.
func comparePct(a, b Record) int {
	// (2w+t)/2g compared by cross multiplication
	an, ad := int64(2*a.Wins+a.Ties), int64(2*a.Games())
	bn, bd := int64(2*b.Wins+b.Ties), int64(2*b.Games())
	if ad == 0 {
		an, ad = 0, 1
	}
	if bd == 0 {
		bn, bd = 0, 1
	}
	left, right := an*bd, bn*ad
	switch {
	case left > right:
		return 1
	case left < right:
		return -1
	}
	return 0
}
