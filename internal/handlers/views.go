package handlers

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sam-maryland/league-sim-mcp-server/internal/store"
)

// TeamView is a season team with its place in the conference structure
type TeamView struct {
	TeamID     int               `json:"team_id"`
	Name       string            `json:"name"`
	ShortName  string            `json:"short_name"`
	Conference *int              `json:"conference,omitempty"`
	Division   *int              `json:"division,omitempty"`
	Record     league.Record     `json:"record"`
	Offense    league.Attributes `json:"offense,omitempty"`
	Defense    league.Attributes `json:"defense,omitempty"`
	Coach      league.Attributes `json:"coach,omitempty"`
}

// MatchupView is one game with team names resolved
type MatchupView struct {
	Matchup    int             `json:"matchup"`
	HomeTeamID int             `json:"home_team_id"`
	HomeTeam   string          `json:"home_team"`
	AwayTeamID int             `json:"away_team_id"`
	AwayTeam   string          `json:"away_team"`
	Complete   bool            `json:"complete"`
	HomeScore  *int            `json:"home_score,omitempty"`
	AwayScore  *int            `json:"away_score,omitempty"`
	WinnerID   *int            `json:"winner_id,omitempty"`
	Tie        bool            `json:"tie,omitempty"`
	Game       json.RawMessage `json:"game,omitempty"`
	HomeStats  json.RawMessage `json:"home_stats,omitempty"`
	AwayStats  json.RawMessage `json:"away_stats,omitempty"`
}

// WeekView is a regular-season week or a playoff round
type WeekView struct {
	Week     int           `json:"week"`
	Complete bool          `json:"complete"`
	Matchups []MatchupView `json:"matchups"`
}

// SeasonView summarizes a season
type SeasonView struct {
	Year        int                 `json:"year"`
	State       string              `json:"state"`
	NumTeams    int                 `json:"num_teams"`
	NumWeeks    int                 `json:"num_weeks"`
	CurrentWeek *int                `json:"current_week,omitempty"`
	Conferences []league.Conference `json:"conferences"`
	Teams       []TeamView          `json:"teams,omitempty"`
	ChampionID  *int                `json:"champion_id,omitempty"`
	Champion    string              `json:"champion,omitempty"`
}

// LeagueView is a stored league with its seasons
type LeagueView struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
	TeamIDs       []int        `json:"team_ids"`
	CurrentSeason *SeasonView  `json:"current_season,omitempty"`
	PastSeasons   []SeasonView `json:"past_seasons,omitempty"`
}

// SeedView is one qualified playoff team
type SeedView struct {
	Conference int    `json:"conference"`
	Seed       int    `json:"seed"`
	TeamID     int    `json:"team_id"`
	Name       string `json:"name"`
	ShortName  string `json:"short_name"`
}

// BracketView is the rounds of one bracket
type BracketView struct {
	Bracket int        `json:"bracket"`
	Name    string     `json:"name"`
	Rounds  []WeekView `json:"rounds"`
}

// PlayoffsView is the playoff field and every bracket
type PlayoffsView struct {
	Year       int           `json:"year"`
	State      string        `json:"state"`
	Seeds      []SeedView    `json:"seeds"`
	Brackets   []BracketView `json:"brackets"`
	ChampionID *int          `json:"champion_id,omitempty"`
	Champion   string        `json:"champion,omitempty"`
}

func teamName(s *league.Season, id int) string {
	if t, ok := s.Team(id); ok {
		return t.Name
	}
	return fmt.Sprintf("Team %d", id)
}

func matchupView(s *league.Season, index int, m league.Matchup, withStats bool) MatchupView {
	v := MatchupView{
		Matchup:    index,
		HomeTeamID: m.HomeTeam,
		HomeTeam:   teamName(s, m.HomeTeam),
		AwayTeamID: m.AwayTeam,
		AwayTeam:   teamName(s, m.AwayTeam),
		Complete:   m.Complete(),
	}
	if !m.Complete() {
		return v
	}
	home, away := m.Context.HomeScore, m.Context.AwayScore
	v.HomeScore, v.AwayScore = &home, &away
	if winner, ok := m.Winner(); ok {
		v.WinnerID = &winner
	} else {
		v.Tie = true
	}
	if withStats {
		v.Game, v.HomeStats, v.AwayStats = m.Game, m.HomeStats, m.AwayStats
	}
	return v
}

func weekView(s *league.Season, index int, w league.Week, withStats bool) WeekView {
	v := WeekView{Week: index, Complete: w.Complete(), Matchups: make([]MatchupView, 0, len(w.Matchups))}
	for i, m := range w.Matchups {
		v.Matchups = append(v.Matchups, matchupView(s, i, m, withStats))
	}
	return v
}

func teamViews(s *league.Season) []TeamView {
	ids := s.TeamIDs()
	out := make([]TeamView, 0, len(ids))
	for _, id := range ids {
		t, _ := s.Team(id)
		record, _ := s.TeamRecord(id)
		v := TeamView{
			TeamID:    id,
			Name:      t.Name,
			ShortName: t.ShortName,
			Record:    record,
			Offense:   t.Offense,
			Defense:   t.Defense,
			Coach:     t.Coach,
		}
		if c, d, ok := s.TeamDivision(id); ok {
			v.Conference, v.Division = &c, &d
		}
		out = append(out, v)
	}
	return out
}

func seasonView(s *league.Season, withTeams bool) SeasonView {
	v := SeasonView{
		Year:        s.Year(),
		State:       s.State().String(),
		NumTeams:    s.NumTeams(),
		NumWeeks:    s.NumWeeks(),
		Conferences: s.Conferences(),
	}
	if v.Conferences == nil {
		v.Conferences = []league.Conference{}
	}
	if week, ok := s.CurrentWeek(); ok {
		v.CurrentWeek = &week
	}
	if withTeams {
		v.Teams = teamViews(s)
	}
	if champion, ok := s.Champion(); ok {
		v.ChampionID = &champion
		v.Champion = teamName(s, champion)
	}
	return v
}

func leagueView(e *store.Entry, withTeams bool) LeagueView {
	v := LeagueView{
		ID:        e.ID,
		Name:      e.Name,
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: e.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		TeamIDs:   e.League.TeamIDs(),
	}
	if s := e.League.CurrentSeason(); s != nil {
		sv := seasonView(s, withTeams)
		v.CurrentSeason = &sv
	}
	for _, s := range e.League.PastSeasons() {
		v.PastSeasons = append(v.PastSeasons, seasonView(s, false))
	}
	return v
}

func bracketName(s *league.Season, bracket int) string {
	if bracket == league.WinnersBracket {
		return "Winners Bracket"
	}
	if conferences := s.Conferences(); bracket >= 0 && bracket < len(conferences) && len(s.Playoffs().Teams) > 1 {
		return conferences[bracket].Name
	}
	return "Playoffs"
}

func playoffsView(s *league.Season, withStats bool) PlayoffsView {
	p := s.Playoffs()
	v := PlayoffsView{Year: s.Year(), State: s.State().String(), Seeds: []SeedView{}, Brackets: []BracketView{}}

	for _, conf := range p.Teams.Conferences() {
		for id, t := range p.Teams[conf] {
			v.Seeds = append(v.Seeds, SeedView{
				Conference: conf,
				Seed:       t.Seed,
				TeamID:     id,
				Name:       teamName(s, id),
				ShortName:  t.ShortName,
			})
		}
	}
	sort.Slice(v.Seeds, func(i, j int) bool {
		if v.Seeds[i].Conference != v.Seeds[j].Conference {
			return v.Seeds[i].Conference < v.Seeds[j].Conference
		}
		return v.Seeds[i].Seed < v.Seeds[j].Seed
	})

	keys := make([]int, 0, len(p.ConferenceBrackets))
	for conf := range p.ConferenceBrackets {
		keys = append(keys, conf)
	}
	sort.Ints(keys)
	addBracket := func(key int, rounds []league.Week) {
		b := BracketView{Bracket: key, Name: bracketName(s, key), Rounds: make([]WeekView, 0, len(rounds))}
		for i, r := range rounds {
			b.Rounds = append(b.Rounds, weekView(s, i, r, withStats))
		}
		v.Brackets = append(v.Brackets, b)
	}
	for _, key := range keys {
		addBracket(key, p.ConferenceBrackets[key])
	}
	if len(p.WinnersBracket) > 0 {
		addBracket(league.WinnersBracket, p.WinnersBracket)
	}

	if champion, ok := s.Champion(); ok {
		v.ChampionID = &champion
		v.Champion = teamName(s, champion)
	}
	return v
}
