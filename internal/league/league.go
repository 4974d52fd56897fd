package league

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// League is a registry of franchises and the seasons they have played
type League struct {
	teams   map[int]LeagueTeam
	current *Season
	seasons []*Season
}

// NewLeague creates an empty league
func NewLeague() *League {
	return &League{teams: make(map[int]LeagueTeam)}
}

// AddTeam registers a new franchise and returns its ID
func (l *League) AddTeam() int {
	id := 0
	for existing := range l.teams {
		if existing >= id {
			id = existing + 1
		}
	}
	l.teams[id] = LeagueTeam{ID: id}
	return id
}

// HasTeam reports whether the franchise exists
func (l *League) HasTeam(id int) bool {
	_, ok := l.teams[id]
	return ok
}

// TeamIDs returns every franchise ID in ascending order
func (l *League) TeamIDs() []int {
	ids := make([]int, 0, len(l.teams))
	for id := range l.teams {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// CurrentSeason returns the season being played, nil before the first season
func (l *League) CurrentSeason() *Season {
	return l.current
}

// Season returns the season being played or ErrNoSeason
func (l *League) Season() (*Season, error) {
	if l.current == nil {
		return nil, ErrNoSeason
	}
	return l.current, nil
}

// PastSeasons returns the archived seasons, oldest first
func (l *League) PastSeasons() []*Season {
	return append([]*Season(nil), l.seasons...)
}

// AllSeasons returns the archived seasons followed by the current one
func (l *League) AllSeasons() []*Season {
	all := l.PastSeasons()
	if l.current != nil {
		all = append(all, l.current)
	}
	return all
}

// AddSeason archives the current season and starts a new one. A zero year follows
// the previous season, or the current calendar year for the first season.
func (l *League) AddSeason(year int) (*Season, error) {
	if l.current != nil {
		if st := l.current.State(); st != StateComplete {
			return nil, fmt.Errorf("%w: season %d is %s", ErrSeasonInProgress, l.current.Year(), st)
		}
	}
	if year == 0 {
		switch {
		case l.current != nil:
			year = l.current.Year() + 1
		case len(l.seasons) > 0:
			year = l.seasons[len(l.seasons)-1].Year() + 1
		default:
			year = time.Now().Year()
		}
	}

	if l.current != nil {
		l.seasons = append(l.seasons, l.current)
	}
	l.current = NewSeason(year)
	return l.current, nil
}

// AddSeasonTeam enters a franchise into the current season
func (l *League) AddSeasonTeam(id int, team FootballTeam) error {
	if l.current == nil {
		return ErrNoSeason
	}
	if !l.HasTeam(id) {
		return fmt.Errorf("%w: league team %d", ErrTeamNotFound, id)
	}
	return l.current.AddTeam(id, team)
}

// TeamRecord sums a franchise's regular-season record over every season
func (l *League) TeamRecord(id int) (Record, error) {
	if !l.HasTeam(id) {
		return Record{}, fmt.Errorf("%w: league team %d", ErrTeamNotFound, id)
	}
	var total Record
	for _, s := range l.AllSeasons() {
		if s.HasTeam(id) {
			total.Merge(recordIn(s.weeks, id))
		}
	}
	return total, nil
}

// SeasonSummary is one season of a franchise's history
type SeasonSummary struct {
	Year          int         `json:"year"`
	Name          string      `json:"name"`
	ShortName     string      `json:"short_name"`
	State         SeasonState `json:"state"`
	Record        Record      `json:"record"`
	Playoffs      bool        `json:"playoffs"`
	PlayoffRecord Record      `json:"playoff_record"`
	Champion      bool        `json:"champion"`
}

// TeamHistory lists every season the franchise took part in, oldest first
func (l *League) TeamHistory(id int) ([]SeasonSummary, error) {
	if !l.HasTeam(id) {
		return nil, fmt.Errorf("%w: league team %d", ErrTeamNotFound, id)
	}
	var out []SeasonSummary
	for _, s := range l.AllSeasons() {
		team, ok := s.Team(id)
		if !ok {
			continue
		}
		champion, done := s.Champion()
		out = append(out, SeasonSummary{
			Year:          s.Year(),
			Name:          team.Name,
			ShortName:     team.ShortName,
			State:         s.State(),
			Record:        recordIn(s.weeks, id),
			Playoffs:      s.InPlayoffs(id),
			PlayoffRecord: s.PlayoffRecord(id),
			Champion:      done && champion == id,
		})
	}
	return out, nil
}

type leagueJSON struct {
	Teams         map[int]LeagueTeam `json:"teams"`
	CurrentSeason *Season            `json:"current_season"`
	Seasons       []*Season          `json:"seasons"`
}

func (l *League) MarshalJSON() ([]byte, error) {
	seasons := l.seasons
	if seasons == nil {
		seasons = []*Season{}
	}
	return json.Marshal(leagueJSON{Teams: l.teams, CurrentSeason: l.current, Seasons: seasons})
}

// UnmarshalJSON decodes a persisted league and checks that seasons only reference its teams
func (l *League) UnmarshalJSON(data []byte) error {
	var raw leagueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := &League{teams: raw.Teams, current: raw.CurrentSeason, seasons: raw.Seasons}
	if decoded.teams == nil {
		decoded.teams = make(map[int]LeagueTeam)
	}
	for key, t := range decoded.teams {
		if t.ID != key {
			return fmt.Errorf("%w: team keyed %d has id %d", ErrDuplicateTeamID, key, t.ID)
		}
	}
	for _, s := range decoded.AllSeasons() {
		if s == nil {
			return fmt.Errorf("%w: null season", ErrInvalidState)
		}
		for _, id := range s.TeamIDs() {
			if !decoded.HasTeam(id) {
				return fmt.Errorf("%w: season %d references league team %d", ErrTeamNotFound, s.Year(), id)
			}
		}
	}
	*l = *decoded
	return nil
}
