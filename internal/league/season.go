package league

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SeasonState is the progression state of a season, derived from its contents
type SeasonState int

const (
	StateCreated SeasonState = iota
	StateTeamsAssigned
	StateScheduled
	StateInProgress
	StateRegularSeasonComplete
	StatePlayoffsGenerated
	StatePlayoffsInProgress
	StateComplete
)

var seasonStateNames = map[SeasonState]string{
	StateCreated:               "created",
	StateTeamsAssigned:         "teams_assigned",
	StateScheduled:             "scheduled",
	StateInProgress:            "in_progress",
	StateRegularSeasonComplete: "regular_season_complete",
	StatePlayoffsGenerated:     "playoffs_generated",
	StatePlayoffsInProgress:    "playoffs_in_progress",
	StateComplete:              "complete",
}

func (s SeasonState) String() string {
	if name, ok := seasonStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SeasonState(%d)", int(s))
}

// MarshalText renders the state by name
func (s SeasonState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SeasonState) UnmarshalText(text []byte) error {
	for state, name := range seasonStateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("%w: unknown season state %q", ErrInvalidState, text)
}

// Season is one year of a league: its teams, conference structure, schedule and playoffs.
// A Season is not safe for concurrent mutation.
type Season struct {
	year        int
	teams       map[int]FootballTeam
	conferences []Conference
	weeks       []Week
	playoffs    Playoffs
}

// NewSeason creates an empty season
func NewSeason(year int) *Season {
	return &Season{
		year:     year,
		teams:    make(map[int]FootballTeam),
		playoffs: newPlayoffs(),
	}
}

// slot locates a team in the conference structure
type slot struct {
	conference int
	division   int
}

func (s *Season) Year() int { return s.year }

// Team returns a copy of the season participant
func (s *Season) Team(id int) (FootballTeam, bool) {
	t, ok := s.teams[id]
	if !ok {
		return FootballTeam{}, false
	}
	return t.clone(), true
}

// HasTeam reports whether the team participates in the season
func (s *Season) HasTeam(id int) bool {
	_, ok := s.teams[id]
	return ok
}

// TeamIDs returns the participating team IDs in ascending order
func (s *Season) TeamIDs() []int {
	ids := make([]int, 0, len(s.teams))
	for id := range s.teams {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Season) NumTeams() int { return len(s.teams) }

// Conferences returns a copy of the conference structure
func (s *Season) Conferences() []Conference {
	return cloneConferences(s.conferences)
}

// Weeks returns a copy of the regular-season schedule
func (s *Season) Weeks() []Week {
	return cloneWeeks(s.weeks)
}

func (s *Season) NumWeeks() int { return len(s.weeks) }

// Week returns a copy of one scheduled week
func (s *Season) Week(index int) (Week, error) {
	if index < 0 || index >= len(s.weeks) {
		return Week{}, fmt.Errorf("%w: week %d of %d", ErrWeekNotFound, index, len(s.weeks))
	}
	return s.weeks[index].clone(), nil
}

// Playoffs returns a copy of the playoff structure
func (s *Season) Playoffs() Playoffs {
	return s.playoffs.clone()
}

// State derives the progression state from the season contents
func (s *Season) State() SeasonState {
	if s.playoffs.generated() {
		switch {
		case s.playoffs.complete():
			return StateComplete
		case s.playoffs.started():
			return StatePlayoffsInProgress
		default:
			return StatePlayoffsGenerated
		}
	}
	if len(s.weeks) > 0 {
		if s.regularSeasonComplete() {
			return StateRegularSeasonComplete
		}
		for _, w := range s.weeks {
			if w.Started() {
				return StateInProgress
			}
		}
		return StateScheduled
	}
	if s.checkAssignment() == nil {
		return StateTeamsAssigned
	}
	return StateCreated
}

func (s *Season) regularSeasonComplete() bool {
	if len(s.weeks) == 0 {
		return false
	}
	for _, w := range s.weeks {
		if !w.Complete() {
			return false
		}
	}
	return true
}

// checkAssignment reports why the season cannot leave Created, nil if it can
func (s *Season) checkAssignment() error {
	if len(s.conferences) == 0 {
		return ErrNoConferenceStructure
	}
	if len(s.teams) < 4 {
		return fmt.Errorf("%w: %d teams, need at least 4", ErrInvalidTeamCount, len(s.teams))
	}
	slots := s.slots()
	for _, id := range s.TeamIDs() {
		if _, ok := slots[id]; !ok {
			return fmt.Errorf("%w: team %d", ErrUnassignedTeam, id)
		}
	}
	return nil
}

func (s *Season) slots() map[int]slot {
	out := make(map[int]slot, len(s.teams))
	for ci, c := range s.conferences {
		for di, d := range c.Divisions {
			for _, id := range d.Teams {
				out[id] = slot{conference: ci, division: di}
			}
		}
	}
	return out
}

// TeamDivision returns the conference and division indices of a team
func (s *Season) TeamDivision(id int) (conference, division int, ok bool) {
	for ci, c := range s.conferences {
		if di, found := c.DivisionOf(id); found {
			return ci, di, true
		}
	}
	return 0, 0, false
}

func (s *Season) checkMembershipOpen() error {
	if len(s.weeks) > 0 || s.playoffs.generated() {
		return fmt.Errorf("%w: membership is fixed once a schedule exists (state %s)", ErrInvalidState, s.State())
	}
	return nil
}

// AddTeam registers a season participant under a league team ID
func (s *Season) AddTeam(id int, team FootballTeam) error {
	if err := s.checkMembershipOpen(); err != nil {
		return err
	}
	if _, ok := s.teams[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateTeamID, id)
	}
	if err := team.Validate(); err != nil {
		return err
	}
	s.teams[id] = team.clone()
	return nil
}

// AddConference appends an empty conference and returns its index
func (s *Season) AddConference(name string) (int, error) {
	if err := s.checkMembershipOpen(); err != nil {
		return 0, err
	}
	c, err := NewConference(name)
	if err != nil {
		return 0, err
	}
	s.conferences = append(s.conferences, c)
	return len(s.conferences) - 1, nil
}

// AddDivision appends an empty division to a conference and returns its index
func (s *Season) AddDivision(conference int, name string) (int, error) {
	if err := s.checkMembershipOpen(); err != nil {
		return 0, err
	}
	if conference < 0 || conference >= len(s.conferences) {
		return 0, fmt.Errorf("%w: %d", ErrConferenceNotFound, conference)
	}
	d, err := NewDivision(name)
	if err != nil {
		return 0, err
	}
	c := &s.conferences[conference]
	c.Divisions = append(c.Divisions, d)
	return len(c.Divisions) - 1, nil
}

// AssignTeam places a team into a division, moving it out of any division it held
func (s *Season) AssignTeam(id, conference, division int) error {
	if err := s.checkMembershipOpen(); err != nil {
		return err
	}
	if _, ok := s.teams[id]; !ok {
		return fmt.Errorf("%w: %d", ErrTeamNotFound, id)
	}
	if conference < 0 || conference >= len(s.conferences) {
		return fmt.Errorf("%w: %d", ErrConferenceNotFound, conference)
	}
	if division < 0 || division >= len(s.conferences[conference].Divisions) {
		return fmt.Errorf("%w: %d in conference %d", ErrDivisionNotFound, division, conference)
	}

	if ci, di, ok := s.TeamDivision(id); ok {
		if ci == conference && di == division {
			return nil
		}
		d := &s.conferences[ci].Divisions[di]
		kept := d.Teams[:0:0]
		for _, t := range d.Teams {
			if t != id {
				kept = append(kept, t)
			}
		}
		d.Teams = kept
	}

	d := &s.conferences[conference].Divisions[division]
	d.Teams = append(d.Teams, id)
	return nil
}

// SetConferences replaces the whole conference structure
func (s *Season) SetConferences(conferences []Conference) error {
	if err := s.checkMembershipOpen(); err != nil {
		return err
	}
	if err := validateConferences(conferences); err != nil {
		return err
	}
	for _, c := range conferences {
		for _, id := range c.AllTeams() {
			if _, ok := s.teams[id]; !ok {
				return fmt.Errorf("%w: conference %q references team %d", ErrTeamNotFound, c.Name, id)
			}
		}
	}
	s.conferences = cloneConferences(conferences)
	return nil
}

// AddDefaultConference puts every team into a single conference with a single division
func (s *Season) AddDefaultConference() error {
	d, err := NewDivision("Default Division", s.TeamIDs()...)
	if err != nil {
		return err
	}
	c, err := NewConference("Default Conference", d)
	if err != nil {
		return err
	}
	return s.SetConferences([]Conference{c})
}

// GenerateSchedule replaces the unplayed schedule with a freshly generated one
func (s *Season) GenerateSchedule(opts ScheduleOptions) error {
	switch st := s.State(); st {
	case StateTeamsAssigned, StateScheduled:
	case StateCreated:
		if err := s.checkAssignment(); err != nil {
			return err
		}
		return fmt.Errorf("%w: state %s", ErrInvalidState, st)
	default:
		return fmt.Errorf("%w: cannot schedule in state %s", ErrInvalidState, st)
	}

	pairings, err := GenerateSchedule(s.conferences, opts)
	if err != nil {
		return err
	}

	weeks := make([]Week, len(pairings))
	for i, round := range pairings {
		matchups := make([]Matchup, len(round))
		for j, p := range round {
			matchups[j] = newMatchup(p.Home, p.Away, s.teams[p.Home].ShortName, s.teams[p.Away].ShortName)
		}
		weeks[i] = Week{Matchups: matchups}
	}
	s.weeks = weeks
	return nil
}

// CurrentWeek returns the index of the first incomplete week
func (s *Season) CurrentWeek() (int, bool) {
	for i, w := range s.weeks {
		if !w.Complete() {
			return i, true
		}
	}
	return 0, false
}

// SimulateMatchup plays one scheduled regular-season game
func (s *Season) SimulateMatchup(week, matchup int, sim MatchSimulator) error {
	if err := s.checkWeekPlayable(s.weeks, week); err != nil {
		return err
	}
	if matchup < 0 || matchup >= len(s.weeks[week].Matchups) {
		return fmt.Errorf("%w: matchup %d of week %d", ErrMatchupNotFound, matchup, week)
	}
	m := s.weeks[week].Matchups[matchup]
	if m.Complete() {
		return fmt.Errorf("%w: week %d matchup %d", ErrMatchupComplete, week, matchup)
	}
	if err := s.play(&m, sim); err != nil {
		return err
	}
	s.weeks[week].Matchups[matchup] = m
	return nil
}

// SimulateNextMatchup plays the first unplayed game of the current week
func (s *Season) SimulateNextMatchup(sim MatchSimulator) (week, matchup int, err error) {
	week, ok := s.CurrentWeek()
	if !ok {
		return 0, 0, fmt.Errorf("%w: regular season has no unplayed games (state %s)", ErrInvalidState, s.State())
	}
	for i, m := range s.weeks[week].Matchups {
		if !m.Complete() {
			return week, i, s.SimulateMatchup(week, i, sim)
		}
	}
	return 0, 0, fmt.Errorf("%w: week %d", ErrMatchupNotFound, week)
}

// SimulateWeek plays every unplayed game of a week. Either all games are recorded or none.
func (s *Season) SimulateWeek(week int, sim MatchSimulator) error {
	weeks := cloneWeeks(s.weeks)
	if err := s.simulateWeekInto(weeks, week, sim); err != nil {
		return err
	}
	s.weeks = weeks
	return nil
}

// SimulateNextWeek plays the rest of the current week and returns its index
func (s *Season) SimulateNextWeek(sim MatchSimulator) (int, error) {
	week, ok := s.CurrentWeek()
	if !ok {
		return 0, fmt.Errorf("%w: regular season has no unplayed games (state %s)", ErrInvalidState, s.State())
	}
	return week, s.SimulateWeek(week, sim)
}

// SimulateRegularSeason plays every remaining regular-season game
func (s *Season) SimulateRegularSeason(sim MatchSimulator) error {
	if len(s.weeks) == 0 {
		return fmt.Errorf("%w: no schedule (state %s)", ErrInvalidState, s.State())
	}
	if s.regularSeasonComplete() {
		return fmt.Errorf("%w: regular season already complete", ErrInvalidState)
	}
	weeks := cloneWeeks(s.weeks)
	for i := range weeks {
		if weeks[i].Complete() {
			continue
		}
		if err := s.simulateWeekInto(weeks, i, sim); err != nil {
			return err
		}
	}
	s.weeks = weeks
	return nil
}

func (s *Season) simulateWeekInto(weeks []Week, week int, sim MatchSimulator) error {
	if err := s.checkWeekPlayable(weeks, week); err != nil {
		return err
	}
	if weeks[week].Complete() {
		return fmt.Errorf("%w: every game of week %d has been played", ErrMatchupComplete, week)
	}
	for i := range weeks[week].Matchups {
		m := &weeks[week].Matchups[i]
		if m.Complete() {
			continue
		}
		if err := s.play(m, sim); err != nil {
			return fmt.Errorf("week %d matchup %d: %w", week, i, err)
		}
	}
	return nil
}

func (s *Season) checkWeekPlayable(weeks []Week, week int) error {
	if s.playoffs.generated() {
		return fmt.Errorf("%w: regular season is closed (state %s)", ErrInvalidState, s.State())
	}
	if week < 0 || week >= len(weeks) {
		return fmt.Errorf("%w: week %d of %d", ErrWeekNotFound, week, len(weeks))
	}
	if week > 0 && !weeks[week-1].Complete() {
		return fmt.Errorf("%w: week %d is not complete", ErrWeekOutOfOrder, week-1)
	}
	return nil
}

// play resolves one game through the simulator and records the outcome on m
func (s *Season) play(m *Matchup, sim MatchSimulator) error {
	home, ok := s.teams[m.HomeTeam]
	if !ok {
		return fmt.Errorf("%w: %d", ErrTeamNotFound, m.HomeTeam)
	}
	away, ok := s.teams[m.AwayTeam]
	if !ok {
		return fmt.Errorf("%w: %d", ErrTeamNotFound, m.AwayTeam)
	}
	outcome, err := sim.Simulate(home.clone(), away.clone(), m.Context)
	if err != nil {
		return fmt.Errorf("simulating %s at %s: %w", away.ShortName, home.ShortName, err)
	}
	return m.apply(outcome)
}

// TeamMatchup is a regular-season game of one team
type TeamMatchup struct {
	Week    int     `json:"week"`
	Matchup Matchup `json:"matchup"`
}

// TeamMatchups returns every scheduled game of the team in week order
func (s *Season) TeamMatchups(id int) ([]TeamMatchup, error) {
	if _, ok := s.teams[id]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrTeamNotFound, id)
	}
	var out []TeamMatchup
	for wi, w := range s.weeks {
		if mi, ok := w.TeamMatchup(id); ok {
			out = append(out, TeamMatchup{Week: wi, Matchup: w.Matchups[mi].clone()})
		}
	}
	return out, nil
}

// TeamRecord is the team's regular-season record
func (s *Season) TeamRecord(id int) (Record, error) {
	if _, ok := s.teams[id]; !ok {
		return Record{}, fmt.Errorf("%w: %d", ErrTeamNotFound, id)
	}
	return recordIn(s.weeks, id), nil
}

// RemainingGames counts the team's unplayed regular-season games
func (s *Season) RemainingGames(id int) int {
	n := 0
	for _, w := range s.weeks {
		if mi, ok := w.TeamMatchup(id); ok && !w.Matchups[mi].Complete() {
			n++
		}
	}
	return n
}

func recordIn(weeks []Week, id int) Record {
	var r Record
	for _, w := range weeks {
		if mi, ok := w.TeamMatchup(id); ok {
			if result, ok := w.Matchups[mi].Result(id); ok {
				r.Add(result)
			}
		}
	}
	return r
}

func (s *Season) clone() *Season {
	teams := make(map[int]FootballTeam, len(s.teams))
	for id, t := range s.teams {
		teams[id] = t.clone()
	}
	return &Season{
		year:        s.year,
		teams:       teams,
		conferences: cloneConferences(s.conferences),
		weeks:       cloneWeeks(s.weeks),
		playoffs:    s.playoffs.clone(),
	}
}

type seasonJSON struct {
	Year        int                  `json:"year"`
	Teams       map[int]FootballTeam `json:"teams"`
	Conferences []Conference         `json:"conferences"`
	Weeks       []Week               `json:"weeks"`
	Playoffs    Playoffs             `json:"playoffs"`
}

func (s *Season) MarshalJSON() ([]byte, error) {
	conferences := s.conferences
	if conferences == nil {
		conferences = []Conference{}
	}
	weeks := s.weeks
	if weeks == nil {
		weeks = []Week{}
	}
	return json.Marshal(seasonJSON{
		Year:        s.year,
		Teams:       s.teams,
		Conferences: conferences,
		Weeks:       weeks,
		Playoffs:    s.playoffs,
	})
}

// UnmarshalJSON decodes and validates a persisted season
func (s *Season) UnmarshalJSON(data []byte) error {
	var raw seasonJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := &Season{
		year:        raw.Year,
		teams:       raw.Teams,
		conferences: raw.Conferences,
		weeks:       raw.Weeks,
		playoffs:    raw.Playoffs,
	}
	if decoded.teams == nil {
		decoded.teams = make(map[int]FootballTeam)
	}
	decoded.playoffs.normalize()
	if err := decoded.validate(); err != nil {
		return fmt.Errorf("invalid season %d: %w", raw.Year, err)
	}
	*s = *decoded
	return nil
}

// validate checks every invariant of a season that did not come through the mutators
func (s *Season) validate() error {
	for _, id := range s.TeamIDs() {
		if err := s.teams[id].Validate(); err != nil {
			return fmt.Errorf("team %d: %w", id, err)
		}
	}

	if err := validateConferences(s.conferences); err != nil {
		return err
	}
	for _, c := range s.conferences {
		for _, id := range c.AllTeams() {
			if !s.HasTeam(id) {
				return fmt.Errorf("%w: conference %q references team %d", ErrTeamNotFound, c.Name, id)
			}
		}
	}

	if len(s.weeks) > 0 {
		lo, hi := WeekBounds(len(s.teams))
		if len(s.weeks) < lo || len(s.weeks) > hi {
			return fmt.Errorf("%w: %d weeks for %d teams, allowed [%d, %d]", ErrScheduleLengthOutOfBounds, len(s.weeks), len(s.teams), lo, hi)
		}
	}

	started := false
	for i, w := range s.weeks {
		if err := w.Validate(s.HasTeam); err != nil {
			return fmt.Errorf("week %d: %w", i, err)
		}
		if w.Started() {
			started = true
			if i > 0 && !s.weeks[i-1].Complete() {
				return fmt.Errorf("%w: week %d has results but week %d is incomplete", ErrWeekOutOfOrder, i, i-1)
			}
		}
	}
	if started && (len(s.teams) < 4 || len(s.teams)%2 != 0) {
		return fmt.Errorf("%w: %d teams in a started season", ErrInvalidTeamCount, len(s.teams))
	}

	if s.playoffs.generated() && !s.regularSeasonComplete() {
		return fmt.Errorf("%w: playoffs exist before the regular season is complete", ErrInvalidState)
	}
	return s.playoffs.validate(s.HasTeam)
}
