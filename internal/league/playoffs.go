package league

import (
	"fmt"
	"sort"
)

// WinnersBracket addresses the bracket of conference champions in playoff matchup operations
const WinnersBracket = -1

// PlayoffTeam is a qualified team's seed within its conference
type PlayoffTeam struct {
	Seed      int    `json:"seed"`
	ShortName string `json:"short_name"`
}

// PlayoffTeams maps conference index to team ID to seeding
type PlayoffTeams map[int]map[int]PlayoffTeam

// Lookup finds a team's conference and seed
func (p PlayoffTeams) Lookup(teamID int) (int, PlayoffTeam, bool) {
	for conf, teams := range p {
		if t, ok := teams[teamID]; ok {
			return conf, t, true
		}
	}
	return 0, PlayoffTeam{}, false
}

// Conferences returns the conference keys in ascending order
func (p PlayoffTeams) Conferences() []int {
	keys := make([]int, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Len counts the qualified teams
func (p PlayoffTeams) Len() int {
	n := 0
	for _, teams := range p {
		n += len(teams)
	}
	return n
}

// Playoffs holds qualified teams and the rounds played so far
type Playoffs struct {
	Teams              PlayoffTeams   `json:"teams"`
	ConferenceBrackets map[int][]Week `json:"conference_brackets"`
	WinnersBracket     []Week         `json:"winners_bracket"`
}

func newPlayoffs() Playoffs {
	return Playoffs{
		Teams:              make(PlayoffTeams),
		ConferenceBrackets: make(map[int][]Week),
		WinnersBracket:     []Week{},
	}
}

func (p *Playoffs) normalize() {
	if p.Teams == nil {
		p.Teams = make(PlayoffTeams)
	}
	if p.ConferenceBrackets == nil {
		p.ConferenceBrackets = make(map[int][]Week)
	}
	if p.WinnersBracket == nil {
		p.WinnersBracket = []Week{}
	}
}

func (p Playoffs) clone() Playoffs {
	out := newPlayoffs()
	for conf, teams := range p.Teams {
		copied := make(map[int]PlayoffTeam, len(teams))
		for id, t := range teams {
			copied[id] = t
		}
		out.Teams[conf] = copied
	}
	for conf, rounds := range p.ConferenceBrackets {
		out.ConferenceBrackets[conf] = cloneWeeks(rounds)
	}
	out.WinnersBracket = cloneWeeks(p.WinnersBracket)
	if out.WinnersBracket == nil {
		out.WinnersBracket = []Week{}
	}
	return out
}

// addTeam seeds a team into a conference with the next free seed
func (p *Playoffs) addTeam(teamID int, shortName string, conference int) error {
	if conf, _, ok := p.Teams.Lookup(teamID); ok {
		return fmt.Errorf("%w: team %d already seeded in conference %d", ErrDuplicatePlayoffTeam, teamID, conf)
	}
	if err := validateName("playoff short", shortName, MaxShortNameLength); err != nil {
		return err
	}
	if p.Teams[conference] == nil {
		p.Teams[conference] = make(map[int]PlayoffTeam)
	}
	p.Teams[conference][teamID] = PlayoffTeam{Seed: len(p.Teams[conference]) + 1, ShortName: shortName}
	return nil
}

func (p Playoffs) generated() bool {
	return p.Teams.Len() > 0
}

func (p Playoffs) multiConference() bool {
	return len(p.Teams) > 1
}

func (p Playoffs) started() bool {
	for _, rounds := range p.ConferenceBrackets {
		for _, r := range rounds {
			if r.Started() {
				return true
			}
		}
	}
	for _, r := range p.WinnersBracket {
		if r.Started() {
			return true
		}
	}
	return false
}

// entrant is a seeded bracket participant
type entrant struct {
	teamID int
	seed   int
	short  string
}

// conferenceEntrants returns a conference's seeded teams, best seed first
func (p Playoffs) conferenceEntrants(conference int) []entrant {
	teams := p.Teams[conference]
	out := make([]entrant, 0, len(teams))
	for id, t := range teams {
		out = append(out, entrant{teamID: id, seed: t.Seed, short: t.ShortName})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seed < out[j].seed })
	return out
}

// conferenceChampion returns the winner of a finished conference bracket
func (p Playoffs) conferenceChampion(conference int) (int, bool) {
	return bracketChampion(p.conferenceEntrants(conference), p.ConferenceBrackets[conference])
}

// champions seeds the conference champions for the winners bracket. rank orders teams
// by regular-season standing; a nil rank falls back to conference order.
func (p Playoffs) champions(rank func(teamID int) int) ([]entrant, bool) {
	var out []entrant
	for _, conf := range p.Teams.Conferences() {
		id, ok := p.conferenceChampion(conf)
		if !ok {
			return nil, false
		}
		out = append(out, entrant{teamID: id, short: p.Teams[conf][id].ShortName, seed: len(out) + 1})
	}
	if rank != nil {
		sort.SliceStable(out, func(i, j int) bool { return rank(out[i].teamID) < rank(out[j].teamID) })
		for i := range out {
			out[i].seed = i + 1
		}
	}
	return out, true
}

func (p Playoffs) complete() bool {
	_, ok := p.champion(nil)
	return ok
}

func (p Playoffs) champion(rank func(int) int) (int, bool) {
	if !p.generated() {
		return 0, false
	}
	if !p.multiConference() {
		return p.conferenceChampion(p.Teams.Conferences()[0])
	}
	champs, ok := p.champions(rank)
	if !ok {
		return 0, false
	}
	return bracketChampion(champs, p.WinnersBracket)
}

// nextRounds computes the rounds AdvancePlayoffs would append without changing anything.
// The winners bracket opens only once every conference bracket has a champion.
func (p Playoffs) nextRounds(rank func(int) int) (map[int]Week, *Week, error) {
	pending := make(map[int]Week)
	allDone := true
	for _, conf := range p.Teams.Conferences() {
		entrants := p.conferenceEntrants(conf)
		rounds := p.ConferenceBrackets[conf]
		if _, done := bracketChampion(entrants, rounds); done {
			continue
		}
		allDone = false
		round, ok, err := advanceBracket(entrants, rounds)
		if err != nil {
			return nil, nil, fmt.Errorf("conference %d: %w", conf, err)
		}
		if ok {
			pending[conf] = round
		}
	}
	if !allDone {
		return pending, nil, nil
	}
	if !p.multiConference() {
		return nil, nil, ErrPlayoffsAlreadyComplete
	}

	champs, _ := p.champions(rank)
	round, ok, err := advanceBracket(champs, p.WinnersBracket)
	if err != nil {
		return nil, nil, fmt.Errorf("winners bracket: %w", err)
	}
	if !ok {
		return nil, nil, ErrPlayoffsAlreadyComplete
	}
	return nil, &round, nil
}

// firstRound pairs the opening round. A field that is not a power of two plays a wild-card
// round among the lowest seeds while the top seeds wait for the reseeded second round.
func firstRound(entrants []entrant) Week {
	n := len(entrants)
	full := 1
	for full*2 <= n {
		full *= 2
	}

	var matchups []Matchup
	if full == n {
		for i := 0; i < n/2; i++ {
			matchups = append(matchups, bracketMatchup(entrants[i], entrants[n-1-i]))
		}
		return Week{Matchups: matchups}
	}

	games := n - full
	byes := n - 2*games
	for i := 0; i < games; i++ {
		matchups = append(matchups, bracketMatchup(entrants[byes+i], entrants[n-1-i]))
	}
	return Week{Matchups: matchups}
}

// nextRound pairs the best surviving seed against the worst
func nextRound(alive []entrant) Week {
	matchups := make([]Matchup, 0, len(alive)/2)
	for i := 0; i < len(alive)/2; i++ {
		matchups = append(matchups, bracketMatchup(alive[i], alive[len(alive)-1-i]))
	}
	return Week{Matchups: matchups}
}

func bracketMatchup(home, away entrant) Matchup {
	m := newMatchup(home.teamID, away.teamID, home.short, away.short)
	m.Context.SuddenDeath = true
	return m
}

// survivors returns the entrants without a loss, best seed first
func survivors(entrants []entrant, rounds []Week) []entrant {
	lost := make(map[int]bool)
	for _, r := range rounds {
		for _, m := range r.Matchups {
			if loser, ok := m.Loser(); ok {
				lost[loser] = true
			}
		}
	}
	alive := make([]entrant, 0, len(entrants))
	for _, e := range entrants {
		if !lost[e.teamID] {
			alive = append(alive, e)
		}
	}
	sort.SliceStable(alive, func(i, j int) bool { return alive[i].seed < alive[j].seed })
	return alive
}

// advanceBracket returns the next round of a bracket, false once it has a champion
func advanceBracket(entrants []entrant, rounds []Week) (Week, bool, error) {
	if len(rounds) == 0 {
		if len(entrants) < 2 {
			return Week{}, false, nil
		}
		return firstRound(entrants), true, nil
	}
	if !rounds[len(rounds)-1].Complete() {
		return Week{}, false, fmt.Errorf("%w: round %d", ErrRoundIncomplete, len(rounds)-1)
	}
	alive := survivors(entrants, rounds)
	if len(alive) <= 1 {
		return Week{}, false, nil
	}
	return nextRound(alive), true, nil
}

func bracketChampion(entrants []entrant, rounds []Week) (int, bool) {
	if len(rounds) == 0 || !rounds[len(rounds)-1].Complete() {
		return 0, false
	}
	alive := survivors(entrants, rounds)
	if len(alive) != 1 {
		return 0, false
	}
	return alive[0].teamID, true
}

// validate checks seeding and that every bracket entry is a seeded team
func (p Playoffs) validate(known func(int) bool) error {
	seenTeam := make(map[int]int)
	for _, conf := range p.Teams.Conferences() {
		seeds := make(map[int]bool)
		for id, t := range p.Teams[conf] {
			if !known(id) {
				return fmt.Errorf("%w: playoff team %d", ErrTeamNotFound, id)
			}
			if other, ok := seenTeam[id]; ok {
				return fmt.Errorf("%w: team %d in conferences %d and %d", ErrDuplicatePlayoffTeam, id, other, conf)
			}
			seenTeam[id] = conf
			if t.Seed < 1 || t.Seed > len(p.Teams[conf]) || seeds[t.Seed] {
				return fmt.Errorf("%w: seed %d in conference %d", ErrDuplicatePlayoffTeam, t.Seed, conf)
			}
			seeds[t.Seed] = true
			if err := validateName("playoff short", t.ShortName, MaxShortNameLength); err != nil {
				return err
			}
		}
	}

	inConference := func(conf int) func(int) bool {
		return func(id int) bool {
			_, ok := p.Teams[conf][id]
			return ok
		}
	}
	for conf, rounds := range p.ConferenceBrackets {
		if _, ok := p.Teams[conf]; !ok && len(rounds) > 0 {
			return fmt.Errorf("%w: bracket for unseeded conference %d", ErrPlayoffTeamNotFound, conf)
		}
		if err := validateRounds(rounds, inConference(conf)); err != nil {
			return fmt.Errorf("conference %d bracket: %w", conf, err)
		}
	}
	if len(p.WinnersBracket) > 0 && !p.multiConference() {
		return fmt.Errorf("%w: winners bracket in single-conference playoffs", ErrInvalidState)
	}
	seeded := func(id int) bool {
		_, ok := seenTeam[id]
		return ok
	}
	if err := validateRounds(p.WinnersBracket, seeded); err != nil {
		return fmt.Errorf("winners bracket: %w", err)
	}
	return nil
}

func validateRounds(rounds []Week, seeded func(int) bool) error {
	for i, r := range rounds {
		for _, m := range r.Matchups {
			for _, id := range []int{m.HomeTeam, m.AwayTeam} {
				if !seeded(id) {
					return fmt.Errorf("%w: round %d references team %d", ErrPlayoffTeamNotFound, i, id)
				}
			}
		}
		if err := r.Validate(nil); err != nil {
			return fmt.Errorf("round %d: %w", i, err)
		}
		if i > 0 && r.Started() && !rounds[i-1].Complete() {
			return fmt.Errorf("%w: round %d has results before round %d finished", ErrRoundIncomplete, i, i-1)
		}
	}
	return nil
}

// PlayoffOptions configures playoff generation. NumTeams counts per conference when
// PerConference is set and the season has more than one conference.
type PlayoffOptions struct {
	NumTeams                  int              `json:"num_teams" mapstructure:"num_teams"`
	PerConference             bool             `json:"per_conference" mapstructure:"per_conference"`
	DivisionWinnersGuaranteed bool             `json:"division_winners_guaranteed" mapstructure:"division_winners_guaranteed"`
	TiebreakOrder             []TiebreakerType `json:"tiebreak_order,omitempty" mapstructure:"-"`
}

// GeneratePlayoffs seeds the qualified teams from the final standings and pairs the first round
func (s *Season) GeneratePlayoffs(opts PlayoffOptions) error {
	switch st := s.State(); st {
	case StateRegularSeasonComplete, StatePlayoffsGenerated:
	default:
		return fmt.Errorf("%w: cannot generate playoffs in state %s", ErrInvalidState, st)
	}
	if opts.NumTeams < 2 {
		return fmt.Errorf("%w: num_teams %d, need at least 2", ErrInvalidPlayoffOptions, opts.NumTeams)
	}

	pl := newPlayoffs()
	for key, scope := range s.scopes(opts.PerConference) {
		order, _, err := s.qualificationOrder(scope, opts.DivisionWinnersGuaranteed, opts.TiebreakOrder)
		if err != nil {
			return err
		}
		if opts.NumTeams > len(order) {
			return fmt.Errorf("%w: %d playoff teams but only %d teams compete", ErrInvalidPlayoffOptions, opts.NumTeams, len(order))
		}
		for _, st := range order[:opts.NumTeams] {
			if err := pl.addTeam(st.TeamID, st.ShortName, key); err != nil {
				return err
			}
		}
	}
	for _, conf := range pl.Teams.Conferences() {
		pl.ConferenceBrackets[conf] = []Week{firstRound(pl.conferenceEntrants(conf))}
	}

	s.playoffs = pl
	return nil
}

// rank orders teams by league-wide regular-season standing
func (s *Season) rank() func(int) int {
	rows, err := s.Standings(StandingsOptions{})
	if err != nil {
		return nil
	}
	positions := make(map[int]int, len(rows))
	for i, r := range rows {
		positions[r.TeamID] = i
	}
	return func(teamID int) int { return positions[teamID] }
}

// AdvancePlayoffs appends the next round to every bracket that can move forward
func (s *Season) AdvancePlayoffs() error {
	if !s.playoffs.generated() {
		return fmt.Errorf("%w: playoffs not generated (state %s)", ErrInvalidState, s.State())
	}
	if s.playoffs.complete() {
		return ErrPlayoffsAlreadyComplete
	}

	conferenceRounds, winnersRound, err := s.playoffs.nextRounds(s.rank())
	if err != nil {
		return err
	}
	if len(conferenceRounds) == 0 && winnersRound == nil {
		return fmt.Errorf("%w: no bracket can advance", ErrInvalidState)
	}
	for conf, round := range conferenceRounds {
		s.playoffs.ConferenceBrackets[conf] = append(s.playoffs.ConferenceBrackets[conf], round)
	}
	if winnersRound != nil {
		s.playoffs.WinnersBracket = append(s.playoffs.WinnersBracket, *winnersRound)
	}
	return nil
}

// currentRound returns the last round of a bracket
func (s *Season) currentRound(bracket int) (*Week, error) {
	var rounds []Week
	if bracket == WinnersBracket {
		rounds = s.playoffs.WinnersBracket
	} else {
		var ok bool
		if rounds, ok = s.playoffs.ConferenceBrackets[bracket]; !ok {
			return nil, fmt.Errorf("%w: bracket %d", ErrConferenceNotFound, bracket)
		}
	}
	if len(rounds) == 0 {
		return nil, fmt.Errorf("%w: bracket %d has no rounds", ErrWeekNotFound, bracket)
	}
	return &rounds[len(rounds)-1], nil
}

// SimulatePlayoffMatchup plays one game of a bracket's current round.
// bracket is a conference key or WinnersBracket.
func (s *Season) SimulatePlayoffMatchup(bracket, matchup int, sim MatchSimulator) error {
	if !s.playoffs.generated() {
		return fmt.Errorf("%w: playoffs not generated (state %s)", ErrInvalidState, s.State())
	}
	round, err := s.currentRound(bracket)
	if err != nil {
		return err
	}
	if matchup < 0 || matchup >= len(round.Matchups) {
		return fmt.Errorf("%w: matchup %d of bracket %d", ErrMatchupNotFound, matchup, bracket)
	}
	m := round.Matchups[matchup]
	if m.Complete() {
		return fmt.Errorf("%w: bracket %d matchup %d", ErrMatchupComplete, bracket, matchup)
	}
	if err := s.play(&m, sim); err != nil {
		return err
	}
	round.Matchups[matchup] = m
	return nil
}

// brackets lists the keys of brackets with rounds, conferences first
func (s *Season) brackets() []int {
	keys := make([]int, 0, len(s.playoffs.ConferenceBrackets)+1)
	for conf := range s.playoffs.ConferenceBrackets {
		keys = append(keys, conf)
	}
	sort.Ints(keys)
	if len(s.playoffs.WinnersBracket) > 0 {
		keys = append(keys, WinnersBracket)
	}
	return keys
}

// SimulateNextPlayoffMatchup plays the first unplayed game of the current rounds
func (s *Season) SimulateNextPlayoffMatchup(sim MatchSimulator) (bracket, matchup int, err error) {
	if !s.playoffs.generated() {
		return 0, 0, fmt.Errorf("%w: playoffs not generated (state %s)", ErrInvalidState, s.State())
	}
	for _, b := range s.brackets() {
		round, err := s.currentRound(b)
		if err != nil {
			return 0, 0, err
		}
		for i, m := range round.Matchups {
			if !m.Complete() {
				return b, i, s.SimulatePlayoffMatchup(b, i, sim)
			}
		}
	}
	if s.playoffs.complete() {
		return 0, 0, ErrPlayoffsAlreadyComplete
	}
	return 0, 0, fmt.Errorf("%w: current round is complete, advance the playoffs", ErrMatchupNotFound)
}

// SimulatePlayoffRound plays every unplayed game of the current rounds. Either all
// games are recorded or none.
func (s *Season) SimulatePlayoffRound(sim MatchSimulator) error {
	if !s.playoffs.generated() {
		return fmt.Errorf("%w: playoffs not generated (state %s)", ErrInvalidState, s.State())
	}
	if s.playoffs.complete() {
		return ErrPlayoffsAlreadyComplete
	}
	work := s.clone()
	played := 0
	for _, b := range work.brackets() {
		round, err := work.currentRound(b)
		if err != nil {
			return err
		}
		for i := range round.Matchups {
			m := &round.Matchups[i]
			if m.Complete() {
				continue
			}
			if err := work.play(m, sim); err != nil {
				return fmt.Errorf("bracket %d matchup %d: %w", b, i, err)
			}
			played++
		}
	}
	if played == 0 {
		return fmt.Errorf("%w: current round is complete, advance the playoffs", ErrMatchupComplete)
	}
	*s = *work
	return nil
}

// SimulatePlayoffs plays and advances rounds until a champion is crowned
func (s *Season) SimulatePlayoffs(sim MatchSimulator) error {
	if !s.playoffs.generated() {
		return fmt.Errorf("%w: playoffs not generated (state %s)", ErrInvalidState, s.State())
	}
	if s.playoffs.complete() {
		return ErrPlayoffsAlreadyComplete
	}
	work := s.clone()
	for !work.playoffs.complete() {
		if work.pendingPlayoffGames() {
			if err := work.SimulatePlayoffRound(sim); err != nil {
				return err
			}
			continue
		}
		if err := work.AdvancePlayoffs(); err != nil {
			return err
		}
	}
	*s = *work
	return nil
}

func (s *Season) pendingPlayoffGames() bool {
	for _, b := range s.brackets() {
		round, err := s.currentRound(b)
		if err != nil {
			continue
		}
		for _, m := range round.Matchups {
			if !m.Complete() {
				return true
			}
		}
	}
	return false
}

// Champion returns the season champion once the playoffs are complete
func (s *Season) Champion() (int, bool) {
	return s.playoffs.champion(s.rank())
}

// InPlayoffs reports whether the team qualified for the playoffs
func (s *Season) InPlayoffs(teamID int) bool {
	_, _, ok := s.playoffs.Teams.Lookup(teamID)
	return ok
}

// PlayoffRecord is the team's record across every playoff game
func (s *Season) PlayoffRecord(teamID int) Record {
	var r Record
	for _, rounds := range s.playoffs.ConferenceBrackets {
		r.Merge(recordIn(rounds, teamID))
	}
	r.Merge(recordIn(s.playoffs.WinnersBracket, teamID))
	return r
}
