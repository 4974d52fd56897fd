package league

import (
	"fmt"
	"sort"
)

// PlayoffStatusKind classifies a team's postseason qualification
type PlayoffStatusKind string

const (
	StatusClinchedTopSeed   PlayoffStatusKind = "clinched_top_seed"
	StatusClinchedPlayoffs  PlayoffStatusKind = "clinched_playoffs"
	StatusInPlayoffPosition PlayoffStatusKind = "in_playoff_position"
	StatusInTheHunt         PlayoffStatusKind = "in_the_hunt"
	StatusEliminated        PlayoffStatusKind = "eliminated"
)

// PlayoffStatus is a qualification status. CurrentSeed is set for ClinchedPlayoffs and InPlayoffPosition.
type PlayoffStatus struct {
	Kind        PlayoffStatusKind `json:"kind"`
	CurrentSeed int               `json:"current_seed,omitempty"`
}

// Clinched reports whether the team is guaranteed a playoff spot
func (p PlayoffStatus) Clinched() bool {
	return p.Kind == StatusClinchedTopSeed || p.Kind == StatusClinchedPlayoffs
}

func (p PlayoffStatus) String() string {
	if p.CurrentSeed > 0 {
		return fmt.Sprintf("%s (seed %d)", p.Kind, p.CurrentSeed)
	}
	return string(p.Kind)
}

// PlayoffPictureOptions configures the qualification analysis.
// NumPlayoffTeams counts per conference when PerConference is set.
type PlayoffPictureOptions struct {
	NumPlayoffTeams           int              `json:"num_playoff_teams"`
	PerConference             bool             `json:"per_conference"`
	DivisionWinnersGuaranteed bool             `json:"division_winners_guaranteed"`
	TiebreakOrder             []TiebreakerType `json:"tiebreak_order,omitempty"`
}

// PlayoffPictureEntry is one team's qualification status
type PlayoffPictureEntry struct {
	TeamID         int           `json:"team_id"`
	TeamName       string        `json:"team_name"`
	Conference     int           `json:"conference"`
	Record         Record        `json:"record"`
	Status         PlayoffStatus `json:"status"`
	GamesBack      float64       `json:"games_back"`
	RemainingGames int           `json:"remaining_games"`
	MagicNumber    *int          `json:"magic_number,omitempty"`
}

// PlayoffPicture lists entries in qualification order, scope by scope
type PlayoffPicture struct {
	NumPlayoffTeams int                   `json:"num_playoff_teams"`
	PerConference   bool                  `json:"per_conference"`
	Entries         []PlayoffPictureEntry `json:"entries"`
}

// Entry returns the entry for a team
func (p PlayoffPicture) Entry(teamID int) (PlayoffPictureEntry, bool) {
	for _, e := range p.Entries {
		if e.TeamID == teamID {
			return e, true
		}
	}
	return PlayoffPictureEntry{}, false
}

// PlayoffPicture computes every team's qualification status from the standings and the
// unplayed schedule. Bounds assume a team loses or wins all of its remaining games.
func (s *Season) PlayoffPicture(opts PlayoffPictureOptions) (PlayoffPicture, error) {
	if len(s.weeks) == 0 {
		return PlayoffPicture{}, fmt.Errorf("%w: no schedule (state %s)", ErrInvalidState, s.State())
	}
	if opts.NumPlayoffTeams < 1 {
		return PlayoffPicture{}, fmt.Errorf("%w: num_playoff_teams %d", ErrInvalidPlayoffOptions, opts.NumPlayoffTeams)
	}

	picture := PlayoffPicture{NumPlayoffTeams: opts.NumPlayoffTeams, PerConference: opts.PerConference}
	for _, scope := range s.scopes(opts.PerConference) {
		order, winners, err := s.qualificationOrder(scope, opts.DivisionWinnersGuaranteed, opts.TiebreakOrder)
		if err != nil {
			return PlayoffPicture{}, err
		}
		if opts.NumPlayoffTeams > len(order) {
			return PlayoffPicture{}, fmt.Errorf("%w: %d playoff teams but only %d teams compete", ErrInvalidPlayoffOptions, opts.NumPlayoffTeams, len(order))
		}
		picture.Entries = append(picture.Entries, s.scopePicture(order, winners, opts)...)
	}
	return picture, nil
}

// scopes returns the conference filters to evaluate, nil meaning league-wide
func (s *Season) scopes(perConference bool) []*int {
	if !perConference || len(s.conferences) < 2 {
		return []*int{nil}
	}
	out := make([]*int, len(s.conferences))
	for i := range s.conferences {
		i := i
		out[i] = &i
	}
	return out
}

// qualificationOrder ranks a scope for seeding: division winners first when guaranteed,
// then everyone else by standing
func (s *Season) qualificationOrder(conference *int, divisionWinners bool, tiebreak []TiebreakerType) ([]Standing, map[int]bool, error) {
	ranked, err := s.Standings(StandingsOptions{Conference: conference, TiebreakOrder: tiebreak})
	if err != nil {
		return nil, nil, err
	}
	winners := make(map[int]bool)
	if !divisionWinners {
		return ranked, winners, nil
	}

	for ci, c := range s.conferences {
		if conference != nil && ci != *conference {
			continue
		}
		for di := range c.Divisions {
			ci, di := ci, di
			rows, err := s.Standings(StandingsOptions{Conference: &ci, Division: &di, TiebreakOrder: tiebreak})
			if err != nil {
				return nil, nil, err
			}
			if len(rows) > 0 {
				winners[rows[0].TeamID] = true
			}
		}
	}

	order := make([]Standing, 0, len(ranked))
	for _, st := range ranked {
		if winners[st.TeamID] {
			order = append(order, st)
		}
	}
	for _, st := range ranked {
		if !winners[st.TeamID] {
			order = append(order, st)
		}
	}
	return order, winners, nil
}

// teamBounds is a team's best and worst case over its remaining games
type teamBounds struct {
	standing  Standing
	remaining int
}

func (b teamBounds) wins() int    { return b.standing.Record.Wins }
func (b teamBounds) maxWins() int { return b.standing.Record.Wins + b.remaining }

// pct bounds as exact fractions over the full schedule, (2w+t) / 2g
func (b teamBounds) minPct() (int64, int64) {
	r := b.standing.Record
	return int64(2*r.Wins + r.Ties), int64(2 * (r.Games() + b.remaining))
}

func (b teamBounds) maxPct() (int64, int64) {
	r := b.standing.Record
	return int64(2*(r.Wins+b.remaining) + r.Ties), int64(2 * (r.Games() + b.remaining))
}

func compareFraction(an, ad, bn, bd int64) int {
	if ad == 0 {
		an, ad = 0, 1
	}
	if bd == 0 {
		bn, bd = 0, 1
	}
	return compareInt64(an*bd, bn*ad)
}

func compareInt64(a, b int64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

// couldFinishAhead reports whether o can end the season ranked at or above t.
// Equal percentages count as a possible pass because tiebreakers can still move.
func couldFinishAhead(o, t teamBounds) bool {
	on, od := o.maxPct()
	tn, td := t.minPct()
	return compareFraction(on, od, tn, td) >= 0
}

// definitelyAhead reports whether o ends the season with a better percentage than t whatever happens
func definitelyAhead(o, t teamBounds) bool {
	on, od := o.minPct()
	tn, td := t.maxPct()
	return compareFraction(on, od, tn, td) > 0
}

func (s *Season) scopePicture(order []Standing, winners map[int]bool, opts PlayoffPictureOptions) []PlayoffPictureEntry {
	num := opts.NumPlayoffTeams
	bounds := make([]teamBounds, len(order))
	finished := true
	divisions := make(map[slot]bool)
	for i, st := range order {
		bounds[i] = teamBounds{standing: st, remaining: s.RemainingGames(st.TeamID)}
		if bounds[i].remaining > 0 {
			finished = false
		}
		divisions[slot{conference: st.Conference, division: st.Division}] = true
	}

	// other divisions' winners can each take a spot ahead of a wild card
	reserved := 0
	if opts.DivisionWinnersGuaranteed {
		reserved = len(divisions) - 1
	}

	cutoff := bounds[num-1]
	entries := make([]PlayoffPictureEntry, 0, len(order))
	for i, t := range bounds {
		entry := PlayoffPictureEntry{
			TeamID:         t.standing.TeamID,
			TeamName:       t.standing.Name,
			Conference:     t.standing.Conference,
			Record:         t.standing.Record,
			RemainingGames: t.remaining,
		}

		ahead, could := 0, 0
		divisionAlive, divisionClinched := true, winners[t.standing.TeamID]
		for j, o := range bounds {
			if j == i {
				continue
			}
			a, c := definitelyAhead(o, t), couldFinishAhead(o, t)
			if a {
				ahead++
			}
			if c {
				could++
			}
			if o.standing.Conference == t.standing.Conference && o.standing.Division == t.standing.Division {
				if a {
					divisionAlive = false
				}
				if c {
					divisionClinched = false
				}
			}
		}
		guaranteed := opts.DivisionWinnersGuaranteed && len(divisions) <= num

		switch {
		case finished && i < num && i == 0:
			entry.Status = PlayoffStatus{Kind: StatusClinchedTopSeed}
		case finished && i < num:
			entry.Status = PlayoffStatus{Kind: StatusClinchedPlayoffs, CurrentSeed: i + 1}
		case finished:
			entry.Status = PlayoffStatus{Kind: StatusEliminated}
		case ahead >= num && !(opts.DivisionWinnersGuaranteed && divisionAlive):
			entry.Status = PlayoffStatus{Kind: StatusEliminated}
		case i == 0 && could == 0:
			entry.Status = PlayoffStatus{Kind: StatusClinchedTopSeed}
		case num >= len(bounds):
			entry.Status = PlayoffStatus{Kind: StatusClinchedPlayoffs, CurrentSeed: i + 1}
		case could+reserved < num || (guaranteed && divisionClinched):
			entry.Status = PlayoffStatus{Kind: StatusClinchedPlayoffs, CurrentSeed: i + 1}
		case i < num:
			entry.Status = PlayoffStatus{Kind: StatusInPlayoffPosition, CurrentSeed: i + 1}
		default:
			entry.Status = PlayoffStatus{Kind: StatusInTheHunt}
		}

		if i >= num {
			c := cutoff.standing.Record
			r := t.standing.Record
			if gb := float64((c.Wins-r.Wins)+(r.Losses-c.Losses)) / 2; gb > 0 {
				entry.GamesBack = gb
			}
		}

		if entry.Status.Kind == StatusInPlayoffPosition || entry.Status.Kind == StatusInTheHunt {
			blocker := cutoff
			if i < num {
				blocker = strongestChallenger(bounds[num:])
			}
			magic := blocker.maxWins() - t.wins() + 1
			if magic < 0 {
				magic = 0
			}
			// zero with the status still open means ties on percentage can decide it
			entry.MagicNumber = &magic
		}

		entries = append(entries, entry)
	}
	return entries
}

// strongestChallenger is the team outside the cutoff with the most attainable wins,
// the highest ranked one on equal totals
func strongestChallenger(outside []teamBounds) teamBounds {
	best := outside[0]
	for _, b := range outside[1:] {
		if b.maxWins() > best.maxWins() {
			best = b
		}
	}
	return best
}

// ClinchedTeams returns the IDs of teams that have clinched, in qualification order
func (p PlayoffPicture) ClinchedTeams() []int {
	var out []int
	for _, e := range p.Entries {
		if e.Status.Clinched() {
			out = append(out, e.TeamID)
		}
	}
	return out
}

// EliminatedTeams returns the IDs of eliminated teams in ascending order
func (p PlayoffPicture) EliminatedTeams() []int {
	var out []int
	for _, e := range p.Entries {
		if e.Status.Kind == StatusEliminated {
			out = append(out, e.TeamID)
		}
	}
	sort.Ints(out)
	return out
}
