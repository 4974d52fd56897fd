package league

import (
	"fmt"
	"sort"
)

// TiebreakerType names one level of the standings tiebreak order
type TiebreakerType string

const (
	TiebreakerHeadToHead        TiebreakerType = "head_to_head"
	TiebreakerDivisionRecord    TiebreakerType = "division_record"
	TiebreakerConferenceRecord  TiebreakerType = "conference_record"
	TiebreakerPointDifferential TiebreakerType = "point_differential"
)

// DefaultTiebreakOrder is applied when no order is configured
var DefaultTiebreakOrder = []TiebreakerType{
	TiebreakerHeadToHead,
	TiebreakerDivisionRecord,
	TiebreakerConferenceRecord,
	TiebreakerPointDifferential,
}

// ParseTiebreakOrder converts configured names, rejecting unknown and repeated entries
func ParseTiebreakOrder(names []string) ([]TiebreakerType, error) {
	order := make([]TiebreakerType, 0, len(names))
	seen := make(map[TiebreakerType]bool)
	for _, name := range names {
		t := TiebreakerType(name)
		switch t {
		case TiebreakerHeadToHead, TiebreakerDivisionRecord, TiebreakerConferenceRecord, TiebreakerPointDifferential:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownTiebreaker, name)
		}
		if seen[t] {
			return nil, fmt.Errorf("%w: %q listed twice", ErrUnknownTiebreaker, name)
		}
		seen[t] = true
		order = append(order, t)
	}
	return order, nil
}

// Standing is a team's row in the standings
type Standing struct {
	TeamID           int     `json:"team_id"`
	Name             string  `json:"name"`
	ShortName        string  `json:"short_name"`
	Conference       int     `json:"conference"`
	Division         int     `json:"division"`
	Record           Record  `json:"record"`
	DivisionRecord   Record  `json:"division_record"`
	ConferenceRecord Record  `json:"conference_record"`
	PointsFor        int     `json:"points_for"`
	PointsAgainst    int     `json:"points_against"`
	WinPct           float64 `json:"win_pct"`
	Rank             int     `json:"rank"`
}

// PointDifferential is points scored minus points allowed
func (s Standing) PointDifferential() int {
	return s.PointsFor - s.PointsAgainst
}

// StandingsOptions filters and orders standings. Division requires Conference.
type StandingsOptions struct {
	Conference    *int
	Division      *int
	TiebreakOrder []TiebreakerType
}

// ConferenceStandings is the ranked table of one conference
type ConferenceStandings struct {
	Conference int        `json:"conference"`
	Name       string     `json:"name"`
	Standings  []Standing `json:"standings"`
}

// DivisionStandings is the ranked table of one division
type DivisionStandings struct {
	Conference     int        `json:"conference"`
	Division       int        `json:"division"`
	ConferenceName string     `json:"conference_name"`
	Name           string     `json:"name"`
	Standings      []Standing `json:"standings"`
}

// headToHead holds each team's record against each opponent
type headToHead map[int]map[int]Record

func (h headToHead) add(team, opponent int, r Result) {
	if h[team] == nil {
		h[team] = make(map[int]Record)
	}
	rec := h[team][opponent]
	rec.Add(r)
	h[team][opponent] = rec
}

// Standings ranks the season's teams from completed regular-season games
func (s *Season) Standings(opts StandingsOptions) ([]Standing, error) {
	if opts.Division != nil && opts.Conference == nil {
		return nil, fmt.Errorf("%w: a division filter needs a conference", ErrConferenceNotFound)
	}
	if opts.Conference != nil {
		c := *opts.Conference
		if c < 0 || c >= len(s.conferences) {
			return nil, fmt.Errorf("%w: %d", ErrConferenceNotFound, c)
		}
		if opts.Division != nil {
			if d := *opts.Division; d < 0 || d >= len(s.conferences[c].Divisions) {
				return nil, fmt.Errorf("%w: %d in conference %d", ErrDivisionNotFound, d, c)
			}
		}
	}

	order := opts.TiebreakOrder
	if len(order) == 0 {
		order = DefaultTiebreakOrder
	}

	all, h2h := s.tally()
	filtered := make([]Standing, 0, len(all))
	for _, st := range all {
		if opts.Conference != nil && st.Conference != *opts.Conference {
			continue
		}
		if opts.Division != nil && st.Division != *opts.Division {
			continue
		}
		filtered = append(filtered, st)
	}

	ranked := rankStandings(filtered, order, h2h)
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// StandingsByConference ranks every conference separately
func (s *Season) StandingsByConference(order []TiebreakerType) ([]ConferenceStandings, error) {
	out := make([]ConferenceStandings, 0, len(s.conferences))
	for ci, c := range s.conferences {
		ci := ci
		rows, err := s.Standings(StandingsOptions{Conference: &ci, TiebreakOrder: order})
		if err != nil {
			return nil, err
		}
		out = append(out, ConferenceStandings{Conference: ci, Name: c.Name, Standings: rows})
	}
	return out, nil
}

// StandingsByDivision ranks every division separately
func (s *Season) StandingsByDivision(order []TiebreakerType) ([]DivisionStandings, error) {
	var out []DivisionStandings
	for ci, c := range s.conferences {
		for di, d := range c.Divisions {
			ci, di := ci, di
			rows, err := s.Standings(StandingsOptions{Conference: &ci, Division: &di, TiebreakOrder: order})
			if err != nil {
				return nil, err
			}
			out = append(out, DivisionStandings{
				Conference:     ci,
				Division:       di,
				ConferenceName: c.Name,
				Name:           d.Name,
				Standings:      rows,
			})
		}
	}
	return out, nil
}

// tally builds an unranked standing per team plus head-to-head records
func (s *Season) tally() ([]Standing, headToHead) {
	slots := s.slots()
	rows := make(map[int]*Standing, len(s.teams))
	out := make([]Standing, 0, len(s.teams))
	for _, id := range s.TeamIDs() {
		team := s.teams[id]
		st := Standing{TeamID: id, Name: team.Name, ShortName: team.ShortName, Conference: -1, Division: -1}
		if sl, ok := slots[id]; ok {
			st.Conference = sl.conference
			st.Division = sl.division
		}
		out = append(out, st)
	}
	for i := range out {
		rows[out[i].TeamID] = &out[i]
	}

	h2h := make(headToHead)
	for _, w := range s.weeks {
		for _, m := range w.Matchups {
			if !m.Complete() {
				continue
			}
			home, hok := slots[m.HomeTeam]
			away, aok := slots[m.AwayTeam]
			sameConference := hok && aok && home.conference == away.conference
			sameDivision := sameConference && home.division == away.division

			for _, id := range []int{m.HomeTeam, m.AwayTeam} {
				row, ok := rows[id]
				if !ok {
					continue
				}
				result, _ := m.Result(id)
				opponent, _ := m.Opponent(id)
				scored, allowed := m.Points(id)

				row.Record.Add(result)
				if sameDivision {
					row.DivisionRecord.Add(result)
				}
				if sameConference {
					row.ConferenceRecord.Add(result)
				}
				row.PointsFor += scored
				row.PointsAgainst += allowed
				h2h.add(id, opponent, result)
			}
		}
	}

	for i := range out {
		out[i].WinPct = out[i].Record.WinPct()
	}
	return out, h2h
}

// rankStandings orders rows by win percentage, then the tiebreak order, then team ID
func rankStandings(rows []Standing, order []TiebreakerType, h2h headToHead) []Standing {
	sorted := append([]Standing(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TeamID < sorted[j].TeamID })

	groups := groupBy(sorted, func(a, b Standing) int { return comparePct(a.Record, b.Record) })
	result := make([]Standing, 0, len(rows))
	for _, g := range groups {
		result = append(result, sortStandingsRecursive(g, order, 0, h2h)...)
	}
	return result
}

// sortStandingsRecursive breaks ties within a group one tiebreaker at a time
func sortStandingsRecursive(group []Standing, order []TiebreakerType, level int, h2h headToHead) []Standing {
	if len(group) <= 1 {
		return group
	}
	if level >= len(order) {
		sorted := append([]Standing(nil), group...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TeamID < sorted[j].TeamID })
		return sorted
	}

	var cmp func(a, b Standing) int
	switch order[level] {
	case TiebreakerHeadToHead:
		if !hasCompleteHeadToHeadData(group, h2h) {
			return sortStandingsRecursive(group, order, level+1, h2h)
		}
		mini := miniLeague(group, h2h)
		cmp = func(a, b Standing) int { return comparePct(mini[a.TeamID], mini[b.TeamID]) }
	case TiebreakerDivisionRecord:
		cmp = func(a, b Standing) int { return comparePct(a.DivisionRecord, b.DivisionRecord) }
	case TiebreakerConferenceRecord:
		cmp = func(a, b Standing) int { return comparePct(a.ConferenceRecord, b.ConferenceRecord) }
	case TiebreakerPointDifferential:
		cmp = func(a, b Standing) int { return compareInt(a.PointDifferential(), b.PointDifferential()) }
	default:
		return sortStandingsRecursive(group, order, level+1, h2h)
	}

	groups := groupBy(group, cmp)
	if len(groups) == 1 {
		return sortStandingsRecursive(group, order, level+1, h2h)
	}

	var result []Standing
	for _, g := range groups {
		result = append(result, sortStandingsRecursive(g, order, level+1, h2h)...)
	}
	return result
}

// groupBy sorts rows best first by cmp and splits them where cmp differs
func groupBy(rows []Standing, cmp func(a, b Standing) int) [][]Standing {
	sorted := append([]Standing(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return cmp(sorted[i], sorted[j]) > 0 })

	var groups [][]Standing
	for i, row := range sorted {
		if i == 0 || cmp(sorted[i-1], row) != 0 {
			groups = append(groups, []Standing{row})
			continue
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], row)
	}
	return groups
}

// hasCompleteHeadToHeadData reports whether every pair in the group has met
func hasCompleteHeadToHeadData(group []Standing, h2h headToHead) bool {
	for i := range group {
		for j := i + 1; j < len(group); j++ {
			if h2h[group[i].TeamID][group[j].TeamID].Games() == 0 {
				return false
			}
		}
	}
	return true
}

// miniLeague sums each team's record against the rest of the group
func miniLeague(group []Standing, h2h headToHead) map[int]Record {
	out := make(map[int]Record, len(group))
	for _, a := range group {
		var r Record
		for _, b := range group {
			if a.TeamID != b.TeamID {
				r.Merge(h2h[a.TeamID][b.TeamID])
			}
		}
		out[a.TeamID] = r
	}
	return out
}

func compareInt(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}
