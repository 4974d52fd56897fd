package league

import "fmt"

// Week is an ordered list of matchups played in the same round
type Week struct {
	Matchups []Matchup `json:"matchups"`
}

// Started reports whether any matchup has been played
func (w Week) Started() bool {
	for _, m := range w.Matchups {
		if m.Complete() {
			return true
		}
	}
	return false
}

// Complete reports whether every matchup has been played. An empty week is never complete.
func (w Week) Complete() bool {
	if len(w.Matchups) == 0 {
		return false
	}
	for _, m := range w.Matchups {
		if !m.Complete() {
			return false
		}
	}
	return true
}

// TeamMatchup returns the index of the team's matchup in the week
func (w Week) TeamMatchup(teamID int) (int, bool) {
	for i, m := range w.Matchups {
		if m.Participated(teamID) {
			return i, true
		}
	}
	return 0, false
}

// Validate checks that no team plays itself or appears twice
func (w Week) Validate(known func(int) bool) error {
	seen := make(map[int]bool)
	for i, m := range w.Matchups {
		if m.HomeTeam == m.AwayTeam {
			return fmt.Errorf("%w: matchup %d has team %d on both sides", ErrSelfMatchup, i, m.HomeTeam)
		}
		for _, id := range []int{m.HomeTeam, m.AwayTeam} {
			if known != nil && !known(id) {
				return fmt.Errorf("%w: matchup %d references team %d", ErrTeamNotFound, i, id)
			}
			if seen[id] {
				return fmt.Errorf("%w: team %d", ErrDuplicateWeeklyAppearance, id)
			}
			seen[id] = true
		}
	}
	return nil
}

func (w Week) clone() Week {
	if w.Matchups == nil {
		return w
	}
	matchups := make([]Matchup, len(w.Matchups))
	for i, m := range w.Matchups {
		matchups[i] = m.clone()
	}
	return Week{Matchups: matchups}
}

func cloneWeeks(weeks []Week) []Week {
	if weeks == nil {
		return nil
	}
	out := make([]Week, len(weeks))
	for i, w := range weeks {
		out[i] = w.clone()
	}
	return out
}
