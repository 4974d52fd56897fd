package league

import (
	"fmt"
	"math/rand"
	"sort"
)

// maxPlacementAttempts bounds the reshuffled retries of the week assignment pass
const maxPlacementAttempts = 32

// Pairing is a home/away assignment produced by the schedule generator
type Pairing struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// ScheduleOptions configures schedule generation. Zero Weeks derives the week count
// from the number of games; Seed drives every random choice so schedules are reproducible.
type ScheduleOptions struct {
	DivisionGames        int   `json:"division_games" mapstructure:"division_games"`
	ConferenceGames      int   `json:"conference_games" mapstructure:"conference_games"`
	CrossConferenceGames int   `json:"cross_conference_games" mapstructure:"cross_conference_games"`
	Weeks                int   `json:"weeks,omitempty" mapstructure:"weeks"`
	Seed                 int64 `json:"seed,omitempty" mapstructure:"seed"`
	Shift                int   `json:"shift,omitempty" mapstructure:"shift"`
	Permute              bool  `json:"permute,omitempty" mapstructure:"permute"`
}

// DefaultScheduleOptions plays division rivals twice and the rest of the conference once
func DefaultScheduleOptions() ScheduleOptions {
	return ScheduleOptions{
		DivisionGames:   2,
		ConferenceGames: 1,
	}
}

// Validate rejects negative counts
func (o ScheduleOptions) Validate() error {
	switch {
	case o.DivisionGames < 0:
		return fmt.Errorf("%w: division_games %d", ErrInvalidScheduleOptions, o.DivisionGames)
	case o.ConferenceGames < 0:
		return fmt.Errorf("%w: conference_games %d", ErrInvalidScheduleOptions, o.ConferenceGames)
	case o.CrossConferenceGames < 0:
		return fmt.Errorf("%w: cross_conference_games %d", ErrInvalidScheduleOptions, o.CrossConferenceGames)
	case o.Weeks < 0:
		return fmt.Errorf("%w: weeks %d", ErrInvalidScheduleOptions, o.Weeks)
	case o.Shift < 0:
		return fmt.Errorf("%w: shift %d", ErrInvalidScheduleOptions, o.Shift)
	}
	return nil
}

// WeekBounds returns the legal number of scheduled weeks for a team count
func WeekBounds(numTeams int) (lo, hi int) {
	return numTeams - 1, (numTeams - 1) * 3
}

// GenerateSchedule builds week-by-week pairings for the conference structure
func GenerateSchedule(conferences []Conference, opts ScheduleOptions) ([][]Pairing, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(conferences) == 0 {
		return nil, ErrNoConferenceStructure
	}
	if err := validateConferences(conferences); err != nil {
		return nil, err
	}

	numTeams := 0
	for _, c := range conferences {
		numTeams += c.NumTeams()
	}
	if numTeams < 4 || numTeams%2 != 0 {
		return nil, fmt.Errorf("%w: need an even number of at least 4 teams, got %d", ErrInvalidTeamCount, numTeams)
	}

	minWeeks, maxWeeks := WeekBounds(numTeams)
	if opts.Weeks != 0 && (opts.Weeks < minWeeks || opts.Weeks > maxWeeks) {
		return nil, fmt.Errorf("%w: %d weeks requested, allowed [%d, %d]", ErrScheduleLengthOutOfBounds, opts.Weeks, minWeeks, maxWeeks)
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	var pairings []Pairing
	pairings = append(pairings, divisionPairings(conferences, opts.DivisionGames, rng)...)
	pairings = append(pairings, conferencePairings(conferences, opts.ConferenceGames)...)
	cross, err := crossConferencePairings(conferences, opts.CrossConferenceGames, rng)
	if err != nil {
		return nil, err
	}
	pairings = append(pairings, cross...)
	if len(pairings) == 0 {
		return nil, fmt.Errorf("%w: options produce no games", ErrUnsatisfiableSchedule)
	}

	budget := maxWeeks
	if opts.Weeks > 0 {
		budget = opts.Weeks
	}

	weeks, ok := placePairings(pairings, budget)
	for attempt := 1; !ok && attempt < maxPlacementAttempts; attempt++ {
		order := append([]Pairing(nil), pairings...)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		weeks, ok = placePairings(order, budget)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d games do not fit in %d weeks after %d attempts", ErrUnsatisfiableSchedule, len(pairings), budget, maxPlacementAttempts)
	}

	target := minWeeks
	if opts.Weeks > 0 {
		target = opts.Weeks
	}
	weeks = spreadWeeks(weeks, target)
	if len(weeks) < target {
		return nil, fmt.Errorf("%w: only %d weeks of games, need %d", ErrScheduleLengthOutOfBounds, len(weeks), target)
	}

	if shift := opts.Shift % len(weeks); shift > 0 {
		rotated := make([][]Pairing, 0, len(weeks))
		rotated = append(rotated, weeks[len(weeks)-shift:]...)
		weeks = append(rotated, weeks[:len(weeks)-shift]...)
	}
	if opts.Permute {
		rng.Shuffle(len(weeks), func(i, j int) { weeks[i], weeks[j] = weeks[j], weeks[i] })
	}

	return weeks, nil
}

// roundRobinRounds pairs every team with every other once using the circle method.
// Odd groups get a bye slot that never produces a pairing.
func roundRobinRounds(teams []int) [][]Pairing {
	const bye = -1
	slots := make([]int, len(teams))
	for i := range teams {
		slots[i] = i
	}
	if len(slots)%2 == 1 {
		slots = append(slots, bye)
	}
	n := len(slots)
	if n < 2 {
		return nil
	}

	rounds := make([][]Pairing, 0, n-1)
	arrangement := make([]int, n)
	for round := 0; round < n-1; round++ {
		arrangement[0] = slots[0]
		for i := 0; i < n-1; i++ {
			arrangement[1+i] = slots[1+(i+(n-1)-round)%(n-1)]
		}

		var pairs []Pairing
		for k := 0; k < n/2; k++ {
			a, b := arrangement[k], arrangement[n-1-k]
			if a == bye || b == bye {
				continue
			}
			// the fixed slot alternates home and away
			if k == 0 && round%2 == 1 {
				a, b = b, a
			}
			pairs = append(pairs, Pairing{Home: teams[a], Away: teams[b]})
		}
		rounds = append(rounds, pairs)
	}
	return rounds
}

func divisionPairings(conferences []Conference, games int, rng *rand.Rand) []Pairing {
	var out []Pairing
	if games == 0 {
		return out
	}
	for _, c := range conferences {
		for _, d := range c.Divisions {
			if len(d.Teams) < 2 {
				continue
			}
			teams := append([]int(nil), d.Teams...)
			rng.Shuffle(len(teams), func(i, j int) { teams[i], teams[j] = teams[j], teams[i] })

			rounds := roundRobinRounds(teams)
			for cycle := 0; cycle < games; cycle++ {
				for _, round := range rounds {
					for _, p := range round {
						if cycle%2 == 1 {
							p.Home, p.Away = p.Away, p.Home
						}
						out = append(out, p)
					}
				}
			}
		}
	}
	return out
}

// conferencePairings pairs every team with every in-conference team outside its division.
// Pairs are ordered by rotation offset so each offset forms a matching between two divisions.
func conferencePairings(conferences []Conference, games int) []Pairing {
	var out []Pairing
	if games == 0 {
		return out
	}
	for _, c := range conferences {
		for i := 0; i < len(c.Divisions); i++ {
			for j := i + 1; j < len(c.Divisions); j++ {
				a, b := c.Divisions[i].Teams, c.Divisions[j].Teams
				if len(a) == 0 || len(b) == 0 {
					continue
				}

				type slot struct{ ai, bi, offset int }
				slots := make([]slot, 0, len(a)*len(b))
				for ai := range a {
					for bi := range b {
						offset := ((bi-ai)%len(b) + len(b)) % len(b)
						slots = append(slots, slot{ai, bi, offset})
					}
				}
				sort.SliceStable(slots, func(x, y int) bool {
					if slots[x].offset != slots[y].offset {
						return slots[x].offset < slots[y].offset
					}
					return slots[x].ai < slots[y].ai
				})

				for cycle := 0; cycle < games; cycle++ {
					for _, s := range slots {
						p := Pairing{Home: a[s.ai], Away: b[s.bi]}
						if (s.ai+s.bi+cycle)%2 == 1 {
							p.Home, p.Away = p.Away, p.Home
						}
						out = append(out, p)
					}
				}
			}
		}
	}
	return out
}

// crossConferencePairings gives each team exactly total games against other conferences.
// Every candidate pair is used at most once per pass so opponents repeat only when needed.
// Conference sizes that cannot balance the count fail with ErrUnsatisfiableSchedule.
func crossConferencePairings(conferences []Conference, total int, rng *rand.Rand) ([]Pairing, error) {
	var out []Pairing
	if len(conferences) < 2 || total == 0 {
		return out, nil
	}

	conferenceOf := make(map[int]int)
	var teams []int
	var candidates []Pairing
	for i := range conferences {
		for _, t := range conferences[i].AllTeams() {
			conferenceOf[t] = i
			teams = append(teams, t)
		}
		for j := i + 1; j < len(conferences); j++ {
			for _, t1 := range conferences[i].AllTeams() {
				for _, t2 := range conferences[j].AllTeams() {
					candidates = append(candidates, Pairing{Home: t1, Away: t2})
				}
			}
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	count := make(map[int]int)
	orient := func(p Pairing) Pairing {
		if rng.Intn(2) == 1 {
			p.Home, p.Away = p.Away, p.Home
		}
		return p
	}
	for {
		progress := false
		for _, c := range candidates {
			if count[c.Home] >= total || count[c.Away] >= total {
				continue
			}
			out = append(out, orient(c))
			count[c.Home]++
			count[c.Away]++
			progress = true
		}
		if !progress {
			break
		}
	}

	// Teams left short all share a conference. Each repair splits a chosen pair (a, b)
	// into u1-a and u2-b, which keeps a and b at their count.
	for {
		var short []int
		for _, t := range teams {
			for n := count[t]; n < total; n++ {
				short = append(short, t)
			}
		}
		if len(short) == 0 {
			return out, nil
		}
		if len(short) < 2 {
			return nil, fmt.Errorf("%w: team %d is short of %d cross-conference games", ErrUnsatisfiableSchedule, short[0], total)
		}
		u1, u2 := short[0], short[1]
		repaired := false
		for k, p := range out {
			a, b := p.Home, p.Away
			if conferenceOf[u1] == conferenceOf[a] || conferenceOf[u2] == conferenceOf[b] {
				a, b = b, a
			}
			if conferenceOf[u1] == conferenceOf[a] || conferenceOf[u2] == conferenceOf[b] {
				continue
			}
			out[k] = orient(Pairing{Home: u1, Away: a})
			out = append(out, orient(Pairing{Home: u2, Away: b}))
			count[u1]++
			count[u2]++
			repaired = true
			break
		}
		if !repaired {
			return nil, fmt.Errorf("%w: cannot give every team %d cross-conference games", ErrUnsatisfiableSchedule, total)
		}
	}
}

// placePairings puts each pairing into the earliest week where neither team plays
func placePairings(pairings []Pairing, budget int) ([][]Pairing, bool) {
	weeks := make([][]Pairing, 0, budget)
	busy := make([]map[int]bool, 0, budget)

	for _, p := range pairings {
		placed := false
		for w := 0; w < budget; w++ {
			if w == len(weeks) {
				weeks = append(weeks, nil)
				busy = append(busy, make(map[int]bool))
			}
			if busy[w][p.Home] || busy[w][p.Away] {
				continue
			}
			weeks[w] = append(weeks[w], p)
			busy[w][p.Home] = true
			busy[w][p.Away] = true
			placed = true
			break
		}
		if !placed {
			return nil, false
		}
	}
	return weeks, true
}

// spreadWeeks splits the fullest week in two until the schedule reaches target weeks
func spreadWeeks(weeks [][]Pairing, target int) [][]Pairing {
	for len(weeks) < target {
		fullest := -1
		for i, w := range weeks {
			if len(w) >= 2 && (fullest == -1 || len(w) > len(weeks[fullest])) {
				fullest = i
			}
		}
		if fullest == -1 {
			break
		}

		w := weeks[fullest]
		half := len(w) / 2
		first := append([]Pairing(nil), w[:half]...)
		second := append([]Pairing(nil), w[half:]...)

		next := make([][]Pairing, 0, len(weeks)+1)
		next = append(next, weeks[:fullest]...)
		next = append(next, first, second)
		next = append(next, weeks[fullest+1:]...)
		weeks = next
	}
	return weeks
}
