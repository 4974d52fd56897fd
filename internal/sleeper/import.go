package sleeper

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
)

// Ratings assigned to imported teams span this range, best scorer on top
const (
	minImportRating = 40
	maxImportRating = 90
)

// ImportedTeam is a Sleeper roster converted into a simulator team
type ImportedTeam struct {
	RosterID int                 `json:"roster_id"`
	Owner    string              `json:"owner"`
	Division int                 `json:"division"`
	Team     league.FootballTeam `json:"team"`
}

// Import is a Sleeper league converted into simulator teams and divisions
type Import struct {
	LeagueID     string         `json:"league_id"`
	Name         string         `json:"name"`
	Season       string         `json:"season"`
	PlayoffTeams int            `json:"playoff_teams"`
	Divisions    []string       `json:"divisions"`
	Teams        []ImportedTeam `json:"teams"`
}

// BuildImport turns rosters into teams. Names come from the owner's team name, offense
// ratings from points scored and defense ratings from points allowed.
func BuildImport(l *League, users []User, rosters []Roster) (*Import, error) {
	if l == nil {
		return nil, fmt.Errorf("no league to import")
	}
	if len(rosters) == 0 {
		return nil, fmt.Errorf("league %s has no rosters", l.LeagueID)
	}

	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.UserID] = u
	}

	sorted := append([]Roster(nil), rosters...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RosterID < sorted[j].RosterID })

	imp := &Import{
		LeagueID:     l.LeagueID,
		Name:         l.Name,
		Season:       l.Season,
		PlayoffTeams: l.Settings.PlayoffTeams,
	}
	numDivisions := l.Settings.Divisions
	if numDivisions < 1 {
		numDivisions = 1
	}
	for d := 1; d <= numDivisions; d++ {
		imp.Divisions = append(imp.Divisions, l.DivisionName(d))
	}

	pointsFor := make([]float64, len(sorted))
	pointsAgainst := make([]float64, len(sorted))
	for i, r := range sorted {
		pointsFor[i] = r.Settings.PointsFor()
		pointsAgainst[i] = -r.Settings.PointsAgainst()
	}
	offense := scaleRatings(pointsFor)
	defense := scaleRatings(pointsAgainst)

	usedShort := make(map[string]bool)
	for i, r := range sorted {
		user := byID[r.OwnerID]
		name := teamName(user, r.RosterID)

		team := league.FootballTeam{
			Name:      name,
			ShortName: uniqueShortName(shortName(name, r.RosterID), usedShort),
			Offense:   league.Attributes{"overall": offense[i]},
			Defense:   league.Attributes{"overall": defense[i]},
		}
		if err := team.Validate(); err != nil {
			return nil, fmt.Errorf("roster %d: %w", r.RosterID, err)
		}

		division := 0
		if l.Settings.Divisions > 0 && r.Settings.Division >= 1 && r.Settings.Division <= numDivisions {
			division = r.Settings.Division - 1
		}
		imp.Teams = append(imp.Teams, ImportedTeam{
			RosterID: r.RosterID,
			Owner:    user.DisplayName,
			Division: division,
			Team:     team,
		})
	}
	return imp, nil
}

// scaleRatings maps values linearly onto the import rating range
func scaleRatings(values []float64) []int {
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]int, len(values))
	for i, v := range values {
		if hi == lo {
			out[i] = (minImportRating + maxImportRating) / 2
			continue
		}
		frac := (v - lo) / (hi - lo)
		out[i] = minImportRating + int(frac*float64(maxImportRating-minImportRating)+0.5)
	}
	return out
}

func teamName(u User, rosterID int) string {
	name := strings.TrimSpace(u.Metadata.TeamName)
	if name == "" {
		name = strings.TrimSpace(u.DisplayName)
	}
	if name == "" {
		name = strings.TrimSpace(u.Username)
	}
	if name == "" {
		name = "Team " + strconv.Itoa(rosterID)
	}
	if runes := []rune(name); len(runes) > league.MaxNameLength {
		name = strings.TrimSpace(string(runes[:league.MaxNameLength]))
	}
	return name
}

// shortName uses the initials of a multi-word name, otherwise its first letters
func shortName(name string, rosterID int) string {
	var words []string
	for _, w := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words = append(words, strings.ToUpper(w))
	}

	var short []rune
	if len(words) > 1 {
		for _, w := range words {
			short = append(short, []rune(w)[0])
		}
	} else if len(words) == 1 {
		short = []rune(words[0])
	}
	if len(short) > league.MaxShortNameLength {
		short = short[:league.MaxShortNameLength]
	}
	if len(short) == 0 {
		return "T" + strconv.Itoa(rosterID)
	}
	return string(short)
}

// uniqueShortName replaces the tail with a counter until the name is unused
func uniqueShortName(short string, used map[string]bool) string {
	candidate := short
	for n := 2; used[candidate]; n++ {
		suffix := strconv.Itoa(n)
		base := []rune(short)
		if keep := league.MaxShortNameLength - len(suffix); len(base) > keep {
			base = base[:keep]
		}
		candidate = string(base) + suffix
	}
	used[candidate] = true
	return candidate
}
