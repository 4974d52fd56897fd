package league

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// similarityThreshold is the minimum Levenshtein similarity for a typo match
const similarityThreshold = 0.6

// TeamMatch is a season team matched by a name query
type TeamMatch struct {
	TeamID    int     `json:"team_id"`
	Name      string  `json:"name"`
	ShortName string  `json:"short_name"`
	Score     float64 `json:"score"`
}

// FindTeams matches a query against team names and short names, best match first.
// Exact short names win, then substring-style matches, then close spellings.
func (s *Season) FindTeams(query string) []TeamMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	ids := s.TeamIDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = s.teams[id].Name
	}

	best := make(map[int]float64)
	consider := func(id int, score float64) {
		if score > best[id] {
			best[id] = score
		}
	}

	for i, id := range ids {
		if strings.EqualFold(s.teams[id].ShortName, query) {
			consider(id, 3)
		}
		if sim := similarity(query, names[i]); sim > similarityThreshold {
			consider(id, sim)
		}
	}
	for _, r := range fuzzy.RankFindNormalizedFold(query, names) {
		consider(ids[r.OriginalIndex], 1+similarity(query, r.Target))
	}

	out := make([]TeamMatch, 0, len(best))
	for id, score := range best {
		team := s.teams[id]
		out = append(out, TeamMatch{TeamID: id, Name: team.Name, ShortName: team.ShortName, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

// similarity is 1 - distance/longest length, in [0, 1]
func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(longest)
}
