package league

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

const (
	MaxNameLength      = 64
	MaxShortNameLength = 4
	MinAttribute       = 0
	MaxAttribute       = 100
)

// Attributes is an opaque block of ratings owned by the match engine.
// The core only checks that every value lies in [MinAttribute, MaxAttribute].
type Attributes map[string]int

// Validate checks every rating in the block
func (a Attributes) Validate(block string) error {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if v := a[k]; v < MinAttribute || v > MaxAttribute {
			return fmt.Errorf("%w: %s.%s = %d not in [%d, %d]", ErrAttributeOutOfRange, block, k, v, MinAttribute, MaxAttribute)
		}
	}
	return nil
}

// Overall returns the "overall" rating of the block, or fallback when absent
func (a Attributes) Overall(fallback int) int {
	if v, ok := a["overall"]; ok {
		return v
	}
	return fallback
}

func (a Attributes) clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// LeagueTeam is the league-wide identity of a franchise
type LeagueTeam struct {
	ID int `json:"id"`
}

// FootballTeam is a season participant
type FootballTeam struct {
	Name      string     `json:"name"`
	ShortName string     `json:"short_name"`
	Coach     Attributes `json:"coach,omitempty"`
	Offense   Attributes `json:"offense,omitempty"`
	Defense   Attributes `json:"defense,omitempty"`
}

// NewFootballTeam builds a validated team with empty attribute blocks
func NewFootballTeam(name, shortName string) (FootballTeam, error) {
	team := FootballTeam{Name: name, ShortName: shortName}
	if err := team.Validate(); err != nil {
		return FootballTeam{}, err
	}
	return team, nil
}

// Validate checks name lengths and attribute ranges
func (t FootballTeam) Validate() error {
	if err := validateName("team", t.Name, MaxNameLength); err != nil {
		return err
	}
	if err := validateName("team short", t.ShortName, MaxShortNameLength); err != nil {
		return err
	}
	if err := t.Coach.Validate("coach"); err != nil {
		return err
	}
	if err := t.Offense.Validate("offense"); err != nil {
		return err
	}
	return t.Defense.Validate("defense")
}

func (t FootballTeam) clone() FootballTeam {
	t.Coach = t.Coach.clone()
	t.Offense = t.Offense.clone()
	t.Defense = t.Defense.clone()
	return t
}

func validateName(kind, name string, max int) error {
	if n := utf8.RuneCountInString(name); n > max {
		return fmt.Errorf("%w: %s name %q has %d characters, max %d", ErrNameTooLong, kind, name, n, max)
	}
	return nil
}
