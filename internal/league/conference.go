package league

import "fmt"

// Division is a named set of team IDs
type Division struct {
	Name  string `json:"name"`
	Teams []int  `json:"teams"`
}

// NewDivision builds a validated division
func NewDivision(name string, teams ...int) (Division, error) {
	d := Division{Name: name, Teams: append([]int(nil), teams...)}
	if err := d.Validate(); err != nil {
		return Division{}, err
	}
	return d, nil
}

// Validate checks the name length and that no team appears twice
func (d Division) Validate() error {
	if err := validateName("division", d.Name, MaxNameLength); err != nil {
		return err
	}
	seen := make(map[int]bool, len(d.Teams))
	for _, id := range d.Teams {
		if seen[id] {
			return fmt.Errorf("%w: team %d appears twice in division %q", ErrDuplicateTeamID, id, d.Name)
		}
		seen[id] = true
	}
	return nil
}

// Contains reports whether the team belongs to the division
func (d Division) Contains(teamID int) bool {
	for _, id := range d.Teams {
		if id == teamID {
			return true
		}
	}
	return false
}

func (d Division) clone() Division {
	d.Teams = append([]int(nil), d.Teams...)
	return d
}

// Conference is a named, ordered list of divisions
type Conference struct {
	Name      string     `json:"name"`
	Divisions []Division `json:"divisions"`
}

// NewConference builds a validated conference
func NewConference(name string, divisions ...Division) (Conference, error) {
	c := Conference{Name: name}
	for _, d := range divisions {
		c.Divisions = append(c.Divisions, d.clone())
	}
	if err := c.Validate(); err != nil {
		return Conference{}, err
	}
	return c, nil
}

// Validate checks names and that no team is in more than one division
func (c Conference) Validate() error {
	if err := validateName("conference", c.Name, MaxNameLength); err != nil {
		return err
	}
	seen := make(map[int]string)
	for _, d := range c.Divisions {
		if err := d.Validate(); err != nil {
			return err
		}
		for _, id := range d.Teams {
			if other, ok := seen[id]; ok {
				return fmt.Errorf("%w: team %d in divisions %q and %q of conference %q", ErrDuplicateTeamID, id, other, d.Name, c.Name)
			}
			seen[id] = d.Name
		}
	}
	return nil
}

// AllTeams returns every team ID in division order
func (c Conference) AllTeams() []int {
	var teams []int
	for _, d := range c.Divisions {
		teams = append(teams, d.Teams...)
	}
	return teams
}

// Contains reports whether the team belongs to any division of the conference
func (c Conference) Contains(teamID int) bool {
	_, ok := c.DivisionOf(teamID)
	return ok
}

// DivisionOf returns the index of the division holding the team
func (c Conference) DivisionOf(teamID int) (int, bool) {
	for i, d := range c.Divisions {
		if d.Contains(teamID) {
			return i, true
		}
	}
	return 0, false
}

// NumTeams counts the teams across all divisions
func (c Conference) NumTeams() int {
	n := 0
	for _, d := range c.Divisions {
		n += len(d.Teams)
	}
	return n
}

func (c Conference) clone() Conference {
	divisions := make([]Division, len(c.Divisions))
	for i, d := range c.Divisions {
		divisions[i] = d.clone()
	}
	c.Divisions = divisions
	return c
}

func cloneConferences(conferences []Conference) []Conference {
	if conferences == nil {
		return nil
	}
	out := make([]Conference, len(conferences))
	for i, c := range conferences {
		out[i] = c.clone()
	}
	return out
}

// validateConferences checks every conference and uniqueness across the whole structure
func validateConferences(conferences []Conference) error {
	seen := make(map[int]string)
	for _, c := range conferences {
		if err := c.Validate(); err != nil {
			return err
		}
		for _, id := range c.AllTeams() {
			if other, ok := seen[id]; ok {
				return fmt.Errorf("%w: team %d in conferences %q and %q", ErrDuplicateTeamID, id, other, c.Name)
			}
			seen[id] = c.Name
		}
	}
	return nil
}
