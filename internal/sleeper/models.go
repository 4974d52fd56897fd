package sleeper

import "fmt"

// League represents a Sleeper fantasy league
type League struct {
	LeagueID     string            `json:"league_id"`
	Name         string            `json:"name"`
	Status       string            `json:"status"`
	Sport        string            `json:"sport"`
	Season       string            `json:"season"`
	Settings     LeagueSettings    `json:"settings"`
	Metadata     map[string]string `json:"metadata"`
	TotalRosters int               `json:"total_rosters"`
}

// LeagueSettings contains the league configuration used by the import
type LeagueSettings struct {
	PlayoffTeams int `json:"playoff_teams"`
	NumTeams     int `json:"num_teams"`
	Divisions    int `json:"divisions"`
}

// DivisionName returns the configured name of a 1-based division
func (l League) DivisionName(division int) string {
	if name := l.Metadata[fmt.Sprintf("division_%d", division)]; name != "" {
		return name
	}
	return fmt.Sprintf("Division %d", division)
}

// User represents a Sleeper user
type User struct {
	UserID      string       `json:"user_id"`
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	Metadata    UserMetadata `json:"metadata"`
}

type UserMetadata struct {
	TeamName string `json:"team_name"`
}

// Roster represents a team's roster
type Roster struct {
	RosterID int            `json:"roster_id"`
	OwnerID  string         `json:"owner_id"`
	Settings RosterSettings `json:"settings"`
}

// RosterSettings contains team performance data
type RosterSettings struct {
	Wins               int     `json:"wins"`
	Losses             int     `json:"losses"`
	Ties               int     `json:"ties"`
	FPTS               float64 `json:"fpts"`
	FPTSDecimal        float64 `json:"fpts_decimal"`
	FPTSAgainst        float64 `json:"fpts_against"`
	FPTSAgainstDecimal float64 `json:"fpts_against_decimal"`
	Division           int     `json:"division,omitempty"`
}

// PointsFor combines the whole and hundredths parts Sleeper reports separately
func (s RosterSettings) PointsFor() float64 {
	return s.FPTS + s.FPTSDecimal/100
}

func (s RosterSettings) PointsAgainst() float64 {
	return s.FPTSAgainst + s.FPTSAgainstDecimal/100
}

// SleeperError represents an error from the Sleeper API
type SleeperError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	LeagueID   string `json:"league_id,omitempty"`
}

func (e *SleeperError) Error() string {
	return e.Message
}
