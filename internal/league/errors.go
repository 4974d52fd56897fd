package league

import "errors"

// Validation errors
var (
	ErrAttributeOutOfRange       = errors.New("attribute out of range")
	ErrNameTooLong               = errors.New("name too long")
	ErrDuplicateTeamID           = errors.New("duplicate team id")
	ErrTeamNotFound              = errors.New("team not found")
	ErrInvalidTeamCount          = errors.New("invalid team count")
	ErrNoConferenceStructure     = errors.New("no conference structure")
	ErrUnsatisfiableSchedule     = errors.New("unsatisfiable schedule")
	ErrScheduleLengthOutOfBounds = errors.New("schedule length out of bounds")
	ErrWeekOutOfOrder            = errors.New("week out of order")
	ErrDuplicateWeeklyAppearance = errors.New("duplicate weekly appearance")
	ErrSelfMatchup               = errors.New("team cannot play itself")
)

// Playoff errors
var (
	ErrRoundIncomplete         = errors.New("playoff round incomplete")
	ErrPlayoffsAlreadyComplete = errors.New("playoffs already complete")
	ErrPlayoffTeamNotFound     = errors.New("playoff team not found")
	ErrDuplicatePlayoffTeam    = errors.New("duplicate playoff team")
	ErrInvalidPlayoffOptions   = errors.New("invalid playoff options")
	ErrUndecidedPlayoffGame    = errors.New("playoff game ended in a tie")
)

// Precondition errors
var (
	ErrInvalidState           = errors.New("operation not allowed in current season state")
	ErrSeasonInProgress       = errors.New("season in progress")
	ErrMatchupComplete        = errors.New("matchup already complete")
	ErrConferenceNotFound     = errors.New("conference not found")
	ErrDivisionNotFound       = errors.New("division not found")
	ErrWeekNotFound           = errors.New("week not found")
	ErrMatchupNotFound        = errors.New("matchup not found")
	ErrUnassignedTeam         = errors.New("team not assigned to a division")
	ErrInvalidScheduleOptions = errors.New("invalid schedule options")
	ErrNoSeason               = errors.New("league has no current season")
	ErrUnknownTiebreaker      = errors.New("unknown tiebreaker")
)
