package handlers

import (
	"fmt"
	"math"
	"strings"

	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
)

// Tool arguments arrive as decoded JSON: numbers are float64, arrays []interface{}
// and objects map[string]interface{}.

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required and must be a string", key)
	}
	return strings.TrimSpace(v), nil
}

func optionalStringArg(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(v), nil
}

func toInt(key string, raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}

func intArg(args map[string]interface{}, key string) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%s is required and must be an integer", key)
	}
	return toInt(key, raw)
}

// optionalIntArg returns nil when the argument is absent
func optionalIntArg(args map[string]interface{}, key string) (*int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	v, err := toInt(key, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalBoolArg(args map[string]interface{}, key string) (*bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return nil, fmt.Errorf("%s must be a boolean", key)
	}
	return &v, nil
}

func optionalStringListArg(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be an array of strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
}

// optionalTiebreakArg parses a tiebreak_order argument, nil when absent
func optionalTiebreakArg(args map[string]interface{}) ([]league.TiebreakerType, error) {
	names, err := optionalStringListArg(args, "tiebreak_order")
	if err != nil || names == nil {
		return nil, err
	}
	return league.ParseTiebreakOrder(names)
}

func optionalAttributesArg(args map[string]interface{}, key string) (league.Attributes, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an object of integer ratings", key)
	}
	attrs := make(league.Attributes, len(obj))
	for k, v := range obj {
		n, err := toInt(key+"."+k, v)
		if err != nil {
			return nil, err
		}
		attrs[k] = n
	}
	return attrs, nil
}

// teamArg builds a season team from name, short_name and the rating blocks
func teamArg(args map[string]interface{}) (league.FootballTeam, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return league.FootballTeam{}, err
	}
	short, err := stringArg(args, "short_name")
	if err != nil {
		return league.FootballTeam{}, err
	}
	team := league.FootballTeam{Name: name, ShortName: strings.ToUpper(short)}
	if team.Offense, err = optionalAttributesArg(args, "offense"); err != nil {
		return league.FootballTeam{}, err
	}
	if team.Defense, err = optionalAttributesArg(args, "defense"); err != nil {
		return league.FootballTeam{}, err
	}
	if team.Coach, err = optionalAttributesArg(args, "coach"); err != nil {
		return league.FootballTeam{}, err
	}
	if err := team.Validate(); err != nil {
		return league.FootballTeam{}, err
	}
	return team, nil
}
