package sleeper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, _ := test.NewNullLogger()
	return &HTTPClient{
		baseURL:    server.URL,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func TestHTTPClient_GetLeague(t *testing.T) {
	tests := []struct {
		name           string
		leagueID       string
		serverResponse string
		serverStatus   int
		wantError      bool
		wantStatus     int
		wantLeague     *League
	}{
		{
			name:         "successful request",
			leagueID:     "123456789",
			serverStatus: http.StatusOK,
			serverResponse: `{
				"league_id": "123456789",
				"name": "Test League",
				"status": "in_season",
				"sport": "nfl",
				"season": "2024",
				"total_rosters": 12,
				"settings": {"playoff_teams": 6, "num_teams": 12, "divisions": 2},
				"metadata": {"division_1": "East", "division_2": "West"}
			}`,
			wantError: false,
			wantLeague: &League{
				LeagueID:     "123456789",
				Name:         "Test League",
				Season:       "2024",
				TotalRosters: 12,
				Settings:     LeagueSettings{PlayoffTeams: 6, NumTeams: 12, Divisions: 2},
			},
		},
		{
			name:           "league not found",
			leagueID:       "invalid",
			serverStatus:   http.StatusOK,
			serverResponse: "null",
			wantError:      true,
			wantStatus:     http.StatusNotFound,
		},
		{
			name:           "server error",
			leagueID:       "123456789",
			serverStatus:   http.StatusInternalServerError,
			serverResponse: "Internal Server Error",
			wantError:      true,
			wantStatus:     http.StatusInternalServerError,
		},
		{
			name:           "malformed body",
			leagueID:       "123456789",
			serverStatus:   http.StatusOK,
			serverResponse: "{",
			wantError:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/league/"+tt.leagueID {
					t.Errorf("Expected path /league/%s, got %s", tt.leagueID, r.URL.Path)
				}
				w.WriteHeader(tt.serverStatus)
				w.Write([]byte(tt.serverResponse))
			})

			league, err := client.GetLeague(context.Background(), tt.leagueID)

			if tt.wantError && err == nil {
				t.Fatal("Expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if tt.wantStatus != 0 {
				var se *SleeperError
				if !errors.As(err, &se) {
					t.Fatalf("Expected SleeperError, got %v", err)
				}
				if se.StatusCode != tt.wantStatus {
					t.Errorf("Expected status %d, got %d", tt.wantStatus, se.StatusCode)
				}
				if se.LeagueID != tt.leagueID {
					t.Errorf("Expected league ID %s on error, got %s", tt.leagueID, se.LeagueID)
				}
			}

			if tt.wantLeague != nil {
				if league == nil {
					t.Fatal("Expected league but got nil")
				}
				if league.LeagueID != tt.wantLeague.LeagueID {
					t.Errorf("Expected league ID %s, got %s", tt.wantLeague.LeagueID, league.LeagueID)
				}
				if league.Name != tt.wantLeague.Name {
					t.Errorf("Expected league name %s, got %s", tt.wantLeague.Name, league.Name)
				}
				if league.Settings != tt.wantLeague.Settings {
					t.Errorf("Expected settings %+v, got %+v", tt.wantLeague.Settings, league.Settings)
				}
				if got := league.DivisionName(2); got != "West" {
					t.Errorf("Expected division 2 to be West, got %s", got)
				}
				if got := league.DivisionName(3); got != "Division 3" {
					t.Errorf("Expected fallback division name, got %s", got)
				}
			} else if league != nil {
				t.Error("Expected nil league but got result")
			}
		})
	}
}

func TestHTTPClient_GetLeagueUsersAndRosters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/league/42/users":
			w.Write([]byte(`[
				{"user_id": "u1", "username": "alpha", "display_name": "Alpha", "metadata": {"team_name": "Alpha Dogs"}},
				{"user_id": "u2", "username": "beta", "display_name": "Beta", "metadata": {}}
			]`))
		case "/league/42/rosters":
			w.Write([]byte(`[
				{"roster_id": 1, "owner_id": "u1", "settings": {"wins": 3, "losses": 1, "fpts": 450, "fpts_decimal": 25, "fpts_against": 400, "division": 1}},
				{"roster_id": 2, "owner_id": "u2", "settings": {"wins": 1, "losses": 3, "fpts": 380, "fpts_against": 420, "division": 2}}
			]`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	users, err := client.GetLeagueUsers(context.Background(), "42")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(users) != 2 || users[0].Metadata.TeamName != "Alpha Dogs" {
		t.Errorf("Unexpected users: %+v", users)
	}

	rosters, err := client.GetLeagueRosters(context.Background(), "42")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rosters) != 2 {
		t.Fatalf("Expected 2 rosters, got %d", len(rosters))
	}
	if got := rosters[0].Settings.PointsFor(); got != 450.25 {
		t.Errorf("Expected 450.25 points for, got %v", got)
	}
	if rosters[1].Settings.Division != 2 {
		t.Errorf("Expected division 2, got %d", rosters[1].Settings.Division)
	}
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.GetLeague(ctx, "1"); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestSleeperError_Error(t *testing.T) {
	err := &SleeperError{
		Type:    "api_error",
		Message: "League not found",
	}

	expected := "League not found"
	if err.Error() != expected {
		t.Errorf("Expected error message %s, got %s", expected, err.Error())
	}
}

func TestNewHTTPClient(t *testing.T) {
	logger := logrus.New()
	client := NewHTTPClient("", logger)

	if client == nil {
		t.Fatal("Expected client to be created, got nil")
	}
	if client.baseURL != BaseURL {
		t.Errorf("Expected default base URL, got %s", client.baseURL)
	}

	// Ensure it implements the Client interface
	var _ Client = client
}
