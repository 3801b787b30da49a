package usecase

import (
	"errors"
	"testing"

	"github.com/nextinning/recruiting-api/internal/domain/team"
	"github.com/nextinning/recruiting-api/internal/domain/user"
	"github.com/nextinning/recruiting-api/internal/infrastructure/repository/memory"
)

func newTeamFixture() *TeamService {
	teamRepo := memory.NewTeamRepository(memory.SeedTeams(), staticIDGenerator{id: "team-new"})
	userRepo := memory.NewUserRepository(memory.SeedPlayers())
	return NewTeamService(teamRepo, userRepo)
}

func TestTeamService_List(t *testing.T) {
	service := newTeamFixture()

	page, err := service.List(t.Context(), team.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 3 || len(page.Teams) != 3 {
		t.Fatalf("expected all 3 teams, got total=%d len=%d", page.TotalCount, len(page.Teams))
	}
	if page.Page != 1 || page.Limit != defaultRosterLimit {
		t.Fatalf("expected defaulted paging, got page=%d limit=%d", page.Page, page.Limit)
	}
	// Alphabetical by name.
	if page.Teams[0].Name != "Austin Sliders" {
		t.Fatalf("unexpected first team %q", page.Teams[0].Name)
	}
}

func TestTeamService_List_Search(t *testing.T) {
	service := newTeamFixture()

	page, err := service.List(t.Context(), team.ListFilter{Search: "  houston "})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 1 || page.Teams[0].ID != memory.TeamIDHoustonHeat {
		t.Fatalf("unexpected result: %+v", page.Teams)
	}
}

func TestTeamService_GetRoster(t *testing.T) {
	service := newTeamFixture()

	page, err := service.GetRoster(t.Context(), memory.TeamIDAustinSliders, user.RosterFilter{})
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if page.Team.Name != "Austin Sliders" {
		t.Fatalf("unexpected team %q", page.Team.Name)
	}
	if page.TotalCount != 1 || page.Players[0].ID != "player-ramirez" {
		t.Fatalf("unexpected roster: %+v", page.Players)
	}
}

func TestTeamService_GetRoster_PositionFilter(t *testing.T) {
	service := newTeamFixture()

	page, err := service.GetRoster(t.Context(), memory.TeamIDDallasLonghorn, user.RosterFilter{Position: "p"})
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if page.TotalCount != 1 || page.Players[0].ID != "player-okafor" {
		t.Fatalf("expected the pitcher, got %+v", page.Players)
	}

	page, err = service.GetRoster(t.Context(), memory.TeamIDDallasLonghorn, user.RosterFilter{Position: "C"})
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if page.TotalCount != 0 {
		t.Fatalf("expected no catchers, got %+v", page.Players)
	}
}

func TestTeamService_GetRoster_SeasonFilter(t *testing.T) {
	service := newTeamFixture()

	// "2024-25" normalizes to the starting year; whitfield has no 2024 record.
	page, err := service.GetRoster(t.Context(), memory.TeamIDHoustonHeat, user.RosterFilter{SeasonYear: "2024-25"})
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if page.TotalCount != 0 {
		t.Fatalf("expected empty roster for 2024, got %+v", page.Players)
	}

	page, err = service.GetRoster(t.Context(), memory.TeamIDHoustonHeat, user.RosterFilter{SeasonYear: "2025"})
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("expected whitfield for 2025, got %+v", page.Players)
	}
}

func TestTeamService_GetRoster_Errors(t *testing.T) {
	service := newTeamFixture()

	if _, err := service.GetRoster(t.Context(), "", user.RosterFilter{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank id, got %v", err)
	}
	if _, err := service.GetRoster(t.Context(), "team-missing", user.RosterFilter{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
