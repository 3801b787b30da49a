package usecase

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nextinning/recruiting-api/internal/domain/statfilter"
	"github.com/nextinning/recruiting-api/internal/domain/user"
	"github.com/nextinning/recruiting-api/internal/infrastructure/repository/memory"
)

func TestPlayerService_Search_FiltersByBattingAverage(t *testing.T) {
	service := NewPlayerService(memory.NewUserRepository(memory.SeedPlayers()))

	criteria := statfilter.Criteria{Category: statfilter.CategoryBatting}
	criteria.AddRange("batting_average", "0.350", "")

	page, err := service.Search(t.Context(), criteria)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if page.TotalCount != 2 {
		t.Fatalf("expected 2 matches, got %d", page.TotalCount)
	}
	for _, p := range page.Players {
		if p.ID != "player-ramirez" && p.ID != "player-whitfield" {
			t.Fatalf("unexpected player in result: %s", p.ID)
		}
	}
}

func TestPlayerService_Search_SeasonYearSelectsOlderRecords(t *testing.T) {
	service := NewPlayerService(memory.NewUserRepository(memory.SeedPlayers()))

	// Ramirez hit 0.323 in 2024; only the seeded 2025 seasons clear 0.350.
	criteria := statfilter.Criteria{Category: statfilter.CategoryBatting, SeasonYear: "2024"}
	criteria.AddRange("batting_average", "0.300", "")

	page, err := service.Search(t.Context(), criteria)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.TotalCount != 1 || page.Players[0].ID != "player-ramirez" {
		t.Fatalf("expected only ramirez for 2024, got %+v", page.Players)
	}
}

func TestPlayerService_Search_InvalidCategory(t *testing.T) {
	service := NewPlayerService(memory.NewUserRepository(nil))

	_, err := service.Search(t.Context(), statfilter.Criteria{Category: "bowling"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlayerService_Search_Pagination(t *testing.T) {
	players := make([]user.User, 0, 25)
	for i := 0; i < 25; i++ {
		players = append(players, user.User{
			ID:                 fmt.Sprintf("player-%02d", i),
			FirstName:          "First",
			LastName:           fmt.Sprintf("Last%02d", i),
			Role:               user.RolePlayer,
			RegistrationStatus: user.RegistrationApproved,
			IsActive:           true,
		})
	}
	service := NewPlayerService(memory.NewUserRepository(players))

	page, err := service.Search(t.Context(), statfilter.Criteria{
		Category: statfilter.CategoryBatting,
		Page:     2,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(page.Players) != 10 || page.TotalCount != 25 {
		t.Fatalf("expected 10 of 25, got %d of %d", len(page.Players), page.TotalCount)
	}
	if page.TotalPages() != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages())
	}
	if !page.HasMore() {
		t.Fatalf("expected more pages after page 2")
	}

	last, err := service.Search(t.Context(), statfilter.Criteria{
		Category: statfilter.CategoryBatting,
		Page:     3,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(last.Players) != 5 || last.HasMore() {
		t.Fatalf("expected short final page, got %d players hasMore=%v", len(last.Players), last.HasMore())
	}
}

func TestPlayerService_SearchUncommitted_EmptyIsClientError(t *testing.T) {
	service := NewPlayerService(memory.NewUserRepository(memory.SeedPlayers()))

	criteria := statfilter.Criteria{Category: statfilter.CategoryBatting, Name: "Whitfield"}
	_, err := service.SearchUncommitted(t.Context(), criteria)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "No uncommitted players found with this name") {
		t.Fatalf("unexpected name-miss message: %q", err.Error())
	}

	_, err = service.SearchUncommitted(t.Context(), statfilter.Criteria{Category: statfilter.CategoryBatting, SeasonYear: "1999"})
	if err == nil || !strings.Contains(err.Error(), "No uncommitted players found with this year") {
		t.Fatalf("unexpected year-miss message: %v", err)
	}

	noMatch := 9.99
	_, err = service.SearchUncommitted(t.Context(), statfilter.Criteria{
		Category: statfilter.CategoryBatting,
		Ranges:   []statfilter.Range{{Metric: "batting_average", Min: &noMatch}},
	})
	if err == nil || !strings.Contains(err.Error(), "No uncommitted players found") {
		t.Fatalf("unexpected generic-miss message: %v", err)
	}
}

func TestPlayerService_SearchUncommitted_ExcludesCommitted(t *testing.T) {
	service := NewPlayerService(memory.NewUserRepository(memory.SeedPlayers()))

	page, err := service.SearchUncommitted(t.Context(), statfilter.Criteria{Category: statfilter.CategoryBatting})
	if err != nil {
		t.Fatalf("search uncommitted: %v", err)
	}
	for _, p := range page.Players {
		if p.CommitmentStatus == user.CommitmentCommitted {
			t.Fatalf("committed player %s in uncommitted result", p.ID)
		}
	}
	if page.TotalCount != 2 {
		t.Fatalf("expected 2 uncommitted players, got %d", page.TotalCount)
	}
}

func TestPlayerService_GetProfile(t *testing.T) {
	service := NewPlayerService(memory.NewUserRepository(memory.SeedPlayers()))

	u, err := service.GetProfile(t.Context(), "player-okafor")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if u.LastName != "Okafor" {
		t.Fatalf("unexpected profile: %+v", u)
	}

	if _, err := service.GetProfile(t.Context(), "player-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.GetProfile(t.Context(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank id, got %v", err)
	}
}

func TestPlayerService_GetStats_SeasonFilter(t *testing.T) {
	service := NewPlayerService(memory.NewUserRepository(memory.SeedPlayers()))

	all, err := service.GetStats(t.Context(), "player-okafor", "")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if len(all.Pitching) != 2 {
		t.Fatalf("expected 2 pitching seasons, got %d", len(all.Pitching))
	}

	one, err := service.GetStats(t.Context(), "player-okafor", "2024-25")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if len(one.Pitching) != 1 || one.Pitching[0].SeasonYear != "2024" {
		t.Fatalf("expected only the 2024 season, got %+v", one.Pitching)
	}
}
