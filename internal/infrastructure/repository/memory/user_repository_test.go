package memory

import (
	"testing"

	"github.com/nextinning/recruiting-api/internal/domain/statfilter"
	"github.com/nextinning/recruiting-api/internal/domain/user"
)

func TestUserRepositorySearch_SortByMetric(t *testing.T) {
	repo := NewUserRepository(SeedPlayers())

	players, total, err := repo.Search(t.Context(), statfilter.Criteria{
		Category:  statfilter.CategoryBatting,
		SortBy:    "batting_average",
		SortOrder: "desc",
		Page:      1,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected all 3 seed players, got %d", total)
	}
	// Ramirez .400 and Whitfield .365 lead; the pitcher has no batting
	// record and sinks to the tail.
	if players[0].ID != "player-ramirez" || players[1].ID != "player-whitfield" || players[2].ID != "player-okafor" {
		t.Fatalf("unexpected order: %s, %s, %s", players[0].ID, players[1].ID, players[2].ID)
	}
}

func TestUserRepositorySearch_SortAscending(t *testing.T) {
	repo := NewUserRepository(SeedPlayers())

	players, _, err := repo.Search(t.Context(), statfilter.Criteria{
		Category:  statfilter.CategoryPitching,
		Ranges:    []statfilter.Range{{Metric: "era", Max: floatPtr(5.0)}},
		SortBy:    "era",
		SortOrder: "asc",
		Page:      1,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(players) != 1 || players[0].ID != "player-okafor" {
		t.Fatalf("expected only the pitcher, got %+v", players)
	}
}

func TestUserRepositorySearch_NameFilter(t *testing.T) {
	repo := NewUserRepository(SeedPlayers())

	players, total, err := repo.Search(t.Context(), statfilter.Criteria{
		Category: statfilter.CategoryBatting,
		Name:     "diego ramirez",
		Page:     1,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || players[0].ID != "player-ramirez" {
		t.Fatalf("unexpected result: %+v", players)
	}

	// A single token matches either name part.
	_, total, err = repo.Search(t.Context(), statfilter.Criteria{
		Category: statfilter.CategoryBatting,
		Name:     "whit",
		Page:     1,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 match for partial last name, got %d", total)
	}
}

func TestUserRepositorySearch_ExcludesUnlistable(t *testing.T) {
	players := append(SeedPlayers(),
		user.User{ID: "inactive", FirstName: "Gone", Role: user.RolePlayer, RegistrationStatus: user.RegistrationApproved, IsActive: false},
		user.User{ID: "unapproved", FirstName: "New", Role: user.RolePlayer, RegistrationStatus: user.RegistrationInProgress, IsActive: true},
		user.User{ID: "coach", FirstName: "Pat", Role: user.RoleCoach, IsActive: true},
	)
	repo := NewUserRepository(players)

	_, total, err := repo.Search(t.Context(), statfilter.Criteria{
		Category: statfilter.CategoryBatting,
		Page:     1,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected only the listable seed players, got %d", total)
	}
}

func TestUserRepositoryUpdateBilling(t *testing.T) {
	repo := NewUserRepository([]user.User{{
		ID:               "user-1",
		FirstName:        "Pat",
		Role:             user.RoleCoach,
		StripeCustomerID: "cus_original",
	}})

	err := repo.UpdateBilling(t.Context(), "user-1", user.BillingUpdate{
		SubscriptionStatus: "active",
		SubscriptionPlan:   "coach-annual",
	})
	if err != nil {
		t.Fatalf("update billing: %v", err)
	}

	u, _, err := repo.GetByID(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.SubscriptionStatus != "active" || u.SubscriptionPlan != "coach-annual" {
		t.Fatalf("billing not applied: %+v", u)
	}
	// An empty customer id in the update keeps the stored one.
	if u.StripeCustomerID != "cus_original" {
		t.Fatalf("customer id overwritten: %q", u.StripeCustomerID)
	}

	if err := repo.UpdateBilling(t.Context(), "missing", user.BillingUpdate{}); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestTeamRepositoryGetOrCreateByName(t *testing.T) {
	repo := NewTeamRepository(SeedTeams(), staticIDGen{id: "team-new"})

	existing, created, err := repo.GetOrCreateByName(t.Context(), "austin sliders")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if created || existing.ID != TeamIDAustinSliders {
		t.Fatalf("case-insensitive match failed: created=%v team=%+v", created, existing)
	}

	fresh, created, err := repo.GetOrCreateByName(t.Context(), "Waco Wranglers")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !created || fresh.ID != "team-new" || !fresh.IsActive {
		t.Fatalf("unexpected new team: created=%v team=%+v", created, fresh)
	}

	if _, _, err := repo.GetOrCreateByName(t.Context(), "  "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

type staticIDGen struct {
	id string
}

func (g staticIDGen) NewID() (string, error) {
	return g.id, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
