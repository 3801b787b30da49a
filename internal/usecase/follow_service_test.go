package usecase

import (
	"errors"
	"testing"

	"github.com/nextinning/recruiting-api/internal/infrastructure/repository/memory"
)

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

func newFollowFixture() (*FollowService, *memory.FollowRepository) {
	followRepo := memory.NewFollowRepository()
	userRepo := memory.NewUserRepository(memory.SeedPlayers())
	return NewFollowService(followRepo, userRepo, staticIDGenerator{id: "follow-001"}), followRepo
}

func TestFollowService_Follow(t *testing.T) {
	service, _ := newFollowFixture()

	created, err := service.Follow(t.Context(), "coach-1", "player-ramirez")
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if created.ID != "follow-001" || created.FollowerID != "coach-1" || created.FollowingID != "player-ramirez" {
		t.Fatalf("unexpected edge: %+v", created)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestFollowService_Follow_DuplicateIsConflict(t *testing.T) {
	service, _ := newFollowFixture()

	if _, err := service.Follow(t.Context(), "coach-1", "player-ramirez"); err != nil {
		t.Fatalf("first follow: %v", err)
	}
	_, err := service.Follow(t.Context(), "coach-1", "player-ramirez")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestFollowService_Follow_Validation(t *testing.T) {
	service, _ := newFollowFixture()

	if _, err := service.Follow(t.Context(), "coach-1", "coach-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for self-follow, got %v", err)
	}
	if _, err := service.Follow(t.Context(), "coach-1", "player-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown player, got %v", err)
	}
}

func TestFollowService_Unfollow_MissingEdgeIsFine(t *testing.T) {
	service, _ := newFollowFixture()

	if err := service.Unfollow(t.Context(), "coach-1", "player-ramirez"); err != nil {
		t.Fatalf("unfollow without edge: %v", err)
	}
}

func TestFollowService_Counts(t *testing.T) {
	service, _ := newFollowFixture()

	if _, err := service.Follow(t.Context(), "coach-1", "player-ramirez"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := service.Follow(t.Context(), "coach-1", "player-okafor"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if _, err := service.Follow(t.Context(), "scout-1", "player-ramirez"); err != nil {
		t.Fatalf("follow: %v", err)
	}

	counts, err := service.Counts(t.Context(), "player-ramirez")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Followers != 2 || counts.Following != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	ids, err := service.FollowingIDs(t.Context(), "coach-1")
	if err != nil {
		t.Fatalf("following ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 following ids, got %v", ids)
	}
}
