package team

import "context"

// ListFilter narrows a team listing by name/location substring.
type ListFilter struct {
	Search string
	Page   int
	Limit  int
}

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	List(ctx context.Context, filter ListFilter) ([]Team, int, error)

	// GetOrCreateByName resolves a team by exact name, creating it when
	// missing. The bool reports whether a new team was created.
	GetOrCreateByName(ctx context.Context, name string) (Team, bool, error)
}
