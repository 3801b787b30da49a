package team

import (
	"fmt"
	"time"
)

// Team is a program a player belongs to. Players reference teams; teams do
// not own players.
type Team struct {
	ID        string
	Name      string
	LogoURL   string
	Location  string
	Division  string
	Region    string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t Team) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
