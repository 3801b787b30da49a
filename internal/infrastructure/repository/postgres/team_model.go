package postgres

import (
	"database/sql"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/team"
)

type teamTableModel struct {
	ID        int64          `db:"id"`
	PublicID  string         `db:"public_id"`
	Name      string         `db:"name"`
	LogoURL   sql.NullString `db:"logo_url"`
	Location  sql.NullString `db:"location"`
	Division  sql.NullString `db:"division"`
	Region    sql.NullString `db:"region"`
	IsActive  bool           `db:"is_active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt *time.Time     `db:"deleted_at"`
}

type teamInsertModel struct {
	PublicID string  `db:"public_id"`
	Name     string  `db:"name"`
	LogoURL  *string `db:"logo_url"`
	Location *string `db:"location"`
	Division *string `db:"division"`
	Region   *string `db:"region"`
	IsActive bool    `db:"is_active"`
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:        row.PublicID,
		Name:      row.Name,
		LogoURL:   row.LogoURL.String,
		Location:  row.Location.String,
		Division:  row.Division.String,
		Region:    row.Region.String,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
