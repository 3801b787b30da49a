package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/nextinning/recruiting-api/internal/domain/team"
	"github.com/nextinning/recruiting-api/internal/platform/id"
	qb "github.com/nextinning/recruiting-api/internal/platform/querybuilder"
)

type TeamRepository struct {
	db    *sqlx.DB
	idGen id.Generator
}

func NewTeamRepository(db *sqlx.DB, idGen id.Generator) *TeamRepository {
	return &TeamRepository{db: db, idGen: idGen}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team: %w", err)
	}

	return teamFromRow(row), true, nil
}

func (r *TeamRepository) List(ctx context.Context, filter team.ListFilter) ([]team.Team, int, error) {
	conditions := teamListConditions(filter)

	countQuery, countArgs, err := qb.Select("COUNT(1)").From("teams").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count teams query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count teams: %w", err)
	}

	query, args, err := qb.Select("*").From("teams").
		Where(conditions...).
		OrderBy("name", "id").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}

	return out, total, nil
}

func teamListConditions(filter team.ListFilter) []qb.Condition {
	conditions := []qb.Condition{
		qb.Eq("is_active", true),
		qb.IsNull("deleted_at"),
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, qb.Or(
			qb.ILike("name", search),
			qb.ILike("location", search),
		))
	}
	return conditions
}

func (r *TeamRepository) GetOrCreateByName(ctx context.Context, name string) (team.Team, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return team.Team{}, false, fmt.Errorf("team name is required")
	}

	existing, found, err := r.getByName(ctx, name)
	if err != nil {
		return team.Team{}, false, err
	}
	if found {
		return existing, false, nil
	}

	publicID, err := r.idGen.NewID()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("generate team id: %w", err)
	}

	insertModel := teamInsertModel{
		PublicID: publicID,
		Name:     name,
		IsActive: true,
	}
	query, args, err := qb.InsertModel("teams", insertModel, "")
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build insert team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		// Concurrent import workers race on the same team name. The unique
		// index on the name decides the winner; losers read the row back.
		if isUniqueViolation(err) {
			created, found, err := r.getByName(ctx, name)
			if err != nil {
				return team.Team{}, false, err
			}
			if found {
				return created, false, nil
			}
		}
		return team.Team{}, false, fmt.Errorf("insert team: %w", err)
	}

	created, found, err := r.getByName(ctx, name)
	if err != nil {
		return team.Team{}, false, err
	}
	if !found {
		return team.Team{}, false, fmt.Errorf("insert team: row not visible after insert")
	}

	return created, true, nil
}

func (r *TeamRepository) getByName(ctx context.Context, name string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Expr("LOWER(name) = LOWER(?)", name),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by name query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by name: %w", err)
	}

	return teamFromRow(row), true, nil
}
