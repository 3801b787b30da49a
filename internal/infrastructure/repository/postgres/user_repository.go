package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/nextinning/recruiting-api/internal/domain/statfilter"
	"github.com/nextinning/recruiting-api/internal/domain/user"
	"github.com/nextinning/recruiting-api/internal/platform/id"
	qb "github.com/nextinning/recruiting-api/internal/platform/querybuilder"
)

type UserRepository struct {
	db    *sqlx.DB
	idGen id.Generator
}

func NewUserRepository(db *sqlx.DB, idGen id.Generator) *UserRepository {
	return &UserRepository{db: db, idGen: idGen}
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", userID))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Expr("LOWER(email) = LOWER(?)", strings.TrimSpace(email)))
}

// GetPlayerByNameAndTeam resolves a player by exact first/last name within a
// team, matched case-insensitively. Bulk import keys its upserts on it.
func (r *UserRepository) GetPlayerByNameAndTeam(ctx context.Context, firstName, lastName, teamID string) (user.User, bool, error) {
	return r.getOne(ctx,
		qb.Eq("role", string(user.RolePlayer)),
		qb.Eq("team_public_id", teamID),
		qb.Expr("LOWER(first_name) = LOWER(?)", strings.TrimSpace(firstName)),
		qb.Expr("LOWER(last_name) = LOWER(?)", strings.TrimSpace(lastName)),
	)
}

func (r *UserRepository) getOne(ctx context.Context, conditions ...qb.Condition) (user.User, bool, error) {
	conditions = append(conditions, qb.IsNull("deleted_at"))
	query, args, err := qb.Select("*").From("users").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}

	users, err := r.attachPlayerDetails(ctx, []user.User{userFromRow(row)})
	if err != nil {
		return user.User{}, false, err
	}

	return users[0], true, nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, fmt.Errorf("begin create user tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := qb.InsertModel("users", userToInsertModel(u), "")
	if err != nil {
		return user.User{}, fmt.Errorf("build insert user query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	if err := r.insertPlayerDetails(ctx, tx, u); err != nil {
		return user.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return user.User{}, fmt.Errorf("commit create user tx: %w", err)
	}

	created, found, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, fmt.Errorf("insert user: row not visible after insert")
	}

	return created, nil
}

func (r *UserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, fmt.Errorf("begin update user tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	builder, err := qb.UpdateModel("users", userToInsertModel(u))
	if err != nil {
		return user.User{}, fmt.Errorf("build update user query: %w", err)
	}
	query, args, err := builder.
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", u.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return user.User{}, fmt.Errorf("build update user query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return user.User{}, fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return user.User{}, fmt.Errorf("rows affected update user: %w", err)
	}
	if affected == 0 {
		return user.User{}, fmt.Errorf("update user: not found")
	}

	// Videos and season stats are replaced wholesale. Import re-sends the
	// complete record set on every run, so diffing buys nothing.
	for _, table := range []string{"player_videos", "batting_stats", "pitching_stats", "fielding_stats"} {
		deleteQuery, deleteArgs, err := qb.DeleteFrom(table).
			Where(qb.Eq("user_public_id", u.ID)).
			ToSQL()
		if err != nil {
			return user.User{}, fmt.Errorf("build clear %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return user.User{}, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := r.insertPlayerDetails(ctx, tx, u); err != nil {
		return user.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return user.User{}, fmt.Errorf("commit update user tx: %w", err)
	}

	updated, found, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, fmt.Errorf("update user: row not visible after update")
	}

	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	query, args, err := qb.Update("users").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("public_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete user query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

func (r *UserRepository) Search(ctx context.Context, criteria statfilter.Criteria) ([]user.User, int, error) {
	conditions := searchConditions(criteria)

	countQuery, countArgs, err := qb.Select("COUNT(1)").From("users").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count players query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count players: %w", err)
	}

	builder := qb.Select("*").From("users").
		Where(conditions...).
		Limit(criteria.Limit).
		Offset(criteria.Skip())
	applySearchOrder(builder, criteria)
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select players query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select players: %w", err)
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userFromRow(row))
	}

	users, err = r.attachPlayerDetails(ctx, users)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepository) ListByTeam(ctx context.Context, teamID string, filter user.RosterFilter) ([]user.User, int, error) {
	conditions := []qb.Condition{
		qb.Eq("team_public_id", teamID),
		qb.Eq("role", string(user.RolePlayer)),
		qb.Eq("registration_status", string(user.RegistrationApproved)),
		qb.Eq("is_active", true),
		qb.IsNull("deleted_at"),
	}
	if filter.Position != "" {
		conditions = append(conditions, qb.Expr("UPPER(position) = UPPER(?)", filter.Position))
	}
	if name := strings.TrimSpace(filter.Search); name != "" {
		conditions = append(conditions, nameCondition(name))
	}
	if filter.SeasonYear != "" {
		// Season narrowing keeps only players with any stat line that year.
		conditions = append(conditions, qb.Or(
			seasonExists("batting_stats", filter.SeasonYear),
			seasonExists("pitching_stats", filter.SeasonYear),
			seasonExists("fielding_stats", filter.SeasonYear),
		))
	}

	countQuery, countArgs, err := qb.Select("COUNT(1)").From("users").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count roster query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count roster: %w", err)
	}

	query, args, err := qb.Select("*").From("users").
		Where(conditions...).
		OrderBy("last_name", "first_name", "id").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select roster query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select roster: %w", err)
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userFromRow(row))
	}

	users, err = r.attachPlayerDetails(ctx, users)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepository) ListTopByCompleteness(ctx context.Context, excludeIDs []string, limit int) ([]user.User, error) {
	conditions := []qb.Condition{
		qb.Eq("role", string(user.RolePlayer)),
		qb.Eq("registration_status", string(user.RegistrationApproved)),
		qb.Eq("is_active", true),
		qb.IsNull("deleted_at"),
	}
	if len(excludeIDs) > 0 {
		conditions = append(conditions, qb.NotIn("public_id", stringSliceToAny(excludeIDs)))
	}

	query, args, err := qb.Select("*").From("users").
		Where(conditions...).
		OrderBy("profile_completeness DESC", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select top players query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select top players: %w", err)
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userFromRow(row))
	}

	return r.attachPlayerDetails(ctx, users)
}

func (r *UserRepository) UpdateBilling(ctx context.Context, userID string, update user.BillingUpdate) error {
	builder := qb.Update("users").
		Set("subscription_status", update.SubscriptionStatus).
		Set("subscription_plan", update.SubscriptionPlan).
		SetExpr("updated_at", "NOW()")
	if update.StripeCustomerID != "" {
		builder.Set("stripe_customer_id", update.StripeCustomerID)
	}
	if !update.SubscriptionEndAt.IsZero() {
		builder.Set("subscription_end_at", update.SubscriptionEndAt)
	}

	query, args, err := builder.
		Where(
			qb.Eq("public_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update user billing query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update user billing: %w", err)
	}

	return nil
}

func (r *UserRepository) SaveProfileCompleteness(ctx context.Context, userID string, score int) error {
	query, args, err := qb.Update("users").
		Set("profile_completeness", score).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update profile completeness query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update profile completeness: %w", err)
	}

	return nil
}

func (r *UserRepository) insertPlayerDetails(ctx context.Context, tx *sqlx.Tx, u user.User) error {
	for _, v := range u.Videos {
		videoID := v.ID
		if videoID == "" {
			generated, err := r.idGen.NewID()
			if err != nil {
				return fmt.Errorf("generate video id: %w", err)
			}
			videoID = generated
		}
		insertModel := playerVideoInsertModel{
			PublicID:   videoID,
			UserID:     u.ID,
			URL:        v.URL,
			Title:      optionalString(v.Title),
			UploadedAt: v.UploadedAt,
		}
		if v.FileSize > 0 {
			size := v.FileSize
			insertModel.FileSize = &size
		}
		if v.Duration > 0 {
			duration := v.Duration
			insertModel.Duration = &duration
		}
		query, args, err := qb.InsertModel("player_videos", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert player video query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert player video: %w", err)
		}
	}

	for _, b := range u.BattingStats {
		insertModel := battingStatInsertModel{
			UserID:             u.ID,
			SeasonLabel:        b.SeasonYear,
			SeasonYear:         statfilter.NormalizeSeasonYear(b.SeasonYear),
			Latest:             b.Latest,
			GamesPlayed:        b.GamesPlayed,
			AtBats:             b.AtBats,
			Runs:               b.Runs,
			Hits:               b.Hits,
			Doubles:            b.Doubles,
			Triples:            b.Triples,
			HomeRuns:           b.HomeRuns,
			RBI:                b.RBI,
			Walks:              b.Walks,
			Strikeouts:         b.Strikeouts,
			StolenBases:        b.StolenBases,
			BattingAverage:     b.BattingAverage,
			OnBasePercentage:   b.OnBasePercentage,
			SluggingPercentage: b.SluggingPercentage,
		}
		query, args, err := qb.InsertModel("batting_stats", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert batting stat query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert batting stat: %w", err)
		}
	}

	for _, p := range u.PitchingStats {
		insertModel := pitchingStatInsertModel{
			UserID:            u.ID,
			SeasonLabel:       p.SeasonYear,
			SeasonYear:        statfilter.NormalizeSeasonYear(p.SeasonYear),
			Latest:            p.Latest,
			Wins:              p.Wins,
			Losses:            p.Losses,
			ERA:               p.ERA,
			GamesPitched:      p.GamesPitched,
			Saves:             p.Saves,
			InningsPitched:    p.InningsPitched,
			HitsAllowed:       p.HitsAllowed,
			WalksAllowed:      p.WalksAllowed,
			StrikeoutsPitched: p.StrikeoutsPitched,
		}
		query, args, err := qb.InsertModel("pitching_stats", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert pitching stat query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert pitching stat: %w", err)
		}
	}

	for _, f := range u.FieldingStats {
		insertModel := fieldingStatInsertModel{
			UserID:             u.ID,
			SeasonLabel:        f.SeasonYear,
			SeasonYear:         statfilter.NormalizeSeasonYear(f.SeasonYear),
			Latest:             f.Latest,
			Putouts:            f.Putouts,
			Assists:            f.Assists,
			Errors:             f.Errors,
			FieldingPercentage: f.FieldingPercentage,
			DoublePlays:        f.DoublePlays,
		}
		query, args, err := qb.InsertModel("fielding_stats", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert fielding stat query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert fielding stat: %w", err)
		}
	}

	return nil
}

// attachPlayerDetails loads videos and season stats for one page of users in
// four batched queries keyed on user id.
func (r *UserRepository) attachPlayerDetails(ctx context.Context, users []user.User) ([]user.User, error) {
	ids := make([]any, 0, len(users))
	for _, u := range users {
		if u.Role == user.RolePlayer {
			ids = append(ids, u.ID)
		}
	}
	if len(ids) == 0 {
		return users, nil
	}

	videos := make(map[string][]user.Video)
	{
		query, args, err := qb.Select("*").From("player_videos").
			Where(qb.In("user_public_id", ids)).
			OrderBy("uploaded_at DESC", "id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select player videos query: %w", err)
		}
		var rows []playerVideoTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select player videos: %w", err)
		}
		for _, row := range rows {
			videos[row.UserID] = append(videos[row.UserID], videoFromRow(row))
		}
	}

	batting := make(map[string][]user.BattingRecord)
	{
		query, args, err := qb.Select("*").From("batting_stats").
			Where(qb.In("user_public_id", ids)).
			OrderBy("season_year DESC", "id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select batting stats query: %w", err)
		}
		var rows []battingStatTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select batting stats: %w", err)
		}
		for _, row := range rows {
			batting[row.UserID] = append(batting[row.UserID], battingFromRow(row))
		}
	}

	pitching := make(map[string][]user.PitchingRecord)
	{
		query, args, err := qb.Select("*").From("pitching_stats").
			Where(qb.In("user_public_id", ids)).
			OrderBy("season_year DESC", "id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select pitching stats query: %w", err)
		}
		var rows []pitchingStatTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select pitching stats: %w", err)
		}
		for _, row := range rows {
			pitching[row.UserID] = append(pitching[row.UserID], pitchingFromRow(row))
		}
	}

	fielding := make(map[string][]user.FieldingRecord)
	{
		query, args, err := qb.Select("*").From("fielding_stats").
			Where(qb.In("user_public_id", ids)).
			OrderBy("season_year DESC", "id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build select fielding stats query: %w", err)
		}
		var rows []fieldingStatTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select fielding stats: %w", err)
		}
		for _, row := range rows {
			fielding[row.UserID] = append(fielding[row.UserID], fieldingFromRow(row))
		}
	}

	for i := range users {
		users[i].Videos = videos[users[i].ID]
		users[i].BattingStats = batting[users[i].ID]
		users[i].PitchingStats = pitching[users[i].ID]
		users[i].FieldingStats = fielding[users[i].ID]
	}

	return users, nil
}

func statTableName(category statfilter.Category) string {
	switch category {
	case statfilter.CategoryPitching:
		return "pitching_stats"
	case statfilter.CategoryFielding:
		return "fielding_stats"
	default:
		return "batting_stats"
	}
}

func searchConditions(criteria statfilter.Criteria) []qb.Condition {
	conditions := []qb.Condition{
		qb.Eq("role", string(user.RolePlayer)),
		qb.Eq("registration_status", string(user.RegistrationApproved)),
		qb.Eq("is_active", true),
		qb.IsNull("deleted_at"),
	}
	if criteria.CommitmentStatus != "" {
		conditions = append(conditions, qb.Eq("commitment_status", criteria.CommitmentStatus))
	}
	if criteria.Position != "" {
		conditions = append(conditions, qb.Expr("UPPER(position) = UPPER(?)", criteria.Position))
	}
	if name := strings.TrimSpace(criteria.Name); name != "" {
		conditions = append(conditions, nameCondition(name))
	}
	if len(criteria.OnlyUserIDs) > 0 {
		conditions = append(conditions, qb.In("public_id", stringSliceToAny(criteria.OnlyUserIDs)))
	}

	table := statTableName(criteria.Category)
	for _, rng := range criteria.Ranges {
		conditions = append(conditions, rangeCondition(criteria, table, rng))
	}
	if len(criteria.Ranges) == 0 && criteria.SeasonYear != "" {
		conditions = append(conditions, seasonExists(table, criteria.SeasonYear))
	}

	return conditions
}

// rangeCondition renders one metric bound pair as an EXISTS over the stat
// table. Without a season filter the bound applies to the latest season row.
func rangeCondition(criteria statfilter.Criteria, table string, rng statfilter.Range) qb.Condition {
	sub := []qb.Condition{
		qb.Expr(table + ".user_public_id = users.public_id"),
	}
	if criteria.SeasonYear != "" {
		sub = append(sub, qb.Eq(table+".season_year", criteria.SeasonYear))
	} else {
		sub = append(sub, qb.Expr(table+".latest = TRUE"))
	}

	if spec, ok := statfilter.Lookup(criteria.Category, rng.Metric); ok {
		if rng.Min != nil {
			sub = append(sub, qb.Gte(table+"."+spec.Column, *rng.Min))
		}
		if rng.Max != nil {
			sub = append(sub, qb.Lte(table+"."+spec.Column, *rng.Max))
		}
	}

	return qb.Exists(table, sub...)
}

func seasonExists(table, seasonYear string) qb.Condition {
	return qb.Exists(table,
		qb.Expr(table+".user_public_id = users.public_id"),
		qb.Eq(table+".season_year", seasonYear),
	)
}

func nameCondition(name string) qb.Condition {
	tokens := statfilter.NameTokens(name)
	if len(tokens) == 2 {
		return qb.And(
			qb.ILike("first_name", tokens[0]),
			qb.ILike("last_name", tokens[1]),
		)
	}
	return qb.Or(
		qb.ILike("first_name", tokens[0]),
		qb.ILike("last_name", tokens[0]),
	)
}

func applySearchOrder(b *qb.SelectBuilder, criteria statfilter.Criteria) {
	spec, ok := statfilter.Lookup(criteria.Category, criteria.SortBy)
	if criteria.SortBy == "" || !ok {
		b.OrderBy("last_name", "first_name", "id")
		return
	}

	table := statTableName(criteria.Category)
	seasonCondition := "s.latest = TRUE"
	var seasonArgs []any
	if criteria.SeasonYear != "" {
		seasonCondition = "s.season_year = ?"
		seasonArgs = append(seasonArgs, criteria.SeasonYear)
	}

	direction := "DESC"
	if criteria.SortOrder == "asc" {
		direction = "ASC"
	}

	sortExpr := fmt.Sprintf(
		"(SELECT s.%s FROM %s s WHERE s.user_public_id = users.public_id AND %s ORDER BY s.season_year DESC LIMIT 1) %s NULLS LAST",
		spec.Column, table, seasonCondition, direction,
	)
	b.OrderByExpr(sortExpr, seasonArgs...).OrderBy("id")
}
