package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "name").
		From("users").
		Where(Eq("tenant_id", "t1"), IsNull("deleted_at")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, name FROM users WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "t1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("users").
		Columns("id", "name").
		Values("u1", "name-1").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO users (id, name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "u1" || args[1] != "name-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("users").
		Set("name", "new").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "u1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE users SET name = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "new" || args[1] != "u1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestILikeEscapesWildcards(t *testing.T) {
	query, args, err := Select("id").
		From("users").
		Where(ILike("first_name", "100%_sure")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM users WHERE first_name ILIKE $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != `%100\%\_sure%` {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestOrderByExprBindsArgs(t *testing.T) {
	query, args, err := Select("id").
		From("users").
		Where(Eq("is_active", true)).
		OrderByExpr("(SELECT s.batting_average FROM batting_stats s WHERE s.season_year = ? LIMIT 1) DESC NULLS LAST", "2025").
		OrderBy("id").
		Limit(5).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM users WHERE is_active = $1 ORDER BY (SELECT s.batting_average FROM batting_stats s WHERE s.season_year = $2 LIMIT 1) DESC NULLS LAST, id LIMIT 5"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != true || args[1] != "2025" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestOrCondition(t *testing.T) {
	query, args, err := Select("id").
		From("users").
		Where(Or(ILike("first_name", "rami"), ILike("last_name", "rami"))).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM users WHERE (first_name ILIKE $1 OR last_name ILIKE $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestExistsWithCorrelatedExpr(t *testing.T) {
	query, args, err := Select("id").
		From("users").
		Where(Exists("batting_stats",
			Expr("batting_stats.user_public_id = users.public_id"),
			Gte("batting_stats.home_runs", 5),
		)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM users WHERE EXISTS (SELECT 1 FROM batting_stats WHERE batting_stats.user_public_id = users.public_id AND batting_stats.home_runs >= $1)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != 5 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateModel(t *testing.T) {
	model := struct {
		Name     string  `db:"name"`
		Location *string `db:"location"`
	}{Name: "Austin Sliders"}

	builder, err := UpdateModel("teams", model)
	if err != nil {
		t.Fatalf("build update model: %v", err)
	}

	query, args, err := builder.
		SetExpr("updated_at", "NOW()").
		Where(Eq("public_id", "tm-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE teams SET name = $1, location = $2, updated_at = NOW() WHERE public_id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "Austin Sliders" || args[2] != "tm-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
