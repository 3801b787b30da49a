package statfilter

import (
	"slices"
	"testing"
)

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory("  Pitching ")
	if err != nil {
		t.Fatalf("parse category: %v", err)
	}
	if got != CategoryPitching {
		t.Fatalf("expected pitching, got %s", got)
	}

	if _, err := ParseCategory("bowling"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestParseBound(t *testing.T) {
	t.Run("float metric", func(t *testing.T) {
		got := ParseBound(CategoryBatting, "batting_average", "0.350")
		if got == nil || *got != 0.350 {
			t.Fatalf("expected 0.350, got %v", got)
		}
	})

	t.Run("int metric rejects fraction", func(t *testing.T) {
		if got := ParseBound(CategoryBatting, "home_runs", "5.5"); got != nil {
			t.Fatalf("expected nil for fractional int bound, got %v", got)
		}
	})

	t.Run("malformed value is no constraint", func(t *testing.T) {
		if got := ParseBound(CategoryPitching, "era", "cheap"); got != nil {
			t.Fatalf("expected nil for malformed bound, got %v", got)
		}
	})

	t.Run("unknown metric", func(t *testing.T) {
		if got := ParseBound(CategoryFielding, "era", "2.5"); got != nil {
			t.Fatalf("expected nil for metric outside category, got %v", got)
		}
	})

	t.Run("empty value", func(t *testing.T) {
		if got := ParseBound(CategoryBatting, "hits", ""); got != nil {
			t.Fatalf("expected nil for empty bound, got %v", got)
		}
	})
}

func TestCriteriaAddRange(t *testing.T) {
	c := Criteria{Category: CategoryBatting}
	c.AddRange("home_runs", "5", "")
	c.AddRange("home_runs", "junk", "also-junk")
	c.AddRange("era", "1.0", "3.0")

	if len(c.Ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(c.Ranges))
	}
	r := c.Ranges[0]
	if r.Metric != "home_runs" || r.Min == nil || *r.Min != 5 || r.Max != nil {
		t.Fatalf("unexpected range: %+v", r)
	}
}

func TestCriteriaNormalize(t *testing.T) {
	c := Criteria{Category: CategoryBatting, Page: -3, SortBy: "era", SortOrder: "sideways"}
	c.Normalize(20)

	if c.Page != 1 || c.Limit != 20 {
		t.Fatalf("unexpected pagination: page=%d limit=%d", c.Page, c.Limit)
	}
	if c.SortOrder != "desc" {
		t.Fatalf("expected desc default, got %s", c.SortOrder)
	}
	if c.SortBy != "" {
		t.Fatalf("expected unknown sort metric dropped, got %s", c.SortBy)
	}
}

func TestCriteriaSkip(t *testing.T) {
	c := Criteria{Page: 3, Limit: 10}
	if c.Skip() != 20 {
		t.Fatalf("expected skip 20, got %d", c.Skip())
	}
}

func TestNormalizeSeasonYear(t *testing.T) {
	cases := map[string]string{
		"2024":     "2024",
		"2024-25":  "2024",
		" 2023 ":   "2023",
		"":         "",
		"Fall '24": "Fall '24",
	}
	for in, want := range cases {
		if got := NormalizeSeasonYear(in); got != want {
			t.Fatalf("NormalizeSeasonYear(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSeasonMatches(t *testing.T) {
	if !SeasonMatches("2024-25", "2024") {
		t.Fatalf("expected range label to match its opening year")
	}
	if SeasonMatches("2023", "2024") {
		t.Fatalf("did not expect mismatched years to match")
	}
	if !SeasonMatches("2023", "") {
		t.Fatalf("expected empty target to match everything")
	}
}

func TestNameTokens(t *testing.T) {
	if got := NameTokens("  Diego  "); !slices.Equal(got, []string{"Diego"}) {
		t.Fatalf("unexpected tokens: %v", got)
	}
	if got := NameTokens("Diego Ramirez Jr"); !slices.Equal(got, []string{"Diego", "Ramirez"}) {
		t.Fatalf("expected extra tokens dropped, got %v", got)
	}
	if got := NameTokens("   "); len(got) != 0 {
		t.Fatalf("expected no tokens for blank input, got %v", got)
	}
}

func TestLowerIsBetter(t *testing.T) {
	if !LowerIsBetter(CategoryPitching, "era") {
		t.Fatalf("expected era to rank ascending")
	}
	if LowerIsBetter(CategoryBatting, "home_runs") {
		t.Fatalf("did not expect home_runs to rank ascending")
	}
}
