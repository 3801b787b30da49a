package statfilter

import (
	"regexp"
	"strings"
)

// Range bounds one metric. Nil bounds impose no constraint.
type Range struct {
	Metric string
	Min    *float64
	Max    *float64
}

func (r Range) Empty() bool {
	return r.Min == nil && r.Max == nil
}

// Criteria is the full shape of a player stat search. Repositories translate
// it into store predicates; nothing in it is a raw field name.
type Criteria struct {
	Category         Category
	Ranges           []Range
	SeasonYear       string
	Position         string
	Name             string
	CommitmentStatus string

	// OnlyUserIDs restricts matching to a fixed set (dashboard "followed
	// players"). Empty means no restriction.
	OnlyUserIDs []string

	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// AddRange records a metric bound pair, dropping unknown metrics and fully
// empty ranges.
func (c *Criteria) AddRange(metric, rawMin, rawMax string) {
	if _, ok := Lookup(c.Category, metric); !ok {
		return
	}
	r := Range{
		Metric: metric,
		Min:    ParseBound(c.Category, metric, rawMin),
		Max:    ParseBound(c.Category, metric, rawMax),
	}
	if r.Empty() {
		return
	}
	c.Ranges = append(c.Ranges, r)
}

// Normalize clamps pagination and fills sort defaults. The default limit is
// the caller's choice: dashboards use 20, rosters 10.
func (c *Criteria) Normalize(defaultLimit int) {
	if c.Page < 1 {
		c.Page = 1
	}
	if c.Limit < 1 {
		c.Limit = defaultLimit
	}
	if c.SortOrder != "asc" {
		c.SortOrder = "desc"
	}
	if c.SortBy != "" {
		if _, ok := Lookup(c.Category, c.SortBy); !ok {
			c.SortBy = ""
		}
	}
}

func (c Criteria) Skip() int {
	return (c.Page - 1) * c.Limit
}

var yearOnly = regexp.MustCompile(`^\d{4}$`)
var yearRange = regexp.MustCompile(`^(\d{4})-\d{2}$`)

// NormalizeSeasonYear collapses a season label to its opening year:
// "2024" -> "2024", "2024-25" -> "2024". Anything else passes through
// unchanged.
func NormalizeSeasonYear(seasonYear string) string {
	seasonYear = strings.TrimSpace(seasonYear)
	if seasonYear == "" || yearOnly.MatchString(seasonYear) {
		return seasonYear
	}
	if m := yearRange.FindStringSubmatch(seasonYear); m != nil {
		return m[1]
	}
	return seasonYear
}

// SeasonMatches reports whether a record's season label belongs to the
// normalized target year.
func SeasonMatches(recordSeason, targetYear string) bool {
	if targetYear == "" {
		return true
	}
	return NormalizeSeasonYear(recordSeason) == targetYear
}

// NameTokens splits a free-text name query. One token means first OR last
// name substring; two mean first AND last. The asymmetry is load-bearing for
// existing callers, so it lives here rather than in each repository.
func NameTokens(name string) []string {
	fields := strings.Fields(strings.TrimSpace(name))
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return fields
}
