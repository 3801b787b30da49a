package statfilter

import (
	"fmt"
	"strconv"
	"strings"
)

// Category selects which statistic family a search filters and sorts on.
type Category string

const (
	CategoryBatting  Category = "batting"
	CategoryPitching Category = "pitching"
	CategoryFielding Category = "fielding"
)

var AllCategories = map[Category]struct{}{
	CategoryBatting:  {},
	CategoryPitching: {},
	CategoryFielding: {},
}

// Kind tells the parser how a metric bound should be read from a query string.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
)

// Spec describes one filterable metric: the storage column it maps to and how
// its bounds parse. Every predicate is built from this table and nothing else,
// so request input never reaches a field name.
type Spec struct {
	Column string
	Kind   Kind
}

var registry = map[Category]map[string]Spec{
	CategoryBatting: {
		"batting_average":     {Column: "batting_average", Kind: KindFloat},
		"on_base_percentage":  {Column: "on_base_percentage", Kind: KindFloat},
		"slugging_percentage": {Column: "slugging_percentage", Kind: KindFloat},
		"home_runs":           {Column: "home_runs", Kind: KindInt},
		"rbi":                 {Column: "rbi", Kind: KindInt},
		"hits":                {Column: "hits", Kind: KindInt},
		"runs":                {Column: "runs", Kind: KindInt},
		"doubles":             {Column: "doubles", Kind: KindInt},
		"triples":             {Column: "triples", Kind: KindInt},
		"walks":               {Column: "walks", Kind: KindInt},
		"strikeouts":          {Column: "strikeouts", Kind: KindInt},
		"stolen_bases":        {Column: "stolen_bases", Kind: KindInt},
	},
	CategoryPitching: {
		"era":                {Column: "era", Kind: KindFloat},
		"wins":               {Column: "wins", Kind: KindInt},
		"losses":             {Column: "losses", Kind: KindInt},
		"strikeouts_pitched": {Column: "strikeouts_pitched", Kind: KindInt},
		"innings_pitched":    {Column: "innings_pitched", Kind: KindFloat},
		"walks_allowed":      {Column: "walks_allowed", Kind: KindInt},
		"hits_allowed":       {Column: "hits_allowed", Kind: KindInt},
		"saves":              {Column: "saves", Kind: KindInt},
	},
	CategoryFielding: {
		"fielding_percentage": {Column: "fielding_percentage", Kind: KindFloat},
		"errors":              {Column: "errors", Kind: KindInt},
		"putouts":             {Column: "putouts", Kind: KindInt},
		"assists":             {Column: "assists", Kind: KindInt},
		"double_plays":        {Column: "double_plays", Kind: KindInt},
	},
}

// lowerIsBetter metrics flip the human-facing sort-order labels only; filter
// bounds stay literal >= / <= regardless.
var lowerIsBetter = map[Category]map[string]bool{
	CategoryPitching: {"era": true},
	CategoryFielding: {"errors": true},
}

func Lookup(category Category, metric string) (Spec, bool) {
	metrics, ok := registry[category]
	if !ok {
		return Spec{}, false
	}
	spec, ok := metrics[strings.TrimSpace(metric)]
	return spec, ok
}

// Metrics lists the filterable metric names of a category.
func Metrics(category Category) []string {
	metrics := registry[category]
	out := make([]string, 0, len(metrics))
	for name := range metrics {
		out = append(out, name)
	}
	return out
}

func ParseCategory(v string) (Category, error) {
	category := Category(strings.ToLower(strings.TrimSpace(v)))
	if _, ok := AllCategories[category]; !ok {
		return "", fmt.Errorf("invalid stats type %q: valid values are batting, pitching, fielding", v)
	}
	return category, nil
}

// LowerIsBetter reports whether smaller values of the metric rank higher.
func LowerIsBetter(category Category, metric string) bool {
	return lowerIsBetter[category][strings.TrimSpace(metric)]
}

// ParseBound reads a raw min/max query value for a metric. An empty or
// malformed value imposes no constraint: the caller gets nil, never an error,
// so a junk query string cannot take down a search.
func ParseBound(category Category, metric, raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	spec, ok := Lookup(category, metric)
	if !ok {
		return nil
	}

	switch spec.Kind {
	case KindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil
		}
		f := float64(v)
		return &f
	default:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return &v
	}
}
