package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nextinning/recruiting-api/internal/domain/statfilter"
	"github.com/nextinning/recruiting-api/internal/domain/user"
)

// UserRepository holds users in process memory. It backs tests and local
// development, interpreting stat criteria with the same semantics as the
// Postgres implementation.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]user.User
	order []string
	now   func() time.Time
}

func NewUserRepository(users []user.User) *UserRepository {
	r := &UserRepository{
		users: make(map[string]user.User, len(users)),
		now:   time.Now,
	}
	for _, u := range users {
		r.users[u.ID] = u
		r.order = append(r.order, u.ID)
	}
	return r
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	return u, ok, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		u := r.users[id]
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, true, nil
		}
	}

	return user.User{}, false, nil
}

func (r *UserRepository) GetPlayerByNameAndTeam(_ context.Context, firstName, lastName, teamID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		u := r.users[id]
		if u.Role != user.RolePlayer || u.TeamID != teamID {
			continue
		}
		if strings.EqualFold(u.FirstName, strings.TrimSpace(firstName)) &&
			strings.EqualFold(u.LastName, strings.TrimSpace(lastName)) {
			return u, true, nil
		}
	}

	return user.User{}, false, nil
}

func (r *UserRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.ID]; exists {
		return user.User{}, fmt.Errorf("user %s already exists", u.ID)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now()
	}
	u.UpdatedAt = u.CreatedAt

	r.users[u.ID] = u
	r.order = append(r.order, u.ID)

	return u, nil
}

func (r *UserRepository) Update(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[u.ID]
	if !ok {
		return user.User{}, fmt.Errorf("user %s not found", u.ID)
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = r.now()
	r.users[u.ID] = u

	return u, nil
}

func (r *UserRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, userID)
	for i, id := range r.order {
		if id == userID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

func (r *UserRepository) Search(_ context.Context, criteria statfilter.Criteria) ([]user.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]user.User, 0)
	for _, id := range r.order {
		u := r.users[id]
		if !matchesCriteria(u, criteria) {
			continue
		}
		matched = append(matched, u)
	}

	sortUsers(matched, criteria)

	total := len(matched)
	return pageOf(matched, criteria.Skip(), criteria.Limit), total, nil
}

func (r *UserRepository) ListByTeam(_ context.Context, teamID string, filter user.RosterFilter) ([]user.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]user.User, 0)
	for _, id := range r.order {
		u := r.users[id]
		if !isListablePlayer(u) || u.TeamID != teamID {
			continue
		}
		if filter.Position != "" && !strings.EqualFold(u.Position, filter.Position) {
			continue
		}
		if filter.Search != "" && !matchesName(u, filter.Search) {
			continue
		}
		if filter.SeasonYear != "" && !hasSeason(u, filter.SeasonYear) {
			continue
		}
		matched = append(matched, u)
	}

	sort.SliceStable(matched, func(i, j int) bool { return lessByName(matched[i], matched[j]) })

	total := len(matched)
	return pageOf(matched, (filter.Page-1)*filter.Limit, filter.Limit), total, nil
}

func (r *UserRepository) ListTopByCompleteness(_ context.Context, excludeIDs []string, limit int) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	matched := make([]user.User, 0)
	for _, id := range r.order {
		u := r.users[id]
		if !isListablePlayer(u) {
			continue
		}
		if _, skip := excluded[u.ID]; skip {
			continue
		}
		matched = append(matched, u)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ProfileCompleteness > matched[j].ProfileCompleteness
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func (r *UserRepository) UpdateBilling(_ context.Context, userID string, update user.BillingUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	if update.StripeCustomerID != "" {
		u.StripeCustomerID = update.StripeCustomerID
	}
	u.SubscriptionStatus = update.SubscriptionStatus
	u.SubscriptionPlan = update.SubscriptionPlan
	if !update.SubscriptionEndAt.IsZero() {
		u.SubscriptionEndAt = update.SubscriptionEndAt
	}
	u.UpdatedAt = r.now()
	r.users[userID] = u

	return nil
}

func (r *UserRepository) SaveProfileCompleteness(_ context.Context, userID string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	u.ProfileCompleteness = score
	u.UpdatedAt = r.now()
	r.users[userID] = u

	return nil
}

func isListablePlayer(u user.User) bool {
	return u.Role == user.RolePlayer &&
		u.RegistrationStatus == user.RegistrationApproved &&
		u.IsActive
}

func matchesCriteria(u user.User, criteria statfilter.Criteria) bool {
	if !isListablePlayer(u) {
		return false
	}
	if criteria.CommitmentStatus != "" && string(u.CommitmentStatus) != criteria.CommitmentStatus {
		return false
	}
	if criteria.Position != "" && !strings.EqualFold(u.Position, criteria.Position) {
		return false
	}
	if criteria.Name != "" && !matchesName(u, criteria.Name) {
		return false
	}
	if len(criteria.OnlyUserIDs) > 0 {
		found := false
		for _, id := range criteria.OnlyUserIDs {
			if id == u.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, rng := range criteria.Ranges {
		value := metricValue(u, criteria.Category, rng.Metric, criteria.SeasonYear)
		if value == nil {
			return false
		}
		if rng.Min != nil && *value < *rng.Min {
			return false
		}
		if rng.Max != nil && *value > *rng.Max {
			return false
		}
	}
	if len(criteria.Ranges) == 0 && criteria.SeasonYear != "" && !hasSeason(u, criteria.SeasonYear) {
		return false
	}

	return true
}

func matchesName(u user.User, name string) bool {
	tokens := statfilter.NameTokens(name)
	if len(tokens) == 0 {
		return true
	}
	first := strings.ToLower(u.FirstName)
	last := strings.ToLower(u.LastName)
	if len(tokens) == 2 {
		return strings.Contains(first, strings.ToLower(tokens[0])) &&
			strings.Contains(last, strings.ToLower(tokens[1]))
	}
	token := strings.ToLower(tokens[0])
	return strings.Contains(first, token) || strings.Contains(last, token)
}

func hasSeason(u user.User, seasonYear string) bool {
	for _, rec := range u.BattingStats {
		if statfilter.SeasonMatches(rec.SeasonYear, seasonYear) {
			return true
		}
	}
	for _, rec := range u.PitchingStats {
		if statfilter.SeasonMatches(rec.SeasonYear, seasonYear) {
			return true
		}
	}
	for _, rec := range u.FieldingStats {
		if statfilter.SeasonMatches(rec.SeasonYear, seasonYear) {
			return true
		}
	}
	return false
}

// metricValue resolves the metric against the season-filtered record, or the
// latest record when no season is requested. Nil means no usable record.
func metricValue(u user.User, category statfilter.Category, metric, seasonYear string) *float64 {
	spec, ok := statfilter.Lookup(category, metric)
	if !ok {
		return nil
	}

	switch category {
	case statfilter.CategoryBatting:
		for _, rec := range u.BattingStats {
			if seasonRecordWanted(rec.SeasonYear, rec.Latest, seasonYear) {
				v := battingColumn(rec, spec.Column)
				return &v
			}
		}
	case statfilter.CategoryPitching:
		for _, rec := range u.PitchingStats {
			if seasonRecordWanted(rec.SeasonYear, rec.Latest, seasonYear) {
				v := pitchingColumn(rec, spec.Column)
				return &v
			}
		}
	case statfilter.CategoryFielding:
		for _, rec := range u.FieldingStats {
			if seasonRecordWanted(rec.SeasonYear, rec.Latest, seasonYear) {
				v := fieldingColumn(rec, spec.Column)
				return &v
			}
		}
	}

	return nil
}

func seasonRecordWanted(recordSeason string, latest bool, seasonYear string) bool {
	if seasonYear == "" {
		return latest
	}
	return statfilter.SeasonMatches(recordSeason, seasonYear)
}

func battingColumn(rec user.BattingRecord, column string) float64 {
	switch column {
	case "batting_average":
		return rec.BattingAverage
	case "on_base_percentage":
		return rec.OnBasePercentage
	case "slugging_percentage":
		return rec.SluggingPercentage
	case "home_runs":
		return float64(rec.HomeRuns)
	case "rbi":
		return float64(rec.RBI)
	case "hits":
		return float64(rec.Hits)
	case "runs":
		return float64(rec.Runs)
	case "doubles":
		return float64(rec.Doubles)
	case "triples":
		return float64(rec.Triples)
	case "walks":
		return float64(rec.Walks)
	case "strikeouts":
		return float64(rec.Strikeouts)
	case "stolen_bases":
		return float64(rec.StolenBases)
	}
	return 0
}

func pitchingColumn(rec user.PitchingRecord, column string) float64 {
	switch column {
	case "era":
		return rec.ERA
	case "wins":
		return float64(rec.Wins)
	case "losses":
		return float64(rec.Losses)
	case "strikeouts_pitched":
		return float64(rec.StrikeoutsPitched)
	case "innings_pitched":
		return rec.InningsPitched
	case "walks_allowed":
		return float64(rec.WalksAllowed)
	case "hits_allowed":
		return float64(rec.HitsAllowed)
	case "saves":
		return float64(rec.Saves)
	}
	return 0
}

func fieldingColumn(rec user.FieldingRecord, column string) float64 {
	switch column {
	case "fielding_percentage":
		return rec.FieldingPercentage
	case "errors":
		return float64(rec.Errors)
	case "putouts":
		return float64(rec.Putouts)
	case "assists":
		return float64(rec.Assists)
	case "double_plays":
		return float64(rec.DoublePlays)
	}
	return 0
}

func sortUsers(users []user.User, criteria statfilter.Criteria) {
	if criteria.SortBy == "" {
		sort.SliceStable(users, func(i, j int) bool { return lessByName(users[i], users[j]) })
		return
	}

	ascending := criteria.SortOrder == "asc"
	sort.SliceStable(users, func(i, j int) bool {
		left := metricValue(users[i], criteria.Category, criteria.SortBy, criteria.SeasonYear)
		right := metricValue(users[j], criteria.Category, criteria.SortBy, criteria.SeasonYear)

		// Players with no record for the sort metric sink to the tail.
		if left == nil {
			return false
		}
		if right == nil {
			return true
		}
		if ascending {
			return *left < *right
		}
		return *left > *right
	})
}

func lessByName(a, b user.User) bool {
	if a.LastName != b.LastName {
		return a.LastName < b.LastName
	}
	if a.FirstName != b.FirstName {
		return a.FirstName < b.FirstName
	}
	return a.ID < b.ID
}

func pageOf(users []user.User, skip, limit int) []user.User {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(users) {
		return []user.User{}
	}
	end := len(users)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}

	out := make([]user.User, 0, end-skip)
	out = append(out, users[skip:end]...)

	return out
}
