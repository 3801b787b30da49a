package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/nextinning/recruiting-api/internal/domain/statfilter"
	"github.com/nextinning/recruiting-api/internal/domain/team"
	"github.com/nextinning/recruiting-api/internal/domain/user"
	"github.com/nextinning/recruiting-api/internal/platform/id"
)

const (
	importDefaultWorkers = 4
	importMaxWorkers     = 8
)

// ImportSummary reports what a CSV import did. Errors carries one line per
// failed player group; rows with no usable identity are counted as skipped.
type ImportSummary struct {
	Total        int      `json:"total"`
	Created      int      `json:"created"`
	Updated      int      `json:"updated"`
	TeamsCreated int      `json:"teamsCreated"`
	Skipped      int      `json:"skipped"`
	Errors       []string `json:"errors,omitempty"`
}

type ImportService struct {
	userRepo   user.Repository
	teamRepo   team.Repository
	idGen      id.Generator
	logger     *slog.Logger
	maxWorkers int
	now        func() time.Time
}

func NewImportService(userRepo user.Repository, teamRepo team.Repository, idGen id.Generator, logger *slog.Logger) *ImportService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ImportService{
		userRepo:   userRepo,
		teamRepo:   teamRepo,
		idGen:      idGen,
		logger:     logger,
		maxWorkers: importDefaultWorkers,
		now:        time.Now,
	}
}

// WithMaxWorkers sets the pool size for row imports. Values outside
// [1, importMaxWorkers] are clamped when the pool is built.
func (s *ImportService) WithMaxWorkers(n int) *ImportService {
	if n > 0 {
		s.maxWorkers = n
	}
	return s
}

// importRow is one parsed CSV line keyed by header name.
type importRow struct {
	line   int
	fields map[string]string
}

func (r importRow) get(key string) string {
	return strings.TrimSpace(r.fields[key])
}

// playerGroup is every row of one (team, first, last) identity. A player's
// seasons may span multiple lines; they are merged in one write.
type playerGroup struct {
	teamName  string
	firstName string
	lastName  string
	rows      []importRow
}

// ImportPlayers ingests a CSV of player stat rows. Rows are grouped per
// player so each player is written exactly once, then the groups run on a
// bounded worker pool. The import is best-effort: a bad group is reported
// and the rest proceed.
func (s *ImportService) ImportPlayers(ctx context.Context, r io.Reader) (ImportSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportPlayers")
	defer span.End()

	rows, skipped, err := parseImportCSV(r)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	summary := ImportSummary{
		Total:   len(rows) + skipped,
		Skipped: skipped,
	}

	groups := groupImportRows(rows, &summary)
	if len(groups) == 0 {
		return summary, nil
	}

	workerCount := s.maxWorkers
	if workerCount < 1 {
		workerCount = importDefaultWorkers
	}
	if workerCount > importMaxWorkers {
		workerCount = importMaxWorkers
	}
	if workerCount > len(groups) {
		workerCount = len(groups)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("create import worker pool: %w", err)
	}
	defer pool.Release()

	var (
		created      atomic.Int32
		updated      atomic.Int32
		teamsCreated atomic.Int32

		errMu      sync.Mutex
		groupErrs  []string
		workers    sync.WaitGroup
	)

	for _, group := range groups {
		group := group
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			wasCreated, teamWasCreated, groupErr := s.importPlayerGroup(ctx, group)
			if groupErr != nil {
				errMu.Lock()
				groupErrs = append(groupErrs, fmt.Sprintf("%s %s (%s): %v", group.firstName, group.lastName, group.teamName, groupErr))
				errMu.Unlock()
				return
			}
			if teamWasCreated {
				teamsCreated.Add(1)
			}
			if wasCreated {
				created.Add(1)
			} else {
				updated.Add(1)
			}
		}); err != nil {
			workers.Done()
			return ImportSummary{}, fmt.Errorf("submit import task: %w", err)
		}
	}

	workers.Wait()

	sort.Strings(groupErrs)
	summary.Created = int(created.Load())
	summary.Updated = int(updated.Load())
	summary.TeamsCreated = int(teamsCreated.Load())
	summary.Errors = groupErrs

	s.logger.InfoContext(ctx, "player import finished",
		slog.Int("total", summary.Total),
		slog.Int("created", summary.Created),
		slog.Int("updated", summary.Updated),
		slog.Int("teams_created", summary.TeamsCreated),
		slog.Int("skipped", summary.Skipped),
		slog.Int("errors", len(summary.Errors)))

	return summary, nil
}

func (s *ImportService) importPlayerGroup(ctx context.Context, group playerGroup) (created bool, teamCreated bool, err error) {
	t, teamCreated, err := s.teamRepo.GetOrCreateByName(ctx, group.teamName)
	if err != nil {
		return false, false, fmt.Errorf("get or create team: %w", err)
	}

	existing, exists, err := s.userRepo.GetPlayerByNameAndTeam(ctx, group.firstName, group.lastName, t.ID)
	if err != nil {
		return false, teamCreated, fmt.Errorf("lookup player: %w", err)
	}

	now := s.now().UTC()
	u := existing
	if !exists {
		userID, idErr := s.idGen.NewID()
		if idErr != nil {
			return false, teamCreated, fmt.Errorf("generate player id: %w", idErr)
		}
		u = user.User{
			ID:                 userID,
			FirstName:          group.firstName,
			LastName:           group.lastName,
			Role:               user.RolePlayer,
			TeamID:             t.ID,
			RegistrationStatus: user.RegistrationApproved,
			IsActive:           true,
			CommitmentStatus:   user.CommitmentUncommitted,
			CreatedAt:          now,
		}
	}

	for _, row := range group.rows {
		if pos := row.get("position"); pos != "" {
			u.Position = pos
		}
		if class := row.get("player_class"); class != "" {
			u.PlayerClass = class
		}
		if state := row.get("state"); state != "" {
			u.State = state
		}
		applyStatRow(&u, row)
	}

	markLatestSeasons(&u)
	u.ProfileCompleteness = u.CompletenessScore()
	u.UpdatedAt = now

	if !exists {
		if _, createErr := s.userRepo.Create(ctx, u); createErr != nil {
			return false, teamCreated, fmt.Errorf("create player: %w", createErr)
		}
		return true, teamCreated, nil
	}
	if _, updateErr := s.userRepo.Update(ctx, u); updateErr != nil {
		return false, teamCreated, fmt.Errorf("update player: %w", updateErr)
	}

	return false, teamCreated, nil
}

// parseImportCSV reads every record, mapping columns by the header line.
// Records with the wrong field count are counted as skipped, not fatal.
func parseImportCSV(r io.Reader) ([]importRow, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("csv body is empty")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %v", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(name))
	}

	var rows []importRow
	skipped := 0
	line := 1
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		line++
		if readErr != nil {
			skipped++
			continue
		}
		if len(record) != len(columns) {
			skipped++
			continue
		}

		fields := make(map[string]string, len(columns))
		for i, value := range record {
			fields[columns[i]] = value
		}
		rows = append(rows, importRow{line: line, fields: fields})
	}

	return rows, skipped, nil
}

func groupImportRows(rows []importRow, summary *ImportSummary) []playerGroup {
	index := make(map[string]int)
	var groups []playerGroup

	for _, row := range rows {
		teamName := row.get("team")
		firstName := row.get("first_name")
		lastName := row.get("last_name")
		if teamName == "" || firstName == "" {
			summary.Skipped++
			continue
		}

		key := strings.ToLower(teamName + "\x00" + firstName + "\x00" + lastName)
		if i, ok := index[key]; ok {
			groups[i].rows = append(groups[i].rows, row)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, playerGroup{
			teamName:  teamName,
			firstName: firstName,
			lastName:  lastName,
			rows:      []importRow{row},
		})
	}

	return groups
}

// applyStatRow merges one season line into the player's stat history,
// replacing an existing record for the same season and category.
func applyStatRow(u *user.User, row importRow) {
	season := statfilter.NormalizeSeasonYear(row.get("season_year"))
	if season == "" {
		return
	}

	if hasAnyColumn(row, "at_bats", "hits", "home_runs", "batting_average") {
		rec := user.BattingRecord{
			SeasonYear:         season,
			GamesPlayed:        intColumn(row, "games_played"),
			AtBats:             intColumn(row, "at_bats"),
			Runs:               intColumn(row, "runs"),
			Hits:               intColumn(row, "hits"),
			Doubles:            intColumn(row, "doubles"),
			Triples:            intColumn(row, "triples"),
			HomeRuns:           intColumn(row, "home_runs"),
			RBI:                intColumn(row, "rbi"),
			Walks:              intColumn(row, "walks"),
			Strikeouts:         intColumn(row, "strikeouts"),
			StolenBases:        intColumn(row, "stolen_bases"),
			BattingAverage:     floatColumn(row, "batting_average"),
			OnBasePercentage:   floatColumn(row, "on_base_percentage"),
			SluggingPercentage: floatColumn(row, "slugging_percentage"),
		}
		replaced := false
		for i := range u.BattingStats {
			if u.BattingStats[i].SeasonYear == season {
				u.BattingStats[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			u.BattingStats = append(u.BattingStats, rec)
		}
	}

	if hasAnyColumn(row, "era", "wins", "innings_pitched", "strikeouts_pitched") {
		rec := user.PitchingRecord{
			SeasonYear:        season,
			Wins:              intColumn(row, "wins"),
			Losses:            intColumn(row, "losses"),
			ERA:               floatColumn(row, "era"),
			GamesPitched:      intColumn(row, "games_pitched"),
			Saves:             intColumn(row, "saves"),
			InningsPitched:    floatColumn(row, "innings_pitched"),
			HitsAllowed:       intColumn(row, "hits_allowed"),
			WalksAllowed:      intColumn(row, "walks_allowed"),
			StrikeoutsPitched: intColumn(row, "strikeouts_pitched"),
		}
		replaced := false
		for i := range u.PitchingStats {
			if u.PitchingStats[i].SeasonYear == season {
				u.PitchingStats[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			u.PitchingStats = append(u.PitchingStats, rec)
		}
	}

	if hasAnyColumn(row, "putouts", "assists", "fielding_percentage") {
		rec := user.FieldingRecord{
			SeasonYear:         season,
			Putouts:            intColumn(row, "putouts"),
			Assists:            intColumn(row, "assists"),
			Errors:             intColumn(row, "errors"),
			FieldingPercentage: floatColumn(row, "fielding_percentage"),
			DoublePlays:        intColumn(row, "double_plays"),
		}
		replaced := false
		for i := range u.FieldingStats {
			if u.FieldingStats[i].SeasonYear == season {
				u.FieldingStats[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			u.FieldingStats = append(u.FieldingStats, rec)
		}
	}
}

// markLatestSeasons re-flags the most recent season in every category after
// a merge, so exactly one record per category carries the latest flag.
func markLatestSeasons(u *user.User) {
	latestBatting := latestSeason(func(yield func(string)) {
		for _, rec := range u.BattingStats {
			yield(rec.SeasonYear)
		}
	})
	for i := range u.BattingStats {
		u.BattingStats[i].Latest = u.BattingStats[i].SeasonYear == latestBatting
	}

	latestPitching := latestSeason(func(yield func(string)) {
		for _, rec := range u.PitchingStats {
			yield(rec.SeasonYear)
		}
	})
	for i := range u.PitchingStats {
		u.PitchingStats[i].Latest = u.PitchingStats[i].SeasonYear == latestPitching
	}

	latestFielding := latestSeason(func(yield func(string)) {
		for _, rec := range u.FieldingStats {
			yield(rec.SeasonYear)
		}
	})
	for i := range u.FieldingStats {
		u.FieldingStats[i].Latest = u.FieldingStats[i].SeasonYear == latestFielding
	}
}

func latestSeason(each func(yield func(string))) string {
	latest := ""
	latestYear := -1
	each(func(season string) {
		year, err := strconv.Atoi(statfilter.NormalizeSeasonYear(season))
		if err != nil {
			return
		}
		if year > latestYear {
			latestYear = year
			latest = season
		}
	})
	return latest
}

func hasAnyColumn(row importRow, keys ...string) bool {
	for _, key := range keys {
		if row.get(key) != "" {
			return true
		}
	}
	return false
}

func intColumn(row importRow, key string) int {
	v, err := strconv.Atoi(row.get(key))
	if err != nil {
		return 0
	}
	return v
}

func floatColumn(row importRow, key string) float64 {
	v, err := strconv.ParseFloat(row.get(key), 64)
	if err != nil {
		return 0
	}
	return v
}
