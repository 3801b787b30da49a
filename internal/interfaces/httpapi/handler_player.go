package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/nextinning/recruiting-api/internal/domain/statfilter"
	"github.com/nextinning/recruiting-api/internal/usecase"
)

type playerListResponse struct {
	Message    string        `json:"message"`
	Players    []playerDTO   `json:"players"`
	Pagination paginationDTO `json:"pagination"`
}

type playerStatsResponse struct {
	Message  string              `json:"message"`
	PlayerID string              `json:"playerId"`
	Batting  []battingRecordDTO  `json:"battingStats"`
	Pitching []pitchingRecordDTO `json:"pitchingStats"`
	Fielding []fieldingRecordDTO `json:"fieldingStats"`
}

func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchPlayers")
	defer span.End()

	criteria, err := criteriaFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.playerService.Search(ctx, criteria)
	if err != nil {
		h.logger.WarnContext(ctx, "player search failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, playerListResponse{
		Message:    "players retrieved successfully",
		Players:    h.playersToDTO(page.Players),
		Pagination: paginationFor(page.Page, page.Limit, page.TotalCount, len(page.Players)),
	})
}

func (h *Handler) ListUncommittedPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUncommittedPlayers")
	defer span.End()

	criteria, err := criteriaFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.playerService.SearchUncommitted(ctx, criteria)
	if err != nil {
		h.logger.WarnContext(ctx, "uncommitted player search failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, playerListResponse{
		Message:    "uncommitted players retrieved successfully",
		Players:    h.playersToDTO(page.Players),
		Pagination: paginationFor(page.Page, page.Limit, page.TotalCount, len(page.Players)),
	})
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID := r.PathValue("playerID")
	u, err := h.playerService.GetProfile(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	counts, err := h.followService.Counts(ctx, u.ID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player follow counts failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, struct {
		Message   string    `json:"message"`
		Player    playerDTO `json:"player"`
		Followers int       `json:"followers"`
	}{
		Message:   "player retrieved successfully",
		Player:    h.playerToDTO(u),
		Followers: counts.Followers,
	})
}

func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStats")
	defer span.End()

	playerID := r.PathValue("playerID")
	season := r.URL.Query().Get("season")

	stats, err := h.playerService.GetStats(ctx, playerID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get player stats failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	resp := playerStatsResponse{
		Message:  "player stats retrieved successfully",
		PlayerID: stats.PlayerID,
	}
	for _, rec := range stats.Batting {
		resp.Batting = append(resp.Batting, battingToDTO(rec))
	}
	for _, rec := range stats.Pitching {
		resp.Pitching = append(resp.Pitching, pitchingToDTO(rec))
	}
	for _, rec := range stats.Fielding {
		resp.Fielding = append(resp.Fielding, fieldingToDTO(rec))
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

// criteriaFromQuery builds a stat filter from the flat query parameter set:
// statsType picks the category, then every registered metric is probed for
// its <metric>_min / <metric>_max pair. Unknown metrics and malformed bounds
// are ignored rather than rejected.
func criteriaFromQuery(r *http.Request) (statfilter.Criteria, error) {
	query := r.URL.Query()

	rawCategory := query.Get("statsType")
	if strings.TrimSpace(rawCategory) == "" {
		rawCategory = string(statfilter.CategoryBatting)
	}
	category, err := statfilter.ParseCategory(rawCategory)
	if err != nil {
		return statfilter.Criteria{}, fmt.Errorf("%w: %s", usecase.ErrInvalidInput, err.Error())
	}

	criteria := statfilter.Criteria{
		Category:         category,
		SeasonYear:       query.Get("seasonYear"),
		Position:         query.Get("position"),
		Name:             query.Get("name"),
		CommitmentStatus: query.Get("commitmentStatus"),
		SortBy:           query.Get("sortBy"),
		SortOrder:        query.Get("sortOrder"),
		Page:             queryInt(r, "page"),
		Limit:            queryInt(r, "limit"),
	}

	for _, metric := range statfilter.Metrics(category) {
		criteria.AddRange(metric, query.Get(metric+"_min"), query.Get(metric+"_max"))
	}

	return criteria, nil
}
