package httpapi

import (
	"net/http"

	"github.com/nextinning/recruiting-api/internal/domain/team"
	"github.com/nextinning/recruiting-api/internal/domain/user"
)

type teamDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LogoURL  string `json:"logoUrl,omitempty"`
	Location string `json:"location,omitempty"`
	Division string `json:"division,omitempty"`
	Region   string `json:"region,omitempty"`
}

type teamListResponse struct {
	Message    string        `json:"message"`
	Teams      []teamDTO     `json:"teams"`
	Pagination paginationDTO `json:"pagination"`
}

type rosterResponse struct {
	Message    string        `json:"message"`
	Team       teamDTO       `json:"team"`
	Players    []playerDTO   `json:"players"`
	Pagination paginationDTO `json:"pagination"`
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	page, err := h.teamService.List(ctx, team.ListFilter{
		Search: r.URL.Query().Get("search"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(page.Teams))
	for _, t := range page.Teams {
		items = append(items, h.teamToDTO(t))
	}

	writeJSON(ctx, w, http.StatusOK, teamListResponse{
		Message:    "teams retrieved successfully",
		Teams:      items,
		Pagination: paginationFor(page.Page, page.Limit, page.TotalCount, len(items)),
	})
}

func (h *Handler) GetTeamRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamRoster")
	defer span.End()

	teamID := r.PathValue("teamID")
	page, err := h.teamService.GetRoster(ctx, teamID, user.RosterFilter{
		Position:   r.URL.Query().Get("position"),
		Search:     r.URL.Query().Get("search"),
		SeasonYear: r.URL.Query().Get("seasonYear"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get team roster failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, rosterResponse{
		Message:    "team roster retrieved successfully",
		Team:       h.teamToDTO(page.Team),
		Players:    h.playersToDTO(page.Players),
		Pagination: paginationFor(page.Page, page.Limit, page.TotalCount, len(page.Players)),
	})
}

func (h *Handler) teamToDTO(t team.Team) teamDTO {
	return teamDTO{
		ID:       t.ID,
		Name:     t.Name,
		LogoURL:  resolveMediaURL(h.mediaBaseURL, t.LogoURL),
		Location: t.Location,
		Division: t.Division,
		Region:   t.Region,
	}
}
