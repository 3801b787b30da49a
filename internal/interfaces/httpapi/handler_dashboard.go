package httpapi

import (
	"fmt"
	"net/http"

	"github.com/nextinning/recruiting-api/internal/usecase"
)

type dashboardResponse struct {
	Message         string      `json:"message"`
	FollowedPlayers []playerDTO `json:"followedPlayers"`
	Suggestions     []playerDTO `json:"suggestions"`
	TopPlayers      []playerDTO `json:"topPlayers"`
	FollowingCount  int         `json:"followingCount"`
	FollowerCount   int         `json:"followerCount"`
}

func (h *Handler) GetCoachDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCoachDashboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	dashboard, err := h.dashboardService.ForCoach(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "coach dashboard failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, h.dashboardToResponse(dashboard))
}

func (h *Handler) GetScoutDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScoutDashboard")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	dashboard, err := h.dashboardService.ForScout(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "scout dashboard failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, h.dashboardToResponse(dashboard))
}

func (h *Handler) dashboardToResponse(dashboard usecase.Dashboard) dashboardResponse {
	return dashboardResponse{
		Message:         "dashboard retrieved successfully",
		FollowedPlayers: h.playersToDTO(dashboard.FollowedPlayers),
		Suggestions:     h.playersToDTO(dashboard.Suggestions),
		TopPlayers:      h.playersToDTO(dashboard.TopPlayers),
		FollowingCount:  dashboard.FollowingCount,
		FollowerCount:   dashboard.FollowerCount,
	}
}
