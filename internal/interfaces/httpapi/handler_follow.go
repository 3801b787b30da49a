package httpapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/nextinning/recruiting-api/internal/usecase"
)

type createFollowRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
}

func (h *Handler) CreateFollow(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateFollow")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createFollowRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	edge, err := h.followService.Follow(ctx, principal.UserID, req.PlayerID)
	if err != nil {
		h.logger.WarnContext(ctx, "create follow failed", "user_id", principal.UserID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, struct {
		Message  string `json:"message"`
		PlayerID string `json:"playerId"`
		FollowID string `json:"followId"`
	}{
		Message:  "player followed successfully",
		PlayerID: edge.FollowingID,
		FollowID: edge.ID,
	})
}

func (h *Handler) DeleteFollow(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteFollow")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	playerID := r.PathValue("playerID")
	if err := h.followService.Unfollow(ctx, principal.UserID, playerID); err != nil {
		h.logger.WarnContext(ctx, "delete follow failed", "user_id", principal.UserID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, messageResponse{Message: "player unfollowed successfully"})
}
