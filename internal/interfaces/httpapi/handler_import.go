package httpapi

import (
	"net/http"

	"github.com/nextinning/recruiting-api/internal/usecase"
)

type importResponse struct {
	Message string                `json:"message"`
	Summary usecase.ImportSummary `json:"summary"`
}

// ImportPlayers ingests a CSV request body of player stat rows. The route is
// guarded by the internal token middleware; the body streams straight into
// the import service.
func (h *Handler) ImportPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportPlayers")
	defer span.End()

	summary, err := h.importService.ImportPlayers(ctx, r.Body)
	if err != nil {
		h.logger.ErrorContext(ctx, "player import failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, importResponse{
		Message: "player import finished",
		Summary: summary,
	})
}
