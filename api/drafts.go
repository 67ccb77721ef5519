package api

import (
	"log/slog"
	"net/http"

	"github.com/zmikicdroin/jobtracker/internal/ai"
	"github.com/zmikicdroin/jobtracker/pkg/repository"
)

type DraftsHandler struct {
	appRepo repository.ApplicationRepo
	engine  *ai.Engine
}

// NewDraftsHandler creates a drafts handler. A nil engine disables the
// feature; the endpoint then answers 503.
func NewDraftsHandler(ar repository.ApplicationRepo, engine *ai.Engine) *DraftsHandler {
	return &DraftsHandler{appRepo: ar, engine: engine}
}

func (h *DraftsHandler) Draft(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Draft generation is not configured")
		return
	}

	userID, ok := UserID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Token is invalid")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid application id")
		return
	}

	app, err := h.appRepo.GetByID(r.Context(), userID, id)
	if err != nil {
		logger.Error("failed to fetch application", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Failed to generate draft")
		return
	}
	if app == nil {
		writeMessage(w, http.StatusNotFound, "Application not found")
		return
	}

	draft, err := h.engine.DraftCoverLetter(r.Context(), Username(r), app)
	if err != nil {
		logger.Error("draft generation failed", slog.Any("err", err))
		writeMessage(w, http.StatusServiceUnavailable, "Draft generation is unavailable")
		return
	}

	writeJSON(w, draft, http.StatusOK)
}
