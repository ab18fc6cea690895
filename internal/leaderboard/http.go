package leaderboard

import (
	"fmt"
	"log/slog"
	"net/http"

	"candrive-backend/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events/{event_id}/leaderboard", h.fullBoard)
	r.Get("/events/{event_id}/daily-donors", h.dailyBoard)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/events/{event_id}/leaderboard/csv", h.exportCSV)
}

func (h *Handler) fullBoard(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	board, err := h.service.Full(r.Context(), eventID)
	if err != nil {
		h.logger.Error("failed to build leaderboard", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to build leaderboard")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, board)
}

func (h *Handler) dailyBoard(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	board, err := h.service.Daily(r.Context(), eventID)
	if err != nil {
		h.logger.Error("failed to build daily board", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to build daily board")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, board)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=leaderboard-event-%d.csv", eventID))

	if err := h.service.WriteFullCSV(r.Context(), eventID, w); err != nil {
		h.logger.Error("failed to export leaderboard csv", slog.String("error", err.Error()))
	}
}
