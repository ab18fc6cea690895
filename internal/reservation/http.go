package reservation

import (
	"errors"
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

// RegisterRoutes wires the public endpoints; reserving a street is the one
// public write in the whole API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events/{event_id}/reservations", h.listReservations)
	r.Post("/events/{event_id}/reservations", h.createReservation)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/reservations/{reservation_id}", h.deleteReservation)
	r.Get("/events/{event_id}/reservations/export", h.exportCSV)
}

func (h *Handler) listReservations(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	reservations, err := h.service.List(r.Context(), eventID)
	if err != nil {
		h.logger.Error("failed to list reservations", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to list reservations")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, reservations)
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var input CreateReservationInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	created, err := h.service.Create(r.Context(), eventID, input)
	if err != nil {
		var taken *StreetTakenError
		switch {
		case errors.Is(err, ErrNameRequired), errors.Is(err, ErrStreetRequired):
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &taken):
			httputil.RespondWithError(w, http.StatusConflict, taken.Error())
		default:
			h.logger.Error("failed to create reservation", slog.String("error", err.Error()))
			httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to create reservation")
		}
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) deleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "reservation_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid reservation ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			httputil.RespondWithError(w, http.StatusNotFound, "Reservation not found")
			return
		}
		h.logger.Error("failed to delete reservation", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to delete reservation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	reservations, err := h.service.List(r.Context(), eventID)
	if err != nil {
		h.logger.Error("failed to export reservations", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to export reservations")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=reservations-event-%d.csv", eventID))

	if err := WriteCSV(w, reservations); err != nil {
		h.logger.Error("failed to write reservations csv", slog.String("error", err.Error()))
	}
}
