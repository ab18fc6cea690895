package event

import (
	"errors"
	"log/slog"
	"net/http"

	"candrive-backend/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.listEvents)
	r.Get("/events/{event_id}", h.getEvent)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/events", h.createEvent)
	r.Post("/events/{event_id}/reset", h.resetEvent)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list events", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, events)
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	event, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			httputil.RespondWithError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.logger.Error("failed to get event", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, event)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var input CreateEventInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to create event", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

type resetInput struct {
	Confirm bool `json:"confirm"`
}

func (h *Handler) resetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var input resetInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.service.Reset(r.Context(), id, input.Confirm)
	if err != nil {
		switch {
		case errors.Is(err, ErrConfirmationRequired):
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrEventNotFound):
			httputil.RespondWithError(w, http.StatusNotFound, "Event not found")
		default:
			h.logger.Error("failed to reset event", slog.String("error", err.Error()))
			httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to reset event")
		}
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, result)
}
