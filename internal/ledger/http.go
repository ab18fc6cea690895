package ledger

import (
	"errors"
	"log/slog"
	"net/http"

	"candrive-backend/internal/httputil"
	"candrive-backend/internal/roster"

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

// RegisterAdminRoutes wires the donation endpoints. All of them require the
// auth middleware; donation intake is a staffed desk, not a public form.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/events/{event_id}/donations", h.recordDonation)
	r.Get("/events/{event_id}/donations", h.listDonations)
	r.Post("/events/{event_id}/maintenance/recompute-totals", h.recomputeTotals)
}

func (h *Handler) recordDonation(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var input RecordDonationInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Record(r.Context(), eventID, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrDonationTarget), errors.Is(err, ErrNegativeAmount):
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, roster.ErrStudentNotFound):
			httputil.RespondWithError(w, http.StatusNotFound, "Student not found")
		case errors.Is(err, roster.ErrTeacherNotFound):
			httputil.RespondWithError(w, http.StatusNotFound, "Teacher not found")
		default:
			h.logger.Error("failed to record donation", slog.String("error", err.Error()))
			httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to record donation")
		}
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) listDonations(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	limit := httputil.QueryInt(r, "limit", defaultListLimit)
	offset := httputil.QueryInt(r, "offset", 0)

	donations, err := h.service.List(r.Context(), eventID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list donations", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to list donations")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, donations)
}

func (h *Handler) recomputeTotals(w http.ResponseWriter, r *http.Request) {
	eventID, err := httputil.IDParam(r, "event_id")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	result, err := h.service.RecomputeTotals(r.Context(), eventID)
	if err != nil {
		h.logger.Error("failed to recompute totals", slog.String("error", err.Error()))
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to recompute totals")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, result)
}
