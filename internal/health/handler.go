package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"candrive-backend/internal/event"
	"candrive-backend/internal/httputil"
	"candrive-backend/internal/ledger"
	"candrive-backend/internal/reservation"
	"candrive-backend/internal/roster"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

const pingTimeout = 2 * time.Second

type Handler struct {
	db     *bun.DB
	logger *slog.Logger
}

func NewHandler(db *bun.DB, logger *slog.Logger) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
	}
}

// RegisterRoutes wires the probe endpoints at the server root.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

// RegisterAPIRoutes wires the detailed health report under /api.
func (h *Handler) RegisterAPIRoutes(router chi.Router) {
	router.Get("/health", h.Detail)
}

type HealthResponse struct {
	Status string `json:"status"`
}

type DetailResponse struct {
	Status   string           `json:"status"`
	Database string           `json:"database"`
	Counts   map[string]int64 `json:"counts,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("readiness ping failed", slog.String("error", err.Error()))
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}

// Detail reports DB reachability plus row counts across all events, for
// the admin dashboard's status pane.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := DetailResponse{Status: "ok", Database: "up"}
	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp.Counts = map[string]int64{}
	for name, model := range map[string]interface{}{
		"events":       (*event.Event)(nil),
		"students":     (*roster.Student)(nil),
		"teachers":     (*roster.Teacher)(nil),
		"donations":    (*ledger.Donation)(nil),
		"reservations": (*reservation.Reservation)(nil),
	} {
		count, err := h.db.NewSelect().Model(model).Count(r.Context())
		if err != nil {
			h.logger.Warn("failed to count rows", slog.String("table", name), slog.String("error", err.Error()))
			continue
		}
		resp.Counts[name] = int64(count)
	}

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}
