package health_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"candrive-backend/internal/event"
	"candrive-backend/internal/health"
	"candrive-backend/internal/ledger"
	"candrive-backend/internal/reservation"
	"candrive-backend/internal/roster"
	"candrive-backend/internal/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	db := testdb.Setup(t,
		(*event.Event)(nil),
		(*roster.Student)(nil),
		(*roster.Teacher)(nil),
		(*ledger.Donation)(nil),
		(*reservation.Reservation)(nil),
	)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	handler := health.NewHandler(db, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	router.Route("/api", func(r chi.Router) {
		handler.RegisterAPIRoutes(r)
	})

	t.Run("Health", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
	})

	t.Run("Ready", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status": "ready"}`, w.Body.String())
	})

	t.Run("DetailCounts", func(t *testing.T) {
		_, err := db.NewInsert().
			Model(&roster.Student{FirstName: "John", LastName: "Doe", EventID: 1}).
			Exec(context.Background())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp health.DetailResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "up", resp.Database)
		assert.Equal(t, int64(1), resp.Counts["students"])
		assert.Equal(t, int64(0), resp.Counts["donations"])
	})
}
