package reservation_test

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"candrive-backend/internal/metrics"
	"candrive-backend/internal/reservation"
	"candrive-backend/internal/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) chi.Router {
	t.Helper()
	db := testdb.Setup(t, (*reservation.Reservation)(nil))
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	repo := reservation.NewRepository(db, metrics.NewMock())
	service := reservation.NewService(repo, logger, metrics.NewMock())
	handler := reservation.NewHandler(service, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	handler.RegisterAdminRoutes(router)
	return router
}

func postReservation(t *testing.T, router chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events/1/reservations", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateReservationEndpoint(t *testing.T) {
	router := setupRouter(t)

	t.Run("Created", func(t *testing.T) {
		w := postReservation(t, router, `{"name": "John Doe", "street_name": "Maple Street"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("ConflictReturns409", func(t *testing.T) {
		w := postReservation(t, router, `{"name": "Amy Stone", "streetName": "Maple Street"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "already reserved")
	})

	t.Run("MissingStreetReturns400", func(t *testing.T) {
		w := postReservation(t, router, `{"name": "John Doe"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MissingNameReturns400", func(t *testing.T) {
		w := postReservation(t, router, `{"street_name": "Elm Street"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExportReservationsEndpoint(t *testing.T) {
	router := setupRouter(t)

	w := postReservation(t, router, `{"name": "John Doe", "street_name": "Maple Street", "group_members": "Amy, Ben"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/events/1/reservations/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=reservations-event-1.csv", rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Street Name", "Student Name", "Group Members", "Created At"}, records[0])
	assert.Equal(t, "Maple Street", records[1][0])
	assert.Equal(t, "John Doe", records[1][1])
	assert.Equal(t, "Amy, Ben", records[1][2])
}
