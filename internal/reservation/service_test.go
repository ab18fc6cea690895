package reservation_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"candrive-backend/internal/metrics"
	"candrive-backend/internal/reservation"
	"candrive-backend/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

const testEventID int64 = 1

func setupReservations(t *testing.T) (*reservation.Service, *bun.DB) {
	t.Helper()
	db := testdb.Setup(t, (*reservation.Reservation)(nil))
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	repo := reservation.NewRepository(db, metrics.NewMock())
	return reservation.NewService(repo, logger, metrics.NewMock()), db
}

func TestCreateReservation(t *testing.T) {
	t.Run("SingleStreet", func(t *testing.T) {
		service, _ := setupReservations(t)
		ctx := context.Background()

		created, err := service.Create(ctx, testEventID, reservation.CreateReservationInput{
			Name:       "John Doe",
			StreetName: "Maple Street",
		})
		require.NoError(t, err)

		assert.NotZero(t, created.ID)
		assert.Equal(t, "John Doe", created.Name)
		assert.Equal(t, "Maple Street", created.StreetName)
		assert.Equal(t, "{}", created.GeoJSON)
	})

	t.Run("LegacyKeySpellings", func(t *testing.T) {
		service, _ := setupReservations(t)
		ctx := context.Background()

		created, err := service.Create(ctx, testEventID, reservation.CreateReservationInput{
			StudentName:   "Amy Stone",
			StreetNameAlt: "Oak Avenue",
		})
		require.NoError(t, err)

		assert.Equal(t, "Amy Stone", created.Name)
		assert.Equal(t, "Oak Avenue", created.StreetName)
	})

	t.Run("CarriesGeoJSON", func(t *testing.T) {
		service, _ := setupReservations(t)
		ctx := context.Background()

		created, err := service.Create(ctx, testEventID, reservation.CreateReservationInput{
			Name:       "John Doe",
			StreetName: "Maple Street",
			GeoJSON:    json.RawMessage(`{"type":"Feature","geometry":null}`),
		})
		require.NoError(t, err)

		assert.JSONEq(t, `{"type":"Feature","geometry":null}`, created.GeoJSON)
	})

	t.Run("ConflictWithOtherClaimant", func(t *testing.T) {
		service, _ := setupReservations(t)
		ctx := context.Background()

		_, err := service.Create(ctx, testEventID, reservation.CreateReservationInput{
			Name:       "John Doe",
			StreetName: "Maple Street",
		})
		require.NoError(t, err)

		_, err = service.Create(ctx, testEventID, reservation.CreateReservationInput{
			Name:       "Amy Stone",
			StreetName: "Maple Street",
		})

		var taken *reservation.StreetTakenError
		require.ErrorAs(t, err, &taken)
		assert.Equal(t, "Maple Street", taken.Street)
	})

	t.Run("SameClaimantReplacesOwnRow", func(t *testing.T) {
		service, db := setupReservations(t)
		ctx := context.Background()

		first, err := service.Create(ctx, testEventID, reservation.CreateReservationInput{
			Name:       "John Doe",
			StreetName: "Maple Street",
		})
		require.NoError(t, err)

		second, err := service.Create(ctx, testEventID, reservation.CreateReservationInput{
			Name:       "john doe",
			StreetName: "Maple Street",
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		count, err := db.NewSelect().Model((*reservation.Reservation)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "re-reserving replaces the earlier row")
	})

	t.Run("MultiStreetConflictWritesNothing", func(t *testing.T) {
		service, db := setupReservations(t)
		ctx := context.Background()

		_, err := service.Create(ctx, testEventID, reservation.CreateReservationInput{
			Name:       "Amy Stone",
			StreetName: "Oak Avenue",
		})
		require.NoError(t, err)

		// Second token collides, so the whole request must fail and the
		// first token must stay unclaimed.
		_, err = service.Create(ctx, testEventID, reservation.CreateReservationInput{
			Name:       "John Doe",
			StreetName: "Maple Street, Oak Avenue",
		})
		var taken *reservation.StreetTakenError
		require.ErrorAs(t, err, &taken)
		assert.Equal(t, "Oak Avenue", taken.Street)

		count, err := db.NewSelect().
			Model((*reservation.Reservation)(nil)).
			Where("lower(street_name) LIKE ?", "%maple%").
			Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("MultiStreetClaim", func(t *testing.T) {
		service, _ := setupReservations(t)
		ctx := context.Background()

		created, err := service.Create(ctx, testEventID, reservation.CreateReservationInput{
			Name:       "John Doe",
			StreetName: "Maple Street, Oak Avenue",
		})
		require.NoError(t, err)
		assert.Equal(t, "Maple Street, Oak Avenue", created.StreetName)

		// Either street is now blocked for everyone else.
		_, err = service.Create(ctx, testEventID, reservation.CreateReservationInput{
			Name:       "Amy Stone",
			StreetName: "Oak Avenue",
		})
		var taken *reservation.StreetTakenError
		assert.ErrorAs(t, err, &taken)
	})

	t.Run("MissingName", func(t *testing.T) {
		service, _ := setupReservations(t)

		_, err := service.Create(context.Background(), testEventID, reservation.CreateReservationInput{
			StreetName: "Maple Street",
		})
		assert.ErrorIs(t, err, reservation.ErrNameRequired)
	})

	t.Run("MissingStreet", func(t *testing.T) {
		service, _ := setupReservations(t)

		_, err := service.Create(context.Background(), testEventID, reservation.CreateReservationInput{
			Name: "John Doe",
		})
		assert.ErrorIs(t, err, reservation.ErrStreetRequired)
	})
}

func TestListReservations(t *testing.T) {
	service, _ := setupReservations(t)
	ctx := context.Background()

	_, err := service.Create(ctx, testEventID, reservation.CreateReservationInput{
		Name: "John Doe", StreetName: "Maple Street",
	})
	require.NoError(t, err)
	_, err = service.Create(ctx, testEventID, reservation.CreateReservationInput{
		Name: "Amy Stone", StreetName: "Oak Avenue",
	})
	require.NoError(t, err)

	reservations, err := service.List(ctx, testEventID)
	require.NoError(t, err)

	require.Len(t, reservations, 2)
	assert.Equal(t, "Oak Avenue", reservations[0].StreetName, "newest first")
}

func TestDeleteReservation(t *testing.T) {
	service, _ := setupReservations(t)
	ctx := context.Background()

	created, err := service.Create(ctx, testEventID, reservation.CreateReservationInput{
		Name: "John Doe", StreetName: "Maple Street",
	})
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))
	assert.ErrorIs(t, service.Delete(ctx, created.ID), reservation.ErrReservationNotFound)
}
