package event_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"candrive-backend/internal/event"
	"candrive-backend/internal/ledger"
	"candrive-backend/internal/metrics"
	"candrive-backend/internal/reservation"
	"candrive-backend/internal/roster"
	"candrive-backend/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupEvents(t *testing.T) (*event.Service, *bun.DB) {
	t.Helper()
	db := testdb.Setup(t,
		(*event.Event)(nil),
		(*roster.Student)(nil),
		(*roster.Teacher)(nil),
		(*ledger.Donation)(nil),
		(*reservation.Reservation)(nil),
	)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	m := metrics.NewMock()
	service := event.NewService(
		event.NewRepository(db, m),
		roster.NewRepository(db, m),
		ledger.NewRepository(db, m),
		reservation.NewRepository(db, m),
		logger,
	)
	return service, db
}

func TestEnsureEvent(t *testing.T) {
	service, _ := setupEvents(t)
	ctx := context.Background()

	created, err := service.Ensure(ctx, 1, "Can Drive")
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Can Drive", created.Name)

	// A second call finds the row instead of creating another.
	again, err := service.Ensure(ctx, 1, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Can Drive", again.Name)

	events, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCreateAndGetEvent(t *testing.T) {
	service, _ := setupEvents(t)
	ctx := context.Background()

	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	created, err := service.Create(ctx, event.CreateEventInput{
		Name:      "  Winter Drive ",
		StartDate: &start,
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "Winter Drive", created.Name)

	fetched, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Winter Drive", fetched.Name)

	_, err = service.Get(ctx, 99999)
	assert.ErrorIs(t, err, event.ErrEventNotFound)
}

func TestResetEvent(t *testing.T) {
	service, db := setupEvents(t)
	ctx := context.Background()

	_, err := service.Ensure(ctx, 1, "Can Drive")
	require.NoError(t, err)

	studentID := int64(0)
	seed := func() {
		st := &roster.Student{FirstName: "John", LastName: "Doe", EventID: 1}
		_, err := db.NewInsert().Model(st).Exec(ctx)
		require.NoError(t, err)
		studentID = st.ID

		_, err = db.NewInsert().Model(&roster.Teacher{FullName: "Mrs. Smith", EventID: 1}).Exec(ctx)
		require.NoError(t, err)
		_, err = db.NewInsert().Model(&ledger.Donation{
			StudentID: &studentID, EventID: 1, Amount: 3, DonationDate: time.Now().UTC(),
		}).Exec(ctx)
		require.NoError(t, err)
		_, err = db.NewInsert().Model(&reservation.Reservation{
			EventID: 1, Name: "John Doe", StreetName: "Maple Street", GeoJSON: "{}",
		}).Exec(ctx)
		require.NoError(t, err)
	}
	seed()

	t.Run("RequiresConfirmation", func(t *testing.T) {
		_, err := service.Reset(ctx, 1, false)
		assert.ErrorIs(t, err, event.ErrConfirmationRequired)

		count, err := db.NewSelect().Model((*roster.Student)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("UnknownEvent", func(t *testing.T) {
		_, err := service.Reset(ctx, 42, true)
		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})

	t.Run("DeletesEverythingButTheEvent", func(t *testing.T) {
		result, err := service.Reset(ctx, 1, true)
		require.NoError(t, err)

		assert.Equal(t, int64(1), result.ReservationsDeleted)
		assert.Equal(t, int64(1), result.DonationsDeleted)
		assert.Equal(t, int64(1), result.StudentsDeleted)
		assert.Equal(t, int64(1), result.TeachersDeleted)

		for _, model := range []interface{}{
			(*roster.Student)(nil),
			(*roster.Teacher)(nil),
			(*ledger.Donation)(nil),
			(*reservation.Reservation)(nil),
		} {
			count, err := db.NewSelect().Model(model).Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, count)
		}

		// The event row survives for the next drive.
		_, err = service.Get(ctx, 1)
		assert.NoError(t, err)
	})
}
