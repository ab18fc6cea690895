package leaderboard_test

import (
	"testing"
	"time"

	// Zone data must be available regardless of the host image.
	_ "time/tzdata"

	"candrive-backend/internal/leaderboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toronto(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)
	return loc
}

func TestDayWindow(t *testing.T) {
	loc := toronto(t)

	t.Run("Afternoon", func(t *testing.T) {
		now := time.Date(2026, 3, 5, 15, 0, 0, 0, loc)

		start, end := leaderboard.DayWindow(now, loc)

		assert.True(t, start.Equal(time.Date(2026, 3, 5, 3, 0, 0, 0, loc)))
		assert.True(t, end.Equal(time.Date(2026, 3, 6, 3, 0, 0, 0, loc)))
		assert.Equal(t, time.UTC, start.Location())
		assert.Equal(t, time.UTC, end.Location())
	})

	t.Run("BeforeThreeAMBelongsToPreviousDay", func(t *testing.T) {
		now := time.Date(2026, 3, 6, 0, 30, 0, 0, loc)

		start, end := leaderboard.DayWindow(now, loc)

		assert.True(t, start.Equal(time.Date(2026, 3, 5, 3, 0, 0, 0, loc)))
		assert.True(t, end.Equal(time.Date(2026, 3, 6, 3, 0, 0, 0, loc)))
	})

	t.Run("ExactlyThreeAMStartsNewDay", func(t *testing.T) {
		now := time.Date(2026, 3, 6, 3, 0, 0, 0, loc)

		start, end := leaderboard.DayWindow(now, loc)

		assert.True(t, start.Equal(now))
		assert.True(t, end.Equal(time.Date(2026, 3, 7, 3, 0, 0, 0, loc)))
	})

	t.Run("SpringForwardNightIsTwentyThreeHours", func(t *testing.T) {
		// DST starts 2026-03-08 02:00 in Toronto.
		now := time.Date(2026, 3, 7, 22, 0, 0, 0, loc)

		start, end := leaderboard.DayWindow(now, loc)

		assert.Equal(t, 23*time.Hour, end.Sub(start))
	})

	t.Run("FallBackNightIsTwentyFiveHours", func(t *testing.T) {
		// DST ends 2026-11-01 02:00 in Toronto.
		now := time.Date(2026, 10, 31, 22, 0, 0, 0, loc)

		start, end := leaderboard.DayWindow(now, loc)

		assert.Equal(t, 25*time.Hour, end.Sub(start))
	})

	t.Run("UTCInputSameWindow", func(t *testing.T) {
		// 2026-03-06 02:00 UTC is 21:00 on March 5 in Toronto.
		now := time.Date(2026, 3, 6, 2, 0, 0, 0, time.UTC)

		start, end := leaderboard.DayWindow(now, loc)

		assert.True(t, start.Equal(time.Date(2026, 3, 5, 3, 0, 0, 0, loc)))
		assert.True(t, end.Equal(time.Date(2026, 3, 6, 3, 0, 0, 0, loc)))
	})
}
