package leaderboard_test

import (
	"fmt"
	"testing"

	"candrive-backend/internal/leaderboard"
	"candrive-backend/internal/ledger"
	"candrive-backend/internal/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestComputeDaily(t *testing.T) {
	t.Run("RanksWithinWindowOnly", func(t *testing.T) {
		// The overall leader has no donations today; today's only donor
		// ranks first regardless of lifetime totals.
		students := []roster.Student{
			{ID: 1, FirstName: "Lifetime", LastName: "Leader", Grade: "9", TotalCans: 500},
			{ID: 2, FirstName: "Today", LastName: "Donor", Grade: "10", TotalCans: 3},
		}
		donations := []ledger.Donation{
			{StudentID: int64Ptr(2), Amount: 3},
		}

		board := leaderboard.ComputeDaily(students, nil, donations, "2026-03-05")

		require.Len(t, board.TopStudents, 1)
		assert.Equal(t, "Today Donor", board.TopStudents[0].Name)
		assert.Equal(t, 1, board.TopStudents[0].Rank)
		assert.Equal(t, 3, board.TopStudents[0].DailyCans)
		assert.Equal(t, 3, board.TotalCans)
	})

	t.Run("SumsMultipleDonations", func(t *testing.T) {
		students := []roster.Student{
			{ID: 1, FirstName: "Repeat", LastName: "Donor", Grade: "9"},
		}
		donations := []ledger.Donation{
			{StudentID: int64Ptr(1), Amount: 2},
			{StudentID: int64Ptr(1), Amount: 5},
		}

		board := leaderboard.ComputeDaily(students, nil, donations, "2026-03-05")

		require.Len(t, board.TopStudents, 1)
		assert.Equal(t, 7, board.TopStudents[0].DailyCans)
		assert.Equal(t, 7, board.TotalCans)
	})

	t.Run("SkipsDeletedDonors", func(t *testing.T) {
		donations := []ledger.Donation{
			{StudentID: int64Ptr(99), Amount: 5},
		}

		board := leaderboard.ComputeDaily(nil, nil, donations, "2026-03-05")

		assert.Empty(t, board.TopStudents)
		assert.Equal(t, 5, board.TotalCans)
	})

	t.Run("TeachersRankSeparately", func(t *testing.T) {
		teachers := []roster.Teacher{
			{ID: 1, FullName: "Ms. Trails"},
			{ID: 2, FullName: "Mr. Banks"},
		}
		donations := []ledger.Donation{
			{TeacherID: int64Ptr(1), Amount: 2},
			{TeacherID: int64Ptr(2), Amount: 9},
		}

		board := leaderboard.ComputeDaily(nil, teachers, donations, "2026-03-05")

		require.Len(t, board.TopTeachers, 2)
		assert.Equal(t, "Mr. Banks", board.TopTeachers[0].Name)
		assert.Equal(t, 1, board.TopTeachers[0].Rank)
		assert.Empty(t, board.TopStudents)
	})

	t.Run("GradesUseWindowCans", func(t *testing.T) {
		students := []roster.Student{
			{ID: 1, FirstName: "A", LastName: "One", Grade: "9", TotalCans: 100},
			{ID: 2, FirstName: "B", LastName: "Two", Grade: "9.0", TotalCans: 100},
		}
		donations := []ledger.Donation{
			{StudentID: int64Ptr(1), Amount: 4},
			{StudentID: int64Ptr(2), Amount: 6},
		}

		board := leaderboard.ComputeDaily(students, nil, donations, "2026-03-05")

		require.Len(t, board.TopGrades, 1)
		assert.Equal(t, "9", board.TopGrades[0].Grade)
		assert.Equal(t, 10, board.TopGrades[0].DailyCans)
	})

	t.Run("CapsAtTen", func(t *testing.T) {
		var students []roster.Student
		var donations []ledger.Donation
		for i := int64(1); i <= 12; i++ {
			students = append(students, roster.Student{
				ID:        i,
				FirstName: fmt.Sprintf("Donor%02d", i),
				Grade:     "9",
			})
			donations = append(donations, ledger.Donation{StudentID: int64Ptr(i), Amount: int(i)})
		}

		board := leaderboard.ComputeDaily(students, nil, donations, "2026-03-05")

		require.Len(t, board.TopStudents, 10)
		assert.Equal(t, 12, board.TopStudents[0].DailyCans)
		assert.Equal(t, 3, board.TopStudents[9].DailyCans)
	})

	t.Run("EmptyWindow", func(t *testing.T) {
		students := []roster.Student{
			{ID: 1, FirstName: "Quiet", LastName: "Day", Grade: "9", TotalCans: 50},
		}

		board := leaderboard.ComputeDaily(students, nil, nil, "2026-03-05")

		assert.Equal(t, "2026-03-05", board.Date)
		assert.Empty(t, board.TopStudents)
		assert.Empty(t, board.TopTeachers)
		assert.Empty(t, board.TopGrades)
		assert.Equal(t, 0, board.TotalCans)
	})
}
