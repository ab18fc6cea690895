package roster_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"candrive-backend/internal/metrics"
	"candrive-backend/internal/roster"
	"candrive-backend/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

const testEventID int64 = 1

func setupService(t *testing.T) (*roster.Service, *bun.DB) {
	t.Helper()
	db := testdb.Setup(t, (*roster.Student)(nil), (*roster.Teacher)(nil))
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	repo := roster.NewRepository(db, metrics.NewMock())
	return roster.NewService(repo, logger, metrics.NewMock()), db
}

func seedStudent(t *testing.T, db *bun.DB, st *roster.Student) *roster.Student {
	t.Helper()
	if st.EventID == 0 {
		st.EventID = testEventID
	}
	_, err := db.NewInsert().Model(st).Exec(context.Background())
	require.NoError(t, err)
	return st
}

func seedTeacher(t *testing.T, db *bun.DB, teacher *roster.Teacher) *roster.Teacher {
	t.Helper()
	if teacher.EventID == 0 {
		teacher.EventID = testEventID
	}
	_, err := db.NewInsert().Model(teacher).Exec(context.Background())
	require.NoError(t, err)
	return teacher
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestCreateStudent(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()

	created, err := service.CreateStudent(ctx, testEventID, roster.CreateStudentInput{
		FirstName:       "  John ",
		LastName:        " Doe ",
		Grade:           " 9 ",
		HomeroomNumber:  "18.0",
		HomeroomTeacher: " Smith ",
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "John", created.FirstName)
	assert.Equal(t, "Doe", created.LastName)
	assert.Equal(t, "9", created.Grade)
	assert.Equal(t, "018", created.HomeroomNumber)
	assert.Equal(t, "Smith", created.HomeroomTeacher)
	assert.Equal(t, 0, created.TotalCans)
}

func TestUpdateStudent(t *testing.T) {
	service, db := setupService(t)
	ctx := context.Background()

	t.Run("PartialUpdate", func(t *testing.T) {
		st := seedStudent(t, db, &roster.Student{
			FirstName: "Jane", LastName: "Doe", Grade: "9", HomeroomNumber: "018",
		})

		updated, err := service.UpdateStudent(ctx, st.ID, roster.UpdateStudentInput{
			TotalCans: intPtr(25),
		})
		require.NoError(t, err)

		assert.Equal(t, 25, updated.TotalCans)
		assert.Equal(t, "Jane", updated.FirstName)
		assert.Equal(t, "018", updated.HomeroomNumber)
	})

	t.Run("NormalizesHomeroom", func(t *testing.T) {
		st := seedStudent(t, db, &roster.Student{FirstName: "Sam", LastName: "Low"})

		updated, err := service.UpdateStudent(ctx, st.ID, roster.UpdateStudentInput{
			HomeroomNumber: strPtr("7"),
		})
		require.NoError(t, err)

		assert.Equal(t, "007", updated.HomeroomNumber)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := service.UpdateStudent(ctx, 99999, roster.UpdateStudentInput{
			TotalCans: intPtr(1),
		})
		assert.ErrorIs(t, err, roster.ErrStudentNotFound)
	})
}

func TestDeleteStudent(t *testing.T) {
	service, db := setupService(t)
	ctx := context.Background()

	st := seedStudent(t, db, &roster.Student{FirstName: "To", LastName: "Delete"})

	require.NoError(t, service.DeleteStudent(ctx, st.ID))

	count, err := db.NewSelect().Model((*roster.Student)(nil)).Where("id = ?", st.ID).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.ErrorIs(t, service.DeleteStudent(ctx, st.ID), roster.ErrStudentNotFound)
}

func TestSearchStudents(t *testing.T) {
	service, db := setupService(t)
	ctx := context.Background()

	seedStudent(t, db, &roster.Student{FirstName: "John", LastName: "Doe"})
	seedStudent(t, db, &roster.Student{FirstName: "Johanna", LastName: "Park"})
	seedStudent(t, db, &roster.Student{FirstName: "Amy", LastName: "Stone"})

	t.Run("MatchesSubstringCaseInsensitive", func(t *testing.T) {
		students, err := service.SearchStudents(ctx, testEventID, "JOH", 0)
		require.NoError(t, err)
		assert.Len(t, students, 2)
	})

	t.Run("MatchesAcrossFirstAndLast", func(t *testing.T) {
		students, err := service.SearchStudents(ctx, testEventID, "john doe", 0)
		require.NoError(t, err)
		require.Len(t, students, 1)
		assert.Equal(t, "John", students[0].FirstName)
	})

	t.Run("EmptyQueryReturnsNothing", func(t *testing.T) {
		students, err := service.SearchStudents(ctx, testEventID, "   ", 0)
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("LimitApplies", func(t *testing.T) {
		students, err := service.SearchStudents(ctx, testEventID, "o", 1)
		require.NoError(t, err)
		assert.Len(t, students, 1)
	})
}

func TestListStudents(t *testing.T) {
	service, db := setupService(t)
	ctx := context.Background()

	seedStudent(t, db, &roster.Student{FirstName: "John", LastName: "Doe", Grade: "9", HomeroomNumber: "018", HomeroomTeacher: "Smith"})
	seedStudent(t, db, &roster.Student{FirstName: "Amy", LastName: "Stone", Grade: "10", HomeroomNumber: "020", HomeroomTeacher: "Jones"})

	t.Run("FiltersByGrade", func(t *testing.T) {
		students, err := service.ListStudents(ctx, testEventID, roster.StudentFilter{Grade: "9"})
		require.NoError(t, err)
		require.Len(t, students, 1)
		assert.Equal(t, "John", students[0].FirstName)
	})

	t.Run("FiltersByTeacher", func(t *testing.T) {
		students, err := service.ListStudents(ctx, testEventID, roster.StudentFilter{HomeroomTeacher: "jon"})
		require.NoError(t, err)
		require.Len(t, students, 1)
		assert.Equal(t, "Amy", students[0].FirstName)
	})

	t.Run("NoFilterReturnsAll", func(t *testing.T) {
		students, err := service.ListStudents(ctx, testEventID, roster.StudentFilter{})
		require.NoError(t, err)
		assert.Len(t, students, 2)
	})
}

func TestVerify(t *testing.T) {
	service, db := setupService(t)
	ctx := context.Background()

	seedStudent(t, db, &roster.Student{FirstName: "John", LastName: "Doe", Grade: "9", HomeroomNumber: "018", HomeroomTeacher: "Mrs. Smith"})
	seedStudent(t, db, &roster.Student{FirstName: "John", LastName: "Doe", Grade: "10", HomeroomNumber: "019", HomeroomTeacher: "Mr. Jones"})
	seedStudent(t, db, &roster.Student{FirstName: "Amy", LastName: "Stone", Grade: "9", HomeroomNumber: "018", HomeroomTeacher: "Mrs. Smith"})

	t.Run("ExactName", func(t *testing.T) {
		result, err := service.Verify(ctx, testEventID, roster.VerifyInput{
			FirstName: "Amy", LastName: "Stone",
		})
		require.NoError(t, err)

		assert.True(t, result.Verified)
		assert.False(t, result.Swapped)
		assert.Equal(t, 1, result.Matches)
		require.NotNil(t, result.Student)
		assert.Equal(t, "Amy", result.Student.FirstName)
	})

	t.Run("SwappedNamesRetry", func(t *testing.T) {
		result, err := service.Verify(ctx, testEventID, roster.VerifyInput{
			FirstName: "Stone", LastName: "Amy",
		})
		require.NoError(t, err)

		assert.True(t, result.Verified)
		assert.True(t, result.Swapped)
		assert.Equal(t, 1, result.Matches)
	})

	t.Run("SingleNameField", func(t *testing.T) {
		result, err := service.Verify(ctx, testEventID, roster.VerifyInput{
			Name: "Stone, Amy",
		})
		require.NoError(t, err)

		assert.True(t, result.Verified)
		assert.Equal(t, 1, result.Matches)
	})

	t.Run("AmbiguousWithoutNarrowing", func(t *testing.T) {
		result, err := service.Verify(ctx, testEventID, roster.VerifyInput{
			FirstName: "John", LastName: "Doe",
		})
		require.NoError(t, err)

		assert.True(t, result.Verified)
		assert.Equal(t, 2, result.Matches)
		assert.Nil(t, result.Student)
	})

	t.Run("GradeNarrows", func(t *testing.T) {
		result, err := service.Verify(ctx, testEventID, roster.VerifyInput{
			FirstName: "John", LastName: "Doe", Grade: "9.0",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Matches)
		require.NotNil(t, result.Student)
		assert.Equal(t, "9", result.Student.Grade)
	})

	t.Run("HomeroomNarrows", func(t *testing.T) {
		result, err := service.Verify(ctx, testEventID, roster.VerifyInput{
			FirstName: "John", LastName: "Doe", HomeroomNumberAlt: "19",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Matches)
		require.NotNil(t, result.Student)
		assert.Equal(t, "019", result.Student.HomeroomNumber)
	})

	t.Run("TeacherNarrows", func(t *testing.T) {
		result, err := service.Verify(ctx, testEventID, roster.VerifyInput{
			FirstName: "John", LastName: "Doe", HomeroomTeacher: "smith",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Matches)
		require.NotNil(t, result.Student)
		assert.Equal(t, "Mrs. Smith", result.Student.HomeroomTeacher)
	})

	t.Run("NoMatch", func(t *testing.T) {
		result, err := service.Verify(ctx, testEventID, roster.VerifyInput{
			FirstName: "Nobody", LastName: "Here",
		})
		require.NoError(t, err)

		assert.False(t, result.Verified)
		assert.Equal(t, 0, result.Matches)
		assert.Nil(t, result.Student)
	})

	t.Run("MissingName", func(t *testing.T) {
		_, err := service.Verify(ctx, testEventID, roster.VerifyInput{Grade: "9"})
		assert.ErrorIs(t, err, roster.ErrNameRequired)
	})
}

func TestImportStudents(t *testing.T) {
	t.Run("ImportsAndSplitsNames", func(t *testing.T) {
		service, db := setupService(t)
		ctx := context.Background()

		result, err := service.ImportStudents(ctx, testEventID, []roster.StudentRow{
			{Name: "Doe, John", Grade: "9", HomeroomNumber: "18", HomeroomTeacher: "Smith"},
			{FirstName: "Amy", LastName: "Stone", Grade: "10"},
		})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, 0, result.Skipped)

		var students []roster.Student
		require.NoError(t, db.NewSelect().Model(&students).Order("id ASC").Scan(ctx))
		require.Len(t, students, 2)
		assert.Equal(t, "John", students[0].FirstName)
		assert.Equal(t, "Doe", students[0].LastName)
		assert.Equal(t, "018", students[0].HomeroomNumber)
	})

	t.Run("SkipsDuplicates", func(t *testing.T) {
		service, _ := setupService(t)
		ctx := context.Background()

		rows := []roster.StudentRow{{FirstName: "John", LastName: "Doe"}}

		first, err := service.ImportStudents(ctx, testEventID, rows)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Imported)

		second, err := service.ImportStudents(ctx, testEventID, rows)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Imported)
		assert.Equal(t, 1, second.Skipped)
	})

	t.Run("LoneLastNameBecomesFirst", func(t *testing.T) {
		service, db := setupService(t)
		ctx := context.Background()

		result, err := service.ImportStudents(ctx, testEventID, []roster.StudentRow{
			{LastName: "Cher"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)

		var st roster.Student
		require.NoError(t, db.NewSelect().Model(&st).Scan(ctx))
		assert.Equal(t, "Cher", st.FirstName)
		assert.Empty(t, st.LastName)
	})

	t.Run("SkipsNamelessRows", func(t *testing.T) {
		service, _ := setupService(t)
		ctx := context.Background()

		result, err := service.ImportStudents(ctx, testEventID, []roster.StudentRow{
			{Grade: "9"},
			{Name: "   "},
		})
		require.NoError(t, err)

		assert.Equal(t, 0, result.Imported)
		assert.Equal(t, 2, result.Skipped)
	})
}

func TestImportTeachers(t *testing.T) {
	t.Run("ImportsWithExplicitHomeroom", func(t *testing.T) {
		service, db := setupService(t)
		ctx := context.Background()

		result, err := service.ImportTeachers(ctx, testEventID, []roster.TeacherRow{
			{FullName: "Mrs. Smith", HomeroomNumber: "18"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)

		var teacher roster.Teacher
		require.NoError(t, db.NewSelect().Model(&teacher).Scan(ctx))
		assert.Equal(t, "Mrs. Smith", teacher.FullName)
		assert.Equal(t, "Smith", teacher.LastName)
		assert.Equal(t, "018", teacher.HomeroomNumber)
	})

	t.Run("InfersHomeroomFromRoster", func(t *testing.T) {
		service, db := setupService(t)
		ctx := context.Background()

		seedStudent(t, db, &roster.Student{
			FirstName: "John", LastName: "Doe",
			HomeroomNumber: "042", HomeroomTeacher: "Smith",
		})

		result, err := service.ImportTeachers(ctx, testEventID, []roster.TeacherRow{
			{FullName: "Mrs. Smith"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)

		var teacher roster.Teacher
		require.NoError(t, db.NewSelect().Model(&teacher).Scan(ctx))
		assert.Equal(t, "042", teacher.HomeroomNumber)
	})

	t.Run("SkipsExistingTeacher", func(t *testing.T) {
		service, _ := setupService(t)
		ctx := context.Background()

		rows := []roster.TeacherRow{{Name: "Mr. Banks"}}

		first, err := service.ImportTeachers(ctx, testEventID, rows)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Imported)

		second, err := service.ImportTeachers(ctx, testEventID, rows)
		require.NoError(t, err)
		assert.Equal(t, 1, second.Skipped)
	})
}

func TestNormalizeHomerooms(t *testing.T) {
	service, db := setupService(t)
	ctx := context.Background()

	seedStudent(t, db, &roster.Student{FirstName: "John", LastName: "Doe", HomeroomNumber: "18.0"})
	seedStudent(t, db, &roster.Student{FirstName: "Amy", LastName: "Stone", HomeroomNumber: "020"})
	seedTeacher(t, db, &roster.Teacher{FullName: "Mrs. Smith", HomeroomNumber: "5"})

	result, err := service.NormalizeHomerooms(ctx, testEventID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.StudentsChanged)
	assert.Equal(t, 1, result.TeachersChanged)

	var rooms []string
	require.NoError(t, db.NewSelect().
		Model((*roster.Student)(nil)).
		Column("homeroom_number").
		Order("id ASC").
		Scan(ctx, &rooms))
	assert.Equal(t, []string{"018", "020"}, rooms)

	// Running it again is a no-op.
	again, err := service.NormalizeHomerooms(ctx, testEventID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.StudentsChanged)
	assert.Equal(t, 0, again.TeachersChanged)
}
