package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"candrive-backend/internal/metrics"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrNameRequired    = errors.New("a student name is required")
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(repo Repository, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: m,
	}
}

func (s *Service) ListStudents(ctx context.Context, eventID int64, filter StudentFilter) ([]Student, error) {
	filter.Grade = strings.TrimSpace(filter.Grade)
	filter.Name = strings.TrimSpace(filter.Name)
	filter.HomeroomNumber = strings.TrimSpace(filter.HomeroomNumber)
	filter.HomeroomTeacher = strings.TrimSpace(filter.HomeroomTeacher)

	students, err := s.repo.ListStudents(ctx, eventID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	return students, nil
}

// StudentsByEvent returns the full roster in insertion order. The
// leaderboard aggregator depends on that order for its tie-breaks.
func (s *Service) StudentsByEvent(ctx context.Context, eventID int64) ([]Student, error) {
	return s.repo.StudentsByEvent(ctx, eventID)
}

// TeachersByEvent mirrors StudentsByEvent for teachers.
func (s *Service) TeachersByEvent(ctx context.Context, eventID int64) ([]Teacher, error) {
	return s.repo.TeachersByEvent(ctx, eventID)
}

func (s *Service) SearchStudents(ctx context.Context, eventID int64, query string, limit int) ([]Student, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Student{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	students, err := s.repo.SearchStudents(ctx, eventID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching students: %w", err)
	}
	return students, nil
}

func (s *Service) GetStudent(ctx context.Context, id int64) (*Student, error) {
	return s.repo.GetStudentByID(ctx, id)
}

func (s *Service) CreateStudent(ctx context.Context, eventID int64, input CreateStudentInput) (*Student, error) {
	student := &Student{
		FirstName:       strings.TrimSpace(input.FirstName),
		LastName:        strings.TrimSpace(input.LastName),
		Grade:           strings.TrimSpace(input.Grade),
		HomeroomNumber:  NormalizeHomeroom(input.HomeroomNumber),
		HomeroomTeacher: strings.TrimSpace(input.HomeroomTeacher),
		EventID:         eventID,
	}

	created, err := s.repo.CreateStudent(ctx, student)
	if err != nil {
		return nil, fmt.Errorf("creating student: %w", err)
	}

	s.logger.Info("student created",
		slog.Int64("student_id", created.ID),
		slog.Int64("event_id", eventID),
	)
	return created, nil
}

func (s *Service) UpdateStudent(ctx context.Context, id int64, input UpdateStudentInput) (*Student, error) {
	student, err := s.repo.GetStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		student.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		student.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Grade != nil {
		student.Grade = strings.TrimSpace(*input.Grade)
	}
	if input.HomeroomNumber != nil {
		student.HomeroomNumber = NormalizeHomeroom(*input.HomeroomNumber)
	}
	if input.HomeroomTeacher != nil {
		student.HomeroomTeacher = strings.TrimSpace(*input.HomeroomTeacher)
	}
	if input.TotalCans != nil {
		student.TotalCans = *input.TotalCans
	}

	if err := s.repo.UpdateStudent(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info("student updated", slog.Int64("student_id", student.ID))
	return student, nil
}

func (s *Service) DeleteStudent(ctx context.Context, id int64) error {
	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("student deleted", slog.Int64("student_id", id))
	return nil
}

// ImportStudents loads a bulk roster. Rows without any usable name are
// skipped rather than failing the whole upload, matching how messy the
// source spreadsheets tend to be.
func (s *Service) ImportStudents(ctx context.Context, eventID int64, rows []StudentRow) (*ImportResult, error) {
	result := &ImportResult{}

	for _, row := range rows {
		first, last := row.FirstName, row.LastName
		if strings.TrimSpace(first) == "" && strings.TrimSpace(last) == "" {
			first, last = SplitFullName(row.Name)
		}
		first = strings.TrimSpace(first)
		last = strings.TrimSpace(last)
		if first == "" && last == "" {
			result.Skipped++
			continue
		}
		if first == "" {
			first, last = last, ""
		}

		existing, err := s.repo.FindStudentsByName(ctx, eventID, first, last)
		if err != nil {
			return nil, fmt.Errorf("checking for duplicate student: %w", err)
		}
		if len(existing) > 0 {
			result.Skipped++
			continue
		}

		student := &Student{
			FirstName:       first,
			LastName:        last,
			Grade:           strings.TrimSpace(row.Grade),
			HomeroomNumber:  NormalizeHomeroom(row.HomeroomNumber),
			HomeroomTeacher: strings.TrimSpace(row.HomeroomTeacher),
			EventID:         eventID,
		}
		if _, err := s.repo.CreateStudent(ctx, student); err != nil {
			s.logger.Warn("skipping student row",
				slog.String("name", joinName(first, last)),
				slog.String("error", err.Error()),
			)
			result.Skipped++
			continue
		}
		result.Imported++
	}

	s.metrics.RecordRosterImport(ctx, int64(result.Imported))
	s.logger.Info("students imported",
		slog.Int64("event_id", eventID),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *Service) ListTeachers(ctx context.Context, eventID int64) ([]Teacher, error) {
	teachers, err := s.repo.TeachersByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing teachers: %w", err)
	}
	return teachers, nil
}

// ImportTeachers loads the staff list. A teacher row without a homeroom
// number borrows one from the first student whose homeroom teacher column
// mentions the teacher's last name.
func (s *Service) ImportTeachers(ctx context.Context, eventID int64, rows []TeacherRow) (*ImportResult, error) {
	result := &ImportResult{}

	for _, row := range rows {
		name := strings.TrimSpace(row.FullName)
		if name == "" {
			name = strings.TrimSpace(row.Name)
		}
		if name == "" {
			result.Skipped++
			continue
		}

		if _, err := s.repo.FindTeacherByFullName(ctx, eventID, name); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, ErrTeacherNotFound) {
			return nil, fmt.Errorf("checking for duplicate teacher: %w", err)
		}

		first, last := SplitFullName(name)
		homeroom := NormalizeHomeroom(row.HomeroomNumber)
		if homeroom == "" && last != "" {
			if st, err := s.repo.FirstStudentForTeacher(ctx, eventID, last); err == nil {
				homeroom = NormalizeHomeroom(st.HomeroomNumber)
			} else if !errors.Is(err, ErrStudentNotFound) {
				return nil, fmt.Errorf("inferring teacher homeroom: %w", err)
			}
		}

		teacher := &Teacher{
			FirstName:      first,
			LastName:       last,
			FullName:       name,
			HomeroomNumber: homeroom,
			EventID:        eventID,
		}
		if _, err := s.repo.CreateTeacher(ctx, teacher); err != nil {
			s.logger.Warn("skipping teacher row",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
			result.Skipped++
			continue
		}
		result.Imported++
	}

	s.metrics.RecordRosterImport(ctx, int64(result.Imported))
	s.logger.Info("teachers imported",
		slog.Int64("event_id", eventID),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// Verify looks a student up by name, retrying with first and last swapped,
// then narrows the candidates by whichever extra fields the caller sent.
func (s *Service) Verify(ctx context.Context, eventID int64, input VerifyInput) (*VerifyResult, error) {
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" && last == "" {
		first, last = SplitFullName(input.Name)
	}
	if first == "" && last == "" {
		return nil, ErrNameRequired
	}

	matches, err := s.repo.FindStudentsByName(ctx, eventID, first, last)
	if err != nil {
		return nil, fmt.Errorf("verifying student: %w", err)
	}

	swapped := false
	if len(matches) == 0 && last != "" {
		matches, err = s.repo.FindStudentsByName(ctx, eventID, last, first)
		if err != nil {
			return nil, fmt.Errorf("verifying student: %w", err)
		}
		swapped = len(matches) > 0
	}

	if grade := strings.TrimSpace(input.Grade); grade != "" {
		want := NormalizeGrade(grade)
		matches = filterStudents(matches, func(st Student) bool {
			return NormalizeGrade(st.Grade) == want
		})
	}
	if room := firstNonEmpty(input.HomeroomNumber, input.HomeroomNumberAlt); room != "" {
		want := NormalizeHomeroom(room)
		matches = filterStudents(matches, func(st Student) bool {
			return NormalizeHomeroom(st.HomeroomNumber) == want
		})
	}
	if teacher := firstNonEmpty(input.HomeroomTeacher, input.HomeroomTeacherAlt); teacher != "" {
		want := strings.ToLower(strings.TrimSpace(teacher))
		matches = filterStudents(matches, func(st Student) bool {
			return strings.Contains(strings.ToLower(st.HomeroomTeacher), want)
		})
	}

	result := &VerifyResult{
		Verified: len(matches) > 0,
		Swapped:  swapped,
		Matches:  len(matches),
	}
	if len(matches) == 1 {
		result.Student = &matches[0]
	}
	return result, nil
}

// NormalizeHomerooms rewrites every stored homeroom number through the
// canonical form. Safe to run repeatedly.
func (s *Service) NormalizeHomerooms(ctx context.Context, eventID int64) (*NormalizeResult, error) {
	result := &NormalizeResult{}

	students, err := s.repo.StudentsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading students: %w", err)
	}
	for i := range students {
		normalized := NormalizeHomeroom(students[i].HomeroomNumber)
		if normalized == students[i].HomeroomNumber {
			continue
		}
		students[i].HomeroomNumber = normalized
		if err := s.repo.UpdateStudent(ctx, &students[i]); err != nil {
			return nil, fmt.Errorf("normalizing student %d: %w", students[i].ID, err)
		}
		result.StudentsChanged++
	}

	teachers, err := s.repo.TeachersByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading teachers: %w", err)
	}
	for i := range teachers {
		normalized := NormalizeHomeroom(teachers[i].HomeroomNumber)
		if normalized == teachers[i].HomeroomNumber {
			continue
		}
		teachers[i].HomeroomNumber = normalized
		if err := s.repo.UpdateTeacher(ctx, &teachers[i]); err != nil {
			return nil, fmt.Errorf("normalizing teacher %d: %w", teachers[i].ID, err)
		}
		result.TeachersChanged++
	}

	s.logger.Info("homerooms normalized",
		slog.Int64("event_id", eventID),
		slog.Int("students_changed", result.StudentsChanged),
		slog.Int("teachers_changed", result.TeachersChanged),
	)
	return result, nil
}

func filterStudents(students []Student, keep func(Student) bool) []Student {
	filtered := students[:0]
	for _, st := range students {
		if keep(st) {
			filtered = append(filtered, st)
		}
	}
	return filtered
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
