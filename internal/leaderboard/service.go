package leaderboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"candrive-backend/internal/ledger"
	"candrive-backend/internal/metrics"
	"candrive-backend/internal/roster"
)

// RosterSource supplies the roster snapshot. *roster.Service satisfies it.
type RosterSource interface {
	StudentsByEvent(ctx context.Context, eventID int64) ([]roster.Student, error)
	TeachersByEvent(ctx context.Context, eventID int64) ([]roster.Teacher, error)
}

// LedgerSource supplies donation rows. *ledger.Service satisfies it.
type LedgerSource interface {
	DonationsByEvent(ctx context.Context, eventID int64) ([]ledger.Donation, error)
	DonationsBetween(ctx context.Context, eventID int64, from, to time.Time) ([]ledger.Donation, error)
}

type Service struct {
	roster  RosterSource
	ledger  LedgerSource
	loc     *time.Location
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(rosterSrc RosterSource, ledgerSrc LedgerSource, loc *time.Location, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		roster:  rosterSrc,
		ledger:  ledgerSrc,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
		metrics: m,
	}
}

// Full computes the full-period board for the event.
func (s *Service) Full(ctx context.Context, eventID int64) (*Board, error) {
	students, teachers, err := s.loadRoster(ctx, eventID)
	if err != nil {
		return nil, err
	}
	donations, err := s.ledger.DonationsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("loading donations: %w", err)
	}

	s.metrics.RecordLeaderboardView(ctx)
	return Compute(students, teachers, donations), nil
}

// Daily computes the board for the current 03:00-anchored collection day.
func (s *Service) Daily(ctx context.Context, eventID int64) (*DailyBoard, error) {
	students, teachers, err := s.loadRoster(ctx, eventID)
	if err != nil {
		return nil, err
	}

	from, to := DayWindow(s.now(), s.loc)
	donations, err := s.ledger.DonationsBetween(ctx, eventID, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading donations: %w", err)
	}

	s.metrics.RecordDailyDonorView(ctx)
	date := from.In(s.loc).Format("2006-01-02")
	return ComputeDaily(students, teachers, donations, date), nil
}

// WriteFullCSV streams the printable leaderboard for the event.
func (s *Service) WriteFullCSV(ctx context.Context, eventID int64, w io.Writer) error {
	students, teachers, err := s.loadRoster(ctx, eventID)
	if err != nil {
		return err
	}
	return WriteCSV(w, students, teachers)
}

func (s *Service) loadRoster(ctx context.Context, eventID int64) ([]roster.Student, []roster.Teacher, error) {
	students, err := s.roster.StudentsByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading students: %w", err)
	}
	teachers, err := s.roster.TeachersByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading teachers: %w", err)
	}
	return students, teachers, nil
}
