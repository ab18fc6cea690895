package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"candrive-backend/internal/metrics"

	"github.com/google/uuid"
)

var (
	ErrDonationTarget = errors.New("exactly one of studentId or teacherId must be set")
	ErrNegativeAmount = errors.New("donation amount must not be negative")
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Publisher sends one encoded message to the configured broker. Both the
// NATS and Kafka producers satisfy it.
type Publisher interface {
	SendMessage(ctx context.Context, value []byte) error
	Close() error
}

type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService builds the donation service. publisher may be nil, in which
// case recorded donations are simply not announced.
func NewService(repo Repository, publisher Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *Service) Record(ctx context.Context, eventID int64, input RecordDonationInput) (*RecordResult, error) {
	if (input.StudentID == nil) == (input.TeacherID == nil) {
		return nil, ErrDonationTarget
	}
	if input.Amount < 0 {
		return nil, ErrNegativeAmount
	}

	donation := &Donation{
		StudentID:    input.StudentID,
		TeacherID:    input.TeacherID,
		EventID:      eventID,
		Amount:       input.Amount,
		DonationDate: s.now().UTC(),
		Note:         strings.TrimSpace(input.Note),
	}

	stored, newTotal, err := s.repo.Record(ctx, donation)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordDonation(ctx, int64(stored.Amount))
	s.logger.Info("donation recorded",
		slog.Int64("donation_id", stored.ID),
		slog.Int64("event_id", eventID),
		slog.Int("amount", stored.Amount),
		slog.Int("new_total", newTotal),
	)

	s.publishRecorded(ctx, stored, newTotal)

	return &RecordResult{Donation: stored, NewTotal: newTotal}, nil
}

// publishRecorded announces a committed donation. Failures are logged and
// swallowed: the donation is already durable and the message stream is a
// convenience for dashboards.
func (s *Service) publishRecorded(ctx context.Context, donation *Donation, newTotal int) {
	if s.publisher == nil {
		return
	}

	msg := DonationRecorded{
		ID:           uuid.NewString(),
		EventID:      donation.EventID,
		Entity:       "student",
		Amount:       donation.Amount,
		NewTotal:     newTotal,
		DonationDate: donation.DonationDate,
	}
	if donation.StudentID != nil {
		msg.EntityID = *donation.StudentID
	} else {
		msg.Entity = "teacher"
		msg.EntityID = *donation.TeacherID
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("failed to encode donation message", slog.String("error", err.Error()))
		return
	}
	if err := s.publisher.SendMessage(ctx, payload); err != nil {
		s.logger.Warn("failed to publish donation message", slog.String("error", err.Error()))
	}
}

func (s *Service) List(ctx context.Context, eventID int64, limit, offset int) ([]Donation, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	donations, err := s.repo.List(ctx, eventID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}
	return donations, nil
}

// DonationsByEvent feeds the leaderboard aggregator.
func (s *Service) DonationsByEvent(ctx context.Context, eventID int64) ([]Donation, error) {
	return s.repo.ByEvent(ctx, eventID)
}

// DonationsBetween feeds the daily-donor aggregator; bounds are UTC, [from, to).
func (s *Service) DonationsBetween(ctx context.Context, eventID int64, from, to time.Time) ([]Donation, error) {
	return s.repo.Between(ctx, eventID, from, to)
}

// RecomputeTotals rebuilds every denormalized total from the ledger.
func (s *Service) RecomputeTotals(ctx context.Context, eventID int64) (*RecomputeResult, error) {
	result, err := s.repo.RecomputeTotals(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("recomputing totals: %w", err)
	}

	s.logger.Info("totals recomputed",
		slog.Int64("event_id", eventID),
		slog.Int64("students_updated", result.StudentsUpdated),
		slog.Int64("teachers_updated", result.TeachersUpdated),
	)
	return result, nil
}
