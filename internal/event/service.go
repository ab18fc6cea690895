package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrConfirmationRequired = errors.New("event reset requires confirm=true")
)

// RosterStore is the slice of the roster repository the reset needs.
type RosterStore interface {
	DeleteStudentsByEvent(ctx context.Context, eventID int64) (int64, error)
	DeleteTeachersByEvent(ctx context.Context, eventID int64) (int64, error)
}

// LedgerStore deletes donation rows for an event.
type LedgerStore interface {
	DeleteByEvent(ctx context.Context, eventID int64) (int64, error)
}

// ReservationStore deletes reservation rows for an event.
type ReservationStore interface {
	DeleteByEvent(ctx context.Context, eventID int64) (int64, error)
}

type Service struct {
	repo         *Repository
	roster       RosterStore
	ledger       LedgerStore
	reservations ReservationStore
	logger       *slog.Logger
}

func NewService(repo *Repository, roster RosterStore, ledger LedgerStore, reservations ReservationStore, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		roster:       roster,
		ledger:       ledger,
		reservations: reservations,
		logger:       logger,
	}
}

// Ensure returns the event with the given id, creating it with the given
// name if it does not exist yet. Called once at startup with the configured
// bootstrap event; nothing else assumes a default event.
func (s *Service) Ensure(ctx context.Context, id int64, name string) (*Event, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrEventNotFound) {
		return nil, fmt.Errorf("looking up event %d: %w", id, err)
	}

	created, err := s.repo.Create(ctx, &Event{ID: id, Name: name})
	if err != nil {
		return nil, fmt.Errorf("creating event %d: %w", id, err)
	}

	s.logger.Info("event created",
		slog.Int64("event_id", created.ID),
		slog.String("name", created.Name),
	)
	return created, nil
}

func (s *Service) Create(ctx context.Context, input CreateEventInput) (*Event, error) {
	event := &Event{
		Name:      strings.TrimSpace(input.Name),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}

	s.logger.Info("event created",
		slog.Int64("event_id", created.ID),
		slog.String("name", created.Name),
	)
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

// Reset wipes every row belonging to the event: reservations, then
// donations, then students, then teachers. The event row itself survives.
// Refuses to run without confirm.
func (s *Service) Reset(ctx context.Context, eventID int64, confirm bool) (*ResetResult, error) {
	if !confirm {
		return nil, ErrConfirmationRequired
	}
	if _, err := s.repo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	result := &ResetResult{}
	var err error

	if result.ReservationsDeleted, err = s.reservations.DeleteByEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("deleting reservations: %w", err)
	}
	if result.DonationsDeleted, err = s.ledger.DeleteByEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("deleting donations: %w", err)
	}
	if result.StudentsDeleted, err = s.roster.DeleteStudentsByEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("deleting students: %w", err)
	}
	if result.TeachersDeleted, err = s.roster.DeleteTeachersByEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("deleting teachers: %w", err)
	}

	s.logger.Warn("event reset",
		slog.Int64("event_id", eventID),
		slog.Int64("reservations_deleted", result.ReservationsDeleted),
		slog.Int64("donations_deleted", result.DonationsDeleted),
		slog.Int64("students_deleted", result.StudentsDeleted),
		slog.Int64("teachers_deleted", result.TeachersDeleted),
	)
	return result, nil
}
