package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"candrive-backend/internal/metrics"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNameRequired        = errors.New("a claimant name is required")
	ErrStreetRequired      = errors.New("a street name is required")
)

// StreetTakenError reports that a street in the request is already claimed
// by someone else.
type StreetTakenError struct {
	Street string
}

func (e *StreetTakenError) Error() string {
	return fmt.Sprintf("street %q is already reserved", e.Street)
}

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

func (s *Service) List(ctx context.Context, eventID int64) ([]Reservation, error) {
	reservations, err := s.repo.ByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	return reservations, nil
}

// Create claims one or more streets (comma-separated in street_name). Every
// street token is conflict-checked before anything is written: a claim by a
// different person on any token fails the whole request, while the
// claimant's own earlier rows on matching streets are replaced.
func (s *Service) Create(ctx context.Context, eventID int64, input CreateReservationInput) (*Reservation, error) {
	claimant := strings.TrimSpace(input.Name)
	if claimant == "" {
		claimant = strings.TrimSpace(input.StudentName)
	}
	if claimant == "" {
		return nil, ErrNameRequired
	}

	street := strings.TrimSpace(input.StreetName)
	if street == "" {
		street = strings.TrimSpace(input.StreetNameAlt)
	}
	if street == "" {
		return nil, ErrStreetRequired
	}

	replace := make(map[int64]bool)
	for _, token := range strings.Split(street, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		existing, err := s.repo.ByStreetLike(ctx, eventID, token)
		if err != nil {
			return nil, fmt.Errorf("checking street %q: %w", token, err)
		}
		for _, prior := range existing {
			if !strings.EqualFold(strings.TrimSpace(prior.Name), claimant) {
				s.metrics.RecordReservationConflict(ctx)
				return nil, &StreetTakenError{Street: token}
			}
			replace[prior.ID] = true
		}
	}

	for id := range replace {
		if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, ErrReservationNotFound) {
			return nil, fmt.Errorf("replacing reservation %d: %w", id, err)
		}
	}

	geojson := strings.TrimSpace(string(input.GeoJSON))
	if geojson == "" {
		geojson = "{}"
	}

	reservation := &Reservation{
		EventID:      eventID,
		Name:         claimant,
		StreetName:   street,
		StudentID:    input.StudentID,
		GroupMembers: strings.TrimSpace(input.GroupMembers),
		GeoJSON:      geojson,
	}
	created, err := s.repo.Create(ctx, reservation)
	if err != nil {
		return nil, fmt.Errorf("creating reservation: %w", err)
	}

	s.metrics.RecordReservationCreated(ctx)
	s.logger.Info("street reserved",
		slog.Int64("reservation_id", created.ID),
		slog.Int64("event_id", eventID),
		slog.String("street", street),
		slog.Int("replaced", len(replace)),
	)
	return created, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("reservation deleted", slog.Int64("reservation_id", id))
	return nil
}
