package reservation

import (
	"context"
	"strings"
	"time"

	"candrive-backend/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, reservation *Reservation) (*Reservation, error)
	ByEvent(ctx context.Context, eventID int64) ([]Reservation, error)
	ByStreetLike(ctx context.Context, eventID int64, street string) ([]Reservation, error)
	Delete(ctx context.Context, id int64) error
	DeleteByEvent(ctx context.Context, eventID int64) (int64, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, reservation *Reservation) (*Reservation, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(reservation).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "reservations", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func (r *repository) ByEvent(ctx context.Context, eventID int64) ([]Reservation, error) {
	start := time.Now()
	var reservations []Reservation
	err := r.db.NewSelect().
		Model(&reservations).
		Where("event_id = ?", eventID).
		Order("id DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "reservations", time.Since(start), err)

	return reservations, err
}

func (r *repository) ByStreetLike(ctx context.Context, eventID int64, street string) ([]Reservation, error) {
	start := time.Now()
	var reservations []Reservation
	err := r.db.NewSelect().
		Model(&reservations).
		Where("event_id = ?", eventID).
		Where("lower(street_name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(street))+"%").
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "reservations", time.Since(start), err)

	return reservations, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	reservation := &Reservation{ID: id}
	result, err := r.db.NewDelete().Model(reservation).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "reservations", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *repository) DeleteByEvent(ctx context.Context, eventID int64) (int64, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Reservation)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "reservations", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
