package event

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"candrive-backend/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) *Repository {
	return &Repository{
		db:      db,
		metrics: m,
	}
}

func (r *Repository) Create(ctx context.Context, event *Event) (*Event, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(event).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "events", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Event, error) {
	start := time.Now()
	event := new(Event)
	err := r.db.NewSelect().Model(event).Where("e.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "events", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *Repository) List(ctx context.Context) ([]Event, error) {
	start := time.Now()
	var events []Event
	err := r.db.NewSelect().
		Model(&events).
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "events", time.Since(start), err)

	return events, err
}
