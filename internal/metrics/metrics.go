package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics
	Runtime   *RuntimeMetrics

	donationsRecorded    metric.Int64Counter
	cansCollected        metric.Int64Counter
	leaderboardViews     metric.Int64Counter
	dailyDonorViews      metric.Int64Counter
	reservationsCreated  metric.Int64Counter
	reservationConflicts metric.Int64Counter
	rosterRowsImported   metric.Int64Counter

	logger *slog.Logger
}

func New(ctx context.Context, serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	database, err := NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	messaging, err := NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	rt, err := NewRuntimeMetrics(meter)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		Database:  database,
		Messaging: messaging,
		Runtime:   rt,
		logger:    logger,
	}

	m.donationsRecorded, err = meter.Int64Counter(
		"candrive.donations.recorded",
		metric.WithDescription("Total number of donations recorded"),
		metric.WithUnit("{donation}"),
	)
	if err != nil {
		return nil, err
	}

	m.cansCollected, err = meter.Int64Counter(
		"candrive.cans.collected",
		metric.WithDescription("Total cans recorded across all donations"),
		metric.WithUnit("{can}"),
	)
	if err != nil {
		return nil, err
	}

	m.leaderboardViews, err = meter.Int64Counter(
		"candrive.leaderboard.views",
		metric.WithDescription("Total number of full leaderboard computations served"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.dailyDonorViews, err = meter.Int64Counter(
		"candrive.leaderboard.daily_views",
		metric.WithDescription("Total number of daily donor computations served"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.reservationsCreated, err = meter.Int64Counter(
		"candrive.reservations.created",
		metric.WithDescription("Total number of street reservations created"),
		metric.WithUnit("{reservation}"),
	)
	if err != nil {
		return nil, err
	}

	m.reservationConflicts, err = meter.Int64Counter(
		"candrive.reservations.conflicts",
		metric.WithDescription("Total number of street reservations rejected as already taken"),
		metric.WithUnit("{conflict}"),
	)
	if err != nil {
		return nil, err
	}

	m.rosterRowsImported, err = meter.Int64Counter(
		"candrive.roster.rows_imported",
		metric.WithDescription("Total number of roster rows accepted via bulk import"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")

	return m, nil
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Database:  &DatabaseMetrics{},
		Messaging: &MessagingMetrics{},
		Runtime:   &RuntimeMetrics{},
	}
}

func (m *Metrics) RecordDonation(ctx context.Context, cans int64) {
	if m == nil {
		return
	}
	if m.donationsRecorded != nil {
		m.donationsRecorded.Add(ctx, 1)
	}
	if m.cansCollected != nil {
		m.cansCollected.Add(ctx, cans)
	}
}

func (m *Metrics) RecordLeaderboardView(ctx context.Context) {
	if m != nil && m.leaderboardViews != nil {
		m.leaderboardViews.Add(ctx, 1)
	}
}

func (m *Metrics) RecordDailyDonorView(ctx context.Context) {
	if m != nil && m.dailyDonorViews != nil {
		m.dailyDonorViews.Add(ctx, 1)
	}
}

func (m *Metrics) RecordReservationCreated(ctx context.Context) {
	if m != nil && m.reservationsCreated != nil {
		m.reservationsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordReservationConflict(ctx context.Context) {
	if m != nil && m.reservationConflicts != nil {
		m.reservationConflicts.Add(ctx, 1)
	}
}

func (m *Metrics) RecordRosterImport(ctx context.Context, rows int64) {
	if m != nil && m.rosterRowsImported != nil {
		m.rosterRowsImported.Add(ctx, rows)
	}
}
