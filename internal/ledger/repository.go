package ledger

import (
	"context"
	"database/sql"
	"time"

	"candrive-backend/internal/metrics"
	"candrive-backend/internal/roster"

	"github.com/uptrace/bun"
)

type Repository interface {
	Record(ctx context.Context, donation *Donation) (*Donation, int, error)
	ByEvent(ctx context.Context, eventID int64) ([]Donation, error)
	Between(ctx context.Context, eventID int64, from, to time.Time) ([]Donation, error)
	List(ctx context.Context, eventID int64, limit, offset int) ([]Donation, error)
	DeleteByEvent(ctx context.Context, eventID int64) (int64, error)
	RecomputeTotals(ctx context.Context, eventID int64) (*RecomputeResult, error)
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

// Record inserts the donation and bumps the recipient's denormalized total in
// the same transaction, so the running total can never miss a committed row.
// Returns the stored donation and the new total.
func (r *repository) Record(ctx context.Context, donation *Donation) (*Donation, int, error) {
	start := time.Now()
	var newTotal int

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(donation).Returning("*").Exec(ctx); err != nil {
			return err
		}

		if donation.StudentID != nil {
			result, err := tx.NewUpdate().
				Model((*roster.Student)(nil)).
				Set("total_cans = total_cans + ?", donation.Amount).
				Set("updated_at = ?", time.Now().UTC()).
				Where("id = ?", *donation.StudentID).
				Where("event_id = ?", donation.EventID).
				Exec(ctx)
			if err != nil {
				return err
			}
			rows, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if rows == 0 {
				return roster.ErrStudentNotFound
			}
			return tx.NewSelect().
				Model((*roster.Student)(nil)).
				Column("total_cans").
				Where("id = ?", *donation.StudentID).
				Scan(ctx, &newTotal)
		}

		result, err := tx.NewUpdate().
			Model((*roster.Teacher)(nil)).
			Set("total_cans = total_cans + ?", donation.Amount).
			Where("id = ?", *donation.TeacherID).
			Where("event_id = ?", donation.EventID).
			Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return roster.ErrTeacherNotFound
		}
		return tx.NewSelect().
			Model((*roster.Teacher)(nil)).
			Column("total_cans").
			Where("id = ?", *donation.TeacherID).
			Scan(ctx, &newTotal)
	})

	r.metrics.Database.RecordQuery(ctx, "tx", "donations", time.Since(start), err)

	if err != nil {
		return nil, 0, err
	}
	return donation, newTotal, nil
}

func (r *repository) ByEvent(ctx context.Context, eventID int64) ([]Donation, error) {
	start := time.Now()
	var donations []Donation
	err := r.db.NewSelect().
		Model(&donations).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "donations", time.Since(start), err)

	return donations, err
}

// Between returns donations with donation_date in [from, to). Both bounds are
// expected in UTC.
func (r *repository) Between(ctx context.Context, eventID int64, from, to time.Time) ([]Donation, error) {
	start := time.Now()
	var donations []Donation
	err := r.db.NewSelect().
		Model(&donations).
		Where("event_id = ?", eventID).
		Where("donation_date >= ?", from).
		Where("donation_date < ?", to).
		Order("id ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "donations", time.Since(start), err)

	return donations, err
}

func (r *repository) List(ctx context.Context, eventID int64, limit, offset int) ([]Donation, error) {
	start := time.Now()
	var donations []Donation
	err := r.db.NewSelect().
		Model(&donations).
		ColumnExpr("d.*").
		ColumnExpr("(SELECT first_name || ' ' || last_name FROM students WHERE students.id = d.student_id) AS student_name").
		ColumnExpr("(SELECT full_name FROM teachers WHERE teachers.id = d.teacher_id) AS teacher_name").
		Where("d.event_id = ?", eventID).
		Order("d.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "donations", time.Since(start), err)

	return donations, err
}

func (r *repository) DeleteByEvent(ctx context.Context, eventID int64) (int64, error) {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Donation)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "donations", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// RecomputeTotals replaces every denormalized total for the event with the
// sum of its ledger rows. Manual edits to total_cans are overwritten.
func (r *repository) RecomputeTotals(ctx context.Context, eventID int64) (*RecomputeResult, error) {
	start := time.Now()
	result := &RecomputeResult{}

	res, err := r.db.ExecContext(ctx, `
		UPDATE students SET total_cans = (
			SELECT COALESCE(SUM(amount), 0) FROM donations
			WHERE donations.student_id = students.id
		), updated_at = ?
		WHERE event_id = ?`, time.Now().UTC(), eventID)
	if err == nil {
		result.StudentsUpdated, err = res.RowsAffected()
	}
	r.metrics.Database.RecordQuery(ctx, "update", "students", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	res, err = r.db.ExecContext(ctx, `
		UPDATE teachers SET total_cans = (
			SELECT COALESCE(SUM(amount), 0) FROM donations
			WHERE donations.teacher_id = teachers.id
		)
		WHERE event_id = ?`, eventID)
	if err == nil {
		result.TeachersUpdated, err = res.RowsAffected()
	}
	r.metrics.Database.RecordQuery(ctx, "update", "teachers", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return result, nil
}
