package event

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is the top-level scope. Every student, teacher, donation and
// reservation row hangs off one event id.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID        int64      `bun:"id,pk,autoincrement" json:"id"`
	Name      string     `bun:"name,notnull" json:"name" validate:"required"`
	StartDate *time.Time `bun:"start_date" json:"startDate,omitempty"`
	EndDate   *time.Time `bun:"end_date" json:"endDate,omitempty"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

type CreateEventInput struct {
	Name      string     `json:"name" validate:"required"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// ResetResult reports what a full event reset removed, in deletion order.
type ResetResult struct {
	ReservationsDeleted int64 `json:"reservationsDeleted"`
	DonationsDeleted    int64 `json:"donationsDeleted"`
	StudentsDeleted     int64 `json:"studentsDeleted"`
	TeachersDeleted     int64 `json:"teachersDeleted"`
}
