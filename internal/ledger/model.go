package ledger

import (
	"time"

	"github.com/uptrace/bun"
)

// Donation is one ledger row. Rows are immutable once written; the only bulk
// mutation is the delete that runs during an event reset.
type Donation struct {
	bun.BaseModel `bun:"table:donations,alias:d"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	StudentID    *int64    `bun:"student_id" json:"studentId,omitempty"`
	TeacherID    *int64    `bun:"teacher_id" json:"teacherId,omitempty"`
	EventID      int64     `bun:"event_id,notnull" json:"eventId"`
	Amount       int       `bun:"amount,notnull" json:"amount"`
	DonationDate time.Time `bun:"donation_date,notnull" json:"donationDate"`
	Note         string    `bun:"note" json:"note,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`

	// Filled by list queries, not stored.
	StudentName string `bun:"student_name,scanonly" json:"studentName,omitempty"`
	TeacherName string `bun:"teacher_name,scanonly" json:"teacherName,omitempty"`
}

type RecordDonationInput struct {
	StudentID *int64 `json:"studentId"`
	TeacherID *int64 `json:"teacherId"`
	Amount    int    `json:"amount" validate:"min=0"`
	Note      string `json:"note"`
}

// RecordResult pairs the stored donation with the recipient's running total
// after the increment.
type RecordResult struct {
	Donation *Donation `json:"donation"`
	NewTotal int       `json:"newTotal"`
}

// DonationRecorded is the message published to the broker after a donation
// commits. ID is a fresh UUID per message, EventID the fundraising event.
type DonationRecorded struct {
	ID           string    `json:"id"`
	EventID      int64     `json:"eventId"`
	Entity       string    `json:"entity"`
	EntityID     int64     `json:"entityId"`
	Amount       int       `json:"amount"`
	NewTotal     int       `json:"newTotal"`
	DonationDate time.Time `json:"donationDate"`
}

type RecomputeResult struct {
	StudentsUpdated int64 `json:"studentsUpdated"`
	TeachersUpdated int64 `json:"teachersUpdated"`
}
