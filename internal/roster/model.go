package roster

import (
	"time"

	"github.com/uptrace/bun"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	FirstName       string    `bun:"first_name,notnull" json:"firstName" validate:"required"`
	LastName        string    `bun:"last_name" json:"lastName"`
	Grade           string    `bun:"grade" json:"grade"`
	HomeroomNumber  string    `bun:"homeroom_number" json:"homeroomNumber"`
	HomeroomTeacher string    `bun:"homeroom_teacher" json:"homeroomTeacher"`
	EventID         int64     `bun:"event_id,notnull" json:"eventId"`
	TotalCans       int       `bun:"total_cans,notnull,default:0" json:"totalCans"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Name returns the display name used by leaderboards and exports.
func (s *Student) Name() string {
	return joinName(s.FirstName, s.LastName)
}

// Teacher rows mostly mirror students; only teachers with a homeroom number
// can contribute to class totals.
type Teacher struct {
	bun.BaseModel `bun:"table:teachers,alias:t"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	FirstName      string    `bun:"first_name" json:"firstName"`
	LastName       string    `bun:"last_name" json:"lastName"`
	FullName       string    `bun:"full_name,notnull" json:"fullName" validate:"required"`
	HomeroomNumber string    `bun:"homeroom_number" json:"homeroomNumber"`
	EventID        int64     `bun:"event_id,notnull" json:"eventId"`
	TotalCans      int       `bun:"total_cans,notnull,default:0" json:"totalCans"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// Name prefers the stored full name and falls back to first/last.
func (t *Teacher) Name() string {
	if t.FullName != "" {
		return t.FullName
	}
	return joinName(t.FirstName, t.LastName)
}

// StudentFilter narrows ListStudents; zero values mean "no filter".
type StudentFilter struct {
	Grade           string
	Name            string
	HomeroomNumber  string
	HomeroomTeacher string
}

type CreateStudentInput struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName"`
	Grade           string `json:"grade"`
	HomeroomNumber  string `json:"homeroomNumber"`
	HomeroomTeacher string `json:"homeroomTeacher"`
}

// UpdateStudentInput applies a partial edit; nil fields are left untouched.
// TotalCans is the manual-correction path that can drift from the ledger.
type UpdateStudentInput struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Grade           *string `json:"grade"`
	HomeroomNumber  *string `json:"homeroomNumber"`
	HomeroomTeacher *string `json:"homeroomTeacher"`
	TotalCans       *int    `json:"totalCans" validate:"omitempty,min=0"`
}

// StudentRow is one bulk-import record. Either Name or FirstName must be
// present; Name is split with SplitFullName.
type StudentRow struct {
	Name            string `json:"name"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Grade           string `json:"grade"`
	HomeroomNumber  string `json:"homeroomNumber"`
	HomeroomTeacher string `json:"homeroomTeacher"`
}

// TeacherRow is one bulk-import record for teachers. HomeroomNumber is
// optional; when it is absent the service tries to infer it from the homeroom
// teacher column of the student roster.
type TeacherRow struct {
	Name           string `json:"name"`
	FullName       string `json:"fullName"`
	HomeroomNumber string `json:"homeroomNumber"`
}

// VerifyInput is the flexible lookup payload from the reservation front end.
// The legacy client sent both snake_case and camelCase key spellings, so both
// are named fields here and coalesced in the service.
type VerifyInput struct {
	Name               string `json:"name"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Grade              string `json:"grade"`
	HomeroomNumber     string `json:"homeroom_number"`
	HomeroomNumberAlt  string `json:"homeroomNumber"`
	HomeroomTeacher    string `json:"homeroom_teacher"`
	HomeroomTeacherAlt string `json:"homeroomTeacher"`
}

type VerifyResult struct {
	Verified bool     `json:"verified"`
	Swapped  bool     `json:"swapped"`
	Matches  int      `json:"matches"`
	Student  *Student `json:"student,omitempty"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type NormalizeResult struct {
	StudentsChanged int `json:"studentsChanged"`
	TeachersChanged int `json:"teachersChanged"`
}
