package reservation

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Reservation is one street claim. A street has at most one active claim per
// event; the same claimant re-reserving replaces the earlier row.
type Reservation struct {
	bun.BaseModel `bun:"table:reservations,alias:r"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	EventID      int64     `bun:"event_id,notnull" json:"eventId"`
	Name         string    `bun:"name,notnull" json:"name"`
	StreetName   string    `bun:"street_name,notnull" json:"streetName"`
	StudentID    *int64    `bun:"student_id" json:"studentId,omitempty"`
	GroupMembers string    `bun:"group_members" json:"groupMembers,omitempty"`
	GeoJSON      string    `bun:"geojson,notnull,default:'{}'" json:"geojson"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// CreateReservationInput accepts both key spellings the front end has used
// over time. GeoJSON is carried opaquely; nothing here ever parses it.
type CreateReservationInput struct {
	Name          string          `json:"name"`
	StudentName   string          `json:"student_name"`
	StreetName    string          `json:"street_name"`
	StreetNameAlt string          `json:"streetName"`
	StudentID     *int64          `json:"student_id"`
	GroupMembers  string          `json:"group_members"`
	GeoJSON       json.RawMessage `json:"geojson"`
}
