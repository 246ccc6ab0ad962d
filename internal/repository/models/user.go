package models

import (
	"database/sql"
	"time"
)

// User represents one row of the roster.
type User struct {
	ID         string         `db:"ID"`        // ULID
	GoogleID   sql.NullString `db:"GOOGLE_ID"` // Google OAuth subject, NULL until first login
	Email      string         `db:"EMAIL"`     // Unique login email
	Name       string         `db:"NAME"`
	SeatNumber sql.NullString `db:"SEAT_NUMBER"` // Class seat label, optional
	Role       string         `db:"ROLE"`        // admin / student
	CreatedAt  time.Time      `db:"CREATED_AT"`
	UpdatedAt  time.Time      `db:"UPDATED_AT"`
	DeletedAt  sql.NullTime   `db:"DELETED_AT"` // Soft delete marker
}
