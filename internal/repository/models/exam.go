package models

import (
	"database/sql"
	"time"
)

// ExamType represents one exam column of the grade sheet.
type ExamType struct {
	ID                  string       `db:"ID"`                     // ULID
	Name                string       `db:"NAME"`                   // Unique exam name
	IsMandatory         bool         `db:"IS_MANDATORY"`           // Always counted in the average when set
	IsOpenForSubmission bool         `db:"IS_OPEN_FOR_SUBMISSION"` // Manual submission switch
	SubmissionDeadline  sql.NullTime `db:"SUBMISSION_DEADLINE"`    // NULL means no deadline
	CreatedAt           time.Time    `db:"CREATED_AT"`
	UpdatedAt           time.Time    `db:"UPDATED_AT"`
}

// Score represents the single recorded value for a (student, exam) pair.
type Score struct {
	ID         string    `db:"ID"`           // ULID
	UserID     string    `db:"USER_ID"`      // Foreign key to users table
	ExamTypeID string    `db:"EXAM_TYPE_ID"` // Foreign key to exam_types table
	Value      float64   `db:"VALUE"`
	CreatedAt  time.Time `db:"CREATED_AT"`
	UpdatedAt  time.Time `db:"UPDATED_AT"`
}

// SubmissionLog represents one attempt row of the append-only submission history.
type SubmissionLog struct {
	ID              string         `db:"ID"`                // ULID
	UserID          string         `db:"USER_ID"`           // Foreign key to users table
	ExamTypeID      string         `db:"EXAM_TYPE_ID"`      // Foreign key to exam_types table
	AttemptCount    int            `db:"ATTEMPT_COUNT"`     // Monotonic per (user, exam) pair
	Status          string         `db:"STATUS"`            // PENDING / APPROVED / REJECTED
	LastAttemptTime time.Time      `db:"LAST_ATTEMPT_TIME"` // When the attempt was adjudicated
	AIResponse      sql.NullString `db:"AI_RESPONSE"`       // Raw classifier payload (CLOB)
	CreatedAt       time.Time      `db:"CREATED_AT"`
}
