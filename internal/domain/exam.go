package domain

import (
	"time"
)

// UserRole distinguishes administrators from students.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleStudent UserRole = "student"
)

// User represents a domain user object
type User struct {
	ID         string
	GoogleID   string
	Email      string
	Name       string
	SeatNumber string
	Role       UserRole
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// NewUser creates a new User instance
func NewUser(googleID, email string, role UserRole) *User {
	now := time.Now()
	return &User{
		GoogleID:  googleID,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the user
func (u *User) Validate() error {
	if u.Email == "" {
		return NewInvalidInputError("email is required")
	}
	if u.Role != RoleAdmin && u.Role != RoleStudent {
		return NewInvalidInputError("role must be admin or student")
	}
	return nil
}

// ExamType represents one column of the grade sheet. Names are unique.
type ExamType struct {
	ID                  string
	Name                string
	IsMandatory         bool
	IsOpenForSubmission bool
	SubmissionDeadline  *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewExamType creates a new ExamType instance
func NewExamType(name string, mandatory bool) *ExamType {
	now := time.Now()
	return &ExamType{
		Name:        name,
		IsMandatory: mandatory,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates the exam type
func (e *ExamType) Validate() error {
	if e.Name == "" {
		return NewInvalidInputError("name is required")
	}
	return nil
}

// EffectivelyOpen reports whether the exam accepts submissions at the given
// instant: the manual switch must be on and the deadline, if any, not passed.
func (e *ExamType) EffectivelyOpen(now time.Time) bool {
	if !e.IsOpenForSubmission {
		return false
	}
	if e.SubmissionDeadline != nil && !now.Before(*e.SubmissionDeadline) {
		return false
	}
	return true
}

// Score is the single recorded value for a (student, exam) pair.
type Score struct {
	ID         string
	UserID     string
	ExamTypeID string
	Value      float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate validates the score
func (s *Score) Validate() error {
	if s.UserID == "" {
		return NewInvalidInputError("user ID is required")
	}
	if s.ExamTypeID == "" {
		return NewInvalidInputError("exam type ID is required")
	}
	return nil
}
