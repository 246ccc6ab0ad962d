package domain

import (
	"context"
	"time"
)

// ExamTypeRepository defines the interface for exam catalog persistence.
// ListAll returns the canonical catalog order: mandatory first, then name
// ascending. The catalog is authoritative at query time; implementations must
// not cache across calls.
type ExamTypeRepository interface {
	ListAll(ctx context.Context) ([]*ExamType, error)
	GetByID(ctx context.Context, id string) (*ExamType, error)
	GetByName(ctx context.Context, name string) (*ExamType, error)
	Create(ctx context.Context, exam *ExamType) error
	SetMandatory(ctx context.Context, mandatoryIDs []string) error
	SetOpenForSubmission(ctx context.Context, id string, open bool) error
	SetDeadline(ctx context.Context, id string, deadline *time.Time) error
	// Delete removes the exam and cascades to its scores and submission logs.
	Delete(ctx context.Context, id string) error
}

// ScoreRepository defines the interface for score persistence. One row per
// (student, exam) pair.
type ScoreRepository interface {
	GetByUser(ctx context.Context, userID string) ([]*Score, error)
	GetByPair(ctx context.Context, userID, examTypeID string) (*Score, error)
	ListAll(ctx context.Context) ([]*Score, error)
	// Upsert inserts the pair's row or updates its value in place.
	Upsert(ctx context.Context, score *Score) error
}

// SubmissionLogRepository defines the interface for the append-only attempt
// history.
type SubmissionLogRepository interface {
	// ListByPair returns the pair's rows newest first.
	ListByPair(ctx context.Context, userID, examTypeID string) ([]*SubmissionLog, error)
	// LockPair serializes concurrent submissions for one pair. Must be called
	// inside a transaction; the lock is held until commit or rollback.
	LockPair(ctx context.Context, userID, examTypeID string) error
	Append(ctx context.Context, log *SubmissionLog) error
	// ListRecent returns the newest rows across all users, capped at limit.
	// An empty userID means no user filter.
	ListRecent(ctx context.Context, userID string, limit int) ([]*SubmissionLog, error)
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*User, error)
	Update(ctx context.Context, user *User) error
	ListStudents(ctx context.Context) ([]*User, error)
}

// TransactionManager runs a function within a database transaction. The
// transactional executor travels in the context; repositories pick it up
// transparently.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
