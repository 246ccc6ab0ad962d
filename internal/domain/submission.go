package domain

import (
	"encoding/json"
	"time"
)

// SubmissionStatus is the adjudicated state of one submission attempt.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "PENDING"
	StatusApproved SubmissionStatus = "APPROVED"
	StatusRejected SubmissionStatus = "REJECTED"
)

// SubmissionLog is one row of the append-only attempt history for a
// (student, exam) pair.
type SubmissionLog struct {
	ID              string
	UserID          string
	ExamTypeID      string
	AttemptCount    int
	Status          SubmissionStatus
	LastAttemptTime time.Time
	// AIResponse is the full classifier payload, preserved for audit.
	AIResponse json.RawMessage
	CreatedAt  time.Time
}

// Validate validates the submission log
func (l *SubmissionLog) Validate() error {
	if l.UserID == "" {
		return NewInvalidInputError("user ID is required")
	}
	if l.ExamTypeID == "" {
		return NewInvalidInputError("exam type ID is required")
	}
	if l.AttemptCount <= 0 {
		return NewInvalidInputError("attempt count must be positive")
	}
	switch l.Status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return NewInvalidInputError("invalid submission status")
	}
	return nil
}

// PairState is the derived state of a (student, exam) pair.
type PairState struct {
	AttemptCount int
	Status       SubmissionStatus
}

// Exhausted reports whether the pair accepts no further attempts.
func (s PairState) Exhausted() bool {
	return s.AttemptCount >= MaxSubmissionAttempts && s.Status != StatusApproved
}

// DerivePairState reduces the full log history of one pair to its current
// state. Any approved row makes the pair permanently approved regardless of
// recency; otherwise the most recent row's status wins; an empty history is
// PENDING with zero attempts.
//
// logs must be ordered newest first, as the repository returns them.
func DerivePairState(logs []*SubmissionLog) PairState {
	state := PairState{AttemptCount: len(logs), Status: StatusPending}
	if len(logs) == 0 {
		return state
	}
	for _, l := range logs {
		if l.Status == StatusApproved {
			state.Status = StatusApproved
			return state
		}
	}
	state.Status = logs[0].Status
	return state
}

// SubmitOutcome classifies the result of a submit call. All variants except
// the availability failures are expected business outcomes callers branch on.
type SubmitOutcome string

const (
	OutcomeApproved          SubmitOutcome = "APPROVED"
	OutcomeRejected          SubmitOutcome = "REJECTED"
	OutcomeAlreadyApproved   SubmitOutcome = "ALREADY_APPROVED"
	OutcomeClosed            SubmitOutcome = "CLOSED"
	OutcomeAttemptsExhausted SubmitOutcome = "ATTEMPTS_EXHAUSTED"
)

// SubmitResult is what the workflow returns for an adjudicated or refused
// submission.
type SubmitResult struct {
	Outcome           SubmitOutcome
	AttemptCount      int
	RemainingAttempts int
	Confidence        float64
	Reason            string
}
