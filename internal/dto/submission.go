package dto

import (
	"encoding/json"
	"time"
)

// SubmitScoreRequest represents a student's proof-of-score submission
// @Description Request body accompanying the evidence image upload
type SubmitScoreRequest struct {
	ExamTypeID     string  `json:"exam_type_id" form:"exam_type_id"`
	ClaimedScore   float64 `json:"claimed_score" form:"claimed_score"`
	ChallengeToken string  `json:"challenge_token" form:"challenge_token"`
}

// SubmissionResultResponse represents the adjudication of one submission
// @Description Result of a proof-of-score submission
type SubmissionResultResponse struct {
	Outcome           string  `json:"outcome"` // APPROVED, REJECTED, ALREADY_APPROVED, CLOSED, ATTEMPTS_EXHAUSTED
	AttemptCount      int     `json:"attempt_count"`
	RemainingAttempts int     `json:"remaining_attempts"`
	Confidence        float64 `json:"confidence,omitempty"`
	Reason            string  `json:"reason,omitempty"`
}

// SubmissionLogResponse represents one attempt row in the API response
type SubmissionLogResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ExamTypeID      string          `json:"exam_type_id"`
	AttemptCount    int             `json:"attempt_count"`
	Status          string          `json:"status"`
	LastAttemptTime time.Time       `json:"last_attempt_time"`
	AIResponse      json.RawMessage `json:"ai_response,omitempty"`
}

// SubmissionStateResponse represents the derived state of a (student, exam) pair
type SubmissionStateResponse struct {
	ExamTypeID        string `json:"exam_type_id"`
	Status            string `json:"status"`
	AttemptCount      int    `json:"attempt_count"`
	RemainingAttempts int    `json:"remaining_attempts"`
	CanSubmit         bool   `json:"can_submit"`
}
