package domain

import (
	"context"
	"encoding/json"
)

// Evidence is the proof-of-score image a student submits, with the claim the
// classifier verifies it against.
type Evidence struct {
	Image        []byte
	MimeType     string
	ExamName     string
	ClaimedScore float64
}

// Verdict is the structured judgment of the evidence classifier.
type Verdict struct {
	Confidence       float64  `json:"confidence"`
	Reason           string   `json:"reason"`
	DetectedExamName *string  `json:"detected_exam_name,omitempty"`
	DetectedScore    *float64 `json:"detected_score,omitempty"`
	IsClear          *bool    `json:"is_clear,omitempty"`
	IsComplete       *bool    `json:"is_complete,omitempty"`
	// Raw is the verbatim classifier payload, preserved for the audit log.
	Raw json.RawMessage `json:"-"`
}

// ApprovalConfidenceThreshold is the cut above which a verdict approves the
// claimed score.
const ApprovalConfidenceThreshold = 75.0

// Approves reports whether the verdict clears the approval threshold.
func (v *Verdict) Approves() bool {
	return v.Confidence > ApprovalConfidenceThreshold
}

// EvidenceVerifier is the AI classifier boundary. Implementations must treat
// unreachable backends and unparseable output as hard failures
// (CodeVerificationUnavailable), never as rejections.
type EvidenceVerifier interface {
	VerifyEvidence(ctx context.Context, ev Evidence) (*Verdict, error)
}

// ChallengeVerifier is the anti-automation challenge boundary. A verifier
// without configuration must run in bypass mode and pass everything.
type ChallengeVerifier interface {
	VerifyChallenge(ctx context.Context, token, clientIP string) (bool, error)
}
