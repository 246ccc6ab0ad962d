package dto

import "time"

// CreateExamRequest represents a new exam definition
// @Description Request body for creating an exam
type CreateExamRequest struct {
	Name        string     `json:"name"`
	IsMandatory bool       `json:"is_mandatory"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// ExamResponse represents one exam of the catalog in the API response
type ExamResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	IsMandatory         bool       `json:"is_mandatory"`
	IsOpenForSubmission bool       `json:"is_open_for_submission"`
	SubmissionDeadline  *time.Time `json:"submission_deadline,omitempty"`
}

// SetMandatoryRequest replaces the set of mandatory exams
type SetMandatoryRequest struct {
	ExamIDs []string `json:"exam_ids"`
}

// SetOpenRequest flips the manual submission switch on one exam
type SetOpenRequest struct {
	Open bool `json:"open"`
}

// SetDeadlineRequest sets or clears (null) an exam's submission deadline
type SetDeadlineRequest struct {
	Deadline *time.Time `json:"deadline"`
}

// UpsertScoreRequest records or overwrites one student's score on one exam
type UpsertScoreRequest struct {
	UserID     string  `json:"user_id"`
	ExamTypeID string  `json:"exam_type_id"`
	Value      float64 `json:"value"`
}

// ScoreMatrixRow is one student's row of the admin score matrix
type ScoreMatrixRow struct {
	UserID     string             `json:"user_id"`
	UserName   string             `json:"user_name"`
	SeatNumber string             `json:"seat_number,omitempty"`
	Scores     map[string]float64 `json:"scores"` // exam ID -> recorded value
	Average    float64            `json:"average"`
}

// ScoreMatrixResponse is the full class grid: every student against every exam
type ScoreMatrixResponse struct {
	Exams []ExamResponse   `json:"exams"`
	Rows  []ScoreMatrixRow `json:"rows"`
}

// RosterEntry is one student line of a roster import
type RosterEntry struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	SeatNumber string `json:"seat_number,omitempty"`
}

// RosterImportRequest upserts students in bulk
type RosterImportRequest struct {
	Students []RosterEntry `json:"students"`
}

// ExportBundle is the portable snapshot of the whole gradebook
// @Description JSON export of exams, students and scores
type ExportBundle struct {
	ExportedAt time.Time           `json:"exported_at"`
	Exams      []ExamResponse      `json:"exams"`
	Students   []RosterEntry       `json:"students"`
	Scores     []ExportScoreRecord `json:"scores"`
}

// ExportScoreRecord keys a score by exam name and student email so a bundle
// survives re-import into a database with fresh IDs.
type ExportScoreRecord struct {
	StudentEmail string  `json:"student_email"`
	ExamName     string  `json:"exam_name"`
	Value        float64 `json:"value"`
}

// NotifyRequest triggers result emails for the given students, or for the
// whole roster when empty.
type NotifyRequest struct {
	UserIDs []string `json:"user_ids,omitempty"`
}

// NotifyResponse summarizes a notification batch
type NotifyResponse struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
