package dto

import "time"

// ReportItemResponse represents one exam line of a student's report card
// @Description One exam row of the report card
type ReportItemResponse struct {
	ExamID      string     `json:"exam_id"`
	ExamName    string     `json:"exam_name"`
	IsMandatory bool       `json:"is_mandatory"`
	Score       *float64   `json:"score"`       // nil when no score is recorded
	ZeroFilled  bool       `json:"zero_filled"` // true for unscored mandatory exams counted as 0
	Included    bool       `json:"included"`    // whether the exam counts toward the average
	CanSubmit   bool       `json:"can_submit"`  // whether the student may submit proof now
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// ReportResponse represents a student's full report card in the API response
// @Description Report card with the computed average
type ReportResponse struct {
	UserID         string               `json:"user_id"`
	UserName       string               `json:"user_name"`
	SeatNumber     string               `json:"seat_number,omitempty"`
	Average        float64              `json:"average"`
	ExamCount      int                  `json:"exam_count"`       // exams included in the average
	ValidExamCount int                  `json:"valid_exam_count"` // recorded scores above zero
	Items          []ReportItemResponse `json:"items"`
}
