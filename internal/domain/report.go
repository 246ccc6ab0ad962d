package domain

import (
	"math"
	"sort"
	"time"
)

// ReportCapacity is the number of slots the average is computed over.
// Mandatory exams claim slots first; the best-scoring optional exams fill the
// rest. A student with fewer eligible items is averaged over the full capacity
// anyway (missing slots act as zero-fill), while a student with more mandatory
// exams than capacity is averaged over the actual count.
const ReportCapacity = 20

// MaxSubmissionAttempts caps how many times a student may submit evidence for
// one exam unless an earlier attempt was approved.
const MaxSubmissionAttempts = 3

// ReportItem is the per-exam line of a grade report.
type ReportItem struct {
	ExamID      string
	ExamName    string
	IsMandatory bool
	// Score is the display value; nil means unattempted. A mandatory exam
	// without a recorded score still contributes 0.0 to the average, which
	// ZeroFilled marks so the detail view can tell the two apart.
	Score      *float64
	ZeroFilled bool
	Included   bool
	CanSubmit  bool
	Deadline   *time.Time
}

// Report is the result of one aggregation run over a student's scores.
type Report struct {
	UserID     string
	UserName   string
	SeatNumber string
	Average    float64
	// ExamCount is the number of selected items.
	ExamCount int
	// ValidExamCount counts all recorded scores strictly greater than zero,
	// selected or not. Administrative sanity display only.
	ValidExamCount int
	Items          []ReportItem
}

// SubmissionGate answers whether the student may currently submit evidence for
// an exam. Implemented by the submission workflow; a nil gate disables the
// affordance entirely (bulk exports skip the per-pair queries).
type SubmissionGate interface {
	CanSubmit(userID, examID string) bool
}

// ComputeReport applies the top-twenty rule to a student's scores.
//
// catalog must be the full exam catalog in its canonical order (mandatory
// first, then name ascending); scores maps exam ID to the recorded value.
// The computation is pure and deterministic: equal optional scores keep the
// catalog order, with exam ID as the final tie-break.
func ComputeReport(user *User, catalog []*ExamType, scores map[string]float64, gate SubmissionGate, now time.Time) *Report {
	report := &Report{
		UserID:     user.ID,
		UserName:   user.Name,
		SeatNumber: user.SeatNumber,
		Items:      make([]ReportItem, 0, len(catalog)),
	}

	type candidate struct {
		score float64
		pos   int // catalog position, primary tie-break
		id    string
		item  *ReportItem
	}

	var selected []float64
	var optionals []candidate

	for pos, exam := range catalog {
		var display *float64
		val, recorded := scores[exam.ID]
		if recorded {
			v := val
			display = &v
		}

		canSubmit := false
		if gate != nil && !recorded && exam.EffectivelyOpen(now) {
			canSubmit = gate.CanSubmit(user.ID, exam.ID)
		}

		report.Items = append(report.Items, ReportItem{
			ExamID:      exam.ID,
			ExamName:    exam.Name,
			IsMandatory: exam.IsMandatory,
			Score:       display,
			CanSubmit:   canSubmit,
			Deadline:    exam.SubmissionDeadline,
		})
		item := &report.Items[len(report.Items)-1]

		if exam.IsMandatory {
			item.Included = true
			if recorded {
				selected = append(selected, val)
			} else {
				item.ZeroFilled = true
				selected = append(selected, 0.0)
			}
		} else if recorded {
			// A recorded 0.0 still competes for a slot.
			optionals = append(optionals, candidate{score: val, pos: pos, id: exam.ID, item: item})
		}
	}

	slots := ReportCapacity - len(selected)
	if slots > 0 && len(optionals) > 0 {
		sort.SliceStable(optionals, func(i, j int) bool {
			if optionals[i].score != optionals[j].score {
				return optionals[i].score > optionals[j].score
			}
			if optionals[i].pos != optionals[j].pos {
				return optionals[i].pos < optionals[j].pos
			}
			return optionals[i].id < optionals[j].id
		})
		if slots > len(optionals) {
			slots = len(optionals)
		}
		for _, c := range optionals[:slots] {
			c.item.Included = true
			selected = append(selected, c.score)
		}
	}

	report.ExamCount = len(selected)

	var total float64
	for _, v := range selected {
		total += v
	}
	divisor := len(selected)
	if divisor < ReportCapacity {
		divisor = ReportCapacity
	}
	if len(catalog) == 0 {
		report.Average = 0.0
	} else {
		report.Average = round2(total / float64(divisor))
	}

	for _, v := range scores {
		if v > 0 {
			report.ValidExamCount++
		}
	}

	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
