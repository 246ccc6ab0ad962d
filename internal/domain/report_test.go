package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mandatoryExam(id, name string) *ExamType {
	return &ExamType{ID: id, Name: name, IsMandatory: true}
}

func optionalExam(id, name string) *ExamType {
	return &ExamType{ID: id, Name: name}
}

// orderedCatalog mimics the repository's canonical order: mandatory first,
// then name ascending.
func orderedCatalog(exams ...*ExamType) []*ExamType {
	return exams
}

func testStudent() *User {
	return &User{ID: "u1", Name: "Student One", SeatNumber: "17", Role: RoleStudent}
}

func TestComputeReport_MixedCatalog(t *testing.T) {
	// Two mandatory (one unscored), three scored optionals; 18 free slots so
	// every optional is selected.
	catalog := orderedCatalog(
		mandatoryExam("m1", "Algebra"),
		mandatoryExam("m2", "Biology"),
		optionalExam("o1", "Chemistry"),
		optionalExam("o2", "Drawing"),
		optionalExam("o3", "English"),
	)
	scores := map[string]float64{"m1": 80, "o1": 90, "o2": 70, "o3": 60}

	report := ComputeReport(testStudent(), catalog, scores, nil, time.Now())

	assert.Equal(t, 15.00, report.Average) // (80+0+90+70+60)/20
	assert.Equal(t, 5, report.ExamCount)
	assert.Equal(t, 4, report.ValidExamCount)

	byID := map[string]ReportItem{}
	for _, item := range report.Items {
		byID[item.ExamID] = item
	}
	assert.True(t, byID["m1"].Included)
	assert.True(t, byID["m2"].Included)
	assert.True(t, byID["m2"].ZeroFilled)
	assert.Nil(t, byID["m2"].Score)
	assert.False(t, byID["m1"].ZeroFilled)
	require.NotNil(t, byID["o1"].Score)
	assert.Equal(t, 90.0, *byID["o1"].Score)
}

func TestComputeReport_MoreThanCapacityMandatory(t *testing.T) {
	// 25 mandatory exams at 50 each: divisor grows to 25, optionals ignored.
	var catalog []*ExamType
	scores := map[string]float64{}
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("m%02d", i)
		catalog = append(catalog, mandatoryExam(id, "Exam "+id))
		scores[id] = 50
	}
	catalog = append(catalog, optionalExam("opt", "Extra"))
	scores["opt"] = 100

	report := ComputeReport(testStudent(), catalog, scores, nil, time.Now())

	assert.Equal(t, 50.00, report.Average)
	assert.Equal(t, 25, report.ExamCount)
	for _, item := range report.Items {
		if item.ExamID == "opt" {
			assert.False(t, item.Included, "optional exam must not be selected when mandatory exams fill capacity")
		}
	}
}

func TestComputeReport_OptionalSelectionTopSlots(t *testing.T) {
	// 18 mandatory leave 2 slots; the two best optionals win.
	var catalog []*ExamType
	scores := map[string]float64{}
	for i := 0; i < 18; i++ {
		id := fmt.Sprintf("m%02d", i)
		catalog = append(catalog, mandatoryExam(id, "Exam "+id))
		scores[id] = 60
	}
	catalog = append(catalog,
		optionalExam("o1", "Opt A"),
		optionalExam("o2", "Opt B"),
		optionalExam("o3", "Opt C"),
	)
	scores["o1"] = 40
	scores["o2"] = 95
	scores["o3"] = 80

	report := ComputeReport(testStudent(), catalog, scores, nil, time.Now())

	included := map[string]bool{}
	for _, item := range report.Items {
		included[item.ExamID] = item.Included
	}
	assert.True(t, included["o2"])
	assert.True(t, included["o3"])
	assert.False(t, included["o1"])
	assert.Equal(t, 20, report.ExamCount)
	// (18*60 + 95 + 80) / 20
	assert.Equal(t, 62.75, report.Average)
}

func TestComputeReport_TieBreakIsCatalogOrder(t *testing.T) {
	// One free slot, two optionals tied on score: catalog order decides.
	var catalog []*ExamType
	scores := map[string]float64{}
	for i := 0; i < 19; i++ {
		id := fmt.Sprintf("m%02d", i)
		catalog = append(catalog, mandatoryExam(id, "Exam "+id))
		scores[id] = 10
	}
	catalog = append(catalog, optionalExam("oa", "Opt A"), optionalExam("ob", "Opt B"))
	scores["oa"] = 77
	scores["ob"] = 77

	report := ComputeReport(testStudent(), catalog, scores, nil, time.Now())

	included := map[string]bool{}
	for _, item := range report.Items {
		included[item.ExamID] = item.Included
	}
	assert.True(t, included["oa"])
	assert.False(t, included["ob"])
}

func TestComputeReport_RecordedZeroCompetes(t *testing.T) {
	catalog := orderedCatalog(optionalExam("o1", "Only"))
	scores := map[string]float64{"o1": 0.0}

	report := ComputeReport(testStudent(), catalog, scores, nil, time.Now())

	require.Len(t, report.Items, 1)
	assert.True(t, report.Items[0].Included)
	require.NotNil(t, report.Items[0].Score)
	assert.Equal(t, 0.0, *report.Items[0].Score)
	assert.Equal(t, 1, report.ExamCount)
	assert.Equal(t, 0, report.ValidExamCount)
}

func TestComputeReport_UnattemptedOptionalExcluded(t *testing.T) {
	catalog := orderedCatalog(optionalExam("o1", "Skipped"))

	report := ComputeReport(testStudent(), catalog, map[string]float64{}, nil, time.Now())

	require.Len(t, report.Items, 1)
	assert.False(t, report.Items[0].Included)
	assert.Nil(t, report.Items[0].Score)
	assert.False(t, report.Items[0].ZeroFilled)
	assert.Equal(t, 0.0, report.Average)
}

func TestComputeReport_EmptyCatalog(t *testing.T) {
	report := ComputeReport(testStudent(), nil, map[string]float64{}, nil, time.Now())
	assert.Equal(t, 0.0, report.Average)
	assert.Equal(t, 0, report.ExamCount)
	assert.Empty(t, report.Items)
}

func TestComputeReport_Idempotent(t *testing.T) {
	catalog := orderedCatalog(
		mandatoryExam("m1", "Algebra"),
		optionalExam("o1", "Chemistry"),
		optionalExam("o2", "Drawing"),
	)
	scores := map[string]float64{"m1": 81.5, "o1": 64, "o2": 64}

	first := ComputeReport(testStudent(), catalog, scores, nil, time.Now())
	second := ComputeReport(testStudent(), catalog, scores, nil, time.Now())

	assert.Equal(t, first.Average, second.Average)
	assert.Equal(t, first.ExamCount, second.ExamCount)
	require.Equal(t, len(first.Items), len(second.Items))
	for i := range first.Items {
		assert.Equal(t, first.Items[i].Included, second.Items[i].Included)
	}
}

func TestComputeReport_MonotonicUnderNewOptionalScore(t *testing.T) {
	var catalog []*ExamType
	scores := map[string]float64{}
	for i := 0; i < 19; i++ {
		id := fmt.Sprintf("m%02d", i)
		catalog = append(catalog, mandatoryExam(id, "Exam "+id))
		scores[id] = 55
	}
	catalog = append(catalog, optionalExam("oa", "Opt A"), optionalExam("ob", "Opt B"))
	scores["oa"] = 30

	before := ComputeReport(testStudent(), catalog, scores, nil, time.Now())

	// A new optional score above the lowest selected optional replaces it.
	scores["ob"] = 90
	after := ComputeReport(testStudent(), catalog, scores, nil, time.Now())

	assert.GreaterOrEqual(t, after.Average, before.Average)
}

func TestComputeReport_CanSubmitDelegatesToGate(t *testing.T) {
	deadline := time.Now().Add(time.Hour)
	open := &ExamType{ID: "e1", Name: "Open", IsOpenForSubmission: true, SubmissionDeadline: &deadline}
	scored := &ExamType{ID: "e2", Name: "Scored", IsOpenForSubmission: true}
	closed := &ExamType{ID: "e3", Name: "Closed"}

	gate := gateFunc(func(userID, examID string) bool { return true })
	scores := map[string]float64{"e2": 88}

	report := ComputeReport(testStudent(), orderedCatalog(open, scored, closed), scores, gate, time.Now())

	byID := map[string]ReportItem{}
	for _, item := range report.Items {
		byID[item.ExamID] = item
	}
	assert.True(t, byID["e1"].CanSubmit)
	assert.False(t, byID["e2"].CanSubmit, "recorded score disables the affordance")
	assert.False(t, byID["e3"].CanSubmit, "closed exam disables the affordance")
}

type gateFunc func(userID, examID string) bool

func (f gateFunc) CanSubmit(userID, examID string) bool { return f(userID, examID) }

func TestExamType_EffectivelyOpen(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		exam ExamType
		want bool
	}{
		{"switch off", ExamType{IsOpenForSubmission: false}, false},
		{"open no deadline", ExamType{IsOpenForSubmission: true}, true},
		{"open future deadline", ExamType{IsOpenForSubmission: true, SubmissionDeadline: &future}, true},
		{"open past deadline", ExamType{IsOpenForSubmission: true, SubmissionDeadline: &past}, false},
		{"switch off future deadline", ExamType{IsOpenForSubmission: false, SubmissionDeadline: &future}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.exam.EffectivelyOpen(now))
		})
	}
}
