package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	t.Run("PlainJSON", func(t *testing.T) {
		raw := `{"detected_exam_name":"Midterm","detected_score":85,"is_clear":true,"is_complete":true,"confidence":92.5,"reason":"score clearly visible"}`

		verdict, err := ParseVerdict(raw)

		require.NoError(t, err)
		assert.Equal(t, 92.5, verdict.Confidence)
		assert.Equal(t, "score clearly visible", verdict.Reason)
		require.NotNil(t, verdict.DetectedExamName)
		assert.Equal(t, "Midterm", *verdict.DetectedExamName)
		require.NotNil(t, verdict.DetectedScore)
		assert.Equal(t, 85.0, *verdict.DetectedScore)
		assert.True(t, verdict.Approves())
		assert.JSONEq(t, raw, string(verdict.Raw))
	})

	t.Run("MarkdownFencedJSON", func(t *testing.T) {
		raw := "Here is my judgment:\n```json\n{\"confidence\": 40, \"reason\": \"name does not match\"}\n```"

		verdict, err := ParseVerdict(raw)

		require.NoError(t, err)
		assert.Equal(t, 40.0, verdict.Confidence)
		assert.False(t, verdict.Approves())
	})

	t.Run("ThresholdIsExclusive", func(t *testing.T) {
		verdict, err := ParseVerdict(`{"confidence": 75, "reason": "borderline"}`)

		require.NoError(t, err)
		assert.False(t, verdict.Approves())
	})

	t.Run("MissingOptionalFields", func(t *testing.T) {
		verdict, err := ParseVerdict(`{"confidence": 80, "reason": "ok"}`)

		require.NoError(t, err)
		assert.Nil(t, verdict.DetectedExamName)
		assert.Nil(t, verdict.IsClear)
		assert.Nil(t, verdict.IsComplete)
	})

	t.Run("NoJSONObject", func(t *testing.T) {
		_, err := ParseVerdict("I cannot read this image.")
		assert.Error(t, err)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		_, err := ParseVerdict(`{"confidence": "high"}`)
		assert.Error(t, err)
	})

	t.Run("ConfidenceOutOfRange", func(t *testing.T) {
		_, err := ParseVerdict(`{"confidence": 140, "reason": "overflow"}`)
		assert.Error(t, err)
	})
}
