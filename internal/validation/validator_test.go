package validation

import (
	"testing"

	"gradebook/internal/domain"
	"gradebook/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestValidateSubmitRequest(t *testing.T) {
	v := NewValidator()
	validID := util.NewULID()

	t.Run("Valid", func(t *testing.T) {
		errs := v.ValidateSubmitRequest(validID, 85, "image/jpeg", 1024)
		assert.Empty(t, errs)
	})

	t.Run("MissingExamID", func(t *testing.T) {
		errs := v.ValidateSubmitRequest("", 85, "image/jpeg", 1024)
		assert.Len(t, errs, 1)
		assert.Equal(t, domain.CodeMissingField, errs[0].Code)
	})

	t.Run("MalformedExamID", func(t *testing.T) {
		errs := v.ValidateSubmitRequest("not-a-ulid", 85, "image/jpeg", 1024)
		assert.Len(t, errs, 1)
		assert.Equal(t, domain.CodeInvalidFormat, errs[0].Code)
	})

	t.Run("NegativeScore", func(t *testing.T) {
		errs := v.ValidateSubmitRequest(validID, -1, "image/png", 1024)
		assert.Len(t, errs, 1)
		assert.Equal(t, domain.CodeOutOfRange, errs[0].Code)
	})

	t.Run("MissingImage", func(t *testing.T) {
		errs := v.ValidateSubmitRequest(validID, 85, "image/jpeg", 0)
		assert.Len(t, errs, 1)
		assert.Equal(t, "evidence", errs[0].Field)
	})

	t.Run("OversizedImage", func(t *testing.T) {
		errs := v.ValidateSubmitRequest(validID, 85, "image/jpeg", MaxEvidenceSize+1)
		assert.Len(t, errs, 1)
	})

	t.Run("UnsupportedMimeType", func(t *testing.T) {
		errs := v.ValidateSubmitRequest(validID, 85, "application/pdf", 1024)
		assert.Len(t, errs, 1)
		assert.Equal(t, domain.CodeInvalidFormat, errs[0].Code)
	})
}

func TestValidateExamName(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateExamName("Midterm"))
	assert.Len(t, v.ValidateExamName("   "), 1)
}

func TestValidateScoreValue(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateScoreValue(0))
	assert.Empty(t, v.ValidateScoreValue(100))
	assert.Len(t, v.ValidateScoreValue(-0.5), 1)
	assert.Len(t, v.ValidateScoreValue(500), 1)
}
