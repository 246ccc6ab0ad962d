package validation

import (
	"regexp"
	"strings"

	"gradebook/internal/domain"
)

// MaxEvidenceSize caps uploaded evidence images at 10 MiB.
const MaxEvidenceSize = 10 << 20

// MaxClaimedScore bounds the claimed score. Exams are graded out of 100 with
// occasional bonus points.
const MaxClaimedScore = 120.0

var allowedEvidenceTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSubmitRequest validates a proof-of-score submission.
func (v *Validator) ValidateSubmitRequest(examTypeID string, claimedScore float64, mimeType string, imageSize int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(examTypeID) == "" {
		errors = append(errors, domain.NewMissingFieldError("exam_type_id"))
	} else if !isValidULID(examTypeID) {
		errors = append(errors, domain.NewInvalidFormatError("exam_type_id", examTypeID))
	}

	if claimedScore < 0 || claimedScore > MaxClaimedScore {
		errors = append(errors, domain.NewOutOfRangeError("claimed_score", claimedScore, 0, MaxClaimedScore))
	}

	if imageSize == 0 {
		errors = append(errors, domain.NewMissingFieldError("evidence"))
	} else if imageSize > MaxEvidenceSize {
		errors = append(errors, domain.NewOutOfRangeError("evidence", float64(imageSize), 1, MaxEvidenceSize))
	}

	if !allowedEvidenceTypes[mimeType] {
		errors = append(errors, domain.NewInvalidFormatError("evidence", mimeType))
	}

	return errors
}

// ValidateExamName validates an admin-supplied exam name.
func (v *Validator) ValidateExamName(name string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		errors = append(errors, domain.NewMissingFieldError("name"))
	} else if len(trimmed) > 255 {
		errors = append(errors, domain.NewOutOfRangeError("name", float64(len(trimmed)), 1, 255))
	}

	return errors
}

// ValidateScoreValue validates an admin-entered score.
func (v *Validator) ValidateScoreValue(value float64) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if value < 0 || value > MaxClaimedScore {
		errors = append(errors, domain.NewOutOfRangeError("value", value, 0, MaxClaimedScore))
	}
	return errors
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
