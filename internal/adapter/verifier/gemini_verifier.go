package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gradebook/internal/domain"
	"gradebook/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const systemInstruction = `You are a strict grading assistant. You receive a photo of a graded exam paper
and a claim about which exam it is and what score it shows. Respond with ONLY a JSON object:
{
    "detected_exam_name": "exam name visible on the paper or null",
    "detected_score": 0.0,
    "is_clear": true,
    "is_complete": true,
    "confidence": 0.0,
    "reason": "brief explanation here"
}

Rules:
1. confidence is between 0 and 100. It measures how certain you are that the photo
   shows the claimed exam with the claimed score.
2. is_clear is false when the photo is blurry, dark, or cropped so the score is unreadable.
3. is_complete is false when the page is partially out of frame.
4. Reduce confidence sharply when the visible exam name or score does not match the claim.
5. reason must be under 50 words.`

// GeminiVerifier implements domain.EvidenceVerifier on a multimodal LLM backend.
type GeminiVerifier struct {
	model   llms.Model
	timeout time.Duration
}

// NewGeminiVerifier creates a verifier over a connected multimodal model.
// timeout bounds each classification call.
func NewGeminiVerifier(model llms.Model, timeout time.Duration) domain.EvidenceVerifier {
	return &GeminiVerifier{model: model, timeout: timeout}
}

// VerifyEvidence sends the evidence image and the student's claim to the
// classifier and parses its JSON verdict. Backend failures and unparseable
// output surface as CodeVerificationUnavailable so the caller does not burn
// an attempt on them.
func (v *GeminiVerifier) VerifyEvidence(ctx context.Context, ev Evidence) (*domain.Verdict, error) {
	l := logger.Get()

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	claim := fmt.Sprintf("Claimed exam: %s\nClaimed score: %.2f", ev.ExamName, ev.ClaimedScore)
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemInstruction)},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(ev.MimeType, ev.Image),
				llms.TextPart(claim),
			},
		},
	}

	resp, err := v.model.GenerateContent(callCtx, messages, llms.WithTemperature(0.1))
	if err != nil {
		l.Error("evidence classifier call failed", zap.Error(err), zap.String("exam_name", ev.ExamName))
		return nil, domain.NewVerificationUnavailableError(fmt.Errorf("classifier call failed: %w", err))
	}
	if len(resp.Choices) == 0 {
		l.Error("evidence classifier returned no choices", zap.String("exam_name", ev.ExamName))
		return nil, domain.NewVerificationUnavailableError(fmt.Errorf("classifier returned empty response"))
	}

	verdict, err := ParseVerdict(resp.Choices[0].Content)
	if err != nil {
		l.Error("evidence classifier returned unparseable output",
			zap.Error(err),
			zap.String("raw_response", resp.Choices[0].Content))
		return nil, domain.NewVerificationUnavailableError(err)
	}

	l.Info("evidence classified",
		zap.String("exam_name", ev.ExamName),
		zap.Float64("confidence", verdict.Confidence))
	return verdict, nil
}

// Evidence aliases the domain type so callers outside this package read naturally.
type Evidence = domain.Evidence

// ParseVerdict extracts the verdict JSON object from raw model output.
// Models wrap JSON in markdown fences or prose; the first balanced object
// between '{' and the last '}' is taken.
func ParseVerdict(raw string) (*domain.Verdict, error) {
	cleaned := strings.TrimSpace(raw)

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return nil, fmt.Errorf("no JSON object found in classifier response: %s", cleaned)
	}
	extracted := cleaned[jsonStart : jsonEnd+1]

	var verdict domain.Verdict
	if err := json.Unmarshal([]byte(extracted), &verdict); err != nil {
		return nil, fmt.Errorf("failed to unmarshal classifier verdict (tried to parse: '%s'): %w", extracted, err)
	}
	if verdict.Confidence < 0 || verdict.Confidence > 100 {
		return nil, fmt.Errorf("classifier confidence out of range: %f", verdict.Confidence)
	}

	verdict.Raw = json.RawMessage(extracted)
	return &verdict, nil
}
