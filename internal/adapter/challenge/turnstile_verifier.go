package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gradebook/internal/domain"
	"gradebook/internal/logger"

	"go.uber.org/zap"
)

// TurnstileVerifier implements domain.ChallengeVerifier against the Cloudflare
// Turnstile siteverify endpoint. An empty secret key puts the verifier in
// bypass mode where every token passes, so local setups work without a key.
type TurnstileVerifier struct {
	secretKey string
	verifyURL string
	client    *http.Client
}

// NewTurnstileVerifier creates a verifier for the given secret and endpoint.
func NewTurnstileVerifier(secretKey, verifyURL string) domain.ChallengeVerifier {
	return &TurnstileVerifier{
		secretKey: secretKey,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// VerifyChallenge checks the challenge token with Cloudflare. It returns
// false, nil for a rejected token and a non-nil error only when the
// verification service itself cannot be reached.
func (v *TurnstileVerifier) VerifyChallenge(ctx context.Context, token, clientIP string) (bool, error) {
	if v.secretKey == "" {
		return true, nil
	}

	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", token)
	if clientIP != "" {
		form.Set("remoteip", clientIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("siteverify request failed: %w", err)
	}
	defer resp.Body.Close()

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode siteverify response: %w", err)
	}

	if !result.Success {
		logger.Get().Info("challenge token rejected", zap.Strings("error_codes", result.ErrorCodes))
	}
	return result.Success, nil
}
