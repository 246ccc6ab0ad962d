package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gradebook/internal/dto"
	"gradebook/internal/service"
)

const defaultSendURL = "https://api.resend.com/emails"

// ResendMailer implements service.Mailer over the Resend HTTP API.
type ResendMailer struct {
	apiKey  string
	from    string
	sendURL string
	client  *http.Client
}

// NewResendMailer creates a mailer sending from the given address.
func NewResendMailer(apiKey, from string) service.Mailer {
	return &ResendMailer{
		apiKey:  apiKey,
		from:    from,
		sendURL: defaultSendURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// SendResult mails one student their report summary.
func (m *ResendMailer) SendResult(ctx context.Context, email string, report *dto.ReportResponse) error {
	payload, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      []string{email},
		Subject: "Your exam results",
		Text:    renderBody(report),
	})
	if err != nil {
		return fmt.Errorf("failed to encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.sendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}
	return nil
}

func renderBody(report *dto.ReportResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYour current average is %.2f.\n\n", report.UserName, report.Average)
	for _, item := range report.Items {
		if item.Score != nil {
			fmt.Fprintf(&b, "  %s: %.2f\n", item.ExamName, *item.Score)
		} else if item.ZeroFilled {
			fmt.Fprintf(&b, "  %s: no score recorded (counted as 0)\n", item.ExamName)
		}
	}
	b.WriteString("\nThis is an automated message.\n")
	return b.String()
}
