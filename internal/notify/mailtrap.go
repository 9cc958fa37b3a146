package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/authgate/apiserver/config"
)

// MailtrapNotifier sends reset mail through the Mailtrap send API.
type MailtrapNotifier struct {
	cfg        config.MailtrapConfig
	httpClient *http.Client
}

func NewMailtrapNotifier(cfg config.MailtrapConfig) *MailtrapNotifier {
	return &MailtrapNotifier{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *MailtrapNotifier) SendPasswordReset(ctx context.Context, email, resetToken, firstName string) error {
	resetLink := fmt.Sprintf("%s?token=%s", n.cfg.ResetURL, resetToken)

	body := map[string]any{
		"from": map[string]string{
			"email": n.cfg.FromEmail,
			"name":  n.cfg.FromName,
		},
		"to": []map[string]string{
			{"email": email},
		},
		"subject": "Password Reset Request",
		"text": fmt.Sprintf(
			"Hello %s,\n\nYou requested a password reset. Use the link below within 10 minutes:\n\n%s\n\nIf you didn't request this, please ignore this email.\n",
			firstName, resetLink,
		),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mailtrap API returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
