// Package notifications sends templated email and SMS for workflow events
// and publishes per-user events to Redis. All collaborators are injected;
// there is no package-level state.
package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"time"

	"github.com/techieroshan/studentsupport/config"
)

// Mailer delivers email through either a local SMTP sink (Mailpit in
// development) or the provider's HTTP API in production.
type Mailer struct {
	cfg    *config.Config
	client *http.Client
	logger *slog.Logger
}

// NewMailer creates a mailer bound to the given configuration.
func NewMailer(cfg *config.Config, logger *slog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Send delivers one email. Errors are returned for logging but callers
// treat delivery as best-effort; a failed notification never fails the
// request that triggered it.
func (m *Mailer) Send(to, subject, htmlBody, textBody string) error {
	if m.cfg.EmailBackend == "api" {
		return m.sendViaAPI(to, subject, htmlBody, textBody)
	}
	return m.sendViaSMTP(to, subject, htmlBody, textBody)
}

func (m *Mailer) sendViaSMTP(to, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("noreply@%s", m.cfg.AppDomain)
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.cfg.AppName, from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(addr, nil, from, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func (m *Mailer) sendViaAPI(to, subject, htmlBody, textBody string) error {
	if m.cfg.EmailAPIKey == "" {
		m.logger.Warn("email API key not configured, skipping send", slog.String("to", to))
		return nil
	}

	payload := map[string]any{
		"from": map[string]string{
			"email": fmt.Sprintf("noreply@%s", m.cfg.AppDomain),
			"name":  m.cfg.AppName,
		},
		"to":      []map[string]string{{"email": to}},
		"subject": subject,
		"html":    htmlBody,
	}
	if textBody != "" {
		payload["text"] = textBody
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, m.cfg.EmailAPIURL+"/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.EmailAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("email API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}
	return nil
}
