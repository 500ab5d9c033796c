package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/techieroshan/studentsupport/config"
)

// SMSSender delivers text messages through the provider's HTTP API. Without
// an API key it logs the message instead, which is the development behavior.
type SMSSender struct {
	cfg    *config.Config
	client *http.Client
	logger *slog.Logger
}

// NewSMSSender creates an SMS sender bound to the given configuration.
func NewSMSSender(cfg *config.Config, logger *slog.Logger) *SMSSender {
	return &SMSSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Send delivers one SMS, best-effort.
func (s *SMSSender) Send(phone, message string) error {
	if s.cfg.SMSAPIKey == "" {
		s.logger.Info("SMS API key not configured, logging instead",
			slog.String("phone", phone),
			slog.String("message", message))
		return nil
	}

	payload := map[string]string{
		"to":      phone,
		"message": message,
		"from":    s.cfg.AppName,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.SMSAPIURL+"/sms/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.SMSAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d", resp.StatusCode)
	}
	return nil
}

// SendOTP sends a one-time verification code.
func (s *SMSSender) SendOTP(phone, code string) error {
	msg := fmt.Sprintf("Your %s verification code is: %s. Valid for 10 minutes.", s.cfg.AppName, code)
	return s.Send(phone, msg)
}
