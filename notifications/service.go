package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/techieroshan/studentsupport/config"
	"github.com/techieroshan/studentsupport/models"

	"github.com/redis/go-redis/v9"
)

// Service fans workflow events out to email, SMS, and a per-user Redis
// channel. A nil Redis client disables the event stream only.
type Service struct {
	cfg    *config.Config
	mailer *Mailer
	sms    *SMSSender
	rdb    *redis.Client
	logger *slog.Logger
}

// NewService wires the notification collaborators together.
func NewService(cfg *config.Config, rdb *redis.Client, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		mailer: NewMailer(cfg, logger),
		sms:    NewSMSSender(cfg, logger),
		rdb:    rdb,
		logger: logger,
	}
}

// publish sends an event payload to the user's notification channel.
func (s *Service) publish(ctx context.Context, userID string, event string, data map[string]any) {
	if s.rdb == nil {
		return
	}
	payload := map[string]any{"event": event}
	for k, v := range data {
		payload[k] = v
	}
	b, _ := json.Marshal(payload)
	channel := fmt.Sprintf("notifications:user:%s", userID)
	if err := s.rdb.Publish(ctx, channel, string(b)).Err(); err != nil {
		s.logger.Warn("failed to publish notification event",
			slog.String("channel", channel), slog.String("error", err.Error()))
	}
}

func (s *Service) sendEmail(to, subject, html, text string) {
	if err := s.mailer.Send(to, subject, html, text); err != nil {
		s.logger.Warn("email delivery failed",
			slog.String("to", to), slog.String("error", err.Error()))
	}
}

// Welcome greets a newly registered user.
func (s *Service) Welcome(ctx context.Context, user *models.User) {
	subject := fmt.Sprintf("Welcome to %s!", s.cfg.AppName)
	html := fmt.Sprintf(
		`<h2>Welcome, %s!</h2>
<p>Your %s account is ready. Browse meal offers near %s or post what you need, and we'll connect you with the community.</p>
<p>&mdash; %s</p>`,
		user.DisplayName, s.cfg.AppName, user.City, s.cfg.OrgName)
	text := fmt.Sprintf("Welcome, %s! Your %s account is ready.", user.DisplayName, s.cfg.AppName)

	s.sendEmail(user.Email, subject, html, text)
	s.publish(ctx, user.ID, "welcome", map[string]any{"user_id": user.ID})
}

// MatchAccepted tells both parties a handshake has started and shares the
// completion PIN with them.
func (s *Service) MatchAccepted(ctx context.Context, accepter, author *models.User, threadID, pin string) {
	subject := fmt.Sprintf("%s: you have a new match", s.cfg.AppName)
	html := fmt.Sprintf(
		`<h2>You have a match!</h2>
<p>%s and %s are now connected. Use the chat to arrange the handoff, then confirm completion with PIN <strong>%s</strong> when you meet.</p>`,
		accepter.DisplayName, author.DisplayName, pin)

	for _, u := range []*models.User{accepter, author} {
		s.sendEmail(u.Email, subject, html, "")
		s.publish(ctx, u.ID, "match_accepted", map[string]any{
			"thread_id": threadID,
		})
	}
}

// TransactionCompleted congratulates both parties after a successful PIN
// verification.
func (s *Service) TransactionCompleted(ctx context.Context, studentID, donorID string, users []*models.User) {
	subject := fmt.Sprintf("%s: meal handoff confirmed", s.cfg.AppName)
	html := `<h2>Transaction complete</h2>
<p>The completion PIN was verified and this meal is marked as fulfilled. Thank you for being part of the community &mdash; consider leaving a rating.</p>`

	for _, u := range users {
		s.sendEmail(u.Email, subject, html, "")
	}
	for _, id := range []string{studentID, donorID} {
		s.publish(ctx, id, "transaction_completed", nil)
	}
}

// OTP sends a phone verification code by SMS.
func (s *Service) OTP(ctx context.Context, user *models.User, code string) {
	if err := s.sms.SendOTP(user.Phone, code); err != nil {
		s.logger.Warn("SMS delivery failed",
			slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}
}
