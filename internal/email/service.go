package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/barberhq/booking-api/internal/model"
)

// Service sends booking mail. Sends are best-effort: callers log
// failures and continue, a booking never fails because SMTP did.
type Service interface {
	SendBookingConfirmation(ctx context.Context, to string, apt *model.Appointment, shopName string) error
	SendCancellation(ctx context.Context, to string, apt *model.Appointment, shopName string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendBookingConfirmation(_ context.Context, to string, apt *model.Appointment, shopName string) error {
	subject := fmt.Sprintf("Booking confirmed at %s", shopName)
	body := fmt.Sprintf(
		"Your %s appointment at %s is confirmed for %s at %s.",
		apt.Service, shopName, apt.DateKey(), apt.TimeSlot,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendCancellation(_ context.Context, to string, apt *model.Appointment, shopName string) error {
	subject := fmt.Sprintf("Booking cancelled at %s", shopName)
	body := fmt.Sprintf(
		"Your %s appointment at %s on %s at %s has been cancelled.",
		apt.Service, shopName, apt.DateKey(), apt.TimeSlot,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NoopService is used when SMTP is not configured.
type NoopService struct{}

func (NoopService) SendBookingConfirmation(context.Context, string, *model.Appointment, string) error {
	return nil
}

func (NoopService) SendCancellation(context.Context, string, *model.Appointment, string) error {
	return nil
}
