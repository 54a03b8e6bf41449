package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"wheelhouse/models"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers composed messages. *gomail.Dialer satisfies it.
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer wraps a gomail dialer with the sender address.
type SMTPMailer struct {
	Dialer *gomail.Dialer
	From   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{Dialer: gomail.NewDialer(host, port, username, password), From: from}
}

func (m *SMTPMailer) DialAndSend(msgs ...*gomail.Message) error {
	for _, msg := range msgs {
		if len(msg.GetHeader("From")) == 0 {
			msg.SetHeader("From", m.From)
		}
	}
	return m.Dialer.DialAndSend(msgs...)
}

var bookingEmail = template.Must(template.New("booking").Parse(`<p>Hi {{.Name}},</p>
<p>{{.Intro}}</p>
<table>
  <tr><td>Booking</td><td>{{.Summary.ID}}</td></tr>
  <tr><td>Vehicle</td><td>{{.Summary.VehicleName}}</td></tr>
  <tr><td>From</td><td>{{.Summary.From.Format "Mon, 02 Jan 2006"}}</td></tr>
  <tr><td>To</td><td>{{.Summary.To.Format "Mon, 02 Jan 2006"}}</td></tr>
</table>`))

// SendBookingConfirmationEmail tells a customer or the rental company that a booking is confirmed.
func (s *DefaultNotificationService) SendBookingConfirmationEmail(ctx context.Context, email, name string, summary models.BookingSummary, isCompany bool) error {
	intro := "Your booking is confirmed. We look forward to seeing you."
	if isCompany {
		intro = "A booking for one of your vehicles has been confirmed."
	}
	return s.SendBookingEmail(ctx, email, name, "Booking confirmed", intro, summary)
}

// SendBookingEmail renders the booking summary email and sends it.
func (s *DefaultNotificationService) SendBookingEmail(_ context.Context, email, name, subject, intro string, summary models.BookingSummary) error {
	if email == "" {
		return fmt.Errorf("SendBookingEmail: no address for %s", name)
	}
	if s.Mail == nil {
		s.Logger.Debug("Email disabled, dropping message", zap.String("subject", subject))
		return nil
	}

	var body bytes.Buffer
	if err := bookingEmail.Execute(&body, struct {
		Name    string
		Intro   string
		Summary models.BookingSummary
	}{name, intro, summary}); err != nil {
		return fmt.Errorf("SendBookingEmail: render: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("To", email, name)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := s.Mail.DialAndSend(msg); err != nil {
		return fmt.Errorf("SendBookingEmail: %w", err)
	}
	return nil
}
