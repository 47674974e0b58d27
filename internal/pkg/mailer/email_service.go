package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// BookingEmail carries everything the booking confirmation template needs.
type BookingEmail struct {
	ToEmail         string
	RecipientName   string
	CounterpartName string
	Subject         string
	ScheduledAt     time.Time
	DurationMinutes int
	Location        string
	TotalAmount     float64
}

type IEmailService interface {
	SendBookingConfirmation(b *BookingEmail) error
	SendBookingCancelled(b *BookingEmail) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendBookingConfirmation(b *BookingEmail) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", b.ToEmail)
	m.SetHeader("Subject", fmt.Sprintf("Session confirmed: %s with %s", b.Subject, b.CounterpartName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your session is confirmed!</h2>
			<p>Hi %s, your %s session with %s is booked.</p>
			<ul>
				<li><b>When:</b> %s</li>
				<li><b>Duration:</b> %d minutes</li>
				<li><b>Where:</b> %s</li>
				<li><b>Total:</b> $%.2f</li>
			</ul>
			<p>See you there!</p>
		</div>
	`, b.RecipientName, b.Subject, b.CounterpartName,
		b.ScheduledAt.Format("Mon, 02 Jan 2006 15:04 MST"),
		b.DurationMinutes, b.Location, b.TotalAmount)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send booking confirmation to %s: %w", b.ToEmail, err)
	}
	return nil
}

func (s *emailService) SendBookingCancelled(b *BookingEmail) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", b.ToEmail)
	m.SetHeader("Subject", fmt.Sprintf("Session cancelled: %s", b.Subject))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Session cancelled</h2>
			<p>Hi %s, your %s session with %s scheduled for %s has been cancelled.</p>
			<p>If payment was taken it will be refunded per our policy.</p>
		</div>
	`, b.RecipientName, b.Subject, b.CounterpartName,
		b.ScheduledAt.Format("Mon, 02 Jan 2006 15:04 MST"))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send cancellation notice to %s: %w", b.ToEmail, err)
	}
	return nil
}
