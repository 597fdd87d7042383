package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendGrievanceAck(email, citizenName, trackingCode, title string) error
	SendResolutionNotice(email, citizenName, trackingCode string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendGrievanceAck(email, citizenName, trackingCode, title string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your grievance has been registered")

	body := fmt.Sprintf(`
		<h2>Dear %s,</h2>
		<p>Your grievance <strong>%s</strong> has been registered with our office.</p>
		<p>Track its progress anytime with reference code <strong>%s</strong>.</p>
		<p>Regards,<br>Janmitra Office Desk</p>
	`, citizenName, title, trackingCode)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send acknowledgement email: %w", err)
	}

	return nil
}

func (s *emailService) SendResolutionNotice(email, citizenName, trackingCode string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your grievance has been resolved")

	body := fmt.Sprintf(`
                <h3>Dear %s,</h3>
                <p>The grievance with reference code <strong>%s</strong> has been resolved.</p>
                <p>If the issue persists, please reply to this email or visit the office.</p>
        `, citizenName, trackingCode)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send resolution email: %w", err)
	}

	return nil
}
