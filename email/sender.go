package email

import (
	"fmt"

	"site-safety-inspection/config"
	"site-safety-inspection/models"

	"github.com/apex/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender delivers notification e-mails through SendGrid.
type Sender struct {
	config *config.Config
	client *sendgrid.Client
}

// NewSender creates a new e-mail sender.
func NewSender(cfg *config.Config) *Sender {
	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	return &Sender{
		config: cfg,
		client: client,
	}
}

// Send delivers one plain-text e-mail. Failures are backend faults of the
// notification action only; callers never roll back aggregation state over
// a failed send.
func (s *Sender) Send(to, subject, body string) error {
	if to == "" {
		return models.Validation("recipient address is required")
	}

	from := mail.NewEmail(s.config.SendGridFromName, s.config.SendGridFromEmail)
	recipient := mail.NewEmail(to, to)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(recipient)
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/plain", body))

	response, err := s.client.Send(message)
	if err != nil {
		return models.Backend("send email", err)
	}
	if response.StatusCode >= 400 {
		return models.Backend("send email",
			fmt.Errorf("sendgrid status %d: %s", response.StatusCode, response.Body))
	}

	log.Infof("Email sent to %s! Status: %d", to, response.StatusCode)
	return nil
}
