package services

import (
	"fmt"
	"log"

	"caseflow/config"

	"github.com/resend/resend-go/v2"
)

// EmailService delivers notification emails through Resend. In test mode
// messages are logged to the console instead of sent, matching development
// environments without an API key.
type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

// Send delivers one email. Satisfies the events.Mailer interface.
func (s *EmailService) Send(to []string, subject, htmlBody, textBody string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	if s.cfg.EmailTestMode || s.cfg.ResendAPIKey == "" {
		log.Printf("[EMAIL TEST MODE] To: %v | Subject: %s", to, subject)
		log.Printf("[EMAIL TEST MODE] Body: %s", textBody)
		return nil
	}

	client := resend.NewClient(s.cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.cfg.EmailFromName, s.cfg.EmailFrom),
		To:      to,
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Printf("Email sent to %v (id: %s)", to, sent.Id)
	return nil
}
