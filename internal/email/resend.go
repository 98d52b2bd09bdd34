package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendMailer implements Mailer using Resend.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer returns a Mailer backed by the Resend API.
func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("from address is required")
	}
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}, nil
}

// SendPasswordResetEmail sends the reset link to the user.
func (m *ResendMailer) SendPasswordResetEmail(ctx context.Context, to, name, resetLink string) error {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Reset your password",
		Text: fmt.Sprintf(
			"%s,\n\nA password reset was requested for your account. "+
				"Use the link below within the next hour:\n\n%s\n\n"+
				"If you did not request this, you can ignore this email.\n",
			greeting, resetLink),
	}
	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
