// Package email delivers password-reset links. Delivery is an external
// collaborator of the auth subsystem; the Mailer interface is the seam.
package email

import (
	"context"
	"log"
)

// Mailer sends auth-related mail. Implementations must not block the caller
// beyond an ordinary request timeout.
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, to, name, resetLink string) error
}

// LogMailer logs reset links instead of sending mail. Used in development
// when no Resend API key is configured.
type LogMailer struct{}

// SendPasswordResetEmail logs the link and returns nil.
func (LogMailer) SendPasswordResetEmail(ctx context.Context, to, name, resetLink string) error {
	log.Printf("email: password reset link for %s: %s", to, resetLink)
	return nil
}
