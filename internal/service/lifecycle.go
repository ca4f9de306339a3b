package service

import (
	"context"
	"time"

	"github.com/copperline/courier/internal/domain"
	"github.com/copperline/courier/internal/email"
)

// Lifecycle sends are system sends with prebuilt bodies. They run
// before a session exists, so none of them carry user lineage.

// SendVerification sends an email-verification message.
func (s *EmailService) SendVerification(ctx context.Context, to, name, verifyURL string, expiresAt time.Time) (*domain.SendReceipt, error) {
	return s.sendLifecycle(ctx, to, email.VerificationEmail{
		Name:      name,
		VerifyURL: verifyURL,
		ExpiresAt: expiresAt,
	})
}

// SendWelcome sends the post-verification welcome message.
func (s *EmailService) SendWelcome(ctx context.Context, to, name, loginURL string) (*domain.SendReceipt, error) {
	if loginURL == "" {
		loginURL = s.baseURL
	}
	return s.sendLifecycle(ctx, to, email.WelcomeEmail{Name: name, LoginURL: loginURL})
}

// SendPasswordReset sends a password-reset link.
func (s *EmailService) SendPasswordReset(ctx context.Context, to, name, resetURL string, expiresAt time.Time) (*domain.SendReceipt, error) {
	return s.sendLifecycle(ctx, to, email.PasswordResetEmail{
		Name:      name,
		ResetURL:  resetURL,
		ExpiresAt: expiresAt,
	})
}

// sendLifecycle renders the template into both an HTML and a plain-text
// body and dispatches it through the system path.
func (s *EmailService) sendLifecycle(ctx context.Context, to string, tmpl email.LifecycleTemplate) (*domain.SendReceipt, error) {
	html, err := tmpl.HTML()
	if err != nil {
		return nil, domain.Internal(err, "email.lifecycle", "failed to render email template")
	}

	return s.SendSystem(ctx, &domain.SendRequest{
		To:      []string{to},
		Subject: tmpl.Subject(),
		HTML:    html,
		Text:    email.PlainTextFromHTML(html),
	})
}
