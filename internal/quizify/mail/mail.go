// Package mail composes account emails. Delivery is pluggable; the default
// Mailer writes messages to the structured log.
package mail

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
)

// Message is a rendered plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers verification emails.
type Mailer interface {
	SendVerification(ctx context.Context, u domain.User, ticket string) error
}

// VerificationLink builds the link a user follows to verify their email.
func VerificationLink(baseURL, ticket string) string {
	return strings.TrimRight(baseURL, "/") + "/users/verify-email?token=" + url.QueryEscape(ticket)
}

// VerificationMessage renders the verification email for u.
func VerificationMessage(baseURL string, u domain.User, ticket string) Message {
	var b strings.Builder
	b.WriteString("Hello " + u.Identity().DisplayName() + ",\n\n")
	b.WriteString("Please verify your email address by following the link below:\n\n")
	b.WriteString(VerificationLink(baseURL, ticket) + "\n\n")
	b.WriteString("The link expires in one hour.\n")

	return Message{
		To:      u.Email,
		Subject: "Verify your Quizify account",
		Body:    b.String(),
	}
}

// LogMailer logs messages instead of sending them.
type LogMailer struct {
	BaseURL string
}

func (m LogMailer) SendVerification(ctx context.Context, u domain.User, ticket string) error {
	msg := VerificationMessage(m.BaseURL, u, ticket)
	slogx.FromContext(ctx).Info("verification email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("link", VerificationLink(m.BaseURL, ticket)),
	)
	return nil
}
