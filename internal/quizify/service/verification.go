package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
	"github.com/aussiebroadwan/quizify/internal/quizify/mail"
	"github.com/aussiebroadwan/quizify/internal/quizify/store"
	"github.com/aussiebroadwan/quizify/pkg/cryptox"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
)

// DefaultTicketTTL is how long an email verification link stays valid.
const DefaultTicketTTL = time.Hour

// Ticket is a freshly issued verification ticket. Token is only ever handed
// to the mailer; the store keeps its fingerprint.
type Ticket struct {
	Token     string
	ExpiresAt time.Time
}

type VerificationService struct {
	Store  store.Store
	Mailer mail.Mailer
	TTL    time.Duration
	Now    func() time.Time
}

func (s *VerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *VerificationService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTicketTTL
}

// NewTicket generates a 256-bit ticket without storing it.
func (s *VerificationService) NewTicket() (Ticket, error) {
	tok, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{Token: tok, ExpiresAt: s.now().Add(s.ttl())}, nil
}

// Issue stores a new ticket on the user, replacing any outstanding one.
func (s *VerificationService) Issue(ctx context.Context, userID string) (Ticket, error) {
	t, err := s.NewTicket()
	if err != nil {
		return Ticket{}, err
	}

	err = s.Store.Users().SetVerificationToken(ctx, userID, cryptox.FingerprintToken(t.Token), t.ExpiresAt)
	if errors.Is(err, store.ErrNotFound) {
		return Ticket{}, ErrUserNotFound
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("store ticket: %w", err)
	}
	return t, nil
}

// Consume verifies the owner of ticket. An expired ticket is reported as
// ErrTicketExpired and left in place until a new one supersedes it.
func (s *VerificationService) Consume(ctx context.Context, ticket string) (domain.User, error) {
	log := slogx.FromContext(ctx)
	if ticket == "" {
		return domain.User{}, ErrTicketNotFound
	}
	hash := cryptox.FingerprintToken(ticket)

	u, err := s.Store.Users().GetUserByVerificationToken(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrTicketNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	now := s.now()
	if u.VerificationExpires != nil && !now.Before(*u.VerificationExpires) {
		log.Info("verification ticket expired", slog.String("user_id", u.ID))
		return domain.User{}, ErrTicketExpired
	}

	verified, err := s.Store.Users().ConsumeVerificationToken(ctx, hash, now)
	if errors.Is(err, store.ErrNotFound) {
		// Consumed or superseded between the lookup and the update.
		return domain.User{}, ErrTicketNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	log.Info("email verified", slog.String("user_id", verified.ID))
	return verified, nil
}

// Resend issues a fresh ticket to the user registered under email and mails it.
func (s *VerificationService) Resend(ctx context.Context, email string) error {
	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	t, err := s.Issue(ctx, u.ID)
	if err != nil {
		return err
	}
	return s.Mailer.SendVerification(ctx, u, t.Token)
}
