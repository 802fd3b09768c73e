package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
	"github.com/aussiebroadwan/quizify/internal/quizify/store"
	"github.com/aussiebroadwan/quizify/pkg/cryptox"
	"github.com/aussiebroadwan/quizify/pkg/idx"
	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
)

const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SignupInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

type AuthService struct {
	Store        store.Store
	Hasher       cryptox.PasswordHasher
	Codec        *jwtx.Codec
	SessionTTL   time.Duration
	Verification *VerificationService
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return jwtx.DefaultSessionTTL
}

// Signup creates an unverified account and mails a verification ticket.
// A mail failure is logged but does not undo the signup; the user can ask
// for a new link.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	log := slogx.FromContext(ctx)

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)

	if err := validateSignup(in); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	ticket, err := s.Verification.NewTicket()
	if err != nil {
		return domain.User{}, err
	}
	fingerprint := cryptox.FingerprintToken(ticket.Token)

	u := domain.User{
		ID:                    idx.New().String(),
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		Email:                 in.Email,
		PasswordHash:          hash,
		Role:                  domain.RoleUser,
		VerificationTokenHash: fingerprint,
		VerificationExpires:   &ticket.ExpiresAt,
		CreatedAt:             time.Now().UTC(),
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	log.Info("user signed up", slog.String("user_id", u.ID))

	if err := s.Verification.Mailer.SendVerification(ctx, u, ticket.Token); err != nil {
		log.Warn("failed to send verification email", slog.String("user_id", u.ID), slog.Any("err", err))
	}
	return u, nil
}

func validateSignup(in SignupInput) error {
	switch {
	case in.FirstName == "":
		return &InputError{Field: "firstName", Message: "First name is required."}
	case in.LastName == "":
		return &InputError{Field: "lastName", Message: "Last name is required."}
	case !emailPattern.MatchString(in.Email):
		return &InputError{Field: "email", Message: "Please enter a valid email address."}
	case len(in.Password) < MinPasswordLength:
		return &InputError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength)}
	case in.Password != in.ConfirmPassword:
		return ErrPasswordMismatch
	}
	return nil
}

// Login checks credentials and issues a bare session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		// Burn comparable time so unknown emails are not distinguishable.
		_ = s.Hasher.Verify(password, dummyHash)
		return "", domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("stored password hash unreadable", slog.String("user_id", u.ID), slog.Any("err", err))
		}
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.Codec.Issue(u.Identity(), s.sessionTTL())
	if err != nil {
		return "", domain.User{}, err
	}

	log.Info("user logged in", slog.String("user_id", u.ID))
	return token, u, nil
}

// Profile returns the current user record, including total points.
func (s *AuthService) Profile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// dummyHash is a valid argon2id hash of an unguessable value.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$c29tZXNhbHRzb21lc2FsdA$Yq2uL7mH0dQ6n0p9c2jv0nq9b8e1c7t2k3s4a5d6f7g"
