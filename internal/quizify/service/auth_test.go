package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u := f.signup(t, "  Ada@Example.COM ")
	require.Equal(t, "ada@example.com", u.Email)
	require.Equal(t, domain.RoleUser, u.Role)
	require.False(t, u.IsVerified)
	require.NotEqual(t, "correct-horse", u.PasswordHash)

	sent := f.mailer.last(t)
	require.Equal(t, u.ID, sent.User.ID)
	require.NotEmpty(t, sent.Ticket)

	stored, err := f.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotEqual(t, sent.Ticket, stored.VerificationTokenHash, "only the fingerprint is stored")

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.auth.Signup(ctx, SignupInput{
			FirstName: "Ada", LastName: "L", Email: "ADA@example.com",
			Password: "password1", ConfirmPassword: "password1",
		})
		require.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)

	valid := SignupInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Password: "password1", ConfirmPassword: "password1",
	}

	tests := []struct {
		name   string
		mutate func(*SignupInput)
		want   error
	}{
		{"missing first name", func(in *SignupInput) { in.FirstName = " " }, ErrInvalidInput},
		{"missing last name", func(in *SignupInput) { in.LastName = "" }, ErrInvalidInput},
		{"bad email", func(in *SignupInput) { in.Email = "ada@example" }, ErrInvalidInput},
		{"short password", func(in *SignupInput) { in.Password, in.ConfirmPassword = "short", "short" }, ErrInvalidInput},
		{"confirmation mismatch", func(in *SignupInput) { in.ConfirmPassword = "password2" }, ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.auth.Signup(context.Background(), in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignupSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = context.DeadlineExceeded

	u := f.signup(t, "ada@example.com")
	require.NotEmpty(t, u.ID)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.signup(t, "ada@example.com")

	t.Run("success issues an authenticated token", func(t *testing.T) {
		tok, got, err := f.auth.Login(ctx, "ADA@example.com ", "correct-horse")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)

		sess, err := f.codec.Verify(tok)
		require.NoError(t, err)
		require.Equal(t, jwtx.StateAuthenticated, sess.State())
		require.Equal(t, u.Identity(), sess.Identity)
		require.WithinDuration(t, f.clock.Now().Add(jwtx.DefaultSessionTTL), sess.ExpiresAt, 0)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "ada@example.com", "wrong-horse")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "bob@example.com", "correct-horse")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.signup(t, "ada@example.com")

	got, err := f.auth.Profile(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.Zero(t, got.TotalPoints)

	_, err = f.auth.Profile(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}
