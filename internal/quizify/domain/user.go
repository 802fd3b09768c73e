package domain

import (
	"time"

	"github.com/aussiebroadwan/quizify/pkg/jwtx"
)

// RoleUser is assigned to every account created through signup.
const RoleUser = "User"

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string // trimmed, lower-cased, unique
	PasswordHash string // argon2 encoded
	Role         string
	IsVerified   bool

	// VerificationTokenHash is the fingerprint of the outstanding ticket, if any.
	VerificationTokenHash string
	VerificationExpires   *time.Time

	TotalPoints int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Identity is the claim set embedded into session tokens for u.
func (u User) Identity() jwtx.Identity {
	return jwtx.Identity{
		UserID:     u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		Role:       u.Role,
	}
}
