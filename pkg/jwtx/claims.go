package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants for the quiz session flow.
const (
	// DefaultSessionTTL is the lifetime of a bare identity token issued at login.
	DefaultSessionTTL = time.Hour

	// DefaultQuizTTL is the lifetime of a token re-issued with an embedded quiz.
	// The clock restarts at re-issue so a quiz started late in a session can
	// still be finished.
	DefaultQuizTTL = 30 * time.Minute
)

// Identity is the authenticated-user part of a session token. It is copied
// verbatim whenever a token is re-issued.
type Identity struct {
	UserID     string `json:"userId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
	Role       string `json:"role"`
}

// DisplayName joins first and last name.
func (i Identity) DisplayName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	default:
		return i.FirstName + " " + i.LastName
	}
}

// Question is a multiple choice item as carried inside the token, including
// its answer key.
type Question struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// QuizPayload is the in-progress quiz embedded into a re-issued token.
type QuizPayload struct {
	QuizID     string     `json:"quizId"`
	Category   string     `json:"category,omitempty"`
	Difficulty string     `json:"difficulty,omitempty"`
	Questions  []Question `json:"questions"`
}

// Claims is the signed claim set. Identity fields are flattened into the top
// level of the JWT body; the quiz, when present, lives under "quiz".
type Claims struct {
	jwt.RegisteredClaims
	Identity

	Quiz *QuizPayload `json:"quiz,omitempty"`
}

func newClaims(id Identity, quiz *QuizPayload, issuer string, now time.Time, ttl time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Identity: id,
		Quiz:     quiz,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// State is the position of a token in the quiz workflow.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
	StateQuizIssued
	StateGraded
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateQuizIssued:
		return "quiz_issued"
	case StateGraded:
		return "graded"
	default:
		return "anonymous"
	}
}

// Session is the verified content of a token: either a bare identity or an
// identity plus a quiz payload.
type Session struct {
	Identity  Identity
	Quiz      *QuizPayload
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// State reports Authenticated for a bare token and QuizIssued when a quiz is
// embedded. Graded is never carried by a token; it only exists once a result
// has been stored.
func (s Session) State() State {
	if s.Quiz != nil {
		return StateQuizIssued
	}
	return StateAuthenticated
}

func sessionFromClaims(c *Claims) Session {
	s := Session{
		Identity: c.Identity,
		Quiz:     c.Quiz,
	}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}
