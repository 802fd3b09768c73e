package jwtx

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/quizify/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrInvalidSignature = errors.New("jwtx: invalid signature")
	ErrExpired          = errors.New("jwtx: token expired")
	ErrInvalidClaim     = errors.New("jwtx: invalid claims")
)

// Verify checks the signature and time claims of token and returns its
// content. Malformed tokens report both ErrInvalidSignature and ErrMalformed.
// Segments must be canonical base64url, so a flipped padding bit in the
// signature is rejected too.
func (c *Codec) Verify(token string) (Session, error) {
	if len(c.secret) == 0 {
		return Session{}, fmt.Errorf("%w: no secret configured", ErrInvalidSignature)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	parser := jwt.NewParser(opts...)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Session{}, mapParseError(err)
	}
	if !parsed.Valid {
		return Session{}, ErrInvalidSignature
	}
	if claims.Subject != claims.UserID {
		return Session{}, ErrInvalidClaim
	}
	if id, err := idx.Parse(claims.UserID); err != nil || id.String() != claims.UserID {
		return Session{}, fmt.Errorf("%w: user id %q", ErrInvalidClaim, claims.UserID)
	}

	return sessionFromClaims(claims), nil
}

// mapParseError folds golang-jwt's error tree into the package sentinels.
// Signature checks run before claim validation, so a tampered token never
// reports ErrExpired.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrInvalidSignature, ErrMalformed)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
}
