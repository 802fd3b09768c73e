package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSigning is returned when a token cannot be produced, most commonly
// because no signing secret has been configured.
var ErrSigning = errors.New("jwtx: signing failed")

// Codec signs and verifies session tokens with a single shared HMAC secret.
// It is safe for concurrent use.
type Codec struct {
	secret  []byte
	issuer  string
	quizTTL time.Duration
	now     func() time.Time
}

// CodecOptions configures a Codec.
type CodecOptions struct {
	// Secret is the shared HS256 key. Required.
	Secret []byte

	// Issuer is written to and enforced on the "iss" claim. Empty disables
	// issuer checks.
	Issuer string

	// QuizTTL is the lifetime of tokens re-issued with a quiz payload.
	// Defaults to DefaultQuizTTL.
	QuizTTL time.Duration

	// Now overrides the clock, mostly for tests. Defaults to time.Now.
	Now func() time.Time
}

// NewCodec builds a Codec. A missing secret is not an error here; Issue and
// ReissueWithPayload report ErrSigning instead so that the failure surfaces on
// the request that needed it.
func NewCodec(opts CodecOptions) *Codec {
	c := &Codec{
		secret:  append([]byte(nil), opts.Secret...),
		issuer:  opts.Issuer,
		quizTTL: opts.QuizTTL,
		now:     opts.Now,
	}
	if c.quizTTL <= 0 {
		c.quizTTL = DefaultQuizTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// QuizTTL returns the lifetime applied to payload-bearing tokens.
func (c *Codec) QuizTTL() time.Duration { return c.quizTTL }

// Issue signs a bare identity token valid for ttl.
func (c *Codec) Issue(id Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("%w: ttl must be positive", ErrSigning)
	}
	return c.sign(newClaims(id, nil, c.issuer, c.now(), ttl))
}

// ReissueWithPayload verifies token, keeps its identity untouched and signs a
// new token that also carries quiz. The new token gets a fresh iat and expires
// QuizTTL from now.
func (c *Codec) ReissueWithPayload(token string, quiz QuizPayload) (string, error) {
	sess, err := c.Verify(token)
	if err != nil {
		return "", err
	}
	return c.sign(newClaims(sess.Identity, &quiz, c.issuer, c.now(), c.quizTTL))
}

func (c *Codec) sign(claims Claims) (string, error) {
	if len(c.secret) == 0 {
		return "", fmt.Errorf("%w: no secret configured", ErrSigning)
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, nil
}
