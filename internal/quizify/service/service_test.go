package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
	"github.com/aussiebroadwan/quizify/internal/quizify/lock"
	"github.com/aussiebroadwan/quizify/internal/quizify/store/drivers/sqlite"
	"github.com/aussiebroadwan/quizify/internal/quizify/trivia"
	"github.com/aussiebroadwan/quizify/pkg/cryptox"
	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	User   domain.User
	Ticket string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendVerification(_ context.Context, u domain.User, ticket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{User: u, Ticket: ticket})
	return m.err
}

func (m *recordingMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type fakeProvider struct {
	questions []trivia.Question
	err       error
	got       trivia.Query
}

func (p *fakeProvider) FetchQuestions(_ context.Context, q trivia.Query) ([]trivia.Question, error) {
	p.got = q
	return p.questions, p.err
}

type fixture struct {
	store        *sqlite.Store
	clock        *fakeClock
	codec        *jwtx.Codec
	mailer       *recordingMailer
	provider     *fakeProvider
	auth         *AuthService
	verification *VerificationService
	quiz         *QuizService
	scoring      *ScoringService
	history      *HistoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	clock := &fakeClock{t: time.Now().UTC().Truncate(time.Second)}
	codec := jwtx.NewCodec(jwtx.CodecOptions{
		Secret: []byte("service-test-secret"),
		Issuer: "quizify-test",
		Now:    clock.Now,
	})

	f := &fixture{
		store:    s,
		clock:    clock,
		codec:    codec,
		mailer:   &recordingMailer{},
		provider: &fakeProvider{},
	}
	f.verification = &VerificationService{Store: s, Mailer: f.mailer, Now: clock.Now}
	f.auth = &AuthService{
		Store:        s,
		Hasher:       cryptox.NewPasswordHasher("pepper"),
		Codec:        codec,
		Verification: f.verification,
	}
	f.quiz = &QuizService{Codec: codec, Provider: f.provider}
	f.scoring = &ScoringService{Codec: codec, Store: s, Locker: lock.NewLocal(), Now: clock.Now}
	f.history = &HistoryService{Store: s}
	return f
}

func (f *fixture) signup(t *testing.T, email string) domain.User {
	t.Helper()

	u, err := f.auth.Signup(context.Background(), SignupInput{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           email,
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) login(t *testing.T, email string) string {
	t.Helper()

	tok, _, err := f.auth.Login(context.Background(), email, "correct-horse")
	require.NoError(t, err)
	return tok
}

func sampleQuestions(n int) []trivia.Question {
	out := make([]trivia.Question, n)
	for i := range out {
		out[i] = trivia.Question{
			Question:         "Question " + string(rune('A'+i)),
			CorrectAnswer:    "right",
			IncorrectAnswers: []string{"wrong-1", "wrong-2", "wrong-3"},
		}
	}
	return out
}
