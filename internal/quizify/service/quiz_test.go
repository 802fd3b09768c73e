package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStartQuiz(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.signup(t, "ada@example.com")
	tok := f.login(t, "ada@example.com")

	f.provider.questions = sampleQuestions(10)

	started, err := f.quiz.StartQuiz(ctx, tok, "9", "easy")
	require.NoError(t, err)
	require.Equal(t, DefaultQuizAmount, f.provider.got.Amount)
	require.Equal(t, "9", f.provider.got.Category)
	require.Equal(t, "easy", f.provider.got.Difficulty)

	sess, err := f.codec.Verify(started.Token)
	require.NoError(t, err)
	require.Equal(t, jwtx.StateQuizIssued, sess.State())
	require.Equal(t, u.Identity(), sess.Identity)
	require.Equal(t, started.Payload, *sess.Quiz)
	require.Len(t, sess.Quiz.Questions, 10)

	_, err = uuid.Parse(sess.Quiz.QuizID)
	require.NoError(t, err)

	require.Len(t, started.View.Questions, 10)
	for i, q := range started.View.Questions {
		require.Equal(t, i, q.Index)
		require.Equal(t, AnswerField(i), q.Field)
		require.ElementsMatch(t, []string{"right", "wrong-1", "wrong-2", "wrong-3"}, q.Options)
	}

	t.Run("active quiz can be redisplayed", func(t *testing.T) {
		view, err := f.quiz.ActiveQuiz(started.Token)
		require.NoError(t, err)
		require.Equal(t, started.Payload.QuizID, view.QuizID)

		_, err = f.quiz.ActiveQuiz(tok)
		require.ErrorIs(t, err, ErrNoActiveQuiz)
	})

	t.Run("each start gets a fresh quiz id", func(t *testing.T) {
		again, err := f.quiz.StartQuiz(ctx, tok, "9", "easy")
		require.NoError(t, err)
		require.NotEqual(t, started.Payload.QuizID, again.Payload.QuizID)
	})
}

func TestStartQuizFailuresKeepPriorState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "ada@example.com")
	tok := f.login(t, "ada@example.com")

	t.Run("incomplete selection", func(t *testing.T) {
		f.provider.questions = sampleQuestions(10)
		_, err := f.quiz.StartQuiz(ctx, tok, "9", "")
		require.ErrorIs(t, err, ErrIncompleteSelection)

		_, err = f.quiz.StartQuiz(ctx, tok, " ", "easy")
		require.ErrorIs(t, err, ErrIncompleteSelection)
	})

	t.Run("no questions", func(t *testing.T) {
		f.provider.questions = nil
		_, err := f.quiz.StartQuiz(ctx, tok, "9", "hard")
		require.ErrorIs(t, err, ErrNoQuestionsAvailable)
	})

	t.Run("provider down", func(t *testing.T) {
		f.provider.err = errors.New("connection refused")
		defer func() { f.provider.err = nil }()

		_, err := f.quiz.StartQuiz(ctx, tok, "9", "easy")
		require.ErrorIs(t, err, ErrProviderUnavailable)
	})

	sess, err := f.codec.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, jwtx.StateAuthenticated, sess.State())
}

func TestStartQuizRequiresValidToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "ada@example.com")
	tok := f.login(t, "ada@example.com")
	f.provider.questions = sampleQuestions(1)

	_, err := f.quiz.StartQuiz(ctx, "", "9", "easy")
	require.ErrorIs(t, err, jwtx.ErrInvalidSignature)

	_, err = f.quiz.StartQuiz(ctx, tok+"x", "9", "easy")
	require.ErrorIs(t, err, jwtx.ErrInvalidSignature)

	f.clock.Advance(jwtx.DefaultSessionTTL + time.Second)
	_, err = f.quiz.StartQuiz(ctx, tok, "9", "easy")
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestQuizTokenOutlivesLoginToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "ada@example.com")
	tok := f.login(t, "ada@example.com")
	f.provider.questions = sampleQuestions(3)

	f.clock.Advance(55 * time.Minute)
	started, err := f.quiz.StartQuiz(ctx, tok, "9", "easy")
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	_, err = f.codec.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	_, err = f.scoring.Submit(ctx, started.Token, map[int]string{0: "right"})
	require.NoError(t, err)
}
