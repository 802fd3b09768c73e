package service

import (
	"context"
	"sync"
	"testing"

	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func payloadOf(n int) jwtx.QuizPayload {
	p := jwtx.QuizPayload{QuizID: "quiz-1", Category: "9", Difficulty: "easy"}
	for _, q := range sampleQuestions(n) {
		p.Questions = append(p.Questions, jwtx.Question{
			Question:         q.Question,
			CorrectAnswer:    q.CorrectAnswer,
			IncorrectAnswers: q.IncorrectAnswers,
		})
	}
	return p
}

func TestGrade(t *testing.T) {
	t.Run("six of ten correct scores thirty", func(t *testing.T) {
		answers := map[int]string{}
		for i := range 10 {
			if i < 6 {
				answers[i] = "right"
			} else {
				answers[i] = "wrong-1"
			}
		}

		res := Grade(payloadOf(10), answers)
		require.Equal(t, 6, res.Correct)
		require.Equal(t, 30, res.Score)
		require.Equal(t, 10, res.Total)
		require.Len(t, res.Results, 10)
		require.True(t, res.Results[0].IsCorrect)
		require.False(t, res.Results[9].IsCorrect)
	})

	t.Run("missing answers are recorded and never correct", func(t *testing.T) {
		p := payloadOf(3)
		p.Questions[1].CorrectAnswer = NotAnswered

		res := Grade(p, map[int]string{0: "right"})
		require.Equal(t, 1, res.Correct)
		require.Equal(t, NotAnswered, res.Results[1].UserAnswer)
		require.False(t, res.Results[1].IsCorrect)
		require.Equal(t, NotAnswered, res.Results[2].UserAnswer)
	})

	t.Run("matching is exact", func(t *testing.T) {
		res := Grade(payloadOf(2), map[int]string{0: "Right", 1: "right "})
		require.Zero(t, res.Correct)
		require.Zero(t, res.Score)
	})

	t.Run("answers for unknown indices are ignored", func(t *testing.T) {
		res := Grade(payloadOf(1), map[int]string{0: "right", 7: "right"})
		require.Equal(t, 1, res.Correct)
		require.Len(t, res.Results, 1)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.signup(t, "ada@example.com")
	tok := f.login(t, "ada@example.com")

	f.provider.questions = sampleQuestions(10)
	started, err := f.quiz.StartQuiz(ctx, tok, "9", "easy")
	require.NoError(t, err)

	answers := map[int]string{0: "right", 1: "right", 2: "right", 3: "right", 4: "right", 5: "right", 6: "wrong-2"}

	sub, err := f.scoring.Submit(ctx, started.Token, answers)
	require.NoError(t, err)
	require.Equal(t, 30, sub.Grade.Score)
	require.Equal(t, 30, sub.Credited)
	require.Equal(t, started.Payload.QuizID, sub.Record.QuizID)
	require.Equal(t, u.ID, sub.Record.UserID)

	t.Run("resubmitting the same token earns nothing", func(t *testing.T) {
		again, err := f.scoring.Submit(ctx, started.Token, answers)
		require.NoError(t, err)
		require.Zero(t, again.Credited)
		require.Equal(t, sub.Record.ID, again.Record.ID)

		n, err := f.store.History().CountByUser(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		got, err := f.store.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 30, got.TotalPoints)
	})

	t.Run("bare token has no quiz", func(t *testing.T) {
		_, err := f.scoring.Submit(ctx, tok, answers)
		require.ErrorIs(t, err, ErrNoActiveQuiz)
	})

	t.Run("tampered token", func(t *testing.T) {
		_, err := f.scoring.Submit(ctx, started.Token[:len(started.Token)-2], answers)
		require.ErrorIs(t, err, jwtx.ErrInvalidSignature)
	})
}

func TestSubmitConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.signup(t, "ada@example.com")
	tok := f.login(t, "ada@example.com")

	f.provider.questions = sampleQuestions(4)
	started, err := f.quiz.StartQuiz(ctx, tok, "9", "easy")
	require.NoError(t, err)

	answers := map[int]string{0: "right", 1: "right", 2: "right", 3: "right"}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		credited int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := f.scoring.Submit(ctx, started.Token, answers)
			if err != nil {
				t.Errorf("submit: %v", err)
				return
			}
			mu.Lock()
			credited += sub.Credited
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 20, credited)

	got, err := f.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 20, got.TotalPoints)

	n, err := f.store.History().CountByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestPersistFailureIsReported(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signup(t, "ada@example.com")
	tok := f.login(t, "ada@example.com")

	f.provider.questions = sampleQuestions(2)
	started, err := f.quiz.StartQuiz(ctx, tok, "9", "easy")
	require.NoError(t, err)

	require.NoError(t, f.store.Close())

	sub, err := f.scoring.Submit(ctx, started.Token, map[int]string{0: "right"})
	require.ErrorIs(t, err, ErrPersistence)
	require.Equal(t, 5, sub.Grade.Score, "grade is still returned to the caller")
}
