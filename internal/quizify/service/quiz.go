package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/trivia"
	"github.com/aussiebroadwan/quizify/pkg/idx"
	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
)

// DefaultQuizAmount is the number of questions requested per quiz.
const DefaultQuizAmount = 10

// QuestionProvider supplies questions for a category/difficulty selection.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, q trivia.Query) ([]trivia.Question, error)
}

type QuizService struct {
	Codec    *jwtx.Codec
	Provider QuestionProvider
	Amount   int

	// Shuffle reorders answer options for display. Defaults to rand.Shuffle.
	Shuffle func(n int, swap func(i, j int))
}

// QuestionView is a question as shown to the player, without the answer key.
type QuestionView struct {
	Index    int      `json:"index"`
	Field    string   `json:"field"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuizView is the player-facing form of a quiz payload.
type QuizView struct {
	QuizID     string         `json:"quizId"`
	Category   string         `json:"category"`
	Difficulty string         `json:"difficulty"`
	Questions  []QuestionView `json:"questions"`
}

// StartedQuiz is the result of a successful StartQuiz.
type StartedQuiz struct {
	Token     string
	ExpiresAt time.Time
	Payload   jwtx.QuizPayload
	View      QuizView
}

// StartQuiz moves a session from Authenticated to QuizIssued. On any error
// the caller's existing token stays valid and unchanged.
func (s *QuizService) StartQuiz(ctx context.Context, token, category, difficulty string) (StartedQuiz, error) {
	log := slogx.FromContext(ctx)

	sess, err := s.Codec.Verify(token)
	if err != nil {
		return StartedQuiz{}, err
	}

	category = strings.TrimSpace(category)
	difficulty = strings.TrimSpace(difficulty)
	if category == "" || difficulty == "" {
		return StartedQuiz{}, ErrIncompleteSelection
	}

	amount := s.Amount
	if amount <= 0 {
		amount = DefaultQuizAmount
	}

	questions, err := s.Provider.FetchQuestions(ctx, trivia.Query{
		Amount:     amount,
		Category:   category,
		Difficulty: difficulty,
	})
	if err != nil {
		log.Warn("question provider failed",
			slog.String("category", category),
			slog.String("difficulty", difficulty),
			slog.Any("err", err),
		)
		return StartedQuiz{}, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	if len(questions) == 0 {
		return StartedQuiz{}, ErrNoQuestionsAvailable
	}

	payload := jwtx.QuizPayload{
		QuizID:     idx.NewQuizID(),
		Category:   category,
		Difficulty: difficulty,
		Questions:  make([]jwtx.Question, len(questions)),
	}
	for i, q := range questions {
		payload.Questions[i] = jwtx.Question{
			Question:         q.Question,
			CorrectAnswer:    q.CorrectAnswer,
			IncorrectAnswers: q.IncorrectAnswers,
		}
	}

	newToken, err := s.Codec.ReissueWithPayload(token, payload)
	if err != nil {
		return StartedQuiz{}, err
	}
	issued, err := s.Codec.Verify(newToken)
	if err != nil {
		return StartedQuiz{}, err
	}

	log.Info("quiz issued",
		slog.String("user_id", sess.Identity.UserID),
		slog.String("quiz_id", payload.QuizID),
		slog.Int("questions", len(payload.Questions)),
	)

	return StartedQuiz{
		Token:     newToken,
		ExpiresAt: issued.ExpiresAt,
		Payload:   payload,
		View:      s.view(payload),
	}, nil
}

// view renders payload for display with shuffled options.
func (s *QuizService) view(p jwtx.QuizPayload) QuizView {
	shuffle := s.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	v := QuizView{
		QuizID:     p.QuizID,
		Category:   p.Category,
		Difficulty: p.Difficulty,
		Questions:  make([]QuestionView, len(p.Questions)),
	}
	for i, q := range p.Questions {
		opts := append([]string{q.CorrectAnswer}, q.IncorrectAnswers...)
		shuffle(len(opts), func(a, b int) { opts[a], opts[b] = opts[b], opts[a] })

		v.Questions[i] = QuestionView{
			Index:    i,
			Field:    AnswerField(i),
			Question: q.Question,
			Options:  opts,
		}
	}
	return v
}

// ActiveQuiz returns the player view of the quiz embedded in token, so a
// page reload can redisplay it. ErrNoActiveQuiz for a bare token.
func (s *QuizService) ActiveQuiz(token string) (QuizView, error) {
	sess, err := s.Codec.Verify(token)
	if err != nil {
		return QuizView{}, err
	}
	if sess.Quiz == nil {
		return QuizView{}, ErrNoActiveQuiz
	}
	return s.view(*sess.Quiz), nil
}

// AnswerField is the form field name carrying the answer to question i.
func AnswerField(i int) string {
	return fmt.Sprintf("question-%d", i)
}
