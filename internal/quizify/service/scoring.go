package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
	"github.com/aussiebroadwan/quizify/internal/quizify/lock"
	"github.com/aussiebroadwan/quizify/internal/quizify/store"
	"github.com/aussiebroadwan/quizify/pkg/idx"
	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
)

const (
	// PointsPerCorrect is awarded for every correctly answered question.
	PointsPerCorrect = 5

	// NotAnswered stands in for a missing answer in graded results.
	NotAnswered = "Not Answered"
)

// QuestionResult is the outcome of one graded question.
type QuestionResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// GradeResult is the outcome of grading a whole quiz.
type GradeResult struct {
	Score   int              `json:"score"`
	Correct int              `json:"correct"`
	Total   int              `json:"total"`
	Results []QuestionResult `json:"results"`
}

// Submission is a graded and stored quiz.
type Submission struct {
	QuizID   string
	Grade    GradeResult
	Record   domain.HistoryRecord
	Credited int
}

type ScoringService struct {
	Codec  *jwtx.Codec
	Store  store.Store
	Locker lock.Locker
	Now    func() time.Time
}

func (s *ScoringService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Grade compares answers, keyed by question index, against the answer key in
// payload. Matching is exact; a missing answer is never correct.
func Grade(payload jwtx.QuizPayload, answers map[int]string) GradeResult {
	res := GradeResult{
		Total:   len(payload.Questions),
		Results: make([]QuestionResult, len(payload.Questions)),
	}

	for i, q := range payload.Questions {
		answer, ok := answers[i]
		if !ok {
			answer = NotAnswered
		}
		correct := ok && answer == q.CorrectAnswer
		if correct {
			res.Correct++
		}
		res.Results[i] = QuestionResult{
			Question:      q.Question,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     correct,
		}
	}

	res.Score = res.Correct * PointsPerCorrect
	return res
}

// Persist applies a graded result to history and the user's total. Calls for
// the same (userID, quizID) are serialised through the Locker. Any failure is
// wrapped in ErrPersistence.
func (s *ScoringService) Persist(ctx context.Context, userID, quizID string, score int) (domain.HistoryRecord, int, error) {
	release, err := s.Locker.Acquire(ctx, lock.ResultKey(userID, quizID))
	if err != nil {
		return domain.HistoryRecord{}, 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer release()

	rec, credited, err := store.ApplyQuizResult(ctx, s.Store, domain.HistoryRecord{
		ID:          idx.New().String(),
		UserID:      userID,
		QuizID:      quizID,
		Score:       score,
		CompletedAt: s.now(),
	})
	if err != nil {
		return domain.HistoryRecord{}, 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return rec, credited, nil
}

// Submit grades the quiz embedded in token and stores the result. The token
// is not revoked; resubmitting it overwrites the same history row and earns
// no further credit.
func (s *ScoringService) Submit(ctx context.Context, token string, answers map[int]string) (Submission, error) {
	log := slogx.FromContext(ctx)

	sess, err := s.Codec.Verify(token)
	if err != nil {
		return Submission{}, err
	}
	if sess.Quiz == nil {
		return Submission{}, ErrNoActiveQuiz
	}

	grade := Grade(*sess.Quiz, answers)

	rec, credited, err := s.Persist(ctx, sess.Identity.UserID, sess.Quiz.QuizID, grade.Score)
	if err != nil {
		log.Error("failed to persist quiz result",
			slog.String("user_id", sess.Identity.UserID),
			slog.String("quiz_id", sess.Quiz.QuizID),
			slog.Any("err", err),
		)
		return Submission{QuizID: sess.Quiz.QuizID, Grade: grade}, err
	}

	log.Info("quiz graded",
		slog.String("user_id", sess.Identity.UserID),
		slog.String("quiz_id", sess.Quiz.QuizID),
		slog.Int("score", grade.Score),
		slog.Int("credited", credited),
	)

	return Submission{
		QuizID:   sess.Quiz.QuizID,
		Grade:    grade,
		Record:   rec,
		Credited: credited,
	}, nil
}
