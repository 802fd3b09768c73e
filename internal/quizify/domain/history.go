package domain

import "time"

// HistoryRecord is one graded quiz. There is at most one record per
// (UserID, QuizID); resubmissions overwrite Score and CompletedAt.
type HistoryRecord struct {
	ID          string
	UserID      string
	QuizID      string
	Score       int
	CompletedAt time.Time
}
