package sqlite

import (
	"context"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
)

type historyRepo struct {
	q *queries
}

func (r *historyRepo) GetResult(ctx context.Context, userID, quizID string) (domain.HistoryRecord, error) {
	row, err := r.q.GetHistoryResult(ctx, userID, quizID)
	if err != nil {
		return domain.HistoryRecord{}, mapNotFound(err)
	}
	return mapHistory(row), nil
}

// UpsertResult keeps the original record id on conflict; only score and
// completed_at move.
func (r *historyRepo) UpsertResult(ctx context.Context, rec domain.HistoryRecord) (domain.HistoryRecord, error) {
	row, err := r.q.UpsertHistoryResult(ctx, historyRow{
		ID:          rec.ID,
		UserID:      rec.UserID,
		QuizID:      rec.QuizID,
		Score:       rec.Score,
		CompletedAt: rec.CompletedAt.UTC(),
	})
	if err != nil {
		return domain.HistoryRecord{}, mapConstraint(err)
	}
	return mapHistory(row), nil
}

func (r *historyRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	return r.q.CountHistoryByUser(ctx, userID)
}

func (r *historyRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.HistoryRecord, error) {
	rows, err := r.q.ListHistoryByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]domain.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapHistory(row))
	}
	return out, nil
}

func mapHistory(row historyRow) domain.HistoryRecord {
	return domain.HistoryRecord{
		ID:          row.ID,
		UserID:      row.UserID,
		QuizID:      row.QuizID,
		Score:       row.Score,
		CompletedAt: row.CompletedAt.UTC(),
	}
}
