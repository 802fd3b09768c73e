package service

import (
	"context"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
	"github.com/aussiebroadwan/quizify/internal/quizify/store"
)

// DefaultPageSize is the number of history records per page.
const DefaultPageSize = 5

// HistoryPage is one page of a user's quiz history, newest first.
type HistoryPage struct {
	Records     []domain.HistoryRecord
	CurrentPage int
	TotalPages  int
	TotalCount  int
}

type HistoryService struct {
	Store store.Store
}

// Page returns the 1-based page of userID's history. Pages past the end are
// empty rather than an error.
func (s *HistoryService) Page(ctx context.Context, userID string, page, size int) (HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}

	count, err := s.Store.History().CountByUser(ctx, userID)
	if err != nil {
		return HistoryPage{}, err
	}

	out := HistoryPage{
		Records:     []domain.HistoryRecord{},
		CurrentPage: page,
		TotalPages:  (count + size - 1) / size,
		TotalCount:  count,
	}

	offset := (page - 1) * size
	if offset >= count {
		return out, nil
	}

	out.Records, err = s.Store.History().ListByUser(ctx, userID, size, offset)
	if err != nil {
		return HistoryPage{}, err
	}
	return out, nil
}
