package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
	"github.com/aussiebroadwan/quizify/internal/quizify/store"
	"github.com/aussiebroadwan/quizify/internal/quizify/store/drivers/sqlite"
	"github.com/aussiebroadwan/quizify/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createUser(t *testing.T, s store.Store, email string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "$argon2id$dummy",
		Role:         domain.RoleUser,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestOptimizeKeepsRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "kept@example.com")

	require.NoError(t, s.Optimize(ctx))

	_, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := createUser(t, s, "ada@example.com")

	t.Run("get by id and email", func(t *testing.T) {
		byID, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "ada@example.com", byID.Email)
		require.Equal(t, domain.RoleUser, byID.Role)
		require.False(t, byID.IsVerified)
		require.Zero(t, byID.TotalPoints)
		require.False(t, byID.CreatedAt.IsZero())

		byEmail, err := s.Users().GetUserByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.Users().GetUserByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("add points", func(t *testing.T) {
		require.NoError(t, s.Users().AddPoints(ctx, u.ID, 15))
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 15, got.TotalPoints)

		require.ErrorIs(t, s.Users().AddPoints(ctx, "missing", 5), store.ErrNotFound)
	})
}

func TestVerificationToken(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "ada@example.com")

	now := time.Now().UTC()

	t.Run("set and look up", func(t *testing.T) {
		require.NoError(t, s.Users().SetVerificationToken(ctx, u.ID, "hash-1", now.Add(time.Hour)))

		got, err := s.Users().GetUserByVerificationToken(ctx, "hash-1")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.NotNil(t, got.VerificationExpires)
		require.WithinDuration(t, now.Add(time.Hour), *got.VerificationExpires, time.Second)
	})

	t.Run("newer ticket supersedes the old one", func(t *testing.T) {
		require.NoError(t, s.Users().SetVerificationToken(ctx, u.ID, "hash-2", now.Add(time.Hour)))

		_, err := s.Users().GetUserByVerificationToken(ctx, "hash-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("expired ticket is not consumed and stays stored", func(t *testing.T) {
		_, err := s.Users().ConsumeVerificationToken(ctx, "hash-2", now.Add(2*time.Hour))
		require.ErrorIs(t, err, store.ErrNotFound)

		got, err := s.Users().GetUserByVerificationToken(ctx, "hash-2")
		require.NoError(t, err)
		require.False(t, got.IsVerified)
	})

	t.Run("consume clears ticket and verifies", func(t *testing.T) {
		got, err := s.Users().ConsumeVerificationToken(ctx, "hash-2", now)
		require.NoError(t, err)
		require.True(t, got.IsVerified)
		require.Empty(t, got.VerificationTokenHash)
		require.Nil(t, got.VerificationExpires)

		_, err = s.Users().ConsumeVerificationToken(ctx, "hash-2", now)
		require.ErrorIs(t, err, store.ErrNotFound, "tickets are single use")
	})

	t.Run("unknown user", func(t *testing.T) {
		err := s.Users().SetVerificationToken(ctx, "missing", "hash-3", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestApplyQuizResult(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "ada@example.com")

	points := func() int {
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		return got.TotalPoints
	}

	rec := domain.HistoryRecord{
		ID:          idx.New().String(),
		UserID:      u.ID,
		QuizID:      "quiz-1",
		Score:       30,
		CompletedAt: time.Now().UTC(),
	}

	stored, credited, err := store.ApplyQuizResult(ctx, s, rec)
	require.NoError(t, err)
	require.Equal(t, 30, credited)
	require.Equal(t, rec.ID, stored.ID)
	require.Equal(t, 30, points())

	t.Run("same key twice yields one record and no double credit", func(t *testing.T) {
		again := rec
		again.ID = idx.New().String()

		stored, credited, err := store.ApplyQuizResult(ctx, s, again)
		require.NoError(t, err)
		require.Zero(t, credited)
		require.Equal(t, rec.ID, stored.ID, "original row is updated in place")

		n, err := s.History().CountByUser(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Equal(t, 30, points())
	})

	t.Run("higher score credits only the improvement", func(t *testing.T) {
		better := rec
		better.Score = 45

		stored, credited, err := store.ApplyQuizResult(ctx, s, better)
		require.NoError(t, err)
		require.Equal(t, 15, credited)
		require.Equal(t, 45, stored.Score)
		require.Equal(t, 45, points())
	})

	t.Run("lower score overwrites the record but never lowers the total", func(t *testing.T) {
		worse := rec
		worse.Score = 10

		stored, credited, err := store.ApplyQuizResult(ctx, s, worse)
		require.NoError(t, err)
		require.Zero(t, credited)
		require.Equal(t, 10, stored.Score)
		require.Equal(t, 45, points())
	})

	t.Run("unknown user rolls back", func(t *testing.T) {
		orphan := domain.HistoryRecord{
			ID:          idx.New().String(),
			UserID:      "missing",
			QuizID:      "quiz-x",
			Score:       5,
			CompletedAt: time.Now().UTC(),
		}
		_, _, err := store.ApplyQuizResult(ctx, s, orphan)
		require.Error(t, err)

		n, err := s.History().CountByUser(ctx, "missing")
		require.NoError(t, err)
		require.Zero(t, n)
	})
}

func TestListByUserPaging(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "ada@example.com")
	other := createUser(t, s, "bob@example.com")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 12 {
		_, err := s.History().UpsertResult(ctx, domain.HistoryRecord{
			ID:          idx.New().String(),
			UserID:      u.ID,
			QuizID:      fmt.Sprintf("quiz-%02d", i),
			Score:       i * 5,
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := s.History().UpsertResult(ctx, domain.HistoryRecord{
		ID: idx.New().String(), UserID: other.ID, QuizID: "quiz-00", Score: 50, CompletedAt: base,
	})
	require.NoError(t, err)

	n, err := s.History().CountByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 12, n)

	first, err := s.History().ListByUser(ctx, u.ID, 5, 0)
	require.NoError(t, err)
	require.Len(t, first, 5)
	require.Equal(t, "quiz-11", first[0].QuizID)
	require.Equal(t, "quiz-07", first[4].QuizID)
	for i := 1; i < len(first); i++ {
		require.True(t, first[i-1].CompletedAt.After(first[i].CompletedAt))
	}

	last, err := s.History().ListByUser(ctx, u.ID, 5, 10)
	require.NoError(t, err)
	require.Len(t, last, 2)
	require.Equal(t, "quiz-01", last[0].QuizID)
	require.Equal(t, "quiz-00", last[1].QuizID)

	beyond, err := s.History().ListByUser(ctx, u.ID, 5, 15)
	require.NoError(t, err)
	require.Empty(t, beyond)
}
