package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this and
// expose sub-repositories so that transactional work goes through Tx rather
// than mixing handles.
type Store interface {
	Users() Users
	History() History

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Optimize runs routine driver maintenance. It never deletes rows.
	Optimize(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user. ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByVerificationToken looks a user up by ticket fingerprint,
	// regardless of whether the ticket has expired.
	GetUserByVerificationToken(ctx context.Context, tokenHash string) (domain.User, error)

	// SetVerificationToken replaces any outstanding ticket on the user.
	SetVerificationToken(ctx context.Context, userID, tokenHash string, expires time.Time) error

	// ConsumeVerificationToken marks the owner verified and clears the ticket
	// in one statement, provided the ticket is still unexpired at now.
	// ErrNotFound if no row qualified.
	ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error)

	// AddPoints increments total_points by delta.
	AddPoints(ctx context.Context, userID string, delta int) error
}

type History interface {
	// GetResult returns the record for (userID, quizID).
	GetResult(ctx context.Context, userID, quizID string) (domain.HistoryRecord, error)

	// UpsertResult inserts rec or, when (user_id, quiz_id) already exists,
	// overwrites score and completed_at. The stored record is returned.
	UpsertResult(ctx context.Context, rec domain.HistoryRecord) (domain.HistoryRecord, error)

	CountByUser(ctx context.Context, userID string) (int, error)

	// ListByUser returns records newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.HistoryRecord, error)
}

// ApplyQuizResult records a graded quiz and credits the owner's total in a
// single transaction. Only the improvement over a previously stored score for
// the same quiz is credited, so total_points never decreases and a
// resubmission cannot earn the same points twice.
func ApplyQuizResult(ctx context.Context, s Store, rec domain.HistoryRecord) (domain.HistoryRecord, int, error) {
	var (
		stored   domain.HistoryRecord
		credited int
	)

	err := s.WithTx(ctx, func(tx Tx) error {
		prev, err := tx.History().GetResult(ctx, rec.UserID, rec.QuizID)
		switch {
		case errors.Is(err, ErrNotFound):
			credited = rec.Score
		case err != nil:
			return fmt.Errorf("load previous result: %w", err)
		default:
			credited = max(0, rec.Score-prev.Score)
		}

		stored, err = tx.History().UpsertResult(ctx, rec)
		if err != nil {
			return fmt.Errorf("upsert result: %w", err)
		}

		if credited > 0 {
			if err := tx.Users().AddPoints(ctx, rec.UserID, credited); err != nil {
				return fmt.Errorf("add points: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.HistoryRecord{}, 0, err
	}
	return stored, credited, nil
}
