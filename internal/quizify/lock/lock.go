// Package lock serialises work per key. Scoring uses it so that concurrent
// submissions of the same quiz by the same user are applied one at a time.
package lock

import (
	"context"
	"errors"
)

// ErrTimeout is returned when a lock could not be acquired before the wait
// deadline.
var ErrTimeout = errors.New("lock: timed out waiting for lock")

// Locker hands out exclusive per-key locks. The returned release func is safe
// to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ResultKey is the lock key for applying a quiz result.
func ResultKey(userID, quizID string) string {
	return "quizify:result:" + userID + ":" + quizID
}
