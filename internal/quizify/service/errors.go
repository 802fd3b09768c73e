package service

import "errors"

var (
	// Authentication.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Signup.
	ErrInvalidInput     = errors.New("invalid input")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrUserNotFound     = errors.New("user not found")

	// Verification.
	ErrTicketNotFound = errors.New("verification ticket not found")
	ErrTicketExpired  = errors.New("verification ticket expired")

	// Quiz workflow.
	ErrIncompleteSelection  = errors.New("category and difficulty are both required")
	ErrNoQuestionsAvailable = errors.New("no questions available for this selection")
	ErrProviderUnavailable  = errors.New("question provider unavailable")
	ErrNoActiveQuiz         = errors.New("no active quiz in session")

	// ErrPersistence wraps any failure to record a graded quiz.
	ErrPersistence = errors.New("failed to save quiz result")
)

// InputError describes which signup field was rejected. It matches
// ErrInvalidInput under errors.Is.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Message }
func (e *InputError) Unwrap() error { return ErrInvalidInput }
