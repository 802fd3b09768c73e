package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/quizify/internal/quizify/service"
	"github.com/aussiebroadwan/quizify/pkg/httpx"
	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
)

type failure struct {
	status  int
	code    string
	message string
}

// classify maps service and token errors to a response. Unknown errors are
// reported as a generic server error.
func classify(err error) failure {
	var inputErr *service.InputError
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return failure{http.StatusUnauthorized, "invalid_token", "Your session has expired. Please log in again."}
	case errors.Is(err, jwtx.ErrInvalidSignature), errors.Is(err, jwtx.ErrInvalidClaim):
		return failure{http.StatusUnauthorized, "invalid_token", "Invalid session. Please log in again."}
	case errors.Is(err, service.ErrInvalidCredentials):
		return failure{http.StatusUnauthorized, "invalid_credentials", "Invalid email or password."}

	case errors.As(err, &inputErr):
		return failure{http.StatusBadRequest, "invalid_input", inputErr.Message}
	case errors.Is(err, service.ErrPasswordMismatch):
		return failure{http.StatusBadRequest, "invalid_input", "Passwords do not match."}
	case errors.Is(err, service.ErrEmailTaken):
		return failure{http.StatusConflict, "email_taken", "An account with that email already exists."}
	case errors.Is(err, service.ErrUserNotFound):
		return failure{http.StatusNotFound, "user_not_found", "No account found for that email."}

	case errors.Is(err, service.ErrTicketNotFound):
		return failure{http.StatusBadRequest, "invalid_ticket", "This verification link is invalid or has already been used."}
	case errors.Is(err, service.ErrTicketExpired):
		return failure{http.StatusBadRequest, "ticket_expired", "This verification link has expired. Please request a new one."}

	case errors.Is(err, service.ErrIncompleteSelection):
		return failure{http.StatusBadRequest, "incomplete_selection", "Please select both a category and a difficulty."}
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		return failure{http.StatusUnprocessableEntity, "no_questions", "No questions are available for that selection. Try another."}
	case errors.Is(err, service.ErrProviderUnavailable):
		return failure{http.StatusBadGateway, "provider_unavailable", "Questions could not be loaded right now. Please try again."}
	case errors.Is(err, service.ErrNoActiveQuiz):
		return failure{http.StatusConflict, "no_active_quiz", "There is no quiz in progress. Start a new quiz first."}

	case errors.Is(err, service.ErrPersistence):
		return failure{http.StatusInternalServerError, "persistence_failed", "Your quiz could not be saved. Please try again."}
	default:
		return failure{http.StatusInternalServerError, "server_error", "Something went wrong. Please try again."}
	}
}

// fail reports err to the caller, redirecting browsers to redirectTo.
func fail(w http.ResponseWriter, r *http.Request, err error, redirectTo string) {
	f := classify(err)
	if f.status >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed",
			slog.String("code", f.code),
			slog.Any("err", err),
		)
	}
	httpx.Fail(w, r, f.status, f.code, f.message, redirectTo)
}

func badForm(w http.ResponseWriter, r *http.Request, redirectTo string) {
	httpx.Fail(w, r, http.StatusBadRequest, "invalid_request", "Invalid form data.", redirectTo)
}
