package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/aussiebroadwan/quizify/internal/quizify/service"
	"github.com/aussiebroadwan/quizify/pkg/httpx"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

var verifyEmailPage = template.Must(template.ParseFS(templateFS, "templates/verify_email.html"))

type verifyEmailData struct {
	Title   string
	Message string
	Success bool
}

// VerifyEmailHandler consumes the ticket in ?token= and renders the outcome.
type VerifyEmailHandler struct {
	VerificationService *service.VerificationService
}

func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	data := verifyEmailData{
		Title:   "Email verified",
		Message: "Your email address has been verified. Log in again to refresh your session.",
		Success: true,
	}
	status := http.StatusOK

	if _, err := h.VerificationService.Consume(r.Context(), r.URL.Query().Get("token")); err != nil {
		f := classify(err)
		if f.status >= http.StatusInternalServerError {
			log.Error("verify email failed", "err", err)
		}
		data = verifyEmailData{Title: "Verification failed", Message: f.message}
		status = f.status
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := verifyEmailPage.Execute(w, data); err != nil {
		log.Error("render verify email page", "err", err)
	}
}
