package http

import (
	"net/http"

	"github.com/aussiebroadwan/quizify/pkg/httpx"
)

// HomeView is the landing page model. Flashes queued by the previous
// redirect are delivered here once.
type HomeView struct {
	LoggedIn      bool          `json:"loggedIn"`
	Name          string        `json:"name,omitempty"`
	Email         string        `json:"email,omitempty"`
	IsVerified    bool          `json:"isVerified"`
	Role          string        `json:"role,omitempty"`
	HasActiveQuiz bool          `json:"hasActiveQuiz"`
	Flashes       []httpx.Flash `json:"flashes"`
}

type HomeHandler struct{}

func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	view := HomeView{Flashes: httpx.PopFlashes(w, r)}
	if view.Flashes == nil {
		view.Flashes = []httpx.Flash{}
	}

	if sess, ok := httpx.SessionFromContext(r.Context()); ok {
		view.LoggedIn = true
		view.Name = sess.Identity.DisplayName()
		view.Email = sess.Identity.Email
		view.IsVerified = sess.Identity.IsVerified
		view.Role = sess.Identity.Role
		view.HasActiveQuiz = sess.Quiz != nil
	}

	httpx.WriteJSON(w, http.StatusOK, view)
}
