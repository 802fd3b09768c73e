package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
	"github.com/aussiebroadwan/quizify/internal/quizify/service"
	"github.com/aussiebroadwan/quizify/pkg/httpx"
	"github.com/aussiebroadwan/quizify/pkg/jwtx"
	"github.com/aussiebroadwan/quizify/pkg/slogx"
)

// UserView is the public form of a user account.
type UserView struct {
	UserID      string    `json:"userId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	IsVerified  bool      `json:"isVerified"`
	Role        string    `json:"role"`
	TotalPoints int       `json:"totalPoints"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newUserView(u domain.User) UserView {
	return UserView{
		UserID:      u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		IsVerified:  u.IsVerified,
		Role:        u.Role,
		TotalPoints: u.TotalPoints,
		CreatedAt:   u.CreatedAt,
	}
}

// LoginResponse is returned to JSON callers of /users/login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

type UsersHandler struct {
	AuthService         *service.AuthService
	VerificationService *service.VerificationService
	Codec               *jwtx.Codec
	SecureCookies       bool
}

func (h *UsersHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, "/")
		return
	}

	u, err := h.AuthService.Signup(r.Context(), service.SignupInput{
		FirstName:       r.PostFormValue("firstName"),
		LastName:        r.PostFormValue("lastName"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	})
	if err != nil {
		fail(w, r, err, "/")
		return
	}

	httpx.Succeed(w, r, http.StatusCreated, newUserView(u),
		"Account created. Check your email to verify your address.", "/")
}

func (h *UsersHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, "/")
		return
	}

	token, u, err := h.AuthService.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		fail(w, r, err, "/")
		return
	}

	sess, err := h.Codec.Verify(token)
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	httpx.SetAuthCookie(w, token, sess.ExpiresAt, h.SecureCookies)

	httpx.Succeed(w, r, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      newUserView(u),
	}, "Welcome back, "+u.Identity().DisplayName()+"!", "/")
}

// HandleLogout clears the auth cookie. Tokens are stateless, so a copied
// token stays valid until it expires.
func (h *UsersHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	httpx.ClearAuthCookie(w, h.SecureCookies)
	httpx.Succeed(w, r, http.StatusOK, map[string]bool{"loggedOut": true},
		"You have been logged out.", "/")
}

func (h *UsersHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		badForm(w, r, "/")
		return
	}

	if err := h.VerificationService.Resend(r.Context(), r.PostFormValue("email")); err != nil {
		log.Warn("resend verification failed", "err", err)
		fail(w, r, err, "/")
		return
	}

	httpx.Succeed(w, r, http.StatusAccepted, map[string]bool{"sent": true},
		"A new verification email has been sent.", "/")
}

func (h *UsersHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := httpx.SessionFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	u, err := h.AuthService.Profile(r.Context(), sess.Identity.UserID)
	if err != nil {
		fail(w, r, err, "/")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newUserView(u))
}
