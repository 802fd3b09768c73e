package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/service"
	"github.com/aussiebroadwan/quizify/pkg/httpx"
)

// StartResponse carries the re-issued token and the player view of the quiz.
// Browsers receive the token as a cookie as well.
type StartResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Quiz      service.QuizView `json:"quiz"`
}

type SubmitResponse struct {
	QuizID string `json:"quizId"`
	service.GradeResult
	Credited    int       `json:"credited"`
	CompletedAt time.Time `json:"completedAt"`
}

type HistoryRecordView struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quizId"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

type HistoryResponse struct {
	Records     []HistoryRecordView `json:"records"`
	CurrentPage int                 `json:"currentPage"`
	TotalPages  int                 `json:"totalPages"`
	TotalCount  int                 `json:"totalCount"`
}

type QuizHandler struct {
	QuizService    *service.QuizService
	ScoringService *service.ScoringService
	HistoryService *service.HistoryService
	SecureCookies  bool
}

// HandleStart fetches questions and swaps the caller's token for one that
// carries the quiz. On failure the existing cookie is left alone.
func (h *QuizHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, "/")
		return
	}

	started, err := h.QuizService.StartQuiz(r.Context(),
		httpx.TokenFromContext(r.Context()),
		r.PostFormValue("category"),
		r.PostFormValue("difficulty"),
	)
	if err != nil {
		fail(w, r, err, "/")
		return
	}

	httpx.SetAuthCookie(w, started.Token, started.ExpiresAt, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, StartResponse{
		Token:     started.Token,
		ExpiresAt: started.ExpiresAt,
		Quiz:      started.View,
	})
}

// HandleActive redisplays the quiz carried by the caller's token.
func (h *QuizHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	view, err := h.QuizService.ActiveQuiz(httpx.TokenFromContext(r.Context()))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, "/")
		return
	}

	sub, err := h.ScoringService.Submit(r.Context(), httpx.TokenFromContext(r.Context()), parseAnswers(r))
	if err != nil {
		fail(w, r, err, "/")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, SubmitResponse{
		QuizID:      sub.QuizID,
		GradeResult: sub.Grade,
		Credited:    sub.Credited,
		CompletedAt: sub.Record.CompletedAt,
	})
}

// parseAnswers collects "question-<i>" form fields by index. Other fields
// and malformed indexes are ignored.
func parseAnswers(r *http.Request) map[int]string {
	answers := make(map[int]string)
	for key, values := range r.PostForm {
		suffix, ok := strings.CutPrefix(key, "question-")
		if !ok || len(values) == 0 {
			continue
		}
		i, err := strconv.Atoi(suffix)
		if err != nil || i < 0 {
			continue
		}
		answers[i] = values[0]
	}
	return answers
}

func (h *QuizHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := httpx.SessionFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	p, err := h.HistoryService.Page(r.Context(), sess.Identity.UserID, page, service.DefaultPageSize)
	if err != nil {
		fail(w, r, err, "/")
		return
	}

	resp := HistoryResponse{
		Records:     make([]HistoryRecordView, len(p.Records)),
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		TotalCount:  p.TotalCount,
	}
	for i, rec := range p.Records {
		resp.Records[i] = HistoryRecordView{
			ID:          rec.ID,
			QuizID:      rec.QuizID,
			Score:       rec.Score,
			CompletedAt: rec.CompletedAt,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
