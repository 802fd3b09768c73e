package httpx

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
)

// ErrorResponse is the JSON body returned to API callers on failure.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, code int, errCode, desc string) {
	WriteJSON(w, code, ErrorResponse{Error: errCode, ErrorDescription: desc})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Responses carrying quiz payloads or tokens must never be cached.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WantsJSON reports whether the caller prefers JSON over an HTML redirect.
func WantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == "application/json" {
			return true
		}
	}
	return false
}

// Fail reports an error to the caller: a JSON error body for API callers, or
// a 303 redirect to redirectTo carrying an error flash for browsers.
func Fail(w http.ResponseWriter, r *http.Request, code int, errCode, msg, redirectTo string) {
	if WantsJSON(r) {
		WriteError(w, code, errCode, msg)
		return
	}
	SetFlash(w, r, "error", msg)
	http.Redirect(w, r, redirectTo, http.StatusSeeOther)
}

// Succeed reports success: body as JSON with code for API callers, or a 303
// redirect to redirectTo with a success flash for browsers.
func Succeed(w http.ResponseWriter, r *http.Request, code int, body any, msg, redirectTo string) {
	if WantsJSON(r) {
		WriteJSON(w, code, body)
		return
	}
	if msg != "" {
		SetFlash(w, r, "success", msg)
	}
	http.Redirect(w, r, redirectTo, http.StatusSeeOther)
}
