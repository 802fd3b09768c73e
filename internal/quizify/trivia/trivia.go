// Package trivia fetches multiple choice questions from an Open Trivia
// Database compatible API.
package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public Open Trivia Database.
const DefaultBaseURL = "https://opentdb.com"

// ErrProviderStatus is returned when the provider answers with a non-200
// status or a response code other than success/no-results.
var ErrProviderStatus = errors.New("trivia: provider returned an error status")

// ErrResponseTooLarge is returned when the provider body exceeds
// MaxResponseBytes.
var ErrResponseTooLarge = errors.New("trivia: provider response too large")

// MaxResponseBytes caps how much of a provider response is read. Fifty
// questions fit in well under 64 KiB.
const MaxResponseBytes = 1 << 20

// Response codes documented by opentdb.com.
const (
	codeSuccess   = 0
	codeNoResults = 1
)

// Question is one multiple choice item with its answer key.
type Question struct {
	Question         string
	CorrectAnswer    string
	IncorrectAnswers []string
}

// Query selects a batch of questions.
type Query struct {
	Amount     int
	Category   string
	Difficulty string
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Client for baseURL (DefaultBaseURL when empty) with a
// request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

// FetchQuestions asks the provider for q.Amount multiple choice questions.
// A "no results" answer yields an empty slice and no error.
func (c *Client) FetchQuestions(ctx context.Context, q Query) ([]Question, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(q.Amount))
	params.Set("category", q.Category)
	params.Set("difficulty", q.Difficulty)
	params.Set("type", "multiple")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api.php?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("trivia: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trivia: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrProviderStatus, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("trivia: read response: %w", err)
	}
	if len(raw) > MaxResponseBytes {
		return nil, ErrResponseTooLarge
	}

	var body apiResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("trivia: decode response: %w", err)
	}

	switch body.ResponseCode {
	case codeSuccess:
	case codeNoResults:
		return []Question{}, nil
	default:
		return nil, fmt.Errorf("%w: response_code %d", ErrProviderStatus, body.ResponseCode)
	}

	out := make([]Question, 0, len(body.Results))
	for _, r := range body.Results {
		incorrect := make([]string, len(r.IncorrectAnswers))
		for i, a := range r.IncorrectAnswers {
			incorrect[i] = html.UnescapeString(a)
		}
		out = append(out, Question{
			Question:         html.UnescapeString(r.Question),
			CorrectAnswer:    html.UnescapeString(r.CorrectAnswer),
			IncorrectAnswers: incorrect,
		})
	}
	return out, nil
}
