// Package assist is the HTTP client for the external AI classification
// service.  The service receives a sentence plus the candidate section ids
// of the bound template and returns its pick with a confidence; callers fall
// back to local keyword scoring whenever the service fails.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/donovanp007/medscribe/internal/analysis/score"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/pkg/errors"
)

var _ score.Classifier = (*Client)(nil)

// DefaultTimeout bounds a single classification round trip.
const DefaultTimeout = 5 * time.Second

// classifyPath is the service endpoint for sentence classification.
const classifyPath = "/v1/classify"

// Client talks to the assist service.  It implements score.Classifier.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client logger.
func WithLogger(log logging.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithAPIKey sets the bearer token sent on each request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient builds an assist client against the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidParam("assist base URL must not be empty")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type classifyRequest struct {
	Sentence   string   `json:"sentence"`
	Candidates []string `json:"candidates"`
}

type classifyResponse struct {
	SectionID  string  `json:"section_id"`
	Confidence float64 `json:"confidence"`
}

// Classify asks the service to assign the sentence to one of the candidate
// sections.  An empty section id in the response means the service declined
// to assign.
func (c *Client) Classify(ctx context.Context, sentence string, candidateSectionIDs []string) (string, float64, error) {
	body, err := json.Marshal(classifyRequest{Sentence: sentence, Candidates: candidateSectionIDs})
	if err != nil {
		return "", 0, errors.Wrap(err, errors.ErrCodeSerialization, "marshal classify request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+classifyPath, bytes.NewReader(body))
	if err != nil {
		return "", 0, errors.Wrap(err, errors.ErrCodeAssistUnavailable, "build classify request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, errors.Wrap(err, errors.ErrCodeAssistUnavailable, "assist service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", 0, errors.New(errors.ErrCodeAssistInferenceFailed,
			fmt.Sprintf("assist service returned status %d", resp.StatusCode))
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, errors.Wrap(err, errors.ErrCodeAssistResponseInvalid, "decode classify response")
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return "", 0, errors.New(errors.ErrCodeAssistResponseInvalid,
			fmt.Sprintf("confidence %v outside [0,1]", out.Confidence))
	}
	if out.SectionID != "" && !containsString(candidateSectionIDs, out.SectionID) {
		return "", 0, errors.New(errors.ErrCodeAssistResponseInvalid,
			"section id not among candidates").WithDetail("section=" + out.SectionID)
	}
	c.log.Debug("assist classification",
		logging.String("section_id", out.SectionID),
		logging.Float64("confidence", out.Confidence))
	return out.SectionID, out.Confidence, nil
}

// Healthy probes the service health endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeAssistUnavailable, "build health request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeAssistUnavailable, "assist service unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New(errors.ErrCodeAssistUnavailable,
			fmt.Sprintf("assist health returned status %d", resp.StatusCode))
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
