package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// SessionsClient operates on dictation sessions.
type SessionsClient struct {
	client *Client
}

// Session identifies a created dictation session.
type Session struct {
	SessionID  string `json:"session_id"`
	TemplateID string `json:"template_id"`
}

type createSessionRequest struct {
	TemplateID string `json:"template_id,omitempty"`
}

type addTextRequest struct {
	Text string `json:"text"`
}

// Create opens a new session.  An empty templateID selects the server
// default template.
func (s *SessionsClient) Create(ctx context.Context, templateID string) (*Session, error) {
	var session Session
	err := s.client.post(ctx, "/api/v1/sessions", createSessionRequest{TemplateID: templateID}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// AddText appends dictated text to the session and returns the updated
// analysis snapshot.
func (s *SessionsClient) AddText(ctx context.Context, sessionID, text string) (*clinical.StreamingAnalysisResult, error) {
	var result clinical.StreamingAnalysisResult
	err := s.client.post(ctx, s.path(sessionID, "text"), addTextRequest{Text: text}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Snapshot returns the current analysis state without mutating it.
func (s *SessionsClient) Snapshot(ctx context.Context, sessionID string) (*clinical.StreamingAnalysisResult, error) {
	var result clinical.StreamingAnalysisResult
	err := s.client.get(ctx, s.path(sessionID, "snapshot"), &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Flush forces processing of any buffered unterminated tail.
func (s *SessionsClient) Flush(ctx context.Context, sessionID string) (*clinical.StreamingAnalysisResult, error) {
	var result clinical.StreamingAnalysisResult
	err := s.client.post(ctx, s.path(sessionID, "flush"), nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Reset clears accumulated content while keeping the template binding.
func (s *SessionsClient) Reset(ctx context.Context, sessionID string) error {
	return s.client.post(ctx, s.path(sessionID, "reset"), nil, nil)
}

// Close flushes the session, removes it, and returns the final analysis.
func (s *SessionsClient) Close(ctx context.Context, sessionID string) (*clinical.StreamingAnalysisResult, error) {
	var result clinical.StreamingAnalysisResult
	err := s.client.do(ctx, http.MethodDelete,
		fmt.Sprintf("/api/v1/sessions/%s", url.PathEscape(sessionID)), nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *SessionsClient) path(sessionID, op string) string {
	return fmt.Sprintf("/api/v1/sessions/%s/%s", url.PathEscape(sessionID), op)
}
