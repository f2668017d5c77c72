package client

import (
	"context"

	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// TemplatesClient operates on clinical templates.
type TemplatesClient struct {
	client *Client
}

// Template is the wire form of a clinical template definition.
type Template struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	TriggerKeywords []string          `json:"trigger_keywords,omitempty"`
	Sections        []TemplateSection `json:"sections"`
}

// TemplateSection is one section of a template schema.
type TemplateSection struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Keywords []string `json:"keywords"`
}

type listTemplatesResponse struct {
	Templates []Template `json:"templates"`
}

type suggestRequest struct {
	Text string `json:"text"`
}

type suggestResponse struct {
	Suggestion *clinical.TemplateSuggestion `json:"suggestion"`
}

// List returns all registered templates.
func (t *TemplatesClient) List(ctx context.Context) ([]Template, error) {
	var resp listTemplatesResponse
	if err := t.client.get(ctx, "/api/v1/templates", &resp); err != nil {
		return nil, err
	}
	return resp.Templates, nil
}

// Suggest asks the server for the best matching template.  A nil suggestion
// means no template cleared the confidence floor.
func (t *TemplatesClient) Suggest(ctx context.Context, text string) (*clinical.TemplateSuggestion, error) {
	var resp suggestResponse
	if err := t.client.post(ctx, "/api/v1/templates/suggest", suggestRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestion, nil
}
