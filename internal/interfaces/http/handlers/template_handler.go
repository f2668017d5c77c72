package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/donovanp007/medscribe/internal/application/scribe"
	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// TemplateHandler exposes the template registry and suggestion scoring.
type TemplateHandler struct {
	service *scribe.Service
}

// NewTemplateHandler builds the handler.
func NewTemplateHandler(service *scribe.Service) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// SuggestRequest is the POST /templates/suggest body.
type SuggestRequest struct {
	Text string `json:"text" binding:"required"`
}

// SuggestResponse wraps the suggestion; Suggestion is null when no template
// clears the confidence floor.
type SuggestResponse struct {
	Suggestion *clinical.TemplateSuggestion `json:"suggestion"`
}

// List returns every registered template.
func (h *TemplateHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.service.Templates()})
}

// Suggest scores the registered templates against free text.
func (h *TemplateHandler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("text is required"))
		return
	}
	suggestion := h.service.SuggestTemplate(c.Request.Context(), req.Text)
	c.JSON(http.StatusOK, SuggestResponse{Suggestion: suggestion})
}
