package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/donovanp007/medscribe/internal/application/scribe"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/pkg/errors"
)

// SessionHandler exposes the dictation session lifecycle over HTTP.
type SessionHandler struct {
	service *scribe.Service
	logger  logging.Logger
}

// NewSessionHandler builds the handler.
func NewSessionHandler(service *scribe.Service, log logging.Logger) *SessionHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SessionHandler{service: service, logger: log}
}

// CreateSessionRequest is the POST /sessions body.
type CreateSessionRequest struct {
	TemplateID string `json:"template_id"`
}

// CreateSessionResponse is the POST /sessions reply.
type CreateSessionResponse struct {
	SessionID  string `json:"session_id"`
	TemplateID string `json:"template_id"`
}

// AddTextRequest is the POST /sessions/:id/text body.
type AddTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create opens a new dictation session bound to a template.
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("invalid request body"))
		return
	}
	if req.TemplateID == "" {
		req.TemplateID = scribe.DefaultTemplateID
	}

	id, err := h.service.CreateSession(c.Request.Context(), req.TemplateID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("session created",
		logging.String("session_id", id),
		logging.String("template_id", req.TemplateID))
	c.JSON(http.StatusCreated, CreateSessionResponse{SessionID: id, TemplateID: req.TemplateID})
}

// AddText appends dictated text and returns the updated analysis.
func (h *SessionHandler) AddText(c *gin.Context) {
	var req AddTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("text is required"))
		return
	}

	result, err := h.service.AddText(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Snapshot returns the current analysis state without mutating it.
func (h *SessionHandler) Snapshot(c *gin.Context) {
	result, err := h.service.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Flush forces processing of any buffered unterminated tail.
func (h *SessionHandler) Flush(c *gin.Context) {
	result, err := h.service.Flush(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reset clears accumulated content while keeping the template binding.
func (h *SessionHandler) Reset(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Close flushes, returns the final analysis, and removes the session.
func (h *SessionHandler) Close(c *gin.Context) {
	result, err := h.service.CloseSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
