package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/donovanp007/medscribe/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error to its HTTP status.  Internal
// errors are masked; the original message is only exposed for client-class
// codes.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: string(code), Message: message})
}
