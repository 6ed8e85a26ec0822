// Package httpapi exposes the QA and matching services over HTTP with gin.
// All routes live under /api and share one matching session per server.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docmatch/internal/core/domain"
	"github.com/custodia-labs/docmatch/internal/logger"
)

// ErrMissingQAService is returned when the QA service is not provided.
var ErrMissingQAService = errors.New("httpapi: QA service is required")

// ErrMissingMatchingService is returned when the matching service is not provided.
var ErrMissingMatchingService = errors.New("httpapi: matching service is required")

// statusFor maps an error kind to the HTTP status returned to clients.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInputValidation:
		return http.StatusBadRequest
	case domain.KindIndexNotFound:
		return http.StatusNotFound
	case domain.KindProvider:
		return http.StatusBadGateway
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the payload of every failed request.
type errorBody struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

// abortWithError writes the structured error payload and stops the chain.
func abortWithError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, errorBody{
		Error: errorDetail{Kind: kind, Message: err.Error()},
	})
}

func badRequest(c *gin.Context, op, message string) {
	abortWithError(c, domain.InputValidationError(op, message))
}
