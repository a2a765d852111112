// Package api holds the response helpers shared by every controller.
// Errors always serialize as {"error": code, "message": reason} so the
// dashboard can switch on the code without parsing prose.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes surfaced to callers.
const (
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeUpstreamError  = "upstream_error"
	CodeInternalError  = "internal_error"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func OK(c *gin.Context, obj any) {
	c.JSON(http.StatusOK, obj)
}

func Created(c *gin.Context, obj any) {
	c.JSON(http.StatusCreated, obj)
}

func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: CodeInvalidRequest, Message: message})
}

func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: CodeUnauthorized, Message: message})
}

func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Error: CodeForbidden, Message: message})
}

func NotFound(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: CodeNotFound, Message: message})
}

func Conflict(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusConflict, errorBody{Error: CodeConflict, Message: message})
}

// UpstreamError reports a failed fetch or parse of an external source,
// distinct from our own internal errors.
func UpstreamError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadGateway, errorBody{Error: CodeUpstreamError, Message: message})
}

// Internal never leaks details to the caller; the cause goes to the log.
func Internal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: CodeInternalError, Message: "internal error"})
}
