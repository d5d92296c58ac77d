package http

import "github.com/gin-gonic/gin"

// Envelope es la respuesta uniforme de toda la API.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: true, Message: message})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{Success: false, Error: code, Message: message})
}

const (
	errValidation     = "validation_error"
	errUnauthorized   = "unauthorized"
	errForbidden      = "forbidden"
	errNotFound       = "not_found"
	errConflict       = "conflict"
	errDeliveryFailed = "delivery_failed"
	errRateLimited    = "rate_limited"
	errInternal       = "internal_error"
)
