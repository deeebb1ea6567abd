package response

import (
	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Meta struct {
	Total int `json:"total"`
}

// Success responses
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithMeta(c *gin.Context, statusCode int, message string, data interface{}, meta *Meta) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Error responses
func Error(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Abort ghi error response và dừng chain, dùng trong middleware
func Abort(c *gin.Context, statusCode int, code, message string) {
	Error(c, statusCode, code, message, nil)
	c.Abort()
}

// Common error responses
func BadRequest(c *gin.Context, message string, details interface{}) {
	Error(c, 400, "BAD_REQUEST", message, details)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 404, "NOT_FOUND", message, nil)
}

func InternalServerError(c *gin.Context) {
	Error(c, 500, "INTERNAL_SERVER_ERROR", "Internal server error", nil)
}
