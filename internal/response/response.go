package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/pkg/logging"
)

// Response represents a standard API response
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    apperrors.Code    `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
}

// Success returns a success response
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Message: "success",
		Data:    data,
	}
}

// Error returns an error response
func Error(code apperrors.Code, message string) Response {
	return Response{
		Success: false,
		Message: message,
		Code:    code,
	}
}

// JSON sends a JSON response
func JSON(c *gin.Context, statusCode int, response Response) {
	c.JSON(statusCode, response)
}

// SuccessJSON sends a success JSON response
func SuccessJSON(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, Success(data))
}

// CreatedJSON sends a 201 with the created resource
func CreatedJSON(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, Success(data))
}

// ErrorJSON sends an error JSON response
func ErrorJSON(c *gin.Context, statusCode int, code apperrors.Code, message string) {
	JSON(c, statusCode, Error(code, message))
}

// FromError maps err onto its status and envelope. Internal errors are
// logged and reported without detail.
func FromError(c *gin.Context, err error) {
	code, status := apperrors.Classify(err)

	resp := Error(code, apperrors.PublicMessage(err))

	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		resp.Message = "validation failed"
		resp.Fields = vErr.Fields
	}

	if status >= http.StatusInternalServerError {
		logging.Errorf("Request failed - method: %s, path: %s, error: %v", c.Request.Method, c.FullPath(), err)
	}

	c.AbortWithStatusJSON(status, resp)
}
