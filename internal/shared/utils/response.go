package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/errors"
)

// RequestIDHeader is echoed into error bodies so clients can quote it.
const RequestIDHeader = "X-Request-ID"

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

type ErrorInfo struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ListResponse struct {
	Items      any   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

var statusErrorTypes = map[int]errors.ErrorType{
	http.StatusBadRequest:          errors.ErrorTypeBadRequest,
	http.StatusUnauthorized:        errors.ErrorTypeUnauthorized,
	http.StatusForbidden:           errors.ErrorTypeForbidden,
	http.StatusNotFound:            errors.ErrorTypeNotFound,
	http.StatusConflict:            errors.ErrorTypeConflict,
	http.StatusTooManyRequests:     "rate_limited",
	http.StatusServiceUnavailable:  errors.ErrorTypeProviderUnavailable,
	http.StatusInternalServerError: errors.ErrorTypeInternal,
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func CreatedResponse(c *gin.Context, data any, message ...string) {
	msg := "Resource created successfully"
	if len(message) > 0 {
		msg = message[0]
	}
	SuccessResponse(c, http.StatusCreated, msg, data)
}

// ErrorResponse writes an error envelope whose type follows the status code.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	errType, ok := statusErrorTypes[statusCode]
	if !ok {
		errType = "error"
	}
	writeError(c, statusCode, ErrorInfo{Type: string(errType), Message: message})
}

// ErrorResponseWithError maps AppErrors to their status. Anything else is a 500
// with a generic message; the cause is attached to the context for the access log.
func ErrorResponseWithError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, ErrorInfo{
			Type:    string(errors.ErrorTypeInternal),
			Message: "Internal server error occurred",
		})
		return
	}

	writeError(c, appErr.Code, ErrorInfo{
		Type:    string(appErr.Type),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

func writeError(c *gin.Context, statusCode int, info ErrorInfo) {
	info.RequestID = c.GetHeader(RequestIDHeader)
	c.JSON(statusCode, APIResponse{Success: false, Error: &info})
}

func ListSuccessResponse(c *gin.Context, items any, total int64, page, pageSize int) {
	SuccessResponse(c, http.StatusOK, "", ListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	})
}
