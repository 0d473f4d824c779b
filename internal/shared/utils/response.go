package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/harborline/internal/shared/errors"
)

// RequestIDKey is the gin context key the request ID middleware writes.
const RequestIDKey = "request_id"

// APIResponse is the envelope of every JSON API reply
type APIResponse struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Message   string     `json:"message,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
}

type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ListResponse is a full collection tagged with the regime it was read from.
type ListResponse struct {
	Items  any    `json:"items"`
	Total  int    `json:"total"`
	Regime string `json:"regime"`
	Phase  string `json:"phase"`
}

func reply(c *gin.Context, statusCode int, resp APIResponse) {
	resp.RequestID = c.GetString(RequestIDKey)
	c.JSON(statusCode, resp)
}

// SuccessResponse sends a successful response with custom status code
func SuccessResponse(c *gin.Context, statusCode int, message string, data any) {
	reply(c, statusCode, APIResponse{Success: true, Data: data, Message: message})
}

// CreatedResponse sends 201 with the created resource, or its id.
func CreatedResponse(c *gin.Context, data any, message ...string) {
	msg := "created"
	if len(message) > 0 {
		msg = message[0]
	}
	reply(c, http.StatusCreated, APIResponse{Success: true, Data: data, Message: msg})
}

// ErrorResponse sends a bare error message with statusCode
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	reply(c, statusCode, APIResponse{
		Error: &ErrorInfo{Type: string(errors.ErrorTypeInternal), Message: message},
	})
}

// ErrorResponseWithError maps err onto its AppError status. Anything else is
// reported as a 500 without details.
func ErrorResponseWithError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		_ = c.Error(err)
		reply(c, http.StatusInternalServerError, APIResponse{
			Error: &ErrorInfo{
				Type:    string(errors.ErrorTypeInternal),
				Message: "Internal server error occurred",
			},
		})
		return
	}

	if appErr.Type == errors.ErrorTypeUnavailable {
		_ = c.Error(err)
	}
	reply(c, appErr.Code, APIResponse{
		Error: &ErrorInfo{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

// ListSuccessResponse sends a full collection
func ListSuccessResponse(c *gin.Context, items any, total int, regime, phase string) {
	reply(c, http.StatusOK, APIResponse{
		Success: true,
		Data: ListResponse{
			Items:  items,
			Total:  total,
			Regime: regime,
			Phase:  phase,
		},
	})
}

func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
