/*
Package response - unified API layer response handling.

Design rules:
1. HTTP status mapping lives here, never in the domain or application layers
2. Error responses expose stable codes, not internal details
3. Every response carries the request id for log correlation
4. Internal errors log the real cause but answer "internal server error"

Response format:

	success: { success: true, data: {...}, message: "...", code: 2xx, request_id: "..." }
	failure: { success: false, error: "ERROR_CODE", message: "...", details: {...}, code: 4xx/5xx, request_id: "..." }

Status conventions: 404 for every authoritative not-found, 400 for
validation and stock violations, and 503 - never 404 - when a dependent
service cannot be reached: an outage must not read as non-existence.
*/
package response

import (
	"net/http"
	"runtime"

	"bookcart/domain/shared"
	"bookcart/pkg/errors"
	"bookcart/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDKey context key for request id propagation
const RequestIDKey = "request_id"

// Response generic envelope
type Response struct {
	Success   bool                   `json:"success"`
	Data      interface{}            `json:"data,omitempty"`
	Error     string                 `json:"error,omitempty"` // error code, not details
	Details   map[string]interface{} `json:"details,omitempty"`
	Code      int                    `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
}

// httpStatusMap error code to HTTP status; API layer only
var httpStatusMap = map[errors.ErrorCode]int{
	errors.CodeInternal:   http.StatusInternalServerError,
	errors.CodeBadRequest: http.StatusBadRequest,
	errors.CodeNotFound:   http.StatusNotFound,
	errors.CodeConflict:   http.StatusConflict,
	errors.CodeValidation: http.StatusBadRequest,

	errors.CodeCustomerNotFound: http.StatusNotFound,
	errors.CodeBookNotFound:     http.StatusNotFound,
	errors.CodeCartItemNotFound: http.StatusNotFound,
	errors.CodeStockExceeded:    http.StatusBadRequest,
	errors.CodeConcurrentModify: http.StatusConflict,

	// Transient upstream failure is a 503, kept strictly apart from 404
	errors.CodeDependencyUnavailable: http.StatusServiceUnavailable,
}

func mapErrorCodeToHTTPStatus(code errors.ErrorCode) int {
	if status, ok := httpStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// captureStack fallback stack at the handling point, for errors that do
// not carry their own
func captureStack(skip int) []string {
	var pcs [16]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var stack []string
	for i := 0; i < 5; i++ {
		frame, more := frames.Next()
		if frame.Function != "" {
			stack = append(stack, frame.Function)
		}
		if !more {
			break
		}
	}
	return stack
}

// HandleError handles framework-level errors (parameter binding etc.)
func HandleError(c *gin.Context, err error, message string, code int) {
	requestID := getRequestID(c)

	logger.Error(message,
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("status", code),
		zap.Error(err))

	c.JSON(code, &Response{
		Success:   false,
		Error:     string(errors.CodeBadRequest),
		Message:   message,
		Code:      code,
		RequestID: requestID,
	})
}

// HandleAppError maps a domain/application error to its HTTP status,
// logs the full cause, and answers with the stable code only.
func HandleAppError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	appErr := errors.FromDomainError(err)
	httpStatus := mapErrorCodeToHTTPStatus(appErr.Code)
	stack := extractStack(err)

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", httpStatus),
		zap.Strings("stack", stack),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}

	if httpStatus >= http.StatusInternalServerError {
		logger.Error(appErr.Message, fields...)
	} else {
		logger.Warn(appErr.Message, fields...)
	}

	userMessage := appErr.Message
	if appErr.Code == errors.CodeInternal {
		userMessage = "internal server error"
	}

	c.JSON(httpStatus, &Response{
		Success:   false,
		Error:     string(appErr.Code),
		Details:   appErr.Details,
		Message:   userMessage,
		Code:      httpStatus,
		RequestID: requestID,
	})
}

// extractStack prefers the error's origin stack over the handling point
func extractStack(err error) []string {
	if stacker, ok := err.(shared.Stacker); ok {
		if stack := stacker.Stack(); len(stack) > 0 {
			return stack
		}
	}

	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		if inner := unwrapper.Unwrap(); inner != nil {
			if stacker, ok := inner.(shared.Stacker); ok {
				if stack := stacker.Stack(); len(stack) > 0 {
					return stack
				}
			}
		}
	}

	return captureStack(4)
}

// HandleSuccess 200 OK envelope
func HandleSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, &Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      http.StatusOK,
		RequestID: getRequestID(c),
	})
}

// HandleCreated 201 Created envelope
func HandleCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, &Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      http.StatusCreated,
		RequestID: getRequestID(c),
	})
}
