package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careconnect-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

var statusByCode = map[errors.ErrorCode]int{
	errors.ErrNotFound:            http.StatusNotFound,
	errors.ErrBadRequest:          http.StatusBadRequest,
	errors.ErrUnauthorized:        http.StatusUnauthorized,
	errors.ErrForbidden:           http.StatusForbidden,
	errors.ErrInternal:            http.StatusInternalServerError,
	errors.ErrDuplicateShare:      http.StatusConflict,
	errors.ErrAlreadyClaimed:      http.StatusConflict,
	errors.ErrExpired:             http.StatusGone,
	errors.ErrEmailMismatch:       http.StatusForbidden,
	errors.ErrPartialClaimFailure: http.StatusInternalServerError,
	errors.ErrUpstreamUnavailable: http.StatusServiceUnavailable,
	errors.ErrConflict:            http.StatusConflict,
}

// StatusFor returns the HTTP status an error code is rendered with.
func StatusFor(code errors.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError renders err using its AppError code. Plain errors are
// reported as internal and their text is not exposed.
func RespondWithError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status := StatusFor(code)

	message := "internal server error"
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Response{
		Status:  "error",
		Message: message,
		Code:    code.String(),
	})
}

// RespondWithErrorData is for errors that carry a payload, like a conflict list.
func RespondWithErrorData(c *gin.Context, status int, code, message string, data interface{}) {
	c.AbortWithStatusJSON(status, Response{
		Status:  "error",
		Message: message,
		Code:    code,
		Data:    data,
	})
}

// BadRequest renders a binding or parsing failure.
func BadRequest(c *gin.Context, message string) {
	RespondWithError(c, errors.InvalidInput(message))
}
