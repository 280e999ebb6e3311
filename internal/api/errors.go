package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/advice"
	"github.com/luminher/luminher-api/internal/core"
)

// Callable error codes.
const (
	codeUnauthenticated  = "UNAUTHENTICATED"
	codePermissionDenied = "PERMISSION_DENIED"
	codeInvalidArgument  = "INVALID_ARGUMENT"
	codeNotFound         = "NOT_FOUND"
	codeAlreadyExists    = "ALREADY_EXISTS"
	codeInternal         = "INTERNAL"
)

// ErrorResponse is the body of a failed API-key endpoint call.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type callableError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// callableErrorResponse is the body of a failed callable invocation.
type callableErrorResponse struct {
	Error callableError `json:"error"`
}

// classify maps an error to its HTTP status, callable code and client-facing message.
// Both surfaces go through it so the same failure always looks the same.
func classify(err error) (int, string, string) {
	var upstream *core.UpstreamError
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized, codeUnauthenticated, err.Error()
	case errors.Is(err, core.ErrPermissionDenied):
		return http.StatusForbidden, codePermissionDenied, err.Error()
	case errors.Is(err, core.ErrInvalidArgument):
		return http.StatusBadRequest, codeInvalidArgument, err.Error()
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, codeNotFound, err.Error()
	case errors.Is(err, core.ErrAlreadyExists):
		return http.StatusConflict, codeAlreadyExists, err.Error()
	case errors.Is(err, advice.ErrNotConfigured):
		return http.StatusInternalServerError, codeInternal, "advice service is not configured"
	case errors.As(err, &upstream):
		status := upstream.Status
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		return status, codeInternal, upstream.Service + " request failed"
	default:
		return http.StatusInternalServerError, codeInternal, "internal error"
	}
}

func logFailure(logger *zap.Logger, c *gin.Context, status int, err error) {
	fields := []zap.Field{zap.String("path", c.Request.URL.Path), zap.Int("status", status), zap.Error(err)}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Info("Request rejected", fields...)
	}
}

// respondError writes the {ok:false,error} envelope.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, _, msg := classify(err)
	logFailure(logger, c, status, err)
	c.AbortWithStatusJSON(status, ErrorResponse{OK: false, Error: msg})
}

// respondCallableError writes the {"error":{status,message}} envelope.
func respondCallableError(c *gin.Context, logger *zap.Logger, err error) {
	status, code, msg := classify(err)
	logFailure(logger, c, status, err)
	c.AbortWithStatusJSON(status, callableErrorResponse{Error: callableError{Status: code, Message: msg}})
}
