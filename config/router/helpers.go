package router

import (
	"maps"
	"net/http"
	"strconv"

	"github.com/akeren/trustlink-waitlist/internal/log"
	apperrors "github.com/akeren/trustlink-waitlist/pkg/errors"
	"github.com/gin-gonic/gin"
)

func GetLogger(ctx *RequestContext) *log.Logger {
	if l, ok := ctx.Request.Context().Value(log.LoggerKeyForContext).(*log.Logger); ok && l != nil {
		return l
	}

	return log.NewLoggerWithJSONOutput().WithCorrelationID(ctx.Request.Context())
}

func OKResult(body any) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusOK,
		Body:       body,
	}
}

// SuccessResult wraps data in the {success, data} envelope.
func SuccessResult(data any) *ServiceResult {
	return OKResult(gin.H{
		"success": true,
		"data":    data,
	})
}

func CreatedResult(data any, message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusCreated,
		Body: gin.H{
			"success": true,
			"message": message,
			"data":    data,
		},
	}
}

func FileDownloadResult(filename, contentType string, content []byte) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusOK,
		File: &FileResult{
			Filename:    filename,
			ContentType: contentType,
			Content:     content,
		},
	}
}

// ErrorResult renders {error: message} plus any extra fields.
func ErrorResult(statusCode int, message string, extra map[string]any) *ServiceResult {
	body := gin.H{"error": message}
	maps.Copy(body, extra)

	return &ServiceResult{
		StatusCode: statusCode,
		Body:       body,
	}
}

func BadRequestResult(message string, extra map[string]any) *ServiceResult {
	return ErrorResult(http.StatusBadRequest, message, extra)
}

func UnauthorizedResult(message string) *ServiceResult {
	return ErrorResult(http.StatusUnauthorized, message, nil)
}

func NotFoundResult(message string) *ServiceResult {
	return ErrorResult(http.StatusNotFound, message, nil)
}

func InternalServerErrorResult(message string) *ServiceResult {
	return ErrorResult(http.StatusInternalServerError, message, nil)
}

// ResultFromError maps an AppError to its status and client-safe body. Storage
// and unknown failures render fallback instead of the internal message.
func ResultFromError(err error, fallback string) *ServiceResult {
	return ErrorResult(
		apperrors.HTTPStatusCode(err),
		apperrors.GetHumanReadableMessage(err, fallback),
		apperrors.GetDetails(err),
	)
}

func ParseIDParam(ctx *RequestContext, paramName string) (uint, *ServiceResult) {
	logger := GetLogger(ctx)

	idParam := ctx.Param(paramName)
	id, err := strconv.ParseUint(idParam, 10, strconv.IntSize)

	if err != nil || id == 0 {
		logger.Warn("Invalid ID parameter", "param", paramName, "value", idParam)
		return 0, BadRequestResult("Invalid ID parameter", nil)
	}

	return uint(id), nil
}
