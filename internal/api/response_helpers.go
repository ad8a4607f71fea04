// internal/api/response_helpers.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/errors"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/models"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/utils"
)

// ResponseHelper 响应助手类
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success 成功响应
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}

	if len(message) > 0 {
		response.Message = message[0]
	}

	c.JSON(http.StatusOK, response)
}

// Error 错误响应
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	apiError := &APIError{
		Code:    errorCode,
		Message: message,
	}

	if len(details) > 0 {
		apiError.Details = details[0]
	}

	response := &APIResponse{
		Success:   false,
		Error:     apiError,
		Timestamp: time.Now(),
	}

	c.JSON(statusCode, response)
}

// BadRequest 400错误响应
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message, details...)
}

// NotFound 404错误响应
func (rh *ResponseHelper) NotFound(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusNotFound, ErrorNotFound, message, details...)
}

// InternalError 500错误响应
func (rh *ResponseHelper) InternalError(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message, details...)
}

// AppError 按业务错误类型映射HTTP状态码和错误代码
func (rh *ResponseHelper) AppError(c *gin.Context, err error) {
	utils.NewAPIMetrics().RecordError(apperrors.GetErrorType(err), c.FullPath())
	switch {
	case apperrors.IsValidationError(err):
		rh.Error(c, http.StatusBadRequest, ErrorBadRequest, err.Error())
	case apperrors.IsNotFoundError(err):
		rh.Error(c, http.StatusNotFound, ErrorNotFound, err.Error())
	case apperrors.IsAnnotationError(err):
		rh.Error(c, http.StatusBadRequest, ErrorAnnotationMissing, err.Error())
	case apperrors.IsEmptyRebuildError(err):
		rh.Error(c, http.StatusConflict, ErrorEmptyRebuild, err.Error())
	case apperrors.IsNotConfiguredError(err):
		rh.Error(c, http.StatusServiceUnavailable, ErrorLLMServiceUnavailable, err.Error())
	case apperrors.IsGenerationError(err):
		rh.Error(c, http.StatusBadGateway, ErrorGenerationFailed, err.Error())
	default:
		rh.InternalError(c, err.Error())
	}
}

// DownloadResponse 下载响应（强制下载）
func (rh *ResponseHelper) DownloadResponse(c *gin.Context, result *models.ExportResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Header("Content-Length", fmt.Sprintf("%d", result.FileSize))
	c.Data(http.StatusOK, result.MimeType, result.Content)
}
