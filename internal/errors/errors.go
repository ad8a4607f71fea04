// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType 定义错误类型
type ErrorType string

const (
	// 通用错误类型
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeError      ErrorType = "processing_error"
	ErrorTypeTimeout    ErrorType = "timeout"

	// 业务错误类型
	ErrorTypeExtraction    ErrorType = "extraction_error"    // 文件读取/解析失败
	ErrorTypeGeneration    ErrorType = "generation_error"    // 模型调用失败
	ErrorTypeAnnotation    ErrorType = "annotation_error"    // 标注处理结果缺少标记
	ErrorTypeEmptyRebuild  ErrorType = "empty_rebuild"       // 所有段落均无内容可拼装
	ErrorTypeNotConfigured ErrorType = "provider_not_ready"  // 模型服务未配置
)

// AppError 应用程序错误结构
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string // 用户友好的错误代码
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 实现错误链接
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建新的 AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewValidationError 创建验证错误
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewProcessingError 创建处理错误
func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

// NewExtractionError 创建文件解析错误
func NewExtractionError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeExtraction, message, originalError)
}

// NewGenerationError 创建模型调用错误
func NewGenerationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeGeneration, message, originalError)
}

// NewAnnotationError 创建标注缺失错误
func NewAnnotationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeAnnotation, message, originalError)
}

// NewEmptyRebuildError 创建空拼装错误
func NewEmptyRebuildError(message string) *AppError {
	return NewAppError(ErrorTypeEmptyRebuild, message, nil)
}

// NewNotConfiguredError 创建服务未配置错误
func NewNotConfiguredError(message string) *AppError {
	return NewAppError(ErrorTypeNotConfigured, message, nil)
}

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsNotFoundError 检查是否为未找到错误
func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsExtractionError 检查是否为文件解析错误
func IsExtractionError(err error) bool {
	return hasType(err, ErrorTypeExtraction)
}

// IsGenerationError 检查是否为模型调用错误
func IsGenerationError(err error) bool {
	return hasType(err, ErrorTypeGeneration)
}

// IsAnnotationError 检查是否为标注缺失错误
func IsAnnotationError(err error) bool {
	return hasType(err, ErrorTypeAnnotation)
}

// IsEmptyRebuildError 检查是否为空拼装错误
func IsEmptyRebuildError(err error) bool {
	return hasType(err, ErrorTypeEmptyRebuild)
}

// IsNotConfiguredError 检查是否为服务未配置错误
func IsNotConfiguredError(err error) bool {
	return hasType(err, ErrorTypeNotConfigured)
}

// GetErrorType 返回错误的类型名，非AppError时返回unknown
func GetErrorType(err error) string {
	var appError *AppError
	if errors.As(err, &appError) {
		return string(appError.Type)
	}
	return "unknown"
}

func hasType(err error, errType ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == errType
	}
	return false
}

// generateErrorCode 根据错误类型生成错误代码
func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeExtraction:
		return "EXTRACTION_ERROR"
	case ErrorTypeGeneration:
		return "GENERATION_ERROR"
	case ErrorTypeAnnotation:
		return "ANNOTATION_ERROR"
	case ErrorTypeEmptyRebuild:
		return "EMPTY_REBUILD"
	case ErrorTypeNotConfigured:
		return "PROVIDER_NOT_READY"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError 包装现有错误
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		// 如果已经是 AppError，只更新消息
		return &AppError{
			Type:    appError.Type,
			Message: message,
			Err:     appError,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
