// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"

	// 生成相关错误
	ErrorGenerationFailed  = "GENERATION_FAILED"
	ErrorAnnotationMissing = "ANNOTATION_MISSING"
	ErrorEmptyRebuild      = "EMPTY_REBUILD"

	// LLM服务相关错误
	ErrorLLMServiceUnavailable = "LLM_SERVICE_UNAVAILABLE"
	ErrorLLMConfigInvalid      = "LLM_CONFIG_INVALID"
	ErrorAPIKeyMissing         = "API_KEY_MISSING"

	// 文件相关错误
	ErrorFileUploadFailed = "FILE_UPLOAD_FAILED"
	ErrorFileInvalid      = "FILE_INVALID"

	// 导出相关错误
	ErrorExportFailed    = "EXPORT_FAILED"
	ErrorExportDataEmpty = "EXPORT_DATA_EMPTY"
)
