// internal/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypePredicates(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", NewValidationError("输入无效", nil), IsValidationError},
		{"not found", NewNotFoundError("段落不存在", nil), IsNotFoundError},
		{"extraction", NewExtractionError("读取失败", nil), IsExtractionError},
		{"generation", NewGenerationError("生成失败", nil), IsGenerationError},
		{"annotation", NewAnnotationError("缺少批注", nil), IsAnnotationError},
		{"empty rebuild", NewEmptyRebuildError("没有已确认段落"), IsEmptyRebuildError},
		{"not configured", NewNotConfiguredError("密钥未配置"), IsNotConfiguredError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.check(tc.err))
			assert.False(t, tc.check(stderrors.New("plain")))
		})
	}
}

func TestPredicates_MatchThroughWrapping(t *testing.T) {
	inner := NewAnnotationError("缺少批注", nil)
	wrapped := fmt.Errorf("处理段落: %w", inner)

	assert.True(t, IsAnnotationError(wrapped))
	assert.False(t, IsValidationError(wrapped))
}

func TestAppError_MessageAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewGenerationError("调用模型失败", cause)

	assert.Equal(t, "调用模型失败: connection refused", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.Equal(t, "GENERATION_ERROR", err.Code)
}

func TestAppError_NoCause(t *testing.T) {
	err := NewEmptyRebuildError("没有段落数据")
	assert.Equal(t, "没有段落数据", err.Error())
	assert.Nil(t, stderrors.Unwrap(err))
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, "validation_error", GetErrorType(NewValidationError("x", nil)))
	assert.Equal(t, "unknown", GetErrorType(stderrors.New("plain")))
}

func TestWrapError(t *testing.T) {
	require.Nil(t, WrapError(nil, "忽略", ErrorTypeError))

	plain := stderrors.New("io error")
	wrapped := WrapError(plain, "保存失败", ErrorTypeError)
	var appErr *AppError
	require.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, ErrorTypeError, appErr.Type)

	// 已是AppError时保留原类型
	rewrapped := WrapError(NewNotFoundError("没有", nil), "外层消息", ErrorTypeError)
	assert.True(t, IsNotFoundError(rewrapped))
}
