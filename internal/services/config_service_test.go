// internal/services/config_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAPIKey(t *testing.T) {
	svc := NewConfigService()

	ok, reason := svc.ValidateAPIKey("AIzaSyA1234567890abcdefghijk")
	assert.True(t, ok)
	assert.Empty(t, reason)

	cases := []struct {
		name string
		key  string
	}{
		{"空密钥", ""},
		{"纯空白", "   "},
		{"长度不足", "short-key"},
		{"包含空格", "AIzaSyA1234567 890abcdefghijk"},
		{"包含换行", "AIzaSyA1234567890abc\ndefghijk"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := svc.ValidateAPIKey(tc.key)
			assert.False(t, ok)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestGetChangeHistory_Empty(t *testing.T) {
	svc := NewConfigService()
	assert.Empty(t, svc.GetChangeHistory(10))
}

func TestUpdateLLMConfig_EmptyProvider(t *testing.T) {
	svc := NewConfigService()
	err := svc.UpdateLLMConfig("", nil)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "提供商"))
}
