// internal/services/llm_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/errors"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/llm"
)

// mockProvider 测试用的固定响应提供者
// streamErr模拟传输中途失败，streamTruncated模拟通道未发终止块就关闭
type mockProvider struct {
	completeText    string
	completeErr     error
	streamChunks    []string
	streamErr       error
	streamTruncated bool

	lastRequest llm.CompletionRequest
	callCount   int
}

func (m *mockProvider) Initialize(config map[string]string) error { return nil }
func (m *mockProvider) GetName() string                           { return "mock" }
func (m *mockProvider) GetSupportedModels() []string              { return []string{"mock-model"} }

func (m *mockProvider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.lastRequest = req
	m.callCount++
	if m.completeErr != nil {
		return nil, m.completeErr
	}
	return &llm.CompletionResponse{
		Text:         m.completeText,
		ModelName:    "mock-model",
		ProviderName: "mock",
	}, nil
}

func (m *mockProvider) StreamCompletion(ctx context.Context, req llm.CompletionRequest) (<-chan llm.StreamResponse, error) {
	m.lastRequest = req
	m.callCount++
	ch := make(chan llm.StreamResponse, len(m.streamChunks)+1)
	go func() {
		defer close(ch)
		for _, chunk := range m.streamChunks {
			ch <- llm.StreamResponse{Text: chunk}
		}
		if m.streamErr != nil {
			ch <- llm.StreamResponse{Done: true, Err: m.streamErr}
			return
		}
		if m.streamTruncated {
			return
		}
		ch <- llm.StreamResponse{Done: true}
	}()
	return ch, nil
}

func newMockLLMService(p *mockProvider) *LLMService {
	return NewLLMServiceWithProvider(p, "mock")
}

func TestComplete_KeepsBoldMarkers(t *testing.T) {
	p := &mockProvider{completeText: "Refined text with **bold part** kept."}
	svc := newMockLLMService(p)

	out, err := svc.Complete(context.Background(), llm.CompletionRequest{Prompt: "p"})
	require.NoError(t, err)

	// 非流式结果原样返回，加粗标记留给预览和导出
	assert.Equal(t, "Refined text with **bold part** kept.", out)
}

func TestComplete_NotReady(t *testing.T) {
	svc := NewEmptyLLMService()

	_, err := svc.Complete(context.Background(), llm.CompletionRequest{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotConfiguredError(err))
}

func TestStreamGenerate_CleansAndFilters(t *testing.T) {
	p := &mockProvider{streamChunks: []string{
		"好的，作为您的文书顾问，我来帮您修改。\n\n",
		"===SECTION===\n[[DRAFT]]\nText with **bold** marks.",
	}}
	svc := newMockLLMService(p)

	var flushes []string
	out, err := svc.StreamGenerate(context.Background(), llm.CompletionRequest{Prompt: "p"}, func(acc string) {
		flushes = append(flushes, acc)
	})
	require.NoError(t, err)

	// 最终文本去星号、去开场白
	assert.NotContains(t, out, "*")
	assert.NotContains(t, out, "好的，作为")
	assert.Contains(t, out, "===SECTION===")

	// 至少有一次中间刷新和一次最终刷新，且最后一次即最终文本
	require.NotEmpty(t, flushes)
	assert.Equal(t, out, flushes[len(flushes)-1])
}

func TestStreamGenerate_NilFlushCallback(t *testing.T) {
	p := &mockProvider{streamChunks: []string{"plain text"}}
	svc := newMockLLMService(p)

	out, err := svc.StreamGenerate(context.Background(), llm.CompletionRequest{Prompt: "p"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}

func TestStreamGenerate_MidStreamFailure(t *testing.T) {
	p := &mockProvider{
		streamChunks: []string{"first half of the docum"},
		streamErr:    errors.New("connection reset"),
	}
	svc := newMockLLMService(p)

	out, err := svc.StreamGenerate(context.Background(), llm.CompletionRequest{Prompt: "p"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationError(err))
	// 半截文本不能作为结果返回
	assert.Empty(t, out)
}

func TestStreamGenerate_TruncatedStream(t *testing.T) {
	p := &mockProvider{
		streamChunks:    []string{"first half of the docum"},
		streamTruncated: true,
	}
	svc := newMockLLMService(p)

	out, err := svc.StreamGenerate(context.Background(), llm.CompletionRequest{Prompt: "p"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationError(err))
	assert.Empty(t, out)
}

func TestCleanAsterisks(t *testing.T) {
	assert.Equal(t, "bold and single", CleanAsterisks("**bold** and *single*"))
	assert.Equal(t, "", CleanAsterisks(""))
}

func TestRemoveMarkdownBold(t *testing.T) {
	// 只去双星号，单星号保留
	assert.Equal(t, "bold and *single*", RemoveMarkdownBold("**bold** and *single*"))
}

func TestFilterAIGreeting(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"作为顾问开头", "作为一名专业的留学文书顾问，下面开始。\n正文内容", "正文内容"},
		{"我将分析开头", "我将为您分析这篇文书。\n正文内容", "正文内容"},
		{"无开场白", "正文内容", "正文内容"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterAIGreeting(tc.input))
		})
	}
}
