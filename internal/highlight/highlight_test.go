// internal/highlight/highlight_test.go
package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlight_EmptyOriginal(t *testing.T) {
	out := Highlight("", "Brand new text.")
	assert.Equal(t, `<span class="modified-text">Brand new text.</span>`, out)
}

func TestHighlight_UnchangedText(t *testing.T) {
	text := "First sentence. Second sentence."
	out := Highlight(text, text)
	assert.NotContains(t, out, "modified-text")
	assert.Equal(t, text, out)
}

func TestHighlight_MarksOnlyChangedSentences(t *testing.T) {
	original := "I studied math. I like data."
	modified := "I studied math. I love statistics."

	out := Highlight(original, modified)

	assert.Contains(t, out, "I studied math.")
	assert.Contains(t, out, `<span class="modified-text"> I love statistics.</span>`)
	// 未修改的句子不包裹
	assert.Equal(t, 1, strings.Count(out, "modified-text"))
}

func TestHighlight_ChinesePunctuation(t *testing.T) {
	original := "第一句。第二句。"
	modified := "第一句。完全不同的第二句。"

	out := Highlight(original, modified)

	assert.Contains(t, out, `<span class="modified-text">完全不同的第二句。</span>`)
	assert.Equal(t, 1, strings.Count(out, "modified-text"))
}

func TestHighlight_NoTrailingPunctuation(t *testing.T) {
	original := "Some text here."
	modified := "Some text here. trailing fragment"

	out := Highlight(original, modified)
	assert.Contains(t, out, `<span class="modified-text"> trailing fragment</span>`)
}

func TestSplitSentences(t *testing.T) {
	units := splitSentences("One. Two! Three")
	assert.Equal(t, []string{"One.", " Two!", " Three"}, units)

	units = splitSentences("no punctuation at all")
	assert.Equal(t, []string{"no punctuation at all"}, units)
}
