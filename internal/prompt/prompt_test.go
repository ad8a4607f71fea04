// internal/prompt/prompt_test.go
package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/models"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	p := BuildAnalysisPrompt("UCL", "Data Science", "my old ps", "course list", false, "")

	assert.Contains(t, p, "UCL")
	assert.Contains(t, p, "Data Science")
	assert.Contains(t, p, "my old ps")
	assert.Contains(t, p, "course list")
	// 输出格式契约必须出现在提示词里
	assert.Contains(t, p, "===SECTION===")
	assert.Contains(t, p, "[[LOGIC]]")
	assert.Contains(t, p, "[[DRAFT]]")
	// 无截图时不出现截图指令
	assert.NotContains(t, p, "截图")
	assert.NotContains(t, p, "用户特别指令")
}

func TestBuildAnalysisPrompt_WithImagesAndStrategy(t *testing.T) {
	p := BuildAnalysisPrompt("UCL", "Data Science", "old", "courses", true, "多强调量化背景")

	assert.Contains(t, p, "截图")
	assert.Contains(t, p, "用户特别指令")
	assert.Contains(t, p, "多强调量化背景")
}

func TestBuildRefinePrompt_LanguageRule(t *testing.T) {
	zh := BuildRefinePrompt("这段话【改得更自信】", true)
	assert.Contains(t, zh, "CHINESE")
	assert.Contains(t, zh, "这段话【改得更自信】")

	en := BuildRefinePrompt("Some text [make it formal]", false)
	assert.Contains(t, en, "ENGLISH")
	assert.NotContains(t, en, "MUST be in CHINESE")
}

func TestBuildTranslatePrompt_SpellingConvention(t *testing.T) {
	us := BuildTranslatePrompt("draft", models.StyleUS)
	assert.Contains(t, us, "American Spelling")

	uk := BuildTranslatePrompt("draft", models.StyleUK)
	assert.Contains(t, uk, "British Spelling")

	// 词汇黑名单随翻译提示词下发
	assert.Contains(t, us, "cultivate")
	assert.Contains(t, us, "testament")
}

func TestBuildEnglishRefinePrompt(t *testing.T) {
	p := BuildEnglishRefinePrompt("Text with [instruction] inside.")

	assert.Contains(t, p, "Text with [instruction] inside.")
	assert.Contains(t, p, "ENGLISH only")
	assert.Contains(t, p, "BANNED VOCABULARY")
}

func TestBuildRemoveAIVocabPrompt(t *testing.T) {
	p := BuildRemoveAIVocabPrompt("The final statement text.")

	assert.Contains(t, p, "The final statement text.")
	assert.Contains(t, p, "leverage")
	assert.Contains(t, p, "Remove Markdown")
}

func TestContainsChinese(t *testing.T) {
	assert.True(t, ContainsChinese("hello 世界"))
	assert.False(t, ContainsChinese("hello world"))
	assert.False(t, ContainsChinese(""))
	// 中文标点不在汉字区间内
	assert.False(t, ContainsChinese("，。！"))
}

func TestContainsAnnotation(t *testing.T) {
	assert.True(t, ContainsAnnotation("文本【改一下】结尾"))
	assert.True(t, ContainsAnnotation("text [fix this] end"))
	// 必须成对出现
	assert.False(t, ContainsAnnotation("只有左括号【没有右边"))
	assert.False(t, ContainsAnnotation("only left [ bracket"))
	assert.False(t, ContainsAnnotation("plain text"))
}
