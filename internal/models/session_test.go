// internal/models/session_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionWithSections(n int) *Session {
	s := NewSession()
	for i := 0; i < n; i++ {
		s.Sections = append(s.Sections, Section{Draft: "draft"})
	}
	return s
}

func TestParagraph_LazyCreation(t *testing.T) {
	s := newSessionWithSections(2)
	s.Sections[1].Draft = "第二段草稿"

	p := s.Paragraph(1)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.Index)
	assert.Equal(t, "第二段草稿", p.CurrentDraft)

	// 再次取到同一个实例
	p.CurrentDraft = "edited"
	assert.Same(t, p, s.Paragraph(1))
}

func TestParagraph_OutOfRange(t *testing.T) {
	s := newSessionWithSections(2)

	assert.Nil(t, s.Paragraph(-1))
	assert.Nil(t, s.Paragraph(2))
	assert.Empty(t, s.Paragraphs)
}

func TestConfirmedIndices_Sorted(t *testing.T) {
	s := newSessionWithSections(5)
	for _, i := range []int{4, 0, 2} {
		p := s.Paragraph(i)
		p.Confirmed = true
	}
	// 未确认的段落不计入
	s.Paragraph(1)

	assert.Equal(t, []int{0, 2, 4}, s.ConfirmedIndices())
}

func TestConfirmedIndices_Empty(t *testing.T) {
	s := newSessionWithSections(3)
	assert.Empty(t, s.ConfirmedIndices())
}

func TestDisplayText(t *testing.T) {
	s := NewSession()
	assert.Equal(t, "", s.DisplayText())

	s.FinalText = "original final"
	assert.Equal(t, "original final", s.DisplayText())

	// 清理版本优先
	s.FinalTextCleaned = "cleaned final"
	assert.Equal(t, "cleaned final", s.DisplayText())
}
