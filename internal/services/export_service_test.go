// internal/services/export_service_test.go
package services

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readDocxEntry 从导出的压缩包里取指定文件内容
func readDocxEntry(t *testing.T, content []byte, name string) string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatalf("压缩包中没有 %s", name)
	return ""
}

func TestExportDocx(t *testing.T) {
	svc := NewExportService(t.TempDir())

	text := "First line with **bold part** inside.\n\n第二段内容。"
	result, err := svc.ExportDocx(text, "University College London", "Data Science", true)
	require.NoError(t, err)

	assert.Equal(t, "Personal_Statement_University_College_London.docx", result.FileName)
	assert.Equal(t, docxMimeType, result.MimeType)
	assert.Equal(t, int64(len(result.Content)), result.FileSize)
	assert.NotEmpty(t, result.FilePath)

	doc := readDocxEntry(t, result.Content, "word/document.xml")
	assert.Contains(t, doc, "<w:b/>")
	assert.Contains(t, doc, "bold part")
	assert.Contains(t, doc, "第二段内容。")
	assert.NotContains(t, doc, "**")
	// 1英寸边距
	assert.Contains(t, doc, `w:top="1440"`)

	header := readDocxEntry(t, result.Content, "word/header1.xml")
	assert.Contains(t, header, "Personal Statement - Data Science")
	assert.Contains(t, header, `<w:jc w:val="center"/>`)

	styles := readDocxEntry(t, result.Content, "word/styles.xml")
	assert.Contains(t, styles, `w:ascii="Arial"`)
	assert.Contains(t, styles, `<w:sz w:val="22"/>`)
}

func TestExportDocx_WithoutHighlight(t *testing.T) {
	svc := NewExportService(t.TempDir())

	result, err := svc.ExportDocx("Line with **bold** marks.", "", "", false)
	require.NoError(t, err)

	assert.Equal(t, "Personal_Statement_Final.docx", result.FileName)

	doc := readDocxEntry(t, result.Content, "word/document.xml")
	assert.NotContains(t, doc, "<w:b/>")
	assert.Contains(t, doc, "Line with bold marks.")

	header := readDocxEntry(t, result.Content, "word/header1.xml")
	assert.Contains(t, header, ">Personal Statement<")
}

func TestExportDocx_StripsStructureMarkers(t *testing.T) {
	svc := NewExportService(t.TempDir())

	result, err := svc.ExportDocx("[[LOGIC]]思路行\n[[DRAFT]]草稿行", "X", "", true)
	require.NoError(t, err)

	doc := readDocxEntry(t, result.Content, "word/document.xml")
	assert.NotContains(t, doc, "[[LOGIC]]")
	assert.NotContains(t, doc, "[[DRAFT]]")
	assert.Contains(t, doc, "思路行")
	assert.Contains(t, doc, "草稿行")
}

func TestExportDocx_EscapesXML(t *testing.T) {
	svc := NewExportService(t.TempDir())

	result, err := svc.ExportDocx("a < b & c > d", "X", "R&D", true)
	require.NoError(t, err)

	doc := readDocxEntry(t, result.Content, "word/document.xml")
	assert.Contains(t, doc, "a &lt; b &amp; c &gt; d")

	header := readDocxEntry(t, result.Content, "word/header1.xml")
	assert.Contains(t, header, "R&amp;D")
}

func TestExportDocx_EmptyText(t *testing.T) {
	svc := NewExportService(t.TempDir())

	// 空内容允许导出，生成不含正文段落的文档
	result, err := svc.ExportDocx("   ", "X", "Y", true)
	require.NoError(t, err)

	doc := readDocxEntry(t, result.Content, "word/document.xml")
	assert.NotContains(t, doc, "<w:p><w:r>")
	assert.Contains(t, doc, "<w:sectPr>")
}

func TestSplitBoldRuns(t *testing.T) {
	runs := splitBoldRuns("plain **bold** tail")
	require.Len(t, runs, 3)
	assert.Equal(t, docxRun{text: "plain "}, runs[0])
	assert.Equal(t, docxRun{text: "bold", bold: true}, runs[1])
	assert.Equal(t, docxRun{text: " tail"}, runs[2])

	runs = splitBoldRuns("no markers")
	require.Len(t, runs, 1)
	assert.False(t, runs[0].bold)
}
