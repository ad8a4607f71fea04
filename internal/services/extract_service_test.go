// internal/services/extract_service_test.go
package services

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/errors"
)

// buildTestDocx 构造只含document.xml的最小docx包
func buildTestDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = fw.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractText_Txt(t *testing.T) {
	svc := NewExtractService()
	assert.Equal(t, "plain text 内容", svc.ExtractText("notes.txt", []byte("plain text 内容")))
}

func TestExtractText_Docx(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
<w:p><w:r><w:t>第二段。</w:t></w:r></w:p>
</w:body>
</w:document>`

	svc := NewExtractService()
	out := svc.ExtractText("statement.docx", buildTestDocx(t, doc))

	assert.Equal(t, "First paragraph.\n第二段。\n", out)
}

func TestExtractText_CorruptDocx(t *testing.T) {
	svc := NewExtractService()
	out := svc.ExtractText("broken.docx", []byte("not a zip archive"))

	// 错误内嵌到文本里返回，流程不中断
	assert.Contains(t, out, "[读取文件出错:")
}

func TestExtractText_DocxWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/other.xml")
	require.NoError(t, err)
	_, err = fw.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	svc := NewExtractService()
	out := svc.ExtractText("odd.docx", buf.Bytes())
	assert.Contains(t, out, "[读取文件出错:")
}

func TestExtractText_UnsupportedExtension(t *testing.T) {
	svc := NewExtractService()
	assert.Equal(t, "", svc.ExtractText("image.bmp", []byte{1, 2, 3}))
	assert.Equal(t, "", svc.ExtractText("noext", []byte("text")))
}

func TestExtractImage(t *testing.T) {
	svc := NewExtractService()
	raw := []byte{0x89, 0x50, 0x4e, 0x47}

	img, err := svc.ExtractImage("photo.PNG", raw)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(raw), img.Data)

	_, err = svc.ExtractImage("doc.gif", raw)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	_, err = svc.ExtractImage("photo.png", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestParsePDFContentStream(t *testing.T) {
	stream := []byte("BT\n/F1 12 Tf\n(Hello ) Tj\n[(World)] TJ\nT*\n(Next line) Tj\nET")

	out := parsePDFContentStream(stream)
	assert.Equal(t, "Hello World\nNext line", out)
}

func TestDecodePDFString(t *testing.T) {
	assert.Equal(t, "a(b)c", decodePDFString([]byte(`a\(b\)c`)))
	assert.Equal(t, "line\nbreak", decodePDFString([]byte(`line\nbreak`)))
	// \040 是八进制的空格
	assert.Equal(t, "a b", decodePDFString([]byte(`a\040b`)))
	assert.Equal(t, `back\slash`, decodePDFString([]byte(`back\\slash`)))
}
