// internal/services/extract_service.go
package services

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	apperrors "github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/errors"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/models"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/utils"
)

// imageMimeTypes 可随生成请求一起发送的图片格式
var imageMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// ExtractService 从上传的文件中提取文本
type ExtractService struct {
	logger *utils.Logger
}

// NewExtractService 创建文本提取服务
func NewExtractService() *ExtractService {
	return &ExtractService{
		logger: utils.GetLogger(),
	}
}

// ExtractText 按扩展名提取文本，支持txt、docx和pdf
// 不支持的格式返回空字符串；提取出错时返回内嵌错误说明的文本，
// 让用户在输入框里直接看到问题而不是中断流程
func (s *ExtractService) ExtractText(filename string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	var err error

	switch ext {
	case ".txt":
		text = string(data)
	case ".docx":
		text, err = extractDocxText(data)
	case ".pdf":
		text, err = extractPDFText(data)
	default:
		return ""
	}

	if err != nil {
		s.logger.Warn("文件提取失败", map[string]interface{}{
			"file":  filename,
			"error": err.Error(),
		})
		return fmt.Sprintf("[读取文件出错: %v]", err)
	}

	return text
}

// ExtractImage 校验并封装上传的图片
func (s *ExtractService) ExtractImage(filename string, data []byte) (*models.ImageData, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeType, ok := imageMimeTypes[ext]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("不支持的图片格式: %s", ext), nil)
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("图片内容为空", nil)
	}

	return &models.ImageData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// extractDocxText 从docx压缩包里读取word/document.xml并取段落文本
func extractDocxText(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("打开压缩包失败: %w", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("压缩包中没有word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("打开document.xml失败: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var b strings.Builder
	var current strings.Builder
	inParagraph := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				inParagraph = true
				current.Reset()
			}
		case xml.CharData:
			if inParagraph {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				b.WriteString(current.String())
				b.WriteByte('\n')
			}
		}
	}

	return b.String(), nil
}

// extractPDFText 用pdfcpu逐页提取PDF文本
func extractPDFText(data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("解析PDF失败: %w", err)
	}

	var b strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText := extractPDFPageText(ctx, pageNr)
		b.WriteString(pageText)
		b.WriteByte('\n')
	}

	return b.String(), nil
}

// extractPDFPageText 读取单页内容流并解析文本算子
func extractPDFPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return parsePDFContentStream(data)
}

// pdfStringLiteral 匹配PDF字符串字面量: (text)
var pdfStringLiteral = regexp.MustCompile(`\(([^)]*)\)`)

// parsePDFContentStream 从内容流的Tj/TJ文本算子里收集文本
func parsePDFContentStream(data []byte) string {
	var b strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if bytes.HasSuffix(line, []byte("Tj")) || bytes.HasSuffix(line, []byte("TJ")) {
			for _, m := range pdfStringLiteral.FindAllSubmatch(line, -1) {
				b.WriteString(decodePDFString(m[1]))
			}
			continue
		}

		// T* 换行算子
		if bytes.Equal(line, []byte("T*")) {
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// decodePDFString 处理PDF字符串的基本转义序列
func decodePDFString(raw []byte) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			b.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\', '(', ')':
			b.WriteByte(raw[i])
		default:
			// 八进制转义，如\040表示空格
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				b.WriteByte(byte(val))
			} else {
				b.WriteByte(raw[i])
			}
		}
	}
	return b.String()
}
