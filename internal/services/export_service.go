// internal/services/export_service.go
package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/errors"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/models"
	"github.com/SteveJiangWorkPlace/Personal-Statement-Refine/internal/utils"
)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// boldSegment 匹配**加粗**标记，切分时保留匹配内容
var boldSegment = regexp.MustCompile(`\*\*(.*?)\*\*`)

// ExportService 生成并保存Word文档
type ExportService struct {
	exportDir string
	logger    *utils.Logger
}

// NewExportService 创建导出服务，导出文件保存在dataDir/exports下
func NewExportService(dataDir string) *ExportService {
	return &ExportService{
		exportDir: filepath.Join(dataDir, "exports"),
		logger:    utils.GetLogger(),
	}
}

// ExportDocx 将最终文本导出为Word文档
// 页面四边1英寸边距，居中页眉，正文Arial 11号；
// 每个非空行一个段落，**包围的片段转为加粗文本；
// keepHighlight为false时先移除全部加粗标记
func (s *ExportService) ExportDocx(text, school, major string, keepHighlight bool) (*models.ExportResult, error) {
	// 空内容也照常导出，只记警告
	if strings.TrimSpace(text) == "" {
		s.logger.Warn("导出内容为空", nil)
	}

	if !keepHighlight {
		text = RemoveMarkdownBold(text)
	}

	content, err := buildDocxPackage(text, major)
	if err != nil {
		return nil, apperrors.NewProcessingError("生成Word文档失败", err)
	}

	name := "Final"
	if strings.TrimSpace(school) != "" {
		name = strings.ReplaceAll(strings.TrimSpace(school), " ", "_")
	}

	result := &models.ExportResult{
		FileName:  fmt.Sprintf("Personal_Statement_%s.docx", name),
		MimeType:  docxMimeType,
		Content:   content,
		FileSize:  int64(len(content)),
		CreatedAt: time.Now(),
	}

	filePath, err := s.saveExportToDataDir(result)
	if err != nil {
		// 保存失败不阻断下载，记录后继续
		s.logger.Warn("保存导出文件失败", map[string]interface{}{"error": err.Error()})
	} else {
		result.FilePath = filePath
	}

	utils.NewAPIMetrics().RecordExport(keepHighlight, len(content))
	s.logger.Info("Word文档导出完成", map[string]interface{}{
		"file": result.FileName,
		"size": result.FileSize,
	})

	return result, nil
}

// saveExportToDataDir 保存导出文件到data目录
func (s *ExportService) saveExportToDataDir(result *models.ExportResult) (string, error) {
	if err := os.MkdirAll(s.exportDir, 0755); err != nil {
		return "", fmt.Errorf("创建导出目录失败: %w", err)
	}

	timestamp := result.CreatedAt.Format("20060102_150405")
	fileName := fmt.Sprintf("%s_%s", timestamp, result.FileName)
	filePath := filepath.Join(s.exportDir, fileName)

	if err := os.WriteFile(filePath, result.Content, 0644); err != nil {
		return "", fmt.Errorf("写入导出文件失败: %w", err)
	}

	return filePath, nil
}

// buildDocxPackage 组装OOXML压缩包
func buildDocxPackage(text, major string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	files := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRootRels},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/styles.xml", docxStyles},
		{"word/header1.xml", buildHeaderXML(major)},
		{"word/document.xml", buildDocumentXML(text)},
	}

	for _, f := range files {
		fw, err := w.Create(f.name)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write([]byte(f.content)); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildHeaderXML 生成居中页眉
func buildHeaderXML(major string) string {
	headerText := "Personal Statement"
	if strings.TrimSpace(major) != "" {
		headerText = "Personal Statement - " + strings.TrimSpace(major)
	}

	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:p><w:pPr><w:jc w:val="center"/></w:pPr>
<w:r><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial"/><w:sz w:val="22"/></w:rPr>
<w:t xml:space="preserve">` + escapeXML(headerText) + `</w:t></w:r></w:p>
</w:hdr>`
}

// buildDocumentXML 生成正文
// 每个非空行一个段落，先剥离结构标记，再按**加粗**切分为文本块
func buildDocumentXML(text string) string {
	var body strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cleanLine := strings.ReplaceAll(line, "[[LOGIC]]", "")
		cleanLine = strings.ReplaceAll(cleanLine, "[[DRAFT]]", "")

		body.WriteString("<w:p>")
		for _, run := range splitBoldRuns(cleanLine) {
			if run.text == "" {
				continue
			}
			body.WriteString("<w:r>")
			if run.bold {
				body.WriteString("<w:rPr><w:b/></w:rPr>")
			}
			body.WriteString(`<w:t xml:space="preserve">`)
			body.WriteString(escapeXML(run.text))
			body.WriteString("</w:t></w:r>")
		}
		body.WriteString("</w:p>")
	}

	// 1440缇 = 1英寸边距
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<w:body>` + body.String() + `
<w:sectPr>
<w:headerReference w:type="default" r:id="rId1"/>
<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440"/>
</w:sectPr>
</w:body>
</w:document>`
}

type docxRun struct {
	text string
	bold bool
}

// splitBoldRuns 把一行文本按**标记切分为普通/加粗交替的文本块
func splitBoldRuns(line string) []docxRun {
	var runs []docxRun
	prev := 0
	for _, idx := range boldSegment.FindAllStringSubmatchIndex(line, -1) {
		if idx[0] > prev {
			runs = append(runs, docxRun{text: line[prev:idx[0]]})
		}
		runs = append(runs, docxRun{text: line[idx[2]:idx[3]], bold: true})
		prev = idx[1]
	}
	if prev < len(line) {
		runs = append(runs, docxRun{text: line[prev:]})
	}
	return runs
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	// 忽略错误：strings.Builder类缓冲不会失败
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>
</Types>`

const docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

// 22半点 = 11pt
const docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults>
<w:rPrDefault><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial"/><w:sz w:val="22"/></w:rPr></w:rPrDefault>
</w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
</w:styles>`
