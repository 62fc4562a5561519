package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"

	"hr-copilot-go/internal/logger"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 提取整篇文档文本
type EinoPDFTextExtractor struct {
	parser *pdf.PDFParser
}

// NewEinoPDFTextExtractor 初始化PDF文本提取器
// 不按页面分割，直接获取整个文档的连续文本。
func NewEinoPDFTextExtractor(ctx context.Context) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Eino PDF解析器失败: %w", err)
	}
	return &EinoPDFTextExtractor{parser: p}, nil
}

// ExtractTextFromReader 从io.Reader中提取文本
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, error) {
	// 解析大文件可能很慢，限制单次解析时长
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader, einoParser.WithURI(uri))
	if err != nil {
		return "", fmt.Errorf("eino PDF解析失败 (uri=%s): %w", uri, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("eino PDF解析未返回文档 (uri=%s)", uri)
	}

	var buf bytes.Buffer
	for i, doc := range docs {
		buf.WriteString(doc.Content)
		if i < len(docs)-1 {
			buf.WriteString("\n\n")
		}
	}
	return buf.String(), nil
}

// ExtractTextFromBytes 从字节数组中提取文本
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri)
}

// logExtractFailure 提取失败只记日志，由上层决定如何呈现
func logExtractFailure(uri string, err error) {
	logger.Warn().
		Err(err).
		Str("uri", uri).
		Msg("简历文本提取失败")
}
