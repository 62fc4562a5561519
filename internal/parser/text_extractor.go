package parser

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ResumeTextExtractor 按文件类型分发的简历文本提取器
// 契约：任何提取失败都不会向上抛错，返回已累积的部分文本（可能为空）。
// 调用方需把空白结果当作"无可读文本"的单文件错误处理。
type ResumeTextExtractor struct {
	pdf *EinoPDFTextExtractor
}

// NewResumeTextExtractor 创建简历文本提取器
func NewResumeTextExtractor(ctx context.Context) (*ResumeTextExtractor, error) {
	pdfExtractor, err := NewEinoPDFTextExtractor(ctx)
	if err != nil {
		return nil, err
	}
	return &ResumeTextExtractor{pdf: pdfExtractor}, nil
}

// ExtractText 从文件字节中提取纯文本
// 支持 .pdf 与 .txt；扩展名判断不区分大小写。
func (e *ResumeTextExtractor) ExtractText(ctx context.Context, data []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := e.pdf.ExtractTextFromBytes(ctx, data, filename)
		if err != nil {
			logExtractFailure(filename, err)
			return ""
		}
		return text
	case ".txt":
		return DecodeTextPermissive(data)
	default:
		return ""
	}
}

// DecodeTextPermissive 宽容地把字节解码为UTF-8文本，丢弃非法序列
func DecodeTextPermissive(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}
