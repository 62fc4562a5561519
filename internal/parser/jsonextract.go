package parser

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// 模型输出是不可信的自由文本：可能带代码围栏、前后缀说明、
// 字符串内部未转义的引号。这里的提取函数从不返回错误，
// 解析失败时分别退化为 nil / 空切片，由调用方决定兜底行为。

// ExtractJSONObject 从自由文本中提取第一个JSON对象
// 取首个'{'到末个'}'的贪婪片段；找不到时剥离```json围栏后重试。
// 解码失败会先尝试修复字符串内部的裸引号，仍失败则返回nil。
func ExtractJSONObject(text string) map[string]interface{} {
	if text == "" {
		return nil
	}

	span := greedySpan(text, '{', '}')
	if span == "" {
		cleaned := stripCodeFences(text)
		span = greedySpan(cleaned, '{', '}')
	}
	if span == "" {
		return nil
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(ensureUTF8(span)), &obj); err == nil {
		return obj
	}
	if err := json.Unmarshal([]byte(sanitizeJSON(ensureUTF8(span))), &obj); err == nil {
		return obj
	}
	return nil
}

// ExtractJSONArray 从自由文本中提取JSON数组（贪婪匹配，适合大负载）
// 失败时返回空切片而非nil错误。
func ExtractJSONArray(text string) []interface{} {
	return extractArray(text, false)
}

// ExtractJSONArrayLazy 非贪婪版本，取第一个完整的短数组
// 用于技能清单这类模型可能在数组后追加说明文字的场景。
func ExtractJSONArrayLazy(text string) []interface{} {
	return extractArray(text, true)
}

func extractArray(text string, lazy bool) []interface{} {
	if text == "" {
		return []interface{}{}
	}

	var span string
	if lazy {
		span = lazySpan(text, '[', ']')
	} else {
		span = greedySpan(text, '[', ']')
	}
	if span == "" {
		cleaned := stripCodeFences(text)
		if lazy {
			span = lazySpan(cleaned, '[', ']')
		} else {
			span = greedySpan(cleaned, '[', ']')
		}
	}
	if span == "" {
		return []interface{}{}
	}

	var arr []interface{}
	if err := json.Unmarshal([]byte(ensureUTF8(span)), &arr); err == nil {
		return arr
	}
	if err := json.Unmarshal([]byte(sanitizeJSON(ensureUTF8(span))), &arr); err == nil {
		return arr
	}
	return []interface{}{}
}

// greedySpan 首个open到末个close的片段，跨越换行
func greedySpan(text string, open, close byte) string {
	start := strings.IndexByte(text, open)
	if start == -1 {
		return ""
	}
	end := strings.LastIndexByte(text, close)
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

// lazySpan 首个open到其后第一个close的片段
func lazySpan(text string, open, close byte) string {
	start := strings.IndexByte(text, open)
	if start == -1 {
		return ""
	}
	end := strings.IndexByte(text[start:], close)
	if end == -1 {
		return ""
	}
	return text[start : start+end+1]
}

// stripCodeFences 去掉Markdown代码围栏标记
func stripCodeFences(text string) string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// ensureUTF8 清除BOM与非法UTF-8序列
func ensureUTF8(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return s
}

// sanitizeJSON 遍历src，将位于字符串字面量内部但并非真正结束的双引号
// 改写为转义形式，使模型输出的近似JSON能够被反序列化。
// 判断依据：字符串结束引号的下一个非空白字符必然是 :, ], }, 或 ,
func sanitizeJSON(src string) string {
	var b strings.Builder
	inStr := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		if c == '"' && !escaped {
			if !inStr {
				inStr = true
				b.WriteByte(c)
			} else {
				j := i + 1
				for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
					j++
				}
				if j < len(src) && (src[j] == ':' || src[j] == ',' || src[j] == ']' || src[j] == '}') {
					inStr = false
					b.WriteByte(c)
				} else {
					// 字符串内部的裸引号，改写为 \"
					b.WriteString("\\\"")
				}
			}
			escaped = false

		} else if c == '\\' && !escaped {
			escaped = true
			b.WriteByte(c)

		} else {
			b.WriteByte(c)
			escaped = false
		}
	}

	return b.String()
}
